package post

import "time"

// Post represents a post in the system
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"author_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated via JOIN
	AuthorUsername string `json:"author_username,omitempty"`
	LikeCount      int    `json:"like_count"`
}
