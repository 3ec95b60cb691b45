package post

// CreatePostRequest represents the request to create a post
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostRequest represents a partial update to a post
type UpdatePostRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// PostResponse represents the response for a post
type PostResponse struct {
	ID             int64  `json:"id"`
	AuthorID       int64  `json:"author_id"`
	AuthorUsername string `json:"author_username,omitempty"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	LikeCount      int    `json:"like_count"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ToResponse converts a Post model to a PostResponse DTO
func (p *Post) ToResponse() *PostResponse {
	return &PostResponse{
		ID:             p.ID,
		AuthorID:       p.AuthorID,
		AuthorUsername: p.AuthorUsername,
		Title:          p.Title,
		Content:        p.Content,
		LikeCount:      p.LikeCount,
		CreatedAt:      p.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      p.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
