package comment

// CreateCommentRequest represents the request to create a comment
type CreateCommentRequest struct {
	PostID  int64  `json:"post_id"`
	Content string `json:"content"`
}

// UpdateCommentRequest represents a partial update to a comment
type UpdateCommentRequest struct {
	Content *string `json:"content,omitempty"`
}

// CommentResponse represents the response for a comment
type CommentResponse struct {
	ID             int64  `json:"id"`
	PostID         int64  `json:"post_id"`
	AuthorID       int64  `json:"author_id"`
	AuthorUsername string `json:"author_username,omitempty"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ToResponse converts a Comment model to a CommentResponse DTO
func (c *Comment) ToResponse() *CommentResponse {
	return &CommentResponse{
		ID:             c.ID,
		PostID:         c.PostID,
		AuthorID:       c.AuthorID,
		AuthorUsername: c.AuthorUsername,
		Content:        c.Content,
		CreatedAt:      c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:      c.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
