package comment

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles comment data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new comment repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new comment into the database
func (r *Repository) Create(ctx context.Context, authorID int64, req *CreateCommentRequest) (*Comment, error) {
	query := `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, author_id, content, created_at, updated_at
	`

	comment := &Comment{}
	err := r.db.QueryRowContext(ctx, query, req.PostID, authorID, req.Content).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return comment, nil
}

// GetByID retrieves a comment by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at, c.updated_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.id = $1
	`

	comment := &Comment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.AuthorUsername,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return comment, nil
}

// ListByPostID retrieves comments on a post, newest first
func (r *Repository) ListByPostID(ctx context.Context, postID int64, limit, offset int) ([]*Comment, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM comments WHERE post_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, postID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at, c.updated_at, u.username
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, postID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		comment := &Comment{}
		if err := rows.Scan(
			&comment.ID,
			&comment.PostID,
			&comment.AuthorID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
			&comment.AuthorUsername,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	return comments, total, rows.Err()
}

// Update modifies an existing comment
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateCommentRequest) (*Comment, error) {
	query := `
		UPDATE comments
		SET content = COALESCE($2, content),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, post_id, author_id, content, created_at, updated_at
	`

	comment := &Comment{}
	err := r.db.QueryRowContext(ctx, query, id, req.Content).Scan(
		&comment.ID,
		&comment.PostID,
		&comment.AuthorID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return comment, nil
}

// Delete removes a comment from the database
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM comments WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return nil
}
