package post

import (
	"context"
	"database/sql"
	"fmt"
)

const postColumns = `
	p.id, p.author_id, p.title, p.content, p.created_at, p.updated_at,
	u.username,
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id)
`

// Repository handles post data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new post repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func scanPost(row interface{ Scan(...interface{}) error }) (*Post, error) {
	post := &Post{}
	err := row.Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.AuthorUsername,
		&post.LikeCount,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Create inserts a new post into the database
func (r *Repository) Create(ctx context.Context, authorID int64, req *CreatePostRequest) (*Post, error) {
	query := `
		INSERT INTO posts (author_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, author_id, title, content, created_at, updated_at
	`

	post := &Post{}
	err := r.db.QueryRowContext(ctx, query, authorID, req.Title, req.Content).Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// GetByID retrieves a post by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return post, nil
}

// List retrieves posts newest-first, optionally filtered by a search
// term over title and content.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]*Post, int, error) {
	countQuery := `SELECT COUNT(*) FROM posts p`
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
	`

	args := []interface{}{}
	if search != "" {
		filter := ` WHERE p.title ILIKE $1 OR p.content ILIKE $1`
		countQuery += filter
		query += filter
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query += fmt.Sprintf(` ORDER BY p.created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	posts, err := r.queryPosts(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

// ListFeed retrieves posts authored by users the given user follows,
// newest first. A single join over the follow edge set.
func (r *Repository) ListFeed(ctx context.Context, userID int64, limit, offset int) ([]*Post, int, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM posts p
		JOIN follows f ON f.followee_id = p.author_id
		WHERE f.follower_id = $1
	`

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count feed posts: %w", err)
	}

	query := `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.author_id
		JOIN follows f ON f.followee_id = p.author_id
		WHERE f.follower_id = $1
		ORDER BY p.created_at DESC
		LIMIT $2 OFFSET $3
	`

	posts, err := r.queryPosts(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *Repository) queryPosts(ctx context.Context, query string, args ...interface{}) ([]*Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// Update modifies an existing post
func (r *Repository) Update(ctx context.Context, id int64, req *UpdatePostRequest) (*Post, error) {
	query := `
		UPDATE posts
		SET title = COALESCE($2, title),
		    content = COALESCE($3, content),
		    updated_at = now()
		WHERE id = $1
		RETURNING id, author_id, title, content, created_at, updated_at
	`

	post := &Post{}
	err := r.db.QueryRowContext(ctx, query, id, req.Title, req.Content).Scan(
		&post.ID,
		&post.AuthorID,
		&post.Title,
		&post.Content,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return post, nil
}

// Delete removes a post from the database
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// Like inserts a like edge. Returns false when the user already liked
// the post.
func (r *Repository) Like(ctx context.Context, userID, postID int64) (bool, error) {
	query := `
		INSERT INTO likes (user_id, post_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, post_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return false, fmt.Errorf("failed to like post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Unlike removes a like edge. Returns false when no like existed.
func (r *Repository) Unlike(ctx context.Context, userID, postID int64) (bool, error) {
	query := `DELETE FROM likes WHERE user_id = $1 AND post_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, postID)
	if err != nil {
		return false, fmt.Errorf("failed to unlike post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
