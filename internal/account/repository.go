package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles account data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new account repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// translateUniqueViolation maps Postgres unique-constraint failures to
// the package sentinels so callers never see a raw database fault.
func translateUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_username_key":
			return ErrUsernameTaken
		case "users_email_key":
			return ErrEmailTaken
		}
	}
	return nil
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, username string, email *string, passwordHash string, bio, pictureURL *string) (*User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, bio, profile_picture_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, username, email, password_hash, bio, profile_picture_url, created_at
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, username, email, passwordHash, bio, pictureURL).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Bio,
		&user.ProfilePictureURL,
		&user.CreatedAt,
	)
	if err != nil {
		if translated := translateUniqueViolation(err); translated != nil {
			return nil, translated
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by their ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, bio, profile_picture_url, created_at
		FROM users
		WHERE id = $1
	`
	return r.getOne(ctx, query, id)
}

// GetByUsername retrieves a user by their username
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, bio, profile_picture_url, created_at
		FROM users
		WHERE username = $1
	`
	return r.getOne(ctx, query, username)
}

// GetByEmail retrieves a user by their email. Email is unique at the
// store, so at most one row matches.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, username, email, password_hash, bio, profile_picture_url, created_at
		FROM users
		WHERE email = $1
	`
	return r.getOne(ctx, query, email)
}

func (r *Repository) getOne(ctx context.Context, query string, arg interface{}) (*User, error) {
	user := &User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Bio,
		&user.ProfilePictureURL,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// UpdateProfile applies a partial update to a user's mutable fields
func (r *Repository) UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest, pictureURL *string) (*User, error) {
	query := `
		UPDATE users
		SET bio = COALESCE($2, bio),
		    email = COALESCE($3, email),
		    profile_picture_url = COALESCE($4, profile_picture_url)
		WHERE id = $1
		RETURNING id, username, email, password_hash, bio, profile_picture_url, created_at
	`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, id, req.Bio, req.Email, pictureURL).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Bio,
		&user.ProfilePictureURL,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if translated := translateUniqueViolation(err); translated != nil {
			return nil, translated
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Follow inserts a directed follow edge. Returns false when the edge
// already existed; duplicate edges are never created.
func (r *Repository) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to follow user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Unfollow removes a directed follow edge if present
func (r *Repository) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`

	if _, err := r.db.ExecContext(ctx, query, followerID, followeeID); err != nil {
		return fmt.Errorf("failed to unfollow user: %w", err)
	}
	return nil
}

// ListFollowerIDs returns the IDs of users following the given user
func (r *Repository) ListFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT follower_id FROM follows
		WHERE followee_id = $1
		ORDER BY follower_id
	`
	return r.listIDs(ctx, query, userID)
}

// ListFollowingIDs returns the IDs of users the given user follows
func (r *Repository) ListFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT followee_id FROM follows
		WHERE follower_id = $1
		ORDER BY followee_id
	`
	return r.listIDs(ctx, query, userID)
}

func (r *Repository) listIDs(ctx context.Context, query string, userID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list follow edges: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan follow edge: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}
