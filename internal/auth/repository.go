package auth

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles token persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new token repository with database dependency injected
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a token for a user. When the user already has a token
// the insert is a no-op and nil is returned; callers re-read the
// existing row. This keeps concurrent first logins from minting two
// tokens for the same user.
func (r *Repository) Create(ctx context.Context, value string, userID int64) (*Token, error) {
	query := `
		INSERT INTO auth_tokens (token, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING token, user_id, created_at
	`

	token := &Token{}
	err := r.db.QueryRowContext(ctx, query, value, userID).Scan(
		&token.Value,
		&token.UserID,
		&token.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return token, nil
}

// GetByUserID retrieves the token owned by a user
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Token, error) {
	query := `
		SELECT token, user_id, created_at
		FROM auth_tokens
		WHERE user_id = $1
	`

	token := &Token{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&token.Value,
		&token.UserID,
		&token.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

// GetByValue retrieves a token by its opaque value
func (r *Repository) GetByValue(ctx context.Context, value string) (*Token, error) {
	query := `
		SELECT token, user_id, created_at
		FROM auth_tokens
		WHERE token = $1
	`

	token := &Token{}
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&token.Value,
		&token.UserID,
		&token.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token by value: %w", err)
	}

	return token, nil
}
