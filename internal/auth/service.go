package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidToken = errors.New("invalid token")
)

// Store abstracts token persistence
type Store interface {
	Create(ctx context.Context, value string, userID int64) (*Token, error)
	GetByUserID(ctx context.Context, userID int64) (*Token, error)
	GetByValue(ctx context.Context, value string) (*Token, error)
}

// Service issues and resolves opaque bearer tokens
type Service struct {
	store Store
}

// NewService creates a new auth service with store dependency injected
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Issue returns the user's token, creating one on first use. A second
// call for the same user returns the same value.
func (s *Service) Issue(ctx context.Context, userID int64) (string, error) {
	existing, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.Value, nil
	}

	value, err := newTokenValue()
	if err != nil {
		return "", err
	}

	created, err := s.store.Create(ctx, value, userID)
	if err != nil {
		return "", err
	}
	if created == nil {
		// Lost the race to a concurrent issue; the winner's token stands.
		existing, err = s.store.GetByUserID(ctx, userID)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return "", fmt.Errorf("token vanished for user %d", userID)
		}
		return existing.Value, nil
	}

	return created.Value, nil
}

// Resolve looks up the user owning a token value
func (s *Service) Resolve(ctx context.Context, value string) (int64, error) {
	if value == "" {
		return 0, ErrInvalidToken
	}

	token, err := s.store.GetByValue(ctx, value)
	if err != nil {
		return 0, err
	}
	if token == nil {
		return 0, ErrInvalidToken
	}

	return token.UserID, nil
}

// newTokenValue returns 20 random bytes hex-encoded (40 characters)
func newTokenValue() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
