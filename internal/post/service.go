package post

import (
	"context"
	"errors"
	"strings"
)

// Common errors
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotAuthor    = errors.New("not the author of this post")
	ErrAlreadyLiked = errors.New("you have already liked this post")
	ErrNotLiked     = errors.New("you have not liked this post")
)

// ValidationError carries field-level validation messages
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// Store abstracts post persistence
type Store interface {
	Create(ctx context.Context, authorID int64, req *CreatePostRequest) (*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context, search string, limit, offset int) ([]*Post, int, error)
	ListFeed(ctx context.Context, userID int64, limit, offset int) ([]*Post, int, error)
	Update(ctx context.Context, id int64, req *UpdatePostRequest) (*Post, error)
	Delete(ctx context.Context, id int64) error
	Like(ctx context.Context, userID, postID int64) (bool, error)
	Unlike(ctx context.Context, userID, postID int64) (bool, error)
}

// Notifier announces like events. Delivery is best effort.
type Notifier interface {
	NotifyPostLiked(ctx context.Context, recipientID, actorID int64, actorUsername string, postID int64) error
}

// UsernameLookup resolves a user ID to a username for notifications
type UsernameLookup interface {
	Username(ctx context.Context, userID int64) (string, error)
}

// Service handles post business logic
type Service struct {
	store    Store
	users    UsernameLookup
	notifier Notifier
}

// NewService creates a new post service with dependencies injected
func NewService(store Store, users UsernameLookup, notifier Notifier) *Service {
	return &Service{store: store, users: users, notifier: notifier}
}

// Create creates a new post authored by the caller
func (s *Service) Create(ctx context.Context, authorID int64, req *CreatePostRequest) (*Post, error) {
	fields := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "This field is required."
	}
	if strings.TrimSpace(req.Content) == "" {
		fields["content"] = "This field is required."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return s.store.Create(ctx, authorID, req)
}

// GetByID retrieves a post by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Post, error) {
	post, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// List retrieves posts newest-first with pagination and optional search
func (s *Service) List(ctx context.Context, search string, page, perPage int) ([]*Post, int, error) {
	page, perPage = clampPage(page, perPage)
	offset := (page - 1) * perPage
	return s.store.List(ctx, search, perPage, offset)
}

// Feed retrieves posts authored by users the caller follows
func (s *Service) Feed(ctx context.Context, userID int64, page, perPage int) ([]*Post, int, error) {
	page, perPage = clampPage(page, perPage)
	offset := (page - 1) * perPage
	return s.store.ListFeed(ctx, userID, perPage, offset)
}

// Update modifies a post; only its author may do so
func (s *Service) Update(ctx context.Context, id, userID int64, req *UpdatePostRequest) (*Post, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrPostNotFound
	}
	if existing.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	return s.store.Update(ctx, id, req)
}

// Delete removes a post; only its author may do so
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrPostNotFound
	}
	if existing.AuthorID != userID {
		return ErrNotAuthor
	}

	return s.store.Delete(ctx, id)
}

// Like records that the caller liked a post. Liking twice fails.
func (s *Service) Like(ctx context.Context, postID, userID int64) error {
	post, err := s.store.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	inserted, err := s.store.Like(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !inserted {
		return ErrAlreadyLiked
	}

	if s.notifier != nil && post.AuthorID != userID {
		if username, err := s.users.Username(ctx, userID); err == nil {
			s.notifier.NotifyPostLiked(ctx, post.AuthorID, userID, username, postID)
		}
	}

	return nil
}

// Unlike removes the caller's like from a post
func (s *Service) Unlike(ctx context.Context, postID, userID int64) error {
	post, err := s.store.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	removed, err := s.store.Unlike(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotLiked
	}

	return nil
}

func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	return page, perPage
}
