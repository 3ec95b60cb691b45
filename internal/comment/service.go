package comment

import (
	"context"
	"errors"
	"strings"

	"github.com/yhamdan/socialite/internal/post"
)

// Common errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotAuthor       = errors.New("not the author of this comment")
)

// ValidationError carries field-level validation messages
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// Store abstracts comment persistence
type Store interface {
	Create(ctx context.Context, authorID int64, req *CreateCommentRequest) (*Comment, error)
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByPostID(ctx context.Context, postID int64, limit, offset int) ([]*Comment, int, error)
	Update(ctx context.Context, id int64, req *UpdateCommentRequest) (*Comment, error)
	Delete(ctx context.Context, id int64) error
}

// PostGetter resolves a post so comments can verify their target and
// notify its author
type PostGetter interface {
	GetByID(ctx context.Context, id int64) (*post.Post, error)
}

// UsernameLookup resolves a user ID to a username for notifications
type UsernameLookup interface {
	Username(ctx context.Context, userID int64) (string, error)
}

// Notifier announces comment events. Delivery is best effort.
type Notifier interface {
	NotifyPostCommented(ctx context.Context, recipientID, actorID int64, actorUsername string, postID int64) error
}

// Service handles comment business logic
type Service struct {
	store    Store
	posts    PostGetter
	users    UsernameLookup
	notifier Notifier
}

// NewService creates a new comment service with dependencies injected
func NewService(store Store, posts PostGetter, users UsernameLookup, notifier Notifier) *Service {
	return &Service{store: store, posts: posts, users: users, notifier: notifier}
}

// Create creates a comment on an existing post
func (s *Service) Create(ctx context.Context, authorID int64, req *CreateCommentRequest) (*Comment, error) {
	fields := map[string]string{}
	if req.PostID == 0 {
		fields["post_id"] = "This field is required."
	}
	if strings.TrimSpace(req.Content) == "" {
		fields["content"] = "This field is required."
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	target, err := s.posts.GetByID(ctx, req.PostID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, post.ErrPostNotFound
	}

	comment, err := s.store.Create(ctx, authorID, req)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && target.AuthorID != authorID {
		if username, err := s.users.Username(ctx, authorID); err == nil {
			s.notifier.NotifyPostCommented(ctx, target.AuthorID, authorID, username, target.ID)
		}
	}

	return comment, nil
}

// GetByID retrieves a comment by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Comment, error) {
	comment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}

// ListByPostID retrieves comments on a post with pagination
func (s *Service) ListByPostID(ctx context.Context, postID int64, page, perPage int) ([]*Comment, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByPostID(ctx, postID, perPage, offset)
}

// Update modifies a comment; only its author may do so
func (s *Service) Update(ctx context.Context, id, userID int64, req *UpdateCommentRequest) (*Comment, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCommentNotFound
	}
	if existing.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	return s.store.Update(ctx, id, req)
}

// Delete removes a comment; only its author may do so
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCommentNotFound
	}
	if existing.AuthorID != userID {
		return ErrNotAuthor
	}

	return s.store.Delete(ctx, id)
}
