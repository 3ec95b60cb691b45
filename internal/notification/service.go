package notification

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Store abstracts notification persistence
type Store interface {
	Create(ctx context.Context, recipientID int64, actorID *int64, message string, entityType *string, entityID *int64) (*Notification, error)
	GetByID(ctx context.Context, id int64) (*Notification, error)
	ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context, recipientID int64) error
	GetUnreadCount(ctx context.Context, recipientID int64) (int, error)
}

// Service handles notification business logic
type Service struct {
	store Store
}

// NewService creates a new notification service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListByRecipientID retrieves all notifications for a user
func (s *Service) ListByRecipientID(ctx context.Context, recipientID int64, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByRecipientID(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read; only its recipient may do so
func (s *Service) MarkAsRead(ctx context.Context, id, userID int64) error {
	notification, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notification == nil {
		return ErrNotificationNotFound
	}
	if notification.RecipientID != userID {
		return ErrNotRecipient
	}

	return s.store.MarkAsRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.store.MarkAllAsRead(ctx, userID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.store.GetUnreadCount(ctx, userID)
}

// Helper methods for creating specific notification types

// NotifyNewFollower creates a notification when someone follows a user
func (s *Service) NotifyNewFollower(ctx context.Context, recipientID, actorID int64, actorUsername string) error {
	message := actorUsername + " started following you"
	entityType := "USER"
	_, err := s.store.Create(ctx, recipientID, &actorID, message, &entityType, &actorID)
	return err
}

// NotifyPostLiked creates a notification when someone likes a post
func (s *Service) NotifyPostLiked(ctx context.Context, recipientID, actorID int64, actorUsername string, postID int64) error {
	message := actorUsername + " liked your post"
	entityType := "POST"
	_, err := s.store.Create(ctx, recipientID, &actorID, message, &entityType, &postID)
	return err
}

// NotifyPostCommented creates a notification when someone comments on a post
func (s *Service) NotifyPostCommented(ctx context.Context, recipientID, actorID int64, actorUsername string, postID int64) error {
	message := actorUsername + " commented on your post"
	entityType := "POST"
	_, err := s.store.Create(ctx, recipientID, &actorID, message, &entityType, &postID)
	return err
}
