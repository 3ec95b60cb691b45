package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu            sync.Mutex
	nextID        int64
	notifications map[int64]*Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{notifications: map[int64]*Notification{}}
}

func (f *fakeStore) Create(ctx context.Context, recipientID int64, actorID *int64, message string, entityType *string, entityID *int64) (*Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := &Notification{
		ID:                f.nextID,
		RecipientID:       recipientID,
		ActorID:           actorID,
		Message:           message,
		RelatedEntityType: entityType,
		RelatedEntityID:   entityID,
		CreatedAt:         time.Now(),
	}
	f.notifications[n.ID] = n
	return n, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notifications[id], nil
}

func (f *fakeStore) ListByRecipientID(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Notification
	for _, n := range f.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, len(out), nil
}

func (f *fakeStore) MarkAsRead(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.notifications[id]; ok {
		n.IsRead = true
	}
	return nil
}

func (f *fakeStore) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			n.IsRead = true
		}
	}
	return nil
}

func (f *fakeStore) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.notifications {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestNotifyHelpers_ComposeMessages(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.NotifyNewFollower(ctx, 1, 2, "alice"))
	require.NoError(t, svc.NotifyPostLiked(ctx, 1, 2, "alice", 7))
	require.NoError(t, svc.NotifyPostCommented(ctx, 1, 2, "alice", 7))

	list, total, err := svc.ListByRecipientID(ctx, 1, 1, 20, false)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	messages := map[string]bool{}
	for _, n := range list {
		messages[n.Message] = true
		require.NotNil(t, n.ActorID)
		assert.Equal(t, int64(2), *n.ActorID)
	}
	assert.True(t, messages["alice started following you"])
	assert.True(t, messages["alice liked your post"])
	assert.True(t, messages["alice commented on your post"])
}

func TestMarkAsRead_OnlyRecipient(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.NotifyNewFollower(ctx, 1, 2, "alice"))

	assert.ErrorIs(t, svc.MarkAsRead(ctx, 1, 99), ErrNotRecipient)
	assert.ErrorIs(t, svc.MarkAsRead(ctx, 42, 1), ErrNotificationNotFound)

	require.NoError(t, svc.MarkAsRead(ctx, 1, 1))

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestUnreadCountAndMarkAll(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.NotifyPostLiked(ctx, 1, 2, "bob", 3))
	require.NoError(t, svc.NotifyPostLiked(ctx, 1, 3, "carol", 3))
	require.NoError(t, svc.NotifyPostLiked(ctx, 2, 3, "carol", 4))

	count, err := svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkAllAsRead(ctx, 1))

	count, err = svc.GetUnreadCount(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Other recipients are untouched.
	count, err = svc.GetUnreadCount(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	unread, total, err := svc.ListByRecipientID(ctx, 1, 1, 20, true)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, unread)
}
