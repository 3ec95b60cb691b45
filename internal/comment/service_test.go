package comment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yhamdan/socialite/internal/post"
)

type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	comments map[int64]*Comment
}

func newFakeStore() *fakeStore {
	return &fakeStore{comments: map[int64]*Comment{}}
}

func (f *fakeStore) Create(ctx context.Context, authorID int64, req *CreateCommentRequest) (*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	c := &Comment{
		ID:        f.nextID,
		PostID:    req.PostID,
		AuthorID:  authorID,
		Content:   req.Content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.comments[c.ID] = c
	return cloneComment(c), nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneComment(f.comments[id]), nil
}

func (f *fakeStore) ListByPostID(ctx context.Context, postID int64, limit, offset int) ([]*Comment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, cloneComment(c))
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) Update(ctx context.Context, id int64, req *UpdateCommentRequest) (*Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, nil
	}
	if req.Content != nil {
		c.Content = *req.Content
	}
	c.UpdatedAt = time.Now()
	return cloneComment(c), nil
}

func (f *fakeStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.comments, id)
	return nil
}

func cloneComment(c *Comment) *Comment {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

type fakePosts struct {
	posts map[int64]*post.Post
}

func (f *fakePosts) GetByID(ctx context.Context, id int64) (*post.Post, error) {
	return f.posts[id], nil
}

type fakeUsers struct{}

func (fakeUsers) Username(ctx context.Context, userID int64) (string, error) {
	return "user", nil
}

type commentNote struct {
	recipientID int64
	actorID     int64
	postID      int64
}

type fakeNotifier struct {
	mu    sync.Mutex
	notes []commentNote
}

func (f *fakeNotifier) NotifyPostCommented(ctx context.Context, recipientID, actorID int64, actorUsername string, postID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, commentNote{recipientID, actorID, postID})
	return nil
}

func newTestService() (*Service, *fakeNotifier) {
	posts := &fakePosts{posts: map[int64]*post.Post{
		1: {ID: 1, AuthorID: 10, Title: "t", Content: "c"},
	}}
	notifier := &fakeNotifier{}
	return NewService(newFakeStore(), posts, fakeUsers{}, notifier), notifier
}

func TestCreate_RequiresPostAndContent(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, &CreateCommentRequest{})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "post_id")
	assert.Contains(t, verr.Fields, "content")
}

func TestCreate_UnknownPost(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), 1, &CreateCommentRequest{PostID: 99, Content: "hi"})
	assert.ErrorIs(t, err, post.ErrPostNotFound)
}

func TestCreate_NotifiesPostAuthor(t *testing.T) {
	t.Parallel()

	svc, notifier := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, 2, &CreateCommentRequest{PostID: 1, Content: "nice"})
	require.NoError(t, err)

	require.Len(t, notifier.notes, 1)
	assert.Equal(t, int64(10), notifier.notes[0].recipientID)
	assert.Equal(t, int64(2), notifier.notes[0].actorID)
	assert.Equal(t, int64(1), notifier.notes[0].postID)
}

func TestCreate_OwnPostDoesNotNotify(t *testing.T) {
	t.Parallel()

	svc, notifier := newTestService()

	_, err := svc.Create(context.Background(), 10, &CreateCommentRequest{PostID: 1, Content: "self"})
	require.NoError(t, err)

	assert.Empty(t, notifier.notes)
}

func TestUpdateDelete_OnlyAuthor(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, 2, &CreateCommentRequest{PostID: 1, Content: "original"})
	require.NoError(t, err)

	content := "edited"
	_, err = svc.Update(ctx, created.ID, 3, &UpdateCommentRequest{Content: &content})
	assert.ErrorIs(t, err, ErrNotAuthor)

	updated, err := svc.Update(ctx, created.ID, 2, &UpdateCommentRequest{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID, 3), ErrNotAuthor)
	require.NoError(t, svc.Delete(ctx, created.ID, 2))

	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, ErrCommentNotFound)
}
