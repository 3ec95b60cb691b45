package account

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yhamdan/socialite/internal/media"
)

type edge struct{ follower, followee int64 }

// fakeStore is an in-memory Store used by service and handler tests
type fakeStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
	edges  map[edge]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]*User{}, edges: map[edge]bool{}}
}

func (f *fakeStore) Create(ctx context.Context, username string, email *string, passwordHash string, bio, pictureURL *string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return nil, ErrUsernameTaken
		}
		if email != nil && u.Email != nil && *u.Email == *email {
			return nil, ErrEmailTaken
		}
	}
	f.nextID++
	user := &User{
		ID:                f.nextID,
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		Bio:               bio,
		ProfilePictureURL: pictureURL,
		CreatedAt:         time.Now(),
	}
	f.users[user.ID] = user
	return cloneUser(user), nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneUser(f.users[id]), nil
}

func (f *fakeStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest, pictureURL *string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	if req.Email != nil {
		for _, u := range f.users {
			if u.ID != id && u.Email != nil && *u.Email == *req.Email {
				return nil, ErrEmailTaken
			}
		}
		user.Email = req.Email
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if pictureURL != nil {
		user.ProfilePictureURL = pictureURL
	}
	return cloneUser(user), nil
}

func (f *fakeStore) Follow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := edge{followerID, followeeID}
	if f.edges[e] {
		return false, nil
	}
	f.edges[e] = true
	return true, nil
}

func (f *fakeStore) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.edges, edge{followerID, followeeID})
	return nil
}

func (f *fakeStore) ListFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for e := range f.edges {
		if e.followee == userID {
			ids = append(ids, e.follower)
		}
	}
	return ids, nil
}

func (f *fakeStore) ListFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for e := range f.edges {
		if e.follower == userID {
			ids = append(ids, e.followee)
		}
	}
	return ids, nil
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// fakeIssuer hands each user one stable token
type fakeIssuer struct {
	mu     sync.Mutex
	tokens map[int64]string
}

func newFakeIssuer() *fakeIssuer {
	return &fakeIssuer{tokens: map[int64]string{}}
}

func (f *fakeIssuer) Issue(ctx context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token, ok := f.tokens[userID]; ok {
		return token, nil
	}
	token := fmt.Sprintf("token-%d", userID)
	f.tokens[userID] = token
	return token, nil
}

// fakeFiles records saves and removals without touching disk
type fakeFiles struct {
	mu      sync.Mutex
	saved   []string
	removed []string
}

func (f *fakeFiles) Save(subdir, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".gif" && ext != ".webp" {
		return "", media.ErrUnsupportedImageType
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "/media/" + subdir + "/" + fmt.Sprintf("%d", len(f.saved)) + ext
	f.saved = append(f.saved, url)
	return url, nil
}

func (f *fakeFiles) Remove(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
	return nil
}

type recordedNotification struct {
	recipientID int64
	actorID     int64
	actorName   string
}

type fakeNotifier struct {
	mu        sync.Mutex
	followers []recordedNotification
}

func (f *fakeNotifier) NotifyNewFollower(ctx context.Context, recipientID, actorID int64, actorUsername string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followers = append(f.followers, recordedNotification{recipientID, actorID, actorUsername})
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeFiles, *fakeNotifier) {
	store := newFakeStore()
	files := &fakeFiles{}
	notifier := &fakeNotifier{}
	return NewService(store, newFakeIssuer(), files, notifier), store, files, notifier
}

func registerReq(username, email, password string) *RegisterRequest {
	return &RegisterRequest{Username: username, Email: email, Password: password}
}

func TestRegister_Success(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	user, token, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", user.Username)
	require.NotNil(t, user.Email)
	assert.Equal(t, "a@x.com", *user.Email)

	// Password is stored as a hash, never verbatim.
	assert.NotEqual(t, "sw0rdfish", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("sw0rdfish")))
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()

	_, _, err := svc.Register(context.Background(), registerReq("", "", ""))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")
}

func TestRegister_ShortPassword(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()

	_, _, err := svc.Register(context.Background(), registerReq("bob", "", "short"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "password")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerReq("alice", "other@x.com", "sw0rdfish"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "username")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerReq("bob", "a@x.com", "sw0rdfish"))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestRegister_RemovesUploadWhenCreateFails(t *testing.T) {
	t.Parallel()

	svc, _, files, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	req := registerReq("alice", "dup@x.com", "sw0rdfish")
	req.ProfilePicture = &FileUpload{Filename: "me.png", Content: strings.NewReader("img")}
	_, _, err = svc.Register(ctx, req)
	require.Error(t, err)

	// The orphaned file must not survive the failed commit.
	require.Len(t, files.saved, 1)
	assert.Equal(t, files.saved, files.removed)
}

func TestRegister_RejectsBadImage(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()

	req := registerReq("carol", "", "sw0rdfish")
	req.ProfilePicture = &FileUpload{Filename: "nope.txt", Content: strings.NewReader("x")}
	_, _, err := svc.Register(context.Background(), req)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "profile_picture")
}

func TestLogin_TokenIsStableAcrossRegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, registered, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	_, byUsername, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "sw0rdfish"})
	require.NoError(t, err)
	assert.Equal(t, registered, byUsername)

	_, byEmail, err := svc.Login(ctx, &LoginRequest{Email: "a@x.com", Password: "sw0rdfish"})
	require.NoError(t, err)
	assert.Equal(t, registered, byEmail)
}

func TestLogin_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	_, token, err := svc.Login(ctx, &LoginRequest{Username: "alice", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestLogin_UnknownIdentifierLooksLikeWrongPassword(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()

	_, _, err := svc.Login(context.Background(), &LoginRequest{Username: "nobody", Password: "whatever1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_NoIdentifier(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()

	_, _, err := svc.Login(context.Background(), &LoginRequest{Password: "whatever1"})

	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateProfile_PatchesOnlyGivenFields(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	bio := "hi"
	profile, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)

	require.NotNil(t, profile.User.Bio)
	assert.Equal(t, "hi", *profile.User.Bio)
	assert.Equal(t, "alice", profile.User.Username)
	require.NotNil(t, profile.User.Email)
	assert.Equal(t, "a@x.com", *profile.User.Email)

	// Applying the same patch twice yields the same state.
	again, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, profile.User, again.User)
}

func TestUpdateProfile_RejectsInvalidEmail(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	user, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	bad := "not-an-email"
	_, err = svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{Email: &bad})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestFollow_AddsDirectedEdgeOnly(t *testing.T) {
	t.Parallel()

	svc, _, _, notifier := newTestService()
	ctx := context.Background()

	alice, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)
	bob, _, err := svc.Register(ctx, registerReq("bob", "b@x.com", "sw0rdfish"))
	require.NoError(t, err)

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))

	bobProfile, err := svc.GetProfile(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID}, bobProfile.FollowerIDs)
	assert.Empty(t, bobProfile.FollowingIDs)

	// No reciprocal edge.
	aliceProfile, err := svc.GetProfile(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceProfile.FollowerIDs)
	assert.Equal(t, []int64{bob.ID}, aliceProfile.FollowingIDs)

	require.Len(t, notifier.followers, 1)
	assert.Equal(t, bob.ID, notifier.followers[0].recipientID)
	assert.Equal(t, "alice", notifier.followers[0].actorName)
}

func TestFollow_SelfRejected(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	alice, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, alice.ID), ErrCannotFollowSelf)
}

func TestFollow_DuplicateIsNoOp(t *testing.T) {
	t.Parallel()

	svc, _, _, notifier := newTestService()
	ctx := context.Background()

	alice, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)
	bob, _, err := svc.Register(ctx, registerReq("bob", "b@x.com", "sw0rdfish"))
	require.NoError(t, err)

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))

	profile, err := svc.GetProfile(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, profile.FollowerIDs, 1)

	// Only the first follow notifies.
	assert.Len(t, notifier.followers, 1)
}

func TestFollow_UnknownTarget(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	alice, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Follow(ctx, alice.ID, 999), ErrUserNotFound)
}

func TestUnfollow_RemovesEdge(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()
	ctx := context.Background()

	alice, _, err := svc.Register(ctx, registerReq("alice", "a@x.com", "sw0rdfish"))
	require.NoError(t, err)
	bob, _, err := svc.Register(ctx, registerReq("bob", "b@x.com", "sw0rdfish"))
	require.NoError(t, err)

	require.NoError(t, svc.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, svc.Unfollow(ctx, alice.ID, bob.ID))

	profile, err := svc.GetProfile(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.FollowerIDs)
}
