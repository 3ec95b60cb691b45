package account

import (
	"context"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yhamdan/socialite/internal/media"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCannotFollowSelf   = errors.New("cannot follow yourself")
)

// ValidationError carries field-level validation messages
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation failed" }

// Store abstracts account persistence
type Store interface {
	Create(ctx context.Context, username string, email *string, passwordHash string, bio, pictureURL *string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, req *UpdateProfileRequest, pictureURL *string) (*User, error)
	Follow(ctx context.Context, followerID, followeeID int64) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID int64) error
	ListFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	ListFollowingIDs(ctx context.Context, userID int64) ([]int64, error)
}

// TokenIssuer issues the opaque bearer token for a user
type TokenIssuer interface {
	Issue(ctx context.Context, userID int64) (string, error)
}

// FileStore persists uploaded profile pictures
type FileStore interface {
	Save(subdir, filename string, r io.Reader) (string, error)
	Remove(url string) error
}

// Notifier announces follow events. Delivery is best effort.
type Notifier interface {
	NotifyNewFollower(ctx context.Context, recipientID, actorID int64, actorUsername string) error
}

// Service handles account business logic
type Service struct {
	store    Store
	tokens   TokenIssuer
	files    FileStore
	notifier Notifier
}

// NewService creates a new account service with dependencies injected
func NewService(store Store, tokens TokenIssuer, files FileStore, notifier Notifier) *Service {
	return &Service{store: store, tokens: tokens, files: files, notifier: notifier}
}

// Register creates a user and issues their token. The profile picture,
// when present, is written to the file store before the user record is
// committed; the file is removed again if the commit fails.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, string, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	fields := map[string]string{}
	if req.Username == "" {
		fields["username"] = "This field is required."
	} else if len(req.Username) > 150 {
		fields["username"] = "Ensure this field has no more than 150 characters."
	}
	if req.Password == "" {
		fields["password"] = "This field is required."
	} else if len(req.Password) < 8 {
		fields["password"] = "This password is too short. It must contain at least 8 characters."
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		fields["email"] = "Enter a valid email address."
	}
	if len(fields) > 0 {
		return nil, "", &ValidationError{Fields: fields}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	var pictureURL *string
	if req.ProfilePicture != nil {
		url, err := s.files.Save("profiles", req.ProfilePicture.Filename, req.ProfilePicture.Content)
		if err != nil {
			if errors.Is(err, media.ErrUnsupportedImageType) {
				return nil, "", &ValidationError{Fields: map[string]string{
					"profile_picture": "Upload a valid image.",
				}}
			}
			return nil, "", err
		}
		pictureURL = &url
	}

	var email *string
	if req.Email != "" {
		email = &req.Email
	}

	user, err := s.store.Create(ctx, req.Username, email, string(hash), req.Bio, pictureURL)
	if err != nil {
		if pictureURL != nil {
			s.files.Remove(*pictureURL)
		}
		switch {
		case errors.Is(err, ErrUsernameTaken):
			return nil, "", &ValidationError{Fields: map[string]string{
				"username": "A user with that username already exists.",
			}}
		case errors.Is(err, ErrEmailTaken):
			return nil, "", &ValidationError{Fields: map[string]string{
				"email": "A user with that email already exists.",
			}}
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies credentials and returns the user's stable token.
// Lookup is username-first, then email. The failure is identical for
// unknown identifiers and wrong passwords.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, string, error) {
	if req.Username == "" && req.Email == "" {
		return nil, "", &ValidationError{Fields: map[string]string{
			"username": "Provide either username or email.",
		}}
	}
	if req.Password == "" {
		return nil, "", &ValidationError{Fields: map[string]string{
			"password": "This field is required.",
		}}
	}

	var (
		user *User
		err  error
	)
	if req.Username != "" {
		user, err = s.store.GetByUsername(ctx, req.Username)
	} else {
		user, err = s.store.GetByEmail(ctx, req.Email)
	}
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// GetProfile returns a user together with their follow edge views
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	followers, err := s.store.ListFollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.store.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, FollowerIDs: followers, FollowingIDs: following}, nil
}

// UpdateProfile applies a partial update to the caller's own record.
// Only bio, email and profile picture are mutable here.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*Profile, error) {
	if req.Email != nil {
		trimmed := strings.TrimSpace(*req.Email)
		if trimmed == "" || !strings.Contains(trimmed, "@") {
			return nil, &ValidationError{Fields: map[string]string{
				"email": "Enter a valid email address.",
			}}
		}
		req.Email = &trimmed
	}

	var pictureURL *string
	if req.ProfilePicture != nil {
		url, err := s.files.Save("profiles", req.ProfilePicture.Filename, req.ProfilePicture.Content)
		if err != nil {
			if errors.Is(err, media.ErrUnsupportedImageType) {
				return nil, &ValidationError{Fields: map[string]string{
					"profile_picture": "Upload a valid image.",
				}}
			}
			return nil, err
		}
		pictureURL = &url
	}

	user, err := s.store.UpdateProfile(ctx, userID, req, pictureURL)
	if err != nil {
		if pictureURL != nil {
			s.files.Remove(*pictureURL)
		}
		if errors.Is(err, ErrEmailTaken) {
			return nil, &ValidationError{Fields: map[string]string{
				"email": "A user with that email already exists.",
			}}
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	followers, err := s.store.ListFollowerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	following, err := s.store.ListFollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, FollowerIDs: followers, FollowingIDs: following}, nil
}

// Follow adds a directed edge from the caller to the target user.
// Following yourself is rejected; following twice is a no-op.
func (s *Service) Follow(ctx context.Context, userID, targetID int64) error {
	if userID == targetID {
		return ErrCannotFollowSelf
	}

	target, err := s.store.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}

	inserted, err := s.store.Follow(ctx, userID, targetID)
	if err != nil {
		return err
	}

	if inserted && s.notifier != nil {
		actor, err := s.store.GetByID(ctx, userID)
		if err == nil && actor != nil {
			s.notifier.NotifyNewFollower(ctx, targetID, actor.ID, actor.Username)
		}
	}

	return nil
}

// Unfollow removes the directed edge from the caller to the target user
func (s *Service) Unfollow(ctx context.Context, userID, targetID int64) error {
	if userID == targetID {
		return ErrCannotFollowSelf
	}

	target, err := s.store.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}

	return s.store.Unfollow(ctx, userID, targetID)
}

// ListFollowers returns the IDs of users following the given user
func (s *Service) ListFollowers(ctx context.Context, userID int64) ([]int64, error) {
	if err := s.ensureExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListFollowerIDs(ctx, userID)
}

// ListFollowing returns the IDs of users the given user follows
func (s *Service) ListFollowing(ctx context.Context, userID int64) ([]int64, error) {
	if err := s.ensureExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListFollowingIDs(ctx, userID)
}

// Username resolves a user ID to its username
func (s *Service) Username(ctx context.Context, userID int64) (string, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	return user.Username, nil
}

func (s *Service) ensureExists(ctx context.Context, userID int64) error {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return nil
}
