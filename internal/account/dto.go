package account

import "io"

// FileUpload carries an uploaded image from the handler to the service
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// RegisterRequest represents the request body for registration.
// ProfilePicture is only populated from multipart requests.
type RegisterRequest struct {
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Password       string      `json:"password"`
	Bio            *string     `json:"bio,omitempty"`
	ProfilePicture *FileUpload `json:"-"`
}

// LoginRequest represents the request body for login; either username
// or email identifies the account.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest represents a partial profile update. Username
// and password are not mutable through this path.
type UpdateProfileRequest struct {
	Bio            *string     `json:"bio,omitempty"`
	Email          *string     `json:"email,omitempty"`
	ProfilePicture *FileUpload `json:"-"`
}

// ProfileResponse is the outbound representation of the caller's account
type ProfileResponse struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Email          *string `json:"email"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
	Followers      []int64 `json:"followers"`
	Following      []int64 `json:"following"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
	CreatedAt      string  `json:"created_at"`
}

// UserResponse is the public representation of another user's account
type UserResponse struct {
	ID             int64   `json:"id"`
	Username       string  `json:"username"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profile_picture"`
	FollowersCount int     `json:"followers_count"`
	FollowingCount int     `json:"following_count"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token string           `json:"token"`
	User  *ProfileResponse `json:"user"`
}

// ToResponse converts a Profile to a ProfileResponse DTO
func (p *Profile) ToResponse() *ProfileResponse {
	followers := p.FollowerIDs
	if followers == nil {
		followers = []int64{}
	}
	following := p.FollowingIDs
	if following == nil {
		following = []int64{}
	}

	return &ProfileResponse{
		ID:             p.User.ID,
		Username:       p.User.Username,
		Email:          p.User.Email,
		Bio:            p.User.Bio,
		ProfilePicture: p.User.ProfilePictureURL,
		Followers:      followers,
		Following:      following,
		FollowersCount: len(followers),
		FollowingCount: len(following),
		CreatedAt:      p.User.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToUserResponse converts a Profile to the public UserResponse DTO
func (p *Profile) ToUserResponse() *UserResponse {
	return &UserResponse{
		ID:             p.User.ID,
		Username:       p.User.Username,
		Bio:            p.User.Bio,
		ProfilePicture: p.User.ProfilePictureURL,
		FollowersCount: len(p.FollowerIDs),
		FollowingCount: len(p.FollowingIDs),
	}
}
