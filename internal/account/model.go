package account

import "time"

// User represents an account in the system. PasswordHash is a bcrypt
// hash and never leaves the process in any representation.
type User struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             *string   `json:"email"`
	PasswordHash      string    `json:"-"`
	Bio               *string   `json:"bio"`
	ProfilePictureURL *string   `json:"profile_picture"`
	CreatedAt         time.Time `json:"created_at"`
}

// Profile combines a user with the two derived views over the follow
// edge set: who follows them and who they follow.
type Profile struct {
	User         *User
	FollowerIDs  []int64
	FollowingIDs []int64
}
