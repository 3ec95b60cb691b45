package auth

import "time"

// Token is an opaque bearer credential tied to exactly one user.
// A user keeps the same token for the lifetime of the account; tokens
// are never rotated or expired.
type Token struct {
	Value     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
