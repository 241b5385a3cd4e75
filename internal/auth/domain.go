package auth

import "time"

// User represents an authenticated desk account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	Company      string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is what the client learns about the signed-in user.
type Identity struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Company   string `json:"company"`
	CSRFToken string `json:"csrf_token,omitempty"`
}
