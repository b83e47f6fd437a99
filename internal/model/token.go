package model

import "time"

// Roles recognised by the session layer.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// SessionData contains the data stored with a session token.
type SessionData struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// User is a login account.
type User struct {
	ID           string `db:"id"`
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	Role         string `db:"role"`
}
