package entity

import "time"

// Role is an authorization role stored on the user record and embedded in
// issued session tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the aggregate root for the credential store.
// Passwords are stored as bcrypt hashes in PasswordHash and never serialized.
type User struct {
	ID           int64
	Username     string
	Email        string // optional; empty means none supplied
	PasswordHash string
	Role         Role
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
