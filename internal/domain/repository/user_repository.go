package repository

import "github.com/blogforge/blogforge/internal/domain/entity"

// UserRepository defines the credential-store operations.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id int64) (*entity.User, error)
	// GetByLogin resolves a user by username or email, first match wins.
	GetByLogin(usernameOrEmail string) (*entity.User, error)
	// Exists reports whether a user already holds the username or, when
	// email is non-empty, the email.
	Exists(username, email string) (bool, error)
	Update(u *entity.User) error
	List() ([]entity.User, error)
}
