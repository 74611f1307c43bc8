package repository

import "github.com/blogforge/blogforge/internal/domain/entity"

// PostRepository defines the content-store operations for posts.
type PostRepository interface {
	Create(p *entity.Post) error
	GetByID(id int64) (*entity.Post, error)
	// ListPublished returns published posts, newest first.
	ListPublished() ([]entity.Post, error)
	// ListByAuthor returns all of an author's posts regardless of state.
	ListByAuthor(authorID int64) ([]entity.Post, error)
	Update(p *entity.Post) error
	Delete(id int64) error
}
