package repository

import "github.com/blogforge/blogforge/internal/domain/entity"

// CommentRepository defines the content-store operations for comments.
type CommentRepository interface {
	Create(c *entity.Comment) error
	GetByID(id int64) (*entity.Comment, error)
	// ListByPost returns every comment on the post, newest first,
	// regardless of the post's publication state.
	ListByPost(postID int64) ([]entity.Comment, error)
	// ListPublic returns comments whose target post is currently published,
	// optionally filtered to a single post.
	ListPublic(postID *int64) ([]entity.Comment, error)
	Delete(id int64) error
}
