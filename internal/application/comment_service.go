package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/internal/domain/policy"
	"github.com/blogforge/blogforge/internal/domain/repository"
	"github.com/blogforge/blogforge/pkg/apperr"
)

// CommentService governs comment creation, listing and deletion. A comment
// may only be created against a post that is published at that instant;
// once created it survives a later unpublish.
type CommentService struct {
	Comments repository.CommentRepository
	Posts    repository.PostRepository
	Policy   policy.Engine
	Logger   *logrus.Logger
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, pol policy.Engine, logger *logrus.Logger) *CommentService {
	return &CommentService{Comments: comments, Posts: posts, Policy: pol, Logger: logger}
}

// ListPublic returns comments on published posts, optionally filtered by
// post. When a post filter is given the post must exist; an unpublished
// post yields an empty result rather than an error.
func (s *CommentService) ListPublic(ctx context.Context, postID *int64) ([]entity.Comment, error) {
	if postID != nil {
		if _, err := s.Posts.GetByID(*postID); err != nil {
			return nil, err
		}
	}
	comments, err := s.Comments.ListPublic(postID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "listing comments", err)
	}
	if comments == nil {
		comments = []entity.Comment{}
	}
	return comments, nil
}

// Get returns a single comment by id regardless of the target post's
// current publication state.
func (s *CommentService) Get(ctx context.Context, id int64) (*entity.Comment, error) {
	return s.Comments.GetByID(id)
}

type CreateCommentInput struct {
	PostID   int64
	Content  string
	ParentID *int64
}

func (s *CommentService) Create(ctx context.Context, ident entity.Identity, in CreateCommentInput) (*entity.Comment, error) {
	if strings.TrimSpace(in.Content) == "" || in.PostID == 0 {
		return nil, apperr.New(apperr.Validation, "content and postId are required")
	}

	p, err := s.Posts.GetByID(in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Decide(ident, policy.CreateComment, policy.Snapshot{OwnerID: p.AuthorID, Published: p.Published}); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.Comments.GetByID(*in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, apperr.New(apperr.InvalidTarget, "parent comment belongs to another post")
		}
		// One reply level: replies to replies are refused rather than
		// silently re-parented.
		if parent.ParentID != nil {
			return nil, apperr.New(apperr.InvalidTarget, "cannot reply to a reply")
		}
	}

	c := &entity.Comment{
		Content:        in.Content,
		PostID:         in.PostID,
		UserID:         ident.ID,
		AuthorUsername: ident.Username,
		ParentID:       in.ParentID,
	}
	if err := s.Comments.Create(c); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "creating comment", err)
	}
	return c, nil
}

func (s *CommentService) Delete(ctx context.Context, ident entity.Identity, id int64) error {
	c, err := s.Comments.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.Policy.Decide(ident, policy.DeleteComment, policy.Snapshot{OwnerID: c.UserID}); err != nil {
		return err
	}
	if err := s.Comments.Delete(id); err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return err
		}
		return apperr.Wrap(apperr.Internal, "deleting comment", err)
	}
	return nil
}
