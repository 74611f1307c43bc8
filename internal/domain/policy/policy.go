// Package policy implements the access decision engine for posts and
// comments. Decide is a pure function over an identity, an action and a
// resource snapshot; it performs no I/O, so callers load the snapshot first
// (existence checks happen before any policy decision).
package policy

import (
	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/pkg/apperr"
)

type Action string

const (
	ReadPost      Action = "post:read"
	CreatePost    Action = "post:create"
	UpdatePost    Action = "post:update"
	DeletePost    Action = "post:delete"
	CreateComment Action = "comment:create"
	DeleteComment Action = "comment:delete"
)

// Snapshot is the resource state a decision is made against. OwnerID is the
// author of the post or comment; Published is the target post's publication
// state at decision time.
type Snapshot struct {
	OwnerID   int64
	Published bool
}

// Engine holds the deployment policy switches. Both default to the
// permissive owner-or-admin model.
type Engine struct {
	// PostAdminModeration lets admins update and delete any post, not just
	// their own.
	PostAdminModeration bool
	// CommentAdminDelete lets admins delete any comment.
	CommentAdminDelete bool
}

func NewEngine(postAdminModeration, commentAdminDelete bool) Engine {
	return Engine{
		PostAdminModeration: postAdminModeration,
		CommentAdminDelete:  commentAdminDelete,
	}
}

func Default() Engine {
	return Engine{PostAdminModeration: true, CommentAdminDelete: true}
}

// Decide returns nil on allow, or an apperr carrying the denial kind.
// Anonymous callers attempting authenticated-only actions get AUTH_MISSING
// so the API surface can answer 401 rather than 403.
func (e Engine) Decide(ident entity.Identity, action Action, snap Snapshot) error {
	switch action {
	case ReadPost:
		if snap.Published || (!ident.IsAnonymous() && ident.ID == snap.OwnerID) || ident.IsAdmin() {
			return nil
		}
		// Draft reads deny with 403 even for anonymous callers; the route is
		// public, the resource is just not visible.
		return apperr.New(apperr.Deny, "not authorized to view this post")

	case CreatePost:
		if ident.IsAnonymous() {
			return apperr.New(apperr.AuthMissing, "authentication required")
		}
		return nil

	case UpdatePost, DeletePost:
		if ident.IsAnonymous() {
			return apperr.New(apperr.AuthMissing, "authentication required")
		}
		if ident.ID == snap.OwnerID {
			return nil
		}
		if e.PostAdminModeration && ident.IsAdmin() {
			return nil
		}
		return apperr.New(apperr.Deny, "not authorized")

	case CreateComment:
		if ident.IsAnonymous() {
			return apperr.New(apperr.AuthMissing, "authentication required")
		}
		if !snap.Published {
			return apperr.New(apperr.InvalidTarget, "cannot comment on unpublished post")
		}
		return nil

	case DeleteComment:
		if ident.IsAnonymous() {
			return apperr.New(apperr.AuthMissing, "authentication required")
		}
		if ident.ID == snap.OwnerID {
			return nil
		}
		if e.CommentAdminDelete && ident.IsAdmin() {
			return nil
		}
		return apperr.New(apperr.Deny, "not authorized")
	}

	return apperr.Newf(apperr.Internal, "unknown action %q", action)
}
