package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blogforge/blogforge/internal/application"
	"github.com/blogforge/blogforge/internal/interface/middleware"
	"github.com/blogforge/blogforge/pkg/apperr"
	"github.com/blogforge/blogforge/pkg/response"
	"github.com/blogforge/blogforge/pkg/validation"
)

type CommentHandler struct {
	Svc    *application.CommentService
	Logger *logrus.Logger
}

func NewCommentHandler(svc *application.CommentService, logger *logrus.Logger) *CommentHandler {
	return &CommentHandler{Svc: svc, Logger: logger}
}

type createCommentRequest struct {
	Content  string `json:"content" binding:"required"`
	PostID   int64  `json:"postId" binding:"required,gt=0"`
	ParentID *int64 `json:"parentId" binding:"omitempty,gt=0"`
}

// List GET /api/comments?postId= — public; only comments on published posts.
func (h *CommentHandler) List(c *gin.Context) {
	var postID *int64
	if raw := c.Query("postId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.fail(c, apperr.New(apperr.Validation, "invalid postId"))
			return
		}
		postID = &id
	}

	comments, err := h.Svc.ListPublic(c.Request.Context(), postID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, comments, "comments", gin.H{"count": len(comments)})
}

// Get GET /api/comments/:id — public; a comment stays retrievable even if
// its post was later unpublished.
func (h *CommentHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	comment, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, comment, "comment", nil)
}

// Create POST /api/comments — authenticated; the target post must be
// published; parentId threads a single reply level.
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ident := middleware.IdentityFrom(c)

	comment, err := h.Svc.Create(c.Request.Context(), ident, application.CreateCommentInput{
		PostID:   req.PostID,
		Content:  req.Content,
		ParentID: req.ParentID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment, "comment created", nil)
}

// Delete DELETE /api/comments/:id — owner or admin.
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ident := middleware.IdentityFrom(c)

	if err := h.Svc.Delete(c.Request.Context(), ident, id); err != nil {
		h.fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "comment deleted", nil)
}

func (h *CommentHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.Internal && h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("comment operation failed")
	}
	response.Fail(c, err)
}
