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

type PostHandler struct {
	Svc    *application.PostService
	Logger *logrus.Logger
}

func NewPostHandler(svc *application.PostService, logger *logrus.Logger) *PostHandler {
	return &PostHandler{Svc: svc, Logger: logger}
}

type createPostRequest struct {
	Title     string `json:"title" binding:"required"`
	Content   string `json:"content" binding:"required"`
	Published bool   `json:"published"`
}

// updatePostRequest carries partial updates; omitted fields keep their
// prior value.
type updatePostRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	Published *bool   `json:"published"`
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.Validation, "invalid id")
	}
	return id, nil
}

// List GET /api/posts — published posts for everyone, ?mine=true for the
// caller's own posts in any state.
func (h *PostHandler) List(c *gin.Context) {
	ident := middleware.IdentityFrom(c)
	mine := c.Query("mine") == "true"

	posts, err := h.Svc.List(c.Request.Context(), ident, mine)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, posts, "posts", gin.H{"count": len(posts)})
}

// Get GET /api/posts/:id — drafts visible only to owner and admins.
func (h *PostHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ident := middleware.IdentityFrom(c)

	post, comments, err := h.Svc.Get(c.Request.Context(), ident, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"post": post, "comments": comments}, "post", nil)
}

// Create POST /api/posts — draft by default.
func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ident := middleware.IdentityFrom(c)

	post, err := h.Svc.Create(c.Request.Context(), ident, application.CreatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, post, "post created", nil)
}

// Update PUT /api/posts/:id — owner only (admin per moderation policy).
func (h *PostHandler) Update(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ident := middleware.IdentityFrom(c)

	post, err := h.Svc.Update(c.Request.Context(), ident, id, application.UpdatePostInput{
		Title:     req.Title,
		Content:   req.Content,
		Published: req.Published,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, post, "post updated", nil)
}

// Delete DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
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
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "post deleted successfully", nil)
}

// Search GET /api/posts/search?q= — published posts via the search index.
func (h *PostHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		h.fail(c, apperr.New(apperr.Validation, "q is required"))
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.Search(c.Request.Context(), q, size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

func (h *PostHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.Internal && h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("post operation failed")
	}
	response.Fail(c, err)
}
