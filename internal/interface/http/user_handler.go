package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blogforge/blogforge/internal/application"
	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/internal/interface/middleware"
	"github.com/blogforge/blogforge/pkg/apperr"
	"github.com/blogforge/blogforge/pkg/response"
)

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func publicUser(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"role":       u.Role,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt,
	}
}

// Me GET /api/users/me — the caller's own record including email.
func (h *UserHandler) Me(c *gin.Context) {
	ident := middleware.IdentityFrom(c)
	u, err := h.Svc.Me(c.Request.Context(), ident)
	if err != nil {
		h.fail(c, err)
		return
	}
	body := publicUser(u)
	body["email"] = u.Email
	response.Success(c, http.StatusOK, body, "profile", nil)
}

// Get GET /api/users/:id — public fields only.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, publicUser(u), "user", nil)
}

// List GET /api/users — public fields only.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, publicUser(&users[i]))
	}
	response.Success(c, http.StatusOK, out, "users", gin.H{"count": len(out)})
}

// UploadAvatar POST /api/users/avatar — multipart image stored in GCS.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	ident := middleware.IdentityFrom(c)

	fh, err := c.FormFile("file")
	if err != nil {
		h.fail(c, apperr.New(apperr.Validation, "file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.Internal, "opening upload", err))
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), ident, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}

func (h *UserHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.Internal && h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("user operation failed")
	}
	response.Fail(c, err)
}
