package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/blogforge/blogforge/internal/application"
	"github.com/blogforge/blogforge/pkg/apperr"
	"github.com/blogforge/blogforge/pkg/response"
	"github.com/blogforge/blogforge/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,pwd"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
	Password        string `json:"password" binding:"required"`
}

func sessionBody(s *application.Session) gin.H {
	return gin.H{
		"user":  s.Identity,
		"token": s.Token,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	sess, err := h.Svc.Register(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, sessionBody(sess), "user registered successfully",
		gin.H{"expires_at": sess.ExpiresAt})
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	sess, err := h.Svc.Login(c.Request.Context(), req.UsernameOrEmail, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sessionBody(sess), "login successful",
		gin.H{"expires_at": sess.ExpiresAt})
}

func (h *AuthHandler) fail(c *gin.Context, err error) {
	if apperr.KindOf(err) == apperr.Internal && h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("auth operation failed")
	}
	response.Fail(c, err)
}
