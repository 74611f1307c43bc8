package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogforge/blogforge/internal/container"
	handlers "github.com/blogforge/blogforge/internal/interface/http"
	"github.com/blogforge/blogforge/internal/interface/middleware"
	"github.com/blogforge/blogforge/pkg/helpers"
)

// CommentModule wires comment routes.
// Public: GET /api/comments, GET /api/comments/:id
// Protected: POST /api/comments, DELETE /api/comments/:id
type CommentModule struct {
	Handler *handlers.CommentHandler
	Tokens  *helpers.TokenManager
}

func NewCommentModule(h *handlers.CommentHandler, tokens *helpers.TokenManager) *CommentModule {
	return &CommentModule{Handler: h, Tokens: tokens}
}

func (m *CommentModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/comments", readLimiter, m.Handler.List)
	rg.GET("/comments/:id", readLimiter, m.Handler.Get)

	auth := rg.Group("/comments")
	auth.Use(middleware.RequireAuth(m.Tokens))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", m.Handler.Create)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
