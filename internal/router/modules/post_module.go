package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogforge/blogforge/internal/container"
	handlers "github.com/blogforge/blogforge/internal/interface/http"
	"github.com/blogforge/blogforge/internal/interface/middleware"
	"github.com/blogforge/blogforge/pkg/helpers"
)

// PostModule wires post routes.
// Public (token optional): GET /api/posts, GET /api/posts/search,
// GET /api/posts/:id — drafts stay visible to their author through the
// optional token.
// Protected: POST /api/posts, PUT /api/posts/:id, DELETE /api/posts/:id.
type PostModule struct {
	Handler *handlers.PostHandler
	Tokens  *helpers.TokenManager
}

func NewPostModule(h *handlers.PostHandler, tokens *helpers.TokenManager) *PostModule {
	return &PostModule{Handler: h, Tokens: tokens}
}

func (m *PostModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	public := rg.Group("/posts")
	public.Use(middleware.OptionalAuth(m.Tokens), readLimiter)
	{
		public.GET("", m.Handler.List)
		public.GET("/search", m.Handler.Search)
		public.GET("/:id", m.Handler.Get)
	}

	auth := rg.Group("/posts")
	auth.Use(middleware.RequireAuth(m.Tokens))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", m.Handler.Create)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
