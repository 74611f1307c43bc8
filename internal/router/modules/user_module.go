package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogforge/blogforge/internal/container"
	handlers "github.com/blogforge/blogforge/internal/interface/http"
	"github.com/blogforge/blogforge/internal/interface/middleware"
	"github.com/blogforge/blogforge/pkg/helpers"
)

// UserModule wires the user directory and profile routes; all require a
// verified token.
type UserModule struct {
	Handler *handlers.UserHandler
	Tokens  *helpers.TokenManager
}

func NewUserModule(h *handlers.UserHandler, tokens *helpers.TokenManager) *UserModule {
	return &UserModule{Handler: h, Tokens: tokens}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/users")
	auth.Use(middleware.RequireAuth(m.Tokens))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("", m.Handler.List)
		auth.GET("/me", m.Handler.Me)
		auth.GET("/:id", m.Handler.Get)
		auth.POST("/avatar", m.Handler.UploadAvatar)
	}
}
