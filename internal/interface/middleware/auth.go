package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/pkg/apperr"
	"github.com/blogforge/blogforge/pkg/helpers"
	"github.com/blogforge/blogforge/pkg/response"
)

const CtxIdentityKey = "identity"

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

// RequireAuth verifies the bearer token and injects the embedded identity
// into the Gin context. A missing header is AUTH_MISSING; a bad or expired
// token is AUTH_INVALID. The credential store is not consulted, so the
// identity may be stale relative to role changes until the token expires.
func RequireAuth(tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Fail(c, apperr.New(apperr.AuthMissing, "no token provided"))
			c.Abort()
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Fail(c, apperr.New(apperr.AuthInvalid, "invalid token"))
			c.Abort()
			return
		}
		c.Set(CtxIdentityKey, claims.Identity())
		c.Next()
	}
}

// OptionalAuth behaves like RequireAuth but never aborts: a missing or
// invalid token leaves the caller anonymous.
func OptionalAuth(tokens *helpers.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := tokens.Parse(token); err == nil {
				c.Set(CtxIdentityKey, claims.Identity())
			}
		}
		c.Next()
	}
}

// IdentityFrom extracts the caller identity set by RequireAuth/OptionalAuth;
// absent or mistyped values yield the anonymous identity.
func IdentityFrom(c *gin.Context) entity.Identity {
	if v, ok := c.Get(CtxIdentityKey); ok {
		if ident, ok := v.(entity.Identity); ok {
			return ident
		}
	}
	return entity.Anonymous
}
