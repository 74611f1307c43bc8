package router

import "github.com/gin-gonic/gin"

// Module is a feature area (auth, posts, comments, users) that knows how to
// mount its own routes under the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
