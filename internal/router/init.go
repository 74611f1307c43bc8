package router

import (
	"github.com/blogforge/blogforge/internal/application"
	"github.com/blogforge/blogforge/internal/container"
	"github.com/blogforge/blogforge/internal/domain/policy"
	pginfra "github.com/blogforge/blogforge/internal/infrastructure/postgres"
	handlers "github.com/blogforge/blogforge/internal/interface/http"
	"github.com/blogforge/blogforge/internal/router/modules"
)

// InitModules builds repositories, services and handlers from the container
// singletons and registers every feature module with the router registry.
// Call once during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	tokens := container.GetTokens()

	pol := policy.NewEngine(cfg.PostAdminModeration, cfg.CommentAdminDelete)

	users := pginfra.NewUserRepository(pool)
	posts := pginfra.NewPostRepository(pool)
	comments := pginfra.NewCommentRepository(pool)

	authSvc := application.NewAuthService(users, tokens, logger, container.GetRabbitPub())
	postSvc := application.NewPostService(posts, comments, pol, container.GetRedis(), logger, container.GetES(), cfg.ESPostsIndex)
	commentSvc := application.NewCommentService(comments, posts, pol, logger)
	userSvc := application.NewUserService(users, container.GetGCS(), cfg.GCSBucket, logger)

	r.Add(modules.NewAuthModule(handlers.NewAuthHandler(authSvc, logger)))
	r.Add(modules.NewPostModule(handlers.NewPostHandler(postSvc, logger), tokens))
	r.Add(modules.NewCommentModule(handlers.NewCommentHandler(commentSvc, logger), tokens))
	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), tokens))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
