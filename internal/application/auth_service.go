package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/internal/domain/repository"
	"github.com/blogforge/blogforge/pkg/apperr"
	"github.com/blogforge/blogforge/pkg/helpers"
	"github.com/blogforge/blogforge/pkg/mailer"
)

// AuthService validates credentials and mints session tokens. Tokens are
// stateless; nothing is persisted per session and logout is a client-side
// discard.
type AuthService struct {
	Repo   repository.UserRepository
	Tokens *helpers.TokenManager
	Logger *logrus.Logger
	Pub    *helpers.RabbitPublisher // optional welcome-email queue
}

func NewAuthService(repo repository.UserRepository, tokens *helpers.TokenManager, logger *logrus.Logger, pub *helpers.RabbitPublisher) *AuthService {
	return &AuthService{Repo: repo, Tokens: tokens, Logger: logger, Pub: pub}
}

// Session is the result of a successful login or registration.
type Session struct {
	Identity  entity.Identity
	Token     string
	ExpiresAt time.Time
}

// Register creates a user with the default USER role and issues a session
// for it. Username and email uniqueness are both enforced.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*Session, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "username and password are required")
	}

	taken, err := s.Repo.Exists(username, email)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "checking existing users", err)
	}
	if taken {
		return nil, apperr.New(apperr.Conflict, "user already exists")
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "hashing password", err)
	}

	u := &entity.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleUser,
	}
	if err := s.Repo.Create(u); err != nil {
		// A concurrent registration can still race past Exists; the unique
		// index reports it as a conflict.
		if apperr.IsKind(err, apperr.Conflict) {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.Internal, "creating user", err)
	}

	s.publishWelcome(ctx, u)

	return s.issue(u)
}

// Login resolves a user by username or email and verifies the password.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*Session, error) {
	if usernameOrEmail == "" || password == "" {
		return nil, apperr.New(apperr.Validation, "username/email and password are required")
	}

	u, err := s.Repo.GetByLogin(usernameOrEmail)
	if err != nil || u == nil {
		return nil, apperr.New(apperr.AuthInvalid, "invalid credentials")
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, apperr.New(apperr.AuthInvalid, "invalid credentials")
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *entity.User) (*Session, error) {
	token, exp, err := s.Tokens.Issue(u)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue session token failed")
		}
		return nil, apperr.Wrap(apperr.Internal, "issuing token", err)
	}
	return &Session{
		Identity: entity.Identity{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		},
		Token:     token,
		ExpiresAt: exp,
	}, nil
}

func (s *AuthService) publishWelcome(ctx context.Context, u *entity.User) {
	if s.Pub == nil || u.Email == "" {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: "welcome",
		Data:     map[string]any{"Username": u.Username},
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Pub.PublishJSON(c, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("publish welcome email failed")
	}
}
