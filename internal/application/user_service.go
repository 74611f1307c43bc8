package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/blogforge/blogforge/internal/domain/entity"
	"github.com/blogforge/blogforge/internal/domain/repository"
	"github.com/blogforge/blogforge/pkg/apperr"
	"github.com/blogforge/blogforge/pkg/helpers"
)

// UserService exposes user directory reads and avatar uploads. Only public
// fields are returned for foreign users.
type UserService struct {
	Repo      repository.UserRepository
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewUserService(repo repository.UserRepository, gcs *storage.Client, gcsBucket string, logger *logrus.Logger) *UserService {
	return &UserService{Repo: repo, GCS: gcs, GCSBucket: gcsBucket, Logger: logger}
}

// Me returns the caller's own record, re-read from the store.
func (s *UserService) Me(ctx context.Context, ident entity.Identity) (*entity.User, error) {
	if ident.IsAnonymous() {
		return nil, apperr.New(apperr.AuthMissing, "authentication required")
	}
	return s.Repo.GetByID(ident.ID)
}

// Get returns the public view of a user.
func (s *UserService) Get(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	// public fields only
	u.Email = ""
	u.PasswordHash = ""
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]entity.User, error) {
	users, err := s.Repo.List()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "listing users", err)
	}
	return users, nil
}

// UploadAvatar stores the image in GCS and records its public URL.
func (s *UserService) UploadAvatar(ctx context.Context, ident entity.Identity, r io.Reader, filename, contentType string) (string, error) {
	if ident.IsAnonymous() {
		return "", apperr.New(apperr.AuthMissing, "authentication required")
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", apperr.Wrap(apperr.Internal, "avatar storage unavailable", errors.New("gcs not configured"))
	}

	u, err := s.Repo.GetByID(ident.ID)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", u.Username, id+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "uploading avatar", err)
	}

	u.AvatarURL = url
	if err := s.Repo.Update(u); err != nil {
		return "", apperr.Wrap(apperr.Internal, "saving avatar url", err)
	}
	return url, nil
}
