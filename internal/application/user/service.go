// Package user holds the thin profile operations the alert platform exposes:
// profile reads and the reporter image used by notification fan-out.
package user

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/alerta-api/internal/domain"
	"github.com/alerta-api/internal/pkg/id"
)

const (
	fieldImageKey  = "image_key"
	fieldUpdatedAt = "updated_at"
)

type Service interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	UploadImage(ctx context.Context, userID string, r io.Reader, contentType string) (string, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type service struct {
	users  userStore
	images objectStore
}

func NewService(users userStore, images objectStore) Service {
	return &service{users: users, images: images}
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

// UploadImage stores the image under a fresh key and records the key on the
// profile. Keys are never reused across uploads.
func (s *service) UploadImage(ctx context.Context, userID string, r io.Reader, contentType string) (string, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return "", err
	}
	key := "users/" + userID + "/" + id.New()
	url, err := s.images.Upload(ctx, key, r, contentType)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{
		fieldImageKey:  key,
		fieldUpdatedAt: time.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("record image key: %w", err)
	}
	return url, nil
}
