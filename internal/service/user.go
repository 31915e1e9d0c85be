package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mkrasnov/contactbook/internal/cache"
	"github.com/mkrasnov/contactbook/internal/logging"
	"github.com/mkrasnov/contactbook/internal/models"
	"github.com/mkrasnov/contactbook/internal/mykafka"
	"github.com/mkrasnov/contactbook/internal/repo"
	"github.com/mkrasnov/contactbook/internal/storage"
)

type UserService struct {
	Users    *repo.UserRepo
	Cache    cache.UserCache
	Avatars  storage.AvatarStore
	Producer *mykafka.Producer
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Users.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	return s.Users.List(ctx, offset, limit)
}

// UpdateAvatar forwards the image bytes to the object store, persists the
// returned URL and invalidates the user's cache entry so the next read sees
// the new value. Content-type validation happens at the HTTP layer.
func (s *UserService) UpdateAvatar(ctx context.Context, user *models.User, contentType string, data []byte) (*models.User, error) {
	key := fmt.Sprintf("avatars/%d/%s", user.ID, uuid.NewString())

	url, err := s.Avatars.Upload(ctx, key, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	updated, err := s.Users.UpdateAvatar(ctx, user.Email, url)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	if err := s.Cache.Delete(ctx, updated.Username); err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangeRole rewrites the role column and invalidates the target's cache
// entry, never updating the cached copy in place.
func (s *UserService) ChangeRole(ctx context.Context, id uint, role string) (*models.User, error) {
	updated, err := s.Users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	if err := s.Cache.Delete(ctx, updated.Username); err != nil {
		return nil, err
	}

	event := map[string]interface{}{
		"type":     "role_changed",
		"user_id":  updated.ID,
		"username": updated.Username,
		"role":     updated.Role,
	}
	if err := s.Producer.PublishEvent(ctx, userEventsTopic, fmt.Sprint(updated.ID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "type", "role_changed", "error", err)
	}

	return updated, nil
}
