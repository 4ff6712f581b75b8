package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/validation"
)

// UserPage is one page of the admin user table.
type UserPage struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
}

// UserService manages accounts on behalf of their owners and admins.
type UserService struct {
	repo  *repository.UserRepository
	cache *cache.Cache
}

// NewUserService constructs UserService.
func NewUserService(repo *repository.UserRepository, c *cache.Cache) *UserService {
	return &UserService{repo: repo, cache: c}
}

func (s *UserService) List(ctx context.Context, filter repository.UserFilter) (UserPage, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return UserPage{}, err
	}
	if users == nil {
		users = []models.User{}
	}
	return UserPage{Users: users, Total: total}, nil
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return cache.Remember(ctx, s.cache, cache.ItemTag(cache.TagUsers, id.String()), cache.Tags(cache.TagUsers, id.String()), func() (*models.User, error) {
		return s.repo.Get(ctx, id)
	})
}

// UpdateProfile applies a self-service profile edit.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, payload validation.ProfilePayload) (*models.User, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return s.update(ctx, id, payload.Updates())
}

// AdminUpdate applies an admin edit, including role and balance.
func (s *UserService) AdminUpdate(ctx context.Context, id uuid.UUID, payload validation.AdminUserPayload) (*models.User, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return s.update(ctx, id, payload.Updates())
}

func (s *UserService) update(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	user, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagUsers, id.String())
	return user, nil
}

// Delete removes an account and its listings. Admins cannot delete
// themselves.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if actor != nil && actor.ID == id {
		return validation.Errors{"you cannot delete your own account"}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.TagUsers, id.String())
	s.cache.Invalidate(ctx, cache.TagProducts, "")
	return nil
}

func (s *UserService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
