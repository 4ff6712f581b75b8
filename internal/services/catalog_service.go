package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/validation"
)

type referenceStore[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, item *T) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// ReferenceService serves species, laboratories and origins through the
// cache. Every mutation busts the entity tag.
type ReferenceService[T any] struct {
	repo  referenceStore[T]
	cache *cache.Cache
	tag   string
}

// NewSpeciesService constructs the species service.
func NewSpeciesService(repo *repository.SpeciesRepository, c *cache.Cache) *ReferenceService[models.Species] {
	return &ReferenceService[models.Species]{repo: repo, cache: c, tag: cache.TagSpecies}
}

// NewLaboratoryService constructs the laboratory service.
func NewLaboratoryService(repo *repository.ReferenceRepository[models.Laboratory], c *cache.Cache) *ReferenceService[models.Laboratory] {
	return &ReferenceService[models.Laboratory]{repo: repo, cache: c, tag: cache.TagLaboratories}
}

// NewOriginService constructs the origin service.
func NewOriginService(repo *repository.ReferenceRepository[models.Origin], c *cache.Cache) *ReferenceService[models.Origin] {
	return &ReferenceService[models.Origin]{repo: repo, cache: c, tag: cache.TagOrigins}
}

func (s *ReferenceService[T]) List(ctx context.Context) ([]T, error) {
	return cache.Remember(ctx, s.cache, s.tag+":list", cache.Tags(s.tag, ""), func() ([]T, error) {
		return s.repo.List(ctx)
	})
}

func (s *ReferenceService[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return cache.Remember(ctx, s.cache, cache.ItemTag(s.tag, id.String()), cache.Tags(s.tag, id.String()), func() (*T, error) {
		return s.repo.Get(ctx, id)
	})
}

func (s *ReferenceService[T]) Create(ctx context.Context, item *T) error {
	if err := s.repo.Create(ctx, item); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, s.tag, "")
	return nil
}

func (s *ReferenceService[T]) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*T, error) {
	item, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, s.tag, id.String())
	return item, nil
}

func (s *ReferenceService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, s.tag, id.String())
	return nil
}

func (s *ReferenceService[T]) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// CategoryService serves the category tree.
type CategoryService struct {
	repo  *repository.CategoryRepository
	cache *cache.Cache
}

// NewCategoryService constructs CategoryService.
func NewCategoryService(repo *repository.CategoryRepository, c *cache.Cache) *CategoryService {
	return &CategoryService{repo: repo, cache: c}
}

// Tree returns root categories with nested children.
func (s *CategoryService) Tree(ctx context.Context) ([]models.Category, error) {
	return cache.Remember(ctx, s.cache, "categories:tree", cache.Tags(cache.TagCategories, ""), func() ([]models.Category, error) {
		categories, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		return repository.BuildTree(categories), nil
	})
}

// List returns every category as a flat list.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return cache.Remember(ctx, s.cache, "categories:list", cache.Tags(cache.TagCategories, ""), func() ([]models.Category, error) {
		return s.repo.List(ctx)
	})
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return cache.Remember(ctx, s.cache, cache.ItemTag(cache.TagCategories, id.String()), cache.Tags(cache.TagCategories, id.String()), func() (*models.Category, error) {
		return s.repo.Get(ctx, id)
	})
}

func (s *CategoryService) Create(ctx context.Context, payload validation.CategoryPayload) (*models.Category, error) {
	if err := payload.ValidateCreate(); err != nil {
		return nil, err
	}
	category := payload.NewCategory()
	var speciesIDs []uuid.UUID
	if payload.SpeciesIDs != nil {
		speciesIDs = *payload.SpeciesIDs
	}
	created, err := s.repo.Create(ctx, &category, speciesIDs)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagCategories, "")
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, payload validation.CategoryPayload) (*models.Category, error) {
	if err := payload.ValidateUpdate(id); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, payload.Updates(), payload.SpeciesIDs)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagCategories, id.String())
	return updated, nil
}

// ReplaceSpecies sets the species allowed under a category.
func (s *CategoryService) ReplaceSpecies(ctx context.Context, id uuid.UUID, speciesIDs []uuid.UUID) (*models.Category, error) {
	if err := s.repo.ReplaceSpecies(ctx, id, speciesIDs); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cache.TagCategories, id.String())
	return s.repo.Get(ctx, id)
}

// Delete removes a category. Cached product views keep the old category
// until the products tag is busted by a product write.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.TagCategories, id.String())
	return nil
}

func (s *CategoryService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
