package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/gemmarket/internal/cache"
	"github.com/example/gemmarket/internal/models"
	"github.com/example/gemmarket/internal/repository"
	"github.com/example/gemmarket/internal/validation"
)

// PublicationPage is one page of news items or articles.
type PublicationPage[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// PublicationService serves news items or articles. Published views are
// cached; the admin views read through.
type PublicationService[T any] struct {
	repo  *repository.PublicationRepository[T]
	cache *cache.Cache
	tag   string
	build func(models.Publication) *T
}

// NewNewsService constructs the news service.
func NewNewsService(repo *repository.PublicationRepository[models.News], c *cache.Cache) *PublicationService[models.News] {
	return &PublicationService[models.News]{
		repo:  repo,
		cache: c,
		tag:   cache.TagNews,
		build: func(p models.Publication) *models.News { return &models.News{Publication: p} },
	}
}

// NewArticleService constructs the article service.
func NewArticleService(repo *repository.PublicationRepository[models.Article], c *cache.Cache) *PublicationService[models.Article] {
	return &PublicationService[models.Article]{
		repo:  repo,
		cache: c,
		tag:   cache.TagArticles,
		build: func(p models.Publication) *models.Article { return &models.Article{Publication: p} },
	}
}

// ListPublished returns one page of published items.
func (s *PublicationService[T]) ListPublished(ctx context.Context, page, limit int) (PublicationPage[T], error) {
	key := fmt.Sprintf("%s:published:%d:%d", s.tag, page, limit)
	return cache.Remember(ctx, s.cache, key, cache.Tags(s.tag, ""), func() (PublicationPage[T], error) {
		return s.list(ctx, repository.PublicationFilter{PublishedOnly: true, Page: page, Limit: limit})
	})
}

// GetPublished loads a published item by slug.
func (s *PublicationService[T]) GetPublished(ctx context.Context, slug string) (*T, error) {
	key := s.tag + ":slug:" + slug
	return cache.Remember(ctx, s.cache, key, cache.Tags(s.tag, ""), func() (*T, error) {
		return s.repo.GetBySlug(ctx, slug, true)
	})
}

// List returns one page for the back office, drafts included.
func (s *PublicationService[T]) List(ctx context.Context, filter repository.PublicationFilter) (PublicationPage[T], error) {
	filter.PublishedOnly = false
	return s.list(ctx, filter)
}

func (s *PublicationService[T]) list(ctx context.Context, filter repository.PublicationFilter) (PublicationPage[T], error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return PublicationPage[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	return PublicationPage[T]{Items: items, Total: total}, nil
}

func (s *PublicationService[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return s.repo.Get(ctx, id)
}

func (s *PublicationService[T]) Create(ctx context.Context, payload validation.PublicationPayload) (*T, error) {
	if err := payload.ValidateCreate(); err != nil {
		return nil, err
	}
	item := s.build(payload.NewPublication())
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, s.tag, "")
	return item, nil
}

func (s *PublicationService[T]) Update(ctx context.Context, id uuid.UUID, payload validation.PublicationPayload) (*T, error) {
	if err := payload.ValidateUpdate(); err != nil {
		return nil, err
	}
	current, err := s.repo.PublishedAt(ctx, id)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.Update(ctx, id, payload.Updates(current))
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, s.tag, id.String())
	return item, nil
}

func (s *PublicationService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, s.tag, id.String())
	return nil
}

func (s *PublicationService[T]) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
