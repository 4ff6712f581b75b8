package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/models"
)

// PublicationFilter narrows a news or article listing.
type PublicationFilter struct {
	Status        string
	PublishedOnly bool
	Search        string
	Page          int
	Limit         int
}

// PublicationRepository serves news items and articles.
type PublicationRepository[T any] struct {
	crud[T]
}

// NewNewsRepository constructs the news repository.
func NewNewsRepository(db *gorm.DB) *PublicationRepository[models.News] {
	return &PublicationRepository[models.News]{crud[models.News]{db: db}}
}

// NewArticleRepository constructs the article repository.
func NewArticleRepository(db *gorm.DB) *PublicationRepository[models.Article] {
	return &PublicationRepository[models.Article]{crud[models.Article]{db: db}}
}

// List returns one page of publications, newest first.
func (r *PublicationRepository[T]) List(ctx context.Context, f PublicationFilter) ([]T, int64, error) {
	query := r.db.WithContext(ctx).Model(new(T))
	if f.PublishedOnly {
		query = query.Where("status = ? AND published_at <= ?", models.PublicationPublished, time.Now())
	} else if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		query = query.Where("LOWER(title) LIKE ?"+likeEscape, containsPattern(f.Search))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if f.Page > 1 {
		offset = (f.Page - 1) * limit
	}

	var items []T
	if err := query.
		Order("published_at desc nulls last, created_at desc").
		Limit(limit).Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetBySlug loads a publication by slug. With publishedOnly, drafts and
// scheduled items are reported as not found.
func (r *PublicationRepository[T]) GetBySlug(ctx context.Context, slug string, publishedOnly bool) (*T, error) {
	query := r.db.WithContext(ctx).Where("slug = ?", slug)
	if publishedOnly {
		query = query.Where("status = ? AND published_at <= ?", models.PublicationPublished, time.Now())
	}
	item := new(T)
	if err := query.First(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *PublicationRepository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.get(ctx, id)
}

func (r *PublicationRepository[T]) Create(ctx context.Context, item *T) error {
	return r.create(ctx, item)
}

func (r *PublicationRepository[T]) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*T, error) {
	return r.update(ctx, id, updates)
}

func (r *PublicationRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.delete(ctx, id)
}

func (r *PublicationRepository[T]) Count(ctx context.Context) (int64, error) {
	return r.count(ctx)
}

// PublishedAt returns the stored publication date of id.
func (r *PublicationRepository[T]) PublishedAt(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	var row struct {
		PublishedAt *time.Time
	}
	res := r.db.WithContext(ctx).Model(new(T)).Select("published_at").Where("id = ?", id).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return row.PublishedAt, nil
}
