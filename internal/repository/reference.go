package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/gemmarket/internal/models"
)

// ReferenceRepository serves entities that products point at through a
// single nullable column, laboratories and origins.
type ReferenceRepository[T any] struct {
	crud[T]
	productColumn string
}

// NewLaboratoryRepository constructs the laboratory repository.
func NewLaboratoryRepository(db *gorm.DB) *ReferenceRepository[models.Laboratory] {
	return &ReferenceRepository[models.Laboratory]{crud: crud[models.Laboratory]{db: db}, productColumn: "laboratory_id"}
}

// NewOriginRepository constructs the origin repository.
func NewOriginRepository(db *gorm.DB) *ReferenceRepository[models.Origin] {
	return &ReferenceRepository[models.Origin]{crud: crud[models.Origin]{db: db}, productColumn: "origin_id"}
}

func (r *ReferenceRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.list(ctx, "name asc")
}

func (r *ReferenceRepository[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	return r.get(ctx, id)
}

func (r *ReferenceRepository[T]) Create(ctx context.Context, item *T) error {
	return r.create(ctx, item)
}

func (r *ReferenceRepository[T]) Update(ctx context.Context, id uuid.UUID, updates map[string]any) (*T, error) {
	return r.update(ctx, id, updates)
}

// Delete clears the product reference before removing the row.
func (r *ReferenceRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.get(ctx, id); err != nil {
		return err
	}
	if err := nullOut(ctx, r.db, "products", r.productColumn, id); err != nil {
		return err
	}
	return r.delete(ctx, id)
}

func (r *ReferenceRepository[T]) Count(ctx context.Context) (int64, error) {
	return r.count(ctx)
}
