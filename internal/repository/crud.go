// Package repository holds one data-access type per entity.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidReference reports a foreign key pointing at a missing row.
var ErrInvalidReference = errors.New("referenced record does not exist")

// crud implements the operations shared by the simple reference entities.
type crud[T any] struct {
	db *gorm.DB
}

func (c crud[T]) list(ctx context.Context, order string) ([]T, error) {
	var items []T
	if err := c.db.WithContext(ctx).Order(order).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (c crud[T]) get(ctx context.Context, id uuid.UUID) (*T, error) {
	item := new(T)
	if err := c.db.WithContext(ctx).First(item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (c crud[T]) create(ctx context.Context, item *T) error {
	return c.db.WithContext(ctx).Create(item).Error
}

// update applies a partial update and returns the stored row.
func (c crud[T]) update(ctx context.Context, id uuid.UUID, updates map[string]any) (*T, error) {
	if len(updates) > 0 {
		res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return c.get(ctx, id)
}

func (c crud[T]) delete(ctx context.Context, id uuid.UUID) error {
	res := c.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (c crud[T]) count(ctx context.Context) (int64, error) {
	var total int64
	err := c.db.WithContext(ctx).Model(new(T)).Count(&total).Error
	return total, err
}

// nullOut clears a foreign key column on every row referencing id.
func nullOut(ctx context.Context, db *gorm.DB, table, column string, id uuid.UUID) error {
	err := db.WithContext(ctx).Table(table).
		Where(column+" = ?", id).
		Update(column, nil).Error
	if err != nil {
		return fmt.Errorf("clear %s.%s: %w", table, column, err)
	}
	return nil
}

// ensureExists returns ErrInvalidReference when id is set but no row of
// model has it.
func ensureExists(ctx context.Context, db *gorm.DB, model any, id *uuid.UUID, field string) error {
	if id == nil {
		return nil
	}
	var total int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", *id).Count(&total).Error; err != nil {
		return err
	}
	if total == 0 {
		return fmt.Errorf("%s: %w", field, ErrInvalidReference)
	}
	return nil
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, case-insensitively
// and with its wildcards taken literally. Pair it with likeEscape.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(lower(s)) + "%"
}

const likeEscape = ` ESCAPE '\'`
