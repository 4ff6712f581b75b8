// Package cache memoises read results under named tags. A write busts the
// tags it affects; there is no TTL and no dependency tracking between tags.
package cache

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Entity tags. Every entity has a global tag covering list views and a
// per-id tag covering single-item views.
const (
	TagProducts     = "products"
	TagCategories   = "categories"
	TagSpecies      = "species"
	TagLaboratories = "laboratories"
	TagOrigins      = "origins"
	TagNews         = "news"
	TagArticles     = "articles"
	TagUsers        = "users"
	TagPoints       = "points"
)

// Store is a tag-aware key-value store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, tags []string) error
	InvalidateTags(ctx context.Context, tags ...string) error
}

// ItemTag returns the per-id tag of an entity.
func ItemTag(entity, id string) string {
	return entity + ":" + id
}

// Tags returns the global tag plus, when id is set, the per-id tag.
func Tags(entity, id string) []string {
	if id == "" {
		return []string{entity}
	}
	return []string{entity, ItemTag(entity, id)}
}

// Cache wraps a Store with logging. Backend failures never reach callers:
// reads fall through to the loader and failed invalidations are logged.
type Cache struct {
	store Store
	log   *zap.Logger
}

// New constructs a Cache over store.
func New(store Store, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{store: store, log: log}
}

// Invalidate busts the global tag of entity and, if id is non-empty,
// that item's tag.
func (c *Cache) Invalidate(ctx context.Context, entity, id string) {
	if c == nil {
		return
	}
	if err := c.store.InvalidateTags(ctx, Tags(entity, id)...); err != nil {
		c.log.Warn("cache invalidation failed",
			zap.String("entity", entity), zap.String("id", id), zap.Error(err))
	}
}

// Remember returns the cached value stored under key, or calls load, stores
// its result under tags and returns it. Load errors are never cached.
func Remember[T any](ctx context.Context, c *Cache, key string, tags []string, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}

	if raw, ok, err := c.store.Get(ctx, key); err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		c.log.Warn("cache entry undecodable", zap.String("key", key))
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := c.store.Set(ctx, key, raw, tags); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
