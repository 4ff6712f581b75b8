package cache

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "gemmarket:cache:"
	redisTagPrefix = "gemmarket:tag:"
)

// RedisStore shares cache entries between processes. Each tag is a Redis
// set holding the keys registered under it.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis instance at url and verifies it.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, tags []string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+key, value, 0)
		for _, tag := range tags {
			pipe.SAdd(ctx, redisTagPrefix+tag, key)
		}
		return nil
	})
	return err
}

func (s *RedisStore) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		keys, err := s.client.SMembers(ctx, redisTagPrefix+tag).Result()
		if err != nil {
			return err
		}
		del := make([]string, 0, len(keys)+1)
		for _, key := range keys {
			del = append(del, redisKeyPrefix+key)
		}
		del = append(del, redisTagPrefix+tag)
		if err := s.client.Del(ctx, del...).Err(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
