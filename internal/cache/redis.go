package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisCache keys entries as "<prefix>:<id>".
func NewRedisCache[T any](client *redis.Client, prefix string) *RedisCache[T] {
	return &RedisCache[T]{
		client:  client,
		prefix:  prefix,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache[T any] struct {
	client  *redis.Client
	prefix  string
	baseTTL time.Duration
}

func (r *RedisCache[T]) Get(ctx context.Context, id string) (*T, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("unmarshal %s failed: %w", r.prefix, err)
	}
	return &value, nil
}

// Set adds up to five minutes of jitter so entries written together do not
// expire together.
func (r *RedisCache[T]) Set(ctx context.Context, id string, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", r.prefix, err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, r.key(id), data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache[T]) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache[T]) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}
