package cache

import (
	"context"
	"errors"
)

// Cache stores values of one kind under string ids.
type Cache[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Set(ctx context.Context, id string, value *T) error
	Delete(ctx context.Context, id string) error
}

var ErrCacheMiss = errors.New("cache miss")
