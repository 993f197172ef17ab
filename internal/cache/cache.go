package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is not cached (or expired).
var ErrMiss = errors.New("cache miss")

// Cache stores serialized analytics results keyed by string.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

var _ Cache = (*NoopCache)(nil)

// NoopCache never stores anything.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (NoopCache) Get(context.Context, string) ([]byte, error) {
	return nil, ErrMiss
}

func (NoopCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NoopCache) Delete(context.Context, string) error {
	return nil
}

func (NoopCache) Clear(context.Context) error {
	return nil
}
