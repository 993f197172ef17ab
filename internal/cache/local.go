package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
)

const megabyte = 1024 * 1024

var _ Cache = (*LocalCache)(nil)

// LocalCache is an in-process cache backed by freecache.
type LocalCache struct {
	cache *freecache.Cache
}

func NewLocalCache(sizeMegabytes int) *LocalCache {
	if sizeMegabytes <= 0 {
		sizeMegabytes = 10
	}
	return &LocalCache{
		cache: freecache.NewCache(sizeMegabytes * megabyte),
	}
}

func (lc *LocalCache) Get(_ context.Context, key string) ([]byte, error) {
	value, err := lc.cache.Get([]byte(key))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("local cache get [%s]: %w", key, err)
	}
	return value, nil
}

func (lc *LocalCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	// freecache expiry is in whole seconds, 0 means no expiry
	expireSeconds := int(ttl.Seconds())
	if ttl > 0 && expireSeconds == 0 {
		expireSeconds = 1
	}
	if err := lc.cache.Set([]byte(key), value, expireSeconds); err != nil {
		return fmt.Errorf("local cache set [%s]: %w", key, err)
	}
	return nil
}

func (lc *LocalCache) Delete(_ context.Context, key string) error {
	lc.cache.Del([]byte(key))
	return nil
}

func (lc *LocalCache) Clear(context.Context) error {
	lc.cache.Clear()
	return nil
}
