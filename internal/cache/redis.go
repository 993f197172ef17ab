package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

var _ Cache = (*RedisCache)(nil)

// RedisCache shares cached results between service instances.
// All keys are namespaced with prefix so Clear only touches our own keys.
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

func NewRedisCache(client redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

func (rc *RedisCache) key(k string) string {
	return fmt.Sprintf("%s::%s", rc.prefix, k)
}

func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := rc.client.Get(ctx, rc.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get [%s]: %w", key, err)
	}
	return val, nil
}

func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := rc.client.Set(ctx, rc.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set [%s]: %w", key, err)
	}
	return nil
}

func (rc *RedisCache) Delete(ctx context.Context, key string) error {
	if err := rc.client.Del(ctx, rc.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del [%s]: %w", key, err)
	}
	return nil
}

func (rc *RedisCache) Clear(ctx context.Context) error {
	keys, err := rc.client.Keys(ctx, rc.prefix+"::*").Result()
	if err != nil {
		return fmt.Errorf("redis keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del keys: %w", err)
	}
	log.Debugf("redis cache: cleared %d keys with prefix [%s]", len(keys), rc.prefix)
	return nil
}
