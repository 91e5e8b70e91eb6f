package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrCacheMiss = errors.New("cache: key not found")

// Service defines cache operations.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)
	Expire(ctx context.Context, key string, expiration time.Duration) (bool, error)
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// ForecastKey builds the cache key for an area's forecast set.
func ForecastKey(area string, hours int) string {
	return fmt.Sprintf("forecast:%s:%d", area, hours)
}

// AreaPattern matches every cached forecast for an area.
func AreaPattern(area string) string {
	return fmt.Sprintf("forecast:%s:*", area)
}
