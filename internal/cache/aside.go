package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"rizq/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// GetJSON decodes the value at key into dest. It reports false on a miss.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	raw, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value at key as JSON with ttl.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}

// Aside returns the cached value at key, or calls fetch and caches its result.
// Cache failures are logged and never fail the call; a nil client always fetches.
func Aside[T any](ctx context.Context, rdb *redis.Client, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	if rdb == nil {
		return fetch(ctx)
	}

	var cached T
	hit, err := GetJSON(ctx, rdb, key, &cached)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	} else if hit {
		return cached, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		return value, err
	}
	if err := SetJSON(ctx, rdb, key, value, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return value, nil
}
