package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prudhivi99/Distributed-Systems/ecommerce-go/internal/cache"
)

// Cache is the subset of cache.RedisCache the cached repositories use.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Cached entries live under "<family>:v<generation>". A write bumps the
// generation of every family it touches, so a read that loaded its value
// before the write can only store it under a generation nobody reads anymore.

func generationKey(family string) string {
	return family + ":gen"
}

func versionedKey(family string, generation int64) string {
	return fmt.Sprintf("%s:v%d", family, generation)
}

// cacheGeneration returns the current generation of family. ok is false when
// the cache cannot be read; callers then bypass it entirely.
func cacheGeneration(ctx context.Context, c Cache, family string) (generation int64, ok bool) {
	err := c.Get(ctx, generationKey(family), &generation)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		slog.WarnContext(ctx, "⚠️ Cache error", "key", generationKey(family), "error", err)
		return 0, false
	}
	return generation, true
}

func bumpGenerations(ctx context.Context, c Cache, families ...string) {
	for _, family := range families {
		if _, err := c.Incr(ctx, generationKey(family)); err != nil {
			slog.WarnContext(ctx, "⚠️ Failed to invalidate cache", "family", family, "error", err)
			continue
		}
		slog.DebugContext(ctx, "🗑️ Cache invalidated", "family", family)
	}
}

// readThrough serves family from cache or calls load and caches its result
// when keep reports it worth keeping.
func readThrough[T any](ctx context.Context, c Cache, family string, load func(ctx context.Context) (T, error), keep func(T) bool) (T, error) {
	generation, ok := cacheGeneration(ctx, c, family)
	key := versionedKey(family, generation)

	if ok {
		var cached T
		if cacheLookup(ctx, c, key, &cached) {
			return cached, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if ok && keep(value) {
		cacheStore(ctx, c, key, value)
	}
	return value, nil
}

func always[T any](T) bool { return true }

func notNil[T any](v *T) bool { return v != nil }

// cacheLookup reports whether key was served from cache. Errors other than a
// miss are logged and treated as a miss so reads fall through to Postgres.
func cacheLookup(ctx context.Context, c Cache, key string, dest any) bool {
	err := c.Get(ctx, key, dest)
	if err == nil {
		slog.DebugContext(ctx, "📦 Cache HIT", "key", key)
		return true
	}

	if !errors.Is(err, cache.ErrMiss) {
		slog.WarnContext(ctx, "⚠️ Cache error", "key", key, "error", err)
	}
	slog.DebugContext(ctx, "💾 Cache MISS", "key", key)
	return false
}

func cacheStore(ctx context.Context, c Cache, key string, value any) {
	if err := c.Set(ctx, key, value); err != nil {
		slog.WarnContext(ctx, "⚠️ Failed to cache value", "key", key, "error", err)
	}
}
