// Package cache is the read-through cache every read path goes through.
//
// Cached values are grouped by tags: a broad tag per entity class
// ("groups"), a narrow tag per instance ("group:<id>") and actor-scoped tags
// ("groups:<userID>"). Write paths invalidate tags, never individual keys.
// The cache is never a source of truth: any cache failure falls back to the
// loader.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
)

// Cache stores JSON-encoded values under keys with attached tags
type Cache interface {
	// Get decodes the value at key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set stores value at key for ttl and attaches it to tags
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error
	// Invalidate drops every key attached to any of tags and advances the
	// generation
	Invalidate(ctx context.Context, tags ...string) error
	// Generation returns a counter advanced by every Invalidate
	Generation(ctx context.Context) (uint64, error)
	// SetIfGeneration stores like Set unless an invalidation happened since
	// gen was read, and reports whether it stored the value
	SetIfGeneration(ctx context.Context, gen uint64, key string, value interface{}, ttl time.Duration, tags ...string) (bool, error)
}

// Remember returns the cached value at key, or calls load and caches its
// result. Cache errors are logged and bypassed.
//
// A load that overlaps an invalidation may have read the state the
// invalidation was meant to evict, so its result is returned but not cached.
func Remember[T any](ctx context.Context, c Cache, key string, ttl time.Duration, tags []string, load func() (T, error)) (T, error) {
	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		log.Printf("cache get %s: %v", key, err)
	}
	if found && err == nil {
		return cached, nil
	}

	gen, genErr := c.Generation(ctx)
	if genErr != nil {
		log.Printf("cache generation %s: %v", key, genErr)
	}

	value, err := load()
	if err != nil || genErr != nil {
		return value, err
	}
	if _, err := c.SetIfGeneration(ctx, gen, key, value, ttl, tags...); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
	return value, nil
}

// Bust invalidates tags, logging instead of failing the write that triggered it
func Bust(ctx context.Context, c Cache, tags ...string) {
	if len(tags) == 0 {
		return
	}
	if err := c.Invalidate(ctx, tags...); err != nil {
		log.Printf("cache invalidate %v: %v", tags, err)
	}
}

// Key joins parts into a cache key
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

func encode(value interface{}) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache value: %w", err)
	}
	return data, nil
}

func decode(data []byte, dest interface{}) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode cache value: %w", err)
	}
	return nil
}
