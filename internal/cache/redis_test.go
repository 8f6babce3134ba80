package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), srv.Addr())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { client.Close() })
	return NewRedis(client, "test:"), srv
}

func TestRedis(t *testing.T) {
	c, _ := newTestRedis(t)
	exercise(t, c)
}

func TestRedisExpiry(t *testing.T) {
	c, srv := newTestRedis(t)
	ctx := context.Background()
	if err := c.Set(ctx, "user:u-1", "Alice", time.Minute, "users", "user:u-1"); err != nil {
		t.Fatal(err)
	}
	if ttl := srv.TTL("test:val:user:u-1"); ttl != time.Minute {
		t.Errorf("value ttl = %s", ttl)
	}
	if ttl := srv.TTL("test:tag:users"); ttl != tagTTL {
		t.Errorf("tag ttl = %s", ttl)
	}

	srv.FastForward(2 * time.Minute)
	var name string
	if found, err := c.Get(ctx, "user:u-1", &name); err != nil || found {
		t.Fatalf("Get after expiry = %v, %v", found, err)
	}
}

func TestRedisUnreachable(t *testing.T) {
	if _, err := NewRedisClient(context.Background(), "127.0.0.1:1"); err == nil {
		t.Fatal("expected ping failure")
	}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	c := NewRedis(client, "")
	var v int
	if _, err := c.Get(context.Background(), "k", &v); err == nil {
		t.Error("Get on unreachable redis returned no error")
	}
}

func TestRedisInvalidateDropsTagsAndAdvancesGeneration(t *testing.T) {
	c, srv := newTestRedis(t)
	ctx := context.Background()
	if err := c.Set(ctx, "group:1", point{1, 2}, time.Minute, "groups", "group:1"); err != nil {
		t.Fatal(err)
	}
	before, err := c.Generation(ctx)
	if err != nil || before != 0 {
		t.Fatalf("Generation = %d, %v", before, err)
	}

	if err := c.Invalidate(ctx, "groups", "nothing-here"); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"test:val:group:1", "test:tag:groups"} {
		if srv.Exists(key) {
			t.Errorf("%s survived invalidation", key)
		}
	}
	if !srv.Exists("test:tag:group:1") {
		t.Error("untouched tag set was dropped")
	}
	if after, _ := c.Generation(ctx); after != before+1 {
		t.Errorf("generation = %d, want %d", after, before+1)
	}
}

func TestRedisSetIfGeneration(t *testing.T) {
	c, srv := newTestRedis(t)
	ctx := context.Background()
	gen, _ := c.Generation(ctx)

	stored, err := c.SetIfGeneration(ctx, gen, "job:1", "Barista", time.Minute, "jobs")
	if err != nil || !stored {
		t.Fatalf("SetIfGeneration = %v, %v", stored, err)
	}
	if ttl := srv.TTL("test:val:job:1"); ttl != time.Minute {
		t.Errorf("value ttl = %s", ttl)
	}
	if ttl := srv.TTL("test:tag:jobs"); ttl != tagTTL {
		t.Errorf("tag ttl = %s", ttl)
	}

	if err := c.Invalidate(ctx, "users"); err != nil {
		t.Fatal(err)
	}
	stored, err = c.SetIfGeneration(ctx, gen, "job:2", "Cook", time.Minute, "jobs")
	if err != nil || stored {
		t.Fatalf("stale SetIfGeneration = %v, %v", stored, err)
	}
	if srv.Exists("test:val:job:2") {
		t.Error("stale value was written")
	}
}

func TestRedisRememberAcrossInvalidation(t *testing.T) {
	c, _ := newTestRedis(t)
	rememberAcrossInvalidation(t, c)
}
