package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// tagTTL bounds how long an idle tag set lingers. It is refreshed on every
// Set and is longer than any value TTL, so no live key loses its tag.
const tagTTL = 24 * time.Hour

// invalidateScript drops every key in the tag sets KEYS[2..], the sets
// themselves, and advances the generation at KEYS[1] in one step, so a Set
// racing the invalidation cannot slip a key in between the read and the
// delete.
var invalidateScript = redis.NewScript(`
for i = 2, #KEYS do
  local members = redis.call('SMEMBERS', KEYS[i])
  for _, member in ipairs(members) do
    redis.call('DEL', member)
  end
  redis.call('DEL', KEYS[i])
end
return redis.call('INCR', KEYS[1])
`)

// setIfGenerationScript stores ARGV[2] at KEYS[2] tagged with KEYS[3..]
// unless the generation at KEYS[1] moved past ARGV[1].
var setIfGenerationScript = redis.NewScript(`
if tonumber(redis.call('GET', KEYS[1]) or '0') ~= tonumber(ARGV[1]) then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[2], ARGV[2])
end
for i = 3, #KEYS do
  redis.call('SADD', KEYS[i], KEYS[2])
  redis.call('EXPIRE', KEYS[i], ARGV[4])
end
return 1
`)

// Redis is a Cache shared by every API instance. Each tag is a Redis set
// holding the keys attached to it.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps client, namespacing every key under prefix
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// NewRedisClient connects to the Redis server at addr
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *Redis) key(key string) string { return r.prefix + "val:" + key }
func (r *Redis) tag(tag string) string { return r.prefix + "tag:" + tag }
func (r *Redis) generation() string    { return r.prefix + "gen" }

// Get implements Cache
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}
	if err := decode(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set implements Cache. Expired members linger in tag sets until the tag is
// invalidated, where they cost a no-op DEL.
func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration, tags ...string) error {
	data, err := encode(value)
	if err != nil {
		return err
	}

	full := r.key(key)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, full, data, ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, r.tag(tag), full)
			pipe.Expire(ctx, r.tag(tag), tagTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// SetIfGeneration implements Cache
func (r *Redis) SetIfGeneration(ctx context.Context, gen uint64, key string, value interface{}, ttl time.Duration, tags ...string) (bool, error) {
	data, err := encode(value)
	if err != nil {
		return false, err
	}

	keys := []string{r.generation(), r.key(key)}
	for _, tag := range tags {
		keys = append(keys, r.tag(tag))
	}
	stored, err := setIfGenerationScript.Run(ctx, r.client, keys,
		strconv.FormatUint(gen, 10),
		data,
		strconv.FormatInt(ttl.Milliseconds(), 10),
		strconv.FormatInt(int64(tagTTL/time.Second), 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to write cache: %w", err)
	}
	return stored == 1, nil
}

// Generation implements Cache
func (r *Redis) Generation(ctx context.Context) (uint64, error) {
	gen, err := r.client.Get(ctx, r.generation()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

// Invalidate implements Cache
func (r *Redis) Invalidate(ctx context.Context, tags ...string) error {
	keys := []string{r.generation()}
	for _, tag := range tags {
		keys = append(keys, r.tag(tag))
	}
	if err := invalidateScript.Run(ctx, r.client, keys).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache tags %v: %w", tags, err)
	}
	return nil
}
