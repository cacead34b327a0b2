package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL    = 24 * time.Hour
	DefaultPrefix = "skillsmap:skills:"
)

// RedisCache keeps skill extraction results in Redis as JSON arrays.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

// NewFromURL parses a redis:// URL and pings the server. An empty URL returns
// a nil cache and no error.
func NewFromURL(ctx context.Context, url string) (*RedisCache, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "failed to ping redis")
	}
	return NewRedisCache(client, DefaultPrefix, DefaultTTL), nil
}

func (c *RedisCache) key(k string) string {
	return c.prefix + k
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", key)
	}

	var skills []string
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil, false, errors.Wrapf(err, "corrupt cache entry %s", key)
	}
	return skills, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, skills []string) error {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return errors.Wrap(err, "encode skills")
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
