package redis

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	queryTTL      = 60 * time.Second
	generationKey = "listings:gen"
)

// QueryCache caches serialized search responses. Keys embed a generation
// counter that listing writes bump, so invalidation is a single INCR instead
// of a key scan.
type QueryCache struct {
	client *redis.Client
	prefix string
}

func NewQueryCache(client *redis.Client, prefix string) *QueryCache {
	return &QueryCache{client: client, prefix: prefix}
}

// Get loads a cached response into dest. Returns false on a miss.
func (c *QueryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal([]byte(data), dest)
}

func (c *QueryCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, queryTTL).Err()
}

// BuildKey derives a stable key from the query parameters: sorted k=v pairs
// hashed, namespaced by prefix and the current generation.
func (c *QueryCache) BuildKey(ctx context.Context, params map[string]string) (string, error) {
	gen, err := c.client.Get(ctx, generationKey).Result()
	if err == redis.Nil {
		gen = "0"
	} else if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for i, k := range keys {
		if i > 0 {
			builder.WriteString(":")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(params[k])
	}

	hash := md5.Sum([]byte(builder.String()))
	return c.prefix + ":" + gen + ":" + hex.EncodeToString(hash[:]), nil
}

// Bump advances the generation counter, orphaning every cached response.
// Stale entries age out with their TTL.
func (c *QueryCache) Bump(ctx context.Context) error {
	return c.client.Incr(ctx, generationKey).Err()
}
