// Package cache implements the two-tier result cache: an in-process LRU in
// front of an optional Redis tier. Keys are transcript hashes, so identical
// transcripts never reprocess.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/physician-notetaker/internal/domain"
)

const (
	defaultMemorySize = 256
	defaultTTL        = 24 * time.Hour
	keyPrefix         = "notetaker:result:"
)

// ResultCache satisfies domain.ResultCache. The memory tier always exists;
// the Redis tier is present only when a URL was configured, and its
// failures surface to the caller, which treats them as misses.
type ResultCache struct {
	memory *lru.Cache[string, *domain.TranscriptResult]
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// New creates a result cache from configuration. With an empty RedisURL the
// cache is memory-only. The Redis connection is verified up front so a
// misconfigured URL fails at startup, not on first request.
func New(config domain.CacheConfig, logger *logrus.Logger) (*ResultCache, error) {
	size := config.MemorySize
	if size <= 0 {
		size = defaultMemorySize
	}
	memory, err := lru.New[string, *domain.TranscriptResult](size)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}

	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	c := &ResultCache{
		memory: memory,
		ttl:    ttl,
		logger: logger,
	}

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing Redis URL: %w", err)
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connecting to Redis: %w", err)
		}
		c.redis = client
	}

	return c, nil
}

// Get returns the cached result for a transcript hash. Memory is checked
// first; a Redis hit repopulates the memory tier.
func (c *ResultCache) Get(ctx context.Context, transcriptHash string) (*domain.TranscriptResult, bool, error) {
	if result, ok := c.memory.Get(transcriptHash); ok {
		return result, true, nil
	}

	if c.redis == nil {
		return nil, false, nil
	}

	val, err := c.redis.Get(ctx, keyPrefix+transcriptHash).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading result cache: %w", err)
	}

	var result domain.TranscriptResult
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		// Corrupted entry, drop it and treat as a miss.
		c.logger.WithField("transcript_hash", transcriptHash).Warn("Dropping corrupted cache entry")
		c.redis.Del(ctx, keyPrefix+transcriptHash)
		return nil, false, nil
	}

	c.memory.Add(transcriptHash, &result)
	return &result, true, nil
}

// Set stores the result in both tiers.
func (c *ResultCache) Set(ctx context.Context, transcriptHash string, result *domain.TranscriptResult) error {
	c.memory.Add(transcriptHash, result)

	if c.redis == nil {
		return nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result for cache: %w", err)
	}
	if err := c.redis.Set(ctx, keyPrefix+transcriptHash, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing result cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection when one exists.
func (c *ResultCache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
