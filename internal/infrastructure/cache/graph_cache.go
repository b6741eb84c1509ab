// Package cache provides the two-tier parse result cache
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/alchemorsel/mealplanner/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const (
	tierLocal  = "l1"
	tierShared = "l2"

	keyPrefix = "graph:"
)

// GraphCache keeps hot entries in an in-process LRU (L1) in front of the
// shared CacheRepository (L2). L2 hits are promoted to L1.
type GraphCache struct {
	local   *expirable.LRU[string, *outbound.CachedGraph]
	shared  outbound.CacheRepository
	ttl     time.Duration
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewGraphCache creates a cache holding up to size entries locally. shared
// may be nil, in which case only L1 is used.
func NewGraphCache(size int, ttl time.Duration, shared outbound.CacheRepository, metrics *monitoring.Metrics, logger *zap.Logger) *GraphCache {
	if size < 1 {
		size = 1
	}
	return &GraphCache{
		local:   expirable.NewLRU[string, *outbound.CachedGraph](size, nil, ttl),
		shared:  shared,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger.Named("graph-cache"),
	}
}

var _ outbound.GraphCache = (*GraphCache)(nil)

// Get looks up L1, then L2
func (c *GraphCache) Get(ctx context.Context, contentHash string) (*outbound.CachedGraph, error) {
	if entry, ok := c.local.Get(contentHash); ok {
		c.metrics.CacheLookup(tierLocal, true)
		return entry, nil
	}
	c.metrics.CacheLookup(tierLocal, false)

	if c.shared == nil {
		return nil, outbound.ErrCacheMiss
	}

	data, err := c.shared.Get(ctx, keyPrefix+contentHash)
	if err != nil {
		c.metrics.CacheLookup(tierShared, false)
		if !errors.Is(err, outbound.ErrCacheMiss) {
			c.logger.Warn("Shared cache lookup failed", zap.String("hash", contentHash), zap.Error(err))
		}
		return nil, outbound.ErrCacheMiss
	}

	var entry outbound.CachedGraph
	if err := json.Unmarshal(data, &entry); err != nil {
		c.metrics.CacheLookup(tierShared, false)
		c.logger.Warn("Dropping undecodable cache entry", zap.String("hash", contentHash), zap.Error(err))
		_ = c.shared.Delete(ctx, keyPrefix+contentHash)
		return nil, outbound.ErrCacheMiss
	}

	c.metrics.CacheLookup(tierShared, true)
	c.local.Add(contentHash, &entry)
	return &entry, nil
}

// Set writes both tiers. An L2 failure is logged and returned, L1 is still
// populated.
func (c *GraphCache) Set(ctx context.Context, contentHash string, entry *outbound.CachedGraph) error {
	c.local.Add(contentHash, entry)

	if c.shared == nil {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := c.shared.Set(ctx, keyPrefix+contentHash, data, c.ttl); err != nil {
		c.logger.Warn("Shared cache write failed", zap.String("hash", contentHash), zap.Error(err))
		return err
	}
	return nil
}

// Len returns the number of L1 entries
func (c *GraphCache) Len() int {
	return c.local.Len()
}
