// Package cache provides a sharded TTL cache for per-symbol market values.
package cache

import (
	"hash/fnv"
	"sync"
	"time"
)

const numShards = 16

// ShardedPriceCache caches one float value per symbol with a freshness
// window. Sharding keeps lock contention low when the tick loop, manual
// commands and the screener read prices concurrently.
type ShardedPriceCache struct {
	ttl    time.Duration
	shards [numShards]*priceShard
}

type priceShard struct {
	mu    sync.RWMutex
	items map[string]priceEntry
}

type priceEntry struct {
	value     float64
	updatedAt time.Time
}

// NewShardedPriceCache creates a cache whose entries stay valid for ttl.
func NewShardedPriceCache(ttl time.Duration) *ShardedPriceCache {
	c := &ShardedPriceCache{ttl: ttl}
	for i := 0; i < numShards; i++ {
		c.shards[i] = &priceShard{
			items: make(map[string]priceEntry),
		}
	}
	return c
}

// getShard returns the shard for the given key.
func (c *ShardedPriceCache) getShard(key string) *priceShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%numShards]
}

// Set stores a value for a symbol.
func (c *ShardedPriceCache) Set(symbol string, value float64) {
	shard := c.getShard(symbol)
	shard.mu.Lock()
	shard.items[symbol] = priceEntry{
		value:     value,
		updatedAt: time.Now(),
	}
	shard.mu.Unlock()
}

// Get returns the cached value for a symbol when it is still fresh.
func (c *ShardedPriceCache) Get(symbol string) (float64, bool) {
	shard := c.getShard(symbol)
	shard.mu.RLock()
	entry, ok := shard.items[symbol]
	shard.mu.RUnlock()

	if !ok || time.Since(entry.updatedAt) > c.ttl {
		return 0, false
	}
	return entry.value, true
}

// Invalidate drops the entry for a symbol.
func (c *ShardedPriceCache) Invalidate(symbol string) {
	shard := c.getShard(symbol)
	shard.mu.Lock()
	delete(shard.items, symbol)
	shard.mu.Unlock()
}
