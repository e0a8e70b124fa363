package text

import (
	"github.com/quillui/quill/cache"
)

// glyphCacheCapacity is the per-shard capacity of a GlyphCache.
// With 16 shards this caches up to 8192 masks, comfortably above what
// a screenful of text at a handful of sizes needs, while bounding
// memory when sizes churn (animated zoom).
const glyphCacheCapacity = 512

// GlyphCache is a bounded, sharded LRU cache of rasterized glyph
// masks. It is safe for concurrent use.
type GlyphCache struct {
	masks *cache.ShardedCache[GlyphKey, *GlyphMask]
}

// NewGlyphCache creates an empty glyph cache.
func NewGlyphCache() *GlyphCache {
	return &GlyphCache{
		masks: cache.NewSharded[GlyphKey, *GlyphMask](glyphCacheCapacity, glyphKeyHasher),
	}
}

// glyphKeyHasher mixes the key fields into a shard hash.
func glyphKeyHasher(k GlyphKey) uint64 {
	h := k.SourceID
	h = h*31 + uint64(k.GID)
	h = h*31 + uint64(k.SizeQ)
	h = h*31 + uint64(k.SubX)
	h = h*31 + uint64(k.Flags)
	return h
}

// Get returns the cached mask for a key, or (nil, false).
func (c *GlyphCache) Get(key GlyphKey) (*GlyphMask, bool) {
	return c.masks.Get(key)
}

// GetOrCreate returns the cached mask for a key, rasterizing it with
// create on a miss.
func (c *GlyphCache) GetOrCreate(key GlyphKey, create func() *GlyphMask) *GlyphMask {
	return c.masks.GetOrCreate(key, create)
}

// Len returns the number of cached masks.
func (c *GlyphCache) Len() int {
	return c.masks.Len()
}

// Clear drops all cached masks.
func (c *GlyphCache) Clear() {
	c.masks.Clear()
}

// Stats returns hit/miss/eviction counters for the cache.
func (c *GlyphCache) Stats() cache.Stats {
	return c.masks.Stats()
}

// ResetStats zeroes the counters.
func (c *GlyphCache) ResetStats() {
	c.masks.ResetStats()
}
