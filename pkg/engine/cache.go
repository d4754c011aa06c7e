package engine

import (
	"math"
	"sync"
)

// DefaultCacheSize is the default number of eval cache entries.
const DefaultCacheSize = 1 << 16

// EvalCache is a thread-safe leaf-evaluation cache keyed by position hash.
// Two-way associative: each bucket keeps a primary and a secondary entry,
// with the newest insert taking the primary slot.
type EvalCache struct {
	entries  []cacheNode
	hashMask uint64

	lookups uint64
	hits    uint64
	adds    uint64

	mu sync.RWMutex
}

// cacheEntry stores one cached leaf score.
type cacheEntry struct {
	key   uint64
	ctx   int32
	valid bool
	score float64
}

type cacheNode struct {
	primary   cacheEntry
	secondary cacheEntry
}

// NewEvalCache creates a cache with size entries, rounded up to a power
// of two.
func NewEvalCache(size uint32) *EvalCache {
	p := uint64(1)
	for p < uint64(size) {
		p <<= 1
	}
	return &EvalCache{
		entries:  make([]cacheNode, p/2),
		hashMask: p/2 - 1,
	}
}

// Flush clears all entries and statistics.
func (c *EvalCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		c.entries[i] = cacheNode{}
	}
	c.lookups, c.hits, c.adds = 0, 0, 0
}

// slotFor mixes the position key and context down to a bucket index
// (murmur-style finalizer).
func (c *EvalCache) slotFor(key uint64, ctx int32) uint64 {
	h := key ^ uint64(uint32(ctx))*0x9e3779b97f4a7c15
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h & c.hashMask
}

// Lookup returns the cached score for (key, ctx) if present.
func (c *EvalCache) Lookup(key uint64, ctx int32) (float64, bool) {
	slot := c.slotFor(key, ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookups++
	node := &c.entries[slot]
	if node.primary.valid && node.primary.key == key && node.primary.ctx == ctx {
		c.hits++
		return node.primary.score, true
	}
	if node.secondary.valid && node.secondary.key == key && node.secondary.ctx == ctx {
		c.hits++
		return node.secondary.score, true
	}
	return 0, false
}

// Add stores a score, demoting the bucket's primary entry to secondary.
func (c *EvalCache) Add(key uint64, ctx int32, score float64) {
	slot := c.slotFor(key, ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	node := &c.entries[slot]
	node.secondary = node.primary
	node.primary = cacheEntry{key: key, ctx: ctx, valid: true, score: score}
	c.adds++
}

// Stats returns lookup, hit and add counters.
func (c *EvalCache) Stats() (lookups, hits, adds uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookups, c.hits, c.adds
}

// positionKey hashes the full quantum position (pieces, superposition
// flags, presence probabilities, entanglement pairs) with FNV-1a over a
// fixed square order.
func (qb *QuantumBoard) positionKey() uint64 {
	const (
		offset64 = 0xcbf29ce484222325
		prime64  = 0x100000001b3
	)
	h := uint64(offset64)
	mix := func(b byte) {
		h ^= uint64(b)
		h *= prime64
	}
	for sq := Square(0); sq < 64; sq++ {
		piece, ok := qb.board[sq]
		if !ok {
			mix(0)
			continue
		}
		code := byte(piece.Type.Code()) | byte(piece.Color)<<3
		if piece.InSuperposition {
			code |= 1 << 4
			bits := math.Float64bits(piece.Probability)
			for i := 0; i < 8; i++ {
				mix(byte(bits >> (8 * i)))
			}
		}
		mix(code)
	}
	for _, pair := range qb.pairs {
		mix(byte(pair.A))
		mix(byte(pair.B))
	}
	return h
}
