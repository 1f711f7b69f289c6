package blocklist

import "github.com/haukened/rdns/internal/dns/domain"

// BloomSizer computes Bloom filter parameters from capacity (n) and target FP rate (p).
// It returns m (number of bits) and k (number of hash functions).
type BloomSizer interface {
	Size(n uint64, p float64) (m uint64, k uint8)
}

// BloomFilter is the minimal interface the repository needs from Bloom filters.
type BloomFilter interface {
	Add(key []byte)
	MightContain(key []byte) bool
}

// BloomFactory builds a fresh BloomFilter sized for capacity rules at the
// given false-positive rate, used whenever the repository rebuilds its index.
type BloomFactory interface {
	New(capacity uint64, fpRate float64) BloomFilter
}

// DecisionCache caches block decisions by canonical name with basic metrics.
type DecisionCache interface {
	Get(name string) (domain.BlockDecision, bool)
	Put(name string, d domain.BlockDecision)
	Len() int
	Purge()
	Stats() CacheStats
}

// StoreStats captures high-level counts and metadata for the persistent store.
type StoreStats struct {
	ExactCount  uint64
	SuffixCount uint64
	Version     uint64
	UpdatedUnix int64 // seconds since epoch
}

// Store abstracts the persistent index backing block-rule lookups.
//   - GetFirstMatch: the most specific rule matching name, if any
//   - RebuildAll: atomically replace the store's contents
//   - Purge: empty the store without loading new rules
type Store interface {
	GetFirstMatch(name string) (domain.BlockRule, bool, error)
	RebuildAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error
	Purge() error
	Stats() StoreStats
	Close() error
}

// RepoStats exposes repository-level counters and underlying store stats.
type RepoStats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Store      StoreStats
	LastUpdate int64 // seconds since epoch
}

// Repository is the composition layer that wires cache -> bloom -> store.
// Decide returns a value-type BlockDecision for the canonical name.
// UpdateAll rebuilds the store, refreshes the Bloom filter, and clears the cache.
type Repository interface {
	Decide(name string) domain.BlockDecision
	UpdateAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error
	RepoStats() RepoStats
}
