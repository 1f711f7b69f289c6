// Package dnscache is an in-memory, LRU-backed implementation of the
// resolver's cache contract: a single Query call communicates cache miss,
// positive hit, negative hit, or cached delegation entirely through the
// RCode and sections of the domain.Message it returns.
package dnscache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/haukened/rdns/internal/dns/domain"
)

// entry is what actually lives in the LRU: the pieces of a response needed
// to reconstruct it later, with expiry carried on the individual records
// themselves rather than on the entry.
type entry struct {
	rcode      domain.RCode
	answer     []domain.ResourceRecord
	authority  []domain.ResourceRecord
	additional []domain.ResourceRecord
}

func (e entry) empty() bool {
	return len(e.answer) == 0 && len(e.authority) == 0 && len(e.additional) == 0
}

// Cache is an in-memory TTL-aware cache of DNS answers, referrals, and
// negative results, using an LRU strategy to bound memory. It implements the
// resolver's Cache contract.
type Cache struct {
	lru *lru.Cache[string, entry]
}

// New returns a new Cache backed by an LRU of the given size.
func New(size int) (*Cache, error) {
	backing, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: backing}, nil
}

// Query looks up q and reports what's cached via the returned Message's
// RCode and sections:
//   - miss: NoError, no answer, no authority
//   - positive hit: NoError, non-empty answer
//   - negative hit (NODATA): NoError, empty answer, SOA in authority
//   - cached NXDOMAIN: NameError, SOA in authority
//   - cached delegation: NoError, NS in authority, glue in additional
//
// The second return value is false only on an outright miss; every other
// case returns true even though RCode may be NameError.
func (c *Cache) Query(q domain.Question) (domain.Message, bool) {
	key := q.CacheKey()
	e, found := c.lru.Get(key)
	if !found {
		return missResponse(q), false
	}

	answer := filterExpired(e.answer)
	authority := filterExpired(e.authority)
	additional := filterExpired(e.additional)

	if len(answer) == 0 && len(authority) == 0 && len(additional) == 0 {
		c.lru.Remove(key)
		return missResponse(q), false
	}

	msg, err := domain.NewResponse(0, e.rcode, q, answer, authority, additional)
	if err != nil {
		// stale/corrupt entry; treat as a miss rather than propagating a
		// cache-internal error to the resolver.
		c.lru.Remove(key)
		return missResponse(q), false
	}
	return msg, true
}

// CacheResponse stores whatever is cacheable from resp: positive answers,
// negative (SOA-bearing) results, or a delegation's NS/glue pair. Idempotent:
// calling it twice with the same response just refreshes the entry.
func (c *Cache) CacheResponse(resp domain.Message) error {
	q, ok := resp.Question()
	if !ok {
		return nil
	}
	if resp.IsError() && !resp.IsNameError() {
		// SERVFAIL and friends are not cached; the resolver retries them.
		return nil
	}

	e := entry{
		rcode:      resp.Header.RCode,
		answer:     resp.Answer,
		authority:  resp.Authority,
		additional: resp.Additional,
	}
	if e.empty() {
		return nil
	}
	c.lru.Add(q.CacheKey(), e)
	return nil
}

// Delete removes any cached entry for the given cache key.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// Len returns the number of cache entries currently stored.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Keys returns a slice of all current cache keys.
func (c *Cache) Keys() []string {
	return c.lru.Keys()
}

func missResponse(q domain.Question) domain.Message {
	return domain.NewErrorResponse(0, domain.RCodeNoError, q)
}

func filterExpired(records []domain.ResourceRecord) []domain.ResourceRecord {
	if len(records) == 0 {
		return nil
	}
	out := make([]domain.ResourceRecord, 0, len(records))
	for _, rr := range records {
		if !rr.IsExpired() {
			out = append(out, rr)
		}
	}
	return out
}
