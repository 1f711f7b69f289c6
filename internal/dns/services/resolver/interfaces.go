// Package resolver implements the iterative/recursive DNS client: given a
// question, it walks referrals from a set of name servers (root servers by
// default) down to an authoritative answer, chasing CNAMEs, consulting an
// optional cache, and dispatching queries through a pluggable transport.
package resolver

import (
	"context"

	"github.com/haukened/rdns/internal/dns/domain"
)

// Transport exchanges a single query for a single response against one
// server. It mirrors gateways/transport.ClientTransport without importing
// that package directly, so this package can be tested against fakes.
type Transport interface {
	Exchange(ctx context.Context, server domain.NameServer, query domain.Message) (domain.Message, error)
}

// TransportFactory builds the Transport for a protocol on demand. The
// iterative resolver asks for a new one whenever the working protocol
// changes (e.g. downgrading to a plain lookup while resolving a name
// server's own address).
type TransportFactory func(proto domain.Protocol) (Transport, error)

// Cache is the resolver's single point of contact with a response cache.
// Query communicates cache miss, positive hit, negative hit, or a cached
// delegation entirely through the returned Message's RCode and sections.
type Cache interface {
	Query(q domain.Question) (domain.Message, bool)
	CacheResponse(resp domain.Message) error
}

// Blocklist is consulted before a query leaves the resolver at all. Decide
// reports whether name should be blocked outright.
type Blocklist interface {
	Decide(name string) domain.BlockDecision
}
