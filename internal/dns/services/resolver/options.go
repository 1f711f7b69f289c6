package resolver

import (
	"time"

	"github.com/haukened/rdns/internal/dns/common/log"
	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/gateways/proxy"
)

const (
	// defaultMaxHops bounds referral-following within a single frame.
	defaultMaxHops = 16
	// defaultMaxStackDepth bounds suspended NS-address resolutions.
	defaultMaxStackDepth = 10
	// defaultRetries is the per-server retry multiplier R in the ClientResolver budget.
	defaultRetries = 2
	// defaultTimeout bounds a single transport exchange.
	defaultTimeout = 5 * time.Second
)

// Options configures an IterativeResolver. Zero values fall back to the
// package defaults documented alongside each constant above.
type Options struct {
	Transports        TransportFactory
	Cache             Cache
	Blocklist         Blocklist
	Proxy             proxy.Dispatcher
	Logger            log.Logger
	PreferIPv6        bool
	Protocol          domain.Protocol // PR: protocol used for the caller's question
	RecursiveProtocol domain.Protocol // RP: protocol used while resolving NS addresses
	Retries           int
	Timeout           time.Duration
	MaxHops           int
	MaxStackDepth     int
}

func (o Options) withDefaults() Options {
	if o.Protocol == "" {
		o.Protocol = domain.ProtocolUDP
	}
	if o.RecursiveProtocol == "" {
		o.RecursiveProtocol = o.Protocol
	}
	if o.Retries <= 0 {
		o.Retries = defaultRetries
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxHops <= 0 {
		o.MaxHops = defaultMaxHops
	}
	if o.MaxStackDepth <= 0 {
		o.MaxStackDepth = defaultMaxStackDepth
	}
	if o.Logger == nil {
		o.Logger = log.NewNoopLogger()
	}
	return o
}
