package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/haukened/rdns/internal/dns/common/log"
	"github.com/haukened/rdns/internal/dns/common/rand"
	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/gateways/proxy"
)

// clientResolver issues a single question against a fixed list of servers,
// retrying with a fresh random query ID across servers on transport failure.
// It does not itself chase referrals or CNAMEs.
type clientResolver struct {
	transports TransportFactory
	proxy      proxy.Dispatcher
	retries    int
	timeout    time.Duration
	logger     log.Logger
}

func newClientResolver(opts Options) *clientResolver {
	return &clientResolver{
		transports: opts.Transports,
		proxy:      opts.Proxy,
		retries:    opts.Retries,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
	}
}

// resolve queries servers for q using proto, starting at a random index and
// advancing round-robin, up to retries*len(servers) attempts total. It
// returns the first successful exchange or a NoResponseError carrying the
// last transport failure.
func (c *clientResolver) resolve(ctx context.Context, servers []domain.NameServer, proto domain.Protocol, q domain.Question) (domain.Message, error) {
	if len(servers) == 0 {
		return domain.Message{}, &NoResponseError{Question: q, Cause: fmt.Errorf("resolver: no candidate servers")}
	}

	effectiveProto := proto
	if effectiveProto == domain.ProtocolUDP && c.proxy != nil && !c.proxy.UDPAvailable() {
		effectiveProto = domain.ProtocolTCP
	}

	tr, err := c.transports(effectiveProto)
	if err != nil {
		return domain.Message{}, &NoResponseError{Question: q, Cause: err}
	}

	budget := c.retries * len(servers)
	if budget <= 0 {
		budget = len(servers)
	}
	idx := rand.Intn(len(servers))

	var lastErr error
	for attempt := 0; attempt < budget; attempt++ {
		server := servers[idx]
		idx = (idx + 1) % len(servers)

		query := domain.NewQuery(rand.Uint16(), q)
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := tr.Exchange(attemptCtx, server, query)
		cancel()
		if err != nil {
			lastErr = err
			c.logger.Debug(map[string]any{"server": server.String(), "error": err}, "transport exchange failed")
			continue
		}
		return resp, nil
	}
	return domain.Message{}, &NoResponseError{Question: q, Cause: lastErr}
}
