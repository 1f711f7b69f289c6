package resolver

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/haukened/rdns/internal/dns/common/log"
	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/gateways/proxy"
)

// IterativeResolver drives DNS resolution from a set of name servers (root
// servers by default) down to an authoritative answer, chasing referrals and
// suspending to resolve unglued name-server addresses along the way. A
// single instance is safe for concurrent Resolve calls: all mutable state
// lives on the per-call activation, never on the resolver itself.
type IterativeResolver struct {
	client            *clientResolver
	cache             Cache
	blocklist         Blocklist
	proxy             proxy.Dispatcher
	logger            log.Logger
	preferIPv6        bool
	protocol          domain.Protocol
	recursiveProtocol domain.Protocol
	maxHops           int
	maxStackDepth     int
}

// NewIterativeResolver constructs an IterativeResolver from opts, applying
// package defaults for any zero-valued field.
func NewIterativeResolver(opts Options) *IterativeResolver {
	opts = opts.withDefaults()
	return &IterativeResolver{
		client:            newClientResolver(opts),
		cache:             opts.Cache,
		blocklist:         opts.Blocklist,
		proxy:             opts.Proxy,
		logger:            opts.Logger,
		preferIPv6:        opts.PreferIPv6,
		protocol:          opts.Protocol,
		recursiveProtocol: opts.RecursiveProtocol,
		maxHops:           opts.MaxHops,
		maxStackDepth:     opts.MaxStackDepth,
	}
}

// activation carries the suspend/resume stack shared across the recursive
// resolveLevel calls that make up one Resolve invocation. A frame is pushed
// immediately before recursing to resolve a name server's address and
// popped as soon as that recursion returns, whether it succeeded or not —
// the Go call stack supplies the suspension itself, this slice exists so
// stack depth can be bounded and the current frame inspected.
type activation struct {
	stack []resolverFrame
}

// Resolve answers q, optionally starting from a caller-supplied server list.
// A nil or empty list starts from the configured root servers.
func (r *IterativeResolver) Resolve(ctx context.Context, q domain.Question, servers []domain.NameServer) (domain.Message, error) {
	if r.blocklist != nil {
		if d := r.blocklist.Decide(q.Name); d.Blocked {
			return domain.NewErrorResponse(0, domain.RCodeRefused, q), nil
		}
	}
	act := &activation{}
	return r.resolveLevel(ctx, act, q, append([]domain.NameServer(nil), servers...), r.protocol)
}

// resolveLevel implements the cache check and resolver loop for a
// single (question, servers, protocol) triple. Resolving a name server's
// address is a nested call to resolveLevel rather than an explicit
// suspend/resume of this function's own locals; act.stack records the
// suspension for depth bounding while the recursion is in flight.
func (r *IterativeResolver) resolveLevel(ctx context.Context, act *activation, q domain.Question, servers []domain.NameServer, protocol domain.Protocol) (domain.Message, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Query(q); ok {
			switch {
			case cached.HasAnswers():
				return cached, nil
			case cached.IsNameError():
				return cached, nil
			case cached.HasSOA():
				if q.Type == domain.RRTypeAAAA {
					downgraded, err := domain.NewQuestion(q.Name, domain.RRTypeA, q.Class)
					if err == nil {
						return r.resolveLevel(ctx, act, downgraded, servers, protocol)
					}
				}
				return cached, nil
			case len(cached.NSRecords()) > 0 && len(servers) == 0:
				servers = extractReferral(cached, r.preferIPv6, true)
			}
		}
	}

	if len(servers) == 0 {
		servers = shuffleServers(RootServers(r.preferIPv6))
	}

	var lastErr error
	var lastResp domain.Message
	haveLastResp := false

hopLoop:
	for hop := 1; hop <= r.maxHops; hop++ {
		for i := 0; i < len(servers); i++ {
			ns := servers[i]

			// An unglued NS normally suspends this frame to look up its own
			// address. With a proxy configured that step is skipped: the bare
			// hostname is passed straight through to the client, and the
			// proxy's own CONNECT resolves it on the far side.
			if !ns.HasEndpoint() && !ns.HasDoHURL() && r.proxy == nil {
				resolved, ok := r.resolveServerAddress(ctx, act, ns)
				if !ok {
					lastErr = fmt.Errorf("resolver: could not resolve address for %s", ns.Host)
					continue
				}
				servers[i] = resolved
				ns = resolved
			}

			resp, err := r.client.resolve(ctx, []domain.NameServer{ns}, protocol, q)
			if err != nil {
				lastErr = err
				continue
			}

			// A truncated reply from anything but UDP can't be retried the
			// way UDP retries over TCP; TCP/TLS/DoH already ran over a
			// stream, so this is as complete an answer as that server has.
			if resp.Header.TC && protocol != domain.ProtocolUDP {
				return resp, nil
			}

			if resp.Meta.Server.Host == "" {
				resp.Meta.Server = ns
			}
			if r.cache != nil {
				_ = r.cache.CacheResponse(resp)
			}
			lastResp, haveLastResp = resp, true

			switch {
			case resp.IsError() && !resp.IsNameError():
				// Anything but NoError/NameError (SERVFAIL, FORMERR,
				// REFUSED, ...): the server is possibly misconfigured, not
				// authoritative for a delegation or negative answer, so try
				// the next candidate instead of trusting its sections.
				if i == len(servers)-1 {
					return resp, nil
				}
				lastErr = fmt.Errorf("resolver: %s returned %s", ns, resp.Header.RCode)
				continue

			case resp.HasAnswers():
				if !q.SameName(resp.Answer[0].Name) {
					lastErr = fmt.Errorf("resolver: %s answered for a different name than asked", ns)
					continue
				}
				return resp, nil

			case resp.IsNameError():
				return resp, nil

			case resp.HasSOA():
				if q.Type == domain.RRTypeAAAA {
					downgraded, err := domain.NewQuestion(q.Name, domain.RRTypeA, q.Class)
					if err == nil {
						q = downgraded
						continue hopLoop
					}
				}
				return resp, nil

			case len(resp.Authority) > 0:
				if isEmptyAuthoritativeSignal(resp, q, ns.Host) {
					return resp, nil
				}
				if hop == r.maxHops {
					return resp, nil
				}
				if protocol.IsForwarderOnly() {
					return resp, nil
				}
				referral := extractReferral(resp, r.preferIPv6, false)
				if len(referral) == 0 {
					if i == len(servers)-1 {
						return resp, nil
					}
					lastErr = fmt.Errorf("resolver: %s returned an empty referral", ns)
					continue
				}
				servers = shuffleServers(referral)
				continue hopLoop

			default:
				if i == len(servers)-1 {
					return resp, nil
				}
				lastErr = fmt.Errorf("resolver: %s returned an unusable response", ns)
				continue
			}
		}
	}

	if haveLastResp {
		return lastResp, nil
	}
	// Falling out of the hop loop rather than returning from inside it only
	// happens by running out of hops, so the failure is always this one,
	// chained onto whatever the last server actually said.
	if lastErr != nil {
		lastErr = fmt.Errorf("%w: %v", errMaxHops, lastErr)
	} else {
		lastErr = errMaxHops
	}
	return domain.Message{}, &NoResponseError{Question: q, Cause: lastErr}
}

// resolveServerAddress resolves ns's A/AAAA address by recursing into
// resolveLevel with a fresh root-server list, respecting the configured
// stack-depth bound. The frame is pushed for the duration of the recursive
// call and popped unconditionally on return.
func (r *IterativeResolver) resolveServerAddress(ctx context.Context, act *activation, ns domain.NameServer) (domain.NameServer, bool) {
	if len(act.stack) >= r.maxStackDepth {
		return domain.NameServer{}, false
	}
	hostQ, err := domain.NewQuestion(ns.Host, addressType(r.preferIPv6), domain.RRClassIN)
	if err != nil {
		return domain.NameServer{}, false
	}

	act.stack = append(act.stack, resolverFrame{question: hostQ, protocol: r.recursiveProtocol})
	resp, err := r.resolveLevel(ctx, act, hostQ, nil, r.recursiveProtocol)
	act.stack = act.stack[:len(act.stack)-1]
	if err != nil || !resp.HasAnswers() {
		return domain.NameServer{}, false
	}
	addr, ok := firstAddress(resp.Answer, r.preferIPv6)
	if !ok {
		return domain.NameServer{}, false
	}
	return ns.WithEndpoint(addr, 53), true
}

func firstAddress(answers []domain.ResourceRecord, preferIPv6 bool) (netip.Addr, bool) {
	want := addressType(preferIPv6)
	for _, rr := range answers {
		if rr.Type != want {
			continue
		}
		if addr, err := netip.ParseAddr(strings.TrimSpace(rr.Text)); err == nil {
			return addr, true
		}
	}
	return netip.Addr{}, false
}

func addressType(preferIPv6 bool) domain.RRType {
	if preferIPv6 {
		return domain.RRTypeAAAA
	}
	return domain.RRTypeA
}
