// Package transport implements the resolver's client-side transports: one
// exchange per call, against a single upstream server, over whichever
// protocol that server was configured with.
package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/haukened/rdns/internal/dns/domain"
)

// ClientTransport sends one query to a server and returns its response.
// Implementations own connection setup and teardown per call; this resolver
// does not pool connections across Exchange calls (an explicit Non-goal).
type ClientTransport interface {
	// Exchange sends query to server and returns the decoded response.
	// Implementations respect ctx's deadline for the entire round trip.
	Exchange(ctx context.Context, server domain.NameServer, query domain.Message) (domain.Message, error)

	// Protocol identifies which domain.Protocol this transport implements.
	Protocol() domain.Protocol
}

// DialFunc abstracts net.Dialer.DialContext for testability, matching the
// injection point the rest of this resolver's networking code uses.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ErrTruncated is returned by a UDP exchange whose response set the TC bit,
// signaling the caller should retry over TCP.
var ErrTruncated = fmt.Errorf("transport: response truncated, retry over TCP")

// dialAddress returns the address a transport should dial for server. A
// resolved server dials its endpoint directly; an unresolved one (no glue,
// left that way because a proxy is in front and will do its own resolution)
// dials the bare hostname on the standard DNS port instead, so the dial
// string a proxy's CONNECT sees is the name, not a bogus zero-value address.
func dialAddress(server domain.NameServer) string {
	if server.HasEndpoint() {
		return server.Endpoint.String()
	}
	return net.JoinHostPort(server.Host, "53")
}
