package domain

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// NameServer identifies a single upstream server the resolver can send a
// query to. It carries at most one of an IP endpoint or a DoH URL; Host
// preserves whatever text form the caller or a referral supplied it in,
// for logging and re-resolution when only a name (no glue) is known.
type NameServer struct {
	Host     string          // hostname or IP literal, as given
	Endpoint netip.AddrPort  // resolved ip:port, zero value if unresolved
	DoHURL   string          // "https://host/path" form, empty unless Protocol is https/https-json
	Protocol Protocol
}

// ParseNameServer parses one of the textual forms this resolver accepts for
// naming an upstream server:
//
//	host                    -> UDP, port 53, unresolved
//	host:port               -> UDP, given port, unresolved
//	ip                      -> UDP, port 53, resolved
//	ip:port                 -> UDP, given port, resolved
//	[ipv6]:port             -> UDP, given port, resolved
//	https://host/path       -> DNS-over-HTTPS wire format
//	https+json://host/path  -> DNS-over-HTTPS JSON
func ParseNameServer(text string) (NameServer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return NameServer{}, fmt.Errorf("nameserver: empty text")
	}

	if strings.HasPrefix(text, "https+json://") {
		return NameServer{
			Host:     text[len("https+json://"):],
			DoHURL:   "https://" + text[len("https+json://"):],
			Protocol: ProtocolHTTPSJSON,
		}, nil
	}
	if strings.HasPrefix(text, "https://") {
		return NameServer{
			Host:     text[len("https://"):],
			DoHURL:   text,
			Protocol: ProtocolHTTPS,
		}, nil
	}
	if strings.HasPrefix(text, "tls://") {
		return parseHostPort(text[len("tls://"):], ProtocolTLS, 853)
	}

	return parseHostPort(text, ProtocolUDP, 53)
}

func parseHostPort(text string, proto Protocol, defaultPort uint16) (NameServer, error) {
	host, portStr, err := net.SplitHostPort(text)
	if err != nil {
		// no port supplied; treat the whole string as the host
		host = text
		portStr = strconv.Itoa(int(defaultPort))
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return NameServer{}, fmt.Errorf("nameserver: invalid port in %q: %w", text, err)
	}

	ns := NameServer{
		Host:     host,
		Protocol: proto,
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		ns.Endpoint = netip.AddrPortFrom(addr, uint16(port))
	}
	return ns, nil
}

// HasEndpoint reports whether the server's address is already known, so no
// glue or A/AAAA lookup is required before it can be queried.
func (ns NameServer) HasEndpoint() bool {
	return ns.Endpoint.IsValid()
}

// HasDoHURL reports whether the server is addressed by a DNS-over-HTTPS URL.
func (ns NameServer) HasDoHURL() bool {
	return ns.DoHURL != ""
}

// WithEndpoint returns a copy of ns bound to the resolved address, used once
// a helper resolution has found an IP for a name-only NameServer.
func (ns NameServer) WithEndpoint(addr netip.Addr, port uint16) NameServer {
	ns.Endpoint = netip.AddrPortFrom(addr, port)
	return ns
}

// String returns a human-readable form of the server, suitable for logging.
func (ns NameServer) String() string {
	if ns.HasDoHURL() {
		return ns.DoHURL
	}
	if ns.HasEndpoint() {
		return ns.Endpoint.String()
	}
	return ns.Host
}
