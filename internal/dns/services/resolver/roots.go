package resolver

import (
	"net/netip"

	"github.com/haukened/rdns/internal/dns/domain"
)

// rootServer is a compile-time literal pairing a root server's canonical
// label with its well-known IPv4 and IPv6 addresses.
type rootServer struct {
	host string
	ipv4 string
	ipv6 string
}

// roots is the immutable table of the 13 root name servers, keyed by their
// canonical labels a.root-servers.net through m.root-servers.net. Callers
// only ever see copies built by RootServers.
var roots = [13]rootServer{
	{"a.root-servers.net", "198.41.0.4", "2001:503:ba3e::2:30"},
	{"b.root-servers.net", "170.247.170.2", "2801:1b8:10::b"},
	{"c.root-servers.net", "192.33.4.12", "2001:500:2::c"},
	{"d.root-servers.net", "199.7.91.13", "2001:500:2d::d"},
	{"e.root-servers.net", "192.203.230.10", "2001:500:a8::e"},
	{"f.root-servers.net", "192.5.5.241", "2001:500:2f::f"},
	{"g.root-servers.net", "192.112.36.4", "2001:500:12::d0d"},
	{"h.root-servers.net", "198.97.190.53", "2001:500:1::53"},
	{"i.root-servers.net", "192.36.148.17", "2001:7fe::53"},
	{"j.root-servers.net", "192.58.128.30", "2001:503:c27::2:30"},
	{"k.root-servers.net", "193.0.14.129", "2001:7fd::1"},
	{"l.root-servers.net", "199.7.83.42", "2001:500:9f::42"},
	{"m.root-servers.net", "202.12.27.33", "2001:dc3::35"},
}

// RootServers returns a fresh copy of the root name-server set, addressed by
// IPv6 endpoint when preferIPv6 is set, IPv4 otherwise. Every call returns
// new NameServer values so a caller mutating its working copy (as the
// iterative resolver does) never disturbs this package's table.
func RootServers(preferIPv6 bool) []domain.NameServer {
	out := make([]domain.NameServer, len(roots))
	for i, r := range roots {
		addrText := r.ipv4
		if preferIPv6 {
			addrText = r.ipv6
		}
		addr, err := netip.ParseAddr(addrText)
		if err != nil {
			// Compile-time literals above are well-formed; a parse failure
			// here would be a bug in this table, not runtime input.
			panic("resolver: invalid root server address literal: " + addrText)
		}
		out[i] = domain.NameServer{
			Host:     r.host,
			Protocol: domain.ProtocolUDP,
		}.WithEndpoint(addr, 53)
	}
	return out
}
