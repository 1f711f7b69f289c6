package resolver

import (
	"net/netip"
	"strings"

	"github.com/haukened/rdns/internal/dns/domain"
)

// extractReferral walks resp's authority section for NS records and pairs
// each with any glue (A/AAAA) in the additional section matching the NS
// target by name. When allowOnlyResolved is set, NS records
// without matching glue are dropped rather than returned host-only; the
// caller shuffles the result before use.
func extractReferral(resp domain.Message, preferIPv6, allowOnlyResolved bool) []domain.NameServer {
	glueType := domain.RRTypeA
	if preferIPv6 {
		glueType = domain.RRTypeAAAA
	}

	glue := map[string]string{} // lowercased owner name -> address text
	for _, rr := range resp.Additional {
		if rr.Type != glueType {
			continue
		}
		glue[strings.ToLower(strings.TrimSuffix(rr.Name, "."))] = rr.Text
	}
	// fall back to the other address family if the preferred one has no glue
	// for a given name, rather than dropping a perfectly resolvable server.
	otherType := domain.RRTypeAAAA
	if preferIPv6 {
		otherType = domain.RRTypeA
	}
	for _, rr := range resp.Additional {
		if rr.Type != otherType {
			continue
		}
		key := strings.ToLower(strings.TrimSuffix(rr.Name, "."))
		if _, ok := glue[key]; !ok {
			glue[key] = rr.Text
		}
	}

	var out []domain.NameServer
	for _, rr := range resp.Authority {
		if rr.Type != domain.RRTypeNS {
			continue
		}
		target := strings.TrimSpace(rr.Text)
		if target == "" {
			continue
		}
		ns := domain.NameServer{Host: target, Protocol: domain.ProtocolUDP}
		if addrText, ok := glue[strings.ToLower(strings.TrimSuffix(target, "."))]; ok {
			if addr, err := netip.ParseAddr(addrText); err == nil {
				ns = ns.WithEndpoint(addr, 53)
			}
		}
		if allowOnlyResolved && !ns.HasEndpoint() {
			continue
		}
		out = append(out, ns)
	}
	return out
}

// isEmptyAuthoritativeSignal reports whether resp's authority section
// contains an NS record whose owner equals q's name and whose target equals
// respondingHost — the wire signal a server uses to say "I answered, but I
// have nothing new for you".
func isEmptyAuthoritativeSignal(resp domain.Message, q domain.Question, respondingHost string) bool {
	for _, rr := range resp.Authority {
		if rr.Type != domain.RRTypeNS {
			continue
		}
		if q.SameName(rr.Name) && strings.EqualFold(strings.TrimSuffix(rr.Text, "."), strings.TrimSuffix(respondingHost, ".")) {
			return true
		}
	}
	return false
}
