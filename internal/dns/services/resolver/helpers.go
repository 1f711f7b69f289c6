package resolver

import (
	"context"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/haukened/rdns/internal/dns/domain"
)

// resolveWithCNAMEChase calls Resolve for q and, while the answer's head
// record is a CNAME for a different type than asked, follows it by asking
// again for the CNAME's target, up to maxHops times. The returned message's
// Answer accumulates every hop's records in order, matching what a single
// non-chasing DNS exchange would have returned had the chain been collapsed
// server-side.
func (r *IterativeResolver) resolveWithCNAMEChase(ctx context.Context, q domain.Question) (domain.Message, error) {
	resp, err := r.Resolve(ctx, q, nil)
	if err != nil {
		return resp, err
	}

	chain := append([]domain.ResourceRecord(nil), resp.Answer...)
	current := q
	for hops := 0; hops < r.maxHops; hops++ {
		if len(chain) == 0 || chain[len(chain)-1].Type != domain.RRTypeCNAME || q.Type == domain.RRTypeCNAME {
			break
		}
		target := strings.TrimSpace(chain[len(chain)-1].Text)
		if target == "" {
			break
		}
		nextQ, err := domain.NewQuestion(target, q.Type, q.Class)
		if err != nil {
			break
		}
		current = nextQ
		next, err := r.Resolve(ctx, current, nil)
		if err != nil || len(next.Answer) == 0 {
			break
		}
		chain = append(chain, next.Answer...)
		resp = next
	}
	resp.Answer = chain
	return resp, nil
}

// ResolveIP resolves name to its IP addresses, preferring AAAA when
// preferIPv6 is set and falling back to A when the preferred family is
// empty.
func (r *IterativeResolver) ResolveIP(ctx context.Context, name string, preferIPv6 bool) ([]net.IP, error) {
	rrtype := domain.RRTypeA
	if preferIPv6 {
		rrtype = domain.RRTypeAAAA
	}
	q, err := domain.NewQuestion(name, rrtype, domain.RRClassIN)
	if err != nil {
		return nil, err
	}
	resp, err := r.resolveWithCNAMEChase(ctx, q)
	if err != nil {
		return nil, err
	}
	if resp.IsNameError() {
		return nil, &NameError{Question: q}
	}
	ips := addressesOf(resp.Answer, rrtype)
	if len(ips) == 0 && preferIPv6 {
		return r.ResolveIP(ctx, name, false)
	}
	return ips, nil
}

// ResolvePTR resolves ip to its reverse-DNS names.
func (r *IterativeResolver) ResolvePTR(ctx context.Context, ip net.IP) ([]string, error) {
	q, err := domain.NewPTRQuestion(ip)
	if err != nil {
		return nil, err
	}
	resp, err := r.resolveWithCNAMEChase(ctx, q)
	if err != nil {
		return nil, err
	}
	if resp.IsNameError() {
		return nil, &NameError{Question: q}
	}
	var names []string
	for _, rr := range resp.Answer {
		if rr.Type == domain.RRTypePTR && strings.TrimSpace(rr.Text) != "" {
			names = append(names, rr.Text)
		}
	}
	return names, nil
}

// mxRecord pairs a decoded MX target with its preference, and its resolved
// addresses once ResolveMX has filled them in.
type MXRecord struct {
	Preference uint16
	Exchange   string
	IPs        []net.IP
}

// ResolveMX resolves name's mail exchangers, sorted by ascending preference.
// When resolveIP is set, glue in the additional section is used first;
// exchange hosts without glue fall back to ResolveIP. A transient failure
// resolving one exchange's address keeps the entry (with no IPs); a
// NameError for the exchange host drops it entirely.
func (r *IterativeResolver) ResolveMX(ctx context.Context, name string, resolveIP, preferIPv6 bool) ([]MXRecord, error) {
	q, err := domain.NewQuestion(name, domain.RRTypeMX, domain.RRClassIN)
	if err != nil {
		return nil, err
	}
	resp, err := r.resolveWithCNAMEChase(ctx, q)
	if err != nil {
		return nil, err
	}
	if resp.IsNameError() {
		return nil, &NameError{Question: q}
	}

	glueType := domain.RRTypeA
	if preferIPv6 {
		glueType = domain.RRTypeAAAA
	}
	glue := map[string][]net.IP{}
	for _, rr := range resp.Additional {
		if rr.Type != glueType {
			continue
		}
		key := strings.ToLower(strings.TrimSuffix(rr.Name, "."))
		if ip := net.ParseIP(strings.TrimSpace(rr.Text)); ip != nil {
			glue[key] = append(glue[key], ip)
		}
	}

	var out []MXRecord
	for _, rr := range resp.Answer {
		if rr.Type != domain.RRTypeMX {
			continue
		}
		pref, exchange, ok := parseMXText(rr.Text)
		if !ok {
			continue
		}
		rec := MXRecord{Preference: pref, Exchange: exchange}
		if resolveIP {
			key := strings.ToLower(strings.TrimSuffix(exchange, "."))
			if ips, ok := glue[key]; ok {
				rec.IPs = ips
			} else {
				ips, err := r.ResolveIP(ctx, exchange, preferIPv6)
				if err != nil {
					if _, isNameErr := err.(*NameError); isNameErr {
						continue // drop entries whose exchange host doesn't exist
					}
					// transient failure: keep the entry without addresses
				} else {
					rec.IPs = ips
				}
			}
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Preference < out[j].Preference })
	return out, nil
}

func addressesOf(answers []domain.ResourceRecord, rrtype domain.RRType) []net.IP {
	var out []net.IP
	for _, rr := range answers {
		if rr.Type != rrtype {
			continue
		}
		if ip := net.ParseIP(strings.TrimSpace(rr.Text)); ip != nil {
			out = append(out, ip)
		}
	}
	return out
}

// parseMXText splits an MX record's "<preference> <exchange>" text form.
func parseMXText(text string) (uint16, string, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, "", false
	}
	pref, err := strconv.ParseUint(fields[0], 10, 16)
	if err != nil {
		return 0, "", false
	}
	return uint16(pref), fields[1], true
}
