package resolver

import (
	"github.com/haukened/rdns/internal/dns/common/rand"
	"github.com/haukened/rdns/internal/dns/domain"
)

// shuffleServers returns a randomly permuted copy of servers, leaving the
// input untouched. Used once per entry into a referral level, so retries
// within that level see a stable order.
func shuffleServers(servers []domain.NameServer) []domain.NameServer {
	return rand.Shuffled(servers)
}
