package blocklist

import "github.com/haukened/rdns/internal/dns/domain"

// NoopRepository is a Repository that never blocks anything, used when no
// blocklist source is configured.
type NoopRepository struct{}

func (n *NoopRepository) Decide(name string) domain.BlockDecision {
	return domain.EmptyDecision()
}

func (n *NoopRepository) UpdateAll(rules []domain.BlockRule, version uint64, updatedUnix int64) error {
	return nil
}

func (n *NoopRepository) RepoStats() RepoStats {
	return RepoStats{}
}

var _ Repository = (*NoopRepository)(nil)
