package resolver

import (
	"github.com/haukened/rdns/internal/dns/repos/blocklist"
	"github.com/haukened/rdns/internal/dns/repos/dnscache"
)

// Compile-time checks that the concrete repositories this resolver is wired
// against in cmd/rdns-query still satisfy the narrow interfaces declared in
// interfaces.go.
var (
	_ Cache     = (*dnscache.Cache)(nil)
	_ Blocklist = (*blocklist.NoopRepository)(nil)
	_ Blocklist = blocklist.Repository(nil)
)
