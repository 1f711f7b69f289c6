package resolver

import "github.com/haukened/rdns/internal/dns/domain"

// resolverFrame records a suspended parent resolution while the resolver
// chases the address of a name server it needs to query. Frames exist only
// to bound suspension depth; the parent's own locals survive on
// the Go call stack across the nested resolveLevel call.
type resolverFrame struct {
	question domain.Question
	protocol domain.Protocol
}
