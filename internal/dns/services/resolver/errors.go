package resolver

import (
	"errors"
	"fmt"

	"github.com/haukened/rdns/internal/dns/domain"
)

// NoResponseError is returned when every candidate server in a resolution
// attempt failed at the transport level and none produced a usable reply.
type NoResponseError struct {
	Question domain.Question
	Cause    error
}

func (e *NoResponseError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("resolver: no response for %s %s", e.Question.Name, e.Question.Type)
	}
	return fmt.Sprintf("resolver: no response for %s %s: %v", e.Question.Name, e.Question.Type, e.Cause)
}

func (e *NoResponseError) Unwrap() error { return e.Cause }

// NameError reports that an authoritative server answered NXDOMAIN for a
// name a helper resolution (ResolveIP, ResolveMX, ResolvePTR) asked about
// directly.
type NameError struct {
	Question domain.Question
}

func (e *NameError) Error() string {
	return fmt.Sprintf("resolver: name error for %s %s", e.Question.Name, e.Question.Type)
}

// errMaxHops marks a NoResponseError's Cause when the hop loop runs out of
// hops without ever producing a response to fall back to. A hop budget
// exhausted with at least one response in hand returns that response
// instead of this error: hop limits favor the best response over a hard
// failure whenever there's a response to prefer.
var errMaxHops = errors.New("resolver: maximum hop count exceeded")
