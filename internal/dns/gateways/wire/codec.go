// Package wire encodes and decodes domain.Message values to and from the DNS
// wire format defined in RFC 1035 §4, shared by every transport this
// resolver speaks (UDP, TCP, DNS-over-TLS, and the wire-format flavor of
// DNS-over-HTTPS).
package wire

import (
	"time"

	"github.com/haukened/rdns/internal/dns/domain"
)

// Codec encodes an outgoing query and decodes a response received for it.
// now is threaded through so a decoded record's TTL countdown starts from
// the moment the caller considers the message received, not wall-clock time
// read deep inside the codec.
type Codec interface {
	EncodeQuery(msg domain.Message) ([]byte, error)
	DecodeMessage(data []byte, now time.Time) (domain.Message, error)
}
