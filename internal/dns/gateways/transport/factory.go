package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/haukened/rdns/internal/dns/common/log"
	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/gateways/wire"
)

// Options configures the transports New builds. Timeout applies per exchange
// attempt; a zero value falls back to each transport's own default.
type Options struct {
	Timeout   time.Duration
	Dial      DialFunc
	TLSConfig *tls.Config
	HTTP      *http.Client
	Logger    log.Logger
}

func (o Options) dialOrDefault() DialFunc {
	if o.Dial != nil {
		return o.Dial
	}
	var d net.Dialer
	return d.DialContext
}

func (o Options) loggerOrDefault() log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.NewNoopLogger()
}

// New builds the ClientTransport for proto, wiring in a shared wire.Codec and
// the dial/HTTP client injection points opts carries.
func New(proto domain.Protocol, opts Options) (ClientTransport, error) {
	if !proto.IsValid() {
		return nil, fmt.Errorf("transport: unknown protocol %q", proto)
	}
	codec := wire.NewMessageCodec()
	dial := opts.dialOrDefault()

	switch proto {
	case domain.ProtocolUDP:
		udp := NewUDPTransport(codec, dial, opts.loggerOrDefault(), opts.Timeout)
		tcp := NewTCPTransport(codec, dial, opts.Timeout)
		return newAutoUpgradeTransport(udp, tcp), nil
	case domain.ProtocolTCP:
		return NewTCPTransport(codec, dial, opts.Timeout), nil
	case domain.ProtocolTLS:
		return NewTLSTransport(codec, dial, opts.Timeout, opts.TLSConfig), nil
	case domain.ProtocolHTTPS:
		return NewHTTPSTransport(codec, opts.HTTP, opts.Timeout), nil
	case domain.ProtocolHTTPSJSON:
		return NewHTTPSJSONTransport(opts.HTTP, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("transport: no implementation for protocol %q", proto)
	}
}

// autoUpgradeTransport tries udp first and transparently retries the same
// query over tcp when the response was truncated, per RFC 1035 §4.2's
// mandate that a truncated UDP answer be followed by a TCP retry.
type autoUpgradeTransport struct {
	udp ClientTransport
	tcp ClientTransport
}

func newAutoUpgradeTransport(udp, tcp ClientTransport) *autoUpgradeTransport {
	return &autoUpgradeTransport{udp: udp, tcp: tcp}
}

func (t *autoUpgradeTransport) Protocol() domain.Protocol { return domain.ProtocolUDP }

func (t *autoUpgradeTransport) Exchange(ctx context.Context, server domain.NameServer, query domain.Message) (domain.Message, error) {
	msg, err := t.udp.Exchange(ctx, server, query)
	if err == nil {
		return msg, nil
	}
	if !errors.Is(err, ErrTruncated) {
		return domain.Message{}, err
	}
	return t.tcp.Exchange(ctx, server, query)
}

var _ ClientTransport = (*autoUpgradeTransport)(nil)
