package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/gateways/wire"
)

// tlsTransport implements ClientTransport over DNS-over-TLS (RFC 7858),
// framed identically to plain TCP once the handshake completes.
type tlsTransport struct {
	codec     wire.Codec
	dial      DialFunc
	timeout   time.Duration
	tlsConfig *tls.Config
}

// NewTLSTransport returns a ClientTransport that exchanges messages over
// DNS-over-TLS. A nil tlsConfig uses Go's default verification behavior with
// ServerName taken from server.Host at exchange time.
func NewTLSTransport(codec wire.Codec, dial DialFunc, timeout time.Duration, tlsConfig *tls.Config) *tlsTransport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &tlsTransport{codec: codec, dial: dial, timeout: timeout, tlsConfig: tlsConfig}
}

func (t *tlsTransport) Protocol() domain.Protocol { return domain.ProtocolTLS }

func (t *tlsTransport) Exchange(ctx context.Context, server domain.NameServer, query domain.Message) (domain.Message, error) {
	ctx, cancel := ensureDeadline(ctx, t.timeout)
	if cancel != nil {
		defer cancel()
	}

	addr := dialAddress(server)
	raw, err := t.dial(ctx, "tcp", addr)
	if err != nil {
		return domain.Message{}, fmt.Errorf("tls: dial %s: %w", addr, err)
	}

	cfg := t.tlsConfig
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" && server.Host != "" {
		cfg = cfg.Clone()
		cfg.ServerName = server.Host
	}

	conn := tls.Client(raw, cfg)
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := conn.HandshakeContext(ctx); err != nil {
		return domain.Message{}, fmt.Errorf("tls: handshake with %s: %w", addr, err)
	}

	payload, err := t.codec.EncodeQuery(query)
	if err != nil {
		return domain.Message{}, fmt.Errorf("tls: encode query: %w", err)
	}

	type result struct {
		msg domain.Message
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		if _, err := conn.Write(framePayload(payload)); err != nil {
			resultCh <- result{err: fmt.Errorf("tls: write: %w", err)}
			return
		}
		data, err := readFramed(conn)
		if err != nil {
			resultCh <- result{err: fmt.Errorf("tls: read: %w", err)}
			return
		}
		msg, err := t.codec.DecodeMessage(data, time.Now())
		resultCh <- result{msg: msg, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return domain.Message{}, res.err
		}
		res.msg.Meta.Server = server
		return res.msg, nil
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	}
}

var _ ClientTransport = (*tlsTransport)(nil)
