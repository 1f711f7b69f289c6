package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/haukened/rdns/internal/dns/common/log"
	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/gateways/wire"
)

// udpTransport implements ClientTransport over plain UDP (RFC 1035).
type udpTransport struct {
	codec   wire.Codec
	dial    DialFunc
	logger  log.Logger
	timeout time.Duration
}

// NewUDPTransport returns a ClientTransport that exchanges messages over UDP.
// A zero timeout falls back to a 5 second default per attempt.
func NewUDPTransport(codec wire.Codec, dial DialFunc, logger log.Logger, timeout time.Duration) *udpTransport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &udpTransport{codec: codec, dial: dial, logger: logger, timeout: timeout}
}

func (t *udpTransport) Protocol() domain.Protocol { return domain.ProtocolUDP }

// Exchange sends query over a UDP socket and decodes the reply. If the
// reply's TC bit is set, it returns ErrTruncated so the caller can retry the
// same query over TCP instead of trusting a truncated answer.
func (t *udpTransport) Exchange(ctx context.Context, server domain.NameServer, query domain.Message) (domain.Message, error) {
	ctx, cancel := ensureDeadline(ctx, t.timeout)
	if cancel != nil {
		defer cancel()
	}

	addr := dialAddress(server)
	conn, err := t.dial(ctx, "udp", addr)
	if err != nil {
		return domain.Message{}, fmt.Errorf("udp: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	payload, err := t.codec.EncodeQuery(query)
	if err != nil {
		return domain.Message{}, fmt.Errorf("udp: encode query: %w", err)
	}

	type result struct {
		msg domain.Message
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		if _, err := conn.Write(payload); err != nil {
			resultCh <- result{err: fmt.Errorf("udp: write: %w", err)}
			return
		}
		buf := make([]byte, 4096) // larger than the classic 512 to tolerate EDNS(0) senders
		n, err := conn.Read(buf)
		if err != nil {
			resultCh <- result{err: fmt.Errorf("udp: read: %w", err)}
			return
		}
		msg, err := t.codec.DecodeMessage(buf[:n], time.Now())
		resultCh <- result{msg: msg, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			return domain.Message{}, res.err
		}
		if res.msg.Header.TC {
			t.logger.Debug(map[string]any{"server": addr}, "udp response truncated, retry over tcp")
			return domain.Message{}, ErrTruncated
		}
		res.msg.Meta.Server = server
		return res.msg, nil
	case <-ctx.Done():
		return domain.Message{}, ctx.Err()
	}
}

func ensureDeadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}

var _ ClientTransport = (*udpTransport)(nil)
