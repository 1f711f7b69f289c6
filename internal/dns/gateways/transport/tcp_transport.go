package transport

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/gateways/wire"
)

// tcpTransport implements ClientTransport over TCP with the 2-byte
// length-prefix framing RFC 1035 §4.2.2 requires for the stream protocol.
type tcpTransport struct {
	codec   wire.Codec
	dial    DialFunc
	timeout time.Duration
}

// NewTCPTransport returns a ClientTransport that exchanges messages over TCP.
func NewTCPTransport(codec wire.Codec, dial DialFunc, timeout time.Duration) *tcpTransport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &tcpTransport{codec: codec, dial: dial, timeout: timeout}
}

func (t *tcpTransport) Protocol() domain.Protocol { return domain.ProtocolTCP }

func (t *tcpTransport) Exchange(ctx context.Context, server domain.NameServer, query domain.Message) (domain.Message, error) {
	ctx, cancel := ensureDeadline(ctx, t.timeout)
	if cancel != nil {
		defer cancel()
	}

	addr := dialAddress(server)
	conn, err := t.dial(ctx, "tcp", addr)
	if err != nil {
		return domain.Message{}, fmt.Errorf("tcp: dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	payload, err := t.codec.EncodeQuery(query)
	if err != nil {
		return domain.Message{}, fmt.Errorf("tcp: encode query: %w", err)
	}

	type result struct {
		msg domain.Message
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		framed := framePayload(payload)
		if _, err := conn.Write(framed); err != nil {
			resultCh <- result{err: fmt.Errorf("tcp: write: %w", err)}
			return
		}
		data, err := readFramed(conn)
		if err != nil {
			resultCh <- result{err: fmt.Errorf("tcp: read: %w", err)}
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

func framePayload(payload []byte) []byte {
	framed := make([]byte, 2+len(payload))
	binary.BigEndian.PutUint16(framed, uint16(len(payload)))
	copy(framed[2:], payload)
	return framed
}

func readFramed(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(lenBuf[:])
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

var _ ClientTransport = (*tcpTransport)(nil)
