package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/haukened/rdns/internal/dns/domain"
	"github.com/haukened/rdns/internal/dns/gateways/wire"
)

// httpsTransport implements ClientTransport over DNS-over-HTTPS using the
// wire format defined in RFC 8484: a POST of raw DNS message bytes with
// content type application/dns-message.
type httpsTransport struct {
	codec   wire.Codec
	client  *http.Client
	timeout time.Duration
}

// NewHTTPSTransport returns a ClientTransport speaking RFC 8484 DoH. client
// may be nil to use a fresh *http.Client with the default transport
// settings; the timeout is applied to each exchange through its context.
func NewHTTPSTransport(codec wire.Codec, client *http.Client, timeout time.Duration) *httpsTransport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &httpsTransport{codec: codec, client: client, timeout: timeout}
}

func (t *httpsTransport) Protocol() domain.Protocol { return domain.ProtocolHTTPS }

func (t *httpsTransport) Exchange(ctx context.Context, server domain.NameServer, query domain.Message) (domain.Message, error) {
	if !server.HasDoHURL() {
		return domain.Message{}, fmt.Errorf("https: server %s has no DoH URL configured", server.Host)
	}

	ctx, cancel := ensureDeadline(ctx, t.timeout)
	if cancel != nil {
		defer cancel()
	}

	payload, err := t.codec.EncodeQuery(query)
	if err != nil {
		return domain.Message{}, fmt.Errorf("https: encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server.DoHURL, bytes.NewReader(payload))
	if err != nil {
		return domain.Message{}, fmt.Errorf("https: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/dns-message")
	req.Header.Set("Accept", "application/dns-message")

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Message{}, fmt.Errorf("https: request to %s: %w", server.DoHURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Message{}, fmt.Errorf("https: server %s returned status %d", server.DoHURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 65535))
	if err != nil {
		return domain.Message{}, fmt.Errorf("https: read response body: %w", err)
	}

	msg, err := t.codec.DecodeMessage(body, time.Now())
	if err != nil {
		return domain.Message{}, fmt.Errorf("https: decode response: %w", err)
	}
	msg.Meta.Server = server
	return msg, nil
}

var _ ClientTransport = (*httpsTransport)(nil)
