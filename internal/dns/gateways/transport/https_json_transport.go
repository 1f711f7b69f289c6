package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/haukened/rdns/internal/dns/common/rrdata"
	"github.com/haukened/rdns/internal/dns/domain"
)

// httpsJSONTransport implements ClientTransport over the DNS-over-HTTPS JSON
// schema shared by Google's and Cloudflare's resolvers: a GET request with
// name/type query parameters and a JSON response body, rather than raw wire
// bytes. It never receives a truncated response (HTTP has no size limit that
// forces the TC bit) so it has no relationship to ErrTruncated.
type httpsJSONTransport struct {
	client  *http.Client
	timeout time.Duration
}

// NewHTTPSJSONTransport returns a ClientTransport speaking the DoH JSON API.
func NewHTTPSJSONTransport(client *http.Client, timeout time.Duration) *httpsJSONTransport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if client == nil {
		client = &http.Client{}
	}
	return &httpsJSONTransport{client: client, timeout: timeout}
}

func (t *httpsJSONTransport) Protocol() domain.Protocol { return domain.ProtocolHTTPSJSON }

type dohJSONQuestion struct {
	Name string `json:"name"`
	Type int    `json:"type"`
}

type dohJSONAnswer struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	TTL  uint32 `json:"TTL"`
	Data string `json:"data"`
}

type dohJSONResponse struct {
	Status    int               `json:"Status"`
	TC        bool              `json:"TC"`
	RD        bool              `json:"RD"`
	RA        bool              `json:"RA"`
	AD        bool              `json:"AD"`
	CD        bool              `json:"CD"`
	Question  []dohJSONQuestion `json:"Question"`
	Answer    []dohJSONAnswer   `json:"Answer"`
	Authority []dohJSONAnswer   `json:"Authority"`
}

func (t *httpsJSONTransport) Exchange(ctx context.Context, server domain.NameServer, query domain.Message) (domain.Message, error) {
	if !server.HasDoHURL() {
		return domain.Message{}, fmt.Errorf("https+json: server %s has no DoH URL configured", server.Host)
	}
	q, ok := query.Question()
	if !ok {
		return domain.Message{}, fmt.Errorf("https+json: query carries no question")
	}

	ctx, cancel := ensureDeadline(ctx, t.timeout)
	if cancel != nil {
		defer cancel()
	}

	reqURL, err := url.Parse(server.DoHURL)
	if err != nil {
		return domain.Message{}, fmt.Errorf("https+json: parse DoH URL: %w", err)
	}
	params := reqURL.Query()
	params.Set("name", strings.TrimSuffix(q.Name, "."))
	params.Set("type", q.Type.String())
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return domain.Message{}, fmt.Errorf("https+json: build request: %w", err)
	}
	req.Header.Set("Accept", "application/dns-json")

	resp, err := t.client.Do(req)
	if err != nil {
		return domain.Message{}, fmt.Errorf("https+json: request to %s: %w", server.DoHURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Message{}, fmt.Errorf("https+json: server %s returned status %d", server.DoHURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 65535))
	if err != nil {
		return domain.Message{}, fmt.Errorf("https+json: read response body: %w", err)
	}

	var parsed dohJSONResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return domain.Message{}, fmt.Errorf("https+json: decode json body: %w", err)
	}

	now := time.Now()
	answer, err := jsonAnswersToRecords(parsed.Answer, now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("https+json: decoding answer section: %w", err)
	}
	authority, err := jsonAnswersToRecords(parsed.Authority, now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("https+json: decoding authority section: %w", err)
	}

	msg, err := domain.NewResponse(query.Header.ID, domain.RCode(parsed.Status), q, answer, authority, nil)
	if err != nil {
		return domain.Message{}, fmt.Errorf("https+json: build response: %w", err)
	}
	msg.Header.TC = parsed.TC
	msg.Header.RD = parsed.RD
	msg.Header.RA = parsed.RA
	msg.Header.AD = parsed.AD
	msg.Header.CD = parsed.CD
	msg.Meta.Server = server
	return msg, nil
}

func jsonAnswersToRecords(answers []dohJSONAnswer, now time.Time) ([]domain.ResourceRecord, error) {
	records := make([]domain.ResourceRecord, 0, len(answers))
	for _, a := range answers {
		rrtype := domain.RRType(a.Type)
		data, err := rrdata.Encode(rrtype, a.Data)
		if err != nil {
			// presentation text this JSON API can't be round-tripped through
			// our binary encoders (e.g. DNSSEC types) still carries useful
			// text; keep it and leave Data empty.
			data = nil
		}
		rr, err := domain.NewCachedResourceRecord(a.Name, rrtype, domain.RRClassIN, a.TTL, data, a.Data, now)
		if err != nil {
			return nil, err
		}
		records = append(records, rr)
	}
	return records, nil
}

var _ ClientTransport = (*httpsJSONTransport)(nil)
