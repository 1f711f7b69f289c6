package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haukened/rdns/internal/dns/domain"
)

func TestHTTPSJSONTransport_Exchange_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") != "example.com" {
			t.Errorf("expected name=example.com, got %s", r.URL.Query().Get("name"))
		}
		if r.URL.Query().Get("type") != "A" {
			t.Errorf("expected type=A, got %s", r.URL.Query().Get("type"))
		}
		w.Header().Set("Content-Type", "application/dns-json")
		fmt.Fprint(w, `{
			"Status": 0,
			"TC": false,
			"RD": true,
			"RA": true,
			"Question": [{"name":"example.com","type":1}],
			"Answer": [{"name":"example.com","type":1,"TTL":300,"data":"192.0.2.1"}]
		}`)
	}))
	defer srv.Close()

	server := domain.NameServer{Host: "doh.example", DoHURL: srv.URL, Protocol: domain.ProtocolHTTPSJSON}
	tr := NewHTTPSJSONTransport(srv.Client(), time.Second)

	got, err := tr.Exchange(context.Background(), server, testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.HasAnswers() {
		t.Fatal("expected answers in decoded response")
	}
	if got.Answer[0].Text != "192.0.2.1" {
		t.Errorf("expected answer text 192.0.2.1, got %s", got.Answer[0].Text)
	}
	if got.Header.RCode != domain.RCodeNoError {
		t.Errorf("expected NOERROR, got %v", got.Header.RCode)
	}
}

func TestHTTPSJSONTransport_Exchange_NXDOMAIN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Status": 3, "Question": [{"name":"example.com","type":1}]}`)
	}))
	defer srv.Close()

	server := domain.NameServer{Host: "doh.example", DoHURL: srv.URL, Protocol: domain.ProtocolHTTPSJSON}
	tr := NewHTTPSJSONTransport(srv.Client(), time.Second)

	got, err := tr.Exchange(context.Background(), server, testQuery())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsNameError() {
		t.Errorf("expected NXDOMAIN, got %v", got.Header.RCode)
	}
}

func TestHTTPSJSONTransport_Exchange_NoDoHURL(t *testing.T) {
	tr := NewHTTPSJSONTransport(nil, time.Second)
	server := domain.NameServer{Host: "example.com", Protocol: domain.ProtocolHTTPSJSON}
	_, err := tr.Exchange(context.Background(), server, testQuery())
	if err == nil {
		t.Fatal("expected error when DoH URL is missing")
	}
}

func TestHTTPSJSONTransport_Protocol(t *testing.T) {
	tr := NewHTTPSJSONTransport(nil, 0)
	if tr.Protocol() != domain.ProtocolHTTPSJSON {
		t.Errorf("expected ProtocolHTTPSJSON, got %v", tr.Protocol())
	}
}
