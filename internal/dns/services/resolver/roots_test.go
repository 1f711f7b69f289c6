package resolver

import "testing"

func TestRootServers_CountAndFamily(t *testing.T) {
	v4 := RootServers(false)
	if len(v4) != 13 {
		t.Fatalf("expected 13 root servers, got %d", len(v4))
	}
	for _, ns := range v4 {
		if !ns.HasEndpoint() {
			t.Fatalf("root server %s has no endpoint", ns.Host)
		}
		if !ns.Endpoint.Addr().Is4() {
			t.Errorf("expected IPv4 endpoint for %s, got %s", ns.Host, ns.Endpoint)
		}
	}

	v6 := RootServers(true)
	for _, ns := range v6 {
		if !ns.Endpoint.Addr().Is6() {
			t.Errorf("expected IPv6 endpoint for %s, got %s", ns.Host, ns.Endpoint)
		}
	}
}

func TestRootServers_ReturnsFreshCopyEachCall(t *testing.T) {
	first := RootServers(false)
	first[0].Host = "mutated"
	second := RootServers(false)
	if second[0].Host == "mutated" {
		t.Fatal("mutating a returned slice affected the next call's result")
	}
}
