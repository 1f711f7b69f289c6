package domain

import (
	"net"
	"testing"
)

func TestNewQuestion(t *testing.T) {
	tests := []struct {
		name        string
		queryName   string
		rrtype      RRType
		class       RRClass
		expectError bool
	}{
		{
			name:        "valid A record query",
			queryName:   "example.com.",
			rrtype:      RRTypeA,
			class:       RRClassIN,
			expectError: false,
		},
		{
			name:        "valid AAAA record query",
			queryName:   "test.example.com.",
			rrtype:      RRTypeAAAA,
			class:       RRClassIN,
			expectError: false,
		},
		{
			name:        "valid CNAME record query",
			queryName:   "www.example.com.",
			rrtype:      RRTypeCNAME,
			class:       RRClassIN,
			expectError: false,
		},
		{
			name:        "empty name should fail",
			queryName:   "",
			rrtype:      RRTypeA,
			class:       RRClassIN,
			expectError: true,
		},
		{
			name:        "invalid RRType should fail",
			queryName:   "example.com.",
			rrtype:      999,
			class:       RRClassIN,
			expectError: true,
		},
		{
			name:        "invalid RRClass should fail",
			queryName:   "example.com.",
			rrtype:      RRTypeA,
			class:       999,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := NewQuestion(tt.queryName, tt.rrtype, tt.class)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if query.Name != tt.queryName {
				t.Errorf("Expected Name %q, got %q", tt.queryName, query.Name)
			}
			if query.Type != tt.rrtype {
				t.Errorf("Expected Type %d, got %d", tt.rrtype, query.Type)
			}
			if query.Class != tt.class {
				t.Errorf("Expected Class %d, got %d", tt.class, query.Class)
			}
		})
	}
}

func TestNewPTRQuestion(t *testing.T) {
	tests := []struct {
		name        string
		ip          net.IP
		expectName  string
		expectError bool
	}{
		{
			name:       "IPv4",
			ip:         net.ParseIP("192.0.2.1"),
			expectName: "1.2.0.192.in-addr.arpa",
		},
		{
			name:       "IPv6",
			ip:         net.ParseIP("2001:db8::1"),
			expectName: "1.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.0.8.b.d.0.1.0.0.2.ip6.arpa",
		},
		{
			name:        "nil IP",
			ip:          nil,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewPTRQuestion(tt.ip)
			if tt.expectError {
				if err == nil {
					t.Errorf("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Name != tt.expectName {
				t.Errorf("expected name %q, got %q", tt.expectName, q.Name)
			}
			if q.Type != RRTypePTR {
				t.Errorf("expected PTR type, got %v", q.Type)
			}
		})
	}
}

func TestQuestion_Validate(t *testing.T) {
	tests := []struct {
		name        string
		query       Question
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid query",
			query: Question{
				Name:  "example.com.",
				Type:  RRTypeA,
				Class: RRClassIN,
			},
			expectError: false,
		},
		{
			name: "empty name should fail",
			query: Question{
				Name:  "",
				Type:  RRTypeA,
				Class: RRClassIN,
			},
			expectError: true,
			errorMsg:    "question name must not be empty",
		},
		{
			name: "invalid RRType should fail",
			query: Question{
				Name:  "example.com.",
				Type:  999,
				Class: RRClassIN,
			},
			expectError: true,
			errorMsg:    "unsupported RRType: 999",
		},
		{
			name: "invalid RRClass should fail",
			query: Question{
				Name:  "example.com.",
				Type:  RRTypeA,
				Class: 999,
			},
			expectError: true,
			errorMsg:    "unsupported RRClass: 999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
					return
				}
				if err.Error() != tt.errorMsg {
					t.Errorf("Expected error message %q, got %q", tt.errorMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
			}
		})
	}
}

func TestQuestion_CacheKey(t *testing.T) {
	tests := []struct {
		name     string
		query1   Question
		query2   Question
		expected bool
	}{
		{
			name:     "identical queries should have same cache key",
			query1:   Question{Name: "example.com.", Type: RRTypeA, Class: RRClassIN},
			query2:   Question{Name: "example.com.", Type: RRTypeA, Class: RRClassIN},
			expected: true,
		},
		{
			name:     "different names should have different cache keys",
			query1:   Question{Name: "example.com.", Type: RRTypeA, Class: RRClassIN},
			query2:   Question{Name: "different.com.", Type: RRTypeA, Class: RRClassIN},
			expected: false,
		},
		{
			name:     "different types should have different cache keys",
			query1:   Question{Name: "example.com.", Type: RRTypeA, Class: RRClassIN},
			query2:   Question{Name: "example.com.", Type: RRTypeAAAA, Class: RRClassIN},
			expected: false,
		},
		{
			name:     "different classes should have different cache keys",
			query1:   Question{Name: "example.com.", Type: RRTypeA, Class: RRClassIN},
			query2:   Question{Name: "example.com.", Type: RRTypeA, Class: RRClassCH},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key1 := tt.query1.CacheKey()
			key2 := tt.query2.CacheKey()

			if key1 == "" {
				t.Errorf("query1.CacheKey() returned empty string")
			}
			if key2 == "" {
				t.Errorf("query2.CacheKey() returned empty string")
			}

			keysEqual := key1 == key2
			if keysEqual != tt.expected {
				t.Errorf("Expected cache keys equal = %v, but key1=%q, key2=%q", tt.expected, key1, key2)
			}
		})
	}
}

func TestQuestion_CacheKey_Consistency(t *testing.T) {
	query := Question{Name: "example.com.", Type: RRTypeA, Class: RRClassIN}

	key1 := query.CacheKey()
	key2 := query.CacheKey()
	key3 := query.CacheKey()

	if key1 != key2 || key2 != key3 {
		t.Errorf("CacheKey() should be consistent. Got: %q, %q, %q", key1, key2, key3)
	}

	if key1 == "" {
		t.Errorf("CacheKey() should not return empty string")
	}
}

func TestQuestion_SameName(t *testing.T) {
	q := Question{Name: "Example.COM.", Type: RRTypeA, Class: RRClassIN}
	if !q.SameName("example.com") {
		t.Errorf("expected SameName to ignore case and trailing dot")
	}
	if q.SameName("other.com") {
		t.Errorf("expected SameName to reject a different name")
	}
}
