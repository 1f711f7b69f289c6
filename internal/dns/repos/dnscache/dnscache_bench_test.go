package dnscache

import (
	"fmt"
	"testing"
	"time"

	"github.com/haukened/rdns/internal/dns/domain"
)

func BenchmarkCache_CacheResponse(b *testing.B) {
	cache, err := New(1000)
	if err != nil {
		b.Fatalf("failed to create cache: %v", err)
	}

	responses := make([]domain.Message, b.N)
	for i := 0; i < b.N; i++ {
		data := []byte{192, 0, 2, byte(i % 256)}
		text := fmt.Sprintf("%d.%d.%d.%d", data[0], data[1], data[2], data[3])
		q, err := domain.NewQuestion(fmt.Sprintf("bench%d.com.", i), domain.RRTypeA, domain.RRClassIN)
		if err != nil {
			b.Fatalf("failed to create question: %v", err)
		}
		rr, err := domain.NewCachedResourceRecord(q.Name, domain.RRTypeA, domain.RRClassIN, 300, data, text, time.Now())
		if err != nil {
			b.Fatalf("failed to create record: %v", err)
		}
		resp, err := domain.NewResponse(uint16(i), domain.RCodeNoError, q, []domain.ResourceRecord{rr}, nil, nil)
		if err != nil {
			b.Fatalf("failed to create response: %v", err)
		}
		responses[i] = resp
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.CacheResponse(responses[i])
	}
}

func BenchmarkCache_Query(b *testing.B) {
	cache, err := New(1000)
	if err != nil {
		b.Fatalf("failed to create cache: %v", err)
	}

	q, err := domain.NewQuestion("bench.com.", domain.RRTypeA, domain.RRClassIN)
	if err != nil {
		b.Fatalf("failed to create question: %v", err)
	}
	rr, err := domain.NewCachedResourceRecord(q.Name, domain.RRTypeA, domain.RRClassIN, 300, []byte{192, 0, 2, 1}, "192.0.2.1", time.Now())
	if err != nil {
		b.Fatalf("failed to create record: %v", err)
	}
	resp, err := domain.NewResponse(1, domain.RCodeNoError, q, []domain.ResourceRecord{rr}, nil, nil)
	if err != nil {
		b.Fatalf("failed to create response: %v", err)
	}
	if err := cache.CacheResponse(resp); err != nil {
		b.Fatalf("failed to seed cache: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.Query(q)
	}
}
