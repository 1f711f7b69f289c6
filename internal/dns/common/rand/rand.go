// Package rand provides the cryptographically-seeded randomness the resolver
// needs for query IDs and server-selection order. Predictable IDs or a
// predictable starting server make cache poisoning easier, so this package
// never falls back to math/rand.
package rand

import (
	"crypto/rand"
	"encoding/binary"
)

// Uint16 returns a random 16-bit value, suitable for a DNS message ID.
func Uint16() uint16 {
	var buf [2]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("rand: failed to read from crypto/rand: " + err.Error())
	}
	return binary.BigEndian.Uint16(buf[:])
}

// Intn returns a random integer in [0, n). Panics if n <= 0.
func Intn(n int) int {
	if n <= 0 {
		panic("rand: Intn called with n <= 0")
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("rand: failed to read from crypto/rand: " + err.Error())
	}
	v := binary.BigEndian.Uint64(buf[:])
	return int(v % uint64(n))
}

// Shuffled returns a new slice containing the elements of order in a random
// permutation, using a Fisher-Yates shuffle. The input slice is left
// untouched: callers hand this resolver their server list and expect it back
// unmodified.
func Shuffled[T any](order []T) []T {
	out := make([]T, len(order))
	copy(out, order)
	for i := len(out) - 1; i > 0; i-- {
		j := Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
