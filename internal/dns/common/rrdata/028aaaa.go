package rrdata

import (
	"fmt"
	"net"
)

// encodeAAAAData encodes an AAAA record string into its binary representation.
func encodeAAAAData(data string) ([]byte, error) {
	// data = "2001:db8::ff00:42:8329"
	ip := net.ParseIP(data)
	if ip == nil || !isIPv6(ip) {
		return nil, fmt.Errorf("invalid AAAA record IP: %s", data)
	}
	return ip.To16(), nil
}

// decodeAAAAData decodes an AAAA record's 16-byte RDATA into its text form.
func decodeAAAAData(b []byte) (string, error) {
	if len(b) != 16 {
		return "", fmt.Errorf("invalid AAAA record length: %d", len(b))
	}
	ip := net.IP(b)
	if !isIPv6(ip) {
		return "", fmt.Errorf("invalid AAAA record IP: %s", ip)
	}
	return ip.String(), nil
}
