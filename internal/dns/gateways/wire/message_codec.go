package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haukened/rdns/internal/dns/common/rrdata"
	"github.com/haukened/rdns/internal/dns/common/utils"
	"github.com/haukened/rdns/internal/dns/domain"
)

// messageCodec implements Codec against the standard DNS wire format shared
// by UDP, TCP, DoT, and DoH-wire transports. It has no state of its own.
type messageCodec struct{}

// NewMessageCodec returns the resolver's standard wire-format Codec.
func NewMessageCodec() *messageCodec {
	return &messageCodec{}
}

// EncodeQuery serializes msg (expected to carry exactly one question) into
// wire format.
func (c *messageCodec) EncodeQuery(msg domain.Message) ([]byte, error) {
	if len(msg.Questions) != 1 {
		return nil, fmt.Errorf("wire: query must carry exactly one question, got %d", len(msg.Questions))
	}
	var buf bytes.Buffer
	writeHeader(&buf, msg.Header)

	q := msg.Questions[0]
	name, err := encodeDomainName(q.Name)
	if err != nil {
		return nil, err
	}
	buf.Write(name)
	_ = binary.Write(&buf, binary.BigEndian, uint16(q.Type))
	_ = binary.Write(&buf, binary.BigEndian, uint16(q.Class))

	return buf.Bytes(), nil
}

func writeHeader(buf *bytes.Buffer, h domain.Header) {
	_ = binary.Write(buf, binary.BigEndian, h.ID)

	var flags uint16
	flags |= uint16(h.Opcode&0x0F) << 11
	if h.QR {
		flags |= 1 << 15
	}
	if h.AA {
		flags |= 1 << 10
	}
	if h.TC {
		flags |= 1 << 9
	}
	if h.RD {
		flags |= 1 << 8
	}
	if h.RA {
		flags |= 1 << 7
	}
	if h.AD {
		flags |= 1 << 5
	}
	if h.CD {
		flags |= 1 << 4
	}
	flags |= uint16(h.RCode) & 0x0F
	_ = binary.Write(buf, binary.BigEndian, flags)

	_ = binary.Write(buf, binary.BigEndian, uint16(1)) // QDCOUNT: this resolver always sends one question
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // ANCOUNT
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // NSCOUNT
	_ = binary.Write(buf, binary.BigEndian, uint16(0)) // ARCOUNT
}

// encodeDomainName encodes a domain name into wire format without
// compression; queries are small enough that compression buys nothing.
func encodeDomainName(name string) ([]byte, error) {
	var buf bytes.Buffer
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		buf.WriteByte(0)
		return buf.Bytes(), nil
	}
	for _, label := range strings.Split(name, ".") {
		if len(label) > 63 {
			return nil, fmt.Errorf("label too long: %s", label)
		}
		buf.WriteByte(byte(len(label)))
		buf.WriteString(label)
	}
	buf.WriteByte(0)
	return buf.Bytes(), nil
}

// decodeName decodes a domain name at offset, following RFC 1035 §4.1.4
// compression pointers. Returns the name and the offset just past it in the
// uncompressed stream (i.e. past the pointer, not the pointed-to data).
func decodeName(data []byte, offset int) (string, int, error) {
	var labels []string
	jumped := false
	for {
		if offset >= len(data) {
			return "", 0, errors.New("wire: offset out of bounds decoding name")
		}
		length := int(data[offset])
		if length == 0 {
			offset++
			break
		}
		if length&0xC0 == 0xC0 {
			if offset+1 >= len(data) {
				return "", 0, errors.New("wire: compression pointer out of bounds")
			}
			ptr := int(binary.BigEndian.Uint16(data[offset:offset+2]) & 0x3FFF)
			suffix, _, err := decodeName(data, ptr)
			if err != nil {
				return "", 0, err
			}
			labels = append(labels, suffix)
			if !jumped {
				offset += 2
			}
			jumped = true
			break
		}
		offset++
		if offset+length > len(data) {
			return "", 0, errors.New("wire: label length out of bounds")
		}
		labels = append(labels, string(data[offset:offset+length]))
		offset += length
	}
	return strings.Join(labels, "."), offset, nil
}

// DecodeMessage parses a full DNS message off the wire.
func (c *messageCodec) DecodeMessage(data []byte, now time.Time) (domain.Message, error) {
	if len(data) < 12 {
		return domain.Message{}, errors.New("wire: message too short")
	}

	h, err := readHeader(data)
	if err != nil {
		return domain.Message{}, err
	}

	offset := 12
	questions := make([]domain.Question, 0, h.QDCount)
	for i := 0; i < int(h.QDCount); i++ {
		name, newOffset, err := decodeName(data, offset)
		if err != nil {
			return domain.Message{}, fmt.Errorf("wire: decoding question %d: %w", i, err)
		}
		offset = newOffset
		if offset+4 > len(data) {
			return domain.Message{}, errors.New("wire: truncated question")
		}
		qtype := binary.BigEndian.Uint16(data[offset : offset+2])
		qclass := binary.BigEndian.Uint16(data[offset+2 : offset+4])
		offset += 4
		questions = append(questions, domain.Question{
			Name:  utils.CanonicalDNSName(name),
			Type:  domain.RRType(qtype),
			Class: domain.RRClass(qclass),
		})
	}

	answer, offset, err := decodeRecords(data, offset, int(h.ANCount), now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("wire: decoding answer section: %w", err)
	}
	authority, offset, err := decodeRecords(data, offset, int(h.NSCount), now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("wire: decoding authority section: %w", err)
	}
	additional, _, err := decodeRecords(data, offset, int(h.ARCount), now)
	if err != nil {
		return domain.Message{}, fmt.Errorf("wire: decoding additional section: %w", err)
	}

	msg := domain.Message{
		Header:     h,
		Questions:  questions,
		Answer:     answer,
		Authority:  authority,
		Additional: additional,
	}
	return msg, nil
}

func readHeader(data []byte) (domain.Header, error) {
	id := binary.BigEndian.Uint16(data[0:2])
	flags := binary.BigEndian.Uint16(data[2:4])
	h := domain.Header{
		ID:      id,
		QR:      flags&(1<<15) != 0,
		Opcode:  uint8((flags >> 11) & 0x0F),
		AA:      flags&(1<<10) != 0,
		TC:      flags&(1<<9) != 0,
		RD:      flags&(1<<8) != 0,
		RA:      flags&(1<<7) != 0,
		Z:       flags&(1<<6) != 0,
		AD:      flags&(1<<5) != 0,
		CD:      flags&(1<<4) != 0,
		RCode:   domain.RCode(uint8(flags & 0x0F)),
		QDCount: binary.BigEndian.Uint16(data[4:6]),
		ANCount: binary.BigEndian.Uint16(data[6:8]),
		NSCount: binary.BigEndian.Uint16(data[8:10]),
		ARCount: binary.BigEndian.Uint16(data[10:12]),
	}
	return h, nil
}

func decodeRecords(data []byte, offset, count int, now time.Time) ([]domain.ResourceRecord, int, error) {
	records := make([]domain.ResourceRecord, 0, count)
	for i := 0; i < count; i++ {
		rr, newOffset, err := decodeRecord(data, offset, now)
		if err != nil {
			return nil, 0, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rr)
		offset = newOffset
	}
	return records, offset, nil
}

func decodeRecord(data []byte, offset int, now time.Time) (domain.ResourceRecord, int, error) {
	name, offset, err := decodeName(data, offset)
	if err != nil {
		return domain.ResourceRecord{}, 0, fmt.Errorf("decoding name: %w", err)
	}
	if offset+10 > len(data) {
		return domain.ResourceRecord{}, 0, errors.New("truncated record header")
	}
	typ := binary.BigEndian.Uint16(data[offset : offset+2])
	offset += 2
	class := binary.BigEndian.Uint16(data[offset : offset+2])
	offset += 2
	ttl := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4
	rdLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2

	if offset+rdLen > len(data) {
		return domain.ResourceRecord{}, 0, errors.New("truncated rdata")
	}
	rdata := make([]byte, rdLen)
	copy(rdata, data[offset:offset+rdLen])
	offset += rdLen

	rrtype := domain.RRType(typ)
	rrclass := domain.RRClass(class)
	text, err := rrdata.Decode(rrtype, rdata)
	if err != nil {
		// unsupported/opaque RDATA still round-trips through Data; Text is
		// best-effort presentation only.
		text = ""
	}
	rr, err := domain.NewCachedResourceRecord(utils.CanonicalDNSName(name), rrtype, rrclass, ttl, rdata, text, now)
	if err != nil {
		return domain.ResourceRecord{}, 0, fmt.Errorf("invalid record: %w", err)
	}
	return rr, offset, nil
}

var _ Codec = (*messageCodec)(nil)
