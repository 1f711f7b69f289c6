package domain

import "fmt"

// Metadata carries out-of-band bookkeeping about a Message that isn't part
// of the DNS wire format itself: which server produced it. Metadata is only
// ever set on Messages a Transport received off the network; it is the zero
// value on synthesized queries and locally-fabricated responses.
type Metadata struct {
	Server NameServer
}

// Message is the resolver's in-memory representation of a full DNS message:
// header, question section, and the three record sections. A single value
// serves both as an outgoing query (header only, no answer/authority/
// additional) and as a decoded response.
type Message struct {
	Header     Header
	Questions  []Question
	Answer     []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
	Meta       Metadata
}

// NewQuery builds an outgoing query Message for a single question with the
// recursion-desired bit set, matching what every transport in this resolver sends.
func NewQuery(id uint16, q Question) Message {
	return Message{
		Header: Header{
			ID:      id,
			RD:      true,
			QDCount: 1,
		},
		Questions: []Question{q},
	}
}

// NewResponse builds a decoded/synthesized response Message.
func NewResponse(id uint16, rcode RCode, q Question, answer, authority, additional []ResourceRecord) (Message, error) {
	m := Message{
		Header: Header{
			ID:      id,
			QR:      true,
			RCode:   rcode,
			QDCount: 1,
			ANCount: uint16(len(answer)),
			NSCount: uint16(len(authority)),
			ARCount: uint16(len(additional)),
		},
		Questions:  []Question{q},
		Answer:     answer,
		Authority:  authority,
		Additional: additional,
	}
	if err := m.Validate(); err != nil {
		return Message{}, err
	}
	return m, nil
}

// NewErrorResponse builds a response carrying only a header/RCode and echoed
// question, with empty sections — used when a resolver step fabricates a
// response locally rather than decoding one off the wire (e.g. a blocklist hit).
func NewErrorResponse(id uint16, rcode RCode, q Question) Message {
	return Message{
		Header: Header{
			ID:      id,
			QR:      true,
			RCode:   rcode,
			QDCount: 1,
		},
		Questions: []Question{q},
	}
}

// Validate checks structural validity: the header's RCode is in range and
// every record in every section is individually valid.
func (m Message) Validate() error {
	if !m.Header.RCode.IsValid() {
		return fmt.Errorf("invalid RCode: %d", m.Header.RCode)
	}
	for i, rr := range m.Answer {
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("invalid answer record at index %d: %w", i, err)
		}
	}
	for i, rr := range m.Authority {
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("invalid authority record at index %d: %w", i, err)
		}
	}
	for i, rr := range m.Additional {
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("invalid additional record at index %d: %w", i, err)
		}
	}
	return nil
}

// Question returns the primary (first) question, matching the resolver's
// single-question-per-exchange convention.
func (m Message) Question() (Question, bool) {
	if len(m.Questions) == 0 {
		return Question{}, false
	}
	return m.Questions[0], true
}

// IsError reports whether the message's RCode indicates anything other than success.
func (m Message) IsError() bool {
	return m.Header.RCode != RCodeNoError
}

// IsNameError reports whether the message is an authoritative NXDOMAIN.
func (m Message) IsNameError() bool {
	return m.Header.RCode == RCodeNameError
}

// HasAnswers reports whether the message contains answer records.
func (m Message) HasAnswers() bool {
	return len(m.Answer) > 0
}

// HasSOA reports whether the first authority record is an SOA, the wire
// signal for "the name exists but has no record of the asked-for type"
// or, on a NameError, a negative-caching SOA.
func (m Message) HasSOA() bool {
	return len(m.Authority) > 0 && m.Authority[0].Type == RRTypeSOA
}

// NSRecords returns the authority-section records with type NS.
func (m Message) NSRecords() []ResourceRecord {
	var out []ResourceRecord
	for _, rr := range m.Authority {
		if rr.Type == RRTypeNS {
			out = append(out, rr)
		}
	}
	return out
}
