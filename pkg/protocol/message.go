package protocol

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrInvalidMessage is returned when a message's content cannot be decoded
// into the payload its type announces.
var ErrInvalidMessage = errors.New("protocol: invalid message content")

// Message is the envelope every actor consumes and produces. Content is the
// CBOR encoding of the payload; only the state that accepts Type decodes it.
type Message struct {
	Type    string
	Content []byte
}

// NewMessage encodes content under the given type. A nil content yields an
// empty payload.
func NewMessage(typ string, content interface{}) (*Message, error) {
	msg := &Message{Type: typ}
	if content == nil {
		return msg, nil
	}
	data, err := encoder.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to marshal %s: %w", typ, err)
	}
	msg.Content = data
	return msg, nil
}

// Decode unmarshals the content into v.
func (m *Message) Decode(v interface{}) error {
	if len(m.Content) == 0 {
		return fmt.Errorf("%w: %s has no content", ErrInvalidMessage, m.Type)
	}
	if err := cbor.Unmarshal(m.Content, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidMessage, m.Type, err)
	}
	return nil
}

// String implements fmt.Stringer.
func (m *Message) String() string {
	return fmt.Sprintf("message{type: %s, %d bytes}", m.Type, len(m.Content))
}
