//START OF FILE pickleball/internal/network/protocol.go
package network

import (
	"encoding/json"
	"fmt"
)

// Message is the envelope for every frame in both directions. Type routes
// the message; Payload is decoded later by whoever handles that type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MaxMessageSize caps inbound frames. Commands are tiny.
const MaxMessageSize = 64 * 1024

// NewMessage marshals payload into an envelope. A nil payload is omitted.
func NewMessage(msgType string, payload any) (Message, error) {
	msg := Message{Type: msgType}
	if payload == nil {
		return msg, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	msg.Payload = data
	return msg, nil
}

// Decode unmarshals the payload into v. An empty payload leaves v untouched.
func (m Message) Decode(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", m.Type, err)
	}
	return nil
}

//END OF FILE pickleball/internal/network/protocol.go
