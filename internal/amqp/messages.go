package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"accountant/internal/core"

	"github.com/google/uuid"
)

// RecordsChangedMessage announces that records of some kinds were written.
// Consumers reload what they need; the message carries no record data.
type RecordsChangedMessage struct {
	ID        string            `json:"id"`
	Kinds     []core.EntityKind `json:"kinds"`
	Source    string            `json:"source"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewRecordsChangedMessage creates a message with a fresh id.
func NewRecordsChangedMessage(kinds []core.EntityKind, source string) *RecordsChangedMessage {
	return &RecordsChangedMessage{
		ID:        uuid.NewString(),
		Kinds:     kinds,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// Touches reports whether the change includes kind. An empty kind list
// means every kind may have changed.
func (m *RecordsChangedMessage) Touches(kind core.EntityKind) bool {
	if len(m.Kinds) == 0 {
		return true
	}
	for _, k := range m.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ToJSON converts the message to JSON bytes
func (m *RecordsChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordsChangedMessageFromJSON parses and checks a message.
func RecordsChangedMessageFromJSON(data []byte) (*RecordsChangedMessage, error) {
	var msg RecordsChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, fmt.Errorf("message id: %w", err)
	}
	for _, k := range msg.Kinds {
		if !k.IsValid() {
			return nil, fmt.Errorf("unknown entity kind %q", k)
		}
	}
	return &msg, nil
}
