package amqp

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"expensetracker/internal/store"
)

// ChangeMessage announces that the record blob under Key changed. It does
// not carry the records: consumers re-read the shared backend, so a late or
// duplicated message can never roll the mirror back.
type ChangeMessage struct {
	ID        string    `json:"id"`
	Op        string    `json:"op"`
	ExpenseID int64     `json:"expense_id"`
	Version   uint64    `json:"version"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage wraps a store change for publishing.
func NewChangeMessage(key string, c store.Change) *ChangeMessage {
	at := c.At
	if at.IsZero() {
		at = time.Now()
	}
	return &ChangeMessage{
		ID:        uuid.NewString(),
		Op:        string(c.Op),
		ExpenseID: c.ID,
		Version:   c.Version,
		Key:       key,
		Timestamp: at.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message and checks the fields consumers
// rely on.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Key == "" {
		return nil, fmt.Errorf("change message %s has no key", msg.ID)
	}
	return &msg, nil
}
