package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind names the mutation that produced a TransactionEvent.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
	EventDeleted EventKind = "deleted"
)

func (k EventKind) IsValid() bool {
	switch k {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	default:
		return false
	}
}

// TransactionEvent announces a mutation. It carries only the id and the
// affected month; consumers reload what they need from the backend.
type TransactionEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Month     string    `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(id string, kind EventKind, month string) *TransactionEvent {
	return &TransactionEvent{
		ID:        id,
		Kind:      kind,
		Month:     month,
		Timestamp: time.Now().UTC(),
	}
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// TransactionEventFromJSON decodes and checks an event body.
func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var e TransactionEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.ID == "" {
		return nil, fmt.Errorf("event without id")
	}
	if !e.Kind.IsValid() {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return &e, nil
}
