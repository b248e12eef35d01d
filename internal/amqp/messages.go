package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType names a ledger change.
type EventType string

const (
	EventCreated  EventType = "expense.created"
	EventUpdated  EventType = "expense.updated"
	EventDeleted  EventType = "expense.deleted"
	EventImported EventType = "expense.imported"
)

// ExpenseEvent is a lightweight notification that the ledger changed.
// ExpenseID is zero for bulk events; Count carries the number of records
// an import added.
type ExpenseEvent struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	ExpenseID int64     `json:"expense_id,omitempty"`
	Count     int       `json:"count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseEvent creates an event for a single expense.
func NewExpenseEvent(t EventType, expenseID int64) *ExpenseEvent {
	return &ExpenseEvent{
		EventID:   uuid.NewString(),
		Type:      t,
		ExpenseID: expenseID,
		Timestamp: time.Now().UTC(),
	}
}

// NewImportEvent creates an event for a bulk import of count records.
func NewImportEvent(count int) *ExpenseEvent {
	return &ExpenseEvent{
		EventID:   uuid.NewString(),
		Type:      EventImported,
		Count:     count,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON creates a message from JSON bytes
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
