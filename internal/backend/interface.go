package backend

import (
	"context"

	"expensekeeper/internal/services"
	"expensekeeper/internal/sheets"
)

// Result contains the optional collaborators of the expense service.
// Publisher is nil when change events are disabled; the service closes it.
type Result struct {
	Publisher services.EventPublisher
	Ledger    sheets.LedgerWriter
}

// Factory creates the collaborators based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Ledger sink
	Sink SinkType

	// AMQP change events, disabled when URL is empty
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// SinkType represents the type of ledger sink
type SinkType string

const (
	MemorySink SinkType = "memory"
	SheetsSink SinkType = "sheets"
)

// String implements fmt.Stringer
func (st SinkType) String() string {
	return string(st)
}

// IsValid returns true if the sink type is valid
func (st SinkType) IsValid() bool {
	switch st {
	case MemorySink, SheetsSink:
		return true
	default:
		return false
	}
}
