package sheets

import (
	"context"

	"expensekeeper/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerWriter replaces the contents of an external ledger with a
	// snapshot of the expenses, in the given order.
	LedgerWriter interface {
		WriteLedger(ctx context.Context, expenses []core.Expense) (ref string, err error)
	}
)

// Header is the column layout written to a ledger sheet. It matches the CSV
// export.
var Header = []string{"ID", "Amount", "Category", "Date", "Description"}
