package shell

import (
	"errors"
	"fmt"

	"expensekeeper/internal/charts"
	"expensekeeper/internal/core"
	"expensekeeper/internal/services"
	"expensekeeper/internal/store"
)

const (
	msgInvalidAmount = "Invalid amount. Amount must be a positive number."
	msgInvalidDate   = "Invalid date format. Use YYYY-MM-DD."
	msgInvalidID     = "Invalid ID."
	msgNotFound      = "Expense not found."
)

// userMessage converts a service error into text for the user.
func userMessage(err error) string {
	var vErr *store.ValidationError
	if errors.As(err, &vErr) {
		msg := validationMessage(vErr)
		if vErr.Row > 0 {
			return fmt.Sprintf("Row %d: %s", vErr.Row, msg)
		}
		return msg
	}

	var ioErr *store.IOError
	if errors.As(err, &ioErr) {
		if ioErr.Path != "" {
			return fmt.Sprintf("Could not %s %s: %v.", ioErr.Op, ioErr.Path, ioErr.Err)
		}
		return fmt.Sprintf("Could not %s: %v.", ioErr.Op, ioErr.Err)
	}

	switch {
	case errors.Is(err, services.ErrNoLedgerWriter):
		return "No ledger sink configured."
	case errors.Is(err, charts.ErrNoData):
		return "No expenses to chart."
	}
	return fmt.Sprintf("Error: %v.", err)
}

func validationMessage(err *store.ValidationError) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return msgInvalidAmount
	case errors.Is(err, core.ErrInvalidDate):
		return msgInvalidDate
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category cannot be empty."
	case errors.Is(err, core.ErrEmptyDescription):
		return "Description cannot be empty."
	case errors.Is(err, core.ErrInvalidID):
		return msgInvalidID
	}
	return fmt.Sprintf("Invalid %s: %v.", err.Field, err.Err)
}
