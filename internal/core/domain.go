package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date encoding used for input and CSV.
const DateLayout = "2006-01-02"

type (
	// Date is a calendar day. The zero value is an unset date; any parsed
	// day, including 0001-01-01, is set.
	Date struct {
		time.Time
		set bool
	}

	// Expense is one recorded transaction. ID is assigned by the store.
	Expense struct {
		ID          int64
		Amount      Money
		Category    string
		Date        Date
		Description string
	}

	// ExpensePatch carries the fields of a partial update. Unset fields are
	// left unchanged; a set but blank Category or Description also means
	// "no change".
	ExpensePatch struct {
		Amount      Optional[Money]
		Category    Optional[string]
		Date        Optional[Date]
		Description Optional[string]
	}
)

var (
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidID        = errors.New("invalid id")
	ErrMalformedRecord  = errors.New("malformed record")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), set: true}
}

// ParseDate parses a YYYY-MM-DD string. Surrounding spaces are ignored.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t, set: true}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if !d.set {
		return ""
	}
	return d.Format(DateLayout)
}

// IsEmpty reports whether the date was never set.
func (d Date) IsEmpty() bool {
	return !d.set
}

// String renders the expense on one line with fields in a fixed order.
func (e Expense) String() string {
	return fmt.Sprintf("ID: %d, Amount: %s, Category: %s, Date: %s, Description: %s",
		e.ID, e.Amount.Display(), e.Category, e.Date, e.Description)
}

// Equal compares every field, amounts and dates by value.
func (e Expense) Equal(o Expense) bool {
	return e.ID == o.ID &&
		e.Amount.Equal(o.Amount.Decimal) &&
		e.Category == o.Category &&
		e.Date.Equal(o.Date.Time) &&
		e.Description == o.Description
}

// IsEmpty reports whether the patch requests no change at all.
func (p ExpensePatch) IsEmpty() bool {
	return !p.Amount.IsSet() && !p.Category.IsSet() && !p.Date.IsSet() && !p.Description.IsSet()
}
