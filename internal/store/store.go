// Package store holds the in-memory expense ledger: identity assignment,
// CRUD, aggregation and CSV import/export.
//
// A Store is not safe for concurrent use. Callers that share one across
// goroutines must serialize access themselves.
package store

import (
	"container/list"
	"strings"

	"expensekeeper/internal/core"
)

type Store struct {
	nextID int64
	items  map[int64]*list.Element
	order  *list.List // of core.Expense, insertion order
	header bool
}

// Option configures a Store.
type Option func(*Store)

// WithHeader controls whether exports start with a header row. Imports accept
// files with or without one either way.
func WithHeader(enabled bool) Option {
	return func(s *Store) { s.header = enabled }
}

func New(opts ...Option) *Store {
	s := &Store{
		nextID: 1,
		items:  make(map[int64]*list.Element),
		order:  list.New(),
		header: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates the fields, stores a new expense and returns its id.
func (s *Store) Add(amount core.Money, category string, date core.Date, description string) (int64, error) {
	e, err := newExpense(amount, category, date, description)
	if err != nil {
		return 0, err
	}
	return s.insert(e), nil
}

// insert assigns the next id and appends e. e must already be valid.
func (s *Store) insert(e core.Expense) int64 {
	e.ID = s.nextID
	s.nextID++
	s.items[e.ID] = s.order.PushBack(e)
	return e.ID
}

// Get returns the expense with the given id, if any.
func (s *Store) Get(id int64) (core.Expense, bool) {
	elem, ok := s.items[id]
	if !ok {
		return core.Expense{}, false
	}
	return elem.Value.(core.Expense), true
}

// List returns a copy of all expenses in insertion order.
func (s *Store) List() []core.Expense {
	out := make([]core.Expense, 0, s.order.Len())
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		out = append(out, elem.Value.(core.Expense))
	}
	return out
}

// Len returns the number of stored expenses.
func (s *Store) Len() int {
	return s.order.Len()
}

// Update applies the supplied fields of p to the expense with the given id.
// It returns false when the id does not exist. A ValidationError leaves the
// expense untouched.
func (s *Store) Update(id int64, p core.ExpensePatch) (bool, error) {
	elem, ok := s.items[id]
	if !ok {
		return false, nil
	}
	e := elem.Value.(core.Expense)

	if amount, ok := p.Amount.Get(); ok {
		if !amount.IsValid() {
			return false, &ValidationError{Field: FieldAmount, Err: core.ErrInvalidAmount}
		}
		e.Amount = amount
	}
	if date, ok := p.Date.Get(); ok {
		if date.IsEmpty() {
			return false, &ValidationError{Field: FieldDate, Err: core.ErrInvalidDate}
		}
		e.Date = date
	}
	// Blank strings mean "no change"; a field is never set to empty.
	if category, ok := p.Category.Get(); ok {
		if category = normalizeText(category); category != "" {
			e.Category = category
		}
	}
	if description, ok := p.Description.Get(); ok {
		if description = normalizeText(description); description != "" {
			e.Description = description
		}
	}

	elem.Value = e
	return true, nil
}

// Delete removes the expense with the given id. Ids are never reassigned.
func (s *Store) Delete(id int64) bool {
	elem, ok := s.items[id]
	if !ok {
		return false
	}
	s.order.Remove(elem)
	delete(s.items, id)
	return true
}

// TotalAmount sums all amounts in insertion order.
func (s *Store) TotalAmount() core.Money {
	var total core.Money
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		total = total.Plus(elem.Value.(core.Expense).Amount)
	}
	return total
}

// TotalsByCategory sums amounts per exact category name, in the order each
// category was first seen.
func (s *Store) TotalsByCategory() []core.CategoryAmount {
	var out []core.CategoryAmount
	index := map[string]int{}
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		e := elem.Value.(core.Expense)
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategoryAmount{Name: e.Category})
		}
		out[i].Amount = out[i].Amount.Plus(e.Amount)
	}
	return out
}

// Summary returns the count, total and per-category totals.
func (s *Store) Summary() core.Summary {
	return core.Summary{
		Count:      s.Len(),
		Total:      s.TotalAmount(),
		ByCategory: s.TotalsByCategory(),
	}
}

// newExpense applies the add rules and builds an expense without an id.
func newExpense(amount core.Money, category string, date core.Date, description string) (core.Expense, error) {
	if !amount.IsValid() {
		return core.Expense{}, &ValidationError{Field: FieldAmount, Err: core.ErrInvalidAmount}
	}
	category = normalizeText(category)
	if category == "" {
		return core.Expense{}, &ValidationError{Field: FieldCategory, Err: core.ErrEmptyCategory}
	}
	if date.IsEmpty() {
		return core.Expense{}, &ValidationError{Field: FieldDate, Err: core.ErrInvalidDate}
	}
	description = normalizeText(description)
	if description == "" {
		return core.Expense{}, &ValidationError{Field: FieldDescription, Err: core.ErrEmptyDescription}
	}
	return core.Expense{
		Amount:      amount,
		Category:    category,
		Date:        date,
		Description: description,
	}, nil
}

// normalizeText trims text and stores line breaks as "\n", the form CSV
// reading yields for quoted fields.
func normalizeText(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n"))
}
