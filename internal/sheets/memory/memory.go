package memory

import (
	"context"
	"fmt"
	"sync"

	"expensekeeper/internal/core"
	"expensekeeper/internal/sheets"
)

var _ sheets.LedgerWriter = (*Store)(nil)

// Store is an in-process LedgerWriter. It keeps the last snapshot written.
type Store struct {
	mu     sync.Mutex
	writes int
	last   []core.Expense
}

func New() *Store {
	return &Store{}
}

// WriteLedger stores a copy of the snapshot and returns a synthetic reference.
func (s *Store) WriteLedger(_ context.Context, expenses []core.Expense) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = append([]core.Expense(nil), expenses...)
	s.writes++
	return fmt.Sprintf("mem:%d", s.writes), nil
}

// Last returns a copy of the most recent snapshot.
func (s *Store) Last() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.last...)
}

// Writes returns how many snapshots were written.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
