package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"expensekeeper/internal/amqp"
	"expensekeeper/internal/charts"
	"expensekeeper/internal/core"
	applog "expensekeeper/internal/log"
	"expensekeeper/internal/sheets"
	"expensekeeper/internal/store"
)

// ErrNoLedgerWriter is returned by ExportToSheet when no sink is configured.
var ErrNoLedgerWriter = errors.New("no ledger sink configured")

// EventPublisher publishes ledger change events.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, event *amqp.ExpenseEvent) error
}

// ExpenseService serializes access to the store and fans successful
// mutations out to the optional event publisher.
type ExpenseService struct {
	mu          sync.Mutex
	store       *store.Store
	publisher   EventPublisher
	ledger      sheets.LedgerWriter
	logger      *applog.Logger
	sinkTimeout time.Duration
}

type Option func(*ExpenseService)

func WithPublisher(p EventPublisher) Option {
	return func(s *ExpenseService) { s.publisher = p }
}

func WithLedgerWriter(w sheets.LedgerWriter) Option {
	return func(s *ExpenseService) { s.ledger = w }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *ExpenseService) { s.logger = l }
}

func WithSinkTimeout(d time.Duration) Option {
	return func(s *ExpenseService) { s.sinkTimeout = d }
}

func NewExpenseService(st *store.Store, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:       st,
		sinkTimeout: 15 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(applog.ComponentExpense)
	return s
}

// AddExpense validates and stores a new expense.
func (s *ExpenseService) AddExpense(ctx context.Context, amount core.Money, category string, date core.Date, description string) (int64, error) {
	s.mu.Lock()
	id, err := s.store.Add(amount, category, date, description)
	e, _ := s.store.Get(id)
	s.mu.Unlock()

	if err != nil {
		s.logFailure(ctx, "Expense rejected", applog.OpCreate, err, applog.NewFields())
		return 0, fmt.Errorf("add expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense created", applog.NewFields().WithExpense(e).WithOperation(applog.OpCreate).ToSlice()...)
	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventCreated, id))
	return id, nil
}

// GetExpense returns the expense with the given id, if any.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.store.Get(id)
	s.logger.DebugContext(ctx, "Expense lookup", applog.FieldExpenseID, id, applog.FieldSuccess, ok)
	return e, ok
}

// ListExpenses returns all expenses in insertion order.
func (s *ExpenseService) ListExpenses(ctx context.Context) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.List()
}

// UpdateExpense applies a partial update. It returns false when id is unknown.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, patch core.ExpensePatch) (bool, error) {
	s.mu.Lock()
	ok, err := s.store.Update(id, patch)
	e, _ := s.store.Get(id)
	s.mu.Unlock()

	if err != nil {
		s.logFailure(ctx, "Expense update rejected", applog.OpUpdate, err, applog.NewFields().WithExpenseID(id))
		return false, fmt.Errorf("update expense %d: %w", id, err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "Expense not found", applog.NewFields().WithExpenseID(id).WithOperation(applog.OpUpdate).ToSlice()...)
		return false, nil
	}

	if patch.IsEmpty() {
		return true, nil
	}
	s.logger.InfoContext(ctx, "Expense updated", applog.NewFields().WithExpense(e).WithOperation(applog.OpUpdate).ToSlice()...)
	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventUpdated, id))
	return true, nil
}

// DeleteExpense removes an expense. It returns false when id is unknown.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) bool {
	s.mu.Lock()
	ok := s.store.Delete(id)
	s.mu.Unlock()

	fields := applog.NewFields().WithExpenseID(id).WithOperation(applog.OpDelete)
	if !ok {
		s.logger.InfoContext(ctx, "Expense not found", fields.ToSlice()...)
		return false
	}
	s.logger.InfoContext(ctx, "Expense deleted", fields.ToSlice()...)
	s.publish(ctx, amqp.NewExpenseEvent(amqp.EventDeleted, id))
	return true
}

// Summary returns the total and per-category totals.
func (s *ExpenseService) Summary(ctx context.Context) core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Summary()
}

// ImportFile adds every record of a CSV file, or none.
func (s *ExpenseService) ImportFile(ctx context.Context, path string) (int, error) {
	s.mu.Lock()
	n, err := s.store.ImportFile(path)
	s.mu.Unlock()

	fields := applog.NewFields().WithPath(path)
	if err != nil {
		s.logFailure(ctx, "Import failed", applog.OpImport, err, fields)
		return 0, fmt.Errorf("import %s: %w", path, err)
	}

	s.logger.InfoContext(ctx, "Expenses imported", fields.WithCount(n).WithOperation(applog.OpImport).ToSlice()...)
	if n > 0 {
		s.publish(ctx, amqp.NewImportEvent(n))
	}
	return n, nil
}

// ExportFile writes the ledger to a CSV file.
func (s *ExpenseService) ExportFile(ctx context.Context, path string) error {
	s.mu.Lock()
	n := s.store.Len()
	err := s.store.ExportFile(path)
	s.mu.Unlock()

	fields := applog.NewFields().WithPath(path)
	if err != nil {
		s.logFailure(ctx, "Export failed", applog.OpExport, err, fields)
		return fmt.Errorf("export %s: %w", path, err)
	}
	s.logger.InfoContext(ctx, "Expenses exported", fields.WithCount(n).WithOperation(applog.OpExport).ToSlice()...)
	return nil
}

// ExportToSheet sends a snapshot of the ledger to the configured sink.
func (s *ExpenseService) ExportToSheet(ctx context.Context) (string, error) {
	if s.ledger == nil {
		return "", ErrNoLedgerWriter
	}

	s.mu.Lock()
	snapshot := s.store.List()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.sinkTimeout)
	defer cancel()

	ref, err := s.ledger.WriteLedger(ctx, snapshot)
	if err != nil {
		s.logFailure(ctx, "Sheet export failed", applog.OpExport, err, applog.NewFields().WithCount(len(snapshot)))
		return "", fmt.Errorf("write ledger: %w", err)
	}
	s.logger.InfoContext(ctx, "Ledger exported to sheet",
		applog.NewFields().WithCount(len(snapshot)).WithOperation(applog.OpExport).ToSlice()...)
	return ref, nil
}

// WriteCategoryChart renders the per-category totals as a PNG file.
func (s *ExpenseService) WriteCategoryChart(ctx context.Context, path string) error {
	s.mu.Lock()
	totals := s.store.TotalsByCategory()
	s.mu.Unlock()

	png, err := charts.RenderCategoryPie(totals)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		ioErr := &store.IOError{Op: "chart", Path: path, Err: err}
		s.logFailure(ctx, "Chart write failed", applog.OpRender, ioErr, applog.NewFields().WithPath(path))
		return ioErr
	}
	s.logger.InfoContext(ctx, "Category chart written",
		applog.NewFields().WithPath(path).WithCount(len(totals)).WithOperation(applog.OpRender).ToSlice()...)
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, event *amqp.ExpenseEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Event publisher not available, skipping event", "type", event.Type)
		return
	}
	// Failures never fail the operation: the ledger change already happened.
	if err := s.publisher.PublishExpenseEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish expense event",
			applog.NewFields().
				WithExpenseID(event.ExpenseID).
				WithOperation(applog.OpPublish).
				WithErrorType(applog.ErrorTypeNetwork).
				WithError(err).
				ToSlice()...)
	}
}

func (s *ExpenseService) logFailure(ctx context.Context, msg, op string, err error, fields applog.LogFields) {
	errType := applog.ErrorTypeInternal
	var vErr *store.ValidationError
	var ioErr *store.IOError
	switch {
	case errors.As(err, &vErr):
		errType = applog.ErrorTypeValidation
	case errors.As(err, &ioErr):
		errType = applog.ErrorTypeIO
	}
	s.logger.WarnContext(ctx, msg, fields.WithOperation(op).WithErrorType(errType).WithError(err).ToSlice()...)
}

// Close releases the publisher and ledger sink when they hold resources.
func (s *ExpenseService) Close() error {
	var result *multierror.Error

	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("publisher: %w", err))
		}
	}
	if c, ok := s.ledger.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("ledger: %w", err))
		}
	}

	return result.ErrorOrNil()
}
