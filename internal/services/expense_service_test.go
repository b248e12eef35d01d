package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"expensekeeper/internal/amqp"
	"expensekeeper/internal/charts"
	"expensekeeper/internal/core"
	applog "expensekeeper/internal/log"
	"expensekeeper/internal/sheets/memory"
	"expensekeeper/internal/store"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*amqp.ExpenseEvent
	err      error
	closeErr error
	closed   bool
}

func (p *fakePublisher) PublishExpenseEvent(_ context.Context, event *amqp.ExpenseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return p.closeErr
}

type closingLedger struct {
	*memory.Store
	closeErr error
}

func (l closingLedger) Close() error { return l.closeErr }

func (p *fakePublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func newTestService(opts ...Option) *ExpenseService {
	opts = append([]Option{WithLogger(applog.Discard())}, opts...)
	return NewExpenseService(store.New(), opts...)
}

func TestExpenseService_MutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newTestService(WithPublisher(pub))

	id, err := svc.AddExpense(ctx, core.MustParseMoney("50.00"), "Food", core.NewDate(2024, 1, 5), "Lunch")
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if id != 1 {
		t.Fatalf("id = %d, want 1", id)
	}

	ok, err := svc.UpdateExpense(ctx, id, core.ExpensePatch{Category: core.Some("Dining")})
	if err != nil || !ok {
		t.Fatalf("UpdateExpense = %v, %v", ok, err)
	}
	if !svc.DeleteExpense(ctx, id) {
		t.Fatal("DeleteExpense returned false")
	}

	want := []amqp.EventType{amqp.EventCreated, amqp.EventUpdated, amqp.EventDeleted}
	got := pub.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if pub.events[0].ExpenseID != id {
		t.Errorf("created event expense id = %d, want %d", pub.events[0].ExpenseID, id)
	}
}

func TestExpenseService_FailuresDoNotPublish(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newTestService(WithPublisher(pub))

	_, err := svc.AddExpense(ctx, core.MustParseMoney("-5"), "Food", core.NewDate(2024, 1, 5), "Lunch")
	var vErr *store.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("AddExpense error = %v, want ValidationError", err)
	}

	ok, err := svc.UpdateExpense(ctx, 42, core.ExpensePatch{Category: core.Some("X")})
	if ok || err != nil {
		t.Errorf("UpdateExpense on missing id = %v, %v", ok, err)
	}
	if svc.DeleteExpense(ctx, 42) {
		t.Error("DeleteExpense on missing id returned true")
	}
	if n := len(pub.types()); n != 0 {
		t.Errorf("published %d events, want 0", n)
	}
}

func TestExpenseService_PublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := newTestService(WithPublisher(pub))

	id, err := svc.AddExpense(ctx, core.MustParseMoney("10"), "Misc", core.NewDate(2024, 2, 1), "Pens")
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, ok := svc.GetExpense(ctx, id); !ok {
		t.Fatal("expense missing after publish failure")
	}
}

func TestExpenseService_NilPublisher(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	if _, err := svc.AddExpense(ctx, core.MustParseMoney("10"), "Misc", core.NewDate(2024, 2, 1), "Pens"); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestExpenseService_Summary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	for _, in := range []struct{ amount, category string }{
		{"50.00", "Food"},
		{"30.00", "Transport"},
		{"20.00", "Food"},
	} {
		if _, err := svc.AddExpense(ctx, core.MustParseMoney(in.amount), in.category, core.NewDate(2024, 1, 5), "x"); err != nil {
			t.Fatalf("AddExpense: %v", err)
		}
	}

	sum := svc.Summary(ctx)
	if sum.Count != 3 {
		t.Errorf("Count = %d, want 3", sum.Count)
	}
	if got := sum.Total.Display(); got != "100.00" {
		t.Errorf("Total = %s, want 100.00", got)
	}
	if len(sum.ByCategory) != 2 || sum.ByCategory[0].Name != "Food" || sum.ByCategory[0].Amount.Display() != "70.00" {
		t.Errorf("ByCategory = %+v", sum.ByCategory)
	}
	if got := len(svc.ListExpenses(ctx)); got != 3 {
		t.Errorf("ListExpenses len = %d, want 3", got)
	}
}

func TestExpenseService_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.csv")

	src := newTestService()
	if _, err := src.AddExpense(ctx, core.MustParseMoney("12.50"), "Books", core.NewDate(2024, 3, 1), "Go, the language"); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if err := src.ExportFile(ctx, path); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	pub := &fakePublisher{}
	dst := newTestService(WithPublisher(pub))
	n, err := dst.ImportFile(ctx, path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported %d, want 1", n)
	}
	if got := pub.types(); len(got) != 1 || got[0] != amqp.EventImported || pub.events[0].Count != 1 {
		t.Errorf("import events = %v", got)
	}

	_, err = dst.ImportFile(ctx, filepath.Join(dir, "missing.csv"))
	var ioErr *store.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("ImportFile missing error = %v, want IOError", err)
	}
}

func TestExpenseService_ExportToSheet(t *testing.T) {
	ctx := context.Background()

	if _, err := newTestService().ExportToSheet(ctx); !errors.Is(err, ErrNoLedgerWriter) {
		t.Fatalf("ExportToSheet without sink = %v, want ErrNoLedgerWriter", err)
	}

	sink := memory.New()
	svc := newTestService(WithLedgerWriter(sink))
	if _, err := svc.AddExpense(ctx, core.MustParseMoney("9.99"), "Music", core.NewDate(2024, 4, 2), "Album"); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}

	ref, err := svc.ExportToSheet(ctx)
	if err != nil {
		t.Fatalf("ExportToSheet: %v", err)
	}
	if ref == "" {
		t.Error("empty ref")
	}
	if sink.Writes() != 1 || len(sink.Last()) != 1 || sink.Last()[0].Category != "Music" {
		t.Errorf("sink state: writes=%d last=%+v", sink.Writes(), sink.Last())
	}
}

func TestExpenseService_WriteCategoryChart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "chart.png")

	svc := newTestService()
	if err := svc.WriteCategoryChart(ctx, path); !errors.Is(err, charts.ErrNoData) {
		t.Fatalf("empty ledger chart = %v, want ErrNoData", err)
	}

	if _, err := svc.AddExpense(ctx, core.MustParseMoney("5"), "Coffee", core.NewDate(2024, 5, 1), "Espresso"); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if err := svc.WriteCategoryChart(ctx, path); err != nil {
		t.Fatalf("WriteCategoryChart: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("chart file: %v, size=%v", err, info)
	}
}

func TestExpenseService_CloseClosesPublisher(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(WithPublisher(pub))
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Error("publisher not closed")
	}
}

func TestExpenseService_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddExpense(ctx, core.MustParseMoney("1"), "Bulk", core.NewDate(2024, 1, 1), "item"); err != nil {
				t.Errorf("AddExpense: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := svc.Summary(ctx).Total.Display(); got != "50.00" {
		t.Errorf("Total = %s, want 50.00", got)
	}
}

func TestExpenseService_CloseReportsEveryFailure(t *testing.T) {
	pub := &fakePublisher{closeErr: errors.New("channel already closed")}
	ledger := closingLedger{Store: memory.New(), closeErr: errors.New("token revoked")}
	svc := newTestService(WithPublisher(pub), WithLedgerWriter(ledger))

	err := svc.Close()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"publisher: channel already closed", "ledger: token revoked"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestExpenseService_EmptyPatch(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := newTestService(WithPublisher(pub))

	if ok, err := svc.UpdateExpense(ctx, 7, core.ExpensePatch{}); ok || err != nil {
		t.Fatalf("empty patch on missing id = %v, %v", ok, err)
	}

	id, err := svc.AddExpense(ctx, core.MustParseMoney("3"), "Snacks", core.NewDate(2024, 6, 1), "Chips")
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if ok, err := svc.UpdateExpense(ctx, id, core.ExpensePatch{}); !ok || err != nil {
		t.Fatalf("empty patch on existing id = %v, %v", ok, err)
	}
	if got := pub.types(); len(got) != 1 || got[0] != amqp.EventCreated {
		t.Errorf("events = %v, want only the create event", got)
	}
}
