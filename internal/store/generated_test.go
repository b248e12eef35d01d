package store

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/bxcodec/faker/v3"

	"expensekeeper/internal/core"
)

func TestGeneratedLedgerSurvivesCSV(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	src := New()

	for i := 0; i < 200; i++ {
		amount := core.MustParseMoney(fmt.Sprintf("%d.%02d", 1+rng.Intn(5000), rng.Intn(100)))
		date := core.NewDate(2020+rng.Intn(5), 1+rng.Intn(12), 1+rng.Intn(28))
		if _, err := src.Add(amount, faker.Word(), date, faker.Sentence()); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}

	var buf bytes.Buffer
	if err := src.ExportTo(&buf); err != nil {
		t.Fatalf("ExportTo: %v", err)
	}

	dst := New()
	n, err := dst.ImportFrom(&buf)
	if err != nil {
		t.Fatalf("ImportFrom: %v", err)
	}
	if n != src.Len() {
		t.Fatalf("imported %d, want %d", n, src.Len())
	}

	if !dst.TotalAmount().Equal(src.TotalAmount().Decimal) {
		t.Errorf("total = %s, want %s", dst.TotalAmount().Display(), src.TotalAmount().Display())
	}

	want := src.TotalsByCategory()
	got := dst.TotalsByCategory()
	if len(got) != len(want) {
		t.Fatalf("categories = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name || !got[i].Amount.Equal(want[i].Amount.Decimal) {
			t.Errorf("category %d = %s %s, want %s %s",
				i, got[i].Name, got[i].Amount.Display(), want[i].Name, want[i].Amount.Display())
		}
	}
}
