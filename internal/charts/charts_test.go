package charts

import (
	"bytes"
	"errors"
	"testing"

	"expensekeeper/internal/core"
)

func TestRenderCategoryPieEmpty(t *testing.T) {
	if _, err := RenderCategoryPie(nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestRenderCategoryPiePNG(t *testing.T) {
	png, err := RenderCategoryPie([]core.CategoryAmount{
		{Name: "Food", Amount: core.MustParseMoney("50")},
		{Name: "Transport", Amount: core.MustParseMoney("20")},
	})
	if err != nil {
		t.Fatalf("RenderCategoryPie: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatalf("output is not a PNG")
	}
}
