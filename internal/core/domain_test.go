package core

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-01-05", true},
		{"0001-01-01", true},
		{" 2025-12-31 ", true},
		{"2024-02-30", false},
		{"05/01/2024", false},
		{"", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("%q expected ok, got %v", tc.in, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("%q expected ErrInvalidDate, got %v", tc.in, err)
			}
			continue
		}
		if d.String() != strings.TrimSpace(tc.in) {
			t.Fatalf("round trip %q -> %q", tc.in, d.String())
		}
	}
}

func TestDateZero(t *testing.T) {
	var d Date
	if !d.IsEmpty() || d.String() != "" {
		t.Fatalf("zero date should be empty, got %q", d.String())
	}
	if NewDate(2024, 1, 5).String() != "2024-01-05" {
		t.Fatalf("unexpected NewDate format")
	}

	first, err := ParseDate("0001-01-01")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if first.IsEmpty() || first.String() != "0001-01-01" {
		t.Fatalf("first calendar day treated as unset: empty=%v %q", first.IsEmpty(), first.String())
	}
}

func TestExpenseString(t *testing.T) {
	e := Expense{
		ID:          1,
		Amount:      MustParseMoney("50"),
		Category:    "Food",
		Date:        NewDate(2024, 1, 5),
		Description: "Lunch",
	}
	want := "ID: 1, Amount: 50.00, Category: Food, Date: 2024-01-05, Description: Lunch"
	if got := e.String(); got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}

func TestExpenseEqual(t *testing.T) {
	a := Expense{ID: 1, Amount: MustParseMoney("50.00"), Category: "Food", Date: NewDate(2024, 1, 5), Description: "Lunch"}
	b := a
	b.Amount = MustParseMoney("50")
	if !a.Equal(b) {
		t.Fatalf("expected 50.00 and 50 to compare equal")
	}
	b.Category = "food"
	if a.Equal(b) {
		t.Fatalf("categories are case-sensitive")
	}
}

func TestOptional(t *testing.T) {
	var o Optional[string]
	if o.IsSet() {
		t.Fatalf("zero option should be unset")
	}
	if _, ok := None[int]().Get(); ok {
		t.Fatalf("None should be unset")
	}
	v, ok := Some("").Get()
	if !ok || v != "" {
		t.Fatalf("Some(\"\") should be set with empty value")
	}
	if !(ExpensePatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
	if (ExpensePatch{Amount: Some(MustParseMoney("1"))}).IsEmpty() {
		t.Fatalf("patch with amount is not empty")
	}
}
