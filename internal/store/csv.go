package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"expensekeeper/internal/core"
)

// Header is the column layout shared by import and export.
var Header = []string{"id", "amount", "category", "date", "description"}

// ImportFrom reads CSV records from r and adds them all, or none. Every row is
// validated like Add; the first failure aborts the import with a
// ValidationError naming the row and field. Imported ids are discarded and
// fresh ones assigned.
func (s *Store) ImportFrom(r io.Reader) (int, error) {
	staged, err := readRecords(r)
	if err != nil {
		return 0, err
	}
	for _, e := range staged {
		s.insert(e)
	}
	return len(staged), nil
}

// ImportFile opens path and imports it with ImportFrom.
func (s *Store) ImportFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, &IOError{Op: "import", Path: path, Err: err}
	}
	defer f.Close()

	n, err := s.ImportFrom(f)
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		ioErr.Path = path
	}
	return n, err
}

// ExportTo writes every expense to w as CSV in insertion order.
func (s *Store) ExportTo(w io.Writer) error {
	cw := csv.NewWriter(w)
	if s.header {
		if err := cw.Write(Header); err != nil {
			return &IOError{Op: "export", Err: err}
		}
	}
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		if err := cw.Write(EncodeRecord(elem.Value.(core.Expense))); err != nil {
			return &IOError{Op: "export", Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &IOError{Op: "export", Err: err}
	}
	return nil
}

// ExportFile creates or truncates path and writes the ledger to it.
func (s *Store) ExportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	if err := s.ExportTo(f); err != nil {
		f.Close()
		var ioErr *IOError
		if errors.As(err, &ioErr) {
			ioErr.Path = path
		}
		return err
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "export", Path: path, Err: err}
	}
	return nil
}

// EncodeRecord returns the CSV fields of e in Header order.
func EncodeRecord(e core.Expense) []string {
	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Amount.String(),
		e.Category,
		e.Date.String(),
		e.Description,
	}
}

// readRecords parses and validates every row before anything is stored.
func readRecords(r io.Reader) ([]core.Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // column count is checked per row to report it as a validation error

	var staged []core.Expense
	row := 0
	first := true
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &ValidationError{Row: row + 1, Field: FieldRecord, Err: fmt.Errorf("%w: %v", core.ErrMalformedRecord, parseErr.Err)}
			}
			return nil, &IOError{Op: "import", Err: err}
		}
		if first {
			first = false
			if isHeader(fields) {
				continue
			}
		}
		row++
		e, err := decodeRecord(fields)
		if err != nil {
			var vErr *ValidationError
			if errors.As(err, &vErr) {
				vErr.Row = row
			}
			return nil, err
		}
		staged = append(staged, e)
	}
	return staged, nil
}

func decodeRecord(fields []string) (core.Expense, error) {
	if len(fields) != len(Header) {
		return core.Expense{}, &ValidationError{
			Field: FieldRecord,
			Err:   fmt.Errorf("%w: expected %d fields, got %d", core.ErrMalformedRecord, len(Header), len(fields)),
		}
	}
	// The id column is read but never trusted for identity.
	if id := strings.TrimSpace(fields[0]); id != "" {
		if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			return core.Expense{}, &ValidationError{Field: FieldID, Err: fmt.Errorf("%w: %q", core.ErrInvalidID, id)}
		}
	}
	amount, err := core.ParseMoney(fields[1])
	if err != nil {
		return core.Expense{}, &ValidationError{Field: FieldAmount, Err: fmt.Errorf("%w: %q", err, fields[1])}
	}
	date, err := core.ParseDate(fields[3])
	if err != nil {
		return core.Expense{}, &ValidationError{Field: FieldDate, Err: err}
	}
	return newExpense(amount, fields[2], date, fields[4])
}

func isHeader(fields []string) bool {
	if len(fields) != len(Header) {
		return false
	}
	for i, f := range fields {
		if !strings.EqualFold(strings.TrimSpace(f), Header[i]) {
			return false
		}
	}
	return true
}
