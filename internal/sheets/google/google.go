package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"expensekeeper/internal/core"
	ports "expensekeeper/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Ensure interface conformance
var _ ports.LedgerWriter = (*Client)(nil)

// Options configures a Client.
type Options struct {
	SpreadsheetID string
	SheetName     string
	// Service account credentials, inline JSON takes precedence over the file.
	CredentialsJSON string
	CredentialsFile string
}

// valuesAPI is the subset of the Sheets values API the client needs.
type valuesAPI interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) (updatedRange string, err error)
}

type Client struct {
	values        valuesAPI
	spreadsheetID string
	sheetName     string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(opts.SheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}

	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		values:        serviceValues{svc: svc},
		spreadsheetID: opts.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	var credentialsJSON []byte

	switch {
	case strings.TrimSpace(opts.CredentialsJSON) != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(opts.CredentialsJSON)
	case strings.TrimSpace(opts.CredentialsFile) != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", opts.CredentialsFile)
		data, err := os.ReadFile(opts.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// WriteLedger replaces columns A:E of the ledger sheet with a header and one
// row per expense. Amounts are sent as exact decimal strings and parsed by
// Sheets; text cells are forced literal.
func (c *Client) WriteLedger(ctx context.Context, expenses []core.Expense) (string, error) {
	if c.values == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := quoteSheetName(c.sheetName)
	if err := c.values.Clear(ctx, c.spreadsheetID, sheet+"!A:E"); err != nil {
		return "", fmt.Errorf("failed to clear sheet %s: %w", c.sheetName, err)
	}

	rows := ledgerValues(expenses)
	rng := fmt.Sprintf("%s!A1:E%d", sheet, len(rows))
	updated, err := c.values.Update(ctx, c.spreadsheetID, rng, rows)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", rng, err)
	}

	slog.InfoContext(ctx, "Ledger written to sheet",
		"sheet", c.sheetName,
		"rows", len(expenses),
		"range", updated)

	if updated == "" {
		updated = rng
	}
	return updated, nil
}

// ledgerValues converts expenses to a values matrix, header first.
func ledgerValues(expenses []core.Expense) [][]any {
	rows := make([][]any, 0, len(expenses)+1)
	header := make([]any, len(ports.Header))
	for i, h := range ports.Header {
		header[i] = h
	}
	rows = append(rows, header)
	for _, e := range expenses {
		rows = append(rows, []any{
			e.ID,
			e.Amount.String(),
			literalText(e.Category),
			e.Date.String(),
			literalText(e.Description),
		})
	}
	return rows
}

// literalText keeps user text from being read as a formula or number when
// values are written with USER_ENTERED.
func literalText(s string) string {
	if s != "" && strings.ContainsRune("=+-@'", rune(s[0])) {
		return "'" + s
	}
	return s
}

// quoteSheetName quotes a sheet name for use in A1 notation when needed.
func quoteSheetName(name string) string {
	for _, r := range name {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}

type serviceValues struct {
	svc *gsheet.Service
}

func (v serviceValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := v.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (v serviceValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) (string, error) {
	resp, err := v.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return resp.UpdatedRange, nil
}
