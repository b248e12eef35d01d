// Package shell is the line-oriented front end of the expense keeper. It
// parses typed arguments from text, calls the service and renders results.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"expensekeeper/internal/core"
	applog "expensekeeper/internal/log"
	"expensekeeper/internal/services"
)

const defaultPrompt = "expenses> "

const helpText = `Commands:
  add <amount> <category> <date> <description>   record an expense (date YYYY-MM-DD)
  list                                            show all expenses
  get <id>                                        show one expense
  update <id> [amount=..] [category=..] [date=..] [description=..]
  delete <id>                                     remove an expense
  report                                          total and per-category totals
  import <file>                                   add expenses from a CSV file
  export <file>                                   write all expenses to a CSV file
  sheet                                           export the ledger to the configured sheet
  chart <file.png>                                draw per-category totals
  help                                            show this help
  exit | quit                                     leave
Use double quotes for values with spaces.`

type Shell struct {
	svc    *services.ExpenseService
	in     io.Reader
	out    io.Writer
	prompt string
}

type Option func(*Shell)

// WithPrompt sets the prompt; an empty prompt disables it.
func WithPrompt(p string) Option {
	return func(s *Shell) { s.prompt = p }
}

func New(svc *services.ExpenseService, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		svc:    svc,
		in:     in,
		out:    out,
		prompt: defaultPrompt,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run reads commands until exit, end of input or ctx cancellation.
func (s *Shell) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	fmt.Fprintln(s.out, "Expense keeper. Type 'help' for commands.")
	for {
		s.showPrompt()
		select {
		case <-ctx.Done():
			// The reader goroutine stays blocked in Scan until input arrives
			// unless the input can be closed.
			if c, ok := s.in.(io.Closer); ok {
				_ = c.Close()
			}
			fmt.Fprintln(s.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				fmt.Fprintln(s.out)
				return nil
			}
			if quit := s.Execute(ctx, line); quit {
				return nil
			}
		}
	}
}

func (s *Shell) showPrompt() {
	if s.prompt != "" {
		fmt.Fprint(s.out, s.prompt)
	}
}

// Execute runs a single command line and reports whether the shell should stop.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	args, err := splitArgs(line)
	if err != nil {
		s.printf("Error: %v.\n", err)
		return false
	}
	if len(args) == 0 {
		return false
	}

	cmd, args := strings.ToLower(args[0]), args[1:]
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentShell)
	logger.DebugContext(ctx, "Command received", "command", cmd, "args", len(args))

	switch cmd {
	case "help", "?":
		s.println(helpText)
	case "add":
		s.handleAdd(ctx, args)
	case "list", "ls":
		s.handleList(ctx)
	case "get", "show":
		s.handleGet(ctx, args)
	case "update", "edit":
		s.handleUpdate(ctx, args)
	case "delete", "rm":
		s.handleDelete(ctx, args)
	case "report":
		s.handleReport(ctx)
	case "import":
		s.handleImport(ctx, args)
	case "export":
		s.handleExport(ctx, args)
	case "sheet":
		s.handleSheet(ctx)
	case "chart":
		s.handleChart(ctx, args)
	case "exit", "quit":
		return true
	default:
		s.printf("Unknown command %q. Type 'help' for a list of commands.\n", cmd)
	}
	return false
}

func (s *Shell) handleAdd(ctx context.Context, args []string) {
	if len(args) < 4 {
		s.println("Usage: add <amount> <category> <date> <description>")
		return
	}

	amount, err := core.ParseMoney(args[0])
	if err != nil {
		s.println(msgInvalidAmount)
		return
	}
	date, err := core.ParseDate(args[2])
	if err != nil {
		s.println(msgInvalidDate)
		return
	}
	description := strings.Join(args[3:], " ")

	id, err := s.svc.AddExpense(ctx, amount, args[1], date, description)
	if err != nil {
		s.println(userMessage(err))
		return
	}
	s.printf("Expense added with ID %d.\n", id)
}

func (s *Shell) handleList(ctx context.Context) {
	expenses := s.svc.ListExpenses(ctx)
	if len(expenses) == 0 {
		s.println("No expenses recorded.")
		return
	}
	for _, e := range expenses {
		s.println(e.String())
	}
}

func (s *Shell) handleGet(ctx context.Context, args []string) {
	id, ok := s.parseID(args, "get <id>")
	if !ok {
		return
	}
	e, found := s.svc.GetExpense(ctx, id)
	if !found {
		s.println(msgNotFound)
		return
	}
	s.println(e.String())
}

func (s *Shell) handleUpdate(ctx context.Context, args []string) {
	id, ok := s.parseID(args, "update <id> [amount=..] [category=..] [date=..] [description=..]")
	if !ok {
		return
	}

	var patch core.ExpensePatch
	for _, arg := range args[1:] {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			s.printf("Expected key=value, got %q.\n", arg)
			return
		}
		switch strings.ToLower(key) {
		case "amount":
			amount, err := core.ParseMoney(value)
			if err != nil {
				s.println(msgInvalidAmount)
				return
			}
			patch.Amount = core.Some(amount)
		case "category":
			patch.Category = core.Some(value)
		case "date":
			date, err := core.ParseDate(value)
			if err != nil {
				s.println(msgInvalidDate)
				return
			}
			patch.Date = core.Some(date)
		case "description":
			patch.Description = core.Some(value)
		default:
			s.printf("Unknown field %q. Use amount, category, date or description.\n", key)
			return
		}
	}
	updated, err := s.svc.UpdateExpense(ctx, id, patch)
	switch {
	case err != nil:
		s.println(userMessage(err))
	case !updated:
		s.println(msgNotFound)
	case patch.IsEmpty():
		s.println("Nothing to update.")
	default:
		s.printf("Expense %d updated.\n", id)
	}
}

func (s *Shell) handleDelete(ctx context.Context, args []string) {
	id, ok := s.parseID(args, "delete <id>")
	if !ok {
		return
	}
	if !s.svc.DeleteExpense(ctx, id) {
		s.println(msgNotFound)
		return
	}
	s.printf("Expense %d deleted.\n", id)
}

func (s *Shell) handleReport(ctx context.Context) {
	summary := s.svc.Summary(ctx)

	var b strings.Builder
	b.WriteString("=== Reports ===\n")
	fmt.Fprintf(&b, "Total Expenses: $%s\n", summary.Total.Display())
	b.WriteString("\nExpenses by Category:\n")
	for _, c := range summary.ByCategory {
		fmt.Fprintf(&b, "%s: $%s\n", c.Name, c.Amount.Display())
	}
	fmt.Fprint(s.out, b.String())
}

func (s *Shell) handleImport(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.println("Usage: import <file>")
		return
	}
	n, err := s.svc.ImportFile(ctx, args[0])
	if err != nil {
		s.printf("Error importing file: %s\n", userMessage(err))
		return
	}
	s.printf("Imported %s expenses.\n", humanize.Comma(int64(n)))
}

func (s *Shell) handleExport(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.println("Usage: export <file>")
		return
	}
	if err := s.svc.ExportFile(ctx, args[0]); err != nil {
		s.printf("Error exporting file: %s\n", userMessage(err))
		return
	}
	s.println("Expenses exported successfully.")
}

func (s *Shell) handleSheet(ctx context.Context) {
	ref, err := s.svc.ExportToSheet(ctx)
	if err != nil {
		s.println(userMessage(err))
		return
	}
	s.printf("Ledger exported to %s.\n", ref)
}

func (s *Shell) handleChart(ctx context.Context, args []string) {
	if len(args) != 1 {
		s.println("Usage: chart <file.png>")
		return
	}
	if err := s.svc.WriteCategoryChart(ctx, args[0]); err != nil {
		s.println(userMessage(err))
		return
	}
	if info, err := os.Stat(args[0]); err == nil {
		s.printf("Chart written to %s (%s).\n", args[0], humanize.Bytes(uint64(info.Size())))
		return
	}
	s.printf("Chart written to %s.\n", args[0])
}

func (s *Shell) parseID(args []string, usage string) (int64, bool) {
	if len(args) == 0 {
		s.println("Usage: " + usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		s.println(msgInvalidID)
		return 0, false
	}
	return id, true
}

func (s *Shell) println(msg string) {
	fmt.Fprintln(s.out, msg)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
