package log

import "expensekeeper/internal/core"

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldSuccess   = "success"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldExpenseID = "expense_id"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldDate      = "date"
	FieldCount     = "count"
	FieldPath      = "path"
	FieldRef       = "ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentExpense = "expense"
	ComponentAMQP    = "amqp"
	ComponentSheets  = "sheets"
	ComponentCharts  = "charts"
	ComponentShell   = "shell"
	ComponentBackend = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSummary  = "summary"
	OpImport   = "import"
	OpExport   = "export"
	OpPublish  = "publish"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeIO            = "io_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithErrorType adds the error category
func (f LogFields) WithErrorType(errType string) LogFields {
	f[FieldErrorType] = errType
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(e core.Expense) LogFields {
	f[FieldExpenseID] = e.ID
	f[FieldAmount] = e.Amount.String()
	f[FieldCategory] = e.Category
	f[FieldDate] = e.Date.String()
	return f
}

// WithExpenseID adds only the expense id
func (f LogFields) WithExpenseID(id int64) LogFields {
	f[FieldExpenseID] = id
	return f
}

// WithCount adds a record count
func (f LogFields) WithCount(n int) LogFields {
	f[FieldCount] = n
	return f
}

// WithPath adds a file path
func (f LogFields) WithPath(path string) LogFields {
	f[FieldPath] = path
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
