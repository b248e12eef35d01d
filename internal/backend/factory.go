package backend

import (
	"context"
	"fmt"

	"expensekeeper/internal/amqp"
	applog "expensekeeper/internal/log"
	"expensekeeper/internal/sheets"
	gsheet "expensekeeper/internal/sheets/google"
	"expensekeeper/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger

	dialAMQP  func(url, exchange, queue string) (*amqp.Client, error)
	newSheets func(ctx context.Context, opts gsheet.Options) (sheets.LedgerWriter, error)
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger:   logger.WithComponent(applog.ComponentBackend),
		dialAMQP: amqp.NewClient,
		newSheets: func(ctx context.Context, opts gsheet.Options) (sheets.LedgerWriter, error) {
			return gsheet.New(ctx, opts)
		},
	}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	ledger, err := f.createLedger(ctx, config)
	if err != nil {
		return nil, err
	}

	result := &Result{Ledger: ledger}

	// AMQP is optional: a broker that cannot be reached leaves events disabled
	if config.AMQPURL != "" {
		client, err := f.dialAMQP(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events",
				applog.NewFields().WithOperation(applog.OpStartup).WithErrorType(applog.ErrorTypeNetwork).WithError(err).ToSlice()...)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
		}
	}

	return result, nil
}

func (f *DefaultFactory) createLedger(ctx context.Context, config Config) (sheets.LedgerWriter, error) {
	switch config.Sink {
	case SheetsSink:
		w, err := f.newSheets(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets sink", "sheet", config.GoogleSheetName)
		return w, nil
	case MemorySink:
		f.logger.Info("Initialized memory sink")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported ledger sink: %s", config.Sink)
	}
}
