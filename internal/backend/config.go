package backend

import (
	"fmt"

	"expensekeeper/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	sink := SinkType(appConfig.LedgerSink)
	if !sink.IsValid() {
		return Config{}, fmt.Errorf("invalid ledger sink in config: %s (valid: %v)", appConfig.LedgerSink, GetSinkTypes())
	}

	return Config{
		Sink: sink,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Sink.IsValid() {
		return fmt.Errorf("invalid ledger sink: %s (valid: %v)", c.Sink, GetSinkTypes())
	}

	switch c.Sink {
	case SheetsSink:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets sink")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("either GoogleServiceAccountJSON or GoogleServiceAccountFile must be provided for sheets sink")
		}

	case MemorySink:
		// Memory sink doesn't require additional validation
	}

	return nil
}

// GetSinkTypes returns all valid sink types
func GetSinkTypes() []SinkType {
	return []SinkType{MemorySink, SheetsSink}
}
