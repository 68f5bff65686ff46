package services

import (
	"receipt-portal/internal/config"
	"receipt-portal/internal/interfaces"
	"receipt-portal/internal/services/mock"
	"receipt-portal/internal/services/real"
)

// CreateRecordStore creates the appropriate record store implementation
// based on configuration.
func CreateRecordStore(cfg *config.ParsedConfig) interfaces.RecordStore {
	if cfg.StandaloneMode {
		// Standalone mode: in-memory store, no spreadsheet needed
		return mock.NewMockRecordStore(cfg.Server.Verbose)
	}

	// Online mode: the real spreadsheet webhook
	return real.NewRealRecordStore(cfg.Sheet.WebhookURL, cfg.SheetTimeout, cfg.Server.Verbose)
}
