package records

import (
	"fmt"

	"tryouts-intake/internal/config"
	"tryouts-intake/internal/records/airtable"
	"tryouts-intake/internal/records/sheets"
	"tryouts-intake/internal/remote"
)

// New selects the record-store backend. Missing credentials yield a
// Disabled store rather than an error: a half-configured deployment still
// boots and serves webhooks, it just logs skipped writes.
func New(cfg config.Config) (Store, error) {
	switch cfg.RecordBackend {
	case "airtable":
		if cfg.AirtableAPIKey == "" || cfg.AirtableBaseID == "" {
			return Disabled{Err: remote.NotConfigured("airtable", "AIRTABLE_API_KEY", "AIRTABLE_BASE_ID")}, nil
		}
		return airtable.New(cfg), nil
	case "sheets":
		if cfg.GoogleServiceAccountJSON == "" || cfg.SpreadsheetID == "" {
			return Disabled{Err: remote.NotConfigured("sheets", "GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SHEETS_SPREADSHEET_ID")}, nil
		}
		return sheets.New(cfg.GoogleServiceAccountJSON, cfg.SpreadsheetID, cfg.RegistrationsSheet)
	case "disabled":
		return Disabled{Err: remote.NotConfigured("records")}, nil
	default:
		return nil, fmt.Errorf("unknown record backend: %s", cfg.RecordBackend)
	}
}
