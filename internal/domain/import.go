package domain

import "time"

// ImportRecord is the audit row written for every committed batch. The file
// hash doubles as the batch-level idempotency key.
type ImportRecord struct {
	ID           string    `json:"id"`
	Source       Source    `json:"source"`
	Period       string    `json:"period"`
	FileHash     string    `json:"file_hash"`
	Preset       string    `json:"preset,omitempty"`
	RowsAccepted int       `json:"rows_accepted"`
	RowsSkipped  int       `json:"rows_skipped"`
	ImportedAt   time.Time `json:"imported_at"`
}
