// Package domain holds DTOs and contracts for the deduplication pipeline
package domain

import (
	"time"

	"pricepaid/internal/core/records"
)

// DedupeInput tunes a pipeline run, every field is optional
//
// SanitizeFields opts into per-field cleanup before keying. It defaults to
// off because fields are opaque bytes and the dedup key is byte for byte;
// cleaned fields collapse rows the raw comparison keeps distinct.
type DedupeInput struct {
	BatchSize      int    `json:"batch_size,omitempty" validate:"omitempty,min=1,max=1000000" example:"10000"`
	Policy         string `json:"policy,omitempty" validate:"omitempty,oneof=abort skip" example:"abort"`
	SanitizeFields bool   `json:"sanitize_fields,omitempty" example:"false"`
	IncludeRecords bool   `json:"include_records,omitempty" example:"false"`
}

// RunSummary is the result of one pipeline run
type RunSummary struct {
	RunID      string `json:"run_id"`
	BatchSize  int    `json:"batch_size"`
	Policy     string `json:"policy"`
	RowsRead   int    `json:"rows_read"`
	Distinct   int    `json:"distinct"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

// RunResult pairs a summary with the surviving records when asked for
type RunResult struct {
	Summary RunSummary     `json:"summary"`
	Records []records.Wire `json:"records,omitempty"`
}

// RunRow is one ledger entry as read back from storage
type RunRow struct {
	RunID      string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Status     string     `json:"status"`
	BatchSize  int        `json:"batch_size"`
	Policy     string     `json:"policy"`
	RowsRead   int        `json:"rows_read"`
	Distinct   int        `json:"distinct"`
	Duplicates int        `json:"duplicates"`
	Skipped    int        `json:"skipped"`
	ElapsedMS  int64      `json:"elapsed_ms"`
	Error      string     `json:"error,omitempty"`
}

// RunFinish carries the terminal ledger fields for a run
type RunFinish struct {
	Status     string
	RowsRead   int
	Distinct   int
	Duplicates int
	Skipped    int
	ElapsedMS  int64
	ErrText    string
}
