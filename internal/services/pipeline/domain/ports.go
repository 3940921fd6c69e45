package domain

import "context"

// ServicePort defines the service contract for the pipeline
type ServicePort interface {
	// Run executes fetch-gate, read, dedupe and materialize synchronously
	Run(ctx context.Context, in DedupeInput) (RunResult, error)

	// Runs lists recent ledger rows, Unavailable when the ledger is off
	Runs(ctx context.Context, limit int) ([]RunRow, error)
}

// StorageRepo is the run ledger surface
type StorageRepo interface {
	StartRun(ctx context.Context, runID string, batchSize int, policy string) error
	FinishRun(ctx context.Context, runID string, fin RunFinish) error
	RecentRuns(ctx context.Context, limit int) ([]RunRow, error)
}
