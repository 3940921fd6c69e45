// Package repo provides postgres access for the pipeline run ledger
package repo

import (
	"context"

	"pricepaid/internal/modkit/repokit"
	"pricepaid/internal/platform/store"
	"pricepaid/internal/services/pipeline/domain"
)

type (
	// PG is a Postgres binder for domain.StorageRepo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a Postgres binder for domain.StorageRepo
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind implements repokit.Binder
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

// StartRun opens a ledger row for the run (idempotent on run id)
func (r *queries) StartRun(ctx context.Context, runID string, batchSize int, policy string) error {
	return store.Exec(ctx, r.q, `
		INSERT INTO dedupe_runs (run_id, started_at, status, batch_size, policy)
		VALUES ($1, now(), 'running', $2, $3)
		ON CONFLICT (run_id) DO UPDATE
		SET started_at = now(), status = 'running', error = null, finished_at = null
	`, runID, batchSize, policy)
}

// FinishRun closes the ledger row for the run, the row must exist
func (r *queries) FinishRun(ctx context.Context, runID string, fin domain.RunFinish) error {
	return store.ExecOne(ctx, r.q, `
		UPDATE dedupe_runs SET
			finished_at = now(),
			status = $2,
			rows_read = $3,
			distinct_rows = $4,
			duplicates = $5,
			skipped = $6,
			elapsed_ms = $7,
			error = NULLIF($8,'')
		WHERE run_id = $1
	`,
		runID, fin.Status, fin.RowsRead, fin.Distinct, fin.Duplicates,
		fin.Skipped, fin.ElapsedMS, fin.ErrText,
	)
}

// RecentRuns returns the newest ledger rows first
func (r *queries) RecentRuns(ctx context.Context, limit int) ([]domain.RunRow, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return store.Many(ctx, r.q, `
		SELECT run_id, started_at, finished_at, status, batch_size, policy,
		       COALESCE(rows_read, 0), COALESCE(distinct_rows, 0),
		       COALESCE(duplicates, 0), COALESCE(skipped, 0),
		       COALESCE(elapsed_ms, 0), COALESCE(error, '')
		FROM dedupe_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, scanRun, limit)
}

func scanRun(rs store.Rows) (domain.RunRow, error) {
	var rr domain.RunRow
	err := rs.Scan(
		&rr.RunID, &rr.StartedAt, &rr.FinishedAt, &rr.Status, &rr.BatchSize,
		&rr.Policy, &rr.RowsRead, &rr.Distinct, &rr.Duplicates, &rr.Skipped,
		&rr.ElapsedMS, &rr.Error,
	)
	return rr, err
}
