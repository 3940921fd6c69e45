// Package service runs the deduplication pipeline end to end
//
// One run reads the raw file in fixed-size batches, folds every batch into
// the engine strictly in arrival order and publishes the surviving set as
// the new artifact pair. The ledger is best effort: a run is never failed
// because the bookkeeping row could not be written.
package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"pricepaid/internal/adapters/artifact"
	"pricepaid/internal/adapters/ingest/ppcsv"
	"pricepaid/internal/core/dedupe"
	"pricepaid/internal/core/records"
	"pricepaid/internal/modkit/repokit"
	"pricepaid/internal/platform/logger"
	datasetdom "pricepaid/internal/services/dataset/domain"
	"pricepaid/internal/services/pipeline/domain"

	perr "pricepaid/internal/platform/errors"
)

// Config carries the pipeline defaults
type Config struct {
	DefaultBatchSize int
	DefaultPolicy    ppcsv.Policy
}

// Service implements domain.ServicePort
type Service struct {
	cfg     Config
	log     logger.Logger
	fetcher datasetdom.FetcherPort
	art     *artifact.Store

	// ledger wiring, both nil when postgres is disabled
	db     repokit.TxRunner
	binder repokit.Binder[domain.StorageRepo]

	// one pipeline run at a time, triggers queue behind the current run
	runMu sync.Mutex
}

// New constructs the pipeline service
// db may be nil, the ledger is then skipped entirely
func New(
	cfg Config,
	log logger.Logger,
	fetcher datasetdom.FetcherPort,
	art *artifact.Store,
	db repokit.TxRunner,
	binder repokit.Binder[domain.StorageRepo],
) *Service {
	if cfg.DefaultBatchSize <= 0 {
		cfg.DefaultBatchSize = 10000
	}
	if !cfg.DefaultPolicy.Valid() {
		cfg.DefaultPolicy = ppcsv.AbortOnParseError
	}
	return &Service{cfg: cfg, log: log, fetcher: fetcher, art: art, db: db, binder: binder}
}

// Run implements domain.ServicePort
func (s *Service) Run(ctx context.Context, in domain.DedupeInput) (domain.RunResult, error) {
	batchSize := in.BatchSize
	if batchSize == 0 {
		batchSize = s.cfg.DefaultBatchSize
	}
	policy := ppcsv.Policy(in.Policy)
	if in.Policy == "" {
		policy = s.cfg.DefaultPolicy
	}

	if !s.fetcher.RawExists() {
		return domain.RunResult{}, perr.SourceMissingf("raw dataset not found, fetch it first")
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	runID := uuid.NewString()
	started := time.Now()
	s.ledgerStart(ctx, runID, batchSize, string(policy))

	out, err := s.execute(ctx, batchSize, policy, in.SanitizeFields)
	elapsed := time.Since(started).Milliseconds()

	if err != nil {
		s.ledgerFinish(ctx, runID, domain.RunFinish{
			Status: "error", ElapsedMS: elapsed, ErrText: err.Error(),
		})
		s.log.Error().Err(err).Str("run_id", runID).Msg("pipeline run failed")
		return domain.RunResult{}, err
	}

	summary := domain.RunSummary{
		RunID:      runID,
		BatchSize:  batchSize,
		Policy:     string(policy),
		RowsRead:   out.stats.Rows,
		Distinct:   out.distinct,
		Duplicates: out.dupes,
		Skipped:    out.stats.Skipped,
		ElapsedMS:  elapsed,
	}
	s.ledgerFinish(ctx, runID, domain.RunFinish{
		Status:     "ok",
		RowsRead:   summary.RowsRead,
		Distinct:   summary.Distinct,
		Duplicates: summary.Duplicates,
		Skipped:    summary.Skipped,
		ElapsedMS:  elapsed,
	})

	s.log.Info().
		Str("run_id", runID).
		Int("rows_read", summary.RowsRead).
		Int("distinct", summary.Distinct).
		Int("duplicates", summary.Duplicates).
		Int("skipped", summary.Skipped).
		Int64("elapsed_ms", elapsed).
		Msg("pipeline run complete")

	res := domain.RunResult{Summary: summary}
	if in.IncludeRecords {
		res.Records = make([]records.Wire, 0, len(out.rs))
		for _, r := range out.rs {
			res.Records = append(res.Records, r.ToWire())
		}
	}
	return res, nil
}

type runOutput struct {
	rs       []records.Record
	stats    ppcsv.Stats
	distinct int
	dupes    int
}

// execute is the fetch-gated read, dedupe and materialize sequence
func (s *Service) execute(ctx context.Context, batchSize int, policy ppcsv.Policy, sanitize bool) (runOutput, error) {
	var opts []ppcsv.Option
	if sanitize {
		opts = append(opts, ppcsv.WithSanitize())
	}
	reader, err := ppcsv.OpenBatches(s.fetcher.RawPath(), batchSize, policy, opts...)
	if err != nil {
		return runOutput{}, err
	}
	defer func() { _ = reader.Close() }()

	engine := dedupe.New()
	for {
		if err := ctx.Err(); err != nil {
			return runOutput{}, perr.Internalf("run canceled: %v", err)
		}
		batch, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return runOutput{}, err
		}
		engine.Absorb(batch)
	}

	rs := engine.Records()
	if err := s.art.Write(rs); err != nil {
		return runOutput{}, err
	}
	return runOutput{
		rs:       rs,
		stats:    reader.Stats(),
		distinct: engine.Distinct(),
		dupes:    engine.Dupes(),
	}, nil
}

// Runs implements domain.ServicePort
func (s *Service) Runs(ctx context.Context, limit int) ([]domain.RunRow, error) {
	if s.db == nil || s.binder == nil {
		return nil, perr.Unavailablef("run ledger is not configured")
	}
	rows, err := repokit.MustBind(s.binder, s.db).RecentRuns(ctx, limit)
	if err != nil {
		return nil, perr.DBf("recent runs: %v", err)
	}
	return rows, nil
}

func (s *Service) ledgerStart(ctx context.Context, runID string, batchSize int, policy string) {
	if s.db == nil || s.binder == nil {
		return
	}
	if err := repokit.MustBind(s.binder, s.db).StartRun(ctx, runID, batchSize, policy); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID).Msg("ledger start failed")
	}
}

func (s *Service) ledgerFinish(ctx context.Context, runID string, fin domain.RunFinish) {
	if s.db == nil || s.binder == nil {
		return
	}
	// finish must land even when the request context died mid-run
	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := repokit.MustBind(s.binder, s.db).FinishRun(dbCtx, runID, fin); err != nil {
		s.log.Warn().Err(err).Str("run_id", runID).Msg("ledger finish failed")
	}
}
