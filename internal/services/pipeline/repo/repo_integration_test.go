//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"pricepaid/internal/modkit/repokit"
	"pricepaid/internal/platform/store"
	"pricepaid/internal/services/pipeline/domain"

	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

const ledgerDDL = `
	CREATE TABLE IF NOT EXISTS dedupe_runs (
		run_id        TEXT PRIMARY KEY,
		started_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		finished_at   TIMESTAMPTZ,
		status        TEXT NOT NULL,
		batch_size    INT NOT NULL,
		policy        TEXT NOT NULL,
		rows_read     INT,
		distinct_rows INT,
		duplicates    INT,
		skipped       INT,
		elapsed_ms    BIGINT,
		error         TEXT
	)
`

func openStore(t *testing.T, ctx context.Context, dsn string) *store.Store {
	t.Helper()

	s, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	}, store.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("store open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	if _, err := s.PG.Exec(ctx, ledgerDDL); err != nil {
		t.Fatalf("create ledger table: %v", err)
	}
	return s
}

func openLedger(t *testing.T, ctx context.Context, dsn string) domain.StorageRepo {
	t.Helper()
	return NewPG().Bind(openStore(t, ctx, dsn).PG)
}

func TestLedger_Integration_RunLifecycle(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ledger := openLedger(t, ctx, dsn)

	if err := ledger.StartRun(ctx, "run-1", 10000, "abort"); err != nil {
		t.Fatalf("start: %v", err)
	}

	rows, err := ledger.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent after start: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	got := rows[0]
	if got.RunID != "run-1" || got.Status != "running" {
		t.Fatalf("row = %+v", got)
	}
	if got.FinishedAt != nil {
		t.Fatal("finished_at must be null while running")
	}
	if got.BatchSize != 10000 || got.Policy != "abort" {
		t.Fatalf("settings = %d/%s", got.BatchSize, got.Policy)
	}

	if err := ledger.FinishRun(ctx, "run-1", domain.RunFinish{
		Status:     "ok",
		RowsRead:   1000,
		Distinct:   900,
		Duplicates: 100,
		Skipped:    0,
		ElapsedMS:  1234,
	}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	rows, err = ledger.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent after finish: %v", err)
	}
	got = rows[0]
	if got.Status != "ok" || got.FinishedAt == nil {
		t.Fatalf("row = %+v", got)
	}
	if got.RowsRead != 1000 || got.Distinct != 900 || got.Duplicates != 100 || got.ElapsedMS != 1234 {
		t.Fatalf("counters = %+v", got)
	}
	if got.Error != "" {
		t.Fatalf("error = %q, want empty", got.Error)
	}
}

func TestLedger_Integration_FailedRunKeepsReason(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ledger := openLedger(t, ctx, dsn)

	if err := ledger.StartRun(ctx, "run-err", 500, "skip"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ledger.FinishRun(ctx, "run-err", domain.RunFinish{
		Status:    "error",
		ElapsedMS: 5,
		ErrText:   "row 42: record on line 42: wrong number of fields",
	}); err != nil {
		t.Fatalf("finish: %v", err)
	}

	rows, err := ledger.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if rows[0].Status != "error" || rows[0].Error == "" {
		t.Fatalf("row = %+v", rows[0])
	}

	// retriggering the same run id resets the row to running
	if err := ledger.StartRun(ctx, "run-err", 500, "skip"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	rows, err = ledger.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent after restart: %v", err)
	}
	if rows[0].Status != "running" || rows[0].Error != "" || rows[0].FinishedAt != nil {
		t.Fatalf("row = %+v", rows[0])
	}
}

func TestLedger_Integration_FinishNeedsStart(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ledger := openLedger(t, ctx, dsn)

	// finishing a run that was never started must surface, not update 0 rows
	err := ledger.FinishRun(ctx, "ghost", domain.RunFinish{Status: "ok", ElapsedMS: 1})
	if err == nil {
		t.Fatal("finish without a ledger row must fail")
	}
}

func TestLedger_Integration_BindsInsideTx(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	s := openStore(t, ctx, dsn)
	binder := NewPG()

	// the same binder serves the pooled queryer and the in-transaction one
	err := repokit.WithTx(ctx, s.PG, func(q repokit.Queryer) error {
		led := binder.Bind(q)
		if err := led.StartRun(ctx, "tx-run", 100, "abort"); err != nil {
			return err
		}
		return led.FinishRun(ctx, "tx-run", domain.RunFinish{Status: "ok", ElapsedMS: 7})
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	n, err := store.Scalar[int](ctx, s.PG, `SELECT count(*) FROM dedupe_runs WHERE run_id = 'tx-run' AND status = 'ok'`)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("committed rows = %d, want 1", n)
	}

	// a rolled back unit leaves nothing behind
	wantErr := repokit.WithTx(ctx, s.PG, func(q repokit.Queryer) error {
		if err := binder.Bind(q).StartRun(ctx, "tx-rollback", 100, "abort"); err != nil {
			return err
		}
		return fmt.Errorf("abort this unit")
	})
	if wantErr == nil {
		t.Fatal("tx must propagate the callback error")
	}
	n, err = store.Scalar[int](ctx, s.PG, `SELECT count(*) FROM dedupe_runs WHERE run_id = 'tx-rollback'`)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("rolled back rows = %d, want 0", n)
	}
}

func TestLedger_Integration_RecentOrderAndLimit(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ledger := openLedger(t, ctx, dsn)

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("run-%d", i)
		if err := ledger.StartRun(ctx, id, 100, "abort"); err != nil {
			t.Fatalf("start %s: %v", id, err)
		}
		// keep started_at strictly increasing
		time.Sleep(10 * time.Millisecond)
	}

	rows, err := ledger.RecentRuns(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want limit respected", len(rows))
	}
	for i, want := range []string{"run-4", "run-3", "run-2"} {
		if rows[i].RunID != want {
			t.Fatalf("row %d = %s, want %s", i, rows[i].RunID, want)
		}
	}

	// out of range limits fall back to the default
	rows, err = ledger.RecentRuns(ctx, -1)
	if err != nil {
		t.Fatalf("recent default: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d", len(rows))
	}
}
