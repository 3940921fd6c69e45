package main

import (
	"context"
	"flag"
	"os"
	"time"

	"pricepaid/internal/modkit"
	"pricepaid/internal/modkit/module"
	"pricepaid/internal/platform/config"
	perr "pricepaid/internal/platform/errors"
	"pricepaid/internal/platform/logger"
	"pricepaid/internal/platform/store"

	"pricepaid/internal/services/dataset/domain"
	datasetmod "pricepaid/internal/services/dataset/module"
	pipedom "pricepaid/internal/services/pipeline/domain"
	pipelinemod "pricepaid/internal/services/pipeline/module"

	"pricepaid/internal/adapters/artifact"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fFetch  = flag.Bool("fetch", false, "download the raw dataset first when missing")
		fBatch  = flag.Int("batch", 0, "rows per batch (0 uses PIPELINE_BATCH_SIZE or 10000)")
		fPolicy = flag.String("policy", "", "parse policy: abort | skip (empty uses PIPELINE_PARSE_POLICY)")
		fPath   = flag.String("path", "", "raw dataset path (overrides DATASET_PATH)")
		fURL    = flag.String("url", "", "dataset source url (overrides DATASET_URL)")
		fArtDir = flag.String("artifacts", "", "artifact directory (overrides ARTIFACT_DIR)")
		fSan    = flag.Bool("sanitize", false, "clean fields before keying (changes duplicate matching)")
		fLedger = flag.Bool("ledger", false, "record the run in the postgres ledger")
	)
	flag.Parse()

	// flags override env so modules reading FromConfig pick them up
	mustSetEnv("DATASET_PATH", *fPath)
	mustSetEnv("DATASET_URL", *fURL)
	mustSetEnv("ARTIFACT_DIR", *fArtDir)

	root := config.New()
	l := logger.Get()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     *fLedger,
			URL:         root.Prefix("SERVICE_PGSQL_").MayString("DBURL", ""),
			MaxConns:    int32(root.Prefix("SERVICE_PGSQL_").MayInt("MAX_CONNS", 2)),
			SlowQueryMs: root.Prefix("SERVICE_PGSQL_").MayInt("SLOW_MS", 500),
			LogSQL:      root.Prefix("SERVICE_PGSQL_").MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{Cfg: root, PG: st.PG, Log: *l}

	art := artifact.New(root.Prefix("ARTIFACT_").MayString("DIR", "data/artifacts"))

	dataset := datasetmod.New(deps)
	fetcher := module.MustPortsOf[domain.FetcherPort](dataset)

	pipeline := pipelinemod.New(deps, modkit.WithPorts(pipelinemod.Ports{
		Fetcher:  fetcher,
		Artifact: art,
	}))
	module.Register(dataset.Name(), dataset.Ports())
	module.Register(pipeline.Name(), pipeline.Ports())

	ctx := context.Background()

	if *fFetch && !fetcher.RawExists() {
		if err := awaitFetch(ctx, fetcher); err != nil {
			l.Fatal().Err(err).Msg("dataset fetch failed")
		}
	}

	ports, ok := module.PortsAs[pipelinemod.Ports](pipeline.Name())
	if !ok {
		l.Fatal().Str("module", pipeline.Name()).Msg("pipeline ports not registered")
	}
	svc := ports.Service
	res, err := svc.Run(ctx, pipedom.DedupeInput{
		BatchSize:      *fBatch,
		Policy:         *fPolicy,
		SanitizeFields: *fSan,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("pipeline run failed")
	}

	s := res.Summary
	l.Info().
		Str("run_id", s.RunID).
		Int("rows_read", s.RowsRead).
		Int("distinct", s.Distinct).
		Int("duplicates", s.Duplicates).
		Int("skipped", s.Skipped).
		Int64("elapsed_ms", s.ElapsedMS).
		Msg("done")
}

// awaitFetch triggers the download and polls it to a terminal phase
// the fetcher is fire-and-forget by design, a CLI wants to block
func awaitFetch(ctx context.Context, f domain.FetcherPort) error {
	l := logger.Named("fetch")
	st, _ := f.Fetch(ctx)
	if st.Phase == domain.PhaseAlreadyPresent || st.Phase == domain.PhaseComplete {
		return nil
	}
	for {
		time.Sleep(2 * time.Second)
		st = f.Status()
		switch st.Phase {
		case domain.PhaseComplete, domain.PhaseAlreadyPresent:
			return nil
		case domain.PhaseFailed:
			return perr.Fetchf("%s", st.Error)
		default:
			l.Info().
				Int64("bytes", st.BytesRead).
				Int64("total", st.TotalBytes).
				Msg("downloading")
		}
	}
}
