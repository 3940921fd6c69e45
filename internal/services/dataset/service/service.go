// Package service implements the raw dataset fetcher
//
// The download runs as a fire-and-forget goroutine writing to a .partial
// file that is renamed into place only on full success, so the final path
// existing always means a verified complete file. FetchState is the single
// piece of shared mutable state; the mutex guarantees two simultaneous
// triggers observe one in_progress transition, never two downloads.
package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"pricepaid/internal/adapters/ingest/ppcsv"
	"pricepaid/internal/platform/logger"
	"pricepaid/internal/services/dataset/domain"

	perr "pricepaid/internal/platform/errors"
)

const (
	copyChunk  = 1 << 20   // 1MiB per read
	logEveryB  = 256 << 20 // progress log cadence
	partialExt = ".partial"
)

// Config carries the fetcher settings
type Config struct {
	// Path is the final location of the raw dataset
	Path string
	// Source opens the remote byte stream
	Source ppcsv.Source
}

// Service owns the fetch state machine
type Service struct {
	cfg Config
	log logger.Logger

	mu      sync.Mutex
	phase   domain.Phase
	failure string
	cancel  context.CancelFunc

	bytes atomic.Int64
	total atomic.Int64
}

// New constructs the fetcher in the not_started phase
func New(cfg Config, log logger.Logger) *Service {
	s := &Service{cfg: cfg, log: log, phase: domain.PhaseNotStarted}
	s.total.Store(-1)
	return s
}

// RawPath returns the final dataset location
func (s *Service) RawPath() string { return s.cfg.Path }

// RawExists reports whether the verified complete file is on disk
// a leftover .partial file never counts
func (s *Service) RawExists() bool {
	_, err := os.Stat(s.cfg.Path)
	return err == nil
}

// Status returns the current snapshot
func (s *Service) Status() domain.FetchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// snapshot must be called with mu held
func (s *Service) snapshot() domain.FetchState {
	return domain.FetchState{
		Phase:      s.phase,
		BytesRead:  s.bytes.Load(),
		TotalBytes: s.total.Load(),
		Error:      s.failure,
	}
}

// Fetch triggers a download unless the file exists or one is in flight
//
// A stored failure is reported once and then cleared, so the caller that saw
// it can retry and the next Fetch re-attempts from scratch. Existence is
// re-evaluated on every call rather than remembered.
func (s *Service) Fetch(ctx context.Context) (domain.FetchState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == domain.PhaseInProgress {
		return s.snapshot(), false
	}

	if s.RawExists() {
		s.phase = domain.PhaseAlreadyPresent
		s.failure = ""
		return s.snapshot(), false
	}

	if s.phase == domain.PhaseFailed {
		out := s.snapshot()
		s.phase = domain.PhaseNotStarted
		s.failure = ""
		return out, false
	}

	dlCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.phase = domain.PhaseInProgress
	s.failure = ""
	s.bytes.Store(0)
	s.total.Store(-1)

	go s.download(dlCtx)

	return s.snapshot(), true
}

// Cancel aborts an in-flight download
func (s *Service) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseInProgress || s.cancel == nil {
		return perr.Conflictf("no download in progress")
	}
	s.cancel()
	return nil
}

// download runs in its own goroutine and reports only through phase
func (s *Service) download(ctx context.Context) {
	err := s.copyToPartial(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = nil
	if err != nil {
		s.phase = domain.PhaseFailed
		s.failure = err.Error()
		s.log.Error().Err(err).Str("path", s.cfg.Path).Msg("dataset fetch failed")
		return
	}
	s.phase = domain.PhaseComplete
	s.log.Info().
		Str("path", s.cfg.Path).
		Int64("bytes", s.bytes.Load()).
		Msg("dataset fetch complete")
}

func (s *Service) copyToPartial(ctx context.Context) error {
	body, total, err := s.cfg.Source.Open(ctx)
	if err != nil {
		return perr.Fetchf("open source: %v", err)
	}
	defer func() { _ = body.Close() }()
	s.total.Store(total)

	if err := os.MkdirAll(filepath.Dir(s.cfg.Path), 0o755); err != nil {
		return perr.Fetchf("dataset dir: %v", err)
	}

	partial := s.cfg.Path + partialExt
	f, err := os.Create(partial)
	if err != nil {
		return perr.Fetchf("create partial: %v", err)
	}

	cleanup := func(cause error) error {
		_ = f.Close()
		_ = os.Remove(partial)
		return cause
	}

	buf := make([]byte, copyChunk)
	var nextLog int64 = logEveryB
	for {
		if err := ctx.Err(); err != nil {
			return cleanup(perr.Fetchf("download canceled"))
		}
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return cleanup(perr.Fetchf("write partial: %v", werr))
			}
			got := s.bytes.Add(int64(n))
			if got >= nextLog {
				nextLog += logEveryB
				s.log.Info().
					Int64("bytes", got).
					Int64("total", s.total.Load()).
					Msg("dataset fetch progress")
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if errors.Is(rerr, context.Canceled) {
				return cleanup(perr.Fetchf("download canceled"))
			}
			return cleanup(perr.Fetchf("read source: %v", rerr))
		}
	}

	if err := f.Sync(); err != nil {
		return cleanup(perr.Fetchf("sync partial: %v", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(partial)
		return perr.Fetchf("close partial: %v", err)
	}
	if err := os.Rename(partial, s.cfg.Path); err != nil {
		_ = os.Remove(partial)
		return perr.Fetchf("publish dataset: %v", err)
	}
	return nil
}
