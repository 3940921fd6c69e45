package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pricepaid/internal/adapters/ingest/ppcsv"
	"pricepaid/internal/platform/logger"
	"pricepaid/internal/services/dataset/domain"
)

// fakeSource is an in-memory ppcsv.Source with failure and stall controls
type fakeSource struct {
	mu    sync.Mutex
	opens int
	data  string
	fail  error
	stall chan struct{} // when set, the body blocks until closed or ctx dies
}

func (f *fakeSource) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *fakeSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	f.opens++
	fail, data, stall := f.fail, f.data, f.stall
	f.mu.Unlock()

	if fail != nil {
		return nil, -1, fail
	}
	if stall != nil {
		return &stallingBody{ctx: ctx, release: stall}, -1, nil
	}
	return io.NopCloser(strings.NewReader(data)), int64(len(data)), nil
}

type stallingBody struct {
	ctx     context.Context
	release chan struct{}
}

func (b *stallingBody) Read(p []byte) (int, error) {
	select {
	case <-b.release:
		return 0, io.EOF
	case <-b.ctx.Done():
		return 0, b.ctx.Err()
	}
}

func (b *stallingBody) Close() error { return nil }

func newService(t *testing.T, src ppcsv.Source) *Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pp.csv")
	return New(Config{Path: path, Source: src}, *logger.Named("test"))
}

func waitPhase(t *testing.T, s *Service, want domain.Phase) domain.FetchState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st := s.Status()
		if st.Phase == want {
			return st
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for phase %s, at %s", want, s.Status().Phase)
	return domain.FetchState{}
}

func TestFetch_DownloadsAndCompletes(t *testing.T) {
	src := &fakeSource{data: "a,b,c\nd,e,f\n"}
	s := newService(t, src)

	st, started := s.Fetch(context.Background())
	if !started || st.Phase != domain.PhaseInProgress {
		t.Fatalf("first trigger: phase=%s started=%v", st.Phase, started)
	}

	st = waitPhase(t, s, domain.PhaseComplete)
	if st.BytesRead != int64(len(src.data)) {
		t.Fatalf("bytes = %d, want %d", st.BytesRead, len(src.data))
	}

	body, err := os.ReadFile(s.RawPath())
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if string(body) != src.data {
		t.Fatal("raw file content differs from source")
	}
	if _, err := os.Stat(s.RawPath() + ".partial"); !os.IsNotExist(err) {
		t.Fatal("partial file must be gone after completion")
	}
}

func TestFetch_IdempotentWithZeroNetworkIO(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("row,data\n"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "pp.csv")
	s := New(Config{
		Path:   path,
		Source: ppcsv.NewHTTPSource(srv.URL, 5*time.Second),
	}, *logger.Named("test"))

	s.Fetch(context.Background())
	waitPhase(t, s, domain.PhaseComplete)
	if hits.Load() != 1 {
		t.Fatalf("expected one request, got %d", hits.Load())
	}

	// second and third trigger: already present, no further requests
	for i := 0; i < 2; i++ {
		st, started := s.Fetch(context.Background())
		if started || st.Phase != domain.PhaseAlreadyPresent {
			t.Fatalf("repeat trigger %d: phase=%s started=%v", i, st.Phase, started)
		}
	}
	if hits.Load() != 1 {
		t.Fatalf("repeat trigger performed network IO, hits=%d", hits.Load())
	}

	// a fresh process over the same file also sees it without any request
	s2 := New(Config{Path: path, Source: ppcsv.NewHTTPSource(srv.URL, 5*time.Second)}, *logger.Named("test"))
	st, started := s2.Fetch(context.Background())
	if started || st.Phase != domain.PhaseAlreadyPresent {
		t.Fatalf("fresh service: phase=%s started=%v", st.Phase, started)
	}
	if hits.Load() != 1 {
		t.Fatalf("fresh service performed network IO, hits=%d", hits.Load())
	}
}

func TestFetch_ConcurrentTriggersShareOneDownload(t *testing.T) {
	release := make(chan struct{})
	src := &fakeSource{stall: release}
	s := newService(t, src)

	st1, started1 := s.Fetch(context.Background())
	if !started1 || st1.Phase != domain.PhaseInProgress {
		t.Fatalf("first: phase=%s started=%v", st1.Phase, started1)
	}

	st2, started2 := s.Fetch(context.Background())
	if started2 {
		t.Fatal("second trigger must not start another download")
	}
	if st2.Phase != domain.PhaseInProgress {
		t.Fatalf("second: phase=%s", st2.Phase)
	}

	close(release)
	waitPhase(t, s, domain.PhaseComplete)

	if src.Opens() != 1 {
		t.Fatalf("source opened %d times, want 1", src.Opens())
	}
}

func TestCancel_AbortsAndLeavesNoFile(t *testing.T) {
	release := make(chan struct{})
	src := &fakeSource{stall: release}
	s := newService(t, src)

	if err := s.Cancel(); err == nil {
		t.Fatal("cancel with nothing in flight must fail")
	}

	s.Fetch(context.Background())
	waitPhase(t, s, domain.PhaseInProgress)

	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	st := waitPhase(t, s, domain.PhaseFailed)
	if st.Error == "" {
		t.Fatal("failed phase must carry a reason")
	}

	if s.RawExists() {
		t.Fatal("no final file may exist after cancellation")
	}
	if _, err := os.Stat(s.RawPath() + ".partial"); !os.IsNotExist(err) {
		t.Fatal("partial must be removed after cancellation")
	}
}

func TestFetch_PartialFileIsNotAlreadyPresent(t *testing.T) {
	src := &fakeSource{data: "fresh\n"}
	s := newService(t, src)

	// a leftover partial from a dead process
	if err := os.WriteFile(s.RawPath()+".partial", []byte("junk"), 0o644); err != nil {
		t.Fatalf("plant partial: %v", err)
	}

	if s.RawExists() {
		t.Fatal("partial must not count as present")
	}

	st, started := s.Fetch(context.Background())
	if !started || st.Phase != domain.PhaseInProgress {
		t.Fatalf("trigger over partial: phase=%s started=%v", st.Phase, started)
	}
	waitPhase(t, s, domain.PhaseComplete)
}

func TestFetch_FailureReportedOnceThenRetries(t *testing.T) {
	src := &fakeSource{fail: io.ErrUnexpectedEOF}
	s := newService(t, src)

	s.Fetch(context.Background())
	waitPhase(t, s, domain.PhaseFailed)

	// the next trigger surfaces the stored reason and clears it
	st, started := s.Fetch(context.Background())
	if started || st.Phase != domain.PhaseFailed || st.Error == "" {
		t.Fatalf("failure report: phase=%s started=%v err=%q", st.Phase, started, st.Error)
	}

	// the source recovers, the trigger after the report starts from scratch
	src.mu.Lock()
	src.fail = nil
	src.data = "recovered\n"
	src.mu.Unlock()

	st, started = s.Fetch(context.Background())
	if !started || st.Phase != domain.PhaseInProgress {
		t.Fatalf("retry: phase=%s started=%v", st.Phase, started)
	}
	waitPhase(t, s, domain.PhaseComplete)

	body, _ := os.ReadFile(s.RawPath())
	if string(body) != "recovered\n" {
		t.Fatal("retry did not re-download from scratch")
	}
}
