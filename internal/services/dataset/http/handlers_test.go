package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "pricepaid/internal/platform/net/http"
	"pricepaid/internal/services/dataset/domain"

	perr "pricepaid/internal/platform/errors"
)

// scriptedFetcher returns canned answers so each status path can be forced
type scriptedFetcher struct {
	state     domain.FetchState
	started   bool
	cancelErr error
}

func (f *scriptedFetcher) Fetch(context.Context) (domain.FetchState, bool) {
	return f.state, f.started
}
func (f *scriptedFetcher) Status() domain.FetchState { return f.state }
func (f *scriptedFetcher) Cancel() error             { return f.cancelErr }
func (f *scriptedFetcher) RawPath() string           { return "/tmp/pp.csv" }
func (f *scriptedFetcher) RawExists() bool           { return false }

func serve(t *testing.T, f domain.FetcherPort, method, target string) (int, phttp.Envelope) {
	t.Helper()
	mux := chi.NewMux()
	Register(phttp.AdaptChi(mux), f)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(method, target, nil))

	var env phttp.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v\n%s", err, rr.Body.String())
	}
	return rr.Code, env
}

func TestTrigger_AlreadyPresent(t *testing.T) {
	f := &scriptedFetcher{state: domain.FetchState{Phase: domain.PhaseAlreadyPresent}}
	code, env := serve(t, f, stdhttp.MethodPost, "/")
	if code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	data := env.Data.(map[string]any)
	if data["message"] != "already downloaded" {
		t.Fatalf("message = %v", data["message"])
	}
}

func TestTrigger_Initiated(t *testing.T) {
	f := &scriptedFetcher{
		state:   domain.FetchState{Phase: domain.PhaseInProgress, TotalBytes: -1},
		started: true,
	}
	code, env := serve(t, f, stdhttp.MethodPost, "/")
	if code != stdhttp.StatusAccepted {
		t.Fatalf("status = %d", code)
	}
	if env.Data.(map[string]any)["message"] != "download initiated" {
		t.Fatalf("data = %v", env.Data)
	}
}

func TestTrigger_AlreadyInProgress(t *testing.T) {
	f := &scriptedFetcher{state: domain.FetchState{Phase: domain.PhaseInProgress}}
	code, env := serve(t, f, stdhttp.MethodPost, "/")
	if code != stdhttp.StatusAccepted {
		t.Fatalf("status = %d", code)
	}
	if env.Data.(map[string]any)["message"] != "download in progress" {
		t.Fatalf("data = %v", env.Data)
	}
}

func TestTrigger_Failed(t *testing.T) {
	f := &scriptedFetcher{state: domain.FetchState{
		Phase: domain.PhaseFailed,
		Error: "read source: connection reset",
	}}
	code, env := serve(t, f, stdhttp.MethodPost, "/")
	if code != stdhttp.StatusInternalServerError {
		t.Fatalf("status = %d", code)
	}
	if env.Code != perr.ErrorCodeFetch {
		t.Fatalf("code = %d", env.Code)
	}
	if env.Error == "" {
		t.Fatal("envelope must carry the failure reason")
	}
}

func TestStatus(t *testing.T) {
	f := &scriptedFetcher{state: domain.FetchState{
		Phase:      domain.PhaseInProgress,
		BytesRead:  42,
		TotalBytes: 100,
	}}
	code, env := serve(t, f, stdhttp.MethodGet, "/status")
	if code != stdhttp.StatusOK {
		t.Fatalf("status = %d", code)
	}
	data := env.Data.(map[string]any)
	if data["phase"] != string(domain.PhaseInProgress) {
		t.Fatalf("phase = %v", data["phase"])
	}
	if data["bytes_read"] != float64(42) {
		t.Fatalf("bytes_read = %v", data["bytes_read"])
	}
}

func TestCancel_NothingInFlight(t *testing.T) {
	f := &scriptedFetcher{cancelErr: perr.Conflictf("no download in progress")}
	code, env := serve(t, f, stdhttp.MethodPost, "/cancel")
	if code != stdhttp.StatusConflict {
		t.Fatalf("status = %d", code)
	}
	if env.Code != perr.ErrorCodeConflict {
		t.Fatalf("code = %d", env.Code)
	}
}
