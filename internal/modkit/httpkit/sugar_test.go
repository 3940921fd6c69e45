package httpkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	phttp "pricepaid/internal/platform/net/http"
	"pricepaid/internal/platform/net/http/bind"
)

// fakeRouterSugar records verb + path + handler for assertions
type fakeRouterSugar struct {
	recs []struct {
		verb string
		path string
		h    phttp.Handler
	}
}

func (f *fakeRouterSugar) record(verb, path string, h phttp.Handler) {
	f.recs = append(f.recs, struct {
		verb string
		path string
		h    phttp.Handler
	}{verb, path, h})
}

func (f *fakeRouterSugar) Get(path string, h phttp.Handler)    { f.record("GET", path, h) }
func (f *fakeRouterSugar) Post(path string, h phttp.Handler)   { f.record("POST", path, h) }
func (f *fakeRouterSugar) Put(path string, h phttp.Handler)    { f.record("PUT", path, h) }
func (f *fakeRouterSugar) Patch(path string, h phttp.Handler)  { f.record("PATCH", path, h) }
func (f *fakeRouterSugar) Delete(path string, h phttp.Handler) { f.record("DELETE", path, h) }

func (f *fakeRouterSugar) Handle(string, http.Handler)            {}
func (f *fakeRouterSugar) Use(...func(http.Handler) http.Handler) {}
func (f *fakeRouterSugar) Group(fn func(Router))                  { fn(f) }
func (f *fakeRouterSugar) Route(_ string, fn func(Router))        { fn(f) }
func (f *fakeRouterSugar) Mux() http.Handler                      { return http.NewServeMux() }

func invoke(t *testing.T, h phttp.Handler, req *http.Request) (int, Envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	h(rec, req)
	var env Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rec.Code, env
}

func TestGet_MountsEnvelopeHandler(t *testing.T) {
	t.Parallel()

	r := &fakeRouterSugar{}
	Get(r, "/status", func(*http.Request) (any, error) {
		return map[string]string{"phase": "idle"}, nil
	})

	if len(r.recs) != 1 || r.recs[0].verb != "GET" || r.recs[0].path != "/status" {
		t.Fatalf("unexpected registration %+v", r.recs)
	}

	code, env := invoke(t, r.recs[0].h, httptest.NewRequest(http.MethodGet, "/status", nil))
	if code != http.StatusOK || env.StatusCode != http.StatusOK {
		t.Fatalf("status = %d env = %+v", code, env)
	}
	data, _ := env.Data.(map[string]any)
	if data["phase"] != "idle" {
		t.Fatalf("data = %+v", env.Data)
	}
}

func TestPost_MountsEnvelopeHandler(t *testing.T) {
	t.Parallel()

	r := &fakeRouterSugar{}
	Post(r, "/cancel", func(*http.Request) (any, error) { return "cancelled", nil })

	if len(r.recs) != 1 || r.recs[0].verb != "POST" || r.recs[0].path != "/cancel" {
		t.Fatalf("unexpected registration %+v", r.recs)
	}
}

func TestPostJSON_BindsBody(t *testing.T) {
	t.Parallel()

	type input struct {
		Limit int `json:"limit" validate:"omitempty,min=1"`
	}

	r := &fakeRouterSugar{}
	PostJSON[input](r, "/runs", func(_ *http.Request, in input) (any, error) {
		return in.Limit * 2, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(`{"limit": 4}`))
	code, env := invoke(t, r.recs[0].h, req)
	if code != http.StatusOK {
		t.Fatalf("status = %d env = %+v", code, env)
	}
	if n, _ := env.Data.(float64); n != 8 {
		t.Fatalf("data = %+v", env.Data)
	}
}

func TestPostJSON_RejectsEmptyBodyByDefault(t *testing.T) {
	t.Parallel()

	type input struct {
		Limit int `json:"limit"`
	}

	r := &fakeRouterSugar{}
	PostJSON[input](r, "/runs", func(_ *http.Request, in input) (any, error) {
		return in, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(""))
	code, env := invoke(t, r.recs[0].h, req)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d env = %+v, want a bind failure", code, env)
	}
}

func TestPostJSON_OptsAllowEmptyBody(t *testing.T) {
	t.Parallel()

	type input struct {
		Limit int `json:"limit"`
	}

	opts := bind.DefaultJSONOptions()
	opts.AllowEmptyBody = true

	r := &fakeRouterSugar{}
	PostJSON[input](r, "/runs", func(_ *http.Request, in input) (any, error) {
		return in.Limit, nil
	}, opts)

	req := httptest.NewRequest(http.MethodPost, "/runs", strings.NewReader(""))
	code, env := invoke(t, r.recs[0].h, req)
	if code != http.StatusOK {
		t.Fatalf("status = %d env = %+v, empty body must fall back to defaults", code, env)
	}
}
