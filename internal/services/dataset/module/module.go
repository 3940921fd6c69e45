// Package module wires the dataset fetcher into the API using modkit
package module

import (
	"net/http"
	"time"

	modkit "pricepaid/internal/modkit"
	"pricepaid/internal/modkit/httpkit"

	"pricepaid/internal/adapters/ingest/ppcsv"
	"pricepaid/internal/platform/logger"
	str "pricepaid/internal/platform/strings"
	"pricepaid/internal/services/dataset/domain"
	datasethttp "pricepaid/internal/services/dataset/http"
	datasetsvc "pricepaid/internal/services/dataset/service"
)

// Ports exposes the fetcher to other modules
type Ports struct {
	Fetcher domain.FetcherPort
}

// Module implements the modkit.Module interface
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws   []func(http.Handler) http.Handler
	ports Ports

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc *datasetsvc.Service
}

// New constructs a dataset module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("dataset"),
		modkit.WithPrefix("/download"),
	}, opts...)...)

	cfg := deps.Cfg.Prefix("DATASET_")
	svc := datasetsvc.New(datasetsvc.Config{
		Path: cfg.MayString("PATH", "data/pp-complete.csv"),
		Source: ppcsv.NewHTTPSource(
			cfg.MayString("URL", ppcsv.DefaultURL),
			cfg.MayDuration("HTTP_TIMEOUT", 0*time.Second),
		),
	}, *logger.Named("dataset"))

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = Ports{Fetcher: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		datasethttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(rr httpkit.Router) {
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports returns the module ports (Fetcher)
func (m *Module) Ports() any { return m.ports }
