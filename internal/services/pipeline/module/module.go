// Package module wires the pipeline into the API using modkit
package module

import (
	"net/http"

	modkit "pricepaid/internal/modkit"
	"pricepaid/internal/modkit/httpkit"

	"pricepaid/internal/adapters/artifact"
	"pricepaid/internal/adapters/ingest/ppcsv"
	"pricepaid/internal/platform/logger"
	str "pricepaid/internal/platform/strings"
	datasetdom "pricepaid/internal/services/dataset/domain"
	"pricepaid/internal/services/pipeline/domain"
	pipelinehttp "pricepaid/internal/services/pipeline/http"
	pipelinerepo "pricepaid/internal/services/pipeline/repo"
	pipelinesvc "pricepaid/internal/services/pipeline/service"
)

// Ports declares what the pipeline module needs from and offers to others
type Ports struct {
	Fetcher  datasetdom.FetcherPort // required, injected by the composition root
	Artifact *artifact.Store        // required, shared with the lookup module
	Service  domain.ServicePort     // set by New
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

	svc domain.ServicePort
}

// New constructs a pipeline module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("pipeline"),
		modkit.WithPrefix("/dedupe"),
	}, opts...)...)

	ports, ok := b.Ports.(Ports)
	if !ok || ports.Fetcher == nil || ports.Artifact == nil {
		panic("pipeline module requires Fetcher and Artifact ports")
	}

	cfg := deps.Cfg.Prefix("PIPELINE_")
	svc := pipelinesvc.New(
		pipelinesvc.Config{
			DefaultBatchSize: cfg.MayInt("BATCH_SIZE", 10000),
			DefaultPolicy:    ppcsv.Policy(cfg.MayEnum("PARSE_POLICY", "abort", "abort", "skip")),
		},
		*logger.Named("pipeline"),
		ports.Fetcher,
		ports.Artifact,
		deps.PG,
		pipelinerepo.NewPG(),
	)
	ports.Service = svc

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		ports:     ports,
		subrouter: b.Subrouter,
		svc:       svc,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		pipelinehttp.Register(r, m.svc)
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

// Ports returns the module ports (Service plus the injected collaborators)
func (m *Module) Ports() any { return m.ports }
