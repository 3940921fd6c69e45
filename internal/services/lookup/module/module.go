// Package module wires record lookups into the API using modkit
package module

import (
	"net/http"

	modkit "pricepaid/internal/modkit"
	"pricepaid/internal/modkit/httpkit"

	"pricepaid/internal/adapters/artifact"
	"pricepaid/internal/platform/logger"
	str "pricepaid/internal/platform/strings"
	"pricepaid/internal/services/lookup/domain"
	lookuphttp "pricepaid/internal/services/lookup/http"
	lookupsvc "pricepaid/internal/services/lookup/service"
)

// Ports declares the lookup module wiring
type Ports struct {
	Artifact *artifact.Store    // required, injected by the composition root
	Service  domain.ServicePort // set by New
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

// New constructs a lookup module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("lookup"),
		modkit.WithPrefix("/records"),
	}, opts...)...)

	ports, ok := b.Ports.(Ports)
	if !ok || ports.Artifact == nil {
		panic("lookup module requires the Artifact port")
	}

	svc := lookupsvc.New(ports.Artifact, *logger.Named("lookup"))
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
		lookuphttp.Register(r, m.svc)
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

// Ports returns the module ports (Service plus the injected artifact store)
func (m *Module) Ports() any { return m.ports }
