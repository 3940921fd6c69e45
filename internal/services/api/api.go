// Package api provides the HTTP API for the application
package api

import (
	"pricepaid/internal/platform/config"
	"pricepaid/internal/platform/logger"
	phttp "pricepaid/internal/platform/net/http"
	"pricepaid/internal/platform/store"

	"pricepaid/internal/modkit"
	"pricepaid/internal/modkit/httpkit"
	"pricepaid/internal/modkit/module"
	"pricepaid/internal/modkit/swaggerkit"

	"pricepaid/internal/adapters/artifact"
	metamod "pricepaid/internal/services/api/meta/module"
	datasetdom "pricepaid/internal/services/dataset/domain"
	datasetmod "pricepaid/internal/services/dataset/module"
	lookupmod "pricepaid/internal/services/lookup/module"
	pipelinemod "pricepaid/internal/services/pipeline/module"
)

// Options are the API options
type Options struct {
	Config        config.Conf
	Store         *store.Store
	Logger        *logger.Logger
	EnableSwagger bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// the artifact store is shared between the pipeline writer and the
	// lookup reader so both sides see the same publish lock
	art := artifact.New(opt.Config.Prefix("ARTIFACT_").MayString("DIR", "data/artifacts"))

	// the dataset module owns the fetcher, downstream modules borrow its port
	dataset := datasetmod.New(deps)
	fetcher := module.MustPortsOf[datasetdom.FetcherPort](dataset)

	pipeline := pipelinemod.New(deps, modkit.WithPorts(pipelinemod.Ports{
		Fetcher:  fetcher,
		Artifact: art,
	}))

	lookup := lookupmod.New(deps, modkit.WithPorts(lookupmod.Ports{
		Artifact: art,
	}))

	meta := metamod.New(deps, metamod.Deps{
		RawReady: fetcher.RawExists,
		ArtReady: art.Exists,
	})

	mods := []module.Module{
		meta,
		dataset,
		pipeline,
		lookup,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
