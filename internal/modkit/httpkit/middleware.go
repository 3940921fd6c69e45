package httpkit

import (
	"compress/flate"
	"net/http"

	"pricepaid/internal/platform/net/middleware"
)

// CommonStack returns the baseline per scope middleware slice
// compose with extra middleware as needed in main
//
// No request timeout here: a full pipeline run is a legitimate multi-minute
// request, so deadlines belong to the individual scopes that want them
func CommonStack() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		// tracing / correlation
		middleware.RequestID(),
		middleware.RealIP(),

		// safety
		middleware.RecoverJSON,

		// cache / freshness
		middleware.NoCache(),

		// observability
		middleware.AccessLog,

		// cross-origin (tweak config in main if needed)
		middleware.CORS(middleware.CORSOptions{}),
		middleware.Compress(flate.BestSpeed),
		middleware.RedirectSlashes(),
		middleware.StripSlashes(),
	}
}
