// Package http provides http transport for the pipeline
package http

import (
	stdhttp "net/http"
	"strconv"

	"pricepaid/internal/modkit/httpkit"
	"pricepaid/internal/platform/net/http/bind"
	"pricepaid/internal/services/pipeline/domain"
)

// Register mounts the pipeline endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}

	opts := bind.DefaultJSONOptions()
	opts.AllowEmptyBody = true // POST /dedupe with no body runs with defaults
	httpkit.PostJSON[domain.DedupeInput](r, "/", h.run, opts)
	httpkit.Get(r, "/runs", h.runs)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Run the full deduplication pipeline
// @Tags Dedupe
// @Accept json
// @Produce json
// @Param payload body domain.DedupeInput false "Tuning"
// @Success 200 {object} domain.RunResult
// @Router /dedupe [post]
func (h *handlers) run(r *stdhttp.Request, in domain.DedupeInput) (any, error) {
	return h.svc.Run(r.Context(), in)
}

// @Summary Recent pipeline runs from the ledger
// @Tags Dedupe
// @Produce json
// @Param limit query int false "max rows" default(50)
// @Success 200 {array} domain.RunRow
// @Router /dedupe/runs [get]
func (h *handlers) runs(r *stdhttp.Request) (any, error) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	return h.svc.Runs(r.Context(), limit)
}
