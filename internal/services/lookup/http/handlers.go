// Package http provides http transport for record lookups
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"pricepaid/internal/modkit/httpkit"
	"pricepaid/internal/services/lookup/domain"
)

// Register mounts the lookup endpoints on the given router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.Get(r, "/{id}", h.byID)
}

type handlers struct{ svc domain.ServicePort }

// @Summary Fetch one deduplicated record by id
// @Tags Records
// @Produce json
// @Param id path string true "record id"
// @Success 200 {object} records.Wire
// @Failure 404 {object} httpkit.Envelope
// @Router /records/{id} [get]
func (h *handlers) byID(r *stdhttp.Request) (any, error) {
	id := chi.URLParam(r, "id")
	return h.svc.GetByID(r.Context(), id)
}
