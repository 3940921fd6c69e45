// Package http provides http transport for the dataset fetcher
package http

import (
	stdhttp "net/http"

	"pricepaid/internal/modkit/httpkit"
	"pricepaid/internal/services/dataset/domain"

	perr "pricepaid/internal/platform/errors"
)

// Register mounts the fetch endpoints on the given router
func Register(r httpkit.Router, f domain.FetcherPort) {
	h := &handlers{fetcher: f}
	r.Post("/", httpkit.Handle(h.trigger))
	httpkit.Get(r, "/status", h.status)
	httpkit.Post(r, "/cancel", h.cancel)
}

type handlers struct{ fetcher domain.FetcherPort }

// TriggerResponse reports what the trigger call did
// swagger:model
type TriggerResponse struct {
	Message string            `json:"message" example:"download initiated"`
	State   domain.FetchState `json:"state"`
}

// @Summary Trigger the raw dataset download
// @Tags Download
// @Produce json
// @Success 200 {object} TriggerResponse "file already on disk"
// @Success 202 {object} TriggerResponse "download initiated or in progress"
// @Router /download [post]
func (h *handlers) trigger(r *stdhttp.Request) httpkit.Response {
	st, started := h.fetcher.Fetch(r.Context())
	switch st.Phase {
	case domain.PhaseAlreadyPresent, domain.PhaseComplete:
		return httpkit.OK(TriggerResponse{Message: "already downloaded", State: st})
	case domain.PhaseInProgress:
		msg := "download in progress"
		if started {
			msg = "download initiated"
		}
		return httpkit.Accepted(TriggerResponse{Message: msg, State: st})
	case domain.PhaseFailed:
		return httpkit.Error(perr.Fetchf("%s", st.Error))
	default:
		return httpkit.Error(perr.Internalf("unexpected fetch phase %q", st.Phase))
	}
}

// @Summary Current download state
// @Tags Download
// @Produce json
// @Success 200 {object} domain.FetchState
// @Router /download/status [get]
func (h *handlers) status(_ *stdhttp.Request) (any, error) {
	return h.fetcher.Status(), nil
}

// @Summary Cancel an in-flight download
// @Tags Download
// @Produce json
// @Success 200 {object} domain.FetchState
// @Router /download/cancel [post]
func (h *handlers) cancel(_ *stdhttp.Request) (any, error) {
	if err := h.fetcher.Cancel(); err != nil {
		return nil, err
	}
	return h.fetcher.Status(), nil
}
