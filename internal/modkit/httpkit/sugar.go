package httpkit

import (
	"net/http"

	phttp "pricepaid/internal/platform/net/http"
	"pricepaid/internal/platform/net/http/bind"
)

// PostJSON mounts a bound and validated JSON handler under POST
// opts tune the bind step, for example to allow an empty request body
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...bind.JSONOptions) {
	r.Post(path, phttp.JSONHandler(h, opts...))
}

// Get registers a no-body handler and uses the envelope adapter
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// Post registers a no-body handler and uses the envelope adapter
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, Call(h))
}
