package httpkit

import "net/http"

// MountUnder opens a subrouter at prefix, installs the module's middlewares
// and hands the subrouter to the module's Register function
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, register func(Router)) {
	r.Route(prefix, func(sub Router) {
		for _, m := range mw {
			sub.Use(m)
		}
		register(sub)
	})
}
