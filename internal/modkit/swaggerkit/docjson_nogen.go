//go:build !swag

// Package swaggerkit provides OpenAPI swagger UI integration for HTTP services
package swaggerkit

import "net/http"

// without the swag generator the doc endpoint serves an empty skeleton so
// the UI still loads in dev builds
const skeletonDoc = `{"openapi":"3.0.3","info":{"title":"pricepaid API","version":"0.0.0"},"paths":{}}`

func serveDocJSON() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(skeletonDoc))
	}
}
