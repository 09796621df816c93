package middleware

import (
	"net/http"

	"github.com/FamilySync/Services-Authentication/internal/server/metrics"
)

// Instrument records in-flight requests, counts and latencies. Requests are
// labelled by the ServeMux pattern they matched, so route cardinality stays
// bounded.
func Instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			done := m.RequestStarted()
			wrapped := wrap(w)

			next.ServeHTTP(wrapped, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			done(r.Method, route, wrapped.statusCode)
		})
	}
}

// Chain applies middlewares so that the first one is outermost
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
