package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	otelTrace "go.opentelemetry.io/otel/trace"
)

// Tracer starts a server span per request. The span is renamed after the
// chi route once routing has happened so view ids never reach span names.
func Tracer(serviceName string, tracerProvider otelTrace.TracerProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		renamed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			otelTrace.SpanFromContext(r.Context()).SetName(spanName(r))
		})

		return otelhttp.NewHandler(
			renamed,
			serviceName,
			otelhttp.WithTracerProvider(tracerProvider),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool {
				return !isWebSocketUpgrade(r)
			}),
		)
	}
}

func spanName(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return r.Method + " " + pattern
		}
	}

	return r.Method + " unmatched"
}
