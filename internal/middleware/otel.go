package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"tabclean/internal/infrastructure"
)

// Tracing wraps the handler in an otelhttp server span. Inbound trace context
// is extracted with the global propagator, and the span's trace ID replaces
// the request ID as the log correlation key.
func Tracing(next http.Handler) http.Handler {
	correlate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			ctx = infrastructure.WithTraceID(ctx, sc.TraceID().String())
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})

	return otelhttp.NewHandler(correlate, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics" && r.URL.Path != "/ws"
		}),
	)
}
