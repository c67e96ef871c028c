package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// queryFields are the observation query parameters promoted to their own
// log fields, so slow or failing station and parameter combinations can be
// filtered without parsing raw query strings.
var queryFields = []string{"network", "parameter", "period", "stationId"}

// Logger returns a middleware that writes one structured line per request.
// Server errors log at error level, everything else at info.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			event := log.Info()
			if rec.status >= 500 {
				event = log.Error()
			}

			event = event.
				Str("request_id", GetRequestID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Int64("bytes", rec.written).
				Dur("duration", time.Since(start)).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent())

			if pattern := routePattern(r); pattern != "" {
				event = event.Str("route", pattern)
			}

			if spanCtx := trace.SpanContextFromContext(r.Context()); spanCtx.IsValid() {
				event = event.
					Str("trace_id", spanCtx.TraceID().String()).
					Str("span_id", spanCtx.SpanID().String())
			}

			query := r.URL.Query()
			for _, key := range queryFields {
				if v := query.Get(key); v != "" {
					event = event.Str(key, v)
				}
			}

			event.Msg("request completed")
		})
	}
}
