// Package middleware provides HTTP middleware for the obsgrid API.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDKey is the context key for the request ID.
type requestIDKey struct{}

// maxInboundIDLen caps inbound X-Request-Id values so a hostile caller
// cannot inflate log lines or span attributes.
const maxInboundIDLen = 64

// RequestID attaches a request ID to the context and echoes it in the
// X-Request-Id response header. An inbound X-Request-Id is preserved when it
// looks like an identifier, so IDs minted by a gateway survive end to end;
// anything else is replaced with a freshly generated one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if !acceptableRequestID(requestID) {
			requestID = "req_" + uuid.New().String()[:22]
		}

		w.Header().Set("X-Request-Id", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// acceptableRequestID reports whether an inbound ID is non-empty, within the
// length cap, and made of letters, digits, dashes, and underscores only.
func acceptableRequestID(id string) bool {
	if id == "" || len(id) > maxInboundIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
