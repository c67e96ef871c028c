package middleware

import (
	"net/http"
	"strings"

	"github.com/obsgrid/obsgrid/internal/api/models"
)

// ContentTypeJSON sets the response Content-Type to application/json unless
// a handler already chose one. Error responses override it with
// application/problem+json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects bodied requests whose declared Content-Type is not
// application/json with a 415 problem response. Requests without a
// Content-Type header pass through; the JSON decoder rejects garbage bodies
// anyway.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				problem := models.NewUnsupportedMediaType(GetRequestID(r.Context()), "Content-Type must be application/json")
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
