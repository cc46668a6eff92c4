package http

import (
	"net/http"
)

// Request limits enforced by InputValidation.
const (
	MaxPathLength   = 2048
	MaxRequestBytes = 1 << 20
)

// InputValidation returns middleware that rejects oversized requests.
// It enforces limits on:
//   - URI path length (MaxPathLength)
//   - Request body size (maxBytes, MaxRequestBytes when <= 0)
//
// Bodies above the limit make the JSON decoder fail, which the handlers
// report as 400.
func InputValidation(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = MaxRequestBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > MaxPathLength {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestURITooLong)
				_, _ = w.Write([]byte(`{"error":"URI too long"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
