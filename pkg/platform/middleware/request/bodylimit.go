package request

import (
	"net/http"
)

// DefaultMaxBodyBytes bounds console form payloads (login, filters, module configs).
const DefaultMaxBodyBytes int64 = 1 << 20

// BodyLimit caps request bodies with http.MaxBytesReader. Reads past maxBytes
// fail, which the JSON decoder surfaces as a bad request. Mount it before any
// handler that decodes a body.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
