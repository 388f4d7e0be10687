package middleware

import "net/http"

// MaxBodySize caps the request body. Oversized uploads fail inside the
// handler's read with http.MaxBytesError rather than being buffered whole.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
