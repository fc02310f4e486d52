package middleware

import (
	"net/http"
)

// DefaultMaxBodyBytes caps form and JSON bodies at 64 KiB. The largest body
// any route reads is a login form.
const DefaultMaxBodyBytes = 64 << 10

// MaxBytes limits request bodies on methods that carry one. A declared
// Content-Length over the limit is refused with 413 before the handler runs;
// an undeclared body is cut off by http.MaxBytesReader and fails to parse.
func MaxBytes(limit int64) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				w.Header().Set("Connection", "close")
				if isAPIPath(r.URL.Path) {
					writeJSONError(w, "request body too large", http.StatusRequestEntityTooLarge)
				} else {
					http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				}
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
