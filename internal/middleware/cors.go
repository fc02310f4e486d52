package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// Methods and request headers the JSON API accepts cross-origin.
var (
	CORSMethods = []string{http.MethodGet, http.MethodPost}
	CORSHeaders = []string{"Accept", "Authorization", "Content-Type"}
)

// CORS lets the listed origins call the JSON API. A preflight is an OPTIONS
// request carrying Access-Control-Request-Method; it is answered here with 204
// when the origin and method are allowed and 403 otherwise. Every other request
// reaches the handler, with allow headers added for listed origins. With no
// origins configured it is a no-op.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	methods := strings.Join(CORSMethods, ", ")
	headers := strings.Join(CORSHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			origin := r.Header.Get("Origin")
			ok := origin != "" && allowed[origin]

			reqMethod := r.Header.Get("Access-Control-Request-Method")
			if r.Method == http.MethodOptions && reqMethod != "" {
				w.Header().Add("Vary", "Access-Control-Request-Method")
				if !ok || !slices.Contains(CORSMethods, reqMethod) {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			next.ServeHTTP(w, r)
		})
	}
}
