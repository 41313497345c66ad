// Package middleware provides HTTP middleware for the tutor gateway.
package middleware

import "net/http"

// Browser clients identify themselves with these headers; they must be
// allowed through preflight along with Content-Type.
const allowedHeaders = "Content-Type, X-Client-ID, X-Session-ID"

// CORS returns middleware with a permissive cross-origin policy: the
// gateway serves anonymous browser clients from any origin. OPTIONS
// preflight requests are answered with an empty 2xx regardless of any
// other request state.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
