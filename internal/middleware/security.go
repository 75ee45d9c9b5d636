// Package middleware holds cross-cutting HTTP middleware shared by every
// ApiPlane route: security headers today, request logging alongside it.
package middleware

import "net/http"

// SecurityHeaders sets a fixed set of defensive response headers on every
// request. There is no per-route configuration — the whole API surface is
// JSON, never framed, never rendered as HTML.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}
