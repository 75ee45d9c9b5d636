package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yukyu/ledger/internal/auth"
)

// redactedQueryParams never appear in request logs even though they appear
// in the URL (§4.6: wages, birth dates, addresses, nationalities are PII).
var redactedQueryParams = map[string]bool{
	"hourly_wage": true,
	"birth_date":  true,
	"address":     true,
	"nationality": true,
}

// RequestLogger logs method, path, principal-id, status, and duration for
// every request. It never logs the request body and strips PII query
// parameters from the logged path, per §4.6.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		principal := "anonymous"
		if claims, ok := auth.GetClaims(r.Context()); ok {
			principal = claims.UserID
		}

		log.Info().
			Str("method", r.Method).
			Str("path", redactPath(r)).
			Str("principal_id", principal).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func redactPath(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	q := r.URL.Query()
	for param := range q {
		if redactedQueryParams[param] {
			q.Set(param, "[redacted]")
		}
	}
	return r.URL.Path + "?" + q.Encode()
}
