package api

import (
	"net/http"
	"strconv"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 500
)

// page is the parsed, bounds-clamped pagination request (§4.6: page ≥ 1,
// limit ∈ [1, 500], defaults 1/50).
type page struct {
	Page  int
	Limit int
}

func (p page) offset() int {
	return (p.Page - 1) * p.Limit
}

// parsePage reads page/limit query parameters, applying defaults and
// clamping out-of-range values rather than rejecting the request — an
// over-large limit is a client mistake a list endpoint can simply bound,
// not a reason to fail the call.
func parsePage(r *http.Request) page {
	p := page{Page: defaultPage, Limit: defaultLimit}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			p.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			p.Limit = n
		}
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
