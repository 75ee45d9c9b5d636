// Package api implements ApiPlane (§4.6): the /v1/ HTTP surface, its
// uniform response envelope, pagination, and the declared-schema input
// validation every mutation goes through. Router wiring follows the
// teacher's cmd/api/main.go setupRouter shape (chi route groups, the same
// middleware stack) adapted to a single-tenant employee/leave domain.
package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// apiVersion is reported in every envelope's meta.version field.
const apiVersion = "v1"

// envelope is the uniform response shape every route returns, success or
// error (§4.6).
type envelope struct {
	Status string       `json:"status"`
	Data   any          `json:"data"`
	Error  *envelopeErr `json:"error"`
	Meta   meta         `json:"meta"`
}

type envelopeErr struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// meta carries pagination bookkeeping plus the fields present on every
// response regardless of whether the payload is a list.
type meta struct {
	Page       int       `json:"page,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	Total      int64     `json:"total,omitempty"`
	TotalPages int       `json:"total_pages,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
}

func baseMeta() meta {
	return meta{Timestamp: time.Now(), Version: apiVersion}
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// respondOK writes a success envelope with no pagination metadata.
func respondOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Status: "success", Data: data, Meta: baseMeta()})
}

// respondList writes a success envelope carrying pagination metadata for a
// bounded collection (§4.6: "No endpoint may return an unbounded
// collection").
func respondList(w http.ResponseWriter, data any, page page, total int64) {
	m := baseMeta()
	m.Page = page.Page
	m.Limit = page.Limit
	m.Total = total
	m.TotalPages = totalPages(total, page.Limit)
	writeJSON(w, http.StatusOK, envelope{Status: "success", Data: data, Meta: m})
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	pages := int(total / int64(limit))
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}
