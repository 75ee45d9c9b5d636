package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleFiveDayCompliance implements GET /compliance/five-day/{year}: the
// classification sweep the scheduler also runs, exposed on demand (§4.3.5).
func (h *Handlers) handleFiveDayCompliance(w http.ResponseWriter, r *http.Request) {
	yearStr := chi.URLParam(r, "year")
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		respondValidation(w, "year must be an integer")
		return
	}

	results, err := h.Ledger.CheckFiveDay(r.Context(), year, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, results)
}
