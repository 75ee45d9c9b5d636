package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yukyu/ledger/internal/models"
)

// handleFiscalBalance implements GET /fiscal/balance/{num}: the same LIFO
// breakdown as the employee leave-info route, addressed by employee_num
// directly rather than nested under /employees (§6 lists both).
func (h *Handlers) handleFiscalBalance(w http.ResponseWriter, r *http.Request) {
	num := chi.URLParam(r, "num")
	year, err := yearParam(r, h.Policy.YearFor(time.Now()))
	if err != nil {
		respondValidation(w, err.Error())
		return
	}

	bal, err := h.Ledger.Balance(r.Context(), num, year)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, leaveInfoResponse{
		EmployeeNum: bal.EmployeeNum,
		Year:        bal.Year,
		Total:       models.NewDecimal(bal.Total),
		Breakdown:   bal.Rows,
	})
}

type carryOverRequest struct {
	FromYear int `json:"from_year"`
	ToYear   int `json:"to_year"`
}

// handleCarryOver implements POST /fiscal/carry-over (§4.3.4). The engine
// itself makes the operation idempotent per (from_year, to_year): a second
// call finds no positive-balance rows left to roll and only re-runs the
// aging/purge sweeps, which are themselves idempotent.
func (h *Handlers) handleCarryOver(w http.ResponseWriter, r *http.Request) {
	var in carryOverRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondValidation(w, "malformed request body")
		return
	}
	if in.ToYear <= in.FromYear {
		respondValidation(w, "to_year must be after from_year")
		return
	}

	if err := h.Ledger.CarryOver(r.Context(), in.FromYear, in.ToYear); err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{"from_year": in.FromYear, "to_year": in.ToYear})
}
