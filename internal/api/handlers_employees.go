package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yukyu/ledger/internal/models"
)

// handleListEmployees implements GET /employees: a paginated, filterable
// view across all three registers (§6). year, when present, narrows to
// employees whose hire date falls in that calendar year or earlier and
// whose leave date, if any, falls in that calendar year or later; category
// and active narrow to one register/status; q, when
// present, defers entirely to the full-text index instead of the plain
// directory listing.
func (h *Handlers) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := parsePage(r)

	if term := q.Get("q"); term != "" {
		rows, err := h.Search.Query(r.Context(), term, p.Limit, p.offset())
		if err != nil {
			respondError(w, err)
			return
		}
		respondList(w, rows, p, int64(len(rows)))
		return
	}

	var (
		entries []models.EmployeeDirectoryEntry
		err     error
	)
	if cat := q.Get("category"); cat != "" {
		if verr := oneOf("category", cat, string(models.CategoryDispatch), string(models.CategoryContract), string(models.CategoryStaff)); verr != nil {
			respondValidation(w, verr.Error())
			return
		}
		entries, err = h.Directory.ListCategory(r.Context(), models.EmployeeCategory(cat))
	} else {
		entries, err = h.Directory.ListAll(r.Context())
	}
	if err != nil {
		respondError(w, err)
		return
	}

	if activeRaw := q.Get("active"); activeRaw != "" {
		active, perr := strconv.ParseBool(activeRaw)
		if perr != nil {
			respondValidation(w, "active must be a boolean")
			return
		}
		entries = filterActive(entries, active)
	}

	if yearRaw := q.Get("year"); yearRaw != "" {
		year, perr := strconv.Atoi(yearRaw)
		if perr != nil {
			respondValidation(w, "year must be an integer")
			return
		}
		entries = filterEmployedDuringYear(entries, year)
	}

	total := int64(len(entries))
	respondList(w, paginateEntries(entries, p), p, total)
}

func filterActive(entries []models.EmployeeDirectoryEntry, active bool) []models.EmployeeDirectoryEntry {
	out := make([]models.EmployeeDirectoryEntry, 0, len(entries))
	for _, e := range entries {
		if (e.Status == models.StatusActive) == active {
			out = append(out, e)
		}
	}
	return out
}

func filterEmployedDuringYear(entries []models.EmployeeDirectoryEntry, year int) []models.EmployeeDirectoryEntry {
	out := make([]models.EmployeeDirectoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.HireDate.Year() > year {
			continue
		}
		if e.LeaveDate != nil && e.LeaveDate.Year() < year {
			continue
		}
		out = append(out, e)
	}
	return out
}

func paginateEntries(entries []models.EmployeeDirectoryEntry, p page) []models.EmployeeDirectoryEntry {
	start := p.offset()
	if start >= len(entries) {
		return []models.EmployeeDirectoryEntry{}
	}
	end := start + p.Limit
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}

// handleSearchEmployees implements GET /employees/search: full-text over
// name/location, delegating to the same index handleListEmployees uses
// when q is present.
func (h *Handlers) handleSearchEmployees(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if err := requireNonEmpty("q", term); err != nil {
		respondValidation(w, err.Error())
		return
	}
	p := parsePage(r)
	rows, err := h.Search.Query(r.Context(), term, p.Limit, p.offset())
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, rows, p, int64(len(rows)))
}

type leaveInfoResponse struct {
	EmployeeNum string                `json:"employee_num"`
	Year        int                   `json:"year"`
	Total       models.Decimal        `json:"total_balance"`
	Breakdown   []models.EmployeeYear `json:"breakdown"`
}

// handleEmployeeLeaveInfo implements GET /employees/{num}/leave-info: the
// current-plus-prior-year LIFO breakdown (§4.3.2). year defaults to the
// fiscal year containing now.
func (h *Handlers) handleEmployeeLeaveInfo(w http.ResponseWriter, r *http.Request) {
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

func yearParam(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return def, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("year must be an integer")
	}
	return year, nil
}
