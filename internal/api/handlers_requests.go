package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/yukyu/ledger/internal/auth"
	"github.com/yukyu/ledger/internal/models"
	"github.com/yukyu/ledger/internal/workflow"
)

type createRequestBody struct {
	EmployeeNum    string `json:"employee_num"`
	Year           int    `json:"year"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	DaysRequested  string `json:"days_requested"`
	HoursRequested string `json:"hours_requested"`
	LeaveType      string `json:"leave_type"`
	Reason         string `json:"reason"`
}

// handleCreateRequest implements POST /leave-requests (§4.4): validates the
// declared schema, then defers every domain invariant (day bounds, employee
// existence/activity) to workflow.Service.CreateRequest.
func (h *Handlers) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var in createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondValidation(w, "malformed request body")
		return
	}

	if err := requireNonEmpty("employee_num", in.EmployeeNum); err != nil {
		respondValidation(w, err.Error())
		return
	}
	if err := oneOf("leave_type", in.LeaveType, string(models.LeaveFull), string(models.LeaveHalf), string(models.LeaveHourly)); err != nil {
		respondValidation(w, err.Error())
		return
	}
	startDate, err := parseDate("start_date", in.StartDate)
	if err != nil {
		respondValidation(w, err.Error())
		return
	}
	endDate, err := parseDate("end_date", in.EndDate)
	if err != nil {
		respondValidation(w, err.Error())
		return
	}
	days, err := decimal.NewFromString(in.DaysRequested)
	if err != nil {
		respondValidation(w, "days_requested must be a decimal number")
		return
	}
	hours := decimal.Zero
	if in.HoursRequested != "" {
		hours, err = decimal.NewFromString(in.HoursRequested)
		if err != nil {
			respondValidation(w, "hours_requested must be a decimal number")
			return
		}
	}

	year := in.Year
	if year == 0 {
		year = h.Policy.YearFor(startDate)
	}

	claims, _ := auth.GetClaims(r.Context())
	req, err := h.Workflow.CreateRequest(r.Context(), claims.UserID, workflow.CreateRequestInput{
		EmployeeNum:    in.EmployeeNum,
		Year:           year,
		StartDate:      startDate,
		EndDate:        endDate,
		DaysRequested:  days,
		HoursRequested: hours,
		LeaveType:      models.LeaveType(in.LeaveType),
		Reason:         in.Reason,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusCreated, req)
}

// handleListRequests implements GET /leave-requests: filters status,
// employee_num, year, page/limit (§6).
func (h *Handlers) handleListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := models.LeaveStatus(q.Get("status"))
	if status != "" {
		if err := oneOf("status", string(status), string(models.RequestPending), string(models.RequestApproved), string(models.RequestRejected), string(models.RequestCancelled)); err != nil {
			respondValidation(w, err.Error())
			return
		}
	}

	employeeNum := q.Get("employee_num")
	year, err := yearParam(r, 0)
	if err != nil {
		respondValidation(w, err.Error())
		return
	}

	rows, err := h.Workflow.ListRequests(r.Context(), employeeNum, year, status)
	if err != nil {
		respondError(w, err)
		return
	}

	p := parsePage(r)
	total := int64(len(rows))
	start := p.offset()
	if start >= len(rows) {
		respondList(w, []models.LeaveRequest{}, p, total)
		return
	}
	end := start + p.Limit
	if end > len(rows) {
		end = len(rows)
	}
	respondList(w, rows[start:end], p, total)
}

func (h *Handlers) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := auth.GetClaims(r.Context())
	req, err := h.Workflow.ApproveRequest(r.Context(), id, claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, req)
}

type rejectRequestBody struct {
	Reason string `json:"reason"`
}

func (h *Handlers) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in rejectRequestBody
	_ = json.NewDecoder(r.Body).Decode(&in)

	claims, _ := auth.GetClaims(r.Context())
	req, err := h.Workflow.RejectRequest(r.Context(), id, claims.UserID, in.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, req)
}

// handleCancelRequest is not in the representative HTTP surface table but
// exposes workflow.Service.CancelRequest, which every request owner needs
// to withdraw a pending or approved request. An approved request's
// deduction is credited back; whether its dates have already passed is
// not checked.
func (h *Handlers) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := auth.GetClaims(r.Context())
	req, err := h.Workflow.CancelRequest(r.Context(), id, claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, req)
}

func (h *Handlers) handleRevertRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims, _ := auth.GetClaims(r.Context())
	req, err := h.Workflow.RevertRequest(r.Context(), id, claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, http.StatusOK, req)
}
