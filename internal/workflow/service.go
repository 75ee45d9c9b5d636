package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yukyu/ledger/internal/models"
)

// LedgerEngine is the subset of ledger.Engine RequestWorkflow needs. Declared
// here, rather than importing internal/ledger's concrete type, so tests can
// substitute a fake without a database.
type LedgerEngine interface {
	Deduct(ctx context.Context, employeeNum string, days decimal.Decimal, currentYear int) ([]models.YearDeduction, error)
	Credit(ctx context.Context, employeeNum string, breakdown []models.YearDeduction) error
}

// EmployeeDirectory resolves an employee's directory entry for the
// creation-time existence/active/wage checks. internal/registry satisfies
// this.
type EmployeeDirectory interface {
	Lookup(ctx context.Context, employeeNum string) (*models.EmployeeDirectoryEntry, error)
}

// UsageEventStore is the narrow slice of ledger.Repository RequestWorkflow
// needs to record and unwind approval-path usage events.
// *ledger.GORMRepository satisfies this structurally.
type UsageEventStore interface {
	AppendUsageEvent(ctx context.Context, ev *models.UsageEvent) error
	DeleteUsageEventsByRequestID(ctx context.Context, requestID string) error
}

// AuditRecorder records one entry per transition.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry) error
}

// Notifier is told about every transition; RequestWorkflow never blocks a
// transition on a notification failure.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

type noopAudit struct{}

func (noopAudit) Record(context.Context, models.AuditEntry) error { return nil }

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string, string) error { return nil }

// Service implements RequestWorkflow (§4.4): the LeaveRequest state machine
// and its atomic coupling to the ledger engine.
type Service struct {
	repo      Repository
	ledger    LedgerEngine
	directory EmployeeDirectory
	usage     UsageEventStore
	audit     AuditRecorder
	notifier  Notifier
}

func NewService(repo Repository, ledger LedgerEngine, directory EmployeeDirectory, usage UsageEventStore, audit AuditRecorder, notifier Notifier) *Service {
	if audit == nil {
		audit = noopAudit{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Service{repo: repo, ledger: ledger, directory: directory, usage: usage, audit: audit, notifier: notifier}
}

// CreateRequest inserts a PENDING LeaveRequest. No balance change happens
// at creation; approval is what debits the ledger.
func (s *Service) CreateRequest(ctx context.Context, requestedBy string, in CreateRequestInput) (*models.LeaveRequest, error) {
	if in.DaysRequested.IsNegative() || in.DaysRequested.IsZero() || in.DaysRequested.GreaterThan(decimal.NewFromInt(40)) {
		return nil, fmt.Errorf("%w: days_requested must be in (0, 40]", ErrInvalidArgument)
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, fmt.Errorf("%w: end_date must be on or after start_date", ErrInvalidArgument)
	}
	if in.LeaveType == models.LeaveHourly {
		if in.HoursRequested.IsNegative() || in.HoursRequested.GreaterThan(decimal.NewFromInt(320)) {
			return nil, fmt.Errorf("%w: hours_requested must be in [0, 320]", ErrInvalidArgument)
		}
	}

	entry, err := s.directory.Lookup(ctx, in.EmployeeNum)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, in.EmployeeNum)
	}
	if entry.Status != models.StatusActive {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeInactive, in.EmployeeNum)
	}

	now := time.Now()
	req := &models.LeaveRequest{
		Base:          models.Base{ID: uuid.NewString()},
		EmployeeNum:   entry.EmployeeNum,
		EmployeeName:  entry.Name,
		Year:          in.Year,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		DaysRequested: models.NewDecimal(in.DaysRequested),
		HoursRequested: models.NewDecimal(in.HoursRequested),
		LeaveType:     in.LeaveType,
		Reason:        in.Reason,
		Status:        models.RequestPending,
		RequestedAt:   now,
		RequestedBy:   requestedBy,
		HourlyWage:    entry.HourlyWage,
		CostEstimate:  models.NewDecimal(costEstimate(in, entry.HourlyWage)),
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, requestedBy, models.AuditCreate, req.ID, nil, req)
	_ = s.notifier.Notify(ctx, "leave request created", req.ID)
	return req, nil
}

func costEstimate(in CreateRequestInput, hourlyWage int) decimal.Decimal {
	wage := decimal.NewFromInt(int64(hourlyWage))
	if in.LeaveType == models.LeaveHourly {
		return in.HoursRequested.Mul(wage)
	}
	return in.DaysRequested.Mul(decimal.NewFromInt(8)).Mul(wage)
}

// ApproveRequest transitions PENDING -> APPROVED, deducting the requested
// days from the employee's ledger and recording the per-year breakdown so a
// later revert can credit back exactly what was taken.
func (s *Service) ApproveRequest(ctx context.Context, id, approvedBy string) (*models.LeaveRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanTransitionTo(models.RequestApproved) {
		return nil, fmt.Errorf("%w: cannot approve a request in status %s", ErrInvalidTransition, req.Status)
	}

	before := *req

	breakdown, err := s.ledger.Deduct(ctx, req.EmployeeNum, req.DaysRequested.Decimal, req.Year)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal deduction breakdown: %w", err)
	}

	now := time.Now()
	req.Status = models.RequestApproved
	req.ApprovedAt = &now
	req.ApprovedBy = approvedBy
	req.DeductionBreakdown = models.JSONBRaw(raw)

	for _, ev := range generateUsageEvents(req, breakdown) {
		if err := s.usage.AppendUsageEvent(ctx, ev); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, approvedBy, models.AuditApprove, req.ID, &before, req)
	_ = s.notifier.Notify(ctx, "leave request approved", req.ID)
	return req, nil
}

// RejectRequest transitions PENDING -> REJECTED. No balance change.
func (s *Service) RejectRequest(ctx context.Context, id, rejectedBy, reason string) (*models.LeaveRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanTransitionTo(models.RequestRejected) {
		return nil, fmt.Errorf("%w: cannot reject a request in status %s", ErrInvalidTransition, req.Status)
	}

	before := *req
	now := time.Now()
	req.Status = models.RequestRejected
	req.RejectedAt = &now
	req.RejectedBy = rejectedBy
	req.RejectionReason = reason

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, rejectedBy, models.AuditReject, req.ID, &before, req)
	_ = s.notifier.Notify(ctx, "leave request rejected", req.ID)
	return req, nil
}

// CancelRequest transitions PENDING or APPROVED -> CANCELLED. If the
// request was approved, its deduction is credited back first.
func (s *Service) CancelRequest(ctx context.Context, id, cancelledBy string) (*models.LeaveRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanTransitionTo(models.RequestCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel a request in status %s", ErrInvalidTransition, req.Status)
	}

	before := *req
	wasApproved := req.Status == models.RequestApproved

	if wasApproved {
		breakdown, err := decodeBreakdown(req.DeductionBreakdown)
		if err != nil {
			return nil, err
		}
		if err := s.ledger.Credit(ctx, req.EmployeeNum, breakdown); err != nil {
			return nil, err
		}
		if err := s.usage.DeleteUsageEventsByRequestID(ctx, req.ID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	req.Status = models.RequestCancelled
	req.CancelledAt = &now
	req.CancelledBy = cancelledBy

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, cancelledBy, models.AuditCancel, req.ID, &before, req)
	_ = s.notifier.Notify(ctx, "leave request cancelled", req.ID)
	return req, nil
}

// RevertRequest transitions APPROVED -> PENDING: it credits back exactly
// the years originally debited and removes the UsageEvents created at
// approval.
func (s *Service) RevertRequest(ctx context.Context, id, actor string) (*models.LeaveRequest, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !req.CanTransitionTo(models.RequestPending) {
		return nil, fmt.Errorf("%w: cannot revert a request in status %s", ErrInvalidTransition, req.Status)
	}

	before := *req

	breakdown, err := decodeBreakdown(req.DeductionBreakdown)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Credit(ctx, req.EmployeeNum, breakdown); err != nil {
		return nil, err
	}
	if err := s.usage.DeleteUsageEventsByRequestID(ctx, req.ID); err != nil {
		return nil, err
	}

	req.Status = models.RequestPending
	req.ApprovedAt = nil
	req.ApprovedBy = ""
	req.DeductionBreakdown = nil

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, models.AuditRevert, req.ID, &before, req)
	_ = s.notifier.Notify(ctx, "leave request reverted to pending", req.ID)
	return req, nil
}

// GetRequest fetches one LeaveRequest by id, for ApiPlane detail/action
// routes that need the current row before attempting a transition.
func (s *Service) GetRequest(ctx context.Context, id string) (*models.LeaveRequest, error) {
	return s.repo.Get(ctx, id)
}

// ListRequests returns every LeaveRequest matching employeeNum/year
// (either may be left zero-valued to mean "any"), additionally filtered by
// status when status is non-empty. Filtering happens in-process because
// Repository.List already narrows by employeeNum/year at the storage layer
// and the status dimension has low enough cardinality not to warrant a
// third query parameter on that interface.
func (s *Service) ListRequests(ctx context.Context, employeeNum string, year int, status models.LeaveStatus) ([]models.LeaveRequest, error) {
	rows, err := s.repo.List(ctx, employeeNum, year)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return rows, nil
	}
	filtered := make([]models.LeaveRequest, 0, len(rows))
	for _, r := range rows {
		if r.Status == status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (s *Service) recordAudit(ctx context.Context, actor string, action models.AuditAction, requestID string, before, after *models.LeaveRequest) {
	var beforeRaw, afterRaw models.JSONBRaw
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			beforeRaw = models.JSONBRaw(b)
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			afterRaw = models.JSONBRaw(b)
		}
	}
	_ = s.audit.Record(ctx, models.AuditEntry{
		Timestamp:   time.Now(),
		Actor:       actor,
		Action:      action,
		EntityKind:  "leave_request",
		EntityID:    requestID,
		BeforeValue: beforeRaw,
		AfterValue:  afterRaw,
	})
}

func decodeBreakdown(raw models.JSONBRaw) ([]models.YearDeduction, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var breakdown []models.YearDeduction
	if err := json.Unmarshal(raw, &breakdown); err != nil {
		return nil, fmt.Errorf("decode deduction breakdown: %w", err)
	}
	return breakdown, nil
}

// generateUsageEvents spreads days_requested evenly across the inclusive
// start_date..end_date span, one event per calendar day, with any rounding
// remainder folded into the last day so the events sum to exactly
// days_requested.
func generateUsageEvents(req *models.LeaveRequest, breakdown []models.YearDeduction) []*models.UsageEvent {
	days := int(req.EndDate.Sub(req.StartDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	total := req.DaysRequested.Decimal
	share := total.Div(decimal.NewFromInt(int64(days)))

	year := req.Year
	if len(breakdown) > 0 {
		year = breakdown[0].Year
	}

	events := make([]*models.UsageEvent, 0, days)
	allocated := decimal.Zero
	for i := 0; i < days; i++ {
		amount := share
		if i == days-1 {
			amount = total.Sub(allocated)
		}
		allocated = allocated.Add(amount)
		events = append(events, &models.UsageEvent{
			EmployeeNum: req.EmployeeNum,
			Year:        year,
			UseDate:     req.StartDate.AddDate(0, 0, i),
			DaysUsed:    models.NewDecimal(amount),
			Type:        usageTypeFor(req.LeaveType),
			Source:      models.SourceApprovedRequest,
			RequestID:   &req.ID,
		})
	}
	return events
}

func usageTypeFor(t models.LeaveType) models.UsageType {
	switch t {
	case models.LeaveHalf:
		return models.UsageHalf
	case models.LeaveHourly:
		return models.UsageHourly
	default:
		return models.UsageFull
	}
}

// CreateRequestInput is the validated input to CreateRequest.
type CreateRequestInput struct {
	EmployeeNum    string
	Year           int
	StartDate      time.Time
	EndDate        time.Time
	DaysRequested  decimal.Decimal
	HoursRequested decimal.Decimal
	LeaveType      models.LeaveType
	Reason         string
}
