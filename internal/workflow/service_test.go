package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

type fakeRepository struct {
	rows map[string]*models.LeaveRequest
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: make(map[string]*models.LeaveRequest)}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Get(_ context.Context, id string) (*models.LeaveRequest, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeRepository) List(_ context.Context, employeeNum string, year int) ([]models.LeaveRequest, error) {
	var out []models.LeaveRequest
	for _, row := range f.rows {
		if employeeNum != "" && row.EmployeeNum != employeeNum {
			continue
		}
		if year != 0 && row.Year != year {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeRepository) Create(_ context.Context, req *models.LeaveRequest) error {
	cp := *req
	f.rows[req.ID] = &cp
	return nil
}

func (f *fakeRepository) Update(_ context.Context, req *models.LeaveRequest) error {
	if _, ok := f.rows[req.ID]; !ok {
		return ErrNotFound
	}
	cp := *req
	f.rows[req.ID] = &cp
	return nil
}

type fakeLedger struct {
	deductErr error
	deducted  []struct {
		employeeNum string
		days        decimal.Decimal
		year        int
	}
	credited []struct {
		employeeNum string
		breakdown   []models.YearDeduction
	}
}

func (f *fakeLedger) Deduct(_ context.Context, employeeNum string, days decimal.Decimal, currentYear int) ([]models.YearDeduction, error) {
	if f.deductErr != nil {
		return nil, f.deductErr
	}
	f.deducted = append(f.deducted, struct {
		employeeNum string
		days        decimal.Decimal
		year        int
	}{employeeNum, days, currentYear})
	return []models.YearDeduction{{Year: currentYear, DaysUsed: models.NewDecimal(days)}}, nil
}

func (f *fakeLedger) Credit(_ context.Context, employeeNum string, breakdown []models.YearDeduction) error {
	f.credited = append(f.credited, struct {
		employeeNum string
		breakdown   []models.YearDeduction
	}{employeeNum, breakdown})
	return nil
}

type fakeDirectory struct {
	entries map[string]*models.EmployeeDirectoryEntry
}

func (f *fakeDirectory) Lookup(_ context.Context, employeeNum string) (*models.EmployeeDirectoryEntry, error) {
	e, ok := f.entries[employeeNum]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return e, nil
}

type fakeUsageStore struct {
	events  []*models.UsageEvent
	deleted []string
}

func (f *fakeUsageStore) AppendUsageEvent(_ context.Context, ev *models.UsageEvent) error {
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeUsageStore) DeleteUsageEventsByRequestID(_ context.Context, requestID string) error {
	f.deleted = append(f.deleted, requestID)
	var kept []*models.UsageEvent
	for _, ev := range f.events {
		if ev.RequestID == nil || *ev.RequestID != requestID {
			kept = append(kept, ev)
		}
	}
	f.events = kept
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *fakeLedger, *fakeDirectory, *fakeUsageStore) {
	t.Helper()
	repo := newFakeRepository()
	ledger := &fakeLedger{}
	dir := &fakeDirectory{entries: map[string]*models.EmployeeDirectoryEntry{
		"E001": {EmployeeNum: "E001", Name: "Taro Yamada", HourlyWage: 1200, Status: models.StatusActive},
	}}
	usage := &fakeUsageStore{}
	svc := NewService(repo, ledger, dir, usage, nil, nil)
	return svc, repo, ledger, dir, usage
}

func TestService_CreateRequest_CapturesWageAndDefaultsPending(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "E001", CreateRequestInput{
		EmployeeNum:   "E001",
		Year:          2024,
		StartDate:     time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, time.June, 4, 0, 0, 0, 0, time.UTC),
		DaysRequested: decimal.NewFromInt(2),
		LeaveType:     models.LeaveFull,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, 1200, req.HourlyWage)
	assert.True(t, req.CostEstimate.Equal(decimal.NewFromInt(2*8*1200)))
}

func TestService_CreateRequest_RejectsInactiveEmployee(t *testing.T) {
	svc, _, _, dir, _ := newTestService(t)
	dir.entries["E002"] = &models.EmployeeDirectoryEntry{EmployeeNum: "E002", Status: models.StatusRetired}

	_, err := svc.CreateRequest(context.Background(), "E002", CreateRequestInput{
		EmployeeNum:   "E002",
		StartDate:     time.Now(),
		EndDate:       time.Now(),
		DaysRequested: decimal.NewFromInt(1),
		LeaveType:     models.LeaveFull,
	})
	assert.ErrorIs(t, err, ErrEmployeeInactive)
}

func TestService_CreateRequest_RejectsOutOfBoundsDays(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	_, err := svc.CreateRequest(context.Background(), "E001", CreateRequestInput{
		EmployeeNum:   "E001",
		StartDate:     time.Now(),
		EndDate:       time.Now(),
		DaysRequested: decimal.NewFromInt(41),
		LeaveType:     models.LeaveFull,
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestService_ApproveRequest_DeductsAndEmitsUsageEvents(t *testing.T) {
	svc, _, ledger, _, usage := newTestService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "E001", CreateRequestInput{
		EmployeeNum:   "E001",
		Year:          2024,
		StartDate:     time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC),
		DaysRequested: decimal.NewFromInt(3),
		LeaveType:     models.LeaveFull,
	})
	require.NoError(t, err)

	approved, err := svc.ApproveRequest(ctx, req.ID, "approver1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)
	assert.Equal(t, "approver1", approved.ApprovedBy)
	require.Len(t, ledger.deducted, 1)
	assert.True(t, ledger.deducted[0].days.Equal(decimal.NewFromInt(3)))

	require.Len(t, usage.events, 3)
	total := decimal.Zero
	for _, ev := range usage.events {
		total = total.Add(ev.DaysUsed.Decimal)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(3)))
}

func TestService_ApproveRequest_InsufficientBalanceLeavesPending(t *testing.T) {
	svc, repo, ledger, _, _ := newTestService(t)
	ctx := context.Background()
	ledger.deductErr = assertInsufficientBalance

	req, err := svc.CreateRequest(ctx, "E001", CreateRequestInput{
		EmployeeNum:   "E001",
		Year:          2024,
		StartDate:     time.Now(),
		EndDate:       time.Now(),
		DaysRequested: decimal.NewFromInt(5),
		LeaveType:     models.LeaveFull,
	})
	require.NoError(t, err)

	_, err = svc.ApproveRequest(ctx, req.ID, "approver1")
	assert.ErrorIs(t, err, assertInsufficientBalance)

	stored, err := repo.Get(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, stored.Status)
}

func TestService_RevertRequest_CreditsExactBreakdownAndRemovesUsageEvents(t *testing.T) {
	svc, _, ledger, _, usage := newTestService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "E001", CreateRequestInput{
		EmployeeNum:   "E001",
		Year:          2024,
		StartDate:     time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		DaysRequested: decimal.NewFromInt(1),
		LeaveType:     models.LeaveFull,
	})
	require.NoError(t, err)
	_, err = svc.ApproveRequest(ctx, req.ID, "approver1")
	require.NoError(t, err)
	require.Len(t, usage.events, 1)

	reverted, err := svc.RevertRequest(ctx, req.ID, "approver1")
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, reverted.Status)
	assert.Nil(t, reverted.ApprovedAt)
	require.Len(t, ledger.credited, 1)
	assert.True(t, ledger.credited[0].breakdown[0].DaysUsed.Equal(decimal.NewFromInt(1)))
	assert.Empty(t, usage.events)
}

func TestService_CancelRequest_PendingHasNoBalanceEffect(t *testing.T) {
	svc, _, ledger, _, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "E001", CreateRequestInput{
		EmployeeNum:   "E001",
		StartDate:     time.Now(),
		EndDate:       time.Now(),
		DaysRequested: decimal.NewFromInt(1),
		LeaveType:     models.LeaveFull,
	})
	require.NoError(t, err)

	cancelled, err := svc.CancelRequest(ctx, req.ID, "E001")
	require.NoError(t, err)
	assert.Equal(t, models.RequestCancelled, cancelled.Status)
	assert.Empty(t, ledger.credited)
}

func TestService_RejectRequest_TerminalStateRejectsFurtherTransitions(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, "E001", CreateRequestInput{
		EmployeeNum:   "E001",
		StartDate:     time.Now(),
		EndDate:       time.Now(),
		DaysRequested: decimal.NewFromInt(1),
		LeaveType:     models.LeaveFull,
	})
	require.NoError(t, err)

	_, err = svc.RejectRequest(ctx, req.ID, "approver1", "not eligible")
	require.NoError(t, err)

	_, err = svc.ApproveRequest(ctx, req.ID, "approver1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

var assertInsufficientBalance = &testSentinel{"insufficient balance"}

type testSentinel struct{ msg string }

func (e *testSentinel) Error() string { return e.msg }
