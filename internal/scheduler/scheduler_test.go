package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/models"
)

type mockLedger struct {
	carryOverErr   error
	carryOverCalls [][2]int

	complianceResults []models.ComplianceResult
	complianceErr     error
}

func (m *mockLedger) CarryOver(ctx context.Context, fromYear, toYear int) error {
	m.carryOverCalls = append(m.carryOverCalls, [2]int{fromYear, toYear})
	return m.carryOverErr
}

func (m *mockLedger) CheckFiveDay(ctx context.Context, year int, now time.Time) ([]models.ComplianceResult, error) {
	if m.complianceErr != nil {
		return nil, m.complianceErr
	}
	return m.complianceResults, nil
}

type mockNotifier struct {
	notifications []string
}

func (m *mockNotifier) Notify(ctx context.Context, subject, message string) error {
	m.notifications = append(m.notifications, subject)
	return nil
}

func newTestScheduler(ledger LedgerEngine, notifier Notifier, config Config) *Scheduler {
	return NewScheduler(ledger, notifier, fiscalpolicy.Default(), config)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.CarryOverSchedule != "0 1 21 1 *" {
		t.Errorf("CarryOverSchedule = %q, want %q", config.CarryOverSchedule, "0 1 21 1 *")
	}
	if config.FiveDayCheckSchedule != "0 7 * * *" {
		t.Errorf("FiveDayCheckSchedule = %q, want %q", config.FiveDayCheckSchedule, "0 7 * * *")
	}
	if !config.Enabled {
		t.Error("Enabled should be true by default")
	}
}

func TestNewScheduler(t *testing.T) {
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, DefaultConfig())

	if s == nil {
		t.Fatal("NewScheduler returned nil")
	}
	if s.cron == nil {
		t.Error("cron should not be nil")
	}
	if s.running {
		t.Error("scheduler should not be running initially")
	}
}

func TestScheduler_IsRunning_Initially(t *testing.T) {
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, DefaultConfig())
	if s.IsRunning() {
		t.Error("scheduler should not be running initially")
	}
}

func TestScheduler_StartDisabled(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = false
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, config)

	if err := s.Start(); err != nil {
		t.Errorf("Start() returned error for disabled scheduler: %v", err)
	}
	if s.IsRunning() {
		t.Error("scheduler should not be running when disabled")
	}
}

func TestScheduler_StartEnabled(t *testing.T) {
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, DefaultConfig())

	if err := s.Start(); err != nil {
		t.Errorf("Start() returned error: %v", err)
	}
	if !s.IsRunning() {
		t.Error("scheduler should be running after Start()")
	}
	s.Stop()
}

func TestScheduler_StartTwice(t *testing.T) {
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, DefaultConfig())

	if err := s.Start(); err != nil {
		t.Errorf("first Start() returned error: %v", err)
	}
	err := s.Start()
	if err == nil {
		t.Error("second Start() should return error")
	} else if err.Error() != "scheduler is already running" {
		t.Errorf("unexpected error message: %v", err)
	}
	s.Stop()
}

func TestScheduler_Stop(t *testing.T) {
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, DefaultConfig())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	ctx := s.Stop()
	if ctx == nil {
		t.Error("Stop() returned nil context")
	}
	if s.IsRunning() {
		t.Error("scheduler should not be running after Stop()")
	}
}

func TestScheduler_StopNotRunning(t *testing.T) {
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, DefaultConfig())

	ctx := s.Stop()
	if ctx == nil {
		t.Error("Stop() returned nil context")
	}
	select {
	case <-ctx.Done():
	default:
		t.Error("context should be canceled when stopping non-running scheduler")
	}
}

func TestScheduler_InvalidScheduleFormat(t *testing.T) {
	config := Config{
		CarryOverSchedule:    "invalid cron expression",
		FiveDayCheckSchedule: "0 7 * * *",
		Enabled:              true,
	}
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, config)

	if err := s.Start(); err == nil {
		t.Error("Start() should return error for invalid cron expression")
		s.Stop()
	}
}

func TestScheduler_StopMultipleTimes(t *testing.T) {
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, DefaultConfig())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	if ctx1 := s.Stop(); ctx1 == nil {
		t.Error("first Stop() returned nil context")
	}
	if ctx2 := s.Stop(); ctx2 == nil {
		t.Error("second Stop() returned nil context")
	}
}

func TestScheduler_ConcurrentAccess(t *testing.T) {
	s := newTestScheduler(&mockLedger{}, &mockNotifier{}, DefaultConfig())

	if err := s.Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			_ = s.IsRunning()
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	s.Stop()
}

func TestScheduler_RunCarryOverNow_Success(t *testing.T) {
	ledger := &mockLedger{}
	s := newTestScheduler(ledger, &mockNotifier{}, DefaultConfig())

	s.RunCarryOverNow()

	if len(ledger.carryOverCalls) != 1 {
		t.Fatalf("expected one CarryOver call, got %d", len(ledger.carryOverCalls))
	}
	call := ledger.carryOverCalls[0]
	if call[1] != call[0]+1 {
		t.Errorf("expected toYear = fromYear+1, got %d, %d", call[0], call[1])
	}
}

func TestScheduler_RunCarryOverNow_NotifiesOnFailure(t *testing.T) {
	ledger := &mockLedger{carryOverErr: errors.New("db down")}
	notifier := &mockNotifier{}
	s := newTestScheduler(ledger, notifier, DefaultConfig())

	s.RunCarryOverNow()

	if len(notifier.notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.notifications))
	}
}

func TestScheduler_RunFiveDayCheckNow_NoFindings(t *testing.T) {
	ledger := &mockLedger{complianceResults: []models.ComplianceResult{
		{EmployeeNum: "E001", State: models.ComplianceCompliant},
	}}
	notifier := &mockNotifier{}
	s := newTestScheduler(ledger, notifier, DefaultConfig())

	s.RunFiveDayCheckNow()

	if len(notifier.notifications) != 0 {
		t.Errorf("expected no notifications when fully compliant, got %d", len(notifier.notifications))
	}
}

func TestScheduler_RunFiveDayCheckNow_NotifiesOnAtRiskOrNonCompliant(t *testing.T) {
	ledger := &mockLedger{complianceResults: []models.ComplianceResult{
		{EmployeeNum: "E001", State: models.ComplianceCompliant},
		{EmployeeNum: "E002", State: models.ComplianceAtRisk},
		{EmployeeNum: "E003", State: models.ComplianceNonCompliant},
	}}
	notifier := &mockNotifier{}
	s := newTestScheduler(ledger, notifier, DefaultConfig())

	s.RunFiveDayCheckNow()

	if len(notifier.notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(notifier.notifications))
	}
}

func TestScheduler_RunFiveDayCheckNow_Error(t *testing.T) {
	ledger := &mockLedger{complianceErr: errors.New("query failed")}
	notifier := &mockNotifier{}
	s := newTestScheduler(ledger, notifier, DefaultConfig())

	// Should not panic even when CheckFiveDay errors.
	s.RunFiveDayCheckNow()

	if len(notifier.notifications) != 0 {
		t.Errorf("expected no notification on query error, got %d", len(notifier.notifications))
	}
}
