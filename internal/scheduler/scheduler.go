// Package scheduler drives the two time-based operations LedgerEngine
// cannot trigger itself: annual carry-over and periodic five-day
// compliance checks (§3.9). It keeps the teacher's cron.New(cron.WithSeconds)
// lifecycle (Start/Stop/IsRunning, guarded by a mutex) but replaces the
// single recurring-invoice job with two independent jobs against the
// leave ledger.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/models"
)

// LedgerEngine is the narrow view of internal/ledger.Engine this package
// needs, declared locally so this package does not import internal/ledger
// directly.
type LedgerEngine interface {
	CarryOver(ctx context.Context, fromYear, toYear int) error
	CheckFiveDay(ctx context.Context, year int, now time.Time) ([]models.ComplianceResult, error)
}

// Notifier is the narrow view of internal/notify.Notifier this package needs.
type Notifier interface {
	Notify(ctx context.Context, subject, message string) error
}

// Config holds scheduler configuration.
type Config struct {
	// CarryOverSchedule is a 5-field cron expression for the annual
	// carry-over sweep. Runs once shortly after the fiscal year rolls over.
	CarryOverSchedule string
	// FiveDayCheckSchedule is a 5-field cron expression for the periodic
	// compliance sweep.
	FiveDayCheckSchedule string
	Enabled              bool
}

// DefaultConfig returns default scheduler configuration: carry-over runs
// once a year on January 21st (the day after the fiscal year boundary),
// compliance checks run daily at 07:00.
func DefaultConfig() Config {
	return Config{
		CarryOverSchedule:    "0 1 21 1 *",
		FiveDayCheckSchedule: "0 7 * * *",
		Enabled:              true,
	}
}

// Scheduler manages the background carry-over and compliance-check jobs.
type Scheduler struct {
	cron     *cron.Cron
	ledger   LedgerEngine
	notifier Notifier
	policy   fiscalpolicy.FiscalPolicy
	config   Config
	running  bool
	mu       sync.Mutex
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(ledger LedgerEngine, notifier Notifier, policy fiscalpolicy.FiscalPolicy, config Config) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		ledger:   ledger,
		notifier: notifier,
		policy:   policy,
		config:   config,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	if !s.config.Enabled {
		log.Info().Msg("scheduler is disabled")
		return nil
	}

	// Standard 5-field cron to 6-field by prepending a seconds field.
	carrySchedule := "0 " + s.config.CarryOverSchedule
	if _, err := s.cron.AddFunc(carrySchedule, s.runCarryOver); err != nil {
		return fmt.Errorf("failed to add carry-over job: %w", err)
	}

	complianceSchedule := "0 " + s.config.FiveDayCheckSchedule
	if _, err := s.cron.AddFunc(complianceSchedule, s.runFiveDayCheck); err != nil {
		return fmt.Errorf("failed to add five-day compliance job: %w", err)
	}

	s.cron.Start()
	s.running = true

	log.Info().
		Str("carry_over_schedule", s.config.CarryOverSchedule).
		Str("five_day_check_schedule", s.config.FiveDayCheckSchedule).
		Msg("scheduler started")

	return nil
}

// Stop stops the scheduler gracefully.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}

	ctx := s.cron.Stop()
	s.running = false
	log.Info().Msg("scheduler stopped")
	return ctx
}

// IsRunning returns whether the scheduler is currently running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// runCarryOver rolls the just-ended fiscal year into the new one.
func (s *Scheduler) runCarryOver() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	now := time.Now()
	toYear := s.policy.YearFor(now)
	fromYear := toYear - 1

	log.Info().Int("from_year", fromYear).Int("to_year", toYear).Msg("starting scheduled carry-over")

	if err := s.ledger.CarryOver(ctx, fromYear, toYear); err != nil {
		log.Error().Err(err).Int("from_year", fromYear).Int("to_year", toYear).Msg("carry-over failed")
		_ = s.notifier.Notify(ctx, "carry-over failed",
			fmt.Sprintf("carry-over from fiscal year %d to %d failed: %v", fromYear, toYear, err))
		return
	}

	log.Info().Int("from_year", fromYear).Int("to_year", toYear).Msg("completed scheduled carry-over")
}

// runFiveDayCheck evaluates every active employee against the five-day
// statutory-use obligation and notifies on any at-risk or non-compliant
// result.
func (s *Scheduler) runFiveDayCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	now := time.Now()
	year := s.policy.YearFor(now)

	results, err := s.ledger.CheckFiveDay(ctx, year, now)
	if err != nil {
		log.Error().Err(err).Int("year", year).Msg("five-day compliance check failed")
		return
	}

	var atRisk, nonCompliant int
	for _, r := range results {
		switch r.State {
		case models.ComplianceAtRisk:
			atRisk++
		case models.ComplianceNonCompliant:
			nonCompliant++
		}
	}

	log.Info().
		Int("year", year).
		Int("evaluated", len(results)).
		Int("at_risk", atRisk).
		Int("non_compliant", nonCompliant).
		Msg("completed five-day compliance check")

	if nonCompliant == 0 && atRisk == 0 {
		return
	}
	_ = s.notifier.Notify(ctx, "five-day compliance check",
		fmt.Sprintf("fiscal year %d: %d employee(s) at risk, %d non-compliant of %d evaluated",
			year, atRisk, nonCompliant, len(results)))
}

// RunCarryOverNow manually triggers the carry-over job.
func (s *Scheduler) RunCarryOverNow() {
	s.runCarryOver()
}

// RunFiveDayCheckNow manually triggers the compliance-check job.
func (s *Scheduler) RunFiveDayCheckNow() {
	s.runFiveDayCheck()
}
