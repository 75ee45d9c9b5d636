package ingestion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/models"
)

var (
	dayCountPattern = regexp.MustCompile(`^\d+日間$`)
	parenPattern    = regexp.MustCompile(`[(（][^)）]*[)）]`)
	ymdSlashPattern = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	ymdDashPattern  = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	mdSlashPattern  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
)

// cellResult is the outcome of classifying one calendar-region cell of the
// vacation sheet against the seven-rule sentinel grammar (§4.2).
type cellResult struct {
	Skip bool
	Type models.UsageType
	Days decimal.Decimal
	Date time.Time
}

// classifyCell evaluates the sentinel rules in order and stops at the first
// match. fiscalYear is the year attributed to the row — from an explicit
// column when present, the current fiscal year otherwise.
func classifyCell(raw string, fiscalYear int, policy fiscalpolicy.FiscalPolicy) (cellResult, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return cellResult{Skip: true}, nil
	}

	// Rule 1: padding.
	if s == "*" || s == "＊" {
		return cellResult{Skip: true}, nil
	}

	// Rule 2: range marker, e.g. "20日間".
	if dayCountPattern.MatchString(s) {
		return cellResult{Skip: true}, nil
	}

	// Rule 3: expiration.
	if strings.Contains(s, "消滅") {
		date, err := parseCellDate(strings.TrimSpace(stripMarker(s, "消滅")), fiscalYear, policy)
		if err != nil {
			return cellResult{}, fmt.Errorf("expiration cell %q: %w", raw, err)
		}
		return cellResult{Type: models.UsageExpired, Days: decimal.Zero, Date: date}, nil
	}

	// Rule 4: half-day.
	if marker, ok := firstMatch(s, "半", "0.5", "AM", "PM"); ok {
		date, err := parseCellDate(strings.TrimSpace(stripMarker(s, marker)), fiscalYear, policy)
		if err != nil {
			return cellResult{}, fmt.Errorf("half-day cell %q: %w", raw, err)
		}
		return cellResult{Type: models.UsageHalf, Days: decimal.NewFromFloat(0.5), Date: date}, nil
	}

	// Rule 5: hourly, treated as a quarter-day equivalent.
	if marker, ok := firstMatch(s, "2h", "2時間"); ok {
		date, err := parseCellDate(strings.TrimSpace(stripMarker(s, marker)), fiscalYear, policy)
		if err != nil {
			return cellResult{}, fmt.Errorf("hourly cell %q: %w", raw, err)
		}
		return cellResult{Type: models.UsageHourly, Days: decimal.NewFromFloat(0.25), Date: date}, nil
	}

	// Rule 6: paid-out — the date precedes the parenthetical marker.
	if strings.Contains(s, "支給") {
		head := s
		if idx := strings.IndexAny(s, "(（"); idx >= 0 {
			head = s[:idx]
		}
		date, err := parseCellDate(strings.TrimSpace(head), fiscalYear, policy)
		if err != nil {
			return cellResult{}, fmt.Errorf("paid-out cell %q: %w", raw, err)
		}
		return cellResult{Type: models.UsagePaidOut, Days: decimal.NewFromInt(1), Date: date}, nil
	}

	// Rule 7: otherwise, a full day.
	date, err := parseCellDate(s, fiscalYear, policy)
	if err != nil {
		return cellResult{}, fmt.Errorf("unrecognized cell %q: %w", raw, err)
	}
	return cellResult{Type: models.UsageFull, Days: decimal.NewFromInt(1), Date: date}, nil
}

func firstMatch(s string, subs ...string) (string, bool) {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return sub, true
		}
	}
	return "", false
}

func stripMarker(s, marker string) string {
	return parenPattern.ReplaceAllString(strings.ReplaceAll(s, marker, ""), "")
}

// parseCellDate accepts an Excel serial date, a full YYYY/M/D or YYYY-M-D
// date, or a bare M/D date completed against fiscalYear.
func parseCellDate(s string, fiscalYear int, policy fiscalpolicy.FiscalPolicy) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse excel serial date %q: %w", s, err)
		}
		return rejectSerialNoise(t)
	}

	if m := ymdSlashPattern.FindStringSubmatch(s); m != nil {
		return rejectSerialNoise(dateFromParts(m[1], m[2], m[3]))
	}
	if m := ymdDashPattern.FindStringSubmatch(s); m != nil {
		return rejectSerialNoise(dateFromParts(m[1], m[2], m[3]))
	}
	if m := mdSlashPattern.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year := yearForMonthDay(time.Month(month), day, fiscalYear, policy)
		return rejectSerialNoise(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	}

	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func dateFromParts(ys, ms, ds string) time.Time {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

// rejectSerialNoise refuses year 1900, the classic off-by-one spreadsheet
// epoch artifact (§4.2).
func rejectSerialNoise(t time.Time) (time.Time, error) {
	if t.Year() == 1900 {
		return time.Time{}, fmt.Errorf("rejected: year 1900 is spreadsheet serial noise")
	}
	return t, nil
}

// yearForMonthDay picks the calendar year for a bare M/D date such that
// FiscalPolicy.YearFor of the resulting date lands back on fiscalYear —
// the row's attributed fiscal year, working backward through the same
// resolver every other package uses, rather than inventing a parallel one.
func yearForMonthDay(month time.Month, day, fiscalYear int, policy fiscalpolicy.FiscalPolicy) int {
	for _, candidate := range []int{fiscalYear, fiscalYear + 1, fiscalYear - 1} {
		d := time.Date(candidate, month, day, 0, 0, 0, 0, time.UTC)
		if policy.YearFor(d) == fiscalYear {
			return candidate
		}
	}
	return fiscalYear
}
