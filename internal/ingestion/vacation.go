package ingestion

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/models"
)

const (
	vacationSheetName   = "作業者データ　有給"
	vacationHeaderRow   = 5 // 1-indexed
	vacationDataStart   = vacationHeaderRow + 1
	vacationColEmpNum   = 1
	vacationColYear     = 2 // optional explicit fiscal-year column
	vacationColGranted  = 3 // granted days for the attributed fiscal year
	vacationColFirstDay = 4
)

// yearEvents is one employee's fiscal-year worth of ingested usage events,
// ready for ledger.Engine.ImportYear.
type yearEvents struct {
	EmployeeNum string
	Year        int
	Granted     decimal.Decimal
	Events      []models.UsageEvent
}

// ParseVacationWorkbook reads the vacation sheet's calendar region and
// produces one yearEvents bundle per (employee_num, attributed fiscal
// year), applying the sentinel grammar to every non-empty cell.
func ParseVacationWorkbook(f *excelize.File, policy fiscalpolicy.FiscalPolicy, currentFiscalYear int) ([]yearEvents, *Report, error) {
	rows, err := f.GetRows(vacationSheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("vacation workbook: missing sheet %q: %w", vacationSheetName, err)
	}

	report := NewReport()
	buckets := make(map[string]*yearEvents)
	var order []string

	for i := vacationDataStart - 1; i < len(rows); i++ {
		rowNum := i + 1
		row := rows[i]
		employeeNum := cellAt(row, vacationColEmpNum)
		if employeeNum == "" {
			continue
		}
		report.RowsRead++

		fiscalYear := currentFiscalYear
		if raw := cellAt(row, vacationColYear); raw != "" {
			if y, err := strconv.Atoi(raw); err == nil {
				fiscalYear = y
			} else {
				report.Warn("row %d: unreadable fiscal-year column %q, attributed to current fiscal year", rowNum, raw)
			}
		} else {
			report.Warn("row %d: no explicit fiscal-year column, attributed to current fiscal year %d", rowNum, currentFiscalYear)
		}

		key := fmt.Sprintf("%s/%d", employeeNum, fiscalYear)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &yearEvents{EmployeeNum: employeeNum, Year: fiscalYear}
			buckets[key] = bucket
			order = append(order, key)
		}

		accepted := false
		for col := vacationColFirstDay; col <= len(row); col++ {
			raw := cellAt(row, col)
			if raw == "" {
				continue
			}
			result, err := classifyCell(raw, fiscalYear, policy)
			if err != nil {
				report.Skip(rowNum, fmt.Sprintf("column %d: %v", col, err))
				continue
			}
			if result.Skip {
				continue
			}
			bucket.Events = append(bucket.Events, models.UsageEvent{
				EmployeeNum: employeeNum,
				Year:        fiscalYear,
				UseDate:     result.Date,
				DaysUsed:    models.NewDecimal(result.Days),
				Type:        result.Type,
				Source:      models.SourceIngested,
			})
			accepted = true
		}

		if grantedRaw := strings.TrimSpace(cellAt(row, vacationColGranted)); grantedRaw != "" {
			if granted, err := strconv.ParseFloat(grantedRaw, 64); err == nil {
				bucket.Granted = decimal.NewFromFloat(granted)
			}
		}

		if accepted {
			report.RowsAccepted++
		}
	}

	out := make([]yearEvents, 0, len(order))
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	return out, report, nil
}
