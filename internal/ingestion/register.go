package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/yukyu/ledger/internal/models"
)

// registerSheetSpec names one register category's sheet and positional
// column layout, per §4.2. Columns are 1-indexed, matching the spec text.
type registerSheetSpec struct {
	category     models.EmployeeCategory
	sheetName    string
	headerRow    int
	employeeNum  int
	location     int // dispatch_name / business / 0 (staff has none)
	name         int
	hourlyWage   int // 0 when the category carries no wage column
	hireDate     int // 0 when not given positionally
	leaveDate    int // 0 when not given positionally
}

var registerSheets = []registerSheetSpec{
	{category: models.CategoryDispatch, sheetName: "派遣", headerRow: 3, employeeNum: 1, location: 3, name: 7, hourlyWage: 13},
	{category: models.CategoryContract, sheetName: "契約", headerRow: 4, employeeNum: 1, location: 2, name: 3},
	{category: models.CategoryStaff, sheetName: "社員", headerRow: 2, employeeNum: 1, name: 3, hireDate: 15, leaveDate: 16},
}

// ParseRegisterWorkbook reads the three category sheets of a register
// workbook and returns one EmployeeDirectoryEntry per accepted row, plus a
// Report aggregating read/accepted/skipped counts and warnings. A sheet
// that is entirely absent, or a workbook that cannot be opened, fails the
// whole ingestion with no partial result (§4.2 "malformed file").
func ParseRegisterWorkbook(f *excelize.File) ([]registerRow, *Report, error) {
	report := NewReport()
	var rows []registerRow

	for _, spec := range registerSheets {
		sheetRows, err := f.GetRows(spec.sheetName)
		if err != nil {
			return nil, nil, fmt.Errorf("register workbook: missing sheet %q: %w", spec.sheetName, err)
		}

		dataStart := spec.headerRow // header row is 1-indexed; data starts the row after
		for i := dataStart; i < len(sheetRows); i++ {
			report.RowsRead++
			row := sheetRows[i]
			entry, ok, reason := parseRegisterRow(spec, row, i+1)
			if !ok {
				if reason != "" {
					report.Skip(i+1, reason)
				}
				continue
			}
			rows = append(rows, registerRow{category: spec.category, entry: entry})
			report.RowsAccepted++
		}
	}

	return rows, report, nil
}

type registerRow struct {
	category models.EmployeeCategory
	entry    models.EmployeeDirectoryEntry
}

func parseRegisterRow(spec registerSheetSpec, row []string, rowNum int) (models.EmployeeDirectoryEntry, bool, string) {
	employeeNum := cellAt(row, spec.employeeNum)
	if employeeNum == "" {
		return models.EmployeeDirectoryEntry{}, false, fmt.Sprintf("row %d: missing employee_num", rowNum)
	}

	name := cellAt(row, spec.name)
	entry := models.EmployeeDirectoryEntry{
		EmployeeNum:  employeeNum,
		Name:         name,
		Category:     spec.category,
		WorkLocation: cellAt(row, spec.location),
		Status:       models.StatusActive,
	}

	if spec.hourlyWage != 0 {
		if raw := cellAt(row, spec.hourlyWage); raw != "" {
			wage, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return models.EmployeeDirectoryEntry{}, false, fmt.Sprintf("row %d: invalid hourly_wage %q", rowNum, raw)
			}
			entry.HourlyWage = wage
		}
	}

	if spec.hireDate != 0 {
		if raw := cellAt(row, spec.hireDate); raw != "" {
			t, err := parseRegisterDate(raw)
			if err != nil {
				return models.EmployeeDirectoryEntry{}, false, fmt.Sprintf("row %d: invalid hire_date %q", rowNum, raw)
			}
			entry.HireDate = t
		}
	}

	if spec.leaveDate != 0 {
		if raw := cellAt(row, spec.leaveDate); raw != "" {
			t, err := parseRegisterDate(raw)
			if err != nil {
				return models.EmployeeDirectoryEntry{}, false, fmt.Sprintf("row %d: invalid leave_date %q", rowNum, raw)
			}
			entry.LeaveDate = &t
			entry.Status = models.StatusRetired
		}
	}

	return entry, true, ""
}

// cellAt returns the trimmed value at a 1-indexed positional column, or ""
// if the row is too short or the column is unused (0) for this category.
// Empty cells become null per §4.2.
func cellAt(row []string, col int) string {
	if col <= 0 || col > len(row) {
		return ""
	}
	return strings.TrimSpace(decodeCell(row[col-1]))
}

// decodeCell tolerates a cell carrying raw Shift-JIS bytes instead of the
// UTF-8 the OOXML format specifies (§4.2). Valid UTF-8 passes through
// unchanged; anything else is re-decoded as Shift-JIS on a best-effort
// basis, falling back to the original bytes if that also fails.
func decodeCell(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader([]byte(s)), japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return s
	}
	return string(decoded)
}

func parseRegisterDate(raw string) (time.Time, error) {
	if serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range []string{"2006/1/2", "2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", raw)
}
