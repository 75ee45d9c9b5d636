package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yukyu/ledger/internal/models"
)

func buildRegisterWorkbook(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()

	f.NewSheet("派遣")
	dispatchRows := [][]string{
		{"", "", "header1"},
		{"", "", "header2"},
		{"employee_num", "", "dispatch_name", "", "", "", "name", "", "", "", "", "", "hourly_wage"},
		{"D001", "", "Dispatch Co", "", "", "", "Taro Yamada", "", "", "", "", "", "1500"},
		{"", "", "", "", "", "", "", "", "", "", "", "", ""},
	}
	for i, row := range dispatchRows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue("派遣", cell, v)
		}
	}

	f.NewSheet("契約")
	contractRows := [][]string{
		{"h1"}, {"h2"}, {"h3"},
		{"employee_num", "business", "name"},
		{"C001", "Acme Corp", "Hanako Sato"},
	}
	for i, row := range contractRows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue("契約", cell, v)
		}
	}

	f.NewSheet("社員")
	staffRows := [][]string{
		{"header"},
		{"employee_num", "", "name"},
		{"S001", "", "Jiro Suzuki"},
	}
	for i, row := range staffRows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			f.SetCellValue("社員", cell, v)
		}
	}

	f.DeleteSheet("Sheet1")
	return f
}

func TestParseRegisterWorkbook_ParsesAllThreeCategories(t *testing.T) {
	f := buildRegisterWorkbook(t)
	rows, report, err := ParseRegisterWorkbook(f)
	require.NoError(t, err)

	byCategory := map[models.EmployeeCategory]registerRow{}
	for _, r := range rows {
		byCategory[r.category] = r
	}

	require.Contains(t, byCategory, models.CategoryDispatch)
	dispatch := byCategory[models.CategoryDispatch]
	assert.Equal(t, "D001", dispatch.entry.EmployeeNum)
	assert.Equal(t, "Taro Yamada", dispatch.entry.Name)
	assert.Equal(t, "Dispatch Co", dispatch.entry.WorkLocation)
	assert.Equal(t, 1500, dispatch.entry.HourlyWage)

	require.Contains(t, byCategory, models.CategoryContract)
	assert.Equal(t, "Hanako Sato", byCategory[models.CategoryContract].entry.Name)

	require.Contains(t, byCategory, models.CategoryStaff)
	assert.Equal(t, "Jiro Suzuki", byCategory[models.CategoryStaff].entry.Name)

	assert.Equal(t, 3, report.RowsAccepted)
}

func TestParseRegisterWorkbook_SkipsRowMissingEmployeeNum(t *testing.T) {
	f := buildRegisterWorkbook(t)
	f.SetCellValue("社員", "A3", "")

	rows, report, err := ParseRegisterWorkbook(f)
	require.NoError(t, err)

	for _, r := range rows {
		assert.NotEqual(t, models.CategoryStaff, r.category)
	}
	assert.GreaterOrEqual(t, report.RowsSkipped, 1)
}

func TestParseRegisterWorkbook_MissingSheetFailsWhole(t *testing.T) {
	f := excelize.NewFile()
	_, _, err := ParseRegisterWorkbook(f)
	assert.Error(t, err)
}

func TestCellAt_TrimsAndToleratesShortRows(t *testing.T) {
	row := []string{"a", " b "}
	assert.Equal(t, "a", cellAt(row, 1))
	assert.Equal(t, "b", cellAt(row, 2))
	assert.Equal(t, "", cellAt(row, 3))
	assert.Equal(t, "", cellAt(row, 0))
}
