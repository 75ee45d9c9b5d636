package ingestion

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/models"
)

func TestClassifyCell_Padding(t *testing.T) {
	policy := fiscalpolicy.Default()
	for _, raw := range []string{"*", "＊", "  * "} {
		res, err := classifyCell(raw, 2025, policy)
		require.NoError(t, err)
		assert.True(t, res.Skip)
	}
}

func TestClassifyCell_Empty(t *testing.T) {
	res, err := classifyCell("   ", 2025, fiscalpolicy.Default())
	require.NoError(t, err)
	assert.True(t, res.Skip)
}

func TestClassifyCell_RangeMarker(t *testing.T) {
	res, err := classifyCell("20日間", 2025, fiscalpolicy.Default())
	require.NoError(t, err)
	assert.True(t, res.Skip)
}

func TestClassifyCell_Expiration(t *testing.T) {
	res, err := classifyCell("2025/3/31消滅", 2025, fiscalpolicy.Default())
	require.NoError(t, err)
	assert.Equal(t, models.UsageExpired, res.Type)
	assert.True(t, res.Days.IsZero())
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), res.Date)
}

func TestClassifyCell_HalfDay(t *testing.T) {
	res, err := classifyCell("2025/4/10(半)", 2025, fiscalpolicy.Default())
	require.NoError(t, err)
	assert.Equal(t, models.UsageHalf, res.Type)
	assert.True(t, res.Days.Equal(decimal.NewFromFloat(0.5)))
}

func TestClassifyCell_HalfDay_AMPM(t *testing.T) {
	res, err := classifyCell("2025/4/10 AM", 2025, fiscalpolicy.Default())
	require.NoError(t, err)
	assert.Equal(t, models.UsageHalf, res.Type)
}

func TestClassifyCell_Hourly(t *testing.T) {
	res, err := classifyCell("2025/4/10(2h)", 2025, fiscalpolicy.Default())
	require.NoError(t, err)
	assert.Equal(t, models.UsageHourly, res.Type)
	assert.True(t, res.Days.Equal(decimal.NewFromFloat(0.25)))
}

func TestClassifyCell_PaidOut(t *testing.T) {
	res, err := classifyCell("2025/5/1(支給)", 2025, fiscalpolicy.Default())
	require.NoError(t, err)
	assert.Equal(t, models.UsagePaidOut, res.Type)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), res.Date)
}

func TestClassifyCell_FullDay(t *testing.T) {
	res, err := classifyCell("2025/6/15", 2025, fiscalpolicy.Default())
	require.NoError(t, err)
	assert.Equal(t, models.UsageFull, res.Type)
	assert.True(t, res.Days.Equal(decimal.NewFromInt(1)))
}

func TestClassifyCell_BareMonthDay_ResolvesAgainstFiscalYear(t *testing.T) {
	policy := fiscalpolicy.Default()
	res, err := classifyCell("6/15", 2025, policy)
	require.NoError(t, err)
	assert.Equal(t, policy.YearFor(res.Date), 2025)
}

func TestClassifyCell_RejectsYear1900(t *testing.T) {
	_, err := classifyCell("1900/1/1", 2025, fiscalpolicy.Default())
	assert.Error(t, err)
}

func TestClassifyCell_UnparseableDateErrors(t *testing.T) {
	_, err := classifyCell("not-a-date", 2025, fiscalpolicy.Default())
	assert.Error(t, err)
}
