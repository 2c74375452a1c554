package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/clock"
	"github.com/zgpcy/cloudmatrix-cost-collector/internal/provider"
)

func fixedClock(t time.Time) clock.Clock {
	return clock.Func(func() time.Time { return t })
}

func TestNew_BuildsRecord(t *testing.T) {
	at := time.Date(2026, time.October, 16, 13, 45, 30, 123456789, time.UTC)
	summary := &provider.CostSummary{
		Provider:  provider.ProviderMagalu,
		TotalCost: "10.00",
		Currency:  "BRL",
		Summary:   "Magalu Cloud Monthly Cost (Month-to-Date): 10.00 BRL",
		RawData:   map[string]any{"total_cost": json.Number("10"), "currency": "BRL"},
	}

	r, err := New(fixedClock(at), summary)
	require.NoError(t, err)

	assert.Equal(t, "2026-10-16T13:45:30.123456789Z", r.ReportDate)
	assert.Equal(t, "MAGALU", r.CloudProvider)
	assert.Equal(t, "MonthlyCostToDate", r.ReportType)
	assert.Equal(t, "2026-10", r.ReportPeriod)
	assert.Equal(t, summary.Summary, r.Summary)
	assert.JSONEq(t, `{"total_cost": 10, "currency": "BRL"}`, r.RawData)
}

func TestNew_PeriodUsesUTC(t *testing.T) {
	// 23:30 on Oct 31 in UTC-3 is already November in UTC
	loc := time.FixedZone("BRT", -3*60*60)
	at := time.Date(2026, time.October, 31, 23, 30, 0, 0, loc)

	r, err := New(fixedClock(at), &provider.CostSummary{Provider: provider.ProviderGCP})
	require.NoError(t, err)

	assert.Equal(t, "2026-11", r.ReportPeriod)
	assert.Equal(t, "2026-11-01T02:30:00.000000000Z", r.ReportDate)
}

func TestNew_NilRawDataEncodesEmptyObject(t *testing.T) {
	r, err := New(clock.RealClock{}, &provider.CostSummary{Provider: provider.ProviderGCP})
	require.NoError(t, err)
	assert.Equal(t, "{}", r.RawData)
}

func TestNew_ErrorPayload(t *testing.T) {
	r, err := New(clock.RealClock{}, &provider.CostSummary{
		Provider: provider.ProviderGCP,
		Summary:  "Billing not enabled for this project.",
		RawData:  map[string]any{"error": "Billing not enabled for this project."},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error": "Billing not enabled for this project."}`, r.RawData)
}

func TestNew_RequiresSummary(t *testing.T) {
	_, err := New(clock.RealClock{}, nil)
	require.Error(t, err)
}

func TestNew_DistinctDatesWithinMonth(t *testing.T) {
	first := time.Date(2026, time.October, 1, 8, 0, 0, 0, time.UTC)
	second := first.Add(time.Millisecond)
	summary := &provider.CostSummary{Provider: provider.ProviderGCP}

	a, err := New(fixedClock(first), summary)
	require.NoError(t, err)
	b, err := New(fixedClock(second), summary)
	require.NoError(t, err)

	assert.Equal(t, a.ReportPeriod, b.ReportPeriod)
	assert.NotEqual(t, a.ReportDate, b.ReportDate)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&CostReport{ReportPeriod: "2026-10"}).Validate())
	assert.Error(t, (&CostReport{ReportDate: "2026-10-16T00:00:00Z"}).Validate())
	assert.NoError(t, (&CostReport{ReportDate: "2026-10-16T00:00:00Z", ReportPeriod: "2026-10"}).Validate())
}

func TestNew_DatesSortInTimeOrder(t *testing.T) {
	base := time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
	offsets := []time.Duration{
		0,
		100 * time.Millisecond,
		120 * time.Millisecond,
		time.Second,
	}
	summary := &provider.CostSummary{Provider: provider.ProviderGCP}

	var dates []string
	for _, off := range offsets {
		r, err := New(fixedClock(base.Add(off)), summary)
		require.NoError(t, err)
		assert.Len(t, r.ReportDate, len("2026-10-16T09:00:00.000000000Z"))
		dates = append(dates, r.ReportDate)
	}

	for i := 1; i < len(dates); i++ {
		assert.Less(t, dates[i-1], dates[i])
	}
	assert.Equal(t, "2026-10-16T09:00:00.100000000Z", dates[1])
}
