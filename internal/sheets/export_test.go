package sheets

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkearns/pay-the-piper/internal/model"
	"github.com/pkearns/pay-the-piper/internal/payperiod"
	"github.com/pkearns/pay-the-piper/internal/report"
	"github.com/pkearns/pay-the-piper/internal/service"
)

// Drives a ReportWriter with real aggregation output, the way the export
// command does.
func TestWriterReceivesAggregatedReport(t *testing.T) {
	txns := []model.Transaction{
		// March 2025 period: [Feb 26, Mar 26)
		{ID: "1", Date: time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), Amount: 2000, Bank: "chase-checking", Type: model.TypeIncome},
		{ID: "2", Date: time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC), Amount: -500, Bank: "amex", Category: "Groceries", Type: model.TypeExpense},
		// April 2025 period: expense only, no income
		{ID: "3", Date: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC), Amount: -50, Bank: "amex", Category: "Dining Out", Type: model.TypeExpense},
	}

	sched, err := payperiod.ScheduleFor(txns)
	require.NoError(t, err)

	cfg := report.DefaultConfig()
	byPeriod, unassigned := sched.Partition(txns)
	require.Empty(t, unassigned)

	var summaries []model.PeriodSummary
	for _, period := range sched.Periods() {
		if periodTxns, ok := byPeriod[period.Key()]; ok {
			summaries = append(summaries, cfg.Summarize(period, periodTxns))
		}
	}
	series := cfg.SavingsSeries(sched, txns)

	var writer service.ReportWriter = NewMockWriter()
	require.NoError(t, writer.Write(context.Background(), summaries, series))

	mock := writer.(*MockWriter)
	calls := mock.GetWriteCalls()
	require.Len(t, calls, 1)

	require.Len(t, calls[0].Summaries, 2)
	assert.Equal(t, "March 2025", calls[0].Summaries[0].Period.Label())
	assert.Equal(t, 2000.0, calls[0].Summaries[0].Income)
	assert.Equal(t, 500.0, calls[0].Summaries[0].ByCategory["Groceries"])

	// Series rows are newest first, so the zero-income April period leads.
	require.Len(t, calls[0].Series, 2)
	assert.True(t, math.IsNaN(calls[0].Series[0].SavingsPct), "zero-income period carries the NaN sentinel")
	assert.Equal(t, 75.0, calls[0].Series[1].SavingsPct)
}

func TestWriterErrorSurfacesToExport(t *testing.T) {
	mock := NewMockWriter()
	mock.SetWriteError(fmt.Errorf("quota exceeded"))

	var writer service.ReportWriter = mock
	err := writer.Write(context.Background(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Empty(t, mock.GetWriteCalls())
}
