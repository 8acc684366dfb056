package aml_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/regulus-console/aml"
	"github.com/jrsteele09/regulus-console/api"
	"github.com/stretchr/testify/require"
)

func at(t time.Time) api.Timestamp {
	return api.Timestamp{Time: t}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 5, 10, 15, 0, 0, 0, time.UTC)
	today := now.Add(-2 * time.Hour)
	yesterday := now.AddDate(0, 0, -1)
	lastMonth := now.AddDate(0, -1, 0)

	summary := aml.Summarize(now,
		[]aml.Transaction{{Date: at(today)}, {Date: at(today)}, {Date: at(yesterday)}, {Date: at(lastMonth)}, {}},
		[]aml.Alert{{TriggeredDate: at(today)}, {TriggeredDate: at(now.AddDate(0, 0, -6))}},
		[]aml.CaseListItem{
			{ScorePercentage: 10, OpenedDate: at(today)},
			{ScorePercentage: 19.9},
			{ScorePercentage: 20},
			{ScorePercentage: 75, OpenedDate: at(yesterday)},
			{ScorePercentage: 99},
		},
	)

	require.Equal(t, 2, summary.TransactionsToday)
	require.Equal(t, 1, summary.AlertsToday)
	require.Equal(t, 2, summary.FalsePositives)
	require.Equal(t, 2, summary.HighConfidence)

	require.Len(t, summary.Trend, 7)
	first, last := summary.Trend[0], summary.Trend[6]
	require.True(t, first.Day.Equal(time.Date(2025, 5, 4, 0, 0, 0, 0, time.UTC)))
	require.True(t, last.Day.Equal(time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, 1, first.Alerts)
	require.Equal(t, 2, last.Transactions)
	require.Equal(t, 1, last.Cases)
	require.Equal(t, 1, summary.Trend[5].Transactions)
	require.Equal(t, 1, summary.Trend[5].Cases)
}
