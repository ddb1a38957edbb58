package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReport(t *testing.T) {
	econ := testEconomy()
	now := at(10, 18)
	opts := ReportOptions{LookbackDays: 90, ProjectionDays: 5, RateWindowDays: 14}

	r := BuildReport(threeSnapshotDataset(), opts, now, econ)

	require.Len(t, r.History, 11)
	assert.Len(t, r.Chart, 16)
	assert.Equal(t, int64(1840), r.Outlook.Balance)
	assert.Equal(t, r.Rate, r.Outlook.Rate)
	assert.Equal(t, 4, r.Spending.Intertwined)
	assert.Equal(t, 3, r.Spending.Acquaint)
	assert.Equal(t, int64(400), r.Split.Net)
	require.Len(t, r.Monthly, 1)
	assert.Equal(t, "2025-06", r.Monthly[0].Label)
	assert.NotEmpty(t, r.Periods)
	assert.Equal(t, len(r.Periods), r.Trend.Periods)
	assert.Len(t, r.Log, 3+2+3)
	assert.Equal(t, now, r.GeneratedAt)

	again := BuildReport(threeSnapshotDataset(), opts, now, econ)
	assert.Equal(t, r, again)
}
