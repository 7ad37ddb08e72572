package repository

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/churn-analytics/internal/domain"
)

func sampleRun(segmentRows int) *domain.AnalysisRun {
	mean := 2.5
	days := 4

	rows := make([]domain.AggregateRow, 0, segmentRows)
	for i := 0; i < segmentRows; i++ {
		rows = append(rows, domain.AggregateRow{Label: "row", Count: 2, Churned: 1, ChurnRate: 0.5})
	}
	rows[0].Mean = &mean

	return &domain.AnalysisRun{
		ID:             "run-1",
		Tag:            "AbCd1234",
		InputPath:      "data/subscriptions.csv",
		ProcessingDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		CreatedAt:      time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC),
		Report: &domain.Report{
			Summary:  domain.Summary{TotalSubscriptions: 10, ChurnRate: 0.3, HighRiskSubscriptions: 4},
			Segments: []domain.Segment{{Name: "product_name", Rows: rows}},
			Outreach: []domain.OutreachEntry{
				{CustomerID: "C-1", SubscriptionID: "S-1", RiskScore: 12, RiskCategory: domain.RiskVeryHigh, DaysUntilExpiry: &days},
				{CustomerID: "C-2", SubscriptionID: "S-2", RiskScore: 9, RiskCategory: domain.RiskVeryHigh},
			},
		},
	}
}

func TestSaveRunQueries_Postgres(t *testing.T) {
	queries, err := saveRunQueries(sampleRun(3), squirrel.Dollar)
	require.NoError(t, err)
	require.Len(t, queries, 3)

	runSQL, runArgs, err := queries[0].ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(runSQL, "INSERT INTO analysis_runs"))
	assert.Contains(t, runSQL, "$9")
	assert.Equal(t, "run-1", runArgs[0])
	assert.Equal(t, "2024-01-31", runArgs[3])
	assert.Equal(t, 10, runArgs[4])
	assert.Contains(t, runArgs[7], `"total_subscriptions":10`)

	segSQL, segArgs, err := queries[1].ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(segSQL, "INSERT INTO analysis_segments"))
	assert.Len(t, segArgs, 3*8)
	assert.Equal(t, sql.NullFloat64{Float64: 2.5, Valid: true}, segArgs[7])
	assert.Equal(t, sql.NullFloat64{}, segArgs[15])

	_, outArgs, err := queries[2].ToSql()
	require.NoError(t, err)
	assert.Len(t, outArgs, 2*8)
	assert.Equal(t, 1, outArgs[2])
	assert.Equal(t, sql.NullInt64{Int64: 4, Valid: true}, outArgs[7])
	assert.Equal(t, sql.NullInt64{}, outArgs[15])
}

func TestSaveRunQueries_MySQLBatches(t *testing.T) {
	queries, err := saveRunQueries(sampleRun(batchSize+1), squirrel.Question)
	require.NoError(t, err)

	// execução + 2 lotes de segmentos + lista de contato
	require.Len(t, queries, 4)
	segSQL, segArgs, err := queries[2].ToSql()
	require.NoError(t, err)
	assert.NotContains(t, segSQL, "$1")
	assert.Contains(t, segSQL, "?")
	assert.Len(t, segArgs, 8)
}

func TestLatestRunQuery(t *testing.T) {
	query, args, err := latestRunQuery(squirrel.Dollar).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, tag, processing_date, total_subscriptions, churn_rate, high_risk_count, created_at FROM analysis_runs ORDER BY created_at DESC LIMIT 1", query)
	assert.Empty(t, args)
}
