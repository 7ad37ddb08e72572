package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/vfg2006/churn-analytics/infrastructure/database"
	"github.com/vfg2006/churn-analytics/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	runsTable     = "analysis_runs"
	segmentsTable = "analysis_segments"
	outreachTable = "analysis_outreach"
)

// Linhas por INSERT em lote
const batchSize = 200

var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id VARCHAR(36) PRIMARY KEY,
		tag VARCHAR(16) NOT NULL,
		input_path TEXT NOT NULL,
		processing_date DATE NOT NULL,
		total_subscriptions INTEGER NOT NULL,
		churn_rate DOUBLE PRECISION NOT NULL,
		high_risk_count INTEGER NOT NULL,
		report TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_segments (
		id VARCHAR(36) PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		segment VARCHAR(64) NOT NULL,
		label VARCHAR(255) NOT NULL,
		subscriptions INTEGER NOT NULL,
		churned INTEGER NOT NULL,
		churn_rate DOUBLE PRECISION NOT NULL,
		mean_value DOUBLE PRECISION NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_outreach (
		id VARCHAR(36) PRIMARY KEY,
		run_id VARCHAR(36) NOT NULL,
		priority INTEGER NOT NULL,
		customer_id VARCHAR(64) NOT NULL,
		subscription_id VARCHAR(64) NOT NULL,
		risk_score INTEGER NOT NULL,
		risk_category VARCHAR(32) NOT NULL,
		days_until_expiry INTEGER NULL
	)`,
}

//go:generate mockgen -source=analysis_run.go -destination=mocks/analysis_run_mock.go -package=mocks

// AnalysisRunRepository arquiva execuções do pipeline para comparação entre rodadas
type AnalysisRunRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, run *domain.AnalysisRun) error
	LatestRun(ctx context.Context) (*domain.AnalysisRunSummary, error)
}

type analysisRunRepository struct {
	conn database.Conn
}

func NewAnalysisRunRepository(conn database.Conn) AnalysisRunRepository {
	return &analysisRunRepository{
		conn: conn,
	}
}

func (r *analysisRunRepository) EnsureSchema(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := r.conn.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("erro ao criar tabelas de arquivamento: %w", err)
		}
	}
	return nil
}

func (r *analysisRunRepository) SaveRun(ctx context.Context, run *domain.AnalysisRun) error {
	if run == nil || run.Report == nil {
		return errors.New("execução sem relatório não pode ser arquivada")
	}

	queries, err := saveRunQueries(run, r.conn.Placeholder())
	if err != nil {
		return err
	}

	return r.conn.RunInTransaction(ctx, func(q database.Queryer) error {
		for _, query := range queries {
			sqlQuery, args, err := query.ToSql()
			if err != nil {
				return fmt.Errorf("erro ao construir a query: %w", err)
			}
			if _, err := q.Exec(ctx, sqlQuery, args...); err != nil {
				var pqErr *pq.Error
				if errors.As(err, &pqErr) {
					return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
				}
				return fmt.Errorf("erro ao executar a query: %w", err)
			}
		}
		return nil
	})
}

func (r *analysisRunRepository) LatestRun(ctx context.Context) (*domain.AnalysisRunSummary, error) {
	query, args, err := latestRunQuery(r.conn.Placeholder()).ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	summary := &domain.AnalysisRunSummary{}
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&summary.ID,
		&summary.Tag,
		&summary.ProcessingDate,
		&summary.TotalSubscriptions,
		&summary.ChurnRate,
		&summary.HighRiskCount,
		&summary.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao buscar última execução: %w", err)
	}

	return summary, nil
}

func latestRunQuery(placeholder squirrel.PlaceholderFormat) squirrel.SelectBuilder {
	return squirrel.
		Select("id", "tag", "processing_date", "total_subscriptions", "churn_rate", "high_risk_count", "created_at").
		From(runsTable).
		OrderBy("created_at DESC").
		Limit(1).
		PlaceholderFormat(placeholder)
}

// saveRunQueries monta os INSERTs da execução, dos segmentos e da lista de contato
func saveRunQueries(run *domain.AnalysisRun, placeholder squirrel.PlaceholderFormat) ([]squirrel.InsertBuilder, error) {
	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar relatório para JSON: %w", err)
	}

	summary := run.Report.Summary
	queries := []squirrel.InsertBuilder{
		squirrel.
			Insert(runsTable).
			Columns("id", "tag", "input_path", "processing_date", "total_subscriptions", "churn_rate", "high_risk_count", "report", "created_at").
			Values(
				run.ID,
				run.Tag,
				run.InputPath,
				run.ProcessingDate.Format(time.DateOnly),
				summary.TotalSubscriptions,
				summary.ChurnRate,
				summary.HighRiskSubscriptions,
				string(reportJSON),
				run.CreatedAt.UTC(),
			).
			PlaceholderFormat(placeholder),
	}

	var segmentValues [][]any
	for _, segment := range run.Report.Segments {
		for _, row := range segment.Rows {
			segmentValues = append(segmentValues, []any{
				uuid.NewString(), run.ID, segment.Name, row.Label, row.Count, row.Churned, row.ChurnRate, nullFloat(row.Mean),
			})
		}
	}
	queries = append(queries, batches(
		segmentsTable,
		[]string{"id", "run_id", "segment", "label", "subscriptions", "churned", "churn_rate", "mean_value"},
		segmentValues,
		placeholder,
	)...)

	var outreachValues [][]any
	for i, entry := range run.Report.Outreach {
		outreachValues = append(outreachValues, []any{
			uuid.NewString(), run.ID, i + 1, entry.CustomerID, entry.SubscriptionID, entry.RiskScore, entry.RiskCategory, nullInt(entry.DaysUntilExpiry),
		})
	}
	queries = append(queries, batches(
		outreachTable,
		[]string{"id", "run_id", "priority", "customer_id", "subscription_id", "risk_score", "risk_category", "days_until_expiry"},
		outreachValues,
		placeholder,
	)...)

	return queries, nil
}

func batches(table string, columns []string, values [][]any, placeholder squirrel.PlaceholderFormat) []squirrel.InsertBuilder {
	var out []squirrel.InsertBuilder
	for start := 0; start < len(values); start += batchSize {
		end := min(start+batchSize, len(values))
		insert := squirrel.Insert(table).Columns(columns...).PlaceholderFormat(placeholder)
		for _, v := range values[start:end] {
			insert = insert.Values(v...)
		}
		out = append(out, insert)
	}
	return out
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
