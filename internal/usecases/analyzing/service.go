// Package analyzing orquestra o pipeline: leitura, normalização, features, score,
// relatório, exportação e arquivamento opcional da execução.
package analyzing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc/iter"
	"golang.org/x/sync/errgroup"

	"github.com/vfg2006/churn-analytics/infrastructure/csvsource"
	"github.com/vfg2006/churn-analytics/infrastructure/exporter"
	"github.com/vfg2006/churn-analytics/infrastructure/repository"
	"github.com/vfg2006/churn-analytics/internal/config"
	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/internal/usecases/deriving"
	"github.com/vfg2006/churn-analytics/internal/usecases/normalizing"
	"github.com/vfg2006/churn-analytics/internal/usecases/reporting"
	"github.com/vfg2006/churn-analytics/internal/usecases/scoring"
	"github.com/vfg2006/churn-analytics/pkg/log"
	"github.com/vfg2006/churn-analytics/pkg/utils"
)

// Máximo de erros de campo registrados individualmente no log
const maxLoggedFieldErrors = 50

type Analyzer interface {
	Run(ctx context.Context) (*Result, error)
}

// Result é o produto de uma execução
type Result struct {
	RunID    string
	Tag      string
	Report   *domain.Report
	Records  []domain.EnrichedRecord
	Files    []string
	Previous *domain.AnalysisRunSummary
}

type Service struct {
	cfg        *config.Config
	source     csvsource.RecordSource
	runs       repository.AnalysisRunRepository
	normalizer *normalizing.Normalizer
	progress   io.Writer
	now        func() time.Time
}

func NewService(cfg *config.Config, source csvsource.RecordSource) *Service {
	return &Service{
		cfg:        cfg,
		source:     source,
		normalizer: normalizing.NewNormalizer(),
		progress:   os.Stderr,
		now:        time.Now,
	}
}

// WithArchive habilita o arquivamento da execução no banco de dados
func (s *Service) WithArchive(runs repository.AnalysisRunRepository) *Service {
	s.runs = runs
	return s
}

// WithProgressOutput define onde a barra de progresso é escrita
func (s *Service) WithProgressOutput(w io.Writer) *Service {
	s.progress = w
	return s
}

func (s *Service) Run(ctx context.Context) (*Result, error) {
	ctx, runID := log.WithRunID(ctx)
	logger := log.ForContext(ctx)
	started := s.now()

	tag, err := utils.GenerateID()
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar tag da execução: %w", err)
	}

	logger.WithFields(log.Fields{
		"input":           s.cfg.Pipeline.InputPath,
		"processing_date": utils.FormatDate(&s.cfg.Pipeline.ProcessingDate),
		"workers":         s.cfg.Pipeline.Workers,
		"tag":             tag,
	}).Info("Iniciando análise de churn")

	table, err := s.source.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler a fonte de dados: %w", err)
	}

	if err := s.normalizer.CheckSchema(table.Header); err != nil {
		logger.WithError(err).Error("Entrada sem as colunas obrigatórias")
		return nil, err
	}

	records, fieldErrors := s.normalize(ctx, table)
	quality := normalizing.Diagnose(records, fieldErrors)
	s.logQuality(logger, quality)

	if s.cfg.Pipeline.LatestVersionOnly {
		var dropped int
		records, dropped = normalizing.KeepLatestVersion(records)
		quality.FilteredOlderVersion = dropped
		logger.WithField("dropped", dropped).Info("Mantida apenas a última versão de cada assinatura")
	}

	enriched := s.enrich(records)

	report, err := reporting.Build(enriched, quality, reporting.Options{
		ProcessingDate: s.cfg.Pipeline.ProcessingDate,
		GeneratedAt:    s.now().UTC(),
		TopN:           s.cfg.Pipeline.TopN,
		Shards:         s.cfg.Pipeline.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("erro ao montar relatório: %w", err)
	}

	result := &Result{
		RunID:   runID,
		Tag:     tag,
		Report:  report,
		Records: enriched,
	}

	if result.Files, err = s.export(ctx, report, enriched); err != nil {
		return nil, err
	}

	if s.runs != nil {
		if result.Previous, err = s.archive(ctx, runID, tag, report); err != nil {
			return nil, err
		}
	}

	logger.WithFields(log.Fields{
		"rows":        len(enriched),
		"churn_rate":  report.Summary.ChurnRate,
		"high_risk":   report.Summary.HighRiskSubscriptions,
		"duration_ms": s.now().Sub(started).Milliseconds(),
	}).Info("Análise concluída")

	return result, nil
}

// normalize converte as linhas em paralelo, preservando a ordem de entrada
func (s *Service) normalize(ctx context.Context, table *domain.RawTable) ([]domain.NormalizedRecord, int) {
	logger := log.ForContext(ctx)
	bar := s.newBar(len(table.Rows), "normalizando")

	records := make([]domain.NormalizedRecord, len(table.Rows))
	errs := make([][]domain.FieldError, len(table.Rows))

	normalizer := iter.Iterator[domain.RawRecord]{MaxGoroutines: s.cfg.Pipeline.Workers}
	normalizer.ForEachIdx(table.Rows, func(i int, raw *domain.RawRecord) {
		line := i + 2
		if i < len(table.Lines) {
			line = table.Lines[i]
		}
		records[i], errs[i] = s.normalizer.Normalize(*raw, line)
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	total := 0
	for _, rowErrs := range errs {
		for i := range rowErrs {
			if total < maxLoggedFieldErrors {
				logger.WithError(&rowErrs[i]).Debug("Valor inválido tratado como ausente")
			}
			total++
		}
	}
	if total > 0 {
		logger.WithField("field_errors", total).Warn("Valores malformados encontrados na entrada")
	}

	return records, total
}

// enrich calcula features e score em paralelo, preservando a ordem de entrada
func (s *Service) enrich(records []domain.NormalizedRecord) []domain.EnrichedRecord {
	deriver := deriving.New(s.cfg.Pipeline.ProcessingDate)
	bar := s.newBar(len(records), "calculando features")

	mapper := iter.Mapper[domain.NormalizedRecord, domain.EnrichedRecord]{MaxGoroutines: s.cfg.Pipeline.Workers}
	enriched := mapper.Map(records, func(r *domain.NormalizedRecord) domain.EnrichedRecord {
		record := scoring.Enrich(deriver, *r)
		_ = bar.Add(1)
		return record
	})
	_ = bar.Finish()

	return enriched
}

func (s *Service) newBar(total int, description string) *progressbar.ProgressBar {
	if !s.cfg.Pipeline.ShowProgress || s.progress == nil {
		return progressbar.DefaultSilent(int64(total), description)
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (s *Service) logQuality(logger log.Logger, q domain.QualityReport) {
	fields := log.Fields{
		"rows":               q.TotalRows,
		"duplicate_keys":     q.DuplicateKeys,
		"duplicate_key_rows": q.DuplicateKeyRows,
		"invalid_date_order": q.InvalidDateOrder,
		"multi_version_subs": q.MultiVersionSubs,
	}
	for col, missing := range q.MissingKeyFields {
		fields["missing_"+col] = missing
	}
	if q.DuplicateKeys > 0 || q.InvalidDateOrder > 0 {
		logger.WithFields(fields).Warn("Diagnóstico de qualidade com inconsistências")
		return
	}
	logger.WithFields(fields).Info("Diagnóstico de qualidade")
}

// export grava os arquivos de saída em paralelo e retorna os caminhos gerados
func (s *Service) export(ctx context.Context, report *domain.Report, records []domain.EnrichedRecord) ([]string, error) {
	dir := s.cfg.Export.OutputDir
	files := []string{
		filepath.Join(dir, exporter.ReportFile),
		filepath.Join(dir, exporter.SegmentsFile),
		filepath.Join(dir, exporter.OutreachFile),
	}

	// Uma falha (ou ctx cancelado) impede que as gravações ainda não iniciadas comecem
	g, gctx := errgroup.WithContext(ctx)
	write := func(fn func() error) func() error {
		return func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn()
		}
	}

	g.Go(write(func() error { return exporter.WriteReportJSON(files[0], report) }))
	g.Go(write(func() error { return exporter.WriteSegmentsCSV(files[1], report.Segments) }))
	g.Go(write(func() error { return exporter.WriteOutreachCSV(files[2], report.Outreach) }))

	var enrichedPath string
	if s.cfg.Export.Enriched {
		g.Go(write(func() error {
			var err error
			enrichedPath, err = exporter.WriteEnrichedCSV(filepath.Join(dir, exporter.EnrichedFile), records, s.cfg.Export.Compress)
			return err
		}))
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("erro ao exportar resultados: %w", err)
	}
	if enrichedPath != "" {
		files = append(files, enrichedPath)
	}

	log.ForContext(ctx).WithField("files", files).Info("Resultados exportados")
	return files, nil
}

// archive grava a execução e compara com a última execução arquivada
func (s *Service) archive(ctx context.Context, runID, tag string, report *domain.Report) (*domain.AnalysisRunSummary, error) {
	logger := log.ForContext(ctx)

	if err := s.runs.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	previous, err := s.runs.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	run := &domain.AnalysisRun{
		ID:             runID,
		Tag:            tag,
		InputPath:      s.cfg.Pipeline.InputPath,
		ProcessingDate: s.cfg.Pipeline.ProcessingDate,
		Report:         report,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.runs.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("erro ao arquivar execução: %w", err)
	}

	if previous != nil {
		logger.WithFields(log.Fields{
			"previous_tag":        previous.Tag,
			"previous_date":       utils.FormatDate(&previous.ProcessingDate),
			"churn_rate_delta":    utils.RoundWithFourDecimalPlace(report.Summary.ChurnRate - previous.ChurnRate),
			"high_risk_delta":     report.Summary.HighRiskSubscriptions - previous.HighRiskCount,
			"subscriptions_delta": report.Summary.TotalSubscriptions - previous.TotalSubscriptions,
		}).Info("Comparação com a execução anterior")
	}

	logger.WithField("tag", tag).Info("Execução arquivada")
	return previous, nil
}
