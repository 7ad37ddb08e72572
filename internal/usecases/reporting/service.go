// Package reporting monta o relatório de churn a partir dos registros enriquecidos
package reporting

import (
	"fmt"
	"sort"
	"time"

	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/internal/usecases/aggregating"
	"github.com/vfg2006/churn-analytics/pkg/utils"
)

// DefaultTopN é o tamanho padrão da lista de contato
const DefaultTopN = 20

type Options struct {
	ProcessingDate time.Time
	GeneratedAt    time.Time
	TopN           int
	// Shards > 1 agrega os segmentos em paralelo
	Shards int
}

// Segments são as quebras calculadas em todo relatório
var Segments = []aggregating.Grouping{
	{Name: "product_name", Dimensions: []aggregating.Dimension{aggregating.ProductName}},
	{Name: "product_tier", Dimensions: []aggregating.Dimension{aggregating.ProductTier}},
	{Name: "country", Dimensions: []aggregating.Dimension{aggregating.Country}},
	{Name: "region", Dimensions: []aggregating.Dimension{aggregating.Region}},
	{Name: "country_tier", Dimensions: []aggregating.Dimension{aggregating.CountryTier}},
	{Name: "payment_category", Dimensions: []aggregating.Dimension{aggregating.PaymentCategory}},
	{Name: "channel_group", Dimensions: []aggregating.Dimension{aggregating.ChannelGroup}},
	{Name: "offer_period_group", Dimensions: []aggregating.Dimension{aggregating.OfferPeriodGroup}},
	{Name: "tenure_category", Dimensions: []aggregating.Dimension{aggregating.TenureCategory}, Measure: &aggregating.TenureMonths},
	{Name: "risk_category", Dimensions: []aggregating.Dimension{aggregating.RiskCategory}, Measure: &aggregating.RiskScore},
	{Name: "grace_status", Dimensions: []aggregating.Dimension{aggregating.InGracePeriod, aggregating.InGracePeriod90}},
	{Name: "winback_category", Dimensions: []aggregating.Dimension{aggregating.WinbackCategory}},
	{Name: "value_tier", Dimensions: []aggregating.Dimension{aggregating.ValueTier}},
	{Name: "churn_type_class", Dimensions: []aggregating.Dimension{aggregating.ChurnTypeClass}},
	{Name: "churn_reason_category", Dimensions: []aggregating.Dimension{aggregating.ChurnReason}},
	{Name: "subscriber_type", Dimensions: []aggregating.Dimension{aggregating.SubscriberType}},
}

var cohortGrouping = aggregating.Grouping{
	Name:       "cohort_month",
	Dimensions: []aggregating.Dimension{aggregating.CohortMonth},
	Measure:    &aggregating.TenureMonths,
}

var riskGrouping = aggregating.Grouping{
	Name:       "risk_distribution",
	Dimensions: []aggregating.Dimension{aggregating.RiskCategory},
}

// Build monta o relatório completo. Um conjunto vazio retorna EmptyGroupError.
func Build(records []domain.EnrichedRecord, quality domain.QualityReport, opts Options) (*domain.Report, error) {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}

	summary, err := buildSummary(records, opts.ProcessingDate)
	if err != nil {
		return nil, fmt.Errorf("resumo: %w", err)
	}

	report := &domain.Report{
		Summary:     summary,
		Quality:     quality,
		GeneratedAt: opts.GeneratedAt,
	}

	for _, g := range Segments {
		rows, err := groupBy(records, g, opts.Shards)
		if err != nil {
			return nil, fmt.Errorf("segmento %s: %w", g.Name, err)
		}
		segment := domain.Segment{Name: g.Name, Rows: rows}
		if g.Measure != nil {
			segment.Measure = g.Measure.Name
		}
		report.Segments = append(report.Segments, segment)
	}

	if report.Cohorts, err = buildCohorts(records, opts.Shards); err != nil {
		return nil, fmt.Errorf("coortes: %w", err)
	}

	if report.RiskDistribution, err = buildRiskDistribution(records, opts.Shards); err != nil {
		return nil, fmt.Errorf("distribuição de risco: %w", err)
	}

	report.Outreach = BuildOutreach(records, opts.TopN)

	return report, nil
}

func groupBy(records []domain.EnrichedRecord, g aggregating.Grouping, shards int) ([]domain.AggregateRow, error) {
	if shards > 1 {
		return aggregating.GroupByParallel(records, g, shards)
	}
	return aggregating.GroupBy(records, g)
}

func buildSummary(records []domain.EnrichedRecord, processingDate time.Time) (domain.Summary, error) {
	rate, err := aggregating.ChurnRate(records)
	if err != nil {
		return domain.Summary{}, err
	}

	total := float64(len(records))
	summary := domain.Summary{
		ProcessingDate:     utils.FormatDate(&processingDate),
		TotalSubscriptions: len(records),
		ChurnRate:          utils.RoundWithFourDecimalPlace(rate),
	}

	var (
		tenures   []float64
		durations []float64
		riskSum   int
		stability int
		premium   int
		promotion int
		grace     int
		customers = make(map[string]struct{})
	)

	for _, r := range records {
		f := r.Features
		if f.IsChurned {
			summary.ChurnedSubscriptions++
		}
		if f.TenureMonths != nil {
			tenures = append(tenures, *f.TenureMonths)
		}
		if f.SubscriptionDurationMonths != nil {
			durations = append(durations, *f.SubscriptionDurationMonths)
		}
		if r.Risk.IsHighRisk() {
			summary.HighRiskSubscriptions++
		}
		if f.IsExpiringSoon {
			summary.ExpiringSoon++
		}
		if r.CustomerID != "" {
			customers[r.CustomerID] = struct{}{}
		}
		if f.IsPremium {
			premium++
		}
		if f.HasPromotion {
			promotion++
		}
		if f.InGracePeriod || f.InGracePeriod90 {
			grace++
		}
		riskSum += r.Risk.Total
		stability += f.StabilityScore
	}

	summary.ActiveSubscriptions = summary.TotalSubscriptions - summary.ChurnedSubscriptions
	summary.UniqueCustomers = len(customers)
	summary.MeanTenureMonths = utils.RoundWithTwoDecimalPlace(mean(tenures))
	summary.MedianTenureMonths = utils.RoundWithTwoDecimalPlace(utils.Median(tenures))
	summary.MeanDurationMonths = utils.RoundWithTwoDecimalPlace(mean(durations))
	summary.MeanRiskScore = utils.RoundWithTwoDecimalPlace(float64(riskSum) / total)
	summary.MeanStabilityScore = utils.RoundWithTwoDecimalPlace(float64(stability) / total)
	summary.PremiumShare = utils.RoundWithFourDecimalPlace(float64(premium) / total)
	summary.PromotionShare = utils.RoundWithFourDecimalPlace(float64(promotion) / total)
	summary.GracePeriodShare = utils.RoundWithFourDecimalPlace(float64(grace) / total)

	return summary, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func buildCohorts(records []domain.EnrichedRecord, shards int) ([]domain.CohortRow, error) {
	rows, err := groupBy(records, cohortGrouping, shards)
	if err != nil {
		return nil, err
	}

	cohorts := make([]domain.CohortRow, 0, len(rows))
	for _, row := range rows {
		cohorts = append(cohorts, domain.CohortRow{
			Month:            row.Label,
			Subscriptions:    row.Count,
			Churned:          row.Churned,
			ChurnRate:        row.ChurnRate,
			RetentionRate:    1 - row.ChurnRate,
			MeanTenureMonths: row.Mean,
		})
	}
	return cohorts, nil
}

func buildRiskDistribution(records []domain.EnrichedRecord, shards int) ([]domain.RiskBucket, error) {
	rows, err := groupBy(records, riskGrouping, shards)
	if err != nil {
		return nil, err
	}

	buckets := make([]domain.RiskBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, domain.RiskBucket{
			Category:  row.Label,
			Count:     row.Count,
			Churned:   row.Churned,
			ChurnRate: row.ChurnRate,
			Share:     float64(row.Count) / float64(len(records)),
		})
	}
	return buckets, nil
}

// BuildOutreach seleciona os assinantes ativos de maior risco.
// Ordem: score desc, dias até expirar asc (ausente por último), subscription id asc.
func BuildOutreach(records []domain.EnrichedRecord, topN int) []domain.OutreachEntry {
	candidates := make([]domain.EnrichedRecord, 0, len(records))
	for _, r := range records {
		if !r.Features.IsChurned {
			candidates = append(candidates, r)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Risk.Total != b.Risk.Total {
			return a.Risk.Total > b.Risk.Total
		}
		ea, eb := a.Features.DaysUntilExpiry, b.Features.DaysUntilExpiry
		switch {
		case ea != nil && eb == nil:
			return true
		case ea == nil && eb != nil:
			return false
		case ea != nil && *ea != *eb:
			return *ea < *eb
		}
		return a.SubscriptionID < b.SubscriptionID
	})

	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	entries := make([]domain.OutreachEntry, 0, len(candidates))
	for _, r := range candidates {
		entries = append(entries, domain.OutreachEntry{
			CustomerID:      r.CustomerID,
			SubscriptionID:  r.SubscriptionID,
			ProductName:     r.ProductName,
			Country:         r.Country,
			PaymentCategory: r.Features.PaymentCategory,
			TenureCategory:  r.Features.TenureCategory,
			DaysUntilExpiry: r.Features.DaysUntilExpiry,
			RiskScore:       r.Risk.Total,
			RiskCategory:    r.Risk.Category,
		})
	}
	return entries
}
