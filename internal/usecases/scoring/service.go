// Package scoring combina as features derivadas em um score de risco de churn
package scoring

import (
	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/internal/usecases/deriving"
)

// Limites das categorias de risco (inclusivos)
const (
	veryHighThreshold = 9
	highThreshold     = 6
	mediumThreshold   = 3
)

// Score calcula os sub-scores e o score composto. Usa apenas as features do registro.
func Score(r domain.EnrichedRecord) domain.RiskScore {
	f := r.Features

	score := domain.RiskScore{
		TenureRisk:  TenureRisk(f.TenureMonths),
		ProductRisk: productRisk(f.ProductTier),
		WinbackRisk: 2 * b2i(f.IsWinback),
		PaymentRisk: paymentRisk(f.PaymentCategory),
		GraceRisk:   2*b2i(f.InGracePeriod) + b2i(f.InGracePeriod90),
	}
	score.Total = score.TenureRisk + score.ProductRisk + score.WinbackRisk + score.PaymentRisk + score.GraceRisk
	score.Category = Categorize(score.Total)

	return score
}

// Enrich monta o registro enriquecido: features derivadas e score de risco
func Enrich(d *deriving.Deriver, r domain.NormalizedRecord) domain.EnrichedRecord {
	enriched := domain.EnrichedRecord{
		NormalizedRecord: r,
		Features:         d.Derive(r),
	}
	enriched.Risk = Score(enriched)
	return enriched
}

// Categorize converte um score composto em categoria de risco
func Categorize(total int) string {
	switch {
	case total >= veryHighThreshold:
		return domain.RiskVeryHigh
	case total >= highThreshold:
		return domain.RiskHigh
	case total >= mediumThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// TenureRisk usa limites exclusivos; tenure ausente não pontua
func TenureRisk(months *float64) int {
	if months == nil {
		return 0
	}
	switch m := *months; {
	case m < 1:
		return 3
	case m < 3:
		return 2
	case m < 6:
		return 1
	default:
		return 0
	}
}

func productRisk(tier string) int {
	switch tier {
	case domain.ProductTierEventPass:
		return 3
	case domain.ProductTierBasic:
		return 2
	default:
		return 1
	}
}

func paymentRisk(category string) int {
	switch category {
	case domain.PaymentVoucher:
		return 2
	case domain.Other:
		return 1
	default:
		return 0
	}
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
