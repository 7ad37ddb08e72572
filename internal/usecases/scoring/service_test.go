package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/internal/fixture"
	"github.com/vfg2006/churn-analytics/internal/usecases/deriving"
)

func months(v float64) *float64 {
	return &v
}

func TestScore_HighRiskExample(t *testing.T) {
	r := domain.EnrichedRecord{Features: domain.Features{
		TenureMonths:    months(0.5),
		ProductTier:     domain.ProductTierEventPass,
		IsEventPass:     true,
		IsWinback:       true,
		PaymentCategory: domain.PaymentVoucher,
		InGracePeriod:   true,
	}}

	score := Score(r)

	assert.Equal(t, domain.RiskScore{
		TenureRisk:  3,
		ProductRisk: 3,
		WinbackRisk: 2,
		PaymentRisk: 2,
		GraceRisk:   2,
		Total:       12,
		Category:    domain.RiskVeryHigh,
	}, score)
	assert.True(t, score.IsHighRisk())
}

func TestScore_LowestRisk(t *testing.T) {
	r := domain.EnrichedRecord{Features: domain.Features{
		TenureMonths:    months(24),
		ProductTier:     domain.ProductTierPremium,
		PaymentCategory: domain.PaymentCard,
	}}

	score := Score(r)

	assert.Equal(t, domain.MinRiskScore, score.Total)
	assert.Equal(t, domain.RiskLow, score.Category)
	assert.False(t, score.IsHighRisk())
}

func TestCategorize_Boundaries(t *testing.T) {
	tests := []struct {
		total int
		want  string
	}{
		{total: 13, want: domain.RiskVeryHigh},
		{total: 9, want: domain.RiskVeryHigh},
		{total: 8, want: domain.RiskHigh},
		{total: 6, want: domain.RiskHigh},
		{total: 5, want: domain.RiskMedium},
		{total: 3, want: domain.RiskMedium},
		{total: 2, want: domain.RiskLow},
		{total: 1, want: domain.RiskLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Categorize(tt.total), "total %d", tt.total)
	}
}

func TestTenureRisk_Boundaries(t *testing.T) {
	assert.Equal(t, 3, TenureRisk(months(0.99)))
	assert.Equal(t, 2, TenureRisk(months(1.0)))
	assert.Equal(t, 2, TenureRisk(months(2.99)))
	assert.Equal(t, 1, TenureRisk(months(3.0)))
	assert.Equal(t, 0, TenureRisk(months(6.0)))
	assert.Equal(t, 0, TenureRisk(nil))

	// No limite de 1 mês a categoria ainda é "New" mas o risco já é o de 1-3 meses
	assert.Equal(t, domain.TenureNew, deriving.TenureCategory(months(1.0)))
}

func TestScore_RangeOverAllCombinations(t *testing.T) {
	tenures := []*float64{nil, months(0), months(0.5), months(1), months(2), months(4), months(7), months(30)}
	tiers := []string{domain.ProductTierPremium, domain.ProductTierStandard, domain.ProductTierBasic, domain.ProductTierEventPass, domain.Other}
	payments := []string{domain.PaymentCard, domain.PaymentVoucher, domain.PaymentDigitalWallet, domain.Other}
	bools := []bool{false, true}

	seen := map[int]bool{}
	for _, tenure := range tenures {
		for _, tier := range tiers {
			for _, payment := range payments {
				for _, winback := range bools {
					for _, grace := range bools {
						for _, grace90 := range bools {
							score := Score(domain.EnrichedRecord{Features: domain.Features{
								TenureMonths:    tenure,
								ProductTier:     tier,
								PaymentCategory: payment,
								IsWinback:       winback,
								InGracePeriod:   grace,
								InGracePeriod90: grace90,
							}})

							assert.GreaterOrEqual(t, score.Total, domain.MinRiskScore)
							assert.LessOrEqual(t, score.Total, domain.MaxRiskScore)
							assert.Equal(t, Categorize(score.Total), score.Category)
							seen[score.Total] = true
						}
					}
				}
			}
		}
	}

	for total := domain.MinRiskScore; total <= domain.MaxRiskScore; total++ {
		assert.True(t, seen[total], "score %d nunca foi produzido", total)
	}
}

func TestEnrich(t *testing.T) {
	d := deriving.New(fixture.ProcessingDate)
	r := domain.NormalizedRecord{
		SubscriptionID:     "S-9",
		ProductName:        "Mobile",
		PaymentMethod:      "Bank Transfer",
		SubscriptionStatus: "churned",
		StartDate:          fixture.Date(2024, 1, 1),
	}

	enriched := Enrich(d, r)

	assert.Equal(t, r, enriched.NormalizedRecord)
	assert.True(t, enriched.Features.IsChurned)
	// tenure 30 dias (3) + Mobile (2) + pagamento Other (1)
	assert.Equal(t, 6, enriched.Risk.Total)
	assert.Equal(t, domain.RiskHigh, enriched.Risk.Category)
}
