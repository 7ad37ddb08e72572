package reporting

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/internal/fixture"
	"github.com/vfg2006/churn-analytics/internal/usecases/deriving"
	"github.com/vfg2006/churn-analytics/internal/usecases/scoring"
)

func enrichedSample() []domain.EnrichedRecord {
	d := deriving.New(fixture.ProcessingDate)
	raw := []domain.NormalizedRecord{
		{
			CustomerID: "C-1", SubscriptionID: "S-1", ProductName: "Standard", Country: "Egypt",
			PaymentMethod: "Credit Card", SubscriptionStatus: "active", SubscriptionType: "New",
			StartDate: fixture.Date(2023, 10, 1), ExpiryDate: fixture.Date(2024, 2, 5),
		},
		{
			CustomerID: "C-2", SubscriptionID: "S-2", ProductName: "AFCON", Country: "Morocco",
			PaymentMethod: "Voucher", SubscriptionStatus: "active", SubscriptionType: "Winback",
			InGracePeriod: true, StartDate: fixture.Date(2024, 1, 16), ExpiryDate: fixture.Date(2024, 2, 15),
		},
		{
			CustomerID: "C-2", SubscriptionID: "S-3", ProductName: "AFCON", Country: "Morocco",
			PaymentMethod: "Voucher", SubscriptionStatus: "churned", SubscriptionType: "Winback",
			ChurnType: "Voluntary", ChurnReason: "Season Ended",
			StartDate: fixture.Date(2024, 1, 10), ExpiryDate: fixture.Date(2024, 1, 20),
		},
		{
			CustomerID: "C-3", SubscriptionID: "S-4", ProductName: "Premium", Country: "Saudi Arabia",
			PaymentMethod: "Apple Pay", SubscriptionStatus: "active", PromotionFlag: true,
			StartDate: fixture.Date(2022, 6, 1), ExpiryDate: nil,
		},
		{
			CustomerID: "C-4", SubscriptionID: "S-0", ProductName: "AFCON", Country: "Morocco",
			PaymentMethod: "Voucher", SubscriptionStatus: "active", SubscriptionType: "Winback",
			InGracePeriod: true, StartDate: fixture.Date(2024, 1, 20), ExpiryDate: fixture.Date(2024, 2, 15),
		},
	}

	records := make([]domain.EnrichedRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, scoring.Enrich(d, r))
	}
	return records
}

func TestBuild(t *testing.T) {
	records := enrichedSample()
	quality := domain.QualityReport{TotalRows: 5, FieldErrors: 2}

	report, err := Build(records, quality, Options{ProcessingDate: fixture.ProcessingDate, TopN: 3})
	require.NoError(t, err)

	s := report.Summary
	assert.Equal(t, "2024-01-31", s.ProcessingDate)
	assert.Equal(t, 5, s.TotalSubscriptions)
	assert.Equal(t, 1, s.ChurnedSubscriptions)
	assert.Equal(t, 4, s.ActiveSubscriptions)
	assert.Equal(t, 0.2, s.ChurnRate)
	assert.Equal(t, 4, s.UniqueCustomers)
	assert.Equal(t, 0.2, s.PremiumShare)
	assert.Equal(t, 0.2, s.PromotionShare)
	assert.Equal(t, 0.4, s.GracePeriodShare)
	assert.Equal(t, 1, s.ExpiringSoon)
	assert.Equal(t, 3, s.HighRiskSubscriptions)
	assert.Equal(t, quality, report.Quality)

	assert.Len(t, report.Segments, len(Segments))
	for _, segment := range report.Segments {
		total := 0
		for _, row := range segment.Rows {
			total += row.Count
		}
		assert.Equal(t, len(records), total, segment.Name)
	}

	product, ok := report.Segment("product_name")
	require.True(t, ok)
	assert.Equal(t, "AFCON", product.Rows[0].Label)
	assert.InDelta(t, 1.0/3, product.Rows[0].ChurnRate, 1e-12)

	risk, ok := report.Segment("risk_category")
	require.True(t, ok)
	assert.Equal(t, "risk_score", risk.Measure)

	grace, ok := report.Segment("grace_status")
	require.True(t, ok)
	assert.Equal(t, []string{"No | No", "Yes | No"}, []string{grace.Rows[0].Label, grace.Rows[1].Label})

	require.Len(t, report.Cohorts, 3)
	assert.Equal(t, "2022-06", report.Cohorts[0].Month)
	assert.Equal(t, "2023-10", report.Cohorts[1].Month)
	assert.Equal(t, "2024-01", report.Cohorts[2].Month)
	assert.InDelta(t, 2.0/3, report.Cohorts[2].RetentionRate, 1e-12)

	shares := 0.0
	for _, b := range report.RiskDistribution {
		shares += b.Share
	}
	assert.InDelta(t, 1.0, shares, 1e-9)
	assert.Equal(t, domain.RiskLow, report.RiskDistribution[0].Category)

	require.Len(t, report.Outreach, 3)
	for _, e := range report.Outreach {
		assert.NotEqual(t, "S-3", e.SubscriptionID)
	}
}

func TestBuild_ParallelMatchesSinglePass(t *testing.T) {
	records := enrichedSample()

	single, err := Build(records, domain.QualityReport{}, Options{ProcessingDate: fixture.ProcessingDate})
	require.NoError(t, err)
	parallel, err := Build(records, domain.QualityReport{}, Options{ProcessingDate: fixture.ProcessingDate, Shards: 3})
	require.NoError(t, err)

	assert.Equal(t, single.Segments, parallel.Segments)
	assert.Equal(t, single.RiskDistribution, parallel.RiskDistribution)
}

func TestBuild_EmptyInput(t *testing.T) {
	_, err := Build(nil, domain.QualityReport{}, Options{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyGroup))
}

func TestBuildOutreach_Ordering(t *testing.T) {
	days := func(v int) *int { return &v }
	entry := func(id string, score int, expiry *int, churned bool) domain.EnrichedRecord {
		return domain.EnrichedRecord{
			NormalizedRecord: domain.NormalizedRecord{SubscriptionID: id},
			Features:         domain.Features{DaysUntilExpiry: expiry, IsChurned: churned},
			Risk:             domain.RiskScore{Total: score},
		}
	}
	records := []domain.EnrichedRecord{
		entry("d", 9, nil, false),
		entry("c", 9, days(10), false),
		entry("x", 13, days(1), true),
		entry("b", 9, days(3), false),
		entry("a", 9, days(3), false),
		entry("e", 11, days(40), false),
		entry("f", 2, days(0), false),
	}

	outreach := BuildOutreach(records, 5)

	ids := []string{}
	for _, e := range outreach {
		ids = append(ids, e.SubscriptionID)
	}
	assert.Equal(t, []string{"e", "a", "b", "c", "d"}, ids)
	assert.Len(t, BuildOutreach(records, 100), 6)
}

func TestPrint(t *testing.T) {
	records := enrichedSample()
	report, err := Build(records, domain.QualityReport{TotalRows: 1234, FilteredOlderVersion: 2}, Options{ProcessingDate: fixture.ProcessingDate})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, report))

	out := buf.String()
	assert.Contains(t, out, "CHURN ANALYSIS (2024-01-31)")
	assert.Contains(t, out, "20.00%")
	assert.Contains(t, out, "[tenure_category]")
	assert.Contains(t, out, "[outreach]")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, "Older versions filtered")
}
