package aggregating

import "github.com/vfg2006/churn-analytics/internal/domain"

// Rótulos das dimensões booleanas
const (
	Yes = "Yes"
	No  = "No"
)

// Field cria uma dimensão categórica simples; valor vazio vira "Unknown"
func Field(name string, value func(domain.EnrichedRecord) string) Dimension {
	return Dimension{
		Name: name,
		Value: func(r domain.EnrichedRecord) string {
			if v := value(r); v != "" {
				return v
			}
			return domain.Unknown
		},
	}
}

// Ordinal cria uma dimensão com ordem natural fixa
func Ordinal(name string, order []string, value func(domain.EnrichedRecord) string) Dimension {
	d := Field(name, value)
	d.Order = order
	return d
}

// Flag cria uma dimensão a partir de uma feature booleana
func Flag(name string, value func(domain.EnrichedRecord) bool) Dimension {
	return Dimension{
		Name:  name,
		Order: []string{No, Yes},
		Value: func(r domain.EnrichedRecord) string {
			if value(r) {
				return Yes
			}
			return No
		},
	}
}

// Dimensões usadas pelos relatórios
var (
	ProductName = Field("product_name", func(r domain.EnrichedRecord) string { return r.ProductName })
	Country     = Field("country", func(r domain.EnrichedRecord) string { return r.Country })

	ProductTier      = Field("product_tier", func(r domain.EnrichedRecord) string { return r.Features.ProductTier })
	Region           = Field("region", func(r domain.EnrichedRecord) string { return r.Features.Region })
	CountryTier      = Ordinal("country_tier", []string{domain.CountryTier1, domain.CountryTier2, domain.CountryTier3}, func(r domain.EnrichedRecord) string { return r.Features.CountryTier })
	PaymentCategory  = Field("payment_category", func(r domain.EnrichedRecord) string { return r.Features.PaymentCategory })
	ChannelGroup     = Field("channel_group", func(r domain.EnrichedRecord) string { return r.Features.ChannelGroup })
	OfferPeriodGroup = Field("offer_period_group", func(r domain.EnrichedRecord) string { return r.Features.OfferPeriodGroup })
	WinbackCategory  = Field("winback_category", func(r domain.EnrichedRecord) string { return r.Features.WinbackCategory })
	ValueTier        = Field("value_tier", func(r domain.EnrichedRecord) string { return r.Features.ValueTier })
	ChurnTypeClass   = Field("churn_type_class", func(r domain.EnrichedRecord) string { return r.Features.ChurnTypeClass })
	ChurnReason      = Field("churn_reason_category", func(r domain.EnrichedRecord) string { return r.Features.ChurnReasonCategory })
	SubscriberType   = Field("subscriber_type", func(r domain.EnrichedRecord) string { return r.Features.SubscriberType() })

	TenureCategory = Ordinal("tenure_category", domain.TenureOrder, func(r domain.EnrichedRecord) string { return r.Features.TenureCategory })
	RiskCategory   = Ordinal("risk_category", domain.RiskOrder, func(r domain.EnrichedRecord) string { return r.Risk.Category })

	InGracePeriod   = Flag("in_grace_period", func(r domain.EnrichedRecord) bool { return r.Features.InGracePeriod })
	InGracePeriod90 = Flag("in_grace_period_90", func(r domain.EnrichedRecord) bool { return r.Features.InGracePeriod90 })

	CohortMonth = Dimension{
		Name:          "cohort_month",
		Chronological: true,
		Value:         func(r domain.EnrichedRecord) string { return r.Features.CohortMonth },
	}
)

// Medidas usadas pelos relatórios
var (
	TenureMonths = Measure{Name: "tenure_months", Value: func(r domain.EnrichedRecord) *float64 { return r.Features.TenureMonths }}
	RiskScore    = Measure{Name: "risk_score", Value: func(r domain.EnrichedRecord) *float64 {
		v := float64(r.Risk.Total)
		return &v
	}}
)
