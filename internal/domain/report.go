package domain

import "time"

// QualityReport contém os diagnósticos calculados sobre o conjunto normalizado.
// Nenhuma linha é descartada com base nele.
type QualityReport struct {
	TotalRows            int            `json:"total_rows"`
	FieldErrors          int            `json:"field_errors"`
	DuplicateKeyRows     int            `json:"duplicate_key_rows"`
	DuplicateKeys        int            `json:"duplicate_keys"`
	MissingKeyFields     map[string]int `json:"missing_key_fields"`
	InvalidDateOrder     int            `json:"invalid_date_order"`
	MultiVersionSubs     int            `json:"multi_version_subscriptions"`
	FilteredOlderVersion int            `json:"filtered_older_versions"`
}

// Summary contém as estatísticas descritivas gerais
type Summary struct {
	ProcessingDate        string  `json:"processing_date"`
	TotalSubscriptions    int     `json:"total_subscriptions"`
	ChurnedSubscriptions  int     `json:"churned_subscriptions"`
	ActiveSubscriptions   int     `json:"active_subscriptions"`
	ChurnRate             float64 `json:"churn_rate"`
	MeanTenureMonths      float64 `json:"mean_tenure_months"`
	MedianTenureMonths    float64 `json:"median_tenure_months"`
	MeanRiskScore         float64 `json:"mean_risk_score"`
	HighRiskSubscriptions int     `json:"high_risk_subscriptions"`
	ExpiringSoon          int     `json:"expiring_soon"`
	UniqueCustomers       int     `json:"unique_customers"`
	MeanStabilityScore    float64 `json:"mean_stability_score"`
	PremiumShare          float64 `json:"premium_share"`
	PromotionShare        float64 `json:"promotion_share"`
	GracePeriodShare      float64 `json:"grace_period_share"`
	MeanDurationMonths    float64 `json:"mean_duration_months"`
}

// RiskBucket resume uma categoria de risco
type RiskBucket struct {
	Category  string  `json:"category"`
	Count     int     `json:"count"`
	Churned   int     `json:"churned"`
	ChurnRate float64 `json:"churn_rate"`
	Share     float64 `json:"share"`
}

// OutreachEntry é um assinante ativo priorizado para ações de retenção
type OutreachEntry struct {
	CustomerID      string `json:"customer_id"`
	SubscriptionID  string `json:"subscription_id"`
	ProductName     string `json:"product_name"`
	Country         string `json:"country"`
	PaymentCategory string `json:"payment_category"`
	TenureCategory  string `json:"tenure_category"`
	DaysUntilExpiry *int   `json:"days_until_expiry"`
	RiskScore       int    `json:"risk_score"`
	RiskCategory    string `json:"risk_category"`
}

// Report é o resultado completo de uma análise
type Report struct {
	Summary          Summary         `json:"summary"`
	Segments         []Segment       `json:"segments"`
	Cohorts          []CohortRow     `json:"cohorts"`
	RiskDistribution []RiskBucket    `json:"risk_distribution"`
	Outreach         []OutreachEntry `json:"outreach"`
	Quality          QualityReport   `json:"quality"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// Segment retorna o segmento pelo nome
func (r *Report) Segment(name string) (Segment, bool) {
	for _, s := range r.Segments {
		if s.Name == name {
			return s, true
		}
	}
	return Segment{}, false
}
