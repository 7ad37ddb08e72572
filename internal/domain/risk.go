package domain

const (
	RiskVeryHigh = "Very High Risk"
	RiskHigh     = "High Risk"
	RiskMedium   = "Medium Risk"
	RiskLow      = "Low Risk"
)

// Limites do score composto
const (
	MinRiskScore = 1
	MaxRiskScore = 13
)

// RiskOrder é a ordem de apresentação das categorias de risco (do menor para o maior)
var RiskOrder = []string{RiskLow, RiskMedium, RiskHigh, RiskVeryHigh}

// RiskScore contém os sub-scores e o score composto de um registro
type RiskScore struct {
	TenureRisk  int    `json:"tenure_risk"`  // 0..3
	ProductRisk int    `json:"product_risk"` // 1..3
	WinbackRisk int    `json:"winback_risk"` // 0 ou 2
	PaymentRisk int    `json:"payment_risk"` // 0..2
	GraceRisk   int    `json:"grace_risk"`   // 0..3
	Total       int    `json:"risk_score"`
	Category    string `json:"risk_category"`
}

// IsHighRisk indica se o registro está em "High Risk" ou acima
func (r RiskScore) IsHighRisk() bool {
	return r.Category == RiskHigh || r.Category == RiskVeryHigh
}
