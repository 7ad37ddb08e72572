package domain

// AggregateRow é uma linha de agregação para um valor (ou combinação de valores) da chave de agrupamento
type AggregateRow struct {
	Key          []string `json:"key"`
	Label        string   `json:"label"`
	Count        int      `json:"count"`
	Churned      int      `json:"churned"`
	ChurnRate    float64  `json:"churn_rate"`
	Mean         *float64 `json:"mean,omitempty"`
	MeasureCount int      `json:"measure_count,omitempty"`
}

// CohortRow é uma linha da tabela de coortes mensais (mês de início da assinatura)
type CohortRow struct {
	Month            string   `json:"month"` // Formato yyyy-mm
	Subscriptions    int      `json:"subscriptions"`
	Churned          int      `json:"churned"`
	ChurnRate        float64  `json:"churn_rate"`
	RetentionRate    float64  `json:"retention_rate"`
	MeanTenureMonths *float64 `json:"mean_tenure_months,omitempty"`
}

// Segment é uma quebra nomeada (ex: por produto, por país)
type Segment struct {
	Name    string         `json:"name"`
	Measure string         `json:"measure,omitempty"`
	Rows    []AggregateRow `json:"rows"`
}
