package domain

import "time"

// AnalysisRun representa uma execução arquivada do pipeline
type AnalysisRun struct {
	ID             string    `json:"id"`
	Tag            string    `json:"tag"` // Identificador curto para logs e consultas manuais
	InputPath      string    `json:"input_path"`
	ProcessingDate time.Time `json:"processing_date"`
	Report         *Report   `json:"report,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AnalysisRunSummary é a visão resumida de uma execução já arquivada
type AnalysisRunSummary struct {
	ID                 string    `json:"id"`
	Tag                string    `json:"tag"`
	ProcessingDate     time.Time `json:"processing_date"`
	TotalSubscriptions int       `json:"total_subscriptions"`
	ChurnRate          float64   `json:"churn_rate"`
	HighRiskCount      int       `json:"high_risk_count"`
	CreatedAt          time.Time `json:"created_at"`
}
