package normalizing

import "github.com/vfg2006/churn-analytics/internal/domain"

// Campos-chave verificados pelo diagnóstico de ausência
var keyFields = []string{
	domain.ColCustomerID,
	domain.ColSubscriptionID,
	domain.ColSubscriptionKey,
	domain.ColStartDate,
	domain.ColExpiryDate,
}

// Diagnose calcula os contadores de qualidade sobre o conjunto normalizado.
// É somente leitura: a política de filtragem pertence a quem chama.
func Diagnose(records []domain.NormalizedRecord, fieldErrors int) domain.QualityReport {
	report := domain.QualityReport{
		TotalRows:        len(records),
		FieldErrors:      fieldErrors,
		MissingKeyFields: make(map[string]int, len(keyFields)),
	}
	for _, col := range keyFields {
		report.MissingKeyFields[col] = 0
	}

	seenKeys := make(map[int64]int)
	versionsBySubscription := make(map[string]map[int]bool)

	for _, r := range records {
		if r.CustomerID == "" {
			report.MissingKeyFields[domain.ColCustomerID]++
		}
		if r.SubscriptionID == "" {
			report.MissingKeyFields[domain.ColSubscriptionID]++
		}
		if r.SubscriptionKey == nil {
			report.MissingKeyFields[domain.ColSubscriptionKey]++
		}
		if r.StartDate == nil {
			report.MissingKeyFields[domain.ColStartDate]++
		}
		if r.ExpiryDate == nil {
			report.MissingKeyFields[domain.ColExpiryDate]++
		}

		if r.SubscriptionKey != nil {
			seenKeys[*r.SubscriptionKey]++
			if n := seenKeys[*r.SubscriptionKey]; n > 1 {
				report.DuplicateKeyRows++
				if n == 2 {
					report.DuplicateKeys++
				}
			}
		}

		if r.StartDate != nil && r.ExpiryDate != nil && r.StartDate.After(*r.ExpiryDate) {
			report.InvalidDateOrder++
		}

		if r.SubscriptionID != "" {
			versions, ok := versionsBySubscription[r.SubscriptionID]
			if !ok {
				versions = make(map[int]bool)
				versionsBySubscription[r.SubscriptionID] = versions
			}
			versions[r.Version()] = true
		}
	}

	for _, versions := range versionsBySubscription {
		if len(versions) > 1 {
			report.MultiVersionSubs++
		}
	}

	return report
}

// KeepLatestVersion mantém, para cada subscription id, apenas a linha de maior versão.
// Em empate vence a primeira ocorrência. Linhas sem subscription id são mantidas.
// A ordem relativa das linhas mantidas é preservada.
func KeepLatestVersion(records []domain.NormalizedRecord) ([]domain.NormalizedRecord, int) {
	best := make(map[string]int, len(records))
	for i, r := range records {
		if r.SubscriptionID == "" {
			continue
		}
		j, ok := best[r.SubscriptionID]
		if !ok || r.Version() > records[j].Version() {
			best[r.SubscriptionID] = i
		}
	}

	kept := make([]domain.NormalizedRecord, 0, len(best))
	for i, r := range records {
		if r.SubscriptionID == "" || best[r.SubscriptionID] == i {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}
