// Package fixture monta registros de assinatura para os testes dos pacotes do pipeline
package fixture

import (
	"strconv"
	"strings"
	"time"

	"github.com/vfg2006/churn-analytics/internal/domain"
)

// ProcessingDate é a data de processamento padrão dos testes
var ProcessingDate = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

// Serial retorna a data serial (dias desde 1899-12-30) como texto
func Serial(t time.Time) string {
	epoch := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	days := int(t.Sub(epoch).Hours() / 24)
	return strconv.Itoa(days)
}

// Header retorna todas as colunas obrigatórias e opcionais
func Header() []string {
	header := append([]string{}, domain.RequiredColumns...)
	return append(header, domain.OptionalColumns...)
}

// RawRow retorna uma linha bruta válida de um assinante ativo, com overrides aplicados
func RawRow(overrides map[string]string) domain.RawRecord {
	row := domain.RawRecord{
		domain.ColCustomerID:             "C-1",
		domain.ColSubscriptionID:         "S-1",
		domain.ColSubscriptionKey:        "1001",
		domain.ColSubscriptionVersion:    "1",
		domain.ColProductName:            "Standard",
		domain.ColCountry:                "Egypt",
		domain.ColOfferPeriod:            "1 Month",
		domain.ColOfferType:              "Full Price",
		domain.ColPaymentMethod:          "Credit Card",
		domain.ColSubscriptionStatus:     "active",
		domain.ColSubscriptionType:       "New",
		domain.ColSubscriptionDetailType: "",
		domain.ColWinbackType:            "",
		domain.ColChurnType:              "",
		domain.ColChurnReason:            "",
		domain.ColAcquisitionChannel:     "Web",
		domain.ColSourceSystem:           "Direct",
		domain.ColPartnerName:            "",
		domain.ColTier:                   "T2",
		domain.ColDirectIndirect:         "Direct",
		domain.ColD2CB2B:                 "D2C",
		domain.ColStartDate:              Serial(time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)),
		domain.ColExpiryDate:             Serial(time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)),
		domain.ColCancellationDate:       "",
		domain.ColGraceCalendarDate:      "",
		domain.ColGraceExpiryDate:        "",
		domain.ColGrace90CalendarDate:    "",
		domain.ColGrace90ExpiryDate:      "",
		domain.ColInGracePeriod:          "0",
		domain.ColInGracePeriod90:        "0",
		domain.ColPromotionFlag:          "0",
		domain.ColIsLatestVersion:        "1",
		domain.ColIsDailyWeekly:          "0",
		domain.ColCouponCode:             "",
		domain.ColCampaignName:           "",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

// CSV monta um arquivo CSV com o cabeçalho completo e as linhas informadas
func CSV(rows ...domain.RawRecord) string {
	header := Header()
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteString("\n")
	for _, row := range rows {
		values := make([]string, len(header))
		for i, col := range header {
			values[i] = row[col]
		}
		b.WriteString(strings.Join(values, ","))
		b.WriteString("\n")
	}
	return b.String()
}

// Date retorna um ponteiro para a data em UTC
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

// Int retorna um ponteiro para o inteiro
func Int(v int) *int {
	return &v
}

// Int64 retorna um ponteiro para o inteiro
func Int64(v int64) *int64 {
	return &v
}
