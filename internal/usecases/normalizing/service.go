// Package normalizing converte linhas brutas da exportação em registros tipados
package normalizing

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vfg2006/churn-analytics/internal/domain"
)

// Dia 0 das datas seriais (mesma época das planilhas)
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Valores de texto tratados como ausentes
var missingTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"NaN":  true,
	"null": true,
	"NULL": true,
	"None": true,
	"N/A":  true,
}

type Normalizer struct {
	required []string
}

func NewNormalizer() *Normalizer {
	return &Normalizer{required: domain.RequiredColumns}
}

// CheckSchema valida o cabeçalho antes de qualquer processamento por linha
func (n *Normalizer) CheckSchema(header []string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}

	var missing []string
	for _, col := range n.required {
		if !present[col] {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return &domain.SchemaError{Missing: missing}
	}
	return nil
}

// Normalize converte uma linha bruta. Valores malformados viram ausentes e são
// reportados como FieldError; a linha nunca é descartada.
func (n *Normalizer) Normalize(raw domain.RawRecord, line int) (domain.NormalizedRecord, []domain.FieldError) {
	p := &rowParser{raw: raw, line: line}

	rec := domain.NormalizedRecord{
		Line: line,

		CustomerID:          p.text(domain.ColCustomerID),
		SubscriptionID:      p.text(domain.ColSubscriptionID),
		SubscriptionKey:     p.integer64(domain.ColSubscriptionKey),
		SubscriptionVersion: p.integer(domain.ColSubscriptionVersion),

		ProductName:            p.text(domain.ColProductName),
		Country:                p.text(domain.ColCountry),
		OfferPeriod:            p.text(domain.ColOfferPeriod),
		OfferType:              p.text(domain.ColOfferType),
		PaymentMethod:          p.text(domain.ColPaymentMethod),
		SubscriptionStatus:     p.text(domain.ColSubscriptionStatus),
		SubscriptionType:       p.text(domain.ColSubscriptionType),
		SubscriptionDetailType: p.text(domain.ColSubscriptionDetailType),
		WinbackType:            p.text(domain.ColWinbackType),
		ChurnType:              p.text(domain.ColChurnType),
		ChurnReason:            p.text(domain.ColChurnReason),
		AcquisitionChannel:     p.text(domain.ColAcquisitionChannel),
		SourceSystem:           p.text(domain.ColSourceSystem),
		PartnerName:            p.text(domain.ColPartnerName),
		Tier:                   p.text(domain.ColTier),
		DirectIndirect:         p.text(domain.ColDirectIndirect),
		D2CB2B:                 p.text(domain.ColD2CB2B),
		CouponCode:             p.text(domain.ColCouponCode),
		CampaignName:           p.text(domain.ColCampaignName),

		StartDate:           p.date(domain.ColStartDate),
		ExpiryDate:          p.date(domain.ColExpiryDate),
		CancellationDate:    p.date(domain.ColCancellationDate),
		GraceCalendarDate:   p.date(domain.ColGraceCalendarDate),
		GraceExpiryDate:     p.date(domain.ColGraceExpiryDate),
		Grace90CalendarDate: p.date(domain.ColGrace90CalendarDate),
		Grace90ExpiryDate:   p.date(domain.ColGrace90ExpiryDate),

		InGracePeriod:   p.flag(domain.ColInGracePeriod),
		InGracePeriod90: p.flag(domain.ColInGracePeriod90),
		PromotionFlag:   p.flag(domain.ColPromotionFlag),
		IsLatestVersion: p.flag(domain.ColIsLatestVersion),
		IsDailyWeekly:   p.flag(domain.ColIsDailyWeekly),
	}

	return rec, p.errs
}

type rowParser struct {
	raw  domain.RawRecord
	line int
	errs []domain.FieldError
}

func (p *rowParser) fail(col, value, reason string) {
	p.errs = append(p.errs, domain.FieldError{Line: p.line, Column: col, Value: value, Reason: reason})
}

func (p *rowParser) text(col string) string {
	return CleanText(p.raw[col])
}

func (p *rowParser) date(col string) *time.Time {
	value := CleanText(p.raw[col])
	if value == "" {
		return nil
	}
	date, ok := ParseSerialDate(value)
	if !ok {
		p.fail(col, value, "not a serial date in range")
		return nil
	}
	return date
}

func (p *rowParser) integer64(col string) *int64 {
	value := CleanText(p.raw[col])
	if value == "" {
		return nil
	}
	parsed, ok := ParseInteger(value)
	if !ok {
		p.fail(col, value, "not an integer")
		return nil
	}
	return &parsed
}

func (p *rowParser) integer(col string) *int {
	parsed := p.integer64(col)
	if parsed == nil {
		return nil
	}
	v := int(*parsed)
	return &v
}

func (p *rowParser) flag(col string) bool {
	value := CleanText(p.raw[col])
	parsed, ok := ParseFlag(value)
	if !ok {
		p.fail(col, value, "not a 0/1 flag")
	}
	return parsed
}

// CleanText apara espaços e converte marcadores de ausência em texto vazio.
// Valores livres que não pertencem a nenhuma categoria conhecida são preservados.
func CleanText(value string) string {
	value = strings.Join(strings.Fields(value), " ")
	if missingTokens[value] {
		return ""
	}
	return value
}

// Maior serial válido (9999-12-31)
const maxSerialDate = 2958465

// ParseSerialDate interpreta o número de dias desde 1899-12-30.
// Apenas números entre 1 dia e 9999-12-31 são aceitos; a fração (hora) é descartada.
func ParseSerialDate(value string) (*time.Time, bool) {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(serial) || math.IsInf(serial, 0) || serial <= 0 || serial >= maxSerialDate+1 {
		return nil, false
	}
	date := serialEpoch.AddDate(0, 0, int(math.Floor(serial)))
	return &date, true
}

// ParseInteger aceita inteiros e floats integrais ("12.0")
func ParseInteger(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
		return parsed, true
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// ParseFlag interpreta flags 0/1. Vazio é falso; valores desconhecidos retornam ok=false.
func ParseFlag(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "1.0", "true", "yes":
		return true, true
	case "", "0", "0.0", "false", "no":
		return false, true
	default:
		return false, false
	}
}
