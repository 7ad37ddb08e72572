// Package deriving calcula as features comportamentais e de risco de cada assinatura
package deriving

import (
	"fmt"
	"time"

	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/pkg/utils"
)

// DaysPerMonth converte dias em meses
const DaysPerMonth = 30.44

// Status que marca uma assinatura como churned (comparação exata)
const churnedStatus = "churned"

// Deriver é puro: o resultado depende apenas do registro e da data de processamento
type Deriver struct {
	processingDate time.Time
}

// New cria um Deriver; a data de processamento é truncada para o dia (UTC)
func New(processingDate time.Time) *Deriver {
	return &Deriver{processingDate: utils.DateOnly(processingDate)}
}

// ProcessingDate retorna a data usada nos cálculos de tenure e expiração
func (d *Deriver) ProcessingDate() time.Time {
	return d.processingDate
}

// Derive calcula todas as features de um registro normalizado
func (d *Deriver) Derive(r domain.NormalizedRecord) domain.Features {
	f := domain.Features{
		IsChurned: r.SubscriptionStatus == churnedStatus,

		ProductTier:      ProductTier(r.ProductName),
		OfferPeriodGroup: OfferPeriodGroup(r.OfferPeriod),
		IsPremium:        IsPremiumProduct(r.ProductName),
		IsEventPass:      r.ProductName == EventPassProduct,

		IsNewSubscriber: r.SubscriptionType == "New",
		IsWinback:       r.SubscriptionType == "Winback",
		IsContinuing:    r.SubscriptionDetailType == "Continuing",
		WinbackCategory: WinbackCategory(r.WinbackType),

		IsDirect:     r.DirectIndirect == "Direct",
		IsB2B:        r.D2CB2B == "B2B",
		HasPartner:   r.PartnerName != "",
		ChannelGroup: ChannelGroup(r.AcquisitionChannel, r.SourceSystem),

		PaymentCategory: PaymentCategory(r.PaymentMethod),
		HasPromotion:    r.PromotionFlag,
		HasCoupon:       r.CouponCode != "",
		HasCampaign:     r.CampaignName != "",

		ChurnTypeClass:      ChurnTypeClass(r.ChurnType),
		ChurnReasonCategory: ChurnReasonCategory(r.ChurnReason),

		InGracePeriod:   r.InGracePeriod,
		InGracePeriod90: r.InGracePeriod90,
		GraceStatus:     GraceStatus(r.InGracePeriod, r.InGracePeriod90),

		CountryTier: CountryTier(r.Country),
		Region:      Region(r.Country),

		IsMultiVersion:  r.Version() > 1,
		ValueTier:       ValueTier(r.Tier),
		IsDailyWeekly:   r.IsDailyWeekly,
		IsLatestVersion: r.IsLatestVersion,
	}

	f.SubscriptionDurationDays, f.SubscriptionDurationMonths = span(r.StartDate, r.ExpiryDate)
	f.TenureDays, f.TenureMonths = span(r.StartDate, &d.processingDate)
	f.DaysUntilExpiry, _ = span(&d.processingDate, r.ExpiryDate)
	f.DaysToCancel, _ = span(r.StartDate, r.CancellationDate)

	d.deriveStartCalendar(r.StartDate, &f)

	f.TenureCategory = TenureCategory(f.TenureMonths)
	f.StabilityScore = StabilityScore(f.IsNewSubscriber, f.IsWinback, f.IsMultiVersion, f.IsContinuing)
	f.IsShortTenure = IsShortTenure(f.TenureMonths)
	f.IsExpiringSoon = f.DaysUntilExpiry != nil && *f.DaysUntilExpiry > 0 && *f.DaysUntilExpiry <= 7

	return f
}

func (d *Deriver) deriveStartCalendar(start *time.Time, f *domain.Features) {
	if start == nil {
		f.StartWeekday = domain.Unknown
		f.CohortMonth = domain.Unknown
		return
	}
	f.StartYear = start.Year()
	f.StartMonth = int(start.Month())
	f.StartQuarter = (f.StartMonth-1)/3 + 1
	f.StartWeekday = start.Weekday().String()
	f.CohortMonth = fmt.Sprintf("%04d-%02d", start.Year(), int(start.Month()))
}

// span retorna a diferença em dias (e meses) entre duas datas opcionais
func span(from, to *time.Time) (*int, *float64) {
	if from == nil || to == nil {
		return nil, nil
	}
	days := utils.DaysBetween(*from, *to)
	months := float64(days) / DaysPerMonth
	return &days, &months
}

// TenureCategory classifica a tenure em meses; limites inclusivos, primeiro que casar vence
func TenureCategory(months *float64) string {
	if months == nil {
		return domain.TenureUnknown
	}
	m := *months
	switch {
	case m <= 1:
		return domain.TenureNew
	case m <= 3:
		return domain.TenureEarly
	case m <= 6:
		return domain.TenureDeveloping
	case m <= 12:
		return domain.TenureEstablished
	default:
		return domain.TenureLoyal
	}
}

// IsShortTenure indica tenure abaixo de 3 meses; ausente não é curto
func IsShortTenure(months *float64) bool {
	return months != nil && *months < 3
}

// StabilityScore é um sinal auxiliar sem limites, independente do score de risco
func StabilityScore(isNew, isWinback, isMultiVersion, isContinuing bool) int {
	return 2*b2i(isNew) + 3*b2i(isWinback) + b2i(isMultiVersion) - 2*b2i(isContinuing)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
