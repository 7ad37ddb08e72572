package deriving

import "github.com/vfg2006/churn-analytics/internal/domain"

// Produtos com tratamento especial
const (
	PremiumProduct     = "Premium"
	PremiumPlusProduct = "Premium Plus"
	StandardProduct    = "Standard"
	MobileProduct      = "Mobile"
	EventPassProduct   = "AFCON"
)

// IsPremiumProduct usa a mesma allow-list do tier Premium
func IsPremiumProduct(product string) bool {
	return product == PremiumProduct || product == PremiumPlusProduct
}

func ProductTier(product string) string {
	switch {
	case IsPremiumProduct(product):
		return domain.ProductTierPremium
	case product == StandardProduct:
		return domain.ProductTierStandard
	case product == MobileProduct:
		return domain.ProductTierBasic
	case product == EventPassProduct:
		return domain.ProductTierEventPass
	default:
		return domain.Other
	}
}

func OfferPeriodGroup(period string) string {
	switch period {
	case "1 Day":
		return domain.OfferDaily
	case "1 Week":
		return domain.OfferWeekly
	case "1 Month":
		return domain.OfferMonthly
	case "3 Months", "6 Months", "12 Months":
		return domain.OfferLongTerm
	case "Custom":
		return domain.OfferCustom
	default:
		return domain.Other
	}
}

func WinbackCategory(winbackType string) string {
	if winbackType == "" {
		return domain.NotWinback
	}
	return winbackType
}

// ChannelGroup avalia o canal de aquisição antes do sistema de origem
func ChannelGroup(acquisitionChannel, sourceSystem string) string {
	switch {
	case acquisitionChannel == "Web":
		return domain.ChannelWeb
	case acquisitionChannel == "iOS" || acquisitionChannel == "Android":
		return domain.ChannelMobileApp
	case sourceSystem == "Partner":
		return domain.ChannelPartner
	default:
		return domain.Other
	}
}

func PaymentCategory(method string) string {
	switch method {
	case "Credit Card":
		return domain.PaymentCard
	case "Voucher":
		return domain.PaymentVoucher
	case "Apple Pay", "Google Pay":
		return domain.PaymentDigitalWallet
	default:
		return domain.Other
	}
}

func ChurnTypeClass(churnType string) string {
	switch churnType {
	case "":
		return domain.ChurnTypeActive
	case domain.ChurnTypeVoluntary, domain.ChurnTypeInvoluntary:
		return churnType
	default:
		return domain.Unknown
	}
}

func ChurnReasonCategory(reason string) string {
	switch reason {
	case "":
		return domain.ReasonNotChurned
	case "Payment Failed", "Card Expired", "Insufficient Funds":
		return domain.ReasonPaymentIssue
	case "User Cancelled", "Too Expensive", "No Longer Needed":
		return domain.ReasonCustomerDecision
	case "Content Not Available", "Season Ended", "Not Enough Content":
		return domain.ReasonContentIssue
	default:
		return domain.Other
	}
}

// GraceStatus combina as duas flags de carência em um único rótulo
func GraceStatus(standard, ninetyDay bool) string {
	switch {
	case standard && ninetyDay:
		return domain.GraceBoth
	case standard:
		return domain.GraceStandard
	case ninetyDay:
		return domain.Grace90Day
	default:
		return domain.GraceNone
	}
}

func CountryTier(country string) string {
	switch country {
	case "Egypt", "Saudi Arabia":
		return domain.CountryTier1
	case "United Arab Emirates", "Morocco":
		return domain.CountryTier2
	default:
		return domain.CountryTier3
	}
}

func Region(country string) string {
	switch country {
	case "Egypt", "Morocco", "Algeria", "Tunisia", "Libya", "Sudan":
		return domain.RegionNorthAfrica
	case "Saudi Arabia", "United Arab Emirates", "Qatar", "Kuwait", "Bahrain", "Oman", "Jordan", "Lebanon", "Iraq":
		return domain.RegionMiddleEast
	default:
		return domain.Other
	}
}

func ValueTier(tier string) string {
	switch tier {
	case "T1":
		return domain.ValueHigh
	case "T2":
		return domain.ValueMedium
	case "T3":
		return domain.ValueLow
	default:
		return domain.Unknown
	}
}
