package domain

// Categorias de tenure, em ordem natural
const (
	TenureNew         = "New (0-1 month)"
	TenureEarly       = "Early (1-3 months)"
	TenureDeveloping  = "Developing (3-6 months)"
	TenureEstablished = "Established (6-12 months)"
	TenureLoyal       = "Loyal (12+ months)"
	TenureUnknown     = "Unknown"
)

// TenureOrder é a ordem de apresentação das categorias de tenure
var TenureOrder = []string{
	TenureNew,
	TenureEarly,
	TenureDeveloping,
	TenureEstablished,
	TenureLoyal,
	TenureUnknown,
}

const (
	ProductTierPremium   = "Premium"
	ProductTierStandard  = "Standard"
	ProductTierBasic     = "Basic"
	ProductTierEventPass = "Event Pass"

	OfferDaily    = "Daily"
	OfferWeekly   = "Weekly"
	OfferMonthly  = "Monthly"
	OfferLongTerm = "Long-term"
	OfferCustom   = "Custom"

	ChannelWeb       = "Web"
	ChannelMobileApp = "Mobile App"
	ChannelPartner   = "Partner"

	PaymentCard          = "Card"
	PaymentVoucher       = "Voucher"
	PaymentDigitalWallet = "Digital Wallet"

	ChurnTypeActive      = "Active"
	ChurnTypeVoluntary   = "Voluntary"
	ChurnTypeInvoluntary = "Involuntary"

	ReasonNotChurned       = "Not Churned"
	ReasonPaymentIssue     = "Payment Issue"
	ReasonCustomerDecision = "Customer Decision"
	ReasonContentIssue     = "Content Issue"

	GraceNone     = "No Grace"
	GraceStandard = "Standard Grace"
	Grace90Day    = "90-Day Grace"
	GraceBoth     = "Both"

	CountryTier1 = "Tier 1"
	CountryTier2 = "Tier 2"
	CountryTier3 = "Tier 3"

	RegionNorthAfrica = "North Africa"
	RegionMiddleEast  = "Middle East"

	ValueHigh   = "High"
	ValueMedium = "Medium"
	ValueLow    = "Low"

	NotWinback = "Not Winback"

	Other   = "Other"
	Unknown = "Unknown"
)

// GraceOrder é a ordem de apresentação do status de carência
var GraceOrder = []string{GraceNone, GraceStandard, Grace90Day, GraceBoth}

// Features são os campos derivados de um NormalizedRecord.
// Os nomes json são o contrato estável com os consumidores da tabela enriquecida.
type Features struct {
	IsChurned bool `json:"is_churned"`

	SubscriptionDurationDays   *int     `json:"subscription_duration_days"`
	SubscriptionDurationMonths *float64 `json:"subscription_duration_months"`
	TenureDays                 *int     `json:"tenure_days"`
	TenureMonths               *float64 `json:"tenure_months"`
	DaysUntilExpiry            *int     `json:"days_until_expiry"`
	DaysToCancel               *int     `json:"days_to_cancel"`

	StartYear    int    `json:"start_year"`
	StartMonth   int    `json:"start_month"`
	StartQuarter int    `json:"start_quarter"`
	StartWeekday string `json:"start_weekday"`
	CohortMonth  string `json:"cohort_month"`

	TenureCategory   string `json:"tenure_category"`
	ProductTier      string `json:"product_tier"`
	OfferPeriodGroup string `json:"offer_period_group"`
	IsPremium        bool   `json:"is_premium"`
	IsEventPass      bool   `json:"is_event_pass"`

	IsNewSubscriber bool   `json:"is_new_subscriber"`
	IsWinback       bool   `json:"is_winback"`
	IsContinuing    bool   `json:"is_continuing"`
	WinbackCategory string `json:"winback_category"`

	IsDirect     bool   `json:"is_direct"`
	IsB2B        bool   `json:"is_b2b"`
	HasPartner   bool   `json:"has_partner"`
	ChannelGroup string `json:"channel_group"`

	PaymentCategory string `json:"payment_category"`
	HasPromotion    bool   `json:"has_promotion"`
	HasCoupon       bool   `json:"has_coupon"`
	HasCampaign     bool   `json:"has_campaign"`

	ChurnTypeClass      string `json:"churn_type_class"`
	ChurnReasonCategory string `json:"churn_reason_category"`

	InGracePeriod   bool   `json:"in_grace_period"`
	InGracePeriod90 bool   `json:"in_grace_period_90"`
	GraceStatus     string `json:"grace_status"`

	CountryTier string `json:"country_tier"`
	Region      string `json:"region"`

	IsMultiVersion  bool   `json:"is_multi_version"`
	StabilityScore  int    `json:"stability_score"`
	ValueTier       string `json:"value_tier"`
	IsShortTenure   bool   `json:"is_short_tenure"`
	IsExpiringSoon  bool   `json:"is_expiring_soon"`
	IsDailyWeekly   bool   `json:"is_daily_weekly"`
	IsLatestVersion bool   `json:"is_latest_version"`
}

// EnrichedRecord = registro normalizado + features derivadas + score de risco
type EnrichedRecord struct {
	NormalizedRecord
	Features Features  `json:"features"`
	Risk     RiskScore `json:"risk"`
}

// SubscriberType resume as flags de tipo de assinante em um único rótulo
func (f Features) SubscriberType() string {
	switch {
	case f.IsNewSubscriber:
		return "New"
	case f.IsWinback:
		return "Winback"
	case f.IsContinuing:
		return "Continuing"
	default:
		return Other
	}
}
