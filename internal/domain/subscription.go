// Package domain contém as estruturas de dados do domínio da aplicação
package domain

import "time"

// Colunas esperadas na exportação de assinaturas
const (
	ColCustomerID             = "customer_id"
	ColSubscriptionID         = "subscription_id"
	ColSubscriptionKey        = "subscription_key"
	ColSubscriptionVersion    = "subscription_version"
	ColProductName            = "product_name"
	ColCountry                = "country"
	ColOfferPeriod            = "offer_period"
	ColOfferType              = "offer_type"
	ColPaymentMethod          = "payment_method"
	ColSubscriptionStatus     = "subscription_status"
	ColSubscriptionType       = "subscription_type"
	ColSubscriptionDetailType = "subscription_detail_type"
	ColWinbackType            = "winback_type"
	ColChurnType              = "churn_type"
	ColChurnReason            = "churn_reason"
	ColAcquisitionChannel     = "acquisition_channel"
	ColSourceSystem           = "source_system"
	ColPartnerName            = "partner_name"
	ColTier                   = "tier"
	ColDirectIndirect         = "direct_indirect"
	ColD2CB2B                 = "d2c_b2b"
	ColStartDate              = "start_date"
	ColExpiryDate             = "expiry_date"
	ColCancellationDate       = "cancellation_date"
	ColGraceCalendarDate      = "grace_calendar_date"
	ColGraceExpiryDate        = "grace_expiry_date"
	ColGrace90CalendarDate    = "grace_90_calendar_date"
	ColGrace90ExpiryDate      = "grace_90_expiry_date"
	ColInGracePeriod          = "in_grace_period"
	ColInGracePeriod90        = "in_grace_period_90"
	ColPromotionFlag          = "promotion_flag"
	ColIsLatestVersion        = "is_latest_version"
	ColIsDailyWeekly          = "is_daily_weekly"
	ColCouponCode             = "coupon_code"
	ColCampaignName           = "campaign_name"
)

// RequiredColumns são as colunas sem as quais a derivação de features não é possível
var RequiredColumns = []string{
	ColCustomerID,
	ColSubscriptionID,
	ColSubscriptionKey,
	ColSubscriptionVersion,
	ColProductName,
	ColCountry,
	ColOfferPeriod,
	ColOfferType,
	ColPaymentMethod,
	ColSubscriptionStatus,
	ColSubscriptionType,
	ColSubscriptionDetailType,
	ColWinbackType,
	ColChurnType,
	ColChurnReason,
	ColAcquisitionChannel,
	ColSourceSystem,
	ColPartnerName,
	ColTier,
	ColDirectIndirect,
	ColD2CB2B,
	ColStartDate,
	ColExpiryDate,
	ColCancellationDate,
	ColGraceCalendarDate,
	ColGraceExpiryDate,
	ColGrace90CalendarDate,
	ColGrace90ExpiryDate,
	ColInGracePeriod,
	ColInGracePeriod90,
	ColPromotionFlag,
	ColIsLatestVersion,
	ColIsDailyWeekly,
}

// OptionalColumns são lidas quando presentes; a ausência torna o campo ausente em todas as linhas
var OptionalColumns = []string{
	ColCouponCode,
	ColCampaignName,
}

// RawRecord é uma linha da exportação, indexada pelo nome canônico da coluna
type RawRecord map[string]string

// RawTable é o conteúdo lido da fonte, antes de qualquer normalização
type RawTable struct {
	Header []string    // Nomes canônicos das colunas, na ordem do arquivo
	Rows   []RawRecord // Linhas de dados
	Lines  []int       // Linha de origem de cada registro (1 = cabeçalho)
}

// NormalizedRecord é uma linha com campos tipados.
// Texto vazio significa ausente; datas e inteiros ausentes são nil.
type NormalizedRecord struct {
	Line int `json:"-"`

	CustomerID          string `json:"customer_id"`
	SubscriptionID      string `json:"subscription_id"`
	SubscriptionKey     *int64 `json:"subscription_key"`
	SubscriptionVersion *int   `json:"subscription_version"`

	ProductName            string `json:"product_name"`
	Country                string `json:"country"`
	OfferPeriod            string `json:"offer_period"`
	OfferType              string `json:"offer_type"`
	PaymentMethod          string `json:"payment_method"`
	SubscriptionStatus     string `json:"subscription_status"`
	SubscriptionType       string `json:"subscription_type"`
	SubscriptionDetailType string `json:"subscription_detail_type"`
	WinbackType            string `json:"winback_type"`
	ChurnType              string `json:"churn_type"`
	ChurnReason            string `json:"churn_reason"`
	AcquisitionChannel     string `json:"acquisition_channel"`
	SourceSystem           string `json:"source_system"`
	PartnerName            string `json:"partner_name"`
	Tier                   string `json:"tier"`
	DirectIndirect         string `json:"direct_indirect"`
	D2CB2B                 string `json:"d2c_b2b"`
	CouponCode             string `json:"coupon_code"`
	CampaignName           string `json:"campaign_name"`

	StartDate           *time.Time `json:"start_date"`
	ExpiryDate          *time.Time `json:"expiry_date"`
	CancellationDate    *time.Time `json:"cancellation_date"`
	GraceCalendarDate   *time.Time `json:"grace_calendar_date"`
	GraceExpiryDate     *time.Time `json:"grace_expiry_date"`
	Grace90CalendarDate *time.Time `json:"grace_90_calendar_date"`
	Grace90ExpiryDate   *time.Time `json:"grace_90_expiry_date"`

	InGracePeriod   bool `json:"in_grace_period"`
	InGracePeriod90 bool `json:"in_grace_period_90"`
	PromotionFlag   bool `json:"promotion_flag"`
	IsLatestVersion bool `json:"is_latest_version"`
	IsDailyWeekly   bool `json:"is_daily_weekly"`
}

// Version retorna a versão da assinatura, ou 0 quando ausente
func (r NormalizedRecord) Version() int {
	if r.SubscriptionVersion == nil {
		return 0
	}
	return *r.SubscriptionVersion
}
