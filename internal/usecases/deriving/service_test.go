package deriving

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/churn-analytics/internal/domain"
	"github.com/vfg2006/churn-analytics/internal/fixture"
)

func baseRecord() domain.NormalizedRecord {
	return domain.NormalizedRecord{
		CustomerID:          "C-1",
		SubscriptionID:      "S-1",
		SubscriptionKey:     fixture.Int64(1001),
		SubscriptionVersion: fixture.Int(1),
		ProductName:         "Standard",
		Country:             "Egypt",
		OfferPeriod:         "1 Month",
		PaymentMethod:       "Credit Card",
		SubscriptionStatus:  "active",
		SubscriptionType:    "New",
		AcquisitionChannel:  "Web",
		Tier:                "T2",
		DirectIndirect:      "Direct",
		D2CB2B:              "D2C",
		StartDate:           fixture.Date(2023, 10, 1),
		ExpiryDate:          fixture.Date(2024, 2, 5),
		IsLatestVersion:     true,
	}
}

func TestDerive_BaseRecord(t *testing.T) {
	d := New(fixture.ProcessingDate)

	f := d.Derive(baseRecord())

	assert.False(t, f.IsChurned)
	require.NotNil(t, f.TenureDays)
	assert.Equal(t, 122, *f.TenureDays)
	require.NotNil(t, f.TenureMonths)
	assert.InDelta(t, 122/DaysPerMonth, *f.TenureMonths, 1e-9)
	assert.Equal(t, domain.TenureDeveloping, f.TenureCategory)

	require.NotNil(t, f.SubscriptionDurationDays)
	assert.Equal(t, 127, *f.SubscriptionDurationDays)
	require.NotNil(t, f.DaysUntilExpiry)
	assert.Equal(t, 5, *f.DaysUntilExpiry)
	assert.True(t, f.IsExpiringSoon)
	assert.Nil(t, f.DaysToCancel)

	assert.Equal(t, 2023, f.StartYear)
	assert.Equal(t, 10, f.StartMonth)
	assert.Equal(t, 4, f.StartQuarter)
	assert.Equal(t, "Sunday", f.StartWeekday)
	assert.Equal(t, "2023-10", f.CohortMonth)

	assert.Equal(t, domain.ProductTierStandard, f.ProductTier)
	assert.Equal(t, domain.OfferMonthly, f.OfferPeriodGroup)
	assert.Equal(t, domain.PaymentCard, f.PaymentCategory)
	assert.Equal(t, domain.ChannelWeb, f.ChannelGroup)
	assert.Equal(t, domain.ChurnTypeActive, f.ChurnTypeClass)
	assert.Equal(t, domain.ReasonNotChurned, f.ChurnReasonCategory)
	assert.Equal(t, domain.GraceNone, f.GraceStatus)
	assert.Equal(t, domain.CountryTier1, f.CountryTier)
	assert.Equal(t, domain.RegionNorthAfrica, f.Region)
	assert.Equal(t, domain.ValueMedium, f.ValueTier)
	assert.True(t, f.IsNewSubscriber)
	assert.True(t, f.IsDirect)
	assert.False(t, f.IsB2B)
	assert.False(t, f.IsMultiVersion)
	assert.Equal(t, 2, f.StabilityScore)
	assert.False(t, f.IsShortTenure)
	assert.True(t, f.IsLatestVersion)
}

func TestDerive_IsDeterministic(t *testing.T) {
	d := New(fixture.ProcessingDate)
	r := baseRecord()
	r.CancellationDate = fixture.Date(2023, 12, 1)
	r.ChurnReason = "Too Expensive"

	assert.Equal(t, d.Derive(r), d.Derive(r))
}

func TestDerive_ProcessingDateIsInjected(t *testing.T) {
	r := baseRecord()

	early := New(time.Date(2023, 10, 15, 18, 30, 0, 0, time.UTC)).Derive(r)
	late := New(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).Derive(r)

	require.NotNil(t, early.TenureDays)
	assert.Equal(t, 14, *early.TenureDays)
	assert.Equal(t, domain.TenureNew, early.TenureCategory)
	assert.True(t, early.IsShortTenure)

	assert.Equal(t, domain.TenureLoyal, late.TenureCategory)
	require.NotNil(t, late.DaysUntilExpiry)
	assert.Negative(t, *late.DaysUntilExpiry)
	assert.False(t, late.IsExpiringSoon)
}

func TestDerive_ChurnedIsCaseSensitive(t *testing.T) {
	d := New(fixture.ProcessingDate)
	tests := []struct {
		status string
		want   bool
	}{
		{status: "churned", want: true},
		{status: "Churned", want: false},
		{status: "CHURNED", want: false},
		{status: "active", want: false},
		{status: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			r := baseRecord()
			r.SubscriptionStatus = tt.status
			assert.Equal(t, tt.want, d.Derive(r).IsChurned)
		})
	}
}

func TestDerive_MissingOptionalValues(t *testing.T) {
	d := New(fixture.ProcessingDate)
	r := baseRecord()
	r.PartnerName = ""
	r.WinbackType = ""
	r.StartDate = nil
	r.ExpiryDate = nil
	r.SubscriptionVersion = nil

	f := d.Derive(r)

	assert.False(t, f.HasPartner)
	assert.Equal(t, domain.NotWinback, f.WinbackCategory)
	assert.Nil(t, f.TenureDays)
	assert.Nil(t, f.TenureMonths)
	assert.Nil(t, f.SubscriptionDurationDays)
	assert.Nil(t, f.DaysUntilExpiry)
	assert.Equal(t, domain.TenureUnknown, f.TenureCategory)
	assert.Equal(t, domain.Unknown, f.CohortMonth)
	assert.Equal(t, domain.Unknown, f.StartWeekday)
	assert.Zero(t, f.StartYear)
	assert.False(t, f.IsShortTenure)
	assert.False(t, f.IsExpiringSoon)
	assert.False(t, f.IsMultiVersion)
}

func TestDerive_WinbackAndContinuingUseDifferentFields(t *testing.T) {
	d := New(fixture.ProcessingDate)
	r := baseRecord()
	r.SubscriptionType = "Winback"
	r.SubscriptionDetailType = "Continuing"
	r.WinbackType = "Reactivated"
	r.SubscriptionVersion = fixture.Int(3)
	r.PartnerName = "Orange"

	f := d.Derive(r)

	assert.False(t, f.IsNewSubscriber)
	assert.True(t, f.IsWinback)
	assert.True(t, f.IsContinuing)
	assert.True(t, f.IsMultiVersion)
	assert.True(t, f.HasPartner)
	assert.Equal(t, "Reactivated", f.WinbackCategory)
	// 3·winback + 1·multi − 2·continuing
	assert.Equal(t, 2, f.StabilityScore)
	assert.Equal(t, "Winback", f.SubscriberType())
}

func TestTenureCategory(t *testing.T) {
	months := func(v float64) *float64 { return &v }

	tests := []struct {
		name   string
		months *float64
		want   string
	}{
		{name: "zero", months: months(0), want: domain.TenureNew},
		{name: "exatamente 1 mês", months: months(1.0), want: domain.TenureNew},
		{name: "logo acima de 1 mês", months: months(1.0001), want: domain.TenureEarly},
		{name: "exatamente 3 meses", months: months(3.0), want: domain.TenureEarly},
		{name: "exatamente 6 meses", months: months(6.0), want: domain.TenureDeveloping},
		{name: "exatamente 12 meses", months: months(12.0), want: domain.TenureEstablished},
		{name: "acima de 12", months: months(12.5), want: domain.TenureLoyal},
		{name: "tenure negativa", months: months(-2), want: domain.TenureNew},
		{name: "ausente", months: nil, want: domain.TenureUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TenureCategory(tt.months))
		})
	}
}

func TestLookups(t *testing.T) {
	assert.Equal(t, domain.ProductTierPremium, ProductTier("Premium Plus"))
	assert.Equal(t, domain.ProductTierBasic, ProductTier("Mobile"))
	assert.Equal(t, domain.ProductTierEventPass, ProductTier("AFCON"))
	assert.Equal(t, domain.Other, ProductTier("premium"))
	assert.True(t, IsPremiumProduct("Premium"))
	assert.False(t, IsPremiumProduct("Standard"))

	assert.Equal(t, domain.OfferDaily, OfferPeriodGroup("1 Day"))
	assert.Equal(t, domain.OfferWeekly, OfferPeriodGroup("1 Week"))
	assert.Equal(t, domain.OfferLongTerm, OfferPeriodGroup("6 Months"))
	assert.Equal(t, domain.OfferCustom, OfferPeriodGroup("Custom"))
	assert.Equal(t, domain.Other, OfferPeriodGroup("2 Years"))

	assert.Equal(t, domain.ChannelMobileApp, ChannelGroup("iOS", "Partner"))
	assert.Equal(t, domain.ChannelPartner, ChannelGroup("TV", "Partner"))
	assert.Equal(t, domain.ChannelWeb, ChannelGroup("Web", "Partner"))
	assert.Equal(t, domain.Other, ChannelGroup("", ""))

	assert.Equal(t, domain.PaymentDigitalWallet, PaymentCategory("Apple Pay"))
	assert.Equal(t, domain.PaymentVoucher, PaymentCategory("Voucher"))
	assert.Equal(t, domain.Other, PaymentCategory("Bank Transfer"))

	assert.Equal(t, domain.ChurnTypeInvoluntary, ChurnTypeClass("Involuntary"))
	assert.Equal(t, domain.Unknown, ChurnTypeClass("Migrated"))

	assert.Equal(t, domain.ReasonPaymentIssue, ChurnReasonCategory("Card Expired"))
	assert.Equal(t, domain.ReasonCustomerDecision, ChurnReasonCategory("User Cancelled"))
	assert.Equal(t, domain.ReasonContentIssue, ChurnReasonCategory("Season Ended"))
	assert.Equal(t, domain.Other, ChurnReasonCategory("Moved Abroad"))

	assert.Equal(t, domain.GraceBoth, GraceStatus(true, true))
	assert.Equal(t, domain.GraceStandard, GraceStatus(true, false))
	assert.Equal(t, domain.Grace90Day, GraceStatus(false, true))

	assert.Equal(t, domain.CountryTier2, CountryTier("United Arab Emirates"))
	assert.Equal(t, domain.CountryTier3, CountryTier("Qatar"))
	assert.Equal(t, domain.RegionMiddleEast, Region("Qatar"))
	assert.Equal(t, domain.Other, Region("France"))

	assert.Equal(t, domain.ValueHigh, ValueTier("T1"))
	assert.Equal(t, domain.ValueLow, ValueTier("T3"))
	assert.Equal(t, domain.Unknown, ValueTier(""))
}

func TestDerive_ExpiringSoonBoundaries(t *testing.T) {
	d := New(fixture.ProcessingDate)
	tests := []struct {
		name   string
		expiry *time.Time
		days   int
		want   bool
	}{
		{name: "expira hoje", expiry: fixture.Date(2024, 1, 31), days: 0, want: false},
		{name: "amanhã", expiry: fixture.Date(2024, 2, 1), days: 1, want: true},
		{name: "em 7 dias", expiry: fixture.Date(2024, 2, 7), days: 7, want: true},
		{name: "em 8 dias", expiry: fixture.Date(2024, 2, 8), days: 8, want: false},
		{name: "expirada ontem", expiry: fixture.Date(2024, 1, 30), days: -1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := baseRecord()
			r.ExpiryDate = tt.expiry

			f := d.Derive(r)

			require.NotNil(t, f.DaysUntilExpiry)
			assert.Equal(t, tt.days, *f.DaysUntilExpiry)
			assert.Equal(t, tt.want, f.IsExpiringSoon)
		})
	}
}

func TestDerive_ShortTenureBoundary(t *testing.T) {
	d := New(fixture.ProcessingDate)
	tests := []struct {
		name  string
		start *time.Time
		days  int
		want  bool
	}{
		{name: "91 dias", start: fixture.Date(2023, 11, 1), days: 91, want: true},
		{name: "92 dias", start: fixture.Date(2023, 10, 31), days: 92, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := baseRecord()
			r.StartDate = tt.start

			f := d.Derive(r)

			require.NotNil(t, f.TenureDays)
			assert.Equal(t, tt.days, *f.TenureDays)
			assert.Equal(t, tt.want, f.IsShortTenure)
		})
	}
}

func TestIsShortTenure(t *testing.T) {
	months := func(v float64) *float64 { return &v }

	assert.True(t, IsShortTenure(months(0)))
	assert.True(t, IsShortTenure(months(2.999)))
	assert.False(t, IsShortTenure(months(3.0)))
	assert.False(t, IsShortTenure(months(3.5)))
	assert.False(t, IsShortTenure(nil))
}
