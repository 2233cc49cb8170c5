package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseZone(t *testing.T) {
	tests := []struct {
		in   string
		want Zone
		ok   bool
	}{
		{in: "A", want: ZoneA, ok: true},
		{in: "zoneB", want: ZoneB, ok: true},
		{in: " Zone C ", want: ZoneC, ok: true},
		{in: "ZONE_D", want: ZoneD, ok: true},
		{in: "e", want: ZoneE, ok: true},
		{in: "Q", ok: false},
		{in: "AB", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			zone, ok := ParseZone(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, zone)
			}
		})
	}
}

func TestZoneLetter(t *testing.T) {
	assert.Equal(t, "A", ZoneA.Letter())
	assert.Equal(t, "E", ZoneE.Letter())
}

func TestZonePricingMissingZones(t *testing.T) {
	pricing := ZonePricing{
		ZoneE: {BaseWeight: 0.5, BasePrice: 90},
		ZoneA: {BaseWeight: 0.5, BasePrice: 30},
		ZoneC: {BaseWeight: 0.5, BasePrice: 50},
	}

	assert.Equal(t, []Zone{ZoneB, ZoneD}, pricing.MissingZones())
	assert.False(t, pricing.IsComplete())
	assert.Equal(t, []Zone{ZoneA, ZoneC, ZoneE}, pricing.SortedZones())

	pricing[ZoneB] = ZonePrice{}
	pricing[ZoneD] = ZonePrice{}
	assert.True(t, pricing.IsComplete())
	assert.Empty(t, pricing.MissingZones())
}

func TestCloneAsDraft(t *testing.T) {
	companyID := primitive.NewObjectID()
	creator := primitive.NewObjectID()
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	card := &RateCard{
		ID:          primitive.NewObjectID(),
		Name:        "Express",
		Scope:       RateCardScopeCompany,
		CompanyID:   &companyID,
		ZonePricing: ZonePricing{ZoneA: {BaseWeight: 0.5, BasePrice: 40, AdditionalPricePerKg: 20}},
		Status:      RateCardStatusActive,
		EffectiveDates: EffectiveDates{
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   &end,
		},
		CreatedBy: &creator,
		CreatedAt: time.Now(),
	}

	clone := card.CloneAsDraft()

	assert.Equal(t, "Express (Copy)", clone.Name)
	assert.Equal(t, RateCardStatusDraft, clone.Status)
	assert.True(t, clone.ID.IsZero())
	assert.Nil(t, clone.CreatedBy)
	assert.True(t, clone.CreatedAt.IsZero())
	assert.Equal(t, card.CompanyID, clone.CompanyID)
	assert.Equal(t, card.ZonePricing, clone.ZonePricing)

	// The clone owns its pricing and dates.
	clone.ZonePricing[ZoneA] = ZonePrice{BasePrice: 1}
	require.NotNil(t, clone.EffectiveDates.EndDate)
	*clone.EffectiveDates.EndDate = end.AddDate(1, 0, 0)
	assert.Equal(t, 40.0, card.ZonePricing[ZoneA].BasePrice)
	assert.Equal(t, end, *card.EffectiveDates.EndDate)
}

func TestCompanyKey(t *testing.T) {
	companyID := primitive.NewObjectID()

	assert.Equal(t, AuditCompanyGlobal, (&RateCard{}).CompanyKey())
	assert.Equal(t, companyID.Hex(), (&RateCard{CompanyID: &companyID}).CompanyKey())
}
