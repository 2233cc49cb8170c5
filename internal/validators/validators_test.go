package validators

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
)

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	verr, ok := apperrors.AsValidation(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	names := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		names[i] = f.Field
	}
	return names
}

func completePricing() models.ZonePricing {
	pricing := models.ZonePricing{}
	for _, zone := range models.Zones {
		pricing[zone] = models.ZonePrice{BaseWeight: 0.5, BasePrice: 40, AdditionalPricePerKg: 20}
	}
	return pricing
}

func TestValidateCreateRateCardCollectsEveryError(t *testing.T) {
	pricing := completePricing()
	delete(pricing, models.ZoneD)

	err := ValidateCreateRateCard(&CreateRateCardRequest{
		CompanyID:   "not-an-id",
		ZonePricing: pricing,
		Status:      "archived",
		EffectiveDates: EffectiveDatesRequest{
			StartDate: "2024-03-01",
			EndDate:   "2024-02-01",
		},
	})

	names := fieldNames(t, err)
	assert.ElementsMatch(t, []string{"name", "companyId", "status", "zonePricing", "effectiveDates.endDate"}, names)
	assert.Contains(t, err.Error(), "missing zones: zoneD")
}

func TestValidateCreateRateCardAcceptsCompleteRequest(t *testing.T) {
	gst := 18.0
	err := ValidateCreateRateCard(&CreateRateCardRequest{
		Name:           "Surface Standard",
		Scope:          models.RateCardScopeCompany,
		CompanyID:      primitive.NewObjectID().Hex(),
		ZonePricing:    completePricing(),
		EffectiveDates: EffectiveDatesRequest{StartDate: "2024-01-01"},
		GST:            &gst,
	})

	assert.NoError(t, err)
}

func TestValidateUpdateRateCard(t *testing.T) {
	empty := ""
	err := ValidateUpdateRateCard(&UpdateRateCardRequest{
		Name:           &empty,
		EffectiveDates: &EffectiveDatesRequest{StartDate: "2024-05-01", EndDate: "2024-04-01"},
	})
	assert.ElementsMatch(t, []string{"name", "effectiveDates.endDate"}, fieldNames(t, err))

	assert.NoError(t, ValidateUpdateRateCard(&UpdateRateCardRequest{}))
}

func TestZonePricesMustNotBeNegative(t *testing.T) {
	tests := []struct {
		name  string
		price models.ZonePrice
		field string
	}{
		{name: "base weight", price: models.ZonePrice{BaseWeight: -0.5, BasePrice: 40, AdditionalPricePerKg: 20}, field: "zonePricing.zoneB.baseWeight"},
		{name: "base price", price: models.ZonePrice{BaseWeight: 0.5, BasePrice: -5, AdditionalPricePerKg: 20}, field: "zonePricing.zoneB.basePrice"},
		{name: "per kg", price: models.ZonePrice{BaseWeight: 0.5, BasePrice: 40, AdditionalPricePerKg: -1}, field: "zonePricing.zoneB.additionalPricePerKg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pricing := completePricing()
			pricing[models.ZoneB] = tt.price

			err := ValidateCreateRateCard(&CreateRateCardRequest{
				Name:           "Surface",
				ZonePricing:    pricing,
				EffectiveDates: EffectiveDatesRequest{StartDate: "2024-01-01"},
			})
			assert.Equal(t, []string{tt.field}, fieldNames(t, err))

			err = ValidateUpdateRateCard(&UpdateRateCardRequest{ZonePricing: pricing})
			assert.Equal(t, []string{tt.field}, fieldNames(t, err))
		})
	}
}

func TestValidateUpdateRateCardRequiresEveryZone(t *testing.T) {
	err := ValidateUpdateRateCard(&UpdateRateCardRequest{
		ZonePricing: models.ZonePricing{models.ZoneA: {BaseWeight: 0.5, BasePrice: 40, AdditionalPricePerKg: 20}},
	})

	verr, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "zonePricing", verr.Fields[0].Field)
	assert.Equal(t, "missing zones: zoneB, zoneC, zoneD, zoneE", verr.Fields[0].Message)

	assert.NoError(t, ValidateUpdateRateCard(&UpdateRateCardRequest{ZonePricing: completePricing()}))
}

func TestValidateBulkUpdate(t *testing.T) {
	companyID := primitive.NewObjectID().Hex()

	err := ValidateBulkUpdate(&BulkUpdateRequest{
		CompanyID:   companyID,
		RateCardIDs: []string{primitive.NewObjectID().Hex()},
		Operation:   models.BulkOperationAdjustPrice,
	})
	assert.ElementsMatch(t, []string{"adjustmentType", "adjustmentValue"}, fieldNames(t, err))

	err = ValidateBulkUpdate(&BulkUpdateRequest{CompanyID: companyID, Operation: "rename"})
	assert.ElementsMatch(t, []string{"rateCardIds", "operation"}, fieldNames(t, err))

	value := 5.0
	assert.NoError(t, ValidateBulkUpdate(&BulkUpdateRequest{
		CompanyID:       companyID,
		RateCardIDs:     []string{primitive.NewObjectID().Hex()},
		Operation:       models.BulkOperationAdjustPrice,
		AdjustmentType:  models.AdjustmentPercentage,
		AdjustmentValue: &value,
	}))
}

func TestValidateBulkAssignShapes(t *testing.T) {
	cardID := primitive.NewObjectID().Hex()
	companyID := primitive.NewObjectID().Hex()

	tests := []struct {
		name    string
		req     *BulkAssignRequest
		wantErr string
	}{
		{name: "empty", req: &BulkAssignRequest{}, wantErr: "assignments"},
		{
			name: "both shapes",
			req: &BulkAssignRequest{
				Assignments: []AssignmentEntry{{RateCardID: cardID, CompanyID: companyID}},
				RateCardID:  cardID,
			},
			wantErr: "assignments",
		},
		{name: "targets without card", req: &BulkAssignRequest{CompanyIDs: []string{companyID}}, wantErr: "rateCardId"},
		{name: "card without targets", req: &BulkAssignRequest{RateCardID: cardID}, wantErr: "companyIds"},
		{name: "explicit", req: &BulkAssignRequest{Assignments: []AssignmentEntry{{RateCardID: cardID, CompanyID: companyID}}}},
		{name: "expansion", req: &BulkAssignRequest{RateCardID: cardID, GroupIDs: []string{primitive.NewObjectID().Hex()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBulkAssign(tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, fieldNames(t, err), tt.wantErr)
		})
	}
}

func TestValidateAssignRejectsMalformedIDs(t *testing.T) {
	err := ValidateAssign(&AssignRequest{RateCardID: "123", SellerID: ""})
	assert.ElementsMatch(t, []string{"rateCardId", "sellerId"}, fieldNames(t, err))
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()

	parsed, err := ParseObjectID("id", id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseObjectID("id", "")
	assert.Equal(t, []string{"id"}, fieldNames(t, err))

	_, err = ParseObjectID("companyId", "zzz")
	verr, _ := apperrors.AsValidation(err)
	assert.Equal(t, "must be a valid id", verr.Fields[0].Message)
}

func TestListRateCardsQueryToFilter(t *testing.T) {
	companyID := primitive.NewObjectID()

	filter, err := (&ListRateCardsQuery{
		Status:    "active",
		CompanyID: companyID.Hex(),
		Search:    "  surface ",
	}).ToFilter()
	require.NoError(t, err)
	assert.Equal(t, models.RateCardStatusActive, filter.Status)
	assert.Equal(t, companyID, *filter.CompanyID)
	assert.Equal(t, "surface", filter.Search)

	_, err = (&ListRateCardsQuery{Scope: "planet"}).ToFilter()
	assert.Equal(t, []string{"scope"}, fieldNames(t, err))
}

func TestResolveRevenueWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

	start, end, granularity, err := (&RevenueSeriesQuery{}).ResolveRevenueWindow(now)
	require.NoError(t, err)
	assert.Equal(t, models.GranularityDay, granularity)
	assert.Equal(t, time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 15, 23, 59, 59, 999999999, time.UTC), end)

	start, end, granularity, err = (&RevenueSeriesQuery{StartDate: "2024-01-01", EndDate: "2024-03-31", Granularity: "month"}).ResolveRevenueWindow(now)
	require.NoError(t, err)
	assert.Equal(t, models.GranularityMonth, granularity)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, 31, end.Day())

	_, _, _, err = (&RevenueSeriesQuery{Granularity: "hour"}).ResolveRevenueWindow(now)
	assert.Equal(t, []string{"granularity"}, fieldNames(t, err))

	_, _, _, err = (&RevenueSeriesQuery{StartDate: "2024-02-01", EndDate: "2024-01-01"}).ResolveRevenueWindow(now)
	assert.Equal(t, []string{"endDate"}, fieldNames(t, err))
}

func TestParseImportMetadata(t *testing.T) {
	meta, warnings := ParseImportMetadata("")
	assert.Nil(t, meta)
	assert.Empty(t, warnings)

	meta, warnings = ParseImportMetadata(`{"fuelSurcharge": 4.5, "isLocked": true}`)
	require.NotNil(t, meta)
	assert.Empty(t, warnings)
	assert.Equal(t, 4.5, *meta.FuelSurcharge)
	assert.True(t, *meta.IsLocked)
	assert.Nil(t, meta.Version)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "malformed", raw: `{"fuelSurcharge":`},
		{name: "unknown field", raw: `{"discount": 10}`},
		{name: "negative", raw: `{"fuelSurcharge": -1}`},
		{name: "zero version", raw: `{"version": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, warnings := ParseImportMetadata(tt.raw)
			assert.Nil(t, meta)
			require.NotEmpty(t, warnings)
			assert.Contains(t, warnings[0], "metadata ignored")
		})
	}
}

func TestMissingZonesMessage(t *testing.T) {
	assert.Equal(t,
		`rate card "Air" is missing pricing for zoneB, zoneE`,
		MissingZonesMessage("Air", []models.Zone{models.ZoneB, models.ZoneE}))
}
