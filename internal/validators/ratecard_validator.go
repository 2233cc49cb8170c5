package validators

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/models"
	"shipdesk/internal/utils"
)

type EffectiveDatesRequest struct {
	StartDate string `json:"startDate" validate:"required,date"`
	EndDate   string `json:"endDate" validate:"omitempty,date"`
}

type CreateRateCardRequest struct {
	Name                    string                  `json:"name" validate:"required,min=1,max=200"`
	Scope                   models.RateCardScope    `json:"scope" validate:"omitempty,oneof=global company"`
	CompanyID               string                  `json:"companyId" validate:"omitempty,object_id"`
	ZonePricing             models.ZonePricing      `json:"zonePricing" validate:"required,dive,keys,oneof=zoneA zoneB zoneC zoneD zoneE,endkeys"`
	Status                  models.RateCardStatus   `json:"status" validate:"omitempty,oneof=draft active inactive"`
	EffectiveDates          EffectiveDatesRequest   `json:"effectiveDates"`
	Category                string                  `json:"category" validate:"omitempty,max=100"`
	ShipmentType            models.ShipmentType     `json:"shipmentType" validate:"omitempty,oneof=forward reverse"`
	GST                     *float64                `json:"gst" validate:"omitempty,gte=0,lte=100"`
	MinimumFare             *float64                `json:"minimumFare" validate:"omitempty,gte=0"`
	MinimumFareCalculatedOn models.MinimumFareBasis `json:"minimumFareCalculatedOn" validate:"omitempty,oneof=freight freight_overhead"`
	ZoneBType               models.ZoneBType        `json:"zoneBType" validate:"omitempty,oneof=state distance"`
	CODPercentage           *float64                `json:"codPercentage" validate:"omitempty,gte=0,lte=100"`
	CODMinimumCharge        *float64                `json:"codMinimumCharge" validate:"omitempty,gte=0"`
	FuelSurcharge           *float64                `json:"fuelSurcharge" validate:"omitempty,gte=0"`
	FuelSurchargeBase       *float64                `json:"fuelSurchargeBase" validate:"omitempty,gte=0"`
}

// UpdateRateCardRequest is a partial patch: nil fields are left untouched.
type UpdateRateCardRequest struct {
	Name                    *string                  `json:"name" validate:"omitempty,min=1,max=200"`
	Scope                   *models.RateCardScope    `json:"scope" validate:"omitempty,oneof=global company"`
	CompanyID               *string                  `json:"companyId" validate:"omitempty,object_id"`
	ZonePricing             models.ZonePricing       `json:"zonePricing" validate:"omitempty,dive,keys,oneof=zoneA zoneB zoneC zoneD zoneE,endkeys"`
	Status                  *models.RateCardStatus   `json:"status" validate:"omitempty,oneof=draft active inactive"`
	EffectiveDates          *EffectiveDatesRequest   `json:"effectiveDates"`
	Category                *string                  `json:"category" validate:"omitempty,max=100"`
	ShipmentType            *models.ShipmentType     `json:"shipmentType" validate:"omitempty,oneof=forward reverse"`
	GST                     *float64                 `json:"gst" validate:"omitempty,gte=0,lte=100"`
	MinimumFare             *float64                 `json:"minimumFare" validate:"omitempty,gte=0"`
	MinimumFareCalculatedOn *models.MinimumFareBasis `json:"minimumFareCalculatedOn" validate:"omitempty,oneof=freight freight_overhead"`
	ZoneBType               *models.ZoneBType        `json:"zoneBType" validate:"omitempty,oneof=state distance"`
	CODPercentage           *float64                 `json:"codPercentage" validate:"omitempty,gte=0,lte=100"`
	CODMinimumCharge        *float64                 `json:"codMinimumCharge" validate:"omitempty,gte=0"`
	FuelSurcharge           *float64                 `json:"fuelSurcharge" validate:"omitempty,gte=0"`
	FuelSurchargeBase       *float64                 `json:"fuelSurchargeBase" validate:"omitempty,gte=0"`
	IsLocked                *bool                    `json:"isLocked"`
}

type BulkUpdateRequest struct {
	CompanyID       string                `json:"companyId" validate:"required,object_id"`
	RateCardIDs     []string              `json:"rateCardIds" validate:"required,min=1,max=500,dive,object_id"`
	Operation       models.BulkOperation  `json:"operation" validate:"required,oneof=activate deactivate adjust_price"`
	AdjustmentType  models.AdjustmentType `json:"adjustmentType" validate:"omitempty,oneof=percentage fixed"`
	AdjustmentValue *float64              `json:"adjustmentValue"`
}

type ListRateCardsQuery struct {
	Status    string `form:"status" validate:"omitempty,oneof=draft active inactive"`
	CompanyID string `form:"companyId" validate:"omitempty,object_id"`
	Scope     string `form:"scope" validate:"omitempty,oneof=global company"`
	Search    string `form:"search" validate:"omitempty,max=200"`
	Category  string `form:"category" validate:"omitempty,max=100"`
}

type RevenueSeriesQuery struct {
	StartDate   string `form:"startDate" validate:"omitempty,date"`
	EndDate     string `form:"endDate" validate:"omitempty,date"`
	Granularity string `form:"granularity" validate:"omitempty,oneof=day week month"`
}

// ValidateCreateRateCard collects schema and cross-field errors together.
func ValidateCreateRateCard(req *CreateRateCardRequest) error {
	errs := ValidateStruct(req)

	if req.ZonePricing != nil {
		checkZonePricing(&errs, req.ZonePricing)
	}
	checkDateRange(&errs, req.EffectiveDates.StartDate, req.EffectiveDates.EndDate)

	return errs.Err("invalid rate card")
}

func ValidateUpdateRateCard(req *UpdateRateCardRequest) error {
	errs := ValidateStruct(req)

	// zonePricing replaces the stored map whole, so a patch must carry every zone.
	if req.ZonePricing != nil {
		checkZonePricing(&errs, req.ZonePricing)
	}
	if req.EffectiveDates != nil {
		checkDateRange(&errs, req.EffectiveDates.StartDate, req.EffectiveDates.EndDate)
	}

	return errs.Err("invalid rate card update")
}

func ValidateBulkUpdate(req *BulkUpdateRequest) error {
	errs := ValidateStruct(req)

	if req.Operation == models.BulkOperationAdjustPrice {
		if req.AdjustmentType == "" {
			errs.Add("adjustmentType", "is required")
		}
		if req.AdjustmentValue == nil {
			errs.Add("adjustmentValue", "is required")
		}
	}

	return errs.Err("invalid bulk update")
}

// ToFilter validates the query and converts it into a store filter.
func (q *ListRateCardsQuery) ToFilter() (*models.RateCardFilter, error) {
	if err := ValidateStruct(q).Err("invalid filters"); err != nil {
		return nil, err
	}

	filter := &models.RateCardFilter{
		Status:   models.RateCardStatus(q.Status),
		Scope:    models.RateCardScope(q.Scope),
		Search:   strings.TrimSpace(q.Search),
		Category: strings.TrimSpace(q.Category),
	}
	if q.CompanyID != "" {
		id, _ := primitive.ObjectIDFromHex(q.CompanyID)
		filter.CompanyID = &id
	}
	return filter, nil
}

// EffectiveDates converts the validated request dates.
func (r *EffectiveDatesRequest) EffectiveDates() (models.EffectiveDates, error) {
	start, err := utils.ParseDate(r.StartDate)
	if err != nil {
		return models.EffectiveDates{}, err
	}
	dates := models.EffectiveDates{StartDate: start}
	if r.EndDate != "" {
		end, err := utils.ParseDate(r.EndDate)
		if err != nil {
			return models.EffectiveDates{}, err
		}
		dates.EndDate = &end
	}
	return dates, nil
}

// checkZonePricing requires all five zones and validates each zone's prices.
func checkZonePricing(errs *ValidationErrors, pricing models.ZonePricing) {
	if missing := pricing.MissingZones(); len(missing) > 0 {
		errs.Add("zonePricing", "missing zones: "+joinZones(missing))
	}
	for _, zone := range pricing.SortedZones() {
		price := pricing[zone]
		for _, fe := range ValidateStruct(&price) {
			errs.Add("zonePricing."+string(zone)+"."+fe.Field, fe.Message)
		}
	}
}

func checkDateRange(errs *ValidationErrors, start, end string) {
	if start == "" || end == "" {
		return
	}
	s, err1 := utils.ParseDate(start)
	e, err2 := utils.ParseDate(end)
	if err1 != nil || err2 != nil {
		return
	}
	if e.Before(s) {
		errs.Add("effectiveDates.endDate", "must not be before startDate")
	}
}

// ResolveRevenueWindow applies defaults: granularity day, window of the last
// 30 days ending now.
func (q *RevenueSeriesQuery) ResolveRevenueWindow(now time.Time) (time.Time, time.Time, models.Granularity, error) {
	if err := ValidateStruct(q).Err("invalid revenue series query"); err != nil {
		return time.Time{}, time.Time{}, "", err
	}

	granularity := models.Granularity(q.Granularity)
	if granularity == "" {
		granularity = models.GranularityDay
	}

	end := utils.EndOfDay(now.UTC())
	if q.EndDate != "" {
		parsed, _ := utils.ParseDate(q.EndDate)
		end = utils.EndOfDay(parsed)
	}
	start := utils.StartOfDay(end.AddDate(0, 0, -30))
	if q.StartDate != "" {
		parsed, _ := utils.ParseDate(q.StartDate)
		start = utils.StartOfDay(parsed)
	}

	if end.Before(start) {
		var errs ValidationErrors
		errs.Add("endDate", "must not be before startDate")
		return time.Time{}, time.Time{}, "", errs.Err("invalid revenue series query")
	}

	return start, end, granularity, nil
}

func joinZones(zones []models.Zone) string {
	names := make([]string, len(zones))
	for i, z := range zones {
		names[i] = string(z)
	}
	return strings.Join(names, ", ")
}

// MissingZonesMessage is shared by export, import and price adjustment.
func MissingZonesMessage(name string, missing []models.Zone) string {
	return fmt.Sprintf("rate card %q is missing pricing for %s", name, joinZones(missing))
}
