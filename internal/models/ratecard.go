package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RateCardScope string

const (
	RateCardScopeGlobal  RateCardScope = "global"
	RateCardScopeCompany RateCardScope = "company"
)

type RateCardStatus string

const (
	RateCardStatusDraft    RateCardStatus = "draft"
	RateCardStatusActive   RateCardStatus = "active"
	RateCardStatusInactive RateCardStatus = "inactive"
)

type ShipmentType string

const (
	ShipmentTypeForward ShipmentType = "forward"
	ShipmentTypeReverse ShipmentType = "reverse"
)

type MinimumFareBasis string

const (
	MinimumFareOnFreight         MinimumFareBasis = "freight"
	MinimumFareOnFreightOverhead MinimumFareBasis = "freight_overhead"
)

type ZoneBType string

const (
	ZoneBTypeState    ZoneBType = "state"
	ZoneBTypeDistance ZoneBType = "distance"
)

// Zone is one of the five fixed destination pricing tiers.
type Zone string

const (
	ZoneA Zone = "zoneA"
	ZoneB Zone = "zoneB"
	ZoneC Zone = "zoneC"
	ZoneD Zone = "zoneD"
	ZoneE Zone = "zoneE"
)

// Zones lists every zone in export order.
var Zones = []Zone{ZoneA, ZoneB, ZoneC, ZoneD, ZoneE}

// Letter returns the single-letter label used in CSV files.
func (z Zone) Letter() string {
	return strings.TrimPrefix(string(z), "zone")
}

func (z Zone) IsValid() bool {
	for _, known := range Zones {
		if z == known {
			return true
		}
	}
	return false
}

// ParseZone accepts "A", "zoneA" or "Zone A" in any case.
func ParseZone(s string) (Zone, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimPrefix(s, "ZONE"))
	s = strings.TrimPrefix(s, "_")
	if len(s) != 1 {
		return "", false
	}
	zone := Zone("zone" + s)
	return zone, zone.IsValid()
}

type ZonePrice struct {
	BaseWeight           float64 `json:"baseWeight" bson:"base_weight" validate:"gte=0"`
	BasePrice            float64 `json:"basePrice" bson:"base_price" validate:"gte=0"`
	AdditionalPricePerKg float64 `json:"additionalPricePerKg" bson:"additional_price_per_kg" validate:"gte=0"`
}

type ZonePricing map[Zone]ZonePrice

// MissingZones returns the zones with no pricing entry, in zone order.
func (z ZonePricing) MissingZones() []Zone {
	var missing []Zone
	for _, zone := range Zones {
		if _, ok := z[zone]; !ok {
			missing = append(missing, zone)
		}
	}
	return missing
}

func (z ZonePricing) IsComplete() bool {
	return len(z.MissingZones()) == 0
}

func (z ZonePricing) Copy() ZonePricing {
	if z == nil {
		return nil
	}
	out := make(ZonePricing, len(z))
	for k, v := range z {
		out[k] = v
	}
	return out
}

// SortedZones returns the present zones in zone order.
func (z ZonePricing) SortedZones() []Zone {
	zones := make([]Zone, 0, len(z))
	for zone := range z {
		zones = append(zones, zone)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i] < zones[j] })
	return zones
}

type EffectiveDates struct {
	StartDate time.Time  `json:"startDate" bson:"start_date"`
	EndDate   *time.Time `json:"endDate,omitempty" bson:"end_date,omitempty"`
}

type RateCard struct {
	ID                      primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name                    string              `json:"name" bson:"name"`
	Scope                   RateCardScope       `json:"scope" bson:"scope"`
	CompanyID               *primitive.ObjectID `json:"companyId,omitempty" bson:"company_id"`
	ZonePricing             ZonePricing         `json:"zonePricing" bson:"zone_pricing"`
	Status                  RateCardStatus      `json:"status" bson:"status"`
	EffectiveDates          EffectiveDates      `json:"effectiveDates" bson:"effective_dates"`
	Category                string              `json:"category,omitempty" bson:"category,omitempty"`
	ShipmentType            ShipmentType        `json:"shipmentType,omitempty" bson:"shipment_type,omitempty"`
	GST                     *float64            `json:"gst,omitempty" bson:"gst,omitempty"`
	MinimumFare             *float64            `json:"minimumFare,omitempty" bson:"minimum_fare,omitempty"`
	MinimumFareCalculatedOn MinimumFareBasis    `json:"minimumFareCalculatedOn,omitempty" bson:"minimum_fare_calculated_on,omitempty"`
	ZoneBType               ZoneBType           `json:"zoneBType,omitempty" bson:"zone_b_type,omitempty"`
	CODPercentage           *float64            `json:"codPercentage,omitempty" bson:"cod_percentage,omitempty"`
	CODMinimumCharge        *float64            `json:"codMinimumCharge,omitempty" bson:"cod_minimum_charge,omitempty"`
	FuelSurcharge           *float64            `json:"fuelSurcharge,omitempty" bson:"fuel_surcharge,omitempty"`
	FuelSurchargeBase       *float64            `json:"fuelSurchargeBase,omitempty" bson:"fuel_surcharge_base,omitempty"`
	Version                 int                 `json:"version" bson:"version"`
	IsLocked                bool                `json:"isLocked" bson:"is_locked"`
	IsDeleted               bool                `json:"-" bson:"is_deleted"`
	CreatedBy               *primitive.ObjectID `json:"createdBy,omitempty" bson:"created_by,omitempty"`
	UpdatedBy               *primitive.ObjectID `json:"updatedBy,omitempty" bson:"updated_by,omitempty"`
	CreatedAt               time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt               time.Time           `json:"updatedAt" bson:"updated_at"`
	DeletedAt               *time.Time          `json:"-" bson:"deleted_at,omitempty"`
}

// CloneAsDraft copies every pricing field into a new, unsaved draft card.
func (r *RateCard) CloneAsDraft() *RateCard {
	clone := *r
	clone.ID = primitive.NilObjectID
	clone.Name = r.Name + " (Copy)"
	clone.Status = RateCardStatusDraft
	clone.ZonePricing = r.ZonePricing.Copy()
	clone.IsDeleted = false
	clone.DeletedAt = nil
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	clone.CreatedBy = nil
	clone.UpdatedBy = nil
	if r.EffectiveDates.EndDate != nil {
		end := *r.EffectiveDates.EndDate
		clone.EffectiveDates.EndDate = &end
	}
	return &clone
}

// CompanyKey renders the owning company for audit entries.
func (r *RateCard) CompanyKey() string {
	if r.CompanyID == nil {
		return AuditCompanyGlobal
	}
	return r.CompanyID.Hex()
}

type CompanyRef struct {
	ID   primitive.ObjectID `json:"id" bson:"_id"`
	Name string             `json:"name" bson:"name"`
}

// RateCardResponse is a rate card with its owning company resolved for display.
type RateCardResponse struct {
	*RateCard
	Company *CompanyRef `json:"company,omitempty"`
}

type RateCardFilter struct {
	Status    RateCardStatus
	CompanyID *primitive.ObjectID
	Scope     RateCardScope
	Search    string
	Category  string
}

type BulkOperation string

const (
	BulkOperationActivate    BulkOperation = "activate"
	BulkOperationDeactivate  BulkOperation = "deactivate"
	BulkOperationAdjustPrice BulkOperation = "adjust_price"
)

type AdjustmentType string

const (
	AdjustmentPercentage AdjustmentType = "percentage"
	AdjustmentFixed      AdjustmentType = "fixed"
)

type BulkUpdateResult struct {
	Operation BulkOperation `json:"operation"`
	Matched   int64         `json:"matched"`
	Modified  int64         `json:"modified"`
}

// Actor identifies who performed a mutation.
type Actor struct {
	UserID    *primitive.ObjectID
	IPAddress string
	UserAgent string
}
