package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompanyRateCardCount struct {
	CompanyID   primitive.ObjectID `json:"companyId" bson:"_id"`
	CompanyName string             `json:"companyName" bson:"company_name"`
	Count       int64              `json:"count" bson:"count"`
}

type RateCardStats struct {
	Total            int64                  `json:"total"`
	ByStatus         map[string]int64       `json:"byStatus"`
	ByScope          map[string]int64       `json:"byScope"`
	TopCompanies     []CompanyRateCardCount `json:"topCompanies"`
	AveragePerKgRate float64                `json:"averagePerKgRate"`
	Revenue30Days    float64                `json:"revenue30Days"`
}

// RateCardUsage is the shipment-side aggregate for one rate card.
type RateCardUsage struct {
	ShipmentCount int64          `json:"shipmentCount" bson:"shipment_count"`
	TotalRevenue  float64        `json:"totalRevenue" bson:"total_revenue"`
	AverageCharge float64        `json:"averageCharge" bson:"average_charge"`
	LastUsedAt    *time.Time     `json:"lastUsedAt,omitempty" bson:"last_used_at"`
	ByZone        map[Zone]int64 `json:"byZone" bson:"-"`
}

type RateCardAnalytics struct {
	RateCardID        primitive.ObjectID `json:"rateCardId"`
	Name              string             `json:"name"`
	Status            RateCardStatus     `json:"status"`
	AssignedCompanies int64              `json:"assignedCompanies"`
	*RateCardUsage
}

type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

type RevenuePoint struct {
	Period    string  `json:"period" bson:"_id"`
	Revenue   float64 `json:"revenue" bson:"revenue"`
	Shipments int64   `json:"shipments" bson:"shipments"`
}

type RevenueSeries struct {
	RateCardID  primitive.ObjectID `json:"rateCardId"`
	Granularity Granularity        `json:"granularity"`
	StartDate   time.Time          `json:"startDate"`
	EndDate     time.Time          `json:"endDate"`
	Points      []RevenuePoint     `json:"points"`
}
