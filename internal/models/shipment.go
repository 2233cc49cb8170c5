package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ShipmentCharges struct {
	Freight float64 `json:"freight" bson:"freight"`
	COD     float64 `json:"cod" bson:"cod"`
	Total   float64 `json:"total" bson:"total"`
}

// Shipment is read-only here; it feeds revenue and usage analytics.
type Shipment struct {
	ID         primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CompanyID  primitive.ObjectID  `json:"companyId" bson:"company_id"`
	RateCardID *primitive.ObjectID `json:"rateCardId,omitempty" bson:"rate_card_id,omitempty"`
	Zone       Zone                `json:"zone" bson:"zone"`
	Weight     float64             `json:"weight" bson:"weight"`
	Status     string              `json:"status" bson:"status"`
	Charges    ShipmentCharges     `json:"charges" bson:"charges"`
	CreatedAt  time.Time           `json:"createdAt" bson:"created_at"`
}
