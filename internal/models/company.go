package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompanySettings struct {
	DefaultRateCardID *primitive.ObjectID `json:"defaultRateCardId,omitempty" bson:"default_rate_card_id,omitempty"`
}

type Company struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Name      string              `json:"name" bson:"name"`
	Email     string              `json:"email,omitempty" bson:"email,omitempty"`
	Status    string              `json:"status,omitempty" bson:"status,omitempty"`
	GroupID   *primitive.ObjectID `json:"groupId,omitempty" bson:"group_id,omitempty"`
	Settings  CompanySettings     `json:"settings" bson:"settings"`
	CreatedAt time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time           `json:"updatedAt" bson:"updated_at"`
}

type CompanyGroup struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name       string               `json:"name" bson:"name"`
	CompanyIDs []primitive.ObjectID `json:"companyIds" bson:"company_ids"`
	CreatedAt  time.Time            `json:"createdAt" bson:"created_at"`
}

// Assignment sets one company's default rate card.
type Assignment struct {
	CompanyID  primitive.ObjectID
	RateCardID primitive.ObjectID
}

// AssignmentView is a company that currently has a default rate card, joined
// to that card.
type AssignmentView struct {
	CompanyID      primitive.ObjectID `json:"companyId" bson:"company_id"`
	CompanyName    string             `json:"companyName" bson:"company_name"`
	CompanyEmail   string             `json:"companyEmail,omitempty" bson:"company_email,omitempty"`
	RateCardID     primitive.ObjectID `json:"rateCardId" bson:"rate_card_id"`
	RateCardName   string             `json:"rateCardName" bson:"rate_card_name"`
	RateCardStatus RateCardStatus     `json:"rateCardStatus" bson:"rate_card_status"`
	RateCardScope  RateCardScope      `json:"rateCardScope" bson:"rate_card_scope"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updated_at"`
}

type BulkAssignResult struct {
	Matched      int64 `json:"matched"`
	Modified     int64 `json:"modified"`
	CompanyCount int   `json:"companyCount"`
}
