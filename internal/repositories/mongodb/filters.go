package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/models"
)

// buildRateCardFilter ANDs every populated filter field onto the live-card
// base filter. Search is a case-insensitive substring match on name.
func buildRateCardFilter(f *models.RateCardFilter) bson.M {
	filter := bson.M{"is_deleted": false}
	if f == nil {
		return filter
	}

	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CompanyID != nil {
		filter["company_id"] = *f.CompanyID
	}
	if f.Scope != "" {
		filter["scope"] = f.Scope
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}

	return filter
}

// companyMatch renders an optional company id; nil matches global cards.
func companyMatch(companyID *primitive.ObjectID) interface{} {
	if companyID == nil {
		return nil
	}
	return *companyID
}

func liveCards(companyID *primitive.ObjectID) bson.M {
	filter := bson.M{"is_deleted": false}
	if companyID != nil {
		filter["company_id"] = *companyID
	}
	return filter
}
