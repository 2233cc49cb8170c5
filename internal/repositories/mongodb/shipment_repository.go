package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shipdesk/internal/models"
	"shipdesk/internal/repositories/interfaces"
	"shipdesk/pkg/database"
)

type shipmentRepository struct {
	collection *mongo.Collection
}

func NewShipmentRepository(db *mongo.Database) interfaces.ShipmentRepository {
	return &shipmentRepository{
		collection: db.Collection(database.CollectionShipments),
	}
}

// RevenueSince sums charges.total over shipments created at or after since.
func (r *shipmentRepository) RevenueSince(ctx context.Context, since time.Time, companyID *primitive.ObjectID) (float64, error) {
	match := bson.M{"created_at": bson.M{"$gte": since}}
	if companyID != nil {
		match["company_id"] = *companyID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"revenue": bson.M{"$sum": "$charges.total"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Revenue float64 `bson:"revenue"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode revenue: %w", err)
		}
	}

	return result.Revenue, cursor.Err()
}

func (r *shipmentRepository) UsageByRateCard(ctx context.Context, rateCardID primitive.ObjectID) (*models.RateCardUsage, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"rate_card_id": rateCardID}}},
		{{Key: "$facet", Value: bson.M{
			"summary": bson.A{
				bson.M{"$group": bson.M{
					"_id":            nil,
					"shipment_count": bson.M{"$sum": 1},
					"total_revenue":  bson.M{"$sum": "$charges.total"},
					"average_charge": bson.M{"$avg": "$charges.total"},
					"last_used_at":   bson.M{"$max": "$created_at"},
				}},
			},
			"by_zone": bson.A{
				bson.M{"$group": bson.M{"_id": "$zone", "count": bson.M{"$sum": 1}}},
			},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rate card usage: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Summary []models.RateCardUsage `bson:"summary"`
		ByZone  []struct {
			Zone  models.Zone `bson:"_id"`
			Count int64       `bson:"count"`
		} `bson:"by_zone"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode rate card usage: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	usage := &models.RateCardUsage{}
	if len(result.Summary) > 0 {
		*usage = result.Summary[0]
	}
	usage.ByZone = make(map[models.Zone]int64, len(result.ByZone))
	for _, z := range result.ByZone {
		if z.Zone.IsValid() {
			usage.ByZone[z.Zone] = z.Count
		}
	}

	return usage, nil
}

// RevenueSeries buckets a card's shipments by UTC day, ISO week or month.
func (r *shipmentRepository) RevenueSeries(ctx context.Context, rateCardID primitive.ObjectID, start, end time.Time, granularity models.Granularity) ([]models.RevenuePoint, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"rate_card_id": rateCardID,
			"created_at":   bson.M{"$gte": start, "$lte": end},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format": revenueDateFormat(granularity),
				"date":   "$created_at",
			}},
			"revenue":   bson.M{"$sum": "$charges.total"},
			"shipments": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue series: %w", err)
	}
	defer cursor.Close(ctx)

	points := []models.RevenuePoint{}
	if err := cursor.All(ctx, &points); err != nil {
		return nil, fmt.Errorf("failed to decode revenue series: %w", err)
	}

	return points, nil
}

func revenueDateFormat(granularity models.Granularity) string {
	switch granularity {
	case models.GranularityWeek:
		return "%G-W%V"
	case models.GranularityMonth:
		return "%Y-%m"
	default:
		return "%Y-%m-%d"
	}
}
