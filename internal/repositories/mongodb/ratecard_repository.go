package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
	"shipdesk/internal/repositories/interfaces"
	"shipdesk/internal/utils"
	"shipdesk/pkg/database"
)

type rateCardRepository struct {
	collection *mongo.Collection
	cache      CacheService
	cacheTTL   time.Duration
}

func NewRateCardRepository(db *mongo.Database, cache CacheService, cacheTTL time.Duration) interfaces.RateCardRepository {
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}
	return &rateCardRepository{
		collection: db.Collection(database.CollectionRateCards),
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

// Basic CRUD operations
func (r *rateCardRepository) Create(ctx context.Context, card *models.RateCard) error {
	now := time.Now().UTC()
	card.ID = primitive.NewObjectID()
	card.CreatedAt = now
	card.UpdatedAt = now
	card.IsDeleted = false
	card.DeletedAt = nil
	if card.Version < 1 {
		card.Version = 1
	}

	_, err := r.collection.InsertOne(ctx, card)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("rate card with name %q already exists for this company", card.Name)
		}
		return fmt.Errorf("failed to create rate card: %w", err)
	}

	return nil
}

func (r *rateCardRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RateCard, error) {
	if r.cache != nil {
		var cached models.RateCard
		if err := r.cache.Get(ctx, rateCardCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	var card models.RateCard
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("rate card")
		}
		return nil, fmt.Errorf("failed to get rate card: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.Set(ctx, rateCardCacheKey(id), &card, r.cacheTTL)
	}

	return &card, nil
}

// Replace overwrites a live card with the given document.
func (r *rateCardRepository) Replace(ctx context.Context, card *models.RateCard) error {
	card.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": card.ID, "is_deleted": false}, card)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("rate card with name %q already exists for this company", card.Name)
		}
		return fmt.Errorf("failed to update rate card: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("rate card")
	}

	r.invalidate(ctx, card.ID)
	return nil
}

func (r *rateCardRepository) SoftDelete(ctx context.Context, id primitive.ObjectID, deletedBy *primitive.ObjectID) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
			"updated_by": deletedBy,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": false}, update)
	if err != nil {
		return fmt.Errorf("failed to delete rate card: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("rate card")
	}

	r.invalidate(ctx, id)
	return nil
}

// Queries
func (r *rateCardRepository) List(ctx context.Context, filter *models.RateCardFilter, params *utils.PaginationParams) ([]*models.RateCard, int64, error) {
	query := buildRateCardFilter(filter)

	var (
		total int64
		cards []*models.RateCard
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		count, err := r.collection.CountDocuments(gctx, query)
		if err != nil {
			return fmt.Errorf("failed to count rate cards: %w", err)
		}
		total = count
		return nil
	})
	g.Go(func() error {
		found, err := r.find(gctx, query, params.GetSortOptions())
		if err != nil {
			return err
		}
		cards = found
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return cards, total, nil
}

func (r *rateCardRepository) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.RateCard, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return r.find(ctx, liveCards(&companyID), opts)
}

func (r *rateCardRepository) GetByIDsForCompany(ctx context.Context, ids []primitive.ObjectID, companyID primitive.ObjectID) ([]*models.RateCard, error) {
	if len(ids) == 0 {
		return []*models.RateCard{}, nil
	}

	filter := liveCards(&companyID)
	filter["_id"] = bson.M{"$in": ids}
	return r.find(ctx, filter, options.Find())
}

func (r *rateCardRepository) FindByName(ctx context.Context, name string, companyID *primitive.ObjectID) (*models.RateCard, error) {
	filter := bson.M{
		"name":       name,
		"company_id": companyMatch(companyID),
		"is_deleted": false,
	}

	var card models.RateCard
	if err := r.collection.FindOne(ctx, filter).Decode(&card); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("rate card")
		}
		return nil, fmt.Errorf("failed to find rate card by name: %w", err)
	}

	return &card, nil
}

func (r *rateCardRepository) NameExists(ctx context.Context, name string, companyID *primitive.ObjectID, excludeID *primitive.ObjectID) (bool, error) {
	filter := bson.M{
		"name":       name,
		"company_id": companyMatch(companyID),
		"is_deleted": false,
	}
	if excludeID != nil {
		filter["_id"] = bson.M{"$ne": *excludeID}
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check rate card name: %w", err)
	}

	return count > 0, nil
}

// Batch writes
func (r *rateCardRepository) SetStatusMany(ctx context.Context, ids []primitive.ObjectID, status models.RateCardStatus, updatedBy *primitive.ObjectID) (*models.BulkUpdateResult, error) {
	filter := bson.M{"_id": bson.M{"$in": ids}, "is_deleted": false}
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
			"updated_by": updatedBy,
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update rate card status: %w", err)
	}

	r.invalidate(ctx, ids...)
	return &models.BulkUpdateResult{
		Matched:  result.MatchedCount,
		Modified: result.ModifiedCount,
	}, nil
}

func (r *rateCardRepository) SetZonePricingMany(ctx context.Context, pricing map[primitive.ObjectID]models.ZonePricing, updatedBy *primitive.ObjectID) (*models.BulkUpdateResult, error) {
	if len(pricing) == 0 {
		return &models.BulkUpdateResult{}, nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(pricing))
	ids := make([]primitive.ObjectID, 0, len(pricing))
	for id, zones := range pricing {
		ids = append(ids, id)
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "is_deleted": false}).
			SetUpdate(bson.M{"$set": bson.M{
				"zone_pricing": zones,
				"updated_at":   now,
				"updated_by":   updatedBy,
			}}))
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("failed to update rate card pricing: %w", err)
	}

	r.invalidate(ctx, ids...)
	return &models.BulkUpdateResult{
		Matched:  result.MatchedCount,
		Modified: result.ModifiedCount,
	}, nil
}

// Statistics
func (r *rateCardRepository) CountByStatus(ctx context.Context, companyID *primitive.ObjectID) (map[string]int64, error) {
	return r.countBy(ctx, "$status", liveCards(companyID))
}

func (r *rateCardRepository) CountByScope(ctx context.Context, companyID *primitive.ObjectID) (map[string]int64, error) {
	return r.countBy(ctx, "$scope", liveCards(companyID))
}

func (r *rateCardRepository) Count(ctx context.Context, companyID *primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, liveCards(companyID))
	if err != nil {
		return 0, fmt.Errorf("failed to count rate cards: %w", err)
	}
	return count, nil
}

func (r *rateCardRepository) TopCompanies(ctx context.Context, limit int) ([]models.CompanyRateCardCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"is_deleted": false, "company_id": bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{"_id": "$company_id", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.CollectionCompanies,
			"localField":   "_id",
			"foreignField": "_id",
			"as":           "company",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$company", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$project", Value: bson.M{
			"count":        1,
			"company_name": bson.M{"$ifNull": bson.A{"$company.name", ""}}},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top companies: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.CompanyRateCardCount{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode top companies: %w", err)
	}

	return results, nil
}

// AveragePerKgRate averages additional_price_per_kg over every zone of every
// active card.
func (r *rateCardRepository) AveragePerKgRate(ctx context.Context, companyID *primitive.ObjectID) (float64, error) {
	match := liveCards(companyID)
	match["status"] = models.RateCardStatusActive

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$project", Value: bson.M{"zones": bson.M{"$objectToArray": "$zone_pricing"}}}},
		{{Key: "$unwind", Value: "$zones"}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"avg": bson.M{"$avg": "$zones.v.additional_price_per_kg"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate per-kg rate: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Avg float64 `bson:"avg"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode per-kg rate: %w", err)
		}
	}

	return result.Avg, cursor.Err()
}

// Helper methods
func (r *rateCardRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.RateCard, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rate cards: %w", err)
	}
	defer cursor.Close(ctx)

	cards := []*models.RateCard{}
	for cursor.Next(ctx) {
		var card models.RateCard
		if err := cursor.Decode(&card); err != nil {
			return nil, fmt.Errorf("failed to decode rate card: %w", err)
		}
		cards = append(cards, &card)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return cards, nil
}

func (r *rateCardRepository) countBy(ctx context.Context, field string, match bson.M) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": field, "count": bson.M{"$sum": 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate rate cards by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			Key   string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode rate card count: %w", err)
		}
		counts[row.Key] = row.Count
	}

	return counts, cursor.Err()
}

func (r *rateCardRepository) invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	if r.cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = rateCardCacheKey(id)
	}
	_ = r.cache.Delete(ctx, keys...)
}

func rateCardCacheKey(id primitive.ObjectID) string {
	return "ratecard:" + id.Hex()
}
