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

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
	"shipdesk/internal/repositories/interfaces"
	"shipdesk/internal/utils"
	"shipdesk/pkg/database"
)

const defaultRateCardField = "settings.default_rate_card_id"

type companyRepository struct {
	collection *mongo.Collection
	groups     *mongo.Collection
}

func NewCompanyRepository(db *mongo.Database) interfaces.CompanyRepository {
	return &companyRepository{
		collection: db.Collection(database.CollectionCompanies),
		groups:     db.Collection(database.CollectionCompanyGroups),
	}
}

func (r *companyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	var company models.Company
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&company)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("company")
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return &company, nil
}

func (r *companyRepository) GetRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.CompanyRef, error) {
	refs := make(map[primitive.ObjectID]*models.CompanyRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	opts := options.Find().SetProjection(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get companies: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var ref models.CompanyRef
		if err := cursor.Decode(&ref); err != nil {
			return nil, fmt.Errorf("failed to decode company: %w", err)
		}
		refs[ref.ID] = &ref
	}

	return refs, cursor.Err()
}

func (r *companyRepository) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	refs, err := r.GetRefs(ctx, ids)
	if err != nil {
		return nil, err
	}

	existing := make([]primitive.ObjectID, 0, len(refs))
	for _, id := range ids {
		if _, ok := refs[id]; ok {
			existing = append(existing, id)
		}
	}
	return existing, nil
}

// SetDefaultRateCard sets the company's default card, or clears it when
// rateCardID is nil.
func (r *companyRepository) SetDefaultRateCard(ctx context.Context, companyID primitive.ObjectID, rateCardID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if rateCardID != nil {
		update["$set"].(bson.M)[defaultRateCardField] = *rateCardID
	} else {
		update["$unset"] = bson.M{defaultRateCardField: ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": companyID}, update)
	if err != nil {
		return fmt.Errorf("failed to set default rate card: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("company")
	}

	return nil
}

func (r *companyRepository) BulkSetDefaultRateCard(ctx context.Context, assignments []models.Assignment) (*models.BulkAssignResult, error) {
	if len(assignments) == 0 {
		return &models.BulkAssignResult{}, nil
	}

	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(assignments))
	companies := make(map[primitive.ObjectID]struct{}, len(assignments))
	for _, a := range assignments {
		companies[a.CompanyID] = struct{}{}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": a.CompanyID}).
			SetUpdate(bson.M{"$set": bson.M{
				defaultRateCardField: a.RateCardID,
				"updated_at":         now,
			}}))
	}

	result, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("failed to bulk assign rate cards: %w", err)
	}

	return &models.BulkAssignResult{
		Matched:      result.MatchedCount,
		Modified:     result.ModifiedCount,
		CompanyCount: len(companies),
	}, nil
}

// ListAssignments pages over companies whose default card still resolves to
// a live rate card.
func (r *companyRepository) ListAssignments(ctx context.Context, rateCardID *primitive.ObjectID, params *utils.PaginationParams) ([]*models.AssignmentView, int64, error) {
	match := bson.M{defaultRateCardField: bson.M{"$exists": true, "$ne": nil}}
	if rateCardID != nil {
		match[defaultRateCardField] = *rateCardID
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.CollectionRateCards,
			"localField":   defaultRateCardField,
			"foreignField": "_id",
			"as":           "card",
		}}},
		{{Key: "$unwind", Value: "$card"}},
		{{Key: "$match", Value: bson.M{"card.is_deleted": false}}},
		{{Key: "$facet", Value: bson.M{
			"items": bson.A{
				bson.M{"$sort": bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}},
				bson.M{"$skip": params.GetSkip()},
				bson.M{"$limit": params.GetLimit()},
				bson.M{"$project": bson.M{
					"_id":              0,
					"company_id":       "$_id",
					"company_name":     "$name",
					"company_email":    "$email",
					"rate_card_id":     "$card._id",
					"rate_card_name":   "$card.name",
					"rate_card_status": "$card.status",
					"rate_card_scope":  "$card.scope",
					"updated_at":       "$updated_at",
				}},
			},
			"total": bson.A{bson.M{"$count": "count"}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer cursor.Close(ctx)

	var page struct {
		Items []*models.AssignmentView `bson:"items"`
		Total []struct {
			Count int64 `bson:"count"`
		} `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&page); err != nil {
			return nil, 0, fmt.Errorf("failed to decode assignments: %w", err)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}

	var total int64
	if len(page.Total) > 0 {
		total = page.Total[0].Count
	}
	if page.Items == nil {
		page.Items = []*models.AssignmentView{}
	}

	return page.Items, total, nil
}

func (r *companyRepository) CountByDefaultRateCard(ctx context.Context, rateCardID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{defaultRateCardField: rateCardID})
	if err != nil {
		return 0, fmt.Errorf("failed to count assigned companies: %w", err)
	}
	return count, nil
}

// GetGroupMemberIDs returns the de-duplicated union of the groups' members.
func (r *companyRepository) GetGroupMemberIDs(ctx context.Context, groupIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(groupIDs) == 0 {
		return []primitive.ObjectID{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"company_ids": 1})
	cursor, err := r.groups.Find(ctx, bson.M{"_id": bson.M{"$in": groupIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get company groups: %w", err)
	}
	defer cursor.Close(ctx)

	var groups []models.CompanyGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode company groups: %w", err)
	}

	members := make([]primitive.ObjectID, 0)
	seen := make(map[primitive.ObjectID]struct{})
	for _, group := range groups {
		for _, id := range group.CompanyIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			members = append(members, id)
		}
	}

	return members, nil
}
