package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/models"
	"shipdesk/internal/utils"
)

type CompanyRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error)
	GetRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.CompanyRef, error)
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)

	// Default rate card assignment
	SetDefaultRateCard(ctx context.Context, companyID primitive.ObjectID, rateCardID *primitive.ObjectID) error
	BulkSetDefaultRateCard(ctx context.Context, assignments []models.Assignment) (*models.BulkAssignResult, error)
	ListAssignments(ctx context.Context, rateCardID *primitive.ObjectID, params *utils.PaginationParams) ([]*models.AssignmentView, int64, error)
	CountByDefaultRateCard(ctx context.Context, rateCardID primitive.ObjectID) (int64, error)

	// Groups
	GetGroupMemberIDs(ctx context.Context, groupIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
}
