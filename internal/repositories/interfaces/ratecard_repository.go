package interfaces

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/models"
	"shipdesk/internal/utils"
)

// RateCardRepository reads and writes live (non-deleted) rate cards unless a
// method says otherwise.
type RateCardRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, card *models.RateCard) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.RateCard, error)
	Replace(ctx context.Context, card *models.RateCard) error
	SoftDelete(ctx context.Context, id primitive.ObjectID, deletedBy *primitive.ObjectID) error

	// Queries
	List(ctx context.Context, filter *models.RateCardFilter, params *utils.PaginationParams) ([]*models.RateCard, int64, error)
	ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.RateCard, error)
	GetByIDsForCompany(ctx context.Context, ids []primitive.ObjectID, companyID primitive.ObjectID) ([]*models.RateCard, error)
	FindByName(ctx context.Context, name string, companyID *primitive.ObjectID) (*models.RateCard, error)
	NameExists(ctx context.Context, name string, companyID *primitive.ObjectID, excludeID *primitive.ObjectID) (bool, error)

	// Batch writes
	SetStatusMany(ctx context.Context, ids []primitive.ObjectID, status models.RateCardStatus, updatedBy *primitive.ObjectID) (*models.BulkUpdateResult, error)
	SetZonePricingMany(ctx context.Context, pricing map[primitive.ObjectID]models.ZonePricing, updatedBy *primitive.ObjectID) (*models.BulkUpdateResult, error)

	// Statistics
	CountByStatus(ctx context.Context, companyID *primitive.ObjectID) (map[string]int64, error)
	CountByScope(ctx context.Context, companyID *primitive.ObjectID) (map[string]int64, error)
	Count(ctx context.Context, companyID *primitive.ObjectID) (int64, error)
	TopCompanies(ctx context.Context, limit int) ([]models.CompanyRateCardCount, error)
	AveragePerKgRate(ctx context.Context, companyID *primitive.ObjectID) (float64, error)
}
