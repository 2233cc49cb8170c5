package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/models"
	"shipdesk/internal/utils"
)

// MockRateCardRepository is a mock type for the RateCardRepository interface
type MockRateCardRepository struct {
	mock.Mock
}

func (m *MockRateCardRepository) Create(ctx context.Context, card *models.RateCard) error {
	args := m.Called(ctx, card)
	if args.Error(0) == nil && card.ID.IsZero() {
		card.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *MockRateCardRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.RateCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCard), args.Error(1)
}

func (m *MockRateCardRepository) Replace(ctx context.Context, card *models.RateCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockRateCardRepository) SoftDelete(ctx context.Context, id primitive.ObjectID, deletedBy *primitive.ObjectID) error {
	args := m.Called(ctx, id, deletedBy)
	return args.Error(0)
}

func (m *MockRateCardRepository) List(ctx context.Context, filter *models.RateCardFilter, params *utils.PaginationParams) ([]*models.RateCard, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.RateCard), args.Get(1).(int64), args.Error(2)
}

func (m *MockRateCardRepository) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.RateCard, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RateCard), args.Error(1)
}

func (m *MockRateCardRepository) GetByIDsForCompany(ctx context.Context, ids []primitive.ObjectID, companyID primitive.ObjectID) ([]*models.RateCard, error) {
	args := m.Called(ctx, ids, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RateCard), args.Error(1)
}

func (m *MockRateCardRepository) FindByName(ctx context.Context, name string, companyID *primitive.ObjectID) (*models.RateCard, error) {
	args := m.Called(ctx, name, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCard), args.Error(1)
}

func (m *MockRateCardRepository) NameExists(ctx context.Context, name string, companyID *primitive.ObjectID, excludeID *primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, name, companyID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateCardRepository) SetStatusMany(ctx context.Context, ids []primitive.ObjectID, status models.RateCardStatus, updatedBy *primitive.ObjectID) (*models.BulkUpdateResult, error) {
	args := m.Called(ctx, ids, status, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkUpdateResult), args.Error(1)
}

func (m *MockRateCardRepository) SetZonePricingMany(ctx context.Context, pricing map[primitive.ObjectID]models.ZonePricing, updatedBy *primitive.ObjectID) (*models.BulkUpdateResult, error) {
	args := m.Called(ctx, pricing, updatedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkUpdateResult), args.Error(1)
}

func (m *MockRateCardRepository) CountByStatus(ctx context.Context, companyID *primitive.ObjectID) (map[string]int64, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockRateCardRepository) CountByScope(ctx context.Context, companyID *primitive.ObjectID) (map[string]int64, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockRateCardRepository) Count(ctx context.Context, companyID *primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateCardRepository) TopCompanies(ctx context.Context, limit int) ([]models.CompanyRateCardCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CompanyRateCardCount), args.Error(1)
}

func (m *MockRateCardRepository) AveragePerKgRate(ctx context.Context, companyID *primitive.ObjectID) (float64, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).(float64), args.Error(1)
}

// MockCompanyRepository is a mock type for the CompanyRepository interface
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Company), args.Error(1)
}

func (m *MockCompanyRepository) GetRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.CompanyRef, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[primitive.ObjectID]*models.CompanyRef), args.Error(1)
}

func (m *MockCompanyRepository) ExistingIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

func (m *MockCompanyRepository) SetDefaultRateCard(ctx context.Context, companyID primitive.ObjectID, rateCardID *primitive.ObjectID) error {
	args := m.Called(ctx, companyID, rateCardID)
	return args.Error(0)
}

func (m *MockCompanyRepository) BulkSetDefaultRateCard(ctx context.Context, assignments []models.Assignment) (*models.BulkAssignResult, error) {
	args := m.Called(ctx, assignments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkAssignResult), args.Error(1)
}

func (m *MockCompanyRepository) ListAssignments(ctx context.Context, rateCardID *primitive.ObjectID, params *utils.PaginationParams) ([]*models.AssignmentView, int64, error) {
	args := m.Called(ctx, rateCardID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.AssignmentView), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepository) CountByDefaultRateCard(ctx context.Context, rateCardID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, rateCardID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCompanyRepository) GetGroupMemberIDs(ctx context.Context, groupIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, groupIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

// MockShipmentRepository is a mock type for the ShipmentRepository interface
type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) RevenueSince(ctx context.Context, since time.Time, companyID *primitive.ObjectID) (float64, error) {
	args := m.Called(ctx, since, companyID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockShipmentRepository) UsageByRateCard(ctx context.Context, rateCardID primitive.ObjectID) (*models.RateCardUsage, error) {
	args := m.Called(ctx, rateCardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCardUsage), args.Error(1)
}

func (m *MockShipmentRepository) RevenueSeries(ctx context.Context, rateCardID primitive.ObjectID, start, end time.Time, granularity models.Granularity) ([]models.RevenuePoint, error) {
	args := m.Called(ctx, rateCardID, start, end, granularity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RevenuePoint), args.Error(1)
}

// MockAuditLogRepository is a mock type for the AuditLogRepository interface
type MockAuditLogRepository struct {
	mock.Mock
}

func (m *MockAuditLogRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogRepository) GetResourceHistory(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, resource, resourceID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}

// recordingAudit keeps every entry instead of persisting it.
type recordingAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, entry AuditEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) actions() []models.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]models.AuditAction, len(r.entries))
	for i, e := range r.entries {
		actions[i] = e.Action
	}
	return actions
}

type recordingEvents struct {
	mu     sync.Mutex
	events []*models.RateCardEvent
}

func (r *recordingEvents) Publish(_ context.Context, event *models.RateCardEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingEvents) types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]models.EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func completeCard(name string, companyID *primitive.ObjectID) *models.RateCard {
	scope := models.RateCardScopeGlobal
	if companyID != nil {
		scope = models.RateCardScopeCompany
	}
	return &models.RateCard{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Scope:       scope,
		CompanyID:   companyID,
		ZonePricing: fullPricing(),
		Status:      models.RateCardStatusActive,
		EffectiveDates: models.EffectiveDates{
			StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		Category: "surface",
		Version:  1,
	}
}
