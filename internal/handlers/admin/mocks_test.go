package admin

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipdesk/internal/models"
	"shipdesk/internal/services"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
)

type MockRateCardService struct {
	mock.Mock
}

func (m *MockRateCardService) List(ctx context.Context, filter *models.RateCardFilter, params *utils.PaginationParams) ([]*models.RateCardResponse, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.RateCardResponse), args.Get(1).(int64), args.Error(2)
}

func (m *MockRateCardService) GetByID(ctx context.Context, id string) (*models.RateCardResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCardResponse), args.Error(1)
}

func (m *MockRateCardService) Create(ctx context.Context, req *validators.CreateRateCardRequest, actor models.Actor) (*models.RateCardResponse, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCardResponse), args.Error(1)
}

func (m *MockRateCardService) Update(ctx context.Context, id string, req *validators.UpdateRateCardRequest, actor models.Actor) (*models.RateCardResponse, error) {
	args := m.Called(ctx, id, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCardResponse), args.Error(1)
}

func (m *MockRateCardService) Delete(ctx context.Context, id string, actor models.Actor) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

func (m *MockRateCardService) Clone(ctx context.Context, id string, actor models.Actor) (*models.RateCardResponse, error) {
	args := m.Called(ctx, id, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCardResponse), args.Error(1)
}

func (m *MockRateCardService) BulkUpdate(ctx context.Context, req *validators.BulkUpdateRequest, actor models.Actor) (*models.BulkUpdateResult, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkUpdateResult), args.Error(1)
}

type MockAssignmentService struct {
	mock.Mock
}

func (m *MockAssignmentService) Assign(ctx context.Context, req *validators.AssignRequest, actor models.Actor) (*models.Assignment, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Assignment), args.Error(1)
}

func (m *MockAssignmentService) Unassign(ctx context.Context, companyID string, actor models.Actor) error {
	args := m.Called(ctx, companyID, actor)
	return args.Error(0)
}

func (m *MockAssignmentService) BulkAssign(ctx context.Context, req *validators.BulkAssignRequest, actor models.Actor) (*models.BulkAssignResult, error) {
	args := m.Called(ctx, req, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BulkAssignResult), args.Error(1)
}

func (m *MockAssignmentService) ListAssignments(ctx context.Context, rateCardID string, params *utils.PaginationParams) ([]*models.AssignmentView, int64, error) {
	args := m.Called(ctx, rateCardID, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.AssignmentView), args.Get(1).(int64), args.Error(2)
}

type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Export(ctx context.Context, companyID string, format models.ExportFormat) (*models.ExportFile, error) {
	args := m.Called(ctx, companyID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExportFile), args.Error(1)
}

func (m *MockTransferService) Import(ctx context.Context, req *services.ImportRequest) (*models.ImportResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportResult), args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetStats(ctx context.Context, companyID string) (*models.RateCardStats, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCardStats), args.Error(1)
}

func (m *MockAnalyticsService) GetRateCardAnalytics(ctx context.Context, id string) (*models.RateCardAnalytics, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RateCardAnalytics), args.Error(1)
}

func (m *MockAnalyticsService) GetRevenueSeries(ctx context.Context, id string, query *validators.RevenueSeriesQuery) (*models.RevenueSeries, error) {
	args := m.Called(ctx, id, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RevenueSeries), args.Error(1)
}

func (m *MockAnalyticsService) GetHistory(ctx context.Context, id string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
}
