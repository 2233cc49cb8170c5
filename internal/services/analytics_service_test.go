package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/apperrors"
	"shipdesk/internal/models"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
)

type AnalyticsServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	cards     *MockRateCardRepository
	companies *MockCompanyRepository
	shipments *MockShipmentRepository
	audits    *MockAuditLogRepository
	service   *analyticsService
	now       time.Time
}

func (s *AnalyticsServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.cards = new(MockRateCardRepository)
	s.companies = new(MockCompanyRepository)
	s.shipments = new(MockShipmentRepository)
	s.audits = new(MockAuditLogRepository)
	s.now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	svc := NewAnalyticsService(s.cards, s.companies, s.shipments, s.audits)
	s.service = svc.(*analyticsService)
	s.service.now = func() time.Time { return s.now }
}

func (s *AnalyticsServiceTestSuite) TestGetStats_ScopedToCompany() {
	companyID := primitive.NewObjectID()
	top := []models.CompanyRateCardCount{{CompanyID: companyID, CompanyName: "Acme", Count: 4}}

	s.cards.On("CountByStatus", mock.Anything, &companyID).Return(map[string]int64{"active": 3, "draft": 1}, nil).Once()
	s.cards.On("Count", mock.Anything, &companyID).Return(int64(4), nil).Once()
	s.cards.On("CountByScope", mock.Anything, &companyID).Return(map[string]int64{"company": 4}, nil).Once()
	s.cards.On("TopCompanies", mock.Anything, 10).Return(top, nil).Once()
	s.cards.On("AveragePerKgRate", mock.Anything, &companyID).Return(26.5, nil).Once()
	s.shipments.On("RevenueSince", mock.Anything, s.now.Add(-30*24*time.Hour), &companyID).Return(1250.75, nil).Once()

	stats, err := s.service.GetStats(s.ctx, companyID.Hex())

	s.Require().NoError(err)
	s.Equal(int64(4), stats.Total)
	s.Equal(int64(3), stats.ByStatus["active"])
	s.Equal(top, stats.TopCompanies)
	s.Equal(26.5, stats.AveragePerKgRate)
	s.Equal(1250.75, stats.Revenue30Days)
}

func (s *AnalyticsServiceTestSuite) TestGetStats_PropagatesFailure() {
	boom := errors.New("aggregate failed")
	nilCompany := (*primitive.ObjectID)(nil)

	s.cards.On("CountByStatus", mock.Anything, nilCompany).Return(nil, boom).Once()
	s.cards.On("Count", mock.Anything, nilCompany).Return(int64(0), nil).Maybe()
	s.cards.On("CountByScope", mock.Anything, nilCompany).Return(map[string]int64{}, nil).Maybe()
	s.cards.On("TopCompanies", mock.Anything, 10).Return([]models.CompanyRateCardCount{}, nil).Maybe()
	s.cards.On("AveragePerKgRate", mock.Anything, nilCompany).Return(0.0, nil).Maybe()
	s.shipments.On("RevenueSince", mock.Anything, mock.Anything, nilCompany).Return(0.0, nil).Maybe()

	_, err := s.service.GetStats(s.ctx, "")

	s.ErrorIs(err, boom)
}

func (s *AnalyticsServiceTestSuite) TestGetStats_BadCompany() {
	_, err := s.service.GetStats(s.ctx, "acme")

	_, ok := apperrors.AsValidation(err)
	s.True(ok)
}

func (s *AnalyticsServiceTestSuite) TestGetRateCardAnalytics() {
	card := completeCard("Surface", nil)
	usage := &models.RateCardUsage{
		ShipmentCount: 12,
		TotalRevenue:  960,
		AverageCharge: 80,
		ByZone:        map[models.Zone]int64{models.ZoneA: 7, models.ZoneC: 5},
	}
	s.cards.On("GetByID", s.ctx, card.ID).Return(card, nil).Once()
	s.shipments.On("UsageByRateCard", mock.Anything, card.ID).Return(usage, nil).Once()
	s.companies.On("CountByDefaultRateCard", mock.Anything, card.ID).Return(int64(3), nil).Once()

	analytics, err := s.service.GetRateCardAnalytics(s.ctx, card.ID.Hex())

	s.Require().NoError(err)
	s.Equal("Surface", analytics.Name)
	s.Equal(int64(3), analytics.AssignedCompanies)
	s.Equal(int64(12), analytics.ShipmentCount)
	s.Equal(int64(5), analytics.ByZone[models.ZoneC])
}

func (s *AnalyticsServiceTestSuite) TestGetRateCardAnalytics_NotFound() {
	id := primitive.NewObjectID()
	s.cards.On("GetByID", s.ctx, id).Return(nil, apperrors.NotFound("rate card")).Once()

	_, err := s.service.GetRateCardAnalytics(s.ctx, id.Hex())

	s.True(apperrors.IsNotFound(err))
	s.shipments.AssertNotCalled(s.T(), "UsageByRateCard", mock.Anything, mock.Anything)
}

func (s *AnalyticsServiceTestSuite) TestGetRevenueSeries_Defaults() {
	card := completeCard("Surface", nil)
	start := time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)
	end := utils.EndOfDay(s.now)
	points := []models.RevenuePoint{{Period: "2024-06-01", Revenue: 100, Shipments: 2}}

	s.cards.On("GetByID", s.ctx, card.ID).Return(card, nil).Once()
	s.shipments.On("RevenueSeries", s.ctx, card.ID, start, end, models.GranularityDay).Return(points, nil).Once()

	series, err := s.service.GetRevenueSeries(s.ctx, card.ID.Hex(), &validators.RevenueSeriesQuery{})

	s.Require().NoError(err)
	s.Equal(models.GranularityDay, series.Granularity)
	s.Equal(start, series.StartDate)
	s.Equal(points, series.Points)
}

func (s *AnalyticsServiceTestSuite) TestGetRevenueSeries_RejectsInvertedWindow() {
	id := primitive.NewObjectID()

	_, err := s.service.GetRevenueSeries(s.ctx, id.Hex(), &validators.RevenueSeriesQuery{
		StartDate:   "2024-06-10",
		EndDate:     "2024-06-01",
		Granularity: "week",
	})

	verr, ok := apperrors.AsValidation(err)
	s.Require().True(ok)
	s.Equal("endDate", verr.Fields[0].Field)
	s.cards.AssertNotCalled(s.T(), "GetByID", mock.Anything, mock.Anything)
}

func (s *AnalyticsServiceTestSuite) TestGetHistory() {
	id := primitive.NewObjectID()
	params := &utils.PaginationParams{Page: 2, Limit: 10}
	logs := []*models.AuditLog{{Action: models.AuditActionUpdate, ResourceID: id.Hex()}}
	s.audits.On("GetResourceHistory", s.ctx, models.AuditResourceRateCard, id.Hex(), params).Return(logs, int64(11), nil).Once()

	items, total, err := s.service.GetHistory(s.ctx, id.Hex(), params)

	s.Require().NoError(err)
	s.Equal(int64(11), total)
	s.Equal(logs, items)
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}
