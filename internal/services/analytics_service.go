package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"shipdesk/internal/models"
	"shipdesk/internal/repositories/interfaces"
	"shipdesk/internal/utils"
	"shipdesk/internal/validators"
)

const (
	topCompaniesLimit = 10
	revenueWindow     = 30 * 24 * time.Hour
)

// AnalyticsService serves the read-only reporting endpoints. Nothing here is
// cached.
type AnalyticsService interface {
	GetStats(ctx context.Context, companyID string) (*models.RateCardStats, error)
	GetRateCardAnalytics(ctx context.Context, id string) (*models.RateCardAnalytics, error)
	GetRevenueSeries(ctx context.Context, id string, query *validators.RevenueSeriesQuery) (*models.RevenueSeries, error)
	GetHistory(ctx context.Context, id string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}

type analyticsService struct {
	rateCardRepo interfaces.RateCardRepository
	companyRepo  interfaces.CompanyRepository
	shipmentRepo interfaces.ShipmentRepository
	auditRepo    interfaces.AuditLogRepository
	now          func() time.Time
}

func NewAnalyticsService(
	rateCardRepo interfaces.RateCardRepository,
	companyRepo interfaces.CompanyRepository,
	shipmentRepo interfaces.ShipmentRepository,
	auditRepo interfaces.AuditLogRepository,
) AnalyticsService {
	return &analyticsService{
		rateCardRepo: rateCardRepo,
		companyRepo:  companyRepo,
		shipmentRepo: shipmentRepo,
		auditRepo:    auditRepo,
		now:          time.Now,
	}
}

// GetStats runs its six aggregations concurrently. companyID narrows every
// figure except the platform-wide top companies.
func (s *analyticsService) GetStats(ctx context.Context, companyID string) (*models.RateCardStats, error) {
	var company *primitive.ObjectID
	if companyID != "" {
		id, err := validators.ParseObjectID("companyId", companyID)
		if err != nil {
			return nil, err
		}
		company = &id
	}

	stats := &models.RateCardStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.ByStatus, err = s.rateCardRepo.CountByStatus(gctx, company)
		return err
	})
	g.Go(func() (err error) {
		stats.Total, err = s.rateCardRepo.Count(gctx, company)
		return err
	})
	g.Go(func() (err error) {
		stats.ByScope, err = s.rateCardRepo.CountByScope(gctx, company)
		return err
	})
	g.Go(func() (err error) {
		stats.TopCompanies, err = s.rateCardRepo.TopCompanies(gctx, topCompaniesLimit)
		return err
	})
	g.Go(func() (err error) {
		stats.AveragePerKgRate, err = s.rateCardRepo.AveragePerKgRate(gctx, company)
		return err
	})
	g.Go(func() (err error) {
		stats.Revenue30Days, err = s.shipmentRepo.RevenueSince(gctx, s.now().UTC().Add(-revenueWindow), company)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *analyticsService) GetRateCardAnalytics(ctx context.Context, id string) (*models.RateCardAnalytics, error) {
	cardID, err := validators.ParseObjectID("id", id)
	if err != nil {
		return nil, err
	}

	card, err := s.rateCardRepo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	analytics := &models.RateCardAnalytics{
		RateCardID: card.ID,
		Name:       card.Name,
		Status:     card.Status,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		analytics.RateCardUsage, err = s.shipmentRepo.UsageByRateCard(gctx, cardID)
		return err
	})
	g.Go(func() (err error) {
		analytics.AssignedCompanies, err = s.companyRepo.CountByDefaultRateCard(gctx, cardID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return analytics, nil
}

func (s *analyticsService) GetRevenueSeries(ctx context.Context, id string, query *validators.RevenueSeriesQuery) (*models.RevenueSeries, error) {
	cardID, err := validators.ParseObjectID("id", id)
	if err != nil {
		return nil, err
	}

	start, end, granularity, err := query.ResolveRevenueWindow(s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.rateCardRepo.GetByID(ctx, cardID); err != nil {
		return nil, err
	}

	points, err := s.shipmentRepo.RevenueSeries(ctx, cardID, start, end, granularity)
	if err != nil {
		return nil, err
	}

	return &models.RevenueSeries{
		RateCardID:  cardID,
		Granularity: granularity,
		StartDate:   start,
		EndDate:     end,
		Points:      points,
	}, nil
}

// GetHistory returns the card's audit trail, including entries written
// before it was deleted.
func (s *analyticsService) GetHistory(ctx context.Context, id string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	cardID, err := validators.ParseObjectID("id", id)
	if err != nil {
		return nil, 0, err
	}

	return s.auditRepo.GetResourceHistory(ctx, models.AuditResourceRateCard, cardID.Hex(), params)
}
