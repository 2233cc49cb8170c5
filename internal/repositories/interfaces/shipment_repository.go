package interfaces

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/models"
)

// ShipmentRepository exposes read-only aggregations over shipments.
type ShipmentRepository interface {
	RevenueSince(ctx context.Context, since time.Time, companyID *primitive.ObjectID) (float64, error)
	UsageByRateCard(ctx context.Context, rateCardID primitive.ObjectID) (*models.RateCardUsage, error)
	RevenueSeries(ctx context.Context, rateCardID primitive.ObjectID, start, end time.Time, granularity models.Granularity) ([]models.RevenuePoint, error)
}
