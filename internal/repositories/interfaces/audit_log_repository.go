package interfaces

import (
	"context"

	"shipdesk/internal/models"
	"shipdesk/internal/utils"
)

// AuditLogRepository is append-only.
type AuditLogRepository interface {
	Create(ctx context.Context, auditLog *models.AuditLog) error
	GetResourceHistory(ctx context.Context, resource, resourceID string, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}
