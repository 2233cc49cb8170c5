package services

import (
	"context"
	"time"

	"shipdesk/internal/models"
	"shipdesk/internal/repositories/interfaces"
	"shipdesk/pkg/logger"
)

// AuditRecorder appends audit entries for rate-card mutations. Recording is
// best effort: a failed write is logged and never fails the mutation that
// already committed.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type AuditEntry struct {
	Actor      models.Actor
	Action     models.AuditAction
	CompanyID  string
	ResourceID string
	Details    map[string]interface{}
}

type auditRecorder struct {
	repo   interfaces.AuditLogRepository
	logger *logger.Logger
}

func NewAuditRecorder(repo interfaces.AuditLogRepository, log *logger.Logger) AuditRecorder {
	return &auditRecorder{repo: repo, logger: log}
}

func (a *auditRecorder) Record(ctx context.Context, entry AuditEntry) {
	auditLog := &models.AuditLog{
		UserID:     entry.Actor.UserID,
		CompanyID:  entry.CompanyID,
		Action:     entry.Action,
		Resource:   models.AuditResourceRateCard,
		ResourceID: entry.ResourceID,
		Details:    entry.Details,
		IPAddress:  entry.Actor.IPAddress,
		UserAgent:  entry.Actor.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}

	if err := a.repo.Create(ctx, auditLog); err != nil {
		a.logger.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"action":      entry.Action,
			"resource_id": entry.ResourceID,
		}).Error("Failed to record audit log")
	}
}
