package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionCreate     AuditAction = "create"
	AuditActionUpdate     AuditAction = "update"
	AuditActionDelete     AuditAction = "delete"
	AuditActionClone      AuditAction = "clone"
	AuditActionBulkUpdate AuditAction = "bulk_update"
	AuditActionImport     AuditAction = "import"
	AuditActionAssign     AuditAction = "assign"
	AuditActionUnassign   AuditAction = "unassign"
	AuditActionBulkAssign AuditAction = "bulk_assign"
)

const (
	AuditResourceRateCard = "ratecard"

	AuditCompanyGlobal   = "global"
	AuditCompanyMultiple = "multiple"
)

type AuditLog struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	UserID     *primitive.ObjectID    `json:"userId,omitempty" bson:"user_id"`
	CompanyID  string                 `json:"companyId" bson:"company_id"`
	Action     AuditAction            `json:"action" bson:"action"`
	Resource   string                 `json:"resource" bson:"resource"`
	ResourceID string                 `json:"resourceId" bson:"resource_id"`
	Details    map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty" bson:"ip_address,omitempty"`
	UserAgent  string                 `json:"userAgent,omitempty" bson:"user_agent,omitempty"`
	CreatedAt  time.Time              `json:"createdAt" bson:"created_at"`
}
