package models

import "time"

type EventType string

const (
	EventRateCardCreated     EventType = "ratecard.created"
	EventRateCardUpdated     EventType = "ratecard.updated"
	EventRateCardDeleted     EventType = "ratecard.deleted"
	EventRateCardCloned      EventType = "ratecard.cloned"
	EventRateCardBulkUpdated EventType = "ratecard.bulk_updated"
	EventRateCardImported    EventType = "ratecard.imported"
	EventRateCardAssigned    EventType = "ratecard.assigned"
	EventRateCardUnassigned  EventType = "ratecard.unassigned"
)

// RateCardEvent is pushed to connected admin dashboards after a mutation.
type RateCardEvent struct {
	Type       EventType              `json:"type"`
	RateCardID string                 `json:"rateCardId,omitempty"`
	CompanyID  string                 `json:"companyId,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}
