package services

import (
	"context"
	"encoding/json"
	"time"

	"shipdesk/internal/models"
	"shipdesk/pkg/logger"
	"shipdesk/pkg/metrics"
	"shipdesk/pkg/websocket"
)

// EventsChannel is the pub/sub channel carrying rate-card change events
// between instances.
const EventsChannel = "ratecard-events"

// EventPublisher notifies connected dashboards about rate-card changes.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.RateCardEvent)
}

// MessageBus is the cross-instance transport, implemented by pkg/cache.RedisCache.
type MessageBus interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string, handle func([]byte)) error
}

// hubPublisher delivers straight to this instance's websocket hub.
type hubPublisher struct {
	hub     *websocket.Hub
	metrics *metrics.Metrics
}

func NewHubPublisher(hub *websocket.Hub, m *metrics.Metrics) EventPublisher {
	return &hubPublisher{hub: hub, metrics: m}
}

func (p *hubPublisher) Publish(_ context.Context, event *models.RateCardEvent) {
	p.hub.Broadcast(EventMessage(event))
	p.metrics.RecordEvent(string(event.Type))
}

// busPublisher sends events through the message bus so every instance's hub
// receives them; RelayEvents does the receiving side.
type busPublisher struct {
	bus     MessageBus
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewBusPublisher(bus MessageBus, log *logger.Logger, m *metrics.Metrics) EventPublisher {
	return &busPublisher{bus: bus, logger: log, metrics: m}
}

func (p *busPublisher) Publish(ctx context.Context, event *models.RateCardEvent) {
	if err := p.bus.Publish(ctx, EventsChannel, event); err != nil {
		p.logger.WithContext(ctx).WithError(err).
			WithField("event_type", event.Type).
			Warn("Failed to publish rate card event")
		return
	}
	p.metrics.RecordEvent(string(event.Type))
}

// RelayEvents forwards bus events to the local hub until ctx is cancelled.
func RelayEvents(ctx context.Context, bus MessageBus, hub *websocket.Hub, log *logger.Logger) error {
	return bus.Subscribe(ctx, EventsChannel, func(payload []byte) {
		var event models.RateCardEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			log.WithError(err).Warn("Dropping malformed rate card event")
			return
		}
		hub.Broadcast(EventMessage(&event))
	})
}

// EventMessage routes an event to its company's room, or to every client for
// global cards.
func EventMessage(event *models.RateCardEvent) *websocket.Message {
	room := websocket.RoomAll
	if event.CompanyID != "" && event.CompanyID != models.AuditCompanyGlobal && event.CompanyID != models.AuditCompanyMultiple {
		room = websocket.CompanyRoom(event.CompanyID)
	}

	return &websocket.Message{
		Type:      string(event.Type),
		RoomID:    room,
		Timestamp: event.OccurredAt.Unix(),
		Data:      event,
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, *models.RateCardEvent) {}

// NewNopPublisher discards every event.
func NewNopPublisher() EventPublisher {
	return nopPublisher{}
}

func newEvent(eventType models.EventType, rateCardID, companyID string, data map[string]interface{}) *models.RateCardEvent {
	return &models.RateCardEvent{
		Type:       eventType,
		RateCardID: rateCardID,
		CompanyID:  companyID,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}
