package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shipdesk/internal/models"
	"shipdesk/pkg/logger"
	"shipdesk/pkg/metrics"
	"shipdesk/pkg/websocket"
)

type fakeBus struct {
	published []interface{}
	err       error
	deliver   [][]byte
}

func (b *fakeBus) Publish(_ context.Context, channel string, message interface{}) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, message)
	return nil
}

func (b *fakeBus) Subscribe(_ context.Context, channel string, handle func([]byte)) error {
	for _, payload := range b.deliver {
		handle(payload)
	}
	return nil
}

func TestEventMessageRooms(t *testing.T) {
	companyID := primitive.NewObjectID().Hex()

	tests := []struct {
		name      string
		companyID string
		want      string
	}{
		{name: "company", companyID: companyID, want: websocket.CompanyRoom(companyID)},
		{name: "global", companyID: models.AuditCompanyGlobal, want: websocket.RoomAll},
		{name: "multiple", companyID: models.AuditCompanyMultiple, want: websocket.RoomAll},
		{name: "unset", companyID: "", want: websocket.RoomAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := newEvent(models.EventRateCardUpdated, "card", tt.companyID, nil)
			msg := EventMessage(event)

			assert.Equal(t, tt.want, msg.RoomID)
			assert.Equal(t, "ratecard.updated", msg.Type)
			assert.Equal(t, event.OccurredAt.Unix(), msg.Timestamp)
			assert.Same(t, event, msg.Data)
		})
	}
}

func TestHubPublisherCountsEvents(t *testing.T) {
	m := metrics.New("test")
	publisher := NewHubPublisher(websocket.NewHub(logger.NewNop()), m)

	publisher.Publish(context.Background(), newEvent(models.EventRateCardCreated, "card", "global", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("ratecard.created")))
}

func TestBusPublisher(t *testing.T) {
	m := metrics.New("test")
	bus := &fakeBus{}
	publisher := NewBusPublisher(bus, logger.NewNop(), m)
	event := newEvent(models.EventRateCardDeleted, "card", "global", nil)

	publisher.Publish(context.Background(), event)
	require.Len(t, bus.published, 1)
	assert.Same(t, event, bus.published[0])

	bus.err = errors.New("redis down")
	publisher.Publish(context.Background(), event)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("ratecard.deleted")))
}

func TestRelayEventsSkipsMalformedPayloads(t *testing.T) {
	event := newEvent(models.EventRateCardImported, "", primitive.NewObjectID().Hex(), map[string]interface{}{"created": 2})
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	hub := websocket.NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	bus := &fakeBus{deliver: [][]byte{[]byte("{not json"), payload}}
	assert.NoError(t, RelayEvents(ctx, bus, hub, logger.NewNop()))
}

func TestNopPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNopPublisher().Publish(context.Background(), newEvent(models.EventRateCardCreated, "", "", nil))
	})
}

func TestAuditRecorderWritesEntry(t *testing.T) {
	repo := new(MockAuditLogRepository)
	userID := primitive.NewObjectID()
	var saved *models.AuditLog
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.AuditLog")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.AuditLog) }).
		Return(nil).Once()

	NewAuditRecorder(repo, logger.NewNop()).Record(context.Background(), AuditEntry{
		Actor:      models.Actor{UserID: &userID, IPAddress: "10.1.2.3", UserAgent: "curl"},
		Action:     models.AuditActionDelete,
		CompanyID:  models.AuditCompanyGlobal,
		ResourceID: "abc",
		Details:    map[string]interface{}{"name": "Card"},
	})

	require.NotNil(t, saved)
	assert.Equal(t, &userID, saved.UserID)
	assert.Equal(t, models.AuditResourceRateCard, saved.Resource)
	assert.Equal(t, "abc", saved.ResourceID)
	assert.Equal(t, "10.1.2.3", saved.IPAddress)
	assert.WithinDuration(t, time.Now(), saved.CreatedAt, time.Minute)
}

func TestAuditRecorderSwallowsFailures(t *testing.T) {
	repo := new(MockAuditLogRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("write failed")).Once()

	assert.NotPanics(t, func() {
		NewAuditRecorder(repo, logger.NewNop()).Record(context.Background(), AuditEntry{Action: models.AuditActionCreate})
	})
	repo.AssertExpectations(t)
}
