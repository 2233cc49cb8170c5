package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"shipdesk/pkg/logger"
)

// RoomAll receives every message. Clients leave it when they subscribe to a
// single company.
const RoomAll = "all"

func CompanyRoom(companyID string) string {
	return "company_" + companyID
}

type Message struct {
	Type      string      `json:"type"`
	RoomID    string      `json:"room_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type subscription struct {
	client *Client
	room   string
	join   bool
}

// Hub owns every connected client. All membership changes and deliveries
// happen on the Run goroutine.
type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		done:       make(chan struct{}),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case sub := <-h.subscribe:
			h.applySubscription(sub)

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// Broadcast queues a message for delivery. It never blocks once the hub has
// stopped.
func (h *Hub) Broadcast(message *Message) {
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().Unix()
	}
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.clients[client] = true
	h.joinRoom(client, RoomAll)
	h.mutex.Unlock()

	h.logger.WithUserID(client.UserID).Debug("Dashboard client connected")

	h.sendToClient(client, &Message{
		Type:      "welcome",
		Timestamp: time.Now().Unix(),
		Data:      map[string]interface{}{"message": "Connected successfully"},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeClient(client)
}

// removeClient must be called with the mutex held.
func (h *Hub) removeClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		h.leaveRoom(client, roomID)
	}

	h.logger.WithUserID(client.UserID).Debug("Dashboard client disconnected")
}

func (h *Hub) applySubscription(sub subscription) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[sub.client]; !ok {
		return
	}

	if sub.join {
		h.leaveRoom(sub.client, RoomAll)
		h.joinRoom(sub.client, sub.room)
		return
	}

	h.leaveRoom(sub.client, sub.room)
	if len(sub.client.rooms) == 0 {
		h.joinRoom(sub.client, RoomAll)
	}
}

func (h *Hub) deliver(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode websocket message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	targets := make(map[*Client]bool)
	for client := range h.rooms[RoomAll] {
		targets[client] = true
	}
	if message.RoomID != "" && message.RoomID != RoomAll {
		for client := range h.rooms[message.RoomID] {
			targets[client] = true
		}
	}

	for client := range targets {
		select {
		case client.send <- data:
		default:
			// Slow consumer; drop it rather than stall every dashboard.
			h.removeClient(client)
		}
	}
}

func (h *Hub) sendToClient(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	select {
	case client.send <- data:
	default:
		h.removeClient(client)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		h.removeClient(client)
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func (h *Hub) leaveRoom(client *Client, roomID string) {
	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(client.rooms, roomID)
}
