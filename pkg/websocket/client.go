package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxMessageSize = 512

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	rooms     map[string]bool
	writeWait time.Duration
	pongWait  time.Duration
	UserID    primitive.ObjectID
}

func NewClient(hub *Hub, conn *websocket.Conn, userID primitive.ObjectID, opts *Options) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, opts.SendBuffer),
		rooms:     make(map[string]bool),
		writeWait: opts.WriteWait,
		pongWait:  opts.PongWait,
		UserID:    userID,
	}
}

// inbound is what dashboards send: subscribe/unsubscribe to one company.
type inbound struct {
	Type      string `json:"type"`
	CompanyID string `json:"companyId"`
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Warn("WebSocket read error")
			}
			return
		}

		c.handleMessage(message)
	}
}

func (c *Client) writePump() {
	pingPeriod := (c.pongWait * 9) / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(message []byte) {
	var msg inbound
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if !primitive.IsValidObjectID(msg.CompanyID) {
		return
	}

	sub := subscription{client: c, room: CompanyRoom(msg.CompanyID)}
	switch msg.Type {
	case "subscribe":
		sub.join = true
	case "unsubscribe":
	default:
		return
	}

	select {
	case c.hub.subscribe <- sub:
	case <-c.hub.done:
	}
}
