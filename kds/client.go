package kds

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one staff connection. conn is nil for in-process clients.
type Client struct {
	ID       string
	Role     string
	UserID   uint
	BranchID *uint

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	topics map[string]struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, role string, userID uint, branchID *uint) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Role:     role,
		UserID:   userID,
		BranchID: branchID,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		topics:   make(map[string]struct{}),
	}
}

// Messages exposes the outbound queue; it is closed when the client is unregistered.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Topics returns a snapshot of the subscription set.
func (c *Client) Topics() []string {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	out := make([]string, 0, len(c.topics))
	for t := range c.topics {
		out = append(out, t)
	}
	return out
}

// caller holds hub.mu
func (c *Client) subscribedToAny(topics []string) bool {
	for _, t := range topics {
		if _, ok := c.topics[t]; ok {
			return true
		}
	}
	return false
}

type command struct {
	Action  string `json:"action"`
	Topic   string `json:"topic"`
	Station string `json:"station"`
}

// Handle applies one join/leave/station command and replies to the client.
func (c *Client) Handle(raw []byte) {
	var cmd command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		c.hub.reply(c, Message{Event: eventError, Data: map[string]string{"message": "malformed command"}})
		return
	}

	switch cmd.Action {
	case "join":
		if !CanJoin(c.Role, c.BranchID, cmd.Topic) {
			c.hub.reply(c, Message{Event: eventError, Data: map[string]string{"message": "topic not allowed", "topic": cmd.Topic}})
			return
		}
		c.hub.Subscribe(c, cmd.Topic)
		c.hub.reply(c, Message{Event: eventSubscribed, Data: map[string]string{"topic": cmd.Topic}})
	case "leave":
		c.hub.Unsubscribe(c, cmd.Topic)
		c.hub.reply(c, Message{Event: eventUnsubscribed, Data: map[string]string{"topic": cmd.Topic}})
	case "station":
		st, ok := models.ParseStation(cmd.Station)
		topic := StationTopic(st)
		if !ok || !CanJoin(c.Role, c.BranchID, topic) {
			c.hub.reply(c, Message{Event: eventError, Data: map[string]string{"message": "station not allowed", "station": cmd.Station}})
			return
		}
		c.hub.SwitchStation(c, topic)
		c.hub.reply(c, Message{Event: eventSubscribed, Data: map[string]string{"topic": topic}})
	default:
		c.hub.reply(c, Message{Event: eventError, Data: map[string]string{"message": "unknown action"}})
	}
}

// ReadPump consumes commands until the connection fails, then unregisters.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.ErrorLogger.WithField("client", c.ID).Warnf("kds read: %v", err)
			}
			return
		}
		c.Handle(raw)
	}
}

// WritePump drains the send buffer and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
