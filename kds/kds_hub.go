package kds

import (
	"encoding/json"
	"sync"

	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// Event types
const (
	EventOrderCreated         = "OrderCreated"
	EventOrderStatusChanged   = "OrderStatusChanged"
	EventOrderCancelled       = "OrderCancelled"
	EventTableOrderCreated    = "TableOrderCreated"
	EventNewKitchenTicket     = "NewKitchenTicket"
	EventKitchenTicketUpdated = "KitchenTicketUpdated"
	EventTableSessionOpened   = "TableSessionOpened"
	EventTableSessionClosed   = "TableSessionClosed"
	EventTableStatusChanged   = "TableStatusChanged"

	eventSubscribed   = "subscribed"
	eventUnsubscribed = "unsubscribed"
	eventError        = "error"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher delivers a message to every client subscribed to at least one of
// the topics and returns how many clients it was queued for.
type Publisher interface {
	Publish(msg Message, topics ...string) int
}

// Hub is the connection registry. Each client's subscription set is owned
// here and guarded by mu; delivery never blocks on a client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	utils.InfoLogger.WithFields(map[string]interface{}{
		"client": c.ID,
		"role":   c.Role,
	}).Info("kds client registered")
}

// Unregister drops the client and closes its send buffer; calling it twice is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unregisterLocked(c)
}

func (h *Hub) unregisterLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	utils.InfoLogger.WithField("client", c.ID).Info("kds client unregistered")
}

func (h *Hub) Subscribe(c *Client, topic string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	c.topics[topic] = struct{}{}
	return true
}

func (h *Hub) Unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.topics, topic)
}

// SwitchStation replaces every station topic of the client with the given one.
func (h *Hub) SwitchStation(c *Client, topic string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	for t := range c.topics {
		if IsStationTopic(t) {
			delete(c.topics, t)
		}
	}
	c.topics[topic] = struct{}{}
	return true
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Publish(msg Message, topics ...string) int {
	if len(topics) == 0 {
		return 0
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("kds: marshal %s: %v", msg.Event, err)
		return 0
	}

	var slow []*Client
	delivered := 0

	h.mu.RLock()
	for c := range h.clients {
		if !c.subscribedToAny(topics) {
			continue
		}
		select {
		case c.send <- data:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, c := range slow {
			utils.ErrorLogger.WithField("client", c.ID).Warn("kds: send buffer full, dropping client")
			h.unregisterLocked(c)
		}
		h.mu.Unlock()
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"event":     msg.Event,
		"topics":    topics,
		"delivered": delivered,
	}).Debug("kds broadcast")
	return delivered
}

// reply queues a control message for one client only.
func (h *Hub) reply(c *Client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
