package services

import (
	"context"
	"time"

	"github.com/Thiahho/Resto-Bar-sub001/kds"
	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// StationPusher forwards a new ticket to off-screen devices of its station.
type StationPusher interface {
	NotifyStation(ctx context.Context, ticket TicketDTO) error
}

// Notifier fans domain events out to the realtime hub and, for new tickets,
// to push devices. It is always called after the owning transaction has
// committed and never reports failures to the caller.
type Notifier struct {
	pub         kds.Publisher
	push        StationPusher
	pushTimeout time.Duration
}

func NewNotifier(pub kds.Publisher, push StationPusher) *Notifier {
	return &Notifier{pub: pub, push: push, pushTimeout: 5 * time.Second}
}

func (n *Notifier) publish(event string, data interface{}, topics ...string) {
	if n == nil || n.pub == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			utils.ErrorLogger.WithField("event", event).Errorf("notify panic: %v", r)
		}
	}()
	n.pub.Publish(kds.Message{Event: event, Data: data}, topics...)
}

func adminTopics(branchID uint) []string {
	return []string{kds.TopicAdmins, kds.BranchTopic(branchID)}
}

// OrderCreated goes to the global admin topic and the branch topic; a client
// on both receives it once.
func (n *Notifier) OrderCreated(order *models.Order) {
	n.publish(kds.EventOrderCreated, NewOrderCreatedPayload(order), adminTopics(order.BranchID)...)
}

func (n *Notifier) TableOrderCreated(order *models.Order, session *models.TableSession, tickets []models.KitchenTicket) {
	n.publish(kds.EventTableOrderCreated, TableOrderEvent{
		TableID:   session.TableID,
		SessionID: session.ID,
		Order:     NewOrderCreatedPayload(order),
		Tickets:   NewTicketDTOs(tickets),
	}, adminTopics(order.BranchID)...)
}

func (n *Notifier) OrderStatusChanged(order *models.Order, from models.OrderStatus) {
	n.publish(kds.EventOrderStatusChanged, OrderStatusEvent{
		ID:         order.ID,
		BranchID:   order.BranchID,
		PublicCode: order.PublicCode,
		FromStatus: from,
		Status:     order.Status,
		UpdatedAt:  order.UpdatedAt,
	}, adminTopics(order.BranchID)...)
}

// OrderCancelled reaches every station still holding an open ticket of the
// order, plus the branch topic.
func (n *Notifier) OrderCancelled(order *models.Order, open []models.KitchenTicket) {
	if len(open) == 0 {
		return
	}
	topics := []string{kds.BranchTopic(order.BranchID)}
	seen := make(map[models.Station]bool)
	for _, t := range open {
		if !seen[t.Station] {
			seen[t.Station] = true
			topics = append(topics, kds.StationTopic(t.Station))
		}
	}
	n.publish(kds.EventOrderCancelled, OrderCancelledEvent{
		OrderID:    order.ID,
		BranchID:   order.BranchID,
		PublicCode: order.PublicCode,
		Tickets:    NewTicketDTOs(open),
	}, topics...)
}

// TicketsCreated sends each ticket to its station topic and triggers push.
func (n *Notifier) TicketsCreated(tickets []models.KitchenTicket) {
	for i := range tickets {
		dto := NewTicketDTO(&tickets[i])
		n.publish(kds.EventNewKitchenTicket, dto, kds.StationTopic(dto.Station))
		n.pushStation(dto)
	}
}

func (n *Notifier) TicketUpdated(ticket *models.KitchenTicket) {
	dto := NewTicketDTO(ticket)
	n.publish(kds.EventKitchenTicketUpdated, dto, kds.StationTopic(dto.Station), kds.BranchTopic(dto.BranchID))
}

func (n *Notifier) SessionOpened(session *models.TableSession, table *models.Table) {
	n.publish(kds.EventTableSessionOpened, SessionEvent{Session: NewSessionSummary(session), Table: *table}, adminTopics(table.BranchID)...)
}

func (n *Notifier) SessionClosed(session *models.TableSession, table *models.Table) {
	n.publish(kds.EventTableSessionClosed, SessionEvent{Session: NewSessionSummary(session), Table: *table}, adminTopics(table.BranchID)...)
}

func (n *Notifier) TableStatusChanged(table *models.Table, from models.TableStatus) {
	n.publish(kds.EventTableStatusChanged, TableEvent{Table: *table, FromStatus: from}, adminTopics(table.BranchID)...)
}

func (n *Notifier) pushStation(ticket TicketDTO) {
	if n == nil || n.push == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), n.pushTimeout)
		defer cancel()
		if err := n.push.NotifyStation(ctx, ticket); err != nil {
			utils.ErrorLogger.WithFields(map[string]interface{}{
				"ticket":  ticket.TicketNumber,
				"station": ticket.Station,
			}).Warnf("push notification failed: %v", err)
		}
	}()
}
