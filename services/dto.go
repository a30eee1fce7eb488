package services

import (
	"encoding/json"
	"time"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// OrderCreatedPayload is the OrderCreated event body sent to admin topics.
type OrderCreatedPayload struct {
	ID           uint               `json:"id"`
	BranchID     uint               `json:"branchId"`
	CustomerName string             `json:"customerName"`
	Phone        string             `json:"phone"`
	TakeMode     string             `json:"takeMode"`
	TotalCents   int64              `json:"totalCents"`
	Status       models.OrderStatus `json:"status"`
	CreatedAt    time.Time          `json:"createdAt"`
}

func NewOrderCreatedPayload(o *models.Order) OrderCreatedPayload {
	return OrderCreatedPayload{
		ID:           o.ID,
		BranchID:     o.BranchID,
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		TakeMode:     o.TakeMode,
		TotalCents:   o.TotalCents,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
	}
}

// TicketDTO is the full ticket as sent to kitchen displays and listed over HTTP.
type TicketDTO struct {
	ID           uint                `json:"id"`
	OrderID      uint                `json:"orderId"`
	BranchID     uint                `json:"branchId"`
	TableID      *uint               `json:"tableId,omitempty"`
	Station      models.Station      `json:"station"`
	Status       models.TicketStatus `json:"status"`
	TicketNumber string              `json:"ticketNumber"`
	Items        []models.TicketItem `json:"items"`
	Notes        string              `json:"notes,omitempty"`
	AssignedToID *uint               `json:"assignedToId,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	StartedAt    *time.Time          `json:"startedAt,omitempty"`
	ReadyAt      *time.Time          `json:"readyAt,omitempty"`
	DeliveredAt  *time.Time          `json:"deliveredAt,omitempty"`
}

func NewTicketDTO(t *models.KitchenTicket) TicketDTO {
	items := []models.TicketItem{}
	if t.ItemsJSON != "" {
		if err := json.Unmarshal([]byte(t.ItemsJSON), &items); err != nil {
			utils.ErrorLogger.WithField("ticket_id", t.ID).Errorf("corrupt ticket items: %v", err)
		}
	}
	return TicketDTO{
		ID:           t.ID,
		OrderID:      t.OrderID,
		BranchID:     t.BranchID,
		TableID:      t.TableID,
		Station:      t.Station,
		Status:       t.Status,
		TicketNumber: t.TicketNumber,
		Items:        items,
		Notes:        t.Notes,
		AssignedToID: t.AssignedToID,
		CreatedAt:    t.CreatedAt,
		StartedAt:    t.StartedAt,
		ReadyAt:      t.ReadyAt,
		DeliveredAt:  t.DeliveredAt,
	}
}

func NewTicketDTOs(tickets []models.KitchenTicket) []TicketDTO {
	out := make([]TicketDTO, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketDTO(&tickets[i]))
	}
	return out
}

// SessionSummary is what the public table endpoint and session events expose.
type SessionSummary struct {
	ID             uint                 `json:"id"`
	TableID        uint                 `json:"tableId"`
	CustomerName   string               `json:"customerName"`
	GuestCount     int                  `json:"guestCount"`
	Status         models.SessionStatus `json:"status"`
	OpenedAt       time.Time            `json:"openedAt"`
	ClosedAt       *time.Time           `json:"closedAt,omitempty"`
	SubtotalCents  int64                `json:"subtotalCents"`
	TipCents       int64                `json:"tipCents"`
	TotalCents     int64                `json:"totalCents"`
	TotalFormatted string               `json:"totalFormatted"`
	PaymentMethod  string               `json:"paymentMethod,omitempty"`
}

func NewSessionSummary(s *models.TableSession) SessionSummary {
	return SessionSummary{
		ID:             s.ID,
		TableID:        s.TableID,
		CustomerName:   s.CustomerName,
		GuestCount:     s.GuestCount,
		Status:         s.Status,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
		SubtotalCents:  s.SubtotalCents,
		TipCents:       s.TipCents,
		TotalCents:     s.TotalCents,
		TotalFormatted: utils.FormatCents(s.TotalCents),
		PaymentMethod:  string(s.PaymentMethod),
	}
}

type TableView struct {
	models.Table
	ActiveSession *SessionSummary `json:"activeSession"`
}

type TableEvent struct {
	Table      models.Table       `json:"table"`
	FromStatus models.TableStatus `json:"fromStatus,omitempty"`
}

type SessionEvent struct {
	Session SessionSummary `json:"session"`
	Table   models.Table   `json:"table"`
}

type TableOrderEvent struct {
	TableID   uint                `json:"tableId"`
	SessionID uint                `json:"sessionId"`
	Order     OrderCreatedPayload `json:"order"`
	Tickets   []TicketDTO         `json:"tickets"`
}

// OrderCancelledEvent tells stations which of their open tickets to pull.
type OrderCancelledEvent struct {
	OrderID    uint        `json:"orderId"`
	BranchID   uint        `json:"branchId"`
	PublicCode string      `json:"publicCode"`
	Tickets    []TicketDTO `json:"tickets"`
}

type OrderStatusEvent struct {
	ID         uint               `json:"id"`
	BranchID   uint               `json:"branchId"`
	PublicCode string             `json:"publicCode"`
	FromStatus models.OrderStatus `json:"fromStatus"`
	Status     models.OrderStatus `json:"status"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}
