package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

type KitchenService struct {
	DB       *gorm.DB
	Notifier *Notifier
	Now      func() time.Time
}

func NewKitchenService(db *gorm.DB, notifier *Notifier) *KitchenService {
	return &KitchenService{DB: db, Notifier: notifier, Now: time.Now}
}

type TicketFilter struct {
	Station  string
	Status   string
	Date     string
	BranchID *uint
}

// ListTickets returns tickets oldest first, narrowed by the non-empty filters.
func (s *KitchenService) ListTickets(ctx context.Context, f TicketFilter) ([]TicketDTO, error) {
	q := s.DB.WithContext(ctx).Model(&models.KitchenTicket{}).Order("created_at ASC, id ASC")
	if f.Station != "" {
		st, ok := models.ParseStation(f.Station)
		if !ok {
			return nil, utils.Validation("invalid station %q", f.Station)
		}
		q = q.Where("station = ?", st)
	}
	if f.Status != "" {
		st, ok := models.ParseTicketStatus(f.Status)
		if !ok {
			return nil, utils.Validation("invalid ticket status %q", f.Status)
		}
		q = q.Where("status = ?", st)
	}
	if f.Date != "" {
		if _, err := time.Parse("2006-01-02", f.Date); err != nil {
			return nil, utils.Validation("invalid date %q, expected YYYY-MM-DD", f.Date)
		}
		q = q.Where("business_date = ?", f.Date)
	}
	if f.BranchID != nil {
		q = q.Where("branch_id = ?", *f.BranchID)
	}

	var tickets []models.KitchenTicket
	if err := q.Find(&tickets).Error; err != nil {
		return nil, err
	}
	return NewTicketDTOs(tickets), nil
}

// UpdateTicketStatus moves a ticket strictly forward. Timestamps are set the
// first time their stage is reached, including stages that were skipped. The
// parent order follows its tickets.
func (s *KitchenService) UpdateTicketStatus(ctx context.Context, ticketID uint, status string, actor *uint) (*TicketDTO, error) {
	to, ok := models.ParseTicketStatus(status)
	if !ok {
		return nil, utils.Validation("invalid ticket status %q", status)
	}

	var (
		ticket      models.KitchenTicket
		order       *models.Order
		orderBefore models.OrderStatus
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&ticket, ticketID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("ticket not found")
		}
		if err != nil {
			return err
		}
		if ticket.Status == models.TicketDelivered {
			return utils.Conflict("ticket %s is already delivered", ticket.TicketNumber)
		}
		if to.Rank() <= ticket.Status.Rank() {
			return utils.Conflict("ticket cannot move from %s to %s", ticket.Status, to)
		}

		now := s.Now()
		stampTicket(&ticket, to, now)
		if ticket.AssignedToID == nil && actor != nil {
			ticket.AssignedToID = actor
		}
		if err := tx.Save(&ticket).Error; err != nil {
			return err
		}

		order, orderBefore, err = syncOrderWithTickets(tx, ticket.OrderID, actor, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"ticket": ticket.TicketNumber,
		"status": ticket.Status,
	}).Info("kitchen ticket updated")
	s.Notifier.TicketUpdated(&ticket)
	if order != nil {
		s.Notifier.OrderStatusChanged(order, orderBefore)
	}
	dto := NewTicketDTO(&ticket)
	return &dto, nil
}

func stampTicket(t *models.KitchenTicket, to models.TicketStatus, now time.Time) {
	r := to.Rank()
	if r >= models.TicketInProgress.Rank() && t.StartedAt == nil {
		t.StartedAt = &now
	}
	if r >= models.TicketReady.Rank() && t.ReadyAt == nil {
		t.ReadyAt = &now
	}
	if r >= models.TicketDelivered.Rank() && t.DeliveredAt == nil {
		t.DeliveredAt = &now
	}
	t.Status = to
	t.UpdatedAt = now
}

// syncOrderWithTickets derives the order status from its tickets and applies
// it when it is further along. It returns the order only when it changed.
func syncOrderWithTickets(tx *gorm.DB, orderID uint, actor *uint, now time.Time) (*models.Order, models.OrderStatus, error) {
	var order models.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error; err != nil {
		return nil, "", err
	}
	if order.Status.IsTerminal() {
		return nil, "", nil
	}

	var statuses []models.TicketStatus
	if err := tx.Model(&models.KitchenTicket{}).Where("order_id = ?", orderID).Pluck("status", &statuses).Error; err != nil {
		return nil, "", err
	}
	target, ok := orderStatusFromTickets(statuses)
	if !ok || orderRank[target] <= orderRank[order.Status] {
		return nil, "", nil
	}

	from := order.Status
	if err := appendStatus(tx, &order, target, actor, "kitchen progress", now); err != nil {
		return nil, "", err
	}
	return &order, from, nil
}

func orderStatusFromTickets(statuses []models.TicketStatus) (models.OrderStatus, bool) {
	if len(statuses) == 0 {
		return "", false
	}
	minRank, maxRank := 3, 0
	for _, st := range statuses {
		r := st.Rank()
		if r < minRank {
			minRank = r
		}
		if r > maxRank {
			maxRank = r
		}
	}
	switch {
	case minRank >= models.TicketDelivered.Rank():
		return models.OrderDelivered, true
	case minRank >= models.TicketReady.Rank():
		return models.OrderReady, true
	case maxRank >= models.TicketInProgress.Rank():
		return models.OrderInPrep, true
	}
	return "", false
}
