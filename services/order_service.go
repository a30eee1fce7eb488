package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

var orderRank = map[models.OrderStatus]int{
	models.OrderCreated:   0,
	models.OrderConfirmed: 1,
	models.OrderInPrep:    2,
	models.OrderReady:     3,
	models.OrderDelivered: 4,
}

// CanAdvanceOrder allows forward moves along CREATED..DELIVERED and
// cancelling any non-terminal order.
func CanAdvanceOrder(from, to models.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == models.OrderCancelled {
		return true
	}
	fr, ok1 := orderRank[from]
	tr, ok2 := orderRank[to]
	return ok1 && ok2 && tr > fr
}

type OrderItemInput struct {
	ProductID      uint           `json:"productId"`
	Quantity       int            `json:"quantity"`
	UnitPriceCents *int64         `json:"unitPriceCents"`
	LineTotalCents *int64         `json:"lineTotalCents"`
	Modifiers      []ItemModifier `json:"modifiers"`
	Notes          string         `json:"notes"`
}

// OrderInput is the body of both dine-in intake paths. Prices and tip are
// only honored on the staff path.
type OrderInput struct {
	CustomerName  string           `json:"customerName"`
	Phone         string           `json:"phone"`
	Note          string           `json:"note"`
	DiscountCents int64            `json:"discountCents"`
	TipCents      int64            `json:"tipCents"`
	Items         []OrderItemInput `json:"items"`
}

// Actor is whoever submits a session order: staff, or a diner holding a table token.
type Actor struct {
	UserID *uint
	Role   string
	Table  *utils.TableClaims
}

type OrderResult struct {
	Order         *models.Order   `json:"order"`
	Tickets       []TicketDTO     `json:"tickets"`
	TrackingToken string          `json:"trackingToken"`
	Session       *SessionSummary `json:"session,omitempty"`
}

type OrderService struct {
	DB               *gorm.DB
	Router           *TicketRouter
	Notifier         *Notifier
	Now              func() time.Time
	TrackingTokenTTL time.Duration
}

func NewOrderService(db *gorm.DB, router *TicketRouter, notifier *Notifier) *OrderService {
	return &OrderService{
		DB:               db,
		Router:           router,
		Notifier:         notifier,
		Now:              time.Now,
		TrackingTokenTTL: 48 * time.Hour,
	}
}

// NewPublicCode is 8 uppercase hex characters.
func NewPublicCode() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}

// MaxItemQuantity caps a single order line.
const MaxItemQuantity = 999

// mulCents and addCents report false when the result does not fit in int64.
func mulCents(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

func addCents(a, b int64) (int64, bool) {
	r := a + b
	if (b > 0 && r < a) || (b < 0 && r > a) {
		return 0, false
	}
	return r, true
}

func validateItems(items []OrderItemInput) error {
	if len(items) == 0 {
		return utils.Validation("order must contain at least one item")
	}
	for i, it := range items {
		if it.ProductID == 0 {
			return utils.Validation("item %d: productId is required", i+1)
		}
		if it.Quantity <= 0 || it.Quantity > MaxItemQuantity {
			return utils.Validation("item %d: quantity must be between 1 and %d", i+1, MaxItemQuantity)
		}
		if it.UnitPriceCents != nil && *it.UnitPriceCents < 0 {
			return utils.Validation("item %d: unitPriceCents cannot be negative", i+1)
		}
		if it.LineTotalCents != nil && *it.LineTotalCents < 0 {
			return utils.Validation("item %d: lineTotalCents cannot be negative", i+1)
		}
		for _, m := range it.Modifiers {
			if m.PriceCents < 0 {
				return utils.Validation("item %d: modifier %q cannot be negative", i+1, m.Name)
			}
		}
	}
	return nil
}

// CreatePublicTableOrder takes a QR order for the open session of a table.
// Prices always come from the catalog; client prices and modifier surcharges
// are ignored.
func (s *OrderService) CreatePublicTableOrder(ctx context.Context, tableID uint, in OrderInput, claims *utils.TableClaims) (*OrderResult, error) {
	if claims != nil && claims.TableID != tableID {
		return nil, utils.Forbidden("token is not valid for this table")
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	var table models.Table
	err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", tableID, true).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("table not found")
	}
	if err != nil {
		return nil, err
	}

	var session models.TableSession
	err = s.DB.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, models.SessionActive).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Conflict("table has no active session")
	}
	if err != nil {
		return nil, err
	}
	if claims != nil && claims.SessionID != nil && *claims.SessionID != session.ID {
		return nil, utils.Forbidden("token is not valid for the current session")
	}

	in.TipCents = 0
	return s.createDineInOrder(ctx, session.ID, &table, in, false, models.ChannelQR, nil)
}

// CreateSessionOrder takes a staff order (or a diner order with a table
// token) for an existing session. Client prices are trusted only for staff;
// a diner is priced from the catalog like the public path.
func (s *OrderService) CreateSessionOrder(ctx context.Context, sessionID uint, in OrderInput, actor Actor) (*OrderResult, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if in.TipCents < 0 {
		return nil, utils.Validation("tipCents cannot be negative")
	}

	var session models.TableSession
	err := s.DB.WithContext(ctx).Preload("Table").First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("session not found")
	}
	if err != nil {
		return nil, err
	}

	channel := models.ChannelStaff
	if actor.Table != nil {
		if actor.Table.SessionID != nil && *actor.Table.SessionID != sessionID {
			return nil, utils.Forbidden("token is not valid for this session")
		}
		if actor.Table.TableID != session.TableID {
			return nil, utils.Forbidden("token is not valid for this table")
		}
		channel = models.ChannelQR
	}
	if session.Table == nil {
		return nil, utils.NotFound("table not found")
	}
	trustPrices := actor.UserID != nil
	if !trustPrices {
		in.DiscountCents = 0
	}
	return s.createDineInOrder(ctx, sessionID, session.Table, in, trustPrices, channel, actor.UserID)
}

func (s *OrderService) createDineInOrder(ctx context.Context, sessionID uint, table *models.Table, in OrderInput, trustPrices bool, channel string, createdBy *uint) (*OrderResult, error) {
	var (
		order   models.Order
		session models.TableSession
		tickets []models.KitchenTicket
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, sessionID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("session not found")
		}
		if err != nil {
			return err
		}
		if session.Status != models.SessionActive {
			return utils.Conflict("session is not active")
		}

		items, err := buildOrderItems(tx, in.Items, trustPrices)
		if err != nil {
			return err
		}

		var subtotal int64
		for _, it := range items {
			var ok bool
			if subtotal, ok = addCents(subtotal, it.LineTotalCents); !ok {
				return utils.Validation("order total is too large")
			}
		}
		if _, ok := addCents(subtotal, in.TipCents); !ok {
			return utils.Validation("order total is too large")
		}
		discount := in.DiscountCents
		if discount < 0 {
			discount = 0
		}
		if discount > subtotal {
			discount = subtotal
		}

		tableID := table.ID
		order = models.Order{
			BranchID:       table.BranchID,
			TableSessionID: &session.ID,
			TableID:        &tableID,
			CustomerName:   strings.TrimSpace(in.CustomerName),
			Phone:          strings.TrimSpace(in.Phone),
			Channel:        channel,
			TakeMode:       models.TakeModeDineIn,
			Note:           in.Note,
			PublicCode:     NewPublicCode(),
			SubtotalCents:  subtotal,
			DiscountCents:  discount,
			TipCents:       in.TipCents,
			TotalCents:     subtotal - discount + in.TipCents,
			Status:         models.OrderCreated,
			CreatedByID:    createdBy,
			Items:          items,
		}
		if order.CustomerName == "" {
			order.CustomerName = session.CustomerName
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.OrderStatusHistory{
			OrderID:     order.ID,
			ToStatus:    models.OrderCreated,
			ChangedByID: createdBy,
			Note:        "order created via " + channel,
			CreatedAt:   s.Now(),
		}).Error; err != nil {
			return err
		}

		if tickets, err = s.Router.RouteOrderToKitchen(ctx, tx, &order, order.Items); err != nil {
			return err
		}
		return refreshSessionTotals(tx, &session)
	})
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateTrackingToken(order.ID, order.PublicCode, s.TrackingTokenTTL)
	if err != nil {
		utils.ErrorLogger.WithField("order_id", order.ID).Errorf("tracking token: %v", err)
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"order_id":    order.ID,
		"public_code": order.PublicCode,
		"session_id":  session.ID,
		"channel":     channel,
		"tickets":     len(tickets),
		"total":       utils.FormatCents(order.TotalCents),
	}).Info("dine-in order created")

	s.Notifier.OrderCreated(&order)
	s.Notifier.TableOrderCreated(&order, &session, tickets)
	s.Notifier.TicketsCreated(tickets)

	summary := NewSessionSummary(&session)
	return &OrderResult{
		Order:         &order,
		Tickets:       NewTicketDTOs(tickets),
		TrackingToken: token,
		Session:       &summary,
	}, nil
}

// buildOrderItems snapshots the catalog into order lines. On the trusted path
// client prices and modifier surcharges are kept and line totals default to
// (unit + modifiers) * qty; otherwise unit price is the catalog price and
// modifiers add nothing.
func buildOrderItems(tx *gorm.DB, in []OrderItemInput, trustPrices bool) ([]models.OrderItem, error) {
	ids := make([]uint, 0, len(in))
	for _, it := range in {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	catalog := make(map[uint]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(in))
	for _, it := range in {
		p, ok := catalog[it.ProductID]
		if !ok || (!trustPrices && !p.IsActive) {
			return nil, utils.NotFound("product %d not found", it.ProductID)
		}

		tooLarge := utils.Validation("product %d: line total is too large", it.ProductID)
		unit := p.PriceCents
		var modifiers int64
		if trustPrices {
			if it.UnitPriceCents != nil {
				unit = *it.UnitPriceCents
			}
			for _, m := range it.Modifiers {
				if modifiers, ok = addCents(modifiers, m.PriceCents); !ok {
					return nil, tooLarge
				}
			}
		}
		each, ok := addCents(unit, modifiers)
		if !ok {
			return nil, tooLarge
		}
		line, ok := mulCents(each, int64(it.Quantity))
		if !ok {
			return nil, tooLarge
		}
		if trustPrices && it.LineTotalCents != nil {
			line = *it.LineTotalCents
		}

		var modsJSON string
		if len(it.Modifiers) > 0 {
			raw, err := json.Marshal(it.Modifiers)
			if err != nil {
				return nil, err
			}
			modsJSON = string(raw)
		}

		items = append(items, models.OrderItem{
			ProductID:           p.ID,
			Name:                p.Name,
			Quantity:            it.Quantity,
			UnitPriceCents:      unit,
			ModifiersTotalCents: modifiers,
			LineTotalCents:      line,
			ModifiersJSON:       modsJSON,
			Notes:               it.Notes,
		})
	}
	return items, nil
}

// refreshSessionTotals keeps the running totals of an ACTIVE session in line
// with its non-cancelled orders.
func refreshSessionTotals(tx *gorm.DB, session *models.TableSession) error {
	subtotal, total, err := sumSessionOrders(tx, session.ID)
	if err != nil {
		return err
	}
	session.SubtotalCents = subtotal
	session.TotalCents = total + session.TipCents
	return tx.Model(session).Updates(map[string]interface{}{
		"subtotal_cents": session.SubtotalCents,
		"total_cents":    session.TotalCents,
	}).Error
}

// appendStatus moves an order to a new status and records the change.
func appendStatus(tx *gorm.DB, order *models.Order, to models.OrderStatus, changedBy *uint, note string, now time.Time) error {
	from := order.Status
	order.Status = to
	order.UpdatedAt = now
	if err := tx.Model(order).Updates(map[string]interface{}{"status": to, "updated_at": now}).Error; err != nil {
		return err
	}
	return tx.Create(&models.OrderStatusHistory{
		OrderID:     order.ID,
		FromStatus:  from,
		ToStatus:    to,
		ChangedByID: changedBy,
		Note:        note,
		CreatedAt:   now,
	}).Error
}

// UpdateOrderStatus applies a staff status change. Cancelling an order of an
// open session lowers the session totals.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, status string, changedBy *uint, note string) (*models.Order, error) {
	to := models.OrderStatus(strings.ToUpper(strings.TrimSpace(status)))
	if _, ok := orderRank[to]; !ok && to != models.OrderCancelled {
		return nil, utils.Validation("invalid order status %q", status)
	}

	var (
		order       models.Order
		from        models.OrderStatus
		openTickets []models.KitchenTicket
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("order not found")
		}
		if err != nil {
			return err
		}
		from = order.Status
		if !CanAdvanceOrder(from, to) {
			return utils.Conflict("order cannot move from %s to %s", from, to)
		}

		var session *models.TableSession
		if to == models.OrderCancelled && order.TableSessionID != nil {
			var sess models.TableSession
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&sess, *order.TableSessionID).Error; err != nil {
				return err
			}
			if sess.Status != models.SessionActive {
				return utils.Conflict("order belongs to a closed session")
			}
			session = &sess
		}

		if err := appendStatus(tx, &order, to, changedBy, note, s.Now()); err != nil {
			return err
		}
		if to == models.OrderCancelled {
			if err := tx.Where("order_id = ? AND status <> ?", order.ID, models.TicketDelivered).
				Order("id ASC").Find(&openTickets).Error; err != nil {
				return err
			}
		}
		if session != nil {
			return refreshSessionTotals(tx, session)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"order_id": order.ID,
		"from":     from,
		"to":       to,
	}).Info("order status changed")
	s.Notifier.OrderStatusChanged(&order, from)
	if to == models.OrderCancelled {
		s.Notifier.OrderCancelled(&order, openTickets)
	}
	return &order, nil
}

// OrderTracking is the public view of an order.
type OrderTracking struct {
	PublicCode     string             `json:"publicCode"`
	Status         models.OrderStatus `json:"status"`
	CustomerName   string             `json:"customerName"`
	TotalCents     int64              `json:"totalCents"`
	TotalFormatted string             `json:"totalFormatted"`
	Items          []models.OrderItem `json:"items"`
	Tickets        []TrackingTicket   `json:"tickets"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

type TrackingTicket struct {
	Station      models.Station      `json:"station"`
	TicketNumber string              `json:"ticketNumber"`
	Status       models.TicketStatus `json:"status"`
}

// GetOrderByTracking resolves a public code with a matching tracking token.
func (s *OrderService) GetOrderByTracking(ctx context.Context, code, token string) (*OrderTracking, error) {
	claims, err := utils.ParseTrackingToken(token)
	if err != nil {
		return nil, utils.Unauthorized("invalid tracking token")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if claims.PublicCode != code {
		return nil, utils.Forbidden("token does not match this order")
	}

	var order models.Order
	err = s.DB.WithContext(ctx).
		Preload("Items").
		Preload("KitchenTickets").
		Where("public_code = ?", code).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("order not found")
	}
	if err != nil {
		return nil, err
	}

	view := &OrderTracking{
		PublicCode:     order.PublicCode,
		Status:         order.Status,
		CustomerName:   order.CustomerName,
		TotalCents:     order.TotalCents,
		TotalFormatted: utils.FormatCents(order.TotalCents),
		Items:          order.Items,
		Tickets:        make([]TrackingTicket, 0, len(order.KitchenTickets)),
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, t := range order.KitchenTickets {
		view.Tickets = append(view.Tickets, TrackingTicket{Station: t.Station, TicketNumber: t.TicketNumber, Status: t.Status})
	}
	return view, nil
}

// ListSessionOrders returns the orders of one session, oldest first.
func (s *OrderService) ListSessionOrders(ctx context.Context, sessionID uint) ([]models.Order, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.TableSession{}).Where("id = ?", sessionID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, utils.NotFound("session not found")
	}
	var orders []models.Order
	err := s.DB.WithContext(ctx).
		Preload("Items").
		Preload("KitchenTickets").
		Where("table_session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}
