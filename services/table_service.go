package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// allowedTableTransitions lists every status change a table may go through.
// OCCUPIED is entered only by opening a session and left only by requesting
// the bill or closing the session.
var allowedTableTransitions = map[models.TableStatus][]models.TableStatus{
	models.TableAvailable:     {models.TableOccupied, models.TableReserved, models.TableOutOfService},
	models.TableReserved:      {models.TableOccupied, models.TableReserved, models.TableAvailable, models.TableOutOfService},
	models.TableOutOfService:  {models.TableReserved, models.TableAvailable, models.TableOutOfService},
	models.TableOccupied:      {models.TableBillRequested, models.TableAvailable},
	models.TableBillRequested: {models.TableAvailable},
}

func CanTransition(from, to models.TableStatus) bool {
	for _, s := range allowedTableTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type TableService struct {
	DB            *gorm.DB
	Notifier      *Notifier
	Now           func() time.Time
	TableTokenTTL time.Duration
	PublicBaseURL string
}

func NewTableService(db *gorm.DB, notifier *Notifier, tableTokenTTL time.Duration, publicBaseURL string) *TableService {
	if tableTokenTTL <= 0 {
		tableTokenTTL = 24 * time.Hour
	}
	return &TableService{
		DB:            db,
		Notifier:      notifier,
		Now:           time.Now,
		TableTokenTTL: tableTokenTTL,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func lockTable(tx *gorm.DB, tableID uint) (*models.Table, error) {
	var table models.Table
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&table, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("table not found")
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func setTableStatus(tx *gorm.DB, table *models.Table, to models.TableStatus) error {
	if !CanTransition(table.Status, to) {
		return utils.Conflict("table cannot move from %s to %s", table.Status, to)
	}
	table.Status = to
	return tx.Model(table).Update("status", to).Error
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

type OpenSessionInput struct {
	CustomerName string `json:"customerName"`
	GuestCount   int    `json:"guestCount"`
	WaiterID     *uint  `json:"waiterId"`
	Notes        string `json:"notes"`
	OpenedByID   *uint  `json:"-"`
}

// OpenSession starts a session on an active table without one and marks it OCCUPIED.
func (s *TableService) OpenSession(ctx context.Context, tableID uint, in OpenSessionInput) (*models.TableSession, error) {
	if in.GuestCount == 0 {
		in.GuestCount = 1
	}
	if in.GuestCount < 0 {
		return nil, utils.Validation("guestCount must be positive")
	}

	var (
		session models.TableSession
		table   *models.Table
		from    models.TableStatus
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if table, err = lockTable(tx, tableID); err != nil {
			return err
		}
		if !table.IsActive {
			return utils.Conflict("table is inactive")
		}

		var active int64
		if err := tx.Model(&models.TableSession{}).
			Where("table_id = ? AND status = ?", tableID, models.SessionActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return utils.Conflict("table already has an active session")
		}

		from = table.Status
		if err := setTableStatus(tx, table, models.TableOccupied); err != nil {
			return err
		}

		now := s.Now()
		session = models.TableSession{
			TableID:       table.ID,
			ActiveTableID: &table.ID,
			CustomerName:  strings.TrimSpace(in.CustomerName),
			GuestCount:    in.GuestCount,
			Status:        models.SessionActive,
			OpenedAt:      now,
			OpenedByID:    in.OpenedByID,
			WaiterID:      in.WaiterID,
			Notes:         in.Notes,
		}
		if err := tx.Create(&session).Error; err != nil {
			if isDuplicateKey(err) {
				return utils.Conflict("table already has an active session")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"table_id":   table.ID,
		"session_id": session.ID,
	}).Info("table session opened")
	s.Notifier.SessionOpened(&session, table)
	s.Notifier.TableStatusChanged(table, from)
	return &session, nil
}

// RequestBill moves an OCCUPIED table to BILL_REQUESTED.
func (s *TableService) RequestBill(ctx context.Context, tableID uint) (*models.Table, error) {
	return s.transition(ctx, tableID, models.TableBillRequested, []models.TableStatus{models.TableOccupied},
		"bill can only be requested for an occupied table")
}

// Reserve works from any status without an active session.
func (s *TableService) Reserve(ctx context.Context, tableID uint) (*models.Table, error) {
	return s.transition(ctx, tableID, models.TableReserved,
		[]models.TableStatus{models.TableAvailable, models.TableReserved, models.TableOutOfService},
		"an occupied table cannot be reserved")
}

func (s *TableService) Release(ctx context.Context, tableID uint) (*models.Table, error) {
	return s.transition(ctx, tableID, models.TableAvailable,
		[]models.TableStatus{models.TableReserved, models.TableOutOfService},
		"only reserved or out of service tables can be released")
}

func (s *TableService) MarkOutOfService(ctx context.Context, tableID uint) (*models.Table, error) {
	return s.transition(ctx, tableID, models.TableOutOfService,
		[]models.TableStatus{models.TableAvailable, models.TableReserved, models.TableOutOfService},
		"an occupied table cannot be taken out of service")
}

func (s *TableService) transition(ctx context.Context, tableID uint, to models.TableStatus, from []models.TableStatus, reason string) (*models.Table, error) {
	var (
		table *models.Table
		prev  models.TableStatus
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if table, err = lockTable(tx, tableID); err != nil {
			return err
		}
		prev = table.Status
		allowed := false
		for _, st := range from {
			if st == table.Status {
				allowed = true
				break
			}
		}
		if !allowed {
			return utils.Conflict("%s (table is %s)", reason, table.Status)
		}
		return setTableStatus(tx, table, to)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"table_id": table.ID,
		"from":     prev,
		"to":       to,
	}).Info("table status changed")
	if prev != to {
		s.Notifier.TableStatusChanged(table, prev)
	}
	return table, nil
}

type CloseSessionInput struct {
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	TipCents      *int64               `json:"tipCents"`
	ClosedByID    *uint                `json:"-"`
}

// CloseSession settles an ACTIVE session: totals are recomputed from its
// non-cancelled orders plus the tip and the table goes back to AVAILABLE.
func (s *TableService) CloseSession(ctx context.Context, sessionID uint, in CloseSessionInput) (*models.TableSession, error) {
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentCash
	}
	in.PaymentMethod = models.PaymentMethod(strings.ToUpper(string(in.PaymentMethod)))
	if !in.PaymentMethod.Valid() {
		return nil, utils.Validation("invalid payment method %q", in.PaymentMethod)
	}
	if in.TipCents != nil && *in.TipCents < 0 {
		return nil, utils.Validation("tipCents cannot be negative")
	}

	var (
		session models.TableSession
		table   *models.Table
		from    models.TableStatus
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
			return utils.Conflict("session is already closed")
		}
		if table, err = lockTable(tx, session.TableID); err != nil {
			return err
		}

		subtotal, total, err := sumSessionOrders(tx, session.ID)
		if err != nil {
			return err
		}
		if in.TipCents != nil {
			session.TipCents = *in.TipCents
		}

		now := s.Now()
		session.SubtotalCents = subtotal
		session.TotalCents = total + session.TipCents
		session.Status = models.SessionClosed
		session.ActiveTableID = nil
		session.ClosedAt = &now
		session.PaidAt = &now
		session.PaymentMethod = in.PaymentMethod
		session.ClosedByID = in.ClosedByID
		if err := tx.Save(&session).Error; err != nil {
			return err
		}

		from = table.Status
		if from != models.TableAvailable {
			if err := setTableStatus(tx, table, models.TableAvailable); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(map[string]interface{}{
		"session_id": session.ID,
		"table_id":   session.TableID,
		"total":      utils.FormatCents(session.TotalCents),
		"method":     session.PaymentMethod,
	}).Info("table session closed")
	s.Notifier.SessionClosed(&session, table)
	if from != table.Status {
		s.Notifier.TableStatusChanged(table, from)
	}
	return &session, nil
}

// CloseTableSession closes the ACTIVE session of a table, keeping its tip.
func (s *TableService) CloseTableSession(ctx context.Context, tableID uint, method models.PaymentMethod, closedBy *uint) (*models.TableSession, error) {
	var table models.Table
	err := s.DB.WithContext(ctx).First(&table, tableID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("table not found")
	}
	if err != nil {
		return nil, err
	}

	active, err := s.activeSession(ctx, s.DB, tableID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, utils.Conflict("table has no active session")
	}
	return s.CloseSession(ctx, active.ID, CloseSessionInput{PaymentMethod: method, ClosedByID: closedBy})
}

func (s *TableService) activeSession(ctx context.Context, db *gorm.DB, tableID uint) (*models.TableSession, error) {
	var session models.TableSession
	err := db.WithContext(ctx).
		Where("table_id = ? AND status = ?", tableID, models.SessionActive).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// sumSessionOrders returns subtotal and total over the non-cancelled orders of a session.
func sumSessionOrders(tx *gorm.DB, sessionID uint) (int64, int64, error) {
	var sums struct {
		Subtotal int64
		Total    int64
	}
	err := tx.Model(&models.Order{}).
		Select("COALESCE(SUM(subtotal_cents), 0) AS subtotal, COALESCE(SUM(total_cents), 0) AS total").
		Where("table_session_id = ? AND status <> ?", sessionID, models.OrderCancelled).
		Scan(&sums).Error
	return sums.Subtotal, sums.Total, err
}

// GetPublicTable returns an active table and the summary of its open session, if any.
func (s *TableService) GetPublicTable(ctx context.Context, tableID uint) (*TableView, error) {
	var table models.Table
	err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", tableID, true).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("table not found")
	}
	if err != nil {
		return nil, err
	}

	view := &TableView{Table: table}
	active, err := s.activeSession(ctx, s.DB, tableID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		summary := NewSessionSummary(active)
		view.ActiveSession = &summary
	}
	return view, nil
}

// ListTables returns tables with their open session, optionally for one branch.
func (s *TableService) ListTables(ctx context.Context, branchID *uint) ([]TableView, error) {
	q := s.DB.WithContext(ctx).Order("sort_order ASC, name ASC")
	if branchID != nil {
		q = q.Where("branch_id = ?", *branchID)
	}
	var tables []models.Table
	if err := q.Find(&tables).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
	}
	var sessions []models.TableSession
	if len(ids) > 0 {
		if err := s.DB.WithContext(ctx).
			Where("table_id IN ? AND status = ?", ids, models.SessionActive).
			Find(&sessions).Error; err != nil {
			return nil, err
		}
	}
	byTable := make(map[uint]*models.TableSession, len(sessions))
	for i := range sessions {
		byTable[sessions[i].TableID] = &sessions[i]
	}

	out := make([]TableView, 0, len(tables))
	for _, t := range tables {
		view := TableView{Table: t}
		if sess, ok := byTable[t.ID]; ok {
			summary := NewSessionSummary(sess)
			view.ActiveSession = &summary
		}
		out = append(out, view)
	}
	return out, nil
}

type SessionFilter struct {
	Date     string
	Status   string
	BranchID *uint
}

// PaymentTotals are the closed-session takings of one day.
type PaymentTotals struct {
	CashCents     int64  `json:"cashCents"`
	CardCents     int64  `json:"cardCents"`
	TransferCents int64  `json:"transferCents"`
	TipsCents     int64  `json:"tipsCents"`
	TotalCents    int64  `json:"totalCents"`
	Formatted     string `json:"totalFormatted"`
	ClosedCount   int    `json:"closedSessions"`
}

type SessionList struct {
	Date     string                `json:"date"`
	Sessions []models.TableSession `json:"sessions"`
	Totals   PaymentTotals         `json:"totals"`
}

// ListSessions returns the sessions opened on a day (today by default) with
// that day's payment totals.
func (s *TableService) ListSessions(ctx context.Context, f SessionFilter) (*SessionList, error) {
	day := s.Now()
	if f.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", f.Date, time.Local)
		if err != nil {
			return nil, utils.Validation("invalid date %q, expected YYYY-MM-DD", f.Date)
		}
		day = parsed
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 1)

	q := s.DB.WithContext(ctx).Model(&models.TableSession{}).
		Preload("Table").
		Where("table_sessions.opened_at >= ? AND table_sessions.opened_at < ?", start, end).
		Order("table_sessions.opened_at DESC")
	if f.Status != "" {
		status := models.SessionStatus(strings.ToUpper(f.Status))
		if status != models.SessionActive && status != models.SessionClosed {
			return nil, utils.Validation("invalid session status %q", f.Status)
		}
		q = q.Where("table_sessions.status = ?", status)
	}
	if f.BranchID != nil {
		q = q.Joins("JOIN tables ON tables.id = table_sessions.table_id").
			Where("tables.branch_id = ?", *f.BranchID)
	}

	var sessions []models.TableSession
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}

	totals, err := s.dailyTotals(ctx, start, end, f.BranchID)
	if err != nil {
		return nil, err
	}
	return &SessionList{Date: BusinessDate(start), Sessions: sessions, Totals: totals}, nil
}

func (s *TableService) dailyTotals(ctx context.Context, start, end time.Time, branchID *uint) (PaymentTotals, error) {
	var closed []models.TableSession
	q := s.DB.WithContext(ctx).Model(&models.TableSession{}).
		Where("table_sessions.status = ? AND table_sessions.paid_at >= ? AND table_sessions.paid_at < ?", models.SessionClosed, start, end)
	if branchID != nil {
		q = q.Joins("JOIN tables ON tables.id = table_sessions.table_id").
			Where("tables.branch_id = ?", *branchID)
	}
	if err := q.Find(&closed).Error; err != nil {
		return PaymentTotals{}, err
	}

	var t PaymentTotals
	for _, sess := range closed {
		switch sess.PaymentMethod {
		case models.PaymentCard:
			t.CardCents += sess.TotalCents
		case models.PaymentTransfer:
			t.TransferCents += sess.TotalCents
		default:
			t.CashCents += sess.TotalCents
		}
		t.TipsCents += sess.TipCents
		t.TotalCents += sess.TotalCents
	}
	t.ClosedCount = len(closed)
	t.Formatted = utils.FormatCents(t.TotalCents)
	return t, nil
}

// GetSession loads a session with its table, orders, items and tickets.
func (s *TableService) GetSession(ctx context.Context, sessionID uint) (*models.TableSession, error) {
	var session models.TableSession
	err := s.DB.WithContext(ctx).
		Preload("Table").
		Preload("Orders", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Orders.Items").
		Preload("Orders.KitchenTickets").
		First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("session not found")
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

type TableAccess struct {
	TableID   uint      `json:"tableId"`
	SessionID *uint     `json:"sessionId,omitempty"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssueTableToken mints the QR token of a table, bound to its open session when there is one.
func (s *TableService) IssueTableToken(ctx context.Context, tableID uint) (*TableAccess, error) {
	var table models.Table
	err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", tableID, true).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("table not found")
	}
	if err != nil {
		return nil, err
	}

	var sessionID *uint
	active, err := s.activeSession(ctx, s.DB, tableID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		sessionID = &active.ID
	}

	token, exp, err := utils.GenerateTableToken(table.ID, table.BranchID, sessionID, s.TableTokenTTL)
	if err != nil {
		return nil, err
	}
	return &TableAccess{
		TableID:   table.ID,
		SessionID: sessionID,
		Token:     token,
		URL:       fmt.Sprintf("%s/t/%d?token=%s", s.PublicBaseURL, table.ID, token),
		ExpiresAt: exp,
	}, nil
}
