package models

import "time"

type SessionStatus string

const (
	SessionActive SessionStatus = "ACTIVE"
	SessionClosed SessionStatus = "CLOSED"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer:
		return true
	}
	return false
}

// TableSession is one occupancy of a table. Sessions are never deleted and
// never reopen once CLOSED.
type TableSession struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	TableID  uint   `gorm:"not null;index" json:"tableId"`
	Table    *Table `gorm:"foreignKey:TableID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	// ActiveTableID mirrors TableID while the session is ACTIVE and is NULL
	// afterwards; the unique index allows one ACTIVE session per table.
	ActiveTableID *uint         `gorm:"uniqueIndex:ux_table_sessions_active" json:"-"`
	CustomerName  string        `gorm:"type:varchar(120)" json:"customerName"`
	GuestCount    int           `gorm:"not null;default:1" json:"guestCount"`
	Status        SessionStatus `gorm:"type:varchar(10);not null;default:'ACTIVE';index" json:"status"`
	OpenedAt      time.Time     `gorm:"not null;index" json:"openedAt"`
	ClosedAt      *time.Time    `json:"closedAt,omitempty"`

	OpenedByID *uint `json:"openedById,omitempty"`
	ClosedByID *uint `json:"closedById,omitempty"`
	WaiterID   *uint `json:"waiterId,omitempty"`

	SubtotalCents int64         `gorm:"not null;default:0" json:"subtotalCents"`
	TotalCents    int64         `gorm:"not null;default:0" json:"totalCents"`
	TipCents      int64         `gorm:"not null;default:0" json:"tipCents"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(10)" json:"paymentMethod,omitempty"`
	PaidAt        *time.Time    `json:"paidAt,omitempty"`
	Notes         string        `gorm:"type:text" json:"notes,omitempty"`

	Orders    []Order   `gorm:"foreignKey:TableSessionID" json:"orders,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
