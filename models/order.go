package models

import (
	"time"
)

type OrderStatus string

const (
	OrderCreated   OrderStatus = "CREATED"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderInPrep    OrderStatus = "IN_PREP"
	OrderReady     OrderStatus = "READY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// IsTerminal reports whether the order accepts no further status changes.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

const (
	ChannelQR    = "QR"
	ChannelStaff = "STAFF"

	TakeModeDineIn = "DINE_IN"
)

type Order struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	BranchID       uint          `gorm:"not null;index" json:"branchId"`
	TableSessionID *uint         `gorm:"index" json:"tableSessionId,omitempty"`
	TableSession   *TableSession `gorm:"foreignKey:TableSessionID" json:"-"`
	TableID        *uint         `gorm:"index" json:"tableId,omitempty"`

	CustomerName string     `gorm:"type:varchar(120)" json:"customerName"`
	Phone        string     `gorm:"type:varchar(40)" json:"phone,omitempty"`
	Channel      string     `gorm:"type:varchar(20);not null" json:"channel"`
	TakeMode     string     `gorm:"type:varchar(20);not null" json:"takeMode"`
	Address      string     `gorm:"type:varchar(255)" json:"address,omitempty"`
	Reference    string     `gorm:"type:varchar(255)" json:"reference,omitempty"`
	ScheduledAt  *time.Time `json:"scheduledAt,omitempty"`
	Note         string     `gorm:"type:text" json:"note,omitempty"`
	PublicCode   string     `gorm:"type:varchar(16);uniqueIndex" json:"publicCode"`

	SubtotalCents int64       `gorm:"not null;default:0" json:"subtotalCents"`
	DiscountCents int64       `gorm:"not null;default:0" json:"discountCents"`
	TipCents      int64       `gorm:"not null;default:0" json:"tipCents"`
	TotalCents    int64       `gorm:"not null;default:0" json:"totalCents"`
	Status        OrderStatus `gorm:"type:varchar(20);not null;default:'CREATED';index" json:"status"`
	CreatedByID   *uint       `json:"createdById,omitempty"`

	CreatedAt      time.Time            `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time            `gorm:"not null" json:"updatedAt"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID" json:"items"`
	StatusHistory  []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"statusHistory,omitempty"`
	KitchenTickets []KitchenTicket      `gorm:"foreignKey:OrderID" json:"kitchenTickets,omitempty"`
}

// OrderStatusHistory is append-only.
type OrderStatusHistory struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderID     uint        `gorm:"not null;index" json:"orderId"`
	FromStatus  OrderStatus `gorm:"type:varchar(20)" json:"fromStatus,omitempty"`
	ToStatus    OrderStatus `gorm:"type:varchar(20);not null" json:"toStatus"`
	ChangedByID *uint       `json:"changedById,omitempty"`
	Note        string      `gorm:"type:varchar(255)" json:"note,omitempty"`
	CreatedAt   time.Time   `gorm:"not null" json:"createdAt"`
}
