package models

import (
	"time"
)

// OrderItem snapshots the product at order time so history survives catalog edits.
type OrderItem struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OrderID uint   `gorm:"not null;index" json:"orderId"`
	Order   *Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	ProductID           uint   `gorm:"not null" json:"productId"`
	Name                string `gorm:"type:varchar(255);not null" json:"name"`
	Quantity            int    `gorm:"not null" json:"quantity"`
	UnitPriceCents      int64  `gorm:"not null" json:"unitPriceCents"`
	ModifiersTotalCents int64  `gorm:"not null;default:0" json:"modifiersTotalCents"`
	LineTotalCents      int64  `gorm:"not null" json:"lineTotalCents"`
	ModifiersJSON       string `gorm:"type:text" json:"modifiersJson,omitempty"`
	Notes               string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
