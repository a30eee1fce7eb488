package models

import "time"

const (
	RoleAdmin   = "ADMIN"
	RoleWaiter  = "WAITER"
	RoleKitchen = "KITCHEN"
)

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	BranchID  *uint  `gorm:"index" json:"branchId,omitempty"`
	Name      string `gorm:"type:varchar(255); not null" json:"name"`
	Email     string `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password  string `gorm:"type:varchar(255); not null" json:"-"`
	Role      string `gorm:"type:varchar(20); not null" json:"role"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PushSubscription registers a kitchen display device for station pushes.
type PushSubscription struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      *uint     `gorm:"index" json:"userId,omitempty"`
	Station     Station   `gorm:"type:varchar(20);not null;index" json:"station"`
	DeviceToken string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"deviceToken"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}
