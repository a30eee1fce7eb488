package models

import "time"

type Category struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	BranchID       uint      `gorm:"not null;index" json:"branchId"`
	Name           string    `gorm:"type:varchar(100);not null" json:"name"`
	DefaultStation Station   `gorm:"type:varchar(20)" json:"defaultStation,omitempty"`
	SortOrder      int       `gorm:"not null;default:0" json:"sortOrder"`
	CreatedAt      time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"not null" json:"updatedAt"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CategoryID  *uint     `gorm:"index" json:"categoryId,omitempty"`
	Category    *Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"category,omitempty"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	PriceCents  int64     `gorm:"not null" json:"priceCents"`
	IsActive    bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}
