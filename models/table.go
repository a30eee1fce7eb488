package models

import "time"

type TableStatus string

const (
	TableAvailable     TableStatus = "AVAILABLE"
	TableOccupied      TableStatus = "OCCUPIED"
	TableReserved      TableStatus = "RESERVED"
	TableOutOfService  TableStatus = "OUT_OF_SERVICE"
	TableBillRequested TableStatus = "BILL_REQUESTED"
)

type Branch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

type Table struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	BranchID  uint        `gorm:"not null;uniqueIndex:ux_tables_branch_name" json:"branchId"`
	Branch    *Branch     `gorm:"foreignKey:BranchID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Name      string      `gorm:"type:varchar(50);not null;uniqueIndex:ux_tables_branch_name" json:"name"`
	Capacity  int         `gorm:"not null;default:4" json:"capacity"`
	Status    TableStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE'" json:"status"`
	SortOrder int         `gorm:"not null;default:0" json:"sortOrder"`
	IsActive  bool        `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time   `gorm:"not null" json:"updatedAt"`
}
