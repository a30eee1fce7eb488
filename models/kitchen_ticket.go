package models

import (
	"strings"
	"time"
)

type Station string

const (
	StationKitchen  Station = "KITCHEN"
	StationBar      Station = "BAR"
	StationGrill    Station = "GRILL"
	StationDesserts Station = "DESSERTS"
)

var Stations = []Station{StationKitchen, StationBar, StationGrill, StationDesserts}

// ParseStation accepts any casing; ok is false for unknown stations.
func ParseStation(s string) (Station, bool) {
	st := Station(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Stations {
		if st == known {
			return st, true
		}
	}
	return st, false
}

// Prefix is the ticket number prefix; X marks an unknown station.
func (s Station) Prefix() string {
	switch s {
	case StationKitchen:
		return "K"
	case StationBar:
		return "B"
	case StationGrill:
		return "G"
	case StationDesserts:
		return "D"
	}
	return "X"
}

type TicketStatus string

const (
	TicketPending    TicketStatus = "PENDING"
	TicketInProgress TicketStatus = "IN_PROGRESS"
	TicketReady      TicketStatus = "READY"
	TicketDelivered  TicketStatus = "DELIVERED"
)

var ticketRank = map[TicketStatus]int{
	TicketPending:    0,
	TicketInProgress: 1,
	TicketReady:      2,
	TicketDelivered:  3,
}

// ParseTicketStatus accepts any casing; ok is false for unknown values.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	st := TicketStatus(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := ticketRank[st]
	return st, ok
}

// Rank orders statuses along PENDING -> IN_PROGRESS -> READY -> DELIVERED.
func (s TicketStatus) Rank() int {
	if r, ok := ticketRank[s]; ok {
		return r
	}
	return -1
}

type KitchenTicket struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	OrderID      uint         `gorm:"not null;index" json:"orderId"`
	BranchID     uint         `gorm:"not null;index" json:"branchId"`
	TableID      *uint        `json:"tableId,omitempty"`
	Station      Station      `gorm:"type:varchar(20);not null;index:ix_tickets_station_day" json:"station"`
	Status       TicketStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	TicketNumber string       `gorm:"type:varchar(16);not null" json:"ticketNumber"`
	BusinessDate string       `gorm:"type:varchar(10);not null;index:ix_tickets_station_day" json:"businessDate"`
	ItemsJSON    string       `gorm:"type:text;not null" json:"-"`
	Notes        string       `gorm:"type:text" json:"notes,omitempty"`
	AssignedToID *uint        `json:"assignedToId,omitempty"`

	CreatedAt   time.Time  `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	ReadyAt     *time.Time `json:"readyAt,omitempty"`
	DeliveredAt *time.Time `json:"deliveredAt,omitempty"`
}

// TicketItem is one entry of a ticket's immutable items snapshot.
type TicketItem struct {
	ProductID uint     `json:"productId"`
	Name      string   `json:"name"`
	Qty       int      `json:"qty"`
	Modifiers []string `json:"modifiers"`
	Notes     string   `json:"notes,omitempty"`
}

// TicketCounter backs strictly sequential ticket numbers per station per day.
type TicketCounter struct {
	ID           uint      `gorm:"primaryKey"`
	Station      Station   `gorm:"type:varchar(20);not null;uniqueIndex:ux_ticket_counters_day"`
	BusinessDate string    `gorm:"type:varchar(10);not null;uniqueIndex:ux_ticket_counters_day"`
	LastSeq      int       `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"not null"`
}
