package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Thiahho/Resto-Bar-sub001/models"
)

// ItemModifier is a modifier chosen for an order item.
type ItemModifier struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

// BusinessDate is the local calendar day tickets are numbered under.
func BusinessDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTicketNumber renders a station prefix plus a sequence of at least three digits.
func FormatTicketNumber(station models.Station, seq int) string {
	return fmt.Sprintf("%s%03d", station.Prefix(), seq)
}

// TicketRouter splits order items into one kitchen ticket per station.
type TicketRouter struct {
	Sequencer TicketSequencer
	Now       func() time.Time
}

func NewTicketRouter(seq TicketSequencer) *TicketRouter {
	if seq == nil {
		seq = DBTicketSequencer{}
	}
	return &TicketRouter{Sequencer: seq, Now: time.Now}
}

type stationGroup struct {
	station models.Station
	items   []models.TicketItem
}

// RouteOrderToKitchen creates the tickets for order inside tx and returns
// them. Products without a category or station go to KITCHEN. Stations keep
// the order in which their first item appears.
func (r *TicketRouter) RouteOrderToKitchen(ctx context.Context, tx *gorm.DB, order *models.Order, items []models.OrderItem) ([]models.KitchenTicket, error) {
	if len(items) == 0 {
		return nil, nil
	}

	stations, err := resolveStations(ctx, tx, items)
	if err != nil {
		return nil, err
	}

	var groups []*stationGroup
	byStation := make(map[models.Station]*stationGroup)
	for _, it := range items {
		st := stations[it.ProductID]
		g, ok := byStation[st]
		if !ok {
			g = &stationGroup{station: st}
			byStation[st] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, models.TicketItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Qty:       it.Quantity,
			Modifiers: modifierNames(it.ModifiersJSON),
			Notes:     it.Notes,
		})
	}

	now := r.Now()
	day := BusinessDate(now)
	tickets := make([]models.KitchenTicket, 0, len(groups))
	for _, g := range groups {
		seq, err := r.Sequencer.Next(ctx, tx, g.station, day)
		if err != nil {
			return nil, err
		}
		snapshot, err := json.Marshal(g.items)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, models.KitchenTicket{
			OrderID:      order.ID,
			BranchID:     order.BranchID,
			TableID:      order.TableID,
			Station:      g.station,
			Status:       models.TicketPending,
			TicketNumber: FormatTicketNumber(g.station, seq),
			BusinessDate: day,
			ItemsJSON:    string(snapshot),
			Notes:        order.Note,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	if err := tx.WithContext(ctx).Create(&tickets).Error; err != nil {
		return nil, fmt.Errorf("create kitchen tickets: %w", err)
	}
	return tickets, nil
}

func resolveStations(ctx context.Context, tx *gorm.DB, items []models.OrderItem) (map[uint]models.Station, error) {
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	var products []models.Product
	if err := tx.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}

	out := make(map[uint]models.Station, len(items))
	for _, id := range ids {
		out[id] = models.StationKitchen
	}
	for _, p := range products {
		if p.Category == nil || p.Category.DefaultStation == "" {
			continue
		}
		st, _ := models.ParseStation(string(p.Category.DefaultStation))
		out[p.ID] = st
	}
	return out, nil
}

func modifierNames(raw string) []string {
	names := []string{}
	if raw == "" {
		return names
	}
	var mods []ItemModifier
	if err := json.Unmarshal([]byte(raw), &mods); err != nil {
		return names
	}
	for _, m := range mods {
		names = append(names, m.Name)
	}
	return names
}
