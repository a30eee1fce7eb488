package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Thiahho/Resto-Bar-sub001/models"
)

// TicketSequencer hands out the next ticket sequence for a station on a
// business date. tx is the order transaction.
type TicketSequencer interface {
	Next(ctx context.Context, tx *gorm.DB, station models.Station, businessDate string) (int, error)
}

// DBTicketSequencer increments a counter row inside the order transaction, so
// concurrent orders never share a number and a rolled back order releases its
// number together with its tickets.
type DBTicketSequencer struct{}

func (DBTicketSequencer) Next(ctx context.Context, tx *gorm.DB, station models.Station, businessDate string) (int, error) {
	now := time.Now()
	counter := models.TicketCounter{Station: station, BusinessDate: businessDate, LastSeq: 1, UpdatedAt: now}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "station"}, {Name: "business_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"last_seq":   gorm.Expr("last_seq + 1"),
			"updated_at": now,
		}),
	}).Create(&counter).Error
	if err != nil {
		return 0, fmt.Errorf("bump ticket counter: %w", err)
	}

	var stored models.TicketCounter
	if err := tx.WithContext(ctx).
		Where("station = ? AND business_date = ?", station, businessDate).
		First(&stored).Error; err != nil {
		return 0, fmt.Errorf("read ticket counter: %w", err)
	}
	return stored.LastSeq, nil
}

// RedisTicketSequencer uses INCR on a per-station per-day key. Numbers are
// unique across instances but a rolled back order leaves a gap.
type RedisTicketSequencer struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTicketSequencer(client *redis.Client) *RedisTicketSequencer {
	return &RedisTicketSequencer{Client: client, TTL: 48 * time.Hour}
}

func ticketSeqKey(station models.Station, businessDate string) string {
	return fmt.Sprintf("rb:ticketseq:%s:%s", station, businessDate)
}

func (s *RedisTicketSequencer) Next(ctx context.Context, _ *gorm.DB, station models.Station, businessDate string) (int, error) {
	key := ticketSeqKey(station, businessDate)
	n, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if n == 1 {
		s.Client.Expire(ctx, key, s.TTL)
	}
	return int(n), nil
}

// CountingTicketSequencer derives the number from the tickets already stored
// for the station and day. Two concurrent orders can read the same count, so
// it is only suitable for a single writer.
type CountingTicketSequencer struct{}

func (CountingTicketSequencer) Next(ctx context.Context, tx *gorm.DB, station models.Station, businessDate string) (int, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&models.KitchenTicket{}).
		Where("station = ? AND business_date = ?", station, businessDate).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count) + 1, nil
}
