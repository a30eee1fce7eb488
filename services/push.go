package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"github.com/Thiahho/Resto-Bar-sub001/models"
	"github.com/Thiahho/Resto-Bar-sub001/utils"
)

// MessagePublisher sends one JSON document to a queue.
type MessagePublisher interface {
	Publish(ctx context.Context, v interface{}) error
}

// AMQPPublisher publishes persistent JSON messages to a durable queue on the
// default exchange. The connection is dialed on first use and re-dialed after
// it drops.
type AMQPPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue}
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq dial: %w", err)
		}
		p.conn = conn
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	p.ch = ch
	return ch, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// KitchenPushEvent is the message consumed by the push gateway.
type KitchenPushEvent struct {
	Station      models.Station `json:"station"`
	TicketNumber string         `json:"ticketNumber"`
	TicketID     uint           `json:"ticketId"`
	OrderID      uint           `json:"orderId"`
	Title        string         `json:"title"`
	Body         string         `json:"body"`
	DeviceTokens []string       `json:"deviceTokens"`
}

// StationPushNotifier looks up the active device subscriptions of a station
// and publishes one push event covering all of them.
type StationPushNotifier struct {
	DB        *gorm.DB
	Publisher MessagePublisher
}

func NewStationPushNotifier(db *gorm.DB, publisher MessagePublisher) *StationPushNotifier {
	return &StationPushNotifier{DB: db, Publisher: publisher}
}

func (s *StationPushNotifier) NotifyStation(ctx context.Context, ticket TicketDTO) error {
	var tokens []string
	err := s.DB.WithContext(ctx).Model(&models.PushSubscription{}).
		Where("station = ? AND is_active = ?", ticket.Station, true).
		Pluck("device_token", &tokens).Error
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	itemCount := 0
	for _, it := range ticket.Items {
		itemCount += it.Qty
	}
	event := KitchenPushEvent{
		Station:      ticket.Station,
		TicketNumber: ticket.TicketNumber,
		TicketID:     ticket.ID,
		OrderID:      ticket.OrderID,
		Title:        fmt.Sprintf("New ticket %s", ticket.TicketNumber),
		Body:         fmt.Sprintf("%d item(s) for %s", itemCount, ticket.Station),
		DeviceTokens: tokens,
	}
	if err := s.Publisher.Publish(ctx, event); err != nil {
		return err
	}
	utils.InfoLogger.WithFields(map[string]interface{}{
		"ticket":  ticket.TicketNumber,
		"devices": len(tokens),
	}).Info("push event queued")
	return nil
}
