// Package events emits domain events for consumers outside the HTTP service.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"resxai/pkg/domain"
)

const (
	defaultExchange            = "resxai.events"
	RoutingAnalysisCompleted   = "analysis.completed"
	analysisCompletedEventType = "analysis.completed"
)

// AnalysisCompleted announces a freshly persisted analysis record.
type AnalysisCompleted struct {
	Type       string    `json:"type"`
	AccountID  string    `json:"accountId"`
	Email      string    `json:"email"`
	RecordID   string    `json:"recordId"`
	Filename   string    `json:"filename"`
	Score      int       `json:"score"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewAnalysisCompleted builds the event for a record owned by account.
func NewAnalysisCompleted(account domain.Account, record domain.AnalysisRecord) AnalysisCompleted {
	return AnalysisCompleted{
		Type:       analysisCompletedEventType,
		AccountID:  account.ID,
		Email:      account.Email,
		RecordID:   record.ID,
		Filename:   record.Filename,
		Score:      record.Score,
		OccurredAt: record.CreatedAt,
	}
}

// Publisher delivers domain events.
type Publisher interface {
	PublishAnalysisCompleted(ctx context.Context, evt AnalysisCompleted) error
}

// AMQPPublisher publishes events to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials the broker and declares the exchange.
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	if strings.TrimSpace(exchange) == "" {
		exchange = defaultExchange
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) PublishAnalysisCompleted(ctx context.Context, evt AnalysisCompleted) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, RoutingAnalysisCompleted, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    evt.OccurredAt,
		Type:         evt.Type,
		Body:         body,
	})
}

// Close shuts the channel and connection down.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.ch.Close()
	return p.conn.Close()
}
