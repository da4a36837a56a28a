// Package events announces placed orders on Kafka for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/kasikota/internal/domain"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	EventTypeOrderPlaced = "order.placed"
	Currency             = "ZAR"
)

type OrderPlacedEvent struct {
	EventID   string             `json:"event_id"`
	EventType string             `json:"event_type"`
	Items     []domain.OrderItem `json:"items"`
	Total     float64            `json:"total_amount"`
	Currency  string             `json:"currency"`
	City      string             `json:"city"`
	OrderDate string             `json:"order_date"`
}

// Writer is the part of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  Writer
	timeout time.Duration
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return NewPublisher(w)
}

func NewPublisher(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w, timeout: 5 * time.Second}
}

func (p *KafkaPublisher) OrderPlaced(ctx context.Context, s domain.OrderSnapshot) error {
	event := OrderPlacedEvent{
		EventID:   uuid.NewString(),
		EventType: EventTypeOrderPlaced,
		Items:     s.Items,
		Total:     s.Total,
		Currency:  Currency,
		City:      s.City,
		OrderDate: s.OrderDate,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderPlaced)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write order event failed: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) OrderPlaced(context.Context, domain.OrderSnapshot) error { return nil }

func (NopPublisher) Close() error { return nil }
