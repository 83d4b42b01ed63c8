package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/metrics"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
	EventBookingNoShow    = "booking.no_show"
	EventBookingDeleted   = "booking.deleted"
)

type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"booking_reference"`
	UserID        string    `json:"user_id"`
	BookingType   string    `json:"booking_type"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	FinalAmount   string    `json:"final_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *entity.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:          eventType,
		BookingID:     b.ID.String(),
		Reference:     b.Reference,
		UserID:        b.UserID.String(),
		BookingType:   string(b.Target.Type),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		FinalAmount:   b.FinalAmount.StringFixed(2),
		OccurredAt:    at,
	}
}

// Publisher hands booking events to the notification pipeline. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, event BookingEvent) error
	Close() error
}

type KafkaProducer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

// NewKafkaProducer builds an async writer: Publish returns once the message is queued and
// delivery errors are reported through the completion callback.
func NewKafkaProducer(brokers []string, topic string, log *zap.Logger) *KafkaProducer {
	log = log.With(zap.String("component", "kafka_producer"))

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			for _, m := range messages {
				event := headerValue(m.Headers, "event")
				metrics.RecordNotification(event, err)
				if err != nil {
					log.Warn("Failed to deliver booking event",
						zap.Error(err),
						zap.String("event", event),
						zap.String("booking_id", string(m.Key)),
					)
				}
			}
		},
	}

	return &KafkaProducer{writer: writer, log: log}
}

func (p *KafkaProducer) Publish(ctx context.Context, event BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	// keyed by booking so events of one booking stay ordered within a partition
	message := kafka.Message{
		Key:     []byte(event.BookingID),
		Value:   data,
		Time:    event.OccurredAt,
		Headers: []kafka.Header{{Key: "event", Value: []byte(event.Type)}},
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("queue %s event: %w", event.Type, err)
	}

	p.log.Debug("Booking event queued",
		zap.String("event", event.Type),
		zap.String("booking_id", event.BookingID),
	)
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Noop drops events. It is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(context.Context, BookingEvent) error { return nil }

func (Noop) Close() error { return nil }
