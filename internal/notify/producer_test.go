package notify

import (
	"testing"
	"time"

	"travel-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewBookingEvent(t *testing.T) {
	b := &entity.Booking{
		Reference:     "TRV-20261018-ABCDEF1234",
		UserID:        uuid.New(),
		Target:        entity.Target{Type: entity.BookingTypeHotel, ID: uuid.New()},
		FinalAmount:   decimal.RequireFromString("990"),
		Status:        entity.BookingStatusCancelled,
		PaymentStatus: entity.PaymentStatusPending,
	}
	b.ID = uuid.New()
	at := time.Now()

	event := NewBookingEvent(EventBookingCancelled, b, at)

	assert.Equal(t, EventBookingCancelled, event.Type)
	assert.Equal(t, b.ID.String(), event.BookingID)
	assert.Equal(t, "hotel", event.BookingType)
	assert.Equal(t, "cancelled", event.Status)
	assert.Equal(t, "990.00", event.FinalAmount)
	assert.Equal(t, at, event.OccurredAt)
}

func TestHeaderValue(t *testing.T) {
	headers := []kafka.Header{{Key: "event", Value: []byte(EventBookingCreated)}}

	assert.Equal(t, EventBookingCreated, headerValue(headers, "event"))
	assert.Empty(t, headerValue(headers, "missing"))
}
