package response

import (
	"time"

	"travel-booking/internal/data/entity"

	"github.com/google/uuid"
)

type BookingResponse struct {
	ID               string               `json:"id"`
	BookingReference string               `json:"booking_reference"`
	UserID           string               `json:"user_id"`
	BookingType      entity.BookingType   `json:"booking_type"`
	HotelID          *string              `json:"hotel_id,omitempty"`
	CabID            *string              `json:"cab_id,omitempty"`
	DestinationID    *string              `json:"destination_id,omitempty"`
	CheckInDate      *string              `json:"check_in_date,omitempty"`
	CheckOutDate     *string              `json:"check_out_date,omitempty"`
	NumberOfGuests   *int                 `json:"number_of_guests,omitempty"`
	NumberOfRooms    *int                 `json:"number_of_rooms,omitempty"`
	TotalPrice       string               `json:"total_price"`
	Discount         string               `json:"discount"`
	TaxAmount        string               `json:"tax_amount"`
	FinalAmount      string               `json:"final_amount"`
	BookingStatus    entity.BookingStatus `json:"booking_status"`
	PaymentStatus    entity.PaymentStatus `json:"payment_status"`
	ConfirmedAt      *time.Time           `json:"confirmed_at,omitempty"`
	CancelledAt      *time.Time           `json:"cancelled_at,omitempty"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

type PaymentResponse struct {
	ID            string               `json:"id"`
	BookingID     string               `json:"booking_id"`
	Method        entity.PaymentMethod `json:"method"`
	Amount        string               `json:"amount"`
	Status        entity.PaymentStatus `json:"status"`
	TransactionID *string              `json:"transaction_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func dateString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	hotelID, cabID, destinationID := b.Target.Refs()

	return BookingResponse{
		ID:               b.ID.String(),
		BookingReference: b.Reference,
		UserID:           b.UserID.String(),
		BookingType:      b.Target.Type,
		HotelID:          idString(hotelID),
		CabID:            idString(cabID),
		DestinationID:    idString(destinationID),
		CheckInDate:      dateString(b.CheckInDate),
		CheckOutDate:     dateString(b.CheckOutDate),
		NumberOfGuests:   b.NumberOfGuests,
		NumberOfRooms:    b.NumberOfRooms,
		TotalPrice:       b.TotalPrice.StringFixed(2),
		Discount:         b.Discount.StringFixed(2),
		TaxAmount:        b.TaxAmount.StringFixed(2),
		FinalAmount:      b.FinalAmount.StringFixed(2),
		BookingStatus:    b.Status,
		PaymentStatus:    b.PaymentStatus,
		ConfirmedAt:      b.ConfirmedAt,
		CancelledAt:      b.CancelledAt,
		CompletedAt:      b.CompletedAt,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func BookingsToResponse(bookings []*entity.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = BookingToResponse(b)
	}
	return out
}

func PaymentToResponse(p *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		BookingID:     p.BookingID.String(),
		Method:        p.Method,
		Amount:        p.Amount.StringFixed(2),
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
	}
}
