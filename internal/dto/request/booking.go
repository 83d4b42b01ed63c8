package request

import "github.com/shopspring/decimal"

type CreateBookingRequest struct {
	BookingType    string           `json:"booking_type" validate:"required,oneof=hotel cab destination"`
	HotelID        *string          `json:"hotel_id,omitempty" validate:"omitempty,uuid"`
	CabID          *string          `json:"cab_id,omitempty" validate:"omitempty,uuid"`
	DestinationID  *string          `json:"destination_id,omitempty" validate:"omitempty,uuid"`
	TotalPrice     *decimal.Decimal `json:"total_price" validate:"required"`
	Discount       *decimal.Decimal `json:"discount,omitempty"`
	TaxAmount      *decimal.Decimal `json:"tax_amount,omitempty"`
	CheckInDate    *string          `json:"check_in_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CheckOutDate   *string          `json:"check_out_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NumberOfGuests *int             `json:"number_of_guests,omitempty" validate:"omitempty,gte=1,lte=50"`
	NumberOfRooms  *int             `json:"number_of_rooms,omitempty" validate:"omitempty,gte=1,lte=20"`
}

// UpdateBookingRequest is a partial update: nil fields keep their current value.
// Owner, id, reference and statuses are not patchable.
type UpdateBookingRequest struct {
	BookingType    *string          `json:"booking_type,omitempty" validate:"omitempty,oneof=hotel cab destination"`
	HotelID        *string          `json:"hotel_id,omitempty" validate:"omitempty,uuid"`
	CabID          *string          `json:"cab_id,omitempty" validate:"omitempty,uuid"`
	DestinationID  *string          `json:"destination_id,omitempty" validate:"omitempty,uuid"`
	TotalPrice     *decimal.Decimal `json:"total_price,omitempty"`
	Discount       *decimal.Decimal `json:"discount,omitempty"`
	TaxAmount      *decimal.Decimal `json:"tax_amount,omitempty"`
	CheckInDate    *string          `json:"check_in_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CheckOutDate   *string          `json:"check_out_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	NumberOfGuests *int             `json:"number_of_guests,omitempty" validate:"omitempty,gte=1,lte=50"`
	NumberOfRooms  *int             `json:"number_of_rooms,omitempty" validate:"omitempty,gte=1,lte=20"`
}

// ChangesTarget reports whether the patch touches the booking target.
func (r *UpdateBookingRequest) ChangesTarget() bool {
	return r.BookingType != nil || r.HotelID != nil || r.CabID != nil || r.DestinationID != nil
}

type PayBookingRequest struct {
	Method        string  `json:"method" validate:"required,oneof=card upi net_banking wallet"`
	TransactionID *string `json:"transaction_id,omitempty" validate:"omitempty,max=100"`
}
