package entity

import (
	"fmt"
	"time"

	"travel-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no_show"
)

// IsTerminal reports whether no transition leaves s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCancelled || s == BookingStatusCompleted || s == BookingStatusNoShow
}

// bookingTransitions lists every legal lifecycle edge.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
}

func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesOf returns the statuses from which to is reachable in one step.
func SourcesOf(to BookingStatus) []BookingStatus {
	var out []BookingStatus
	for _, from := range []BookingStatus{BookingStatusPending, BookingStatusConfirmed} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// Booking owns the lifecycle state machine: transition methods validate the edge and stamp the
// matching timestamp, repositories only persist what they are given.
type Booking struct {
	Model
	Reference      string          `db:"booking_reference"`
	UserID         uuid.UUID       `db:"user_id"`
	Target         Target          `db:"-"`
	CheckInDate    *time.Time      `db:"check_in_date"`
	CheckOutDate   *time.Time      `db:"check_out_date"`
	NumberOfGuests *int            `db:"number_of_guests"`
	NumberOfRooms  *int            `db:"number_of_rooms"`
	TotalPrice     decimal.Decimal `db:"total_price"`
	Discount       decimal.Decimal `db:"discount"`
	TaxAmount      decimal.Decimal `db:"tax_amount"`
	FinalAmount    decimal.Decimal `db:"final_amount"`
	Status         BookingStatus   `db:"booking_status"`
	PaymentStatus  PaymentStatus   `db:"payment_status"`
	ConfirmedAt    *time.Time      `db:"confirmed_at"`
	CancelledAt    *time.Time      `db:"cancelled_at"`
	CompletedAt    *time.Time      `db:"completed_at"`
	Version        int64           `db:"version"`
}

// ComputeFinalAmount is total - discount + tax rounded to cents.
func ComputeFinalAmount(total, discount, tax decimal.Decimal) decimal.Decimal {
	return total.Sub(discount).Add(tax).Round(2)
}

func (b *Booking) RecalculateAmounts() {
	b.TotalPrice = b.TotalPrice.Round(2)
	b.Discount = b.Discount.Round(2)
	b.TaxAmount = b.TaxAmount.Round(2)
	b.FinalAmount = ComputeFinalAmount(b.TotalPrice, b.Discount, b.TaxAmount)
}

func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && b.UserID == userID
}

// Validate checks the invariants a persisted booking must hold.
func (b *Booking) Validate() map[string]string {
	errs := b.Target.Validate()
	if errs == nil {
		errs = make(map[string]string)
	}

	if b.Target.Type == BookingTypeHotel {
		if b.CheckInDate == nil {
			errs["check_in_date"] = "Required for hotel bookings"
		}
		if b.CheckOutDate == nil {
			errs["check_out_date"] = "Required for hotel bookings"
		}
		if b.CheckInDate != nil && b.CheckOutDate != nil && !b.CheckOutDate.After(*b.CheckInDate) {
			errs["check_out_date"] = "Must be after check_in_date"
		}
		if b.NumberOfGuests == nil || *b.NumberOfGuests < 1 {
			errs["number_of_guests"] = "Must be at least 1 for hotel bookings"
		}
		if b.NumberOfRooms == nil || *b.NumberOfRooms < 1 {
			errs["number_of_rooms"] = "Must be at least 1 for hotel bookings"
		}
	}

	if b.TotalPrice.IsNegative() {
		errs["total_price"] = "Must not be negative"
	}
	if b.Discount.IsNegative() {
		errs["discount"] = "Must not be negative"
	} else if b.Discount.GreaterThan(b.TotalPrice) {
		errs["discount"] = "Must not exceed total_price"
	}
	if b.TaxAmount.IsNegative() {
		errs["tax_amount"] = "Must not be negative"
	}
	CheckMoneyLimit(errs, "total_price", b.TotalPrice)
	CheckMoneyLimit(errs, "discount", b.Discount)
	CheckMoneyLimit(errs, "tax_amount", b.TaxAmount)
	CheckMoneyLimit(errs, "final_amount", b.FinalAmount)

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ==================== TRANSITIONS ====================

func (b *Booking) transition(to BookingStatus, verb string) error {
	if !CanTransition(b.Status, to) {
		return apperror.InvalidState(fmt.Sprintf("cannot %s a %s booking", verb, b.Status))
	}
	b.Status = to
	return nil
}

// Cancel moves a pending or confirmed booking to cancelled. Payment status is left alone.
func (b *Booking) Cancel(now time.Time) error {
	if err := b.transition(BookingStatusCancelled, "cancel"); err != nil {
		return err
	}
	b.CancelledAt = &now
	b.UpdatedAt = now
	return nil
}

// ConfirmPayment records a successful payment and confirms the booking.
func (b *Booking) ConfirmPayment(now time.Time) error {
	if b.PaymentStatus == PaymentStatusPaid || b.PaymentStatus == PaymentStatusRefunded {
		return apperror.InvalidState(fmt.Sprintf("cannot pay a booking with %s payment", b.PaymentStatus))
	}
	if err := b.transition(BookingStatusConfirmed, "confirm"); err != nil {
		return err
	}
	b.PaymentStatus = PaymentStatusPaid
	b.ConfirmedAt = &now
	b.UpdatedAt = now
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if err := b.transition(BookingStatusCompleted, "complete"); err != nil {
		return err
	}
	b.CompletedAt = &now
	b.UpdatedAt = now
	return nil
}

func (b *Booking) MarkNoShow(now time.Time) error {
	if err := b.transition(BookingStatusNoShow, "mark as no-show"); err != nil {
		return err
	}
	b.UpdatedAt = now
	return nil
}
