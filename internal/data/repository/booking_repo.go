package repository

import (
	"context"
	"errors"
	"fmt"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// Versioned writes. Each one bumps bookings.version and copies the new value into booking.Version.
	UpdateDetails(ctx context.Context, booking *entity.Booking) error
	Transition(ctx context.Context, booking *entity.Booking, from []entity.BookingStatus) error
	ConfirmPayment(ctx context.Context, booking *entity.Booking, payment *entity.Payment) error
	DeletePending(ctx context.Context, id, userID uuid.UUID) (int64, error)

	ForEach(ctx context.Context, fn func(*entity.Booking) error) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, booking_reference, user_id, booking_type, hotel_id, cab_id, destination_id,
		       check_in_date, check_out_date, number_of_guests, number_of_rooms,
		       total_price, discount, tax_amount, final_amount, booking_status, payment_status,
		       confirmed_at, cancelled_at, completed_at, version, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var (
		booking                       entity.Booking
		bookingType                   entity.BookingType
		hotelID, cabID, destinationID *uuid.UUID
	)

	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.UserID,
		&bookingType,
		&hotelID,
		&cabID,
		&destinationID,
		&booking.CheckInDate,
		&booking.CheckOutDate,
		&booking.NumberOfGuests,
		&booking.NumberOfRooms,
		&booking.TotalPrice,
		&booking.Discount,
		&booking.TaxAmount,
		&booking.FinalAmount,
		&booking.Status,
		&booking.PaymentStatus,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
		&booking.CompletedAt,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// bookings_single_target guarantees a consistent row
	target, errs := entity.TargetFromRefs(bookingType, hotelID, cabID, destinationID)
	if errs != nil {
		return nil, fmt.Errorf("booking %s has an inconsistent target: %v", booking.ID, errs)
	}
	booking.Target = target

	return &booking, nil
}

func statusStrings(statuses []entity.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// Create inserts booking at version 1. A clash on booking_reference yields ErrDuplicate.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, booking_reference, user_id, booking_type, hotel_id, cab_id, destination_id,
		                      check_in_date, check_out_date, number_of_guests, number_of_rooms,
		                      total_price, discount, tax_amount, final_amount, booking_status, payment_status,
		                      version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, 1, $18, $19)
	`

	hotelID, cabID, destinationID := booking.Target.Refs()
	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.Reference,
		booking.UserID,
		booking.Target.Type,
		hotelID,
		cabID,
		destinationID,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.NumberOfGuests,
		booking.NumberOfRooms,
		booking.TotalPrice,
		booking.Discount,
		booking.TaxAmount,
		booking.FinalAmount,
		booking.Status,
		booking.PaymentStatus,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("create booking %s: %w", booking.Reference, ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_reference", booking.Reference),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.Reference, err)
	}

	booking.Version = 1
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	bookings := make([]*entity.Booking, 0, limit)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

// UpdateDetails persists the mutable booking fields. Terminal rows are never touched:
// the write matches no row and ErrStaleState is returned.
func (r *bookingRepository) UpdateDetails(ctx context.Context, booking *entity.Booking) error {
	query := `
		UPDATE bookings
		SET booking_type = $2, hotel_id = $3, cab_id = $4, destination_id = $5,
		    check_in_date = $6, check_out_date = $7, number_of_guests = $8, number_of_rooms = $9,
		    total_price = $10, discount = $11, tax_amount = $12, final_amount = $13,
		    updated_at = $14, version = version + 1
		WHERE id = $1 AND booking_status IN ('pending', 'confirmed')
		RETURNING version
	`

	hotelID, cabID, destinationID := booking.Target.Refs()
	err := r.db.QueryRow(ctx, query,
		booking.ID,
		booking.Target.Type,
		hotelID,
		cabID,
		destinationID,
		booking.CheckInDate,
		booking.CheckOutDate,
		booking.NumberOfGuests,
		booking.NumberOfRooms,
		booking.TotalPrice,
		booking.Discount,
		booking.TaxAmount,
		booking.FinalAmount,
		booking.UpdatedAt,
	).Scan(&booking.Version)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("update booking %s: %w", booking.ID.String(), ErrStaleState)
	}
	if err != nil {
		r.log.Error("Failed to update booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return fmt.Errorf("update booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

// Transition writes the lifecycle columns of booking, but only while the stored status is
// still one of from. Two racing terminal transitions therefore cannot both apply.
func (r *bookingRepository) Transition(ctx context.Context, booking *entity.Booking, from []entity.BookingStatus) error {
	return transitionBooking(ctx, r.db, booking, from)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func transitionBooking(ctx context.Context, db queryRower, booking *entity.Booking, from []entity.BookingStatus) error {
	query := `
		UPDATE bookings
		SET booking_status = $2, payment_status = $3,
		    confirmed_at = $4, cancelled_at = $5, completed_at = $6,
		    updated_at = $7, version = version + 1
		WHERE id = $1 AND booking_status = ANY($8)
		RETURNING version
	`

	err := db.QueryRow(ctx, query,
		booking.ID,
		booking.Status,
		booking.PaymentStatus,
		booking.ConfirmedAt,
		booking.CancelledAt,
		booking.CompletedAt,
		booking.UpdatedAt,
		statusStrings(from),
	).Scan(&booking.Version)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("transition booking %s to %s: %w", booking.ID.String(), booking.Status, ErrStaleState)
	}
	if err != nil {
		return fmt.Errorf("transition booking %s to %s: %w", booking.ID.String(), booking.Status, err)
	}

	return nil
}

// ConfirmPayment applies the pending -> confirmed transition and records the payment in one transaction.
func (r *bookingRepository) ConfirmPayment(ctx context.Context, booking *entity.Booking, payment *entity.Payment) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = transitionBooking(ctx, tx, booking, entity.SourcesOf(entity.BookingStatusConfirmed))
	if err != nil {
		if !errors.Is(err, ErrStaleState) {
			r.log.Error("Failed to confirm booking",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
			)
		}
		return err
	}

	if err := insertPayment(ctx, tx, payment); err != nil {
		r.log.Error("Failed to record payment",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit payment", zap.Error(err))
		return fmt.Errorf("commit payment: %w", err)
	}

	return nil
}

// DeletePending removes a pending booking of userID and returns the version its tombstone must carry.
func (r *bookingRepository) DeletePending(ctx context.Context, id, userID uuid.UUID) (int64, error) {
	query := `
		DELETE FROM bookings
		WHERE id = $1 AND user_id = $2 AND booking_status = 'pending'
		RETURNING version + 1
	`

	var version int64
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("delete booking %s: %w", id.String(), ErrStaleState)
	}
	if err != nil {
		r.log.Error("Failed to delete booking",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return 0, fmt.Errorf("delete booking %s: %w", id.String(), err)
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return version, nil
}

// ForEach streams every booking row in id order.
func (r *bookingRepository) ForEach(ctx context.Context, fn func(*entity.Booking) error) error {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("Failed to export bookings", zap.Error(err))
		return fmt.Errorf("export bookings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return fmt.Errorf("scan booking row: %w", err)
		}
		if err := fn(booking); err != nil {
			return err
		}
	}

	return rows.Err()
}
