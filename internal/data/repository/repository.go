package repository

import (
	"errors"

	"travel-booking/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrInUse means a delete was refused because other rows still reference the record.
	ErrInUse = errors.New("record in use")
	// ErrStaleState means a conditional write matched no row because the status moved on.
	ErrStaleState = errors.New("record state changed")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	return hasPgCode(err, pgUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasPgCode(err, pgForeignKeyViolation)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	Booking     BookingRepository
	Payment     PaymentRepository
	Destination DestinationRepository
	Hotel       HotelRepository
	Cab         CabRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		Booking:     NewBookingRepository(db, log),
		Payment:     NewPaymentRepository(db, log),
		Destination: NewDestinationRepository(db, log),
		Hotel:       NewHotelRepository(db, log),
		Cab:         NewCabRepository(db, log),
	}
}
