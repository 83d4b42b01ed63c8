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

type HotelRepository interface {
	Create(ctx context.Context, hotel *entity.Hotel) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Hotel, error)
	FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Hotel, error)
	CountAll(ctx context.Context, search string) (int64, error)
	FindAvailable(ctx context.Context, search string, limit, offset int) ([]*entity.Hotel, error)
	CountAvailable(ctx context.Context, search string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ForEach(ctx context.Context, fn func(*entity.Hotel) error) error
}

type hotelRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewHotelRepository(db database.PgxIface, log *zap.Logger) HotelRepository {
	return &hotelRepository{
		db:  db,
		log: log.With(zap.String("repository", "hotel")),
	}
}

const hotelColumns = `id, name, location, destination_id, description, price_per_night, rating,
		       amenities, available_rooms, total_rooms, phone, email, created_at, updated_at`

var hotelSearchColumns = []string{"name", "location"}

const availableHotel = "available_rooms > 0"

func scanHotel(row pgx.Row) (*entity.Hotel, error) {
	var h entity.Hotel
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Location,
		&h.DestinationID,
		&h.Description,
		&h.PricePerNight,
		&h.Rating,
		&h.Amenities,
		&h.AvailableRooms,
		&h.TotalRooms,
		&h.Phone,
		&h.Email,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hotelRepository) Create(ctx context.Context, h *entity.Hotel) error {
	query := `
		INSERT INTO hotels (` + hotelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		h.ID,
		h.Name,
		h.Location,
		h.DestinationID,
		h.Description,
		h.PricePerNight,
		h.Rating,
		h.Amenities,
		h.AvailableRooms,
		h.TotalRooms,
		h.Phone,
		h.Email,
		h.CreatedAt,
		h.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create hotel",
			zap.Error(err),
			zap.String("name", h.Name),
		)
		return fmt.Errorf("create hotel %s: %w", h.Name, err)
	}

	return nil
}

func (r *hotelRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Hotel, error) {
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`

	h, err := scanHotel(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find hotel by ID",
			zap.Error(err),
			zap.String("hotel_id", id.String()),
		)
		return nil, fmt.Errorf("find hotel by ID %s: %w", id.String(), err)
	}

	return h, nil
}

func (r *hotelRepository) FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Hotel, error) {
	return r.find(ctx, "", search, limit, offset)
}

func (r *hotelRepository) CountAll(ctx context.Context, search string) (int64, error) {
	return r.count(ctx, "", search)
}

func (r *hotelRepository) FindAvailable(ctx context.Context, search string, limit, offset int) ([]*entity.Hotel, error) {
	return r.find(ctx, availableHotel, search, limit, offset)
}

func (r *hotelRepository) CountAvailable(ctx context.Context, search string) (int64, error) {
	return r.count(ctx, availableHotel, search)
}

func (r *hotelRepository) find(ctx context.Context, condition, search string, limit, offset int) ([]*entity.Hotel, error) {
	filter, args := searchFilter(search, hotelSearchColumns...)
	page, args := pageArgs(args, limit, offset)
	query := `SELECT ` + hotelColumns + ` FROM hotels WHERE ` + withCondition(filter, condition) +
		` ORDER BY rating DESC, name` + page

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find hotels",
			zap.Error(err),
			zap.String("condition", condition),
			zap.String("search", search),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find hotels: %w", err)
	}
	defer rows.Close()

	hotels := []*entity.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			r.log.Error("Failed to scan hotel row", zap.Error(err))
			return nil, fmt.Errorf("scan hotel row: %w", err)
		}
		hotels = append(hotels, h)
	}

	return hotels, rows.Err()
}

func (r *hotelRepository) count(ctx context.Context, condition, search string) (int64, error) {
	filter, args := searchFilter(search, hotelSearchColumns...)
	query := `SELECT COUNT(*) FROM hotels WHERE ` + withCondition(filter, condition)

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count hotels", zap.Error(err), zap.String("search", search))
		return 0, fmt.Errorf("count hotels: %w", err)
	}

	return total, nil
}

// Delete fails with ErrInUse while bookings still reference the hotel.
func (r *hotelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM hotels WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("delete hotel %s: %w", id.String(), ErrInUse)
	}
	if err != nil {
		r.log.Error("Failed to delete hotel", zap.Error(err), zap.String("hotel_id", id.String()))
		return fmt.Errorf("delete hotel %s: %w", id.String(), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete hotel %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *hotelRepository) ForEach(ctx context.Context, fn func(*entity.Hotel) error) error {
	rows, err := r.db.Query(ctx, `SELECT `+hotelColumns+` FROM hotels ORDER BY id`)
	if err != nil {
		r.log.Error("Failed to export hotels", zap.Error(err))
		return fmt.Errorf("export hotels: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return fmt.Errorf("scan hotel row: %w", err)
		}
		if err := fn(h); err != nil {
			return err
		}
	}

	return rows.Err()
}
