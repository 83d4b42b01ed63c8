package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type DestinationRepository interface {
	Create(ctx context.Context, destination *entity.Destination) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Destination, error)
	FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Destination, error)
	CountAll(ctx context.Context, search string) (int64, error)
	FindPopular(ctx context.Context, search string, limit, offset int) ([]*entity.Destination, error)
	CountPopular(ctx context.Context, search string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID, now time.Time) ([]*entity.Hotel, error)
	ForEach(ctx context.Context, fn func(*entity.Destination) error) error
}

type destinationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewDestinationRepository(db database.PgxIface, log *zap.Logger) DestinationRepository {
	return &destinationRepository{
		db:  db,
		log: log.With(zap.String("repository", "destination")),
	}
}

const destinationColumns = `id, name, description, city, state, country, best_time_to_visit,
		       attractions, average_cost, rating, created_at, updated_at`

var destinationSearchColumns = []string{"name", "city", "state", "country"}

// popularDestination selects destinations rated 4 and above.
const popularDestination = "rating >= 4"

func scanDestination(row pgx.Row) (*entity.Destination, error) {
	var d entity.Destination
	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.City,
		&d.State,
		&d.Country,
		&d.BestTimeToVisit,
		&d.Attractions,
		&d.AverageCost,
		&d.Rating,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *destinationRepository) Create(ctx context.Context, d *entity.Destination) error {
	query := `
		INSERT INTO destinations (` + destinationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(ctx, query,
		d.ID,
		d.Name,
		d.Description,
		d.City,
		d.State,
		d.Country,
		d.BestTimeToVisit,
		d.Attractions,
		d.AverageCost,
		d.Rating,
		d.CreatedAt,
		d.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return fmt.Errorf("create destination %s: %w", d.Name, ErrDuplicate)
	}
	if err != nil {
		r.log.Error("Failed to create destination",
			zap.Error(err),
			zap.String("name", d.Name),
		)
		return fmt.Errorf("create destination %s: %w", d.Name, err)
	}

	return nil
}

func (r *destinationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Destination, error) {
	query := `SELECT ` + destinationColumns + ` FROM destinations WHERE id = $1`

	d, err := scanDestination(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find destination by ID",
			zap.Error(err),
			zap.String("destination_id", id.String()),
		)
		return nil, fmt.Errorf("find destination by ID %s: %w", id.String(), err)
	}

	return d, nil
}

func (r *destinationRepository) FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Destination, error) {
	return r.find(ctx, "", search, limit, offset)
}

func (r *destinationRepository) CountAll(ctx context.Context, search string) (int64, error) {
	return r.count(ctx, "", search)
}

func (r *destinationRepository) FindPopular(ctx context.Context, search string, limit, offset int) ([]*entity.Destination, error) {
	return r.find(ctx, popularDestination, search, limit, offset)
}

func (r *destinationRepository) CountPopular(ctx context.Context, search string) (int64, error) {
	return r.count(ctx, popularDestination, search)
}

func (r *destinationRepository) find(ctx context.Context, condition, search string, limit, offset int) ([]*entity.Destination, error) {
	filter, args := searchFilter(search, destinationSearchColumns...)
	page, args := pageArgs(args, limit, offset)
	query := `SELECT ` + destinationColumns + ` FROM destinations WHERE ` + withCondition(filter, condition) +
		` ORDER BY rating DESC, name` + page

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find destinations",
			zap.Error(err),
			zap.String("condition", condition),
			zap.String("search", search),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find destinations: %w", err)
	}
	defer rows.Close()

	destinations := []*entity.Destination{}
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			r.log.Error("Failed to scan destination row", zap.Error(err))
			return nil, fmt.Errorf("scan destination row: %w", err)
		}
		destinations = append(destinations, d)
	}

	return destinations, rows.Err()
}

func (r *destinationRepository) count(ctx context.Context, condition, search string) (int64, error) {
	filter, args := searchFilter(search, destinationSearchColumns...)
	query := `SELECT COUNT(*) FROM destinations WHERE ` + withCondition(filter, condition)

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count destinations", zap.Error(err), zap.String("search", search))
		return 0, fmt.Errorf("count destinations: %w", err)
	}

	return total, nil
}

// Delete removes a destination and detaches its hotels in one transaction. The detached hotels
// are returned with updated_at moved past their previous value.
func (r *destinationRepository) Delete(ctx context.Context, id uuid.UUID, now time.Time) ([]*entity.Hotel, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	detach := `
		UPDATE hotels
		SET destination_id = NULL,
		    updated_at = GREATEST($2, updated_at + INTERVAL '1 microsecond')
		WHERE destination_id = $1
		RETURNING ` + hotelColumns

	rows, err := tx.Query(ctx, detach, id, now)
	if err != nil {
		r.log.Error("Failed to detach hotels", zap.Error(err), zap.String("destination_id", id.String()))
		return nil, fmt.Errorf("detach hotels of destination %s: %w", id.String(), err)
	}
	detached := []*entity.Hotel{}
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan hotel row: %w", err)
		}
		detached = append(detached, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("detach hotels of destination %s: %w", id.String(), err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM destinations WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return nil, fmt.Errorf("delete destination %s: %w", id.String(), ErrInUse)
	}
	if err != nil {
		r.log.Error("Failed to delete destination", zap.Error(err), zap.String("destination_id", id.String()))
		return nil, fmt.Errorf("delete destination %s: %w", id.String(), err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("delete destination %s: %w", id.String(), ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		r.log.Error("Failed to commit destination delete", zap.Error(err))
		return nil, fmt.Errorf("commit destination delete: %w", err)
	}

	return detached, nil
}

func (r *destinationRepository) ForEach(ctx context.Context, fn func(*entity.Destination) error) error {
	rows, err := r.db.Query(ctx, `SELECT `+destinationColumns+` FROM destinations ORDER BY id`)
	if err != nil {
		r.log.Error("Failed to export destinations", zap.Error(err))
		return fmt.Errorf("export destinations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return fmt.Errorf("scan destination row: %w", err)
		}
		if err := fn(d); err != nil {
			return err
		}
	}

	return rows.Err()
}
