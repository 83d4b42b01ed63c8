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

type CabRepository interface {
	Create(ctx context.Context, cab *entity.Cab) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Cab, error)
	FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Cab, error)
	CountAll(ctx context.Context, search string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ForEach(ctx context.Context, fn func(*entity.Cab) error) error
}

type cabRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCabRepository(db database.PgxIface, log *zap.Logger) CabRepository {
	return &cabRepository{
		db:  db,
		log: log.With(zap.String("repository", "cab")),
	}
}

const cabColumns = `id, company_name, vehicle_type, price_per_km, price_per_hour, capacity, rating,
		       available_cars, description, phone, email, created_at, updated_at`

var cabSearchColumns = []string{"company_name", "vehicle_type"}

func scanCab(row pgx.Row) (*entity.Cab, error) {
	var c entity.Cab
	err := row.Scan(
		&c.ID,
		&c.CompanyName,
		&c.VehicleType,
		&c.PricePerKm,
		&c.PricePerHour,
		&c.Capacity,
		&c.Rating,
		&c.AvailableCars,
		&c.Description,
		&c.Phone,
		&c.Email,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *cabRepository) Create(ctx context.Context, c *entity.Cab) error {
	query := `
		INSERT INTO cabs (` + cabColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.CompanyName,
		c.VehicleType,
		c.PricePerKm,
		c.PricePerHour,
		c.Capacity,
		c.Rating,
		c.AvailableCars,
		c.Description,
		c.Phone,
		c.Email,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create cab",
			zap.Error(err),
			zap.String("company_name", c.CompanyName),
		)
		return fmt.Errorf("create cab %s: %w", c.CompanyName, err)
	}

	return nil
}

func (r *cabRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Cab, error) {
	query := `SELECT ` + cabColumns + ` FROM cabs WHERE id = $1`

	c, err := scanCab(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find cab by ID",
			zap.Error(err),
			zap.String("cab_id", id.String()),
		)
		return nil, fmt.Errorf("find cab by ID %s: %w", id.String(), err)
	}

	return c, nil
}

func (r *cabRepository) FindAll(ctx context.Context, search string, limit, offset int) ([]*entity.Cab, error) {
	filter, args := searchFilter(search, cabSearchColumns...)
	page, args := pageArgs(args, limit, offset)
	query := `SELECT ` + cabColumns + ` FROM cabs WHERE ` + filter + ` ORDER BY rating DESC, company_name` + page

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find all cabs",
			zap.Error(err),
			zap.String("search", search),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all cabs: %w", err)
	}
	defer rows.Close()

	cabs := []*entity.Cab{}
	for rows.Next() {
		c, err := scanCab(rows)
		if err != nil {
			r.log.Error("Failed to scan cab row", zap.Error(err))
			return nil, fmt.Errorf("scan cab row: %w", err)
		}
		cabs = append(cabs, c)
	}

	return cabs, rows.Err()
}

func (r *cabRepository) CountAll(ctx context.Context, search string) (int64, error) {
	filter, args := searchFilter(search, cabSearchColumns...)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cabs WHERE `+filter, args...).Scan(&total); err != nil {
		r.log.Error("Failed to count cabs", zap.Error(err), zap.String("search", search))
		return 0, fmt.Errorf("count cabs: %w", err)
	}

	return total, nil
}

// Delete fails with ErrInUse while bookings still reference the cab.
func (r *cabRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cabs WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("delete cab %s: %w", id.String(), ErrInUse)
	}
	if err != nil {
		r.log.Error("Failed to delete cab", zap.Error(err), zap.String("cab_id", id.String()))
		return fmt.Errorf("delete cab %s: %w", id.String(), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete cab %s: %w", id.String(), ErrNotFound)
	}

	return nil
}

func (r *cabRepository) ForEach(ctx context.Context, fn func(*entity.Cab) error) error {
	rows, err := r.db.Query(ctx, `SELECT `+cabColumns+` FROM cabs ORDER BY id`)
	if err != nil {
		r.log.Error("Failed to export cabs", zap.Error(err))
		return fmt.Errorf("export cabs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCab(rows)
		if err != nil {
			return fmt.Errorf("scan cab row: %w", err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}

	return rows.Err()
}
