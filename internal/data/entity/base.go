package entity

import (
	"time"

	"github.com/google/uuid"
)

// Model is embedded by every row that is updated in place.
type Model struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SoftDeleteModel rows are hidden by deleted_at instead of removed.
type SoftDeleteModel struct {
	ID        uuid.UUID  `db:"id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (m SoftDeleteModel) IsDeleted() bool {
	return m.DeletedAt != nil
}

// CreatedModel rows are written once.
type CreatedModel struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
