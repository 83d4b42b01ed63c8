package mirror

import (
	"context"
	"errors"
)

// ErrStale is returned when the store already holds the same or a newer version of a record.
var ErrStale = errors.New("mirror record is not newer than the stored one")

type Store interface {
	// Upsert applies rec if its version is above the stored one, else returns ErrStale.
	Upsert(ctx context.Context, rec Record) error
	// ClearLive removes the live records of a collection ahead of a rebuild. Tombstones are kept.
	ClearLive(ctx context.Context, collection Collection) error
	InsertMany(ctx context.Context, collection Collection, recs []Record) error
}
