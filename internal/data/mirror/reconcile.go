package mirror

import (
	"context"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/metrics"

	"go.uber.org/zap"
)

const defaultBatchSize = 500

// Exporter streams the projection of every primary row of one collection.
type Exporter func(ctx context.Context, emit func(Record) error) error

// Reconciler rebuilds the mirror from scratch out of the primary store.
type Reconciler struct {
	store     Store
	sources   map[Collection]Exporter
	batchSize int
	log       *zap.Logger
}

func NewReconciler(store Store, log *zap.Logger) *Reconciler {
	return &Reconciler{
		store:     store,
		sources:   make(map[Collection]Exporter),
		batchSize: defaultBatchSize,
		log:       log.With(zap.String("component", "mirror_reconciler")),
	}
}

func (r *Reconciler) Register(c Collection, exp Exporter) {
	r.sources[c] = exp
}

// NewRepositoryReconciler registers every mirrored table of repo.
func NewRepositoryReconciler(store Store, repo *repository.Repository, log *zap.Logger) *Reconciler {
	r := NewReconciler(store, log)
	r.Register(CollectionBookings, func(ctx context.Context, emit func(Record) error) error {
		return repo.Booking.ForEach(ctx, func(b *entity.Booking) error { return emit(BookingRecord(b)) })
	})
	r.Register(CollectionDestinations, func(ctx context.Context, emit func(Record) error) error {
		return repo.Destination.ForEach(ctx, func(d *entity.Destination) error { return emit(DestinationRecord(d)) })
	})
	r.Register(CollectionHotels, func(ctx context.Context, emit func(Record) error) error {
		return repo.Hotel.ForEach(ctx, func(h *entity.Hotel) error { return emit(HotelRecord(h)) })
	})
	r.Register(CollectionCabs, func(ctx context.Context, emit func(Record) error) error {
		return repo.Cab.ForEach(ctx, func(c *entity.Cab) error { return emit(CabRecord(c)) })
	})
	return r
}

// Rebuild clears the live records of each registered collection and re-inserts the current
// primary rows. Tombstones survive, so a late write of a deleted row is still rejected as stale.
// Rows written by live syncs while a collection is being rebuilt can be lost or rejected by
// InsertMany; run it with the API stopped.
func (r *Reconciler) Rebuild(ctx context.Context) error {
	r.log.Warn("Rebuilding mirror; live syncs must be stopped until it completes")
	for _, c := range Collections {
		exp, ok := r.sources[c]
		if !ok {
			continue
		}

		start := time.Now()
		n, err := r.rebuild(ctx, c, exp)
		if err != nil {
			r.log.Error("Mirror rebuild failed", zap.Error(err), zap.String("collection", string(c)))
			return fmt.Errorf("rebuild %s: %w", c, err)
		}

		r.log.Info("Mirror collection rebuilt",
			zap.String("collection", string(c)),
			zap.Int("records", n),
			zap.Duration("took", time.Since(start)),
		)
	}
	return nil
}

func (r *Reconciler) rebuild(ctx context.Context, c Collection, exp Exporter) (int, error) {
	if err := r.store.ClearLive(ctx, c); err != nil {
		return 0, err
	}

	total := 0
	batch := make([]Record, 0, r.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.store.InsertMany(ctx, c, batch); err != nil {
			return err
		}
		metrics.MirrorRebuildRecords.WithLabelValues(string(c)).Add(float64(len(batch)))
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	err := exp(ctx, func(rec Record) error {
		batch = append(batch, rec)
		if len(batch) >= r.batchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return total, err
	}

	return total, flush()
}
