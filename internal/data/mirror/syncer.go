package mirror

import (
	"context"
	"errors"
	"time"

	"travel-booking/internal/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const breakerName = "mirror"

// Syncer applies records to the Store after the primary commit. It never returns an error:
// a failed mirror write is logged and counted, and the next rebuild repairs it.
type Syncer struct {
	store   Store
	cb      *gobreaker.CircuitBreaker[struct{}]
	timeout time.Duration
	log     *zap.Logger
}

func NewSyncer(store Store, timeout time.Duration, log *zap.Logger) *Syncer {
	log = log.With(zap.String("component", "mirror_syncer"))
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Mirror circuit breaker state changed",
				zap.String("from", stateToString(from)),
				zap.String("to", stateToString(to)),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})

	return &Syncer{
		store:   store,
		cb:      cb,
		timeout: timeout,
		log:     log,
	}
}

// Sync writes rec with a deadline of its own, detached from the request context, so a
// client that hangs up after the commit does not abort the mirror write.
func (s *Syncer) Sync(ctx context.Context, rec Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	stale := false
	_, err := s.cb.Execute(func() (struct{}, error) {
		err := s.store.Upsert(ctx, rec)
		if errors.Is(err, ErrStale) {
			stale = true
			return struct{}{}, nil
		}
		return struct{}{}, err
	})

	result := "success"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		result = "rejected"
	case err != nil:
		result = "failure"
	case stale:
		result = "stale"
	}
	metrics.RecordMirrorWrite(string(rec.Collection), result, time.Since(start))

	switch result {
	case "rejected", "failure":
		s.log.Warn("sync_failure",
			zap.Error(err),
			zap.String("result", result),
			zap.String("collection", string(rec.Collection)),
			zap.String("id", rec.ID),
			zap.Int64("version", rec.Version),
			zap.Bool("deleted", rec.Deleted),
		)
	case "stale":
		s.log.Debug("Stale mirror write skipped",
			zap.String("collection", string(rec.Collection)),
			zap.String("id", rec.ID),
			zap.Int64("version", rec.Version),
		)
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
