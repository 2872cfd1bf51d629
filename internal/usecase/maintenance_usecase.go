package usecase

import (
	"context"
	"log"
	"time"

	"workforce-grid/internal/trust"

	"github.com/google/uuid"
)

const (
	sweepLockKey = "trust:sweep:lock"
	sweepLockTTL = 5 * time.Minute
)

type DecaySummary struct {
	At        time.Time
	Scanned   int
	Decayed   int
	Conflicts int
	Took      time.Duration

	// Skipped is set when another replica held the sweep lock.
	Skipped bool
}

type MaintenanceUsecase interface {
	RunDecay(ctx context.Context) (DecaySummary, error)
}

type Maintenance struct {
	engine *trust.Engine
	cache  ReportCache
	logger *log.Logger
}

func NewMaintenanceUsecase(engine *trust.Engine, cache ReportCache, logger *log.Logger) *Maintenance {
	if logger == nil {
		logger = log.Default()
	}
	return &Maintenance{engine: engine, cache: cache, logger: logger}
}

// RunDecay runs one decay sweep, guarded by a short cache lock so that
// replicas sharing a Redis do not sweep concurrently. Without a cache the
// sweep always runs.
func (u *Maintenance) RunDecay(ctx context.Context) (DecaySummary, error) {
	if u.cache != nil {
		ok, err := u.cache.SetIfNotExists(ctx, sweepLockKey, uuid.NewString(), sweepLockTTL)
		if err == nil && !ok {
			u.logger.Printf("[Maintenance] decay sweep skipped, lock held elsewhere")
			return DecaySummary{At: time.Now().UTC(), Skipped: true}, nil
		}
		defer func() {
			_ = u.cache.Delete(context.Background(), sweepLockKey)
		}()
	}

	res, err := u.engine.DecaySweep(ctx, time.Now().UTC())
	summary := DecaySummary{
		At:        res.At,
		Scanned:   res.Scanned,
		Decayed:   res.Decayed,
		Conflicts: res.Conflicts,
		Took:      res.Took,
	}
	if err != nil {
		return summary, err
	}
	return summary, nil
}
