package usecase

import (
	"context"
	"time"
)

// ReportCache is the slice of the cache the read-side usecases need. Keys
// carry the graph revision, so entries never need explicit invalidation.
type ReportCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
}
