package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventRecord is the durable form of a trust event. The graph never waits on
// one of these being written; the journal exists so the in-memory arena can
// be rebuilt by replay.
type EventRecord struct {
	ID         uuid.UUID
	Kind       string
	UserID     string
	Skill      string
	Outcome    string
	Confidence float64
	Quality    float64
	Source     string
	OccurredAt time.Time
}

// UnresolvedEvent is an event or requirement that referenced a skill outside
// the taxonomy. They are reported, never silently dropped. Subject is the
// user or job the reference came from.
type UnresolvedEvent struct {
	ID         uuid.UUID
	Kind       string
	Subject    string
	Skill      string
	Reason     string
	OccurredAt time.Time
}

type EventJournal interface {
	Append(ctx context.Context, rec EventRecord) error

	// Replay streams records in occurrence order into fn, stopping at the
	// first error fn returns.
	Replay(ctx context.Context, fn func(EventRecord) error) error

	// MarkUnresolved records a reference to an unknown skill. Marking the
	// same (kind, subject, skill) again is a no-op.
	MarkUnresolved(ctx context.Context, ev UnresolvedEvent) error

	// Unresolved lists the most recent unresolved references, newest first.
	Unresolved(ctx context.Context, limit int) ([]UnresolvedEvent, error)
}
