package repository

import (
	"context"
	"sort"
	"sync"
)

// MemoryEventJournal keeps the journal in process memory. It backs
// deployments that run without Postgres and the test suites; the replay
// and dedup semantics match the Postgres implementation.
type MemoryEventJournal struct {
	mu         sync.Mutex
	records    []EventRecord
	unresolved []UnresolvedEvent
	seen       map[unresolvedKey]struct{}
}

type unresolvedKey struct {
	kind    string
	subject string
	skill   string
}

func NewMemoryEventJournal() *MemoryEventJournal {
	return &MemoryEventJournal{seen: make(map[unresolvedKey]struct{})}
}

func (j *MemoryEventJournal) Append(_ context.Context, rec EventRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, have := range j.records {
		if have.ID == rec.ID {
			return nil
		}
	}
	j.records = append(j.records, rec)
	return nil
}

func (j *MemoryEventJournal) Replay(_ context.Context, fn func(EventRecord) error) error {
	j.mu.Lock()
	ordered := make([]EventRecord, len(j.records))
	copy(ordered, j.records)
	j.mu.Unlock()

	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].OccurredAt.Before(ordered[b].OccurredAt)
	})
	for _, rec := range ordered {
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}

func (j *MemoryEventJournal) MarkUnresolved(_ context.Context, ev UnresolvedEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	key := unresolvedKey{kind: ev.Kind, subject: ev.Subject, skill: ev.Skill}
	if _, dup := j.seen[key]; dup {
		return nil
	}
	j.seen[key] = struct{}{}
	j.unresolved = append(j.unresolved, ev)
	return nil
}

func (j *MemoryEventJournal) Unresolved(_ context.Context, limit int) ([]UnresolvedEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]UnresolvedEvent, 0, len(j.unresolved))
	for i := len(j.unresolved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.unresolved[i])
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].OccurredAt.After(out[b].OccurredAt)
	})
	return out, nil
}
