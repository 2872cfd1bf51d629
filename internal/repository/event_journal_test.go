package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"workforce-grid/internal/database"

	"github.com/google/uuid"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func record(userID, skill string, at time.Time) EventRecord {
	return EventRecord{
		ID:         uuid.New(),
		Kind:       "SKILL_CLAIM",
		UserID:     userID,
		Skill:      skill,
		Confidence: 0.8,
		Source:     "test",
		OccurredAt: at,
	}
}

func TestMemoryJournalReplaysInOccurrenceOrder(t *testing.T) {
	j := NewMemoryEventJournal()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	later := record("u-1", "Welding", base.Add(2*time.Hour))
	first := record("u-2", "Plumbing", base)
	mid := record("u-3", "Masonry", base.Add(time.Hour))
	for _, rec := range []EventRecord{later, first, mid} {
		if err := j.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	var users []string
	err := j.Replay(ctx, func(rec EventRecord) error {
		users = append(users, rec.UserID)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	want := []string{"u-2", "u-3", "u-1"}
	if len(users) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(users))
	}
	for i := range want {
		if users[i] != want[i] {
			t.Fatalf("expected replay order %v, got %v", want, users)
		}
	}
}

func TestMemoryJournalIgnoresDuplicateRecordID(t *testing.T) {
	j := NewMemoryEventJournal()
	ctx := context.Background()

	rec := record("u-1", "Welding", time.Now())
	if err := j.Append(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := j.Append(ctx, rec); err != nil {
		t.Fatalf("duplicate append: %v", err)
	}

	count := 0
	if err := j.Replay(ctx, func(EventRecord) error { count++; return nil }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record after duplicate append, got %d", count)
	}
}

func TestMemoryJournalReplayStopsOnCallbackError(t *testing.T) {
	j := NewMemoryEventJournal()
	ctx := context.Background()
	base := time.Now()
	for i := 0; i < 3; i++ {
		if err := j.Append(ctx, record("u-1", "Welding", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	boom := errors.New("boom")
	seen := 0
	err := j.Replay(ctx, func(EventRecord) error {
		seen++
		if seen == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if seen != 2 {
		t.Fatalf("expected replay to stop after 2 records, got %d", seen)
	}
}

func TestMemoryJournalDedupesUnresolved(t *testing.T) {
	j := NewMemoryEventJournal()
	ctx := context.Background()
	at := time.Now()

	ev := UnresolvedEvent{
		ID:         uuid.New(),
		Kind:       "TRUST_EVENT",
		Subject:    "u-1",
		Skill:      "Pipe Fitting",
		Reason:     "skill not in taxonomy",
		OccurredAt: at,
	}
	if err := j.MarkUnresolved(ctx, ev); err != nil {
		t.Fatalf("mark: %v", err)
	}
	dup := ev
	dup.ID = uuid.New()
	dup.OccurredAt = at.Add(time.Minute)
	if err := j.MarkUnresolved(ctx, dup); err != nil {
		t.Fatalf("mark duplicate: %v", err)
	}

	got, err := j.Unresolved(ctx, 10)
	if err != nil {
		t.Fatalf("unresolved: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 unresolved entry, got %d", len(got))
	}
	if got[0].ID != ev.ID {
		t.Fatalf("expected first mark to win, got %v", got[0].ID)
	}
}

func TestMemoryJournalUnresolvedNewestFirst(t *testing.T) {
	j := NewMemoryEventJournal()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	skills := []string{"Pipe Fitting", "Diagnostics", "Wood Working"}
	for i, skill := range skills {
		ev := UnresolvedEvent{
			ID:         uuid.New(),
			Kind:       "JOB_REQUIREMENT",
			Subject:    "job-1",
			Skill:      skill,
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := j.MarkUnresolved(ctx, ev); err != nil {
			t.Fatalf("mark: %v", err)
		}
	}

	got, err := j.Unresolved(ctx, 2)
	if err != nil {
		t.Fatalf("unresolved: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(got))
	}
	if got[0].Skill != "Wood Working" || got[1].Skill != "Diagnostics" {
		t.Fatalf("expected newest first, got %q then %q", got[0].Skill, got[1].Skill)
	}
}

func TestAsyncJournalFlushesOnClose(t *testing.T) {
	inner := NewMemoryEventJournal()
	async := NewAsyncJournal(inner, 64, testLogger())
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := async.Append(ctx, record("u-1", "Welding", time.Now())); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := async.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	count := 0
	if err := inner.Replay(ctx, func(EventRecord) error { count++; return nil }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 10 {
		t.Fatalf("expected 10 flushed records, got %d", count)
	}
	if async.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", async.Dropped())
	}
}

func TestAsyncJournalRejectsAppendAfterClose(t *testing.T) {
	async := NewAsyncJournal(NewMemoryEventJournal(), 4, testLogger())
	if err := async.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := async.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	err := async.Append(context.Background(), record("u-1", "Welding", time.Now()))
	if !errors.Is(err, ErrJournalClosed) {
		t.Fatalf("expected ErrJournalClosed, got %v", err)
	}
}

type blockingJournal struct {
	mu      sync.Mutex
	started chan struct{}
	gate    chan struct{}
	appends []EventRecord
}

func newBlockingJournal() *blockingJournal {
	return &blockingJournal{
		started: make(chan struct{}, 8),
		gate:    make(chan struct{}),
	}
}

func (b *blockingJournal) Append(_ context.Context, rec EventRecord) error {
	b.started <- struct{}{}
	<-b.gate
	b.mu.Lock()
	b.appends = append(b.appends, rec)
	b.mu.Unlock()
	return nil
}

func (b *blockingJournal) Replay(context.Context, func(EventRecord) error) error {
	return nil
}

func (b *blockingJournal) MarkUnresolved(context.Context, UnresolvedEvent) error {
	return nil
}

func (b *blockingJournal) Unresolved(context.Context, int) ([]UnresolvedEvent, error) {
	return nil, nil
}

func (b *blockingJournal) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.appends)
}

func TestAsyncJournalDropsWhenBufferFull(t *testing.T) {
	inner := newBlockingJournal()
	async := NewAsyncJournal(inner, 1, testLogger())
	ctx := context.Background()

	// First write is picked up by the writer, which blocks inside the
	// inner journal; the buffer is empty again after that.
	if err := async.Append(ctx, record("u-1", "Welding", time.Now())); err != nil {
		t.Fatalf("append: %v", err)
	}
	<-inner.started

	// Second write fills the single-slot buffer, third has nowhere to go.
	if err := async.Append(ctx, record("u-2", "Plumbing", time.Now())); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := async.Append(ctx, record("u-3", "Masonry", time.Now())); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got := async.Dropped(); got != 1 {
		t.Fatalf("expected 1 dropped write, got %d", got)
	}

	close(inner.gate)
	if err := async.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := inner.count(); got != 2 {
		t.Fatalf("expected 2 persisted writes, got %d", got)
	}
}

type fakeExecDB struct {
	queries []string
	args    [][]any
}

func (f *fakeExecDB) Ping(context.Context) error { return nil }

func (f *fakeExecDB) Close() error { return nil }

func (f *fakeExecDB) Exec(_ context.Context, query string, args ...any) (int64, error) {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return 1, nil
}

func (f *fakeExecDB) Query(context.Context, string, ...any) (database.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeExecDB) QueryRow(context.Context, string, ...any) database.Row {
	return nil
}

func (f *fakeExecDB) SQLDB() *sql.DB { return nil }

func TestPostgresJournalAppendIsIdempotentInsert(t *testing.T) {
	db := &fakeExecDB{}
	j := NewPostgresEventJournal(db)

	rec := record("u-1", "Welding", time.Now())
	if err := j.Append(context.Background(), rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(db.queries) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(db.queries))
	}
	if !strings.Contains(db.queries[0], "ON CONFLICT (id) DO NOTHING") {
		t.Fatalf("expected idempotent insert, got %q", db.queries[0])
	}
	if len(db.args[0]) != 9 {
		t.Fatalf("expected 9 bind args, got %d", len(db.args[0]))
	}
	if db.args[0][0] != rec.ID {
		t.Fatalf("expected id as first arg, got %v", db.args[0][0])
	}
}

func TestPostgresJournalUnresolvedDedupesOnSubjectAndSkill(t *testing.T) {
	db := &fakeExecDB{}
	j := NewPostgresEventJournal(db)

	ev := UnresolvedEvent{
		ID:         uuid.New(),
		Kind:       "JOB_REQUIREMENT",
		Subject:    "job-1",
		Skill:      "Pipe Fitting",
		Reason:     "skill not in taxonomy",
		OccurredAt: time.Now(),
	}
	if err := j.MarkUnresolved(context.Background(), ev); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if len(db.queries) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(db.queries))
	}
	if !strings.Contains(db.queries[0], "ON CONFLICT (kind, subject, skill_name) DO NOTHING") {
		t.Fatalf("expected dedup clause, got %q", db.queries[0])
	}
	if len(db.args[0]) != 6 {
		t.Fatalf("expected 6 bind args, got %d", len(db.args[0]))
	}
}
