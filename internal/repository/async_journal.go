package repository

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"
)

var ErrJournalClosed = errors.New("event journal closed")

const (
	defaultJournalBuffer = 1024
	journalWriteTimeout  = 5 * time.Second
)

// AsyncJournal decouples journal writes from the callers. Appends and
// unresolved marks go through a buffered channel serviced by one writer
// goroutine; when the buffer is full the write is dropped and counted
// rather than stalling a trust update. Reads go straight to the inner
// journal.
type AsyncJournal struct {
	inner  EventJournal
	logger *log.Logger

	ops  chan asyncOp
	done chan struct{}

	closed     atomic.Bool
	dropped    atomic.Uint64
	dropWarned atomic.Bool
}

type asyncOp struct {
	rec        *EventRecord
	unresolved *UnresolvedEvent
}

func NewAsyncJournal(inner EventJournal, buffer int, logger *log.Logger) *AsyncJournal {
	if buffer <= 0 {
		buffer = defaultJournalBuffer
	}
	if logger == nil {
		logger = log.Default()
	}
	j := &AsyncJournal{
		inner:  inner,
		logger: logger,
		ops:    make(chan asyncOp, buffer),
		done:   make(chan struct{}),
	}
	go j.run()
	return j
}

func (j *AsyncJournal) run() {
	defer close(j.done)
	for op := range j.ops {
		ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
		var err error
		switch {
		case op.rec != nil:
			err = j.inner.Append(ctx, *op.rec)
		case op.unresolved != nil:
			err = j.inner.MarkUnresolved(ctx, *op.unresolved)
		}
		cancel()
		if err != nil {
			j.logger.Printf("[Journal] write failed: %v", err)
		}
	}
}

func (j *AsyncJournal) enqueue(op asyncOp) error {
	if j.closed.Load() {
		return ErrJournalClosed
	}
	select {
	case j.ops <- op:
		return nil
	default:
		j.dropped.Add(1)
		if j.dropWarned.CompareAndSwap(false, true) {
			j.logger.Printf("[Journal] buffer full, dropping writes")
		}
		return nil
	}
}

func (j *AsyncJournal) Append(_ context.Context, rec EventRecord) error {
	return j.enqueue(asyncOp{rec: &rec})
}

func (j *AsyncJournal) MarkUnresolved(_ context.Context, ev UnresolvedEvent) error {
	return j.enqueue(asyncOp{unresolved: &ev})
}

func (j *AsyncJournal) Replay(ctx context.Context, fn func(EventRecord) error) error {
	return j.inner.Replay(ctx, fn)
}

func (j *AsyncJournal) Unresolved(ctx context.Context, limit int) ([]UnresolvedEvent, error) {
	return j.inner.Unresolved(ctx, limit)
}

// Dropped reports how many writes were discarded because the buffer was full.
func (j *AsyncJournal) Dropped() uint64 {
	return j.dropped.Load()
}

// Close stops accepting writes, flushes the buffer and waits for the writer
// goroutine to finish.
func (j *AsyncJournal) Close() error {
	if !j.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(j.ops)
	<-j.done
	return nil
}
