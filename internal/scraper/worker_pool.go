package scraper

import (
	"context"
	"sync"
	"time"
)

// Task is one unit of scrape work, tagged with the URL it covers so
// failures can be attributed in the run log.
type Task struct {
	URL string
	Fn  func(ctx context.Context) error
}

// Result reports the outcome of one task.
type Result struct {
	URL string
	Err error
}

// WorkerPool fans scrape tasks out over a fixed set of goroutines with
// an optional shared rate limit. Boards throttle aggressively, so the
// limit applies across all workers, not per worker.
type WorkerPool struct {
	workers int
	tasks   chan Task

	wg sync.WaitGroup

	mu     sync.RWMutex
	rate   <-chan time.Time
	ticker *time.Ticker
}

func NewWorkerPool(workers, buffer int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &WorkerPool{
		workers: workers,
		tasks:   make(chan Task, buffer),
	}
}

// SetRateLimit caps task starts at rps per second across the pool.
// A non-positive rps removes the limit.
func (p *WorkerPool) SetRateLimit(rps int) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	if rps <= 0 {
		return
	}
	t := time.NewTicker(time.Second / time.Duration(rps))
	p.ticker = t
	p.rate = t.C
}

// Submit queues one task. Blocks when the buffer is full.
func (p *WorkerPool) Submit(t Task) {
	if p == nil || t.Fn == nil {
		return
	}
	p.tasks <- t
}

// Close stops the rate ticker and closes the queue; workers drain what
// is already queued and then exit.
func (p *WorkerPool) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
		p.rate = nil
	}
	p.mu.Unlock()
	close(p.tasks)
}

// Run starts the workers and returns the result stream. The stream
// closes once Close has been called and all queued tasks finished.
func (p *WorkerPool) Run(ctx context.Context) <-chan Result {
	buf := p.workers * 128
	if buf < 1 {
		buf = 1
	}
	out := make(chan Result, buf)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, out)
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}

func (p *WorkerPool) runWorker(ctx context.Context, out chan<- Result) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			if t.Fn == nil {
				continue
			}
			if !p.waitRate(ctx) {
				return
			}
			err := t.Fn(ctx)
			select {
			case <-ctx.Done():
				return
			case out <- Result{URL: t.URL, Err: err}:
			}
		}
	}
}

func (p *WorkerPool) waitRate(ctx context.Context) bool {
	p.mu.RLock()
	rate := p.rate
	p.mu.RUnlock()
	if rate == nil {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-rate:
		return true
	}
}
