package trust

import (
	"context"
	"fmt"
	"log"
	"time"

	"workforce-grid/internal/graph"
)

// Notifier receives committed trust changes. Implementations must not block:
// the engine calls them inline on the event path.
type Notifier interface {
	TrustUpdated(edge graph.SkillEdge, ev Event)
	SweepCompleted(res SweepResult)
}

// Engine turns evidence events into HAS_SKILL snapshots. Every write goes
// through the store's per-edge compare-and-swap, so two events for the same
// pair can race freely and both still land exactly once.
type Engine struct {
	store    *graph.Store
	policy   Policy
	notifier Notifier
	logger   *log.Logger
}

func NewEngine(store *graph.Store, policy Policy, notifier Notifier, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{store: store, policy: policy, notifier: notifier, logger: logger}
}

func (e *Engine) Policy() Policy {
	return e.policy
}

// Apply validates and scores one event. Unknown skills fail with
// graph.ErrNotFound so the caller can route the event to the unresolved
// queue; unknown users are registered on first contact.
func (e *Engine) Apply(ctx context.Context, ev Event) (graph.SkillEdge, error) {
	if err := ev.Validate(); err != nil {
		return graph.SkillEdge{}, err
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if !e.store.HasNode(graph.SkillRef(ev.Skill)) {
		return graph.SkillEdge{}, fmt.Errorf("%w: skill %q", graph.ErrNotFound, ev.Skill)
	}
	if _, err := e.store.UpsertUser(ev.UserID, graph.UserAttrs{RegisteredAt: ev.OccurredAt}); err != nil {
		return graph.SkillEdge{}, err
	}

	for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return graph.SkillEdge{}, err
		}

		cur, err := e.store.EnsureSkillEdge(ev.UserID, ev.Skill)
		if err != nil {
			return graph.SkillEdge{}, err
		}
		next, err := nextAfterEvent(e.policy, cur, ev)
		if err != nil {
			return graph.SkillEdge{}, err
		}

		swapped, err := e.store.CompareAndSwapSkillEdge(next)
		if err != nil {
			return graph.SkillEdge{}, err
		}
		if !swapped {
			continue
		}

		e.logger.Printf("[Trust] kind=%s user=%s skill=%q trust=%.1f evidence=%d version=%d",
			ev.Kind, ev.UserID, ev.Skill, next.Trust, next.Evidence, next.Version)
		if e.notifier != nil {
			e.notifier.TrustUpdated(next, ev)
		}
		return next, nil
	}

	return graph.SkillEdge{}, fmt.Errorf("%w: event for user=%s skill=%q", graph.ErrStaleWrite, ev.UserID, ev.Skill)
}

// SweepResult summarizes one decay pass.
type SweepResult struct {
	At        time.Time
	Scanned   int
	Decayed   int
	Conflicts int
	Took      time.Duration
}

// DecaySweep erodes edges that have gone quiet. It iterates a snapshot, so
// edges written mid-sweep are simply picked up next time; a cancelled context
// stops the walk and returns the partial result.
func (e *Engine) DecaySweep(ctx context.Context, now time.Time) (SweepResult, error) {
	started := time.Now()
	res := SweepResult{At: now}

	for _, snap := range e.store.AllSkillEdges() {
		if err := ctx.Err(); err != nil {
			res.Took = time.Since(started)
			return res, err
		}
		res.Scanned++

		cur := snap
		for attempt := 0; attempt <= e.policy.MaxRetries; attempt++ {
			if !decayEligible(e.policy, cur, now) {
				break
			}
			swapped, err := e.store.CompareAndSwapSkillEdge(nextAfterDecay(e.policy, cur, now))
			if err != nil {
				res.Took = time.Since(started)
				return res, err
			}
			if swapped {
				res.Decayed++
				break
			}
			// Lost to a concurrent event; re-read. The fresh event usually
			// resets LastEvent and ends eligibility.
			fresh, ok := e.store.SkillEdge(cur.UserID, cur.Skill)
			if !ok {
				break
			}
			cur = fresh
			if attempt == e.policy.MaxRetries {
				res.Conflicts++
			}
		}
	}

	res.Took = time.Since(started)
	e.logger.Printf("[Trust] sweep scanned=%d decayed=%d conflicts=%d took=%s", res.Scanned, res.Decayed, res.Conflicts, res.Took)
	if e.notifier != nil {
		e.notifier.SweepCompleted(res)
	}
	return res, nil
}
