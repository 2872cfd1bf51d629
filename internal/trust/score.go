package trust

import (
	"fmt"
	"time"

	"workforce-grid/internal/graph"
)

// evidenceWeight discounts each additional piece of evidence: the first event
// lands at full strength, the n-th at 1/(1+n). Combined with the event's own
// quality this keeps repeated identical claims monotonically non-increasing.
func evidenceWeight(quality float64, evidenceCount int) float64 {
	if evidenceCount < 0 {
		evidenceCount = 0
	}
	return quality * (1.0 / float64(1+evidenceCount))
}

func clampTrust(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// nextAfterEvent computes the successor snapshot for one event against the
// current one. It is pure: no clocks, no store access, no side effects.
func nextAfterEvent(p Policy, cur graph.SkillEdge, ev Event) (graph.SkillEdge, error) {
	next := cur
	next.Version = cur.Version + 1
	if ev.OccurredAt.After(cur.LastEvent) {
		next.LastEvent = ev.OccurredAt
	}

	switch ev.Kind {
	case EventSkillClaim:
		delta := p.ClaimDelta * evidenceWeight(ev.Confidence, cur.Evidence)
		next.Trust = clampTrust(cur.Trust + delta)
		if !cur.Verified {
			ceiling := p.ProvisionalCeiling
			if cur.Trust > ceiling {
				ceiling = cur.Trust
			}
			if next.Trust > ceiling {
				next.Trust = ceiling
			}
		}
		next.Evidence = cur.Evidence + 1

	case EventVerification:
		switch ev.Outcome {
		case OutcomePass:
			delta := p.PassDelta * evidenceWeight(ev.Quality, cur.Evidence)
			next.Trust = clampTrust(cur.Trust + delta)
			next.Verified = true
		case OutcomeFail:
			delta := p.FailPenalty * evidenceWeight(ev.Quality, cur.Evidence)
			next.Trust = clampTrust(cur.Trust - delta)
			next.Failures = cur.Failures + 1
		default:
			return graph.SkillEdge{}, fmt.Errorf("%w: outcome %q", ErrInvalidEvent, ev.Outcome)
		}
		next.Evidence = cur.Evidence + 1

	default:
		return graph.SkillEdge{}, fmt.Errorf("%w: kind %q", ErrInvalidEvent, ev.Kind)
	}

	return next, nil
}

// decayEligible reports whether a sweep at now should erode this edge.
func decayEligible(p Policy, cur graph.SkillEdge, now time.Time) bool {
	if cur.Trust <= 0 {
		return false
	}
	if cur.LastEvent.IsZero() || now.Sub(cur.LastEvent) < p.DecayAfter {
		return false
	}
	if !cur.DecayedAt.IsZero() && now.Sub(cur.DecayedAt) < p.DecayInterval {
		return false
	}
	return true
}

// nextAfterDecay applies one decay step. Decay is not evidence: it moves
// DecayedAt but never LastEvent, so a later real event resets the staleness
// clock while repeated sweeps inside one interval stay no-ops.
func nextAfterDecay(p Policy, cur graph.SkillEdge, now time.Time) graph.SkillEdge {
	next := cur
	next.Version = cur.Version + 1
	next.Trust = clampTrust(cur.Trust - p.DecayStep)
	next.DecayedAt = now
	return next
}
