package trust

import "time"

// Policy holds the tunable constants of the scoring model. All deltas are
// expressed on the 0..100 trust scale; event weights scale them down.
type Policy struct {
	// ClaimDelta is the base increment for a self-reported claim, scaled by
	// the claim's confidence and the diminishing evidence factor.
	ClaimDelta float64

	// ProvisionalCeiling caps trust built from claims alone. Only a passing
	// verification lifts an edge past it.
	ProvisionalCeiling float64

	// PassDelta is the base increment for a passing verification.
	PassDelta float64

	// FailPenalty is the base decrement for a failing verification.
	FailPenalty float64

	// DecayAfter is how long an edge may go without events before sweeps
	// start eroding it.
	DecayAfter time.Duration

	// DecayInterval is the minimum spacing between two decay steps on the
	// same edge, which is what makes back-to-back sweeps idempotent.
	DecayInterval time.Duration

	// DecayStep is the flat amount removed per decay step, floored at zero.
	DecayStep float64

	// MaxRetries bounds the compare-and-swap loop before an event write
	// gives up with a stale-write error.
	MaxRetries int

	// DefaultMinTrust is the threshold applied when a caller does not name
	// one. Zero keeps the "any positive trust" rule.
	DefaultMinTrust float64
}

func DefaultPolicy() Policy {
	return Policy{
		ClaimDelta:         15,
		ProvisionalCeiling: 40,
		PassDelta:          60,
		FailPenalty:        25,
		DecayAfter:         180 * 24 * time.Hour,
		DecayInterval:      30 * 24 * time.Hour,
		DecayStep:          5,
		MaxRetries:         5,
		DefaultMinTrust:    0,
	}
}
