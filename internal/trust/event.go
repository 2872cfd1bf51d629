package trust

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventSkillClaim   EventKind = "SKILL_CLAIM"
	EventVerification EventKind = "VERIFICATION"
)

type Outcome string

const (
	OutcomePass Outcome = "PASS"
	OutcomeFail Outcome = "FAIL"
)

var ErrInvalidEvent = errors.New("trust: invalid event")

// Event is one unit of evidence about a (user, skill) pair. Claims carry
// Confidence, verifications carry Outcome and Quality; both sit in [0, 1].
type Event struct {
	ID         uuid.UUID
	Kind       EventKind
	UserID     string
	Skill      string
	Outcome    Outcome
	Confidence float64
	Quality    float64
	Source     string
	OccurredAt time.Time
}

// Validate normalizes identifiers and rejects events the scoring model has
// no defined transition for.
func (ev *Event) Validate() error {
	ev.UserID = strings.TrimSpace(ev.UserID)
	ev.Skill = strings.TrimSpace(ev.Skill)
	ev.Source = strings.TrimSpace(ev.Source)

	if ev.UserID == "" {
		return fmt.Errorf("%w: user id required", ErrInvalidEvent)
	}
	if ev.Skill == "" {
		return fmt.Errorf("%w: skill name required", ErrInvalidEvent)
	}

	switch ev.Kind {
	case EventSkillClaim:
		if ev.Confidence < 0 || ev.Confidence > 1 {
			return fmt.Errorf("%w: claim confidence %.2f not in [0, 1]", ErrInvalidEvent, ev.Confidence)
		}
	case EventVerification:
		if ev.Outcome != OutcomePass && ev.Outcome != OutcomeFail {
			return fmt.Errorf("%w: verification outcome %q", ErrInvalidEvent, ev.Outcome)
		}
		if ev.Quality < 0 || ev.Quality > 1 {
			return fmt.Errorf("%w: evidence quality %.2f not in [0, 1]", ErrInvalidEvent, ev.Quality)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, ev.Kind)
	}
	return nil
}
