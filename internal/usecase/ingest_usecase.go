package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"workforce-grid/internal/graph"
	"workforce-grid/internal/repository"
	"workforce-grid/internal/trust"

	"github.com/google/uuid"
)

type ClaimInput struct {
	UserID     string
	Skill      string
	Confidence float64
	Source     string
	OccurredAt time.Time
}

type VerificationInput struct {
	UserID     string
	Skill      string
	Outcome    string
	Quality    float64
	Source     string
	OccurredAt time.Time
}

// SkillStanding is the state of one user-skill edge after an event landed.
type SkillStanding struct {
	UserID    string
	Skill     string
	Trust     float64
	Verified  bool
	Evidence  int
	Failures  int
	LastEvent time.Time
	Version   uint64
}

type UnresolvedItem struct {
	ID         uuid.UUID
	Kind       string
	Subject    string
	Skill      string
	Reason     string
	OccurredAt time.Time
}

type IngestUsecase interface {
	SubmitClaim(ctx context.Context, in ClaimInput) (SkillStanding, error)
	SubmitVerification(ctx context.Context, in VerificationInput) (SkillStanding, error)
	Unresolved(ctx context.Context, limit int) ([]UnresolvedItem, error)
	Replay(ctx context.Context) (applied, skipped int, err error)
}

type Ingest struct {
	engine  *trust.Engine
	journal repository.EventJournal
	logger  *log.Logger
}

func NewIngestUsecase(engine *trust.Engine, journal repository.EventJournal, logger *log.Logger) *Ingest {
	if logger == nil {
		logger = log.Default()
	}
	return &Ingest{engine: engine, journal: journal, logger: logger}
}

func (u *Ingest) SubmitClaim(ctx context.Context, in ClaimInput) (SkillStanding, error) {
	ev := trust.Event{
		ID:         uuid.New(),
		Kind:       trust.EventSkillClaim,
		UserID:     strings.TrimSpace(in.UserID),
		Skill:      strings.TrimSpace(in.Skill),
		Confidence: in.Confidence,
		Source:     strings.TrimSpace(in.Source),
		OccurredAt: in.OccurredAt,
	}
	return u.apply(ctx, ev)
}

func (u *Ingest) SubmitVerification(ctx context.Context, in VerificationInput) (SkillStanding, error) {
	outcome := trust.Outcome(strings.ToUpper(strings.TrimSpace(in.Outcome)))
	ev := trust.Event{
		ID:         uuid.New(),
		Kind:       trust.EventVerification,
		UserID:     strings.TrimSpace(in.UserID),
		Skill:      strings.TrimSpace(in.Skill),
		Outcome:    outcome,
		Quality:    in.Quality,
		Source:     strings.TrimSpace(in.Source),
		OccurredAt: in.OccurredAt,
	}
	return u.apply(ctx, ev)
}

func (u *Ingest) apply(ctx context.Context, ev trust.Event) (SkillStanding, error) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	edge, err := u.engine.Apply(ctx, ev)
	if err != nil {
		if errors.Is(err, graph.ErrNotFound) && u.journal != nil {
			mark := repository.UnresolvedEvent{
				ID:         ev.ID,
				Kind:       "TRUST_EVENT",
				Subject:    ev.UserID,
				Skill:      ev.Skill,
				Reason:     "skill not in taxonomy",
				OccurredAt: ev.OccurredAt,
			}
			if merr := u.journal.MarkUnresolved(ctx, mark); merr != nil {
				u.logger.Printf("[Ingest] mark unresolved failed user=%s skill=%q: %v", ev.UserID, ev.Skill, merr)
			}
		}
		return SkillStanding{}, err
	}

	if u.journal != nil {
		rec := repository.EventRecord{
			ID:         ev.ID,
			Kind:       string(ev.Kind),
			UserID:     edge.UserID,
			Skill:      edge.Skill,
			Outcome:    string(ev.Outcome),
			Confidence: ev.Confidence,
			Quality:    ev.Quality,
			Source:     ev.Source,
			OccurredAt: ev.OccurredAt,
		}
		if jerr := u.journal.Append(ctx, rec); jerr != nil {
			u.logger.Printf("[Ingest] journal append failed event=%s: %v", ev.ID, jerr)
		}
	}

	return standingFromEdge(edge), nil
}

func (u *Ingest) Unresolved(ctx context.Context, limit int) ([]UnresolvedItem, error) {
	if u.journal == nil {
		return []UnresolvedItem{}, nil
	}
	evs, err := u.journal.Unresolved(ctx, limit)
	if err != nil {
		return nil, ErrInternal
	}
	out := make([]UnresolvedItem, 0, len(evs))
	for _, ev := range evs {
		out = append(out, UnresolvedItem{
			ID:         ev.ID,
			Kind:       ev.Kind,
			Subject:    ev.Subject,
			Skill:      ev.Skill,
			Reason:     ev.Reason,
			OccurredAt: ev.OccurredAt,
		})
	}
	return out, nil
}

// Replay rebuilds trust state from the journal, applying records in
// occurrence order. Records whose skill has since left the taxonomy are
// counted as skipped, not failed.
func (u *Ingest) Replay(ctx context.Context) (applied, skipped int, err error) {
	if u.journal == nil {
		return 0, 0, nil
	}
	start := time.Now()
	err = u.journal.Replay(ctx, func(rec repository.EventRecord) error {
		ev := trust.Event{
			ID:         rec.ID,
			Kind:       trust.EventKind(rec.Kind),
			UserID:     rec.UserID,
			Skill:      rec.Skill,
			Outcome:    trust.Outcome(rec.Outcome),
			Confidence: rec.Confidence,
			Quality:    rec.Quality,
			Source:     rec.Source,
			OccurredAt: rec.OccurredAt,
		}
		if _, aerr := u.engine.Apply(ctx, ev); aerr != nil {
			if errors.Is(aerr, graph.ErrNotFound) || errors.Is(aerr, trust.ErrInvalidEvent) {
				skipped++
				return nil
			}
			return aerr
		}
		applied++
		return nil
	})
	if err != nil {
		return applied, skipped, err
	}
	if applied > 0 || skipped > 0 {
		u.logger.Printf("[Ingest] replay done applied=%d skipped=%d took=%s", applied, skipped, time.Since(start))
	}
	return applied, skipped, nil
}

func standingFromEdge(e graph.SkillEdge) SkillStanding {
	return SkillStanding{
		UserID:    e.UserID,
		Skill:     e.Skill,
		Trust:     e.Trust,
		Verified:  e.Verified,
		Evidence:  e.Evidence,
		Failures:  e.Failures,
		LastEvent: e.LastEvent,
		Version:   e.Version,
	}
}
