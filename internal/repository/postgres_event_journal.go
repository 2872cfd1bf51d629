package repository

import (
	"context"

	"workforce-grid/internal/database"
)

type PostgresEventJournal struct {
	db database.DB
}

func NewPostgresEventJournal(db database.DB) *PostgresEventJournal {
	return &PostgresEventJournal{db: db}
}

func (j *PostgresEventJournal) Append(ctx context.Context, rec EventRecord) error {
	_, err := j.db.Exec(ctx,
		`INSERT INTO trust_events (id, kind, user_id, skill_name, outcome, confidence, quality, source, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Kind, rec.UserID, rec.Skill, rec.Outcome,
		rec.Confidence, rec.Quality, rec.Source, rec.OccurredAt,
	)
	return err
}

func (j *PostgresEventJournal) Replay(ctx context.Context, fn func(EventRecord) error) error {
	rows, err := j.db.Query(ctx,
		`SELECT id, kind, user_id, skill_name, COALESCE(outcome, ''), confidence, quality, COALESCE(source, ''), occurred_at
		 FROM trust_events
		 ORDER BY occurred_at ASC, id ASC`,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rec EventRecord
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.UserID, &rec.Skill, &rec.Outcome,
			&rec.Confidence, &rec.Quality, &rec.Source, &rec.OccurredAt); err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (j *PostgresEventJournal) MarkUnresolved(ctx context.Context, ev UnresolvedEvent) error {
	_, err := j.db.Exec(ctx,
		`INSERT INTO unresolved_events (id, kind, subject, skill_name, reason, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (kind, subject, skill_name) DO NOTHING`,
		ev.ID, ev.Kind, ev.Subject, ev.Skill, ev.Reason, ev.OccurredAt,
	)
	return err
}

func (j *PostgresEventJournal) Unresolved(ctx context.Context, limit int) ([]UnresolvedEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := j.db.Query(ctx,
		`SELECT id, kind, subject, skill_name, COALESCE(reason, ''), occurred_at
		 FROM unresolved_events
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]UnresolvedEvent, 0)
	for rows.Next() {
		var ev UnresolvedEvent
		if err := rows.Scan(&ev.ID, &ev.Kind, &ev.Subject, &ev.Skill, &ev.Reason, &ev.OccurredAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
