package seeder

import (
	"context"
	"fmt"
	"log"
	"time"

	"workforce-grid/internal/graph"
	"workforce-grid/internal/taxonomy"
)

// Reporter receives references the seed data makes to skills outside the
// taxonomy. Seeding never fails on them; they become data-quality signals.
type Reporter interface {
	ReportUnresolved(ctx context.Context, kind, subject, skill, reason string, occurredAt time.Time) error
}

// Deps is everything a seeder may write to.
type Deps struct {
	Graph      *graph.Store
	Taxonomy   *taxonomy.Resolver
	Unresolved Reporter
	Logger     *log.Logger
}

type Seeder interface {
	Name() string
	Run(ctx context.Context, deps Deps) error
}

type Runner struct {
	Seeders []Seeder
}

func (r Runner) Run(ctx context.Context, deps Deps) error {
	if deps.Graph == nil {
		return fmt.Errorf("nil graph store")
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, deps); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		deps.Logger.Printf("[Seeder] name=%s status=done", s.Name())
	}
	return nil
}
