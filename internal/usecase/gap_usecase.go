package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"workforce-grid/internal/domain/gap"
	"workforce-grid/internal/graph"
	"workforce-grid/internal/taxonomy"
)

type GapParams struct {
	// MinTrust overrides the supply threshold. Zero keeps the engine default.
	MinTrust float64

	// ComplexityWeight overrides the score weighting. Zero keeps the default.
	ComplexityWeight float64

	Limit int
}

type GapItem struct {
	Skill      string  `json:"skill"`
	Category   string  `json:"category"`
	Complexity int     `json:"complexity"`
	Demand     int     `json:"demand"`
	Supply     int     `json:"supply"`
	Gap        int     `json:"gap"`
	UnmetJobs  int     `json:"unmet_jobs"`
	Score      float64 `json:"score"`
}

type GapReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	Revision    uint64    `json:"revision"`
	MinTrust    float64   `json:"min_trust"`
	Items       []GapItem `json:"items"`
}

type GapUsecase interface {
	Report(ctx context.Context, p GapParams) (GapReport, bool, error)
}

type Gap struct {
	store    *graph.Store
	resolver *taxonomy.Resolver
	cache    ReportCache
	defaults gap.Options
	logger   *log.Logger
}

func NewGapUsecase(store *graph.Store, resolver *taxonomy.Resolver, cache ReportCache, defaults gap.Options, logger *log.Logger) *Gap {
	if logger == nil {
		logger = log.Default()
	}
	return &Gap{store: store, resolver: resolver, cache: cache, defaults: defaults, logger: logger}
}

// Report runs the demand/supply analysis over the current graph. The cached
// flag reports whether the result came out of Redis; cache keys include the
// graph revision so a report is never served across a write.
func (u *Gap) Report(ctx context.Context, p GapParams) (GapReport, bool, error) {
	opts := u.defaults
	if p.MinTrust != 0 {
		if p.MinTrust < 0 || p.MinTrust > 100 {
			return GapReport{}, false, ErrInvalidInput
		}
		opts.DefaultMinTrust = p.MinTrust
	}
	if p.ComplexityWeight != 0 {
		if p.ComplexityWeight < 0 {
			return GapReport{}, false, ErrInvalidInput
		}
		opts.ComplexityWeight = p.ComplexityWeight
	}
	if p.Limit < 0 {
		return GapReport{}, false, ErrInvalidInput
	}

	revision := u.store.Revision()
	key := gapReportCacheKey(revision, opts)

	if u.cache != nil {
		var cached GapReport
		if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			u.logger.Printf("[Gap] cache HIT key=%s", key)
			cached.Items = limitGapItems(cached.Items, p.Limit)
			return cached, true, nil
		}
		u.logger.Printf("[Gap] cache MISS key=%s", key)
	}

	snap, categories := u.snapshot()
	items, err := gap.Analyze(ctx, snap, opts)
	if err != nil {
		return GapReport{}, false, err
	}

	report := GapReport{
		GeneratedAt: time.Now().UTC(),
		Revision:    revision,
		MinTrust:    opts.DefaultMinTrust,
		Items:       make([]GapItem, 0, len(items)),
	}
	for _, it := range items {
		report.Items = append(report.Items, GapItem{
			Skill:      it.Skill,
			Category:   categories[it.Skill],
			Complexity: it.Complexity,
			Demand:     it.Demand,
			Supply:     it.Supply,
			Gap:        it.Demand - it.Supply,
			UnmetJobs:  it.UnmetJobs,
			Score:      it.Score,
		})
	}

	if u.cache != nil {
		_ = u.cache.SetJSON(ctx, key, report, 0)
	}

	report.Items = limitGapItems(report.Items, p.Limit)
	return report, false, nil
}

// snapshot detaches the graph state the analysis needs, so the engine never
// reads the store mid-run.
func (u *Gap) snapshot() (gap.Snapshot, map[string]string) {
	jobNodes := u.store.ActiveJobs()
	jobs := make([]gap.Job, 0, len(jobNodes))
	for _, n := range jobNodes {
		reqs, err := u.store.JobRequirements(n.Ref.Key)
		if err != nil {
			continue
		}
		j := gap.Job{ID: n.Ref.Key, Requirements: make([]gap.Requirement, 0, len(reqs))}
		for _, r := range reqs {
			j.Requirements = append(j.Requirements, gap.Requirement{Skill: r.Skill, MinTrust: r.MinTrust})
		}
		jobs = append(jobs, j)
	}

	userTrust := make(map[string]map[string]float64)
	for _, n := range u.store.Users() {
		edges := u.store.UserSkillEdges(n.Ref.Key)
		if len(edges) == 0 {
			continue
		}
		m := make(map[string]float64, len(edges))
		for _, e := range edges {
			m[e.Skill] = e.Trust
		}
		userTrust[n.Ref.Key] = m
	}

	complexity := make(map[string]int)
	categories := make(map[string]string)
	for _, n := range u.store.Skills() {
		complexity[n.Ref.Key] = n.Skill.Complexity
		categories[n.Ref.Key] = n.Skill.Category
	}

	return gap.Snapshot{
		Jobs:       jobs,
		UserTrust:  userTrust,
		Complexity: complexity,
		Closure:    u.resolver.ClosureOf,
	}, categories
}

func gapReportCacheKey(revision uint64, opts gap.Options) string {
	return fmt.Sprintf("gap:v%d:mt%.2f:w%.2f", revision, opts.DefaultMinTrust, opts.ComplexityWeight)
}

func limitGapItems(items []GapItem, limit int) []GapItem {
	if limit <= 0 || limit >= len(items) {
		return items
	}
	return items[:limit]
}
