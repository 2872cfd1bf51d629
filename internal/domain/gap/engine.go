package gap

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// Requirement is a job's demand for one skill. MinTrust 0 means any positive
// trust satisfies it.
type Requirement struct {
	Skill    string
	MinTrust float64
}

// Job is the slice of a job the analysis needs: identity and demands.
type Job struct {
	ID           string
	Requirements []Requirement
}

// Snapshot is a point-in-time view of the graph, detached from the store so
// the analysis never holds locks. Closure expands a skill to itself plus all
// transitive prerequisites.
type Snapshot struct {
	Jobs       []Job
	UserTrust  map[string]map[string]float64
	Complexity map[string]int
	Closure    func(skill string) ([]string, error)
}

// Options tune one analysis run.
type Options struct {
	// DefaultMinTrust is the threshold used for the supply side of the gap
	// formula. Zero keeps the "any positive trust" rule.
	DefaultMinTrust float64

	// ComplexityWeight folds skill complexity into the score. At the default
	// of zero, complexity only breaks ties.
	ComplexityWeight float64

	// Workers bounds the per-job expansion fan-out.
	Workers int
}

// SkillGap is the analysis verdict for one demanded skill.
type SkillGap struct {
	Skill      string
	Complexity int

	// Demand counts active jobs whose expanded requirements include the
	// skill; a requirement on an advanced skill implicitly demands its
	// prerequisites.
	Demand int

	// Supply counts users qualified for the skill at the default threshold,
	// closure included.
	Supply int

	// UnmetJobs counts demanding jobs for which no user at all qualifies at
	// that job's own threshold.
	UnmetJobs int

	// Score is Demand - Supply plus the weighted complexity term. Negative
	// scores mean surplus and still rank, just last.
	Score float64
}

// meets mirrors the graph-wide threshold rule.
func meets(trust, minTrust float64) bool {
	if minTrust <= 0 {
		return trust > 0
	}
	return trust >= minTrust
}

// Analyze computes demand minus qualified supply per skill across the given
// snapshot. Jobs expand concurrently; aggregation is sequential so the
// result is deterministic: score descending, then complexity descending,
// then name.
func Analyze(ctx context.Context, snap Snapshot, opts Options) ([]SkillGap, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	closures := &closureCache{fn: snap.Closure, memo: map[string][]string{}}

	// Expanded demand per job: skill -> strictest threshold any requirement
	// imposes on it.
	expanded := make([]map[string]float64, len(snap.Jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range snap.Jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			demands := map[string]float64{}
			for _, req := range snap.Jobs[i].Requirements {
				members, err := closures.get(req.Skill)
				if err != nil {
					return err
				}
				for _, member := range members {
					if cur, ok := demands[member]; !ok || req.MinTrust > cur {
						demands[member] = req.MinTrust
					}
				}
			}
			expanded[i] = demands
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	demand := map[string]int{}
	unmet := map[string]int{}
	qualifiedCounts := map[qualKey]int{}
	for i := range snap.Jobs {
		for skill, minTrust := range expanded[i] {
			demand[skill]++
			if countQualified(snap, closures, qualifiedCounts, skill, minTrust) == 0 {
				unmet[skill]++
			}
		}
	}

	out := make([]SkillGap, 0, len(demand))
	for skill, jobs := range demand {
		supply := countQualified(snap, closures, qualifiedCounts, skill, opts.DefaultMinTrust)
		complexity := snap.Complexity[skill]
		out = append(out, SkillGap{
			Skill:      skill,
			Complexity: complexity,
			Demand:     jobs,
			Supply:     supply,
			UnmetJobs:  unmet[skill],
			Score:      float64(jobs-supply) + opts.ComplexityWeight*float64(complexity),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].Complexity != out[j].Complexity {
			return out[i].Complexity > out[j].Complexity
		}
		return out[i].Skill < out[j].Skill
	})
	return out, nil
}

type qualKey struct {
	skill    string
	minTrust float64
}

// countQualified counts users holding the skill and its whole closure at or
// above the threshold. Results are memoized per (skill, threshold).
func countQualified(snap Snapshot, closures *closureCache, memo map[qualKey]int, skill string, minTrust float64) int {
	key := qualKey{skill: skill, minTrust: minTrust}
	if n, ok := memo[key]; ok {
		return n
	}

	members, err := closures.get(skill)
	if err != nil {
		// Expansion already validated every demanded skill; an error here
		// means the skill has no closure and nobody can qualify.
		memo[key] = 0
		return 0
	}

	n := 0
	for _, trusts := range snap.UserTrust {
		qualified := true
		for _, member := range members {
			if !meets(trusts[member], minTrust) {
				qualified = false
				break
			}
		}
		if qualified {
			n++
		}
	}
	memo[key] = n
	return n
}

type closureCache struct {
	fn   func(string) ([]string, error)
	mu   sync.Mutex
	memo map[string][]string
}

func (c *closureCache) get(skill string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if members, ok := c.memo[skill]; ok {
		return members, nil
	}
	members, err := c.fn(skill)
	if err != nil {
		return nil, err
	}
	c.memo[skill] = members
	return members, nil
}
