package taxonomy

import (
	"errors"
	"fmt"
	"sort"

	"workforce-grid/internal/graph"
)

// ErrCycleDetected reports a prerequisite edit that would make the skill
// lattice circular, or an existing lattice that is no longer a DAG.
var ErrCycleDetected = errors.New("taxonomy: prerequisite cycle detected")

// commitRetries bounds how often a prerequisite commit is re-validated after
// losing the taxonomy version race.
const commitRetries = 5

// Resolver walks the prerequisite lattice. It owns cycle prevention: every
// edge reaches the graph store through AddPrerequisites, which validates
// against a taxonomy version token and re-validates on conflict.
type Resolver struct {
	store *graph.Store
}

func NewResolver(store *graph.Store) *Resolver {
	return &Resolver{store: store}
}

// ClosureOf returns the skill plus every transitive prerequisite, ordered by
// name. Diamonds are expanded once; a cycle in the stored lattice fails with
// ErrCycleDetected rather than looping.
func (r *Resolver) ClosureOf(skill string) ([]string, error) {
	const (
		onPath = 1
		done   = 2
	)
	state := map[string]int{}
	out := make([]string, 0, 8)

	var visit func(name string) error
	visit = func(name string) error {
		state[name] = onPath
		prereqs, err := r.store.Prerequisites(name)
		if err != nil {
			return err
		}
		for _, p := range prereqs {
			switch state[p] {
			case onPath:
				return fmt.Errorf("%w: %q reached again through %q", ErrCycleDetected, p, name)
			case done:
				continue
			default:
				if err := visit(p); err != nil {
					return err
				}
			}
		}
		state[name] = done
		out = append(out, name)
		return nil
	}

	if err := visit(skill); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Qualification is the verdict for one (user, skill) pair: qualified means
// the user holds the skill itself and its whole closure at or above the
// threshold. Missing lists every closure member below it, the skill itself
// included.
type Qualification struct {
	UserID    string
	Skill     string
	MinTrust  float64
	Qualified bool
	Missing   []string
}

// Qualify evaluates a user against a skill's closure. minTrust 0 applies the
// "any positive trust" default.
func (r *Resolver) Qualify(userID, skill string, minTrust float64) (Qualification, error) {
	closure, err := r.ClosureOf(skill)
	if err != nil {
		return Qualification{}, err
	}

	q := Qualification{UserID: userID, Skill: skill, MinTrust: minTrust}
	for _, member := range closure {
		edge, ok := r.store.SkillEdge(userID, member)
		if !ok || !graph.MeetsThreshold(edge.Trust, minTrust) {
			q.Missing = append(q.Missing, member)
		}
	}
	q.Qualified = len(q.Missing) == 0
	return q, nil
}

// WouldCreateCycle reports whether adding prerequisite -> dependent would
// close a loop in the current lattice.
func (r *Resolver) WouldCreateCycle(prerequisite, dependent string) (bool, error) {
	return r.wouldCycle(prerequisite, dependent, nil)
}

// AddPrerequisites validates and commits a batch of prerequisite edges
// all-or-nothing. Pairs are checked jointly, so two edges that are each fine
// alone but circular together are refused. If the lattice changes between
// validation and commit the whole batch is re-validated, up to commitRetries
// times.
func (r *Resolver) AddPrerequisites(pairs []graph.PrerequisitePair) error {
	if len(pairs) == 0 {
		return nil
	}

	for attempt := 0; attempt <= commitRetries; attempt++ {
		version := r.store.TaxonomyVersion()

		accepted := map[string][]string{}
		for _, p := range pairs {
			cyclic, err := r.wouldCycle(p.Prerequisite, p.Dependent, accepted)
			if err != nil {
				return err
			}
			if cyclic {
				return fmt.Errorf("%w: %q -> %q", ErrCycleDetected, p.Prerequisite, p.Dependent)
			}
			accepted[p.Prerequisite] = append(accepted[p.Prerequisite], p.Dependent)
		}

		err := r.store.CommitPrerequisites(version, pairs)
		if err == nil {
			return nil
		}
		if !errors.Is(err, graph.ErrStaleWrite) {
			return err
		}
	}
	return fmt.Errorf("%w: prerequisite batch kept losing validation races", graph.ErrStaleWrite)
}

// wouldCycle checks reachability dependent -> ... -> prerequisite over the
// stored lattice plus any extra edges already accepted in the same batch.
func (r *Resolver) wouldCycle(prerequisite, dependent string, extra map[string][]string) (bool, error) {
	if prerequisite == dependent {
		return true, nil
	}
	if _, err := r.store.Node(graph.SkillRef(prerequisite)); err != nil {
		return false, err
	}
	if _, err := r.store.Node(graph.SkillRef(dependent)); err != nil {
		return false, err
	}

	seen := map[string]struct{}{}
	stack := []string{dependent}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == prerequisite {
			return true, nil
		}
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}

		next, err := r.store.Dependents(cur)
		if err != nil {
			return false, err
		}
		stack = append(stack, next...)
		stack = append(stack, extra[cur]...)
	}
	return false, nil
}
