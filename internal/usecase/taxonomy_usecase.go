package usecase

import (
	"context"
	"errors"
	"strings"

	"workforce-grid/internal/graph"
	"workforce-grid/internal/taxonomy"
)

type SkillNodeItem struct {
	Name       string
	Category   string
	Complexity int
}

type SkillDetail struct {
	Name          string
	Category      string
	Complexity    int
	Prerequisites []string
	Dependents    []string
	Closure       []string
	TaughtBy      []string
	RequiredBy    []string
}

type PrerequisitePairInput struct {
	Prerequisite string
	Dependent    string
}

type TaxonomyUsecase interface {
	ListSkills(ctx context.Context, category string) ([]SkillNodeItem, error)
	AddSkill(ctx context.Context, name, category string, complexity int) (SkillNodeItem, error)
	Skill(ctx context.Context, name string) (SkillDetail, error)
	Closure(ctx context.Context, skill string) ([]string, error)
	AddPrerequisites(ctx context.Context, pairs []PrerequisitePairInput) (uint64, error)
}

type Taxonomy struct {
	store    *graph.Store
	resolver *taxonomy.Resolver
}

func NewTaxonomyUsecase(store *graph.Store, resolver *taxonomy.Resolver) *Taxonomy {
	return &Taxonomy{store: store, resolver: resolver}
}

func (u *Taxonomy) ListSkills(_ context.Context, category string) ([]SkillNodeItem, error) {
	category = strings.TrimSpace(category)

	var nodes []graph.Node
	if category == "" {
		nodes = u.store.Skills()
	} else {
		nodes = u.store.SkillsByCategory(category)
	}

	out := make([]SkillNodeItem, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, SkillNodeItem{
			Name:       n.Ref.Key,
			Category:   n.Skill.Category,
			Complexity: n.Skill.Complexity,
		})
	}
	return out, nil
}

func (u *Taxonomy) AddSkill(_ context.Context, name, category string, complexity int) (SkillNodeItem, error) {
	node, err := u.store.UpsertSkill(strings.TrimSpace(name), graph.SkillAttrs{
		Category:   strings.TrimSpace(category),
		Complexity: complexity,
	})
	if err != nil {
		if errors.Is(err, graph.ErrConstraint) {
			return SkillNodeItem{}, ErrInvalidInput
		}
		return SkillNodeItem{}, err
	}
	return SkillNodeItem{
		Name:       node.Ref.Key,
		Category:   node.Skill.Category,
		Complexity: node.Skill.Complexity,
	}, nil
}

func (u *Taxonomy) Skill(_ context.Context, name string) (SkillDetail, error) {
	name = strings.TrimSpace(name)
	node, err := u.store.Node(graph.SkillRef(name))
	if err != nil {
		return SkillDetail{}, err
	}

	prereqs, err := u.store.Prerequisites(name)
	if err != nil {
		return SkillDetail{}, err
	}
	deps, err := u.store.Dependents(name)
	if err != nil {
		return SkillDetail{}, err
	}
	closure, err := u.resolver.ClosureOf(name)
	if err != nil {
		return SkillDetail{}, err
	}
	taughtBy, err := u.store.CentersTeaching(name)
	if err != nil {
		return SkillDetail{}, err
	}
	requiredBy, err := u.store.JobsRequiring(name)
	if err != nil {
		return SkillDetail{}, err
	}

	return SkillDetail{
		Name:          name,
		Category:      node.Skill.Category,
		Complexity:    node.Skill.Complexity,
		Prerequisites: prereqs,
		Dependents:    deps,
		Closure:       closure,
		TaughtBy:      taughtBy,
		RequiredBy:    requiredBy,
	}, nil
}

func (u *Taxonomy) Closure(_ context.Context, skill string) ([]string, error) {
	return u.resolver.ClosureOf(strings.TrimSpace(skill))
}

// AddPrerequisites validates and commits a batch of prerequisite edges
// atomically, returning the taxonomy version after the commit. A batch that
// would close a cycle is refused whole.
func (u *Taxonomy) AddPrerequisites(_ context.Context, pairs []PrerequisitePairInput) (uint64, error) {
	if len(pairs) == 0 {
		return 0, ErrInvalidInput
	}

	batch := make([]graph.PrerequisitePair, 0, len(pairs))
	for _, p := range pairs {
		pre := strings.TrimSpace(p.Prerequisite)
		dep := strings.TrimSpace(p.Dependent)
		if pre == "" || dep == "" {
			return 0, ErrInvalidInput
		}
		batch = append(batch, graph.PrerequisitePair{Prerequisite: pre, Dependent: dep})
	}

	if err := u.resolver.AddPrerequisites(batch); err != nil {
		return 0, err
	}
	return u.store.TaxonomyVersion(), nil
}
