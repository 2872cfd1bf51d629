package usecase

import (
	"context"
	"fmt"
	"strings"

	"workforce-grid/internal/graph"
	"workforce-grid/internal/taxonomy"
)

// SkillCheck is one closure member's standing in a qualification check.
type SkillCheck struct {
	Skill    string
	Trust    float64
	Verified bool
	Meets    bool
}

type QualificationResult struct {
	UserID    string
	Skill     string
	MinTrust  float64
	Qualified bool
	Missing   []string
	Checks    []SkillCheck
}

type QualificationUsecase interface {
	Check(ctx context.Context, userID, skill string, minTrust float64) (QualificationResult, error)
	UserSkills(ctx context.Context, userID string) ([]SkillStanding, error)
}

type Qualification struct {
	store    *graph.Store
	resolver *taxonomy.Resolver
}

func NewQualificationUsecase(store *graph.Store, resolver *taxonomy.Resolver) *Qualification {
	return &Qualification{store: store, resolver: resolver}
}

func (u *Qualification) Check(_ context.Context, userID, skill string, minTrust float64) (QualificationResult, error) {
	userID = strings.TrimSpace(userID)
	skill = strings.TrimSpace(skill)
	if userID == "" || skill == "" {
		return QualificationResult{}, ErrInvalidInput
	}
	if minTrust < 0 || minTrust > 100 {
		return QualificationResult{}, ErrInvalidInput
	}
	if !u.store.HasNode(graph.UserRef(userID)) {
		return QualificationResult{}, fmt.Errorf("user %q: %w", userID, graph.ErrNotFound)
	}

	q, err := u.resolver.Qualify(userID, skill, minTrust)
	if err != nil {
		return QualificationResult{}, err
	}
	closure, err := u.resolver.ClosureOf(skill)
	if err != nil {
		return QualificationResult{}, err
	}

	res := QualificationResult{
		UserID:    q.UserID,
		Skill:     q.Skill,
		MinTrust:  q.MinTrust,
		Qualified: q.Qualified,
		Missing:   q.Missing,
		Checks:    make([]SkillCheck, 0, len(closure)),
	}
	for _, member := range closure {
		check := SkillCheck{Skill: member}
		if edge, ok := u.store.SkillEdge(userID, member); ok {
			check.Trust = edge.Trust
			check.Verified = edge.Verified
			check.Meets = graph.MeetsThreshold(edge.Trust, q.MinTrust)
		}
		res.Checks = append(res.Checks, check)
	}
	return res, nil
}

func (u *Qualification) UserSkills(_ context.Context, userID string) ([]SkillStanding, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	if !u.store.HasNode(graph.UserRef(userID)) {
		return nil, fmt.Errorf("user %q: %w", userID, graph.ErrNotFound)
	}

	edges := u.store.UserSkillEdges(userID)
	out := make([]SkillStanding, 0, len(edges))
	for _, e := range edges {
		out = append(out, standingFromEdge(e))
	}
	return out, nil
}
