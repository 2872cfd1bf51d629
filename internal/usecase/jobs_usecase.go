package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"workforce-grid/internal/graph"
	"workforce-grid/internal/repository"

	"github.com/google/uuid"
)

type JobRequirementInput struct {
	Skill    string
	MinTrust float64
}

type JobInput struct {
	ID           string
	Title        string
	Company      string
	Description  string
	SalaryMin    int
	SalaryMax    int
	Currency     string
	Source       string
	PostedAt     time.Time
	Location     string
	Requirements []JobRequirementInput
}

type JobRequirementItem struct {
	Skill    string
	MinTrust float64
}

type JobItem struct {
	ID           string
	Title        string
	Company      string
	Description  string
	SalaryMin    int
	SalaryMax    int
	Currency     string
	Source       string
	PostedAt     time.Time
	IsActive     bool
	Location     string
	Requirements []JobRequirementItem

	// Unresolved lists requirement skills that are not in the taxonomy.
	Unresolved []string
}

type JobListParams struct {
	// Skill keeps only jobs requiring it.
	Skill string

	// Location keeps only jobs in that town, matched case-insensitively.
	Location string

	// Limit defaults to 20 and is capped at 50.
	Limit  int
	Offset int
}

type JobsUsecase interface {
	UpsertJob(ctx context.Context, in JobInput) (JobItem, error)
	ListJobs(ctx context.Context, p JobListParams) ([]JobItem, error)
	Job(ctx context.Context, id string) (JobItem, error)
	SetActive(ctx context.Context, id string, active bool) (JobItem, error)
}

type Jobs struct {
	store   *graph.Store
	journal repository.EventJournal
	logger  *log.Logger
}

func NewJobsUsecase(store *graph.Store, journal repository.EventJournal, logger *log.Logger) *Jobs {
	if logger == nil {
		logger = log.Default()
	}
	return &Jobs{store: store, journal: journal, logger: logger}
}

func (u *Jobs) UpsertJob(ctx context.Context, in JobInput) (JobItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return JobItem{}, ErrInvalidInput
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	attrs := graph.JobAttrs{
		Title:       title,
		Company:     strings.TrimSpace(in.Company),
		Description: strings.TrimSpace(in.Description),
		SalaryMin:   in.SalaryMin,
		SalaryMax:   in.SalaryMax,
		Currency:    strings.TrimSpace(in.Currency),
		Source:      strings.TrimSpace(in.Source),
		PostedAt:    in.PostedAt,
		IsActive:    true,
	}
	if _, err := u.store.UpsertJob(id, attrs); err != nil {
		if errors.Is(err, graph.ErrConstraint) {
			return JobItem{}, ErrInvalidInput
		}
		return JobItem{}, err
	}

	if loc := strings.TrimSpace(in.Location); loc != "" {
		name, ok := u.resolveLocation(loc)
		if ok {
			if err := u.store.UpsertLocatedIn(graph.JobRef(id), name); err != nil {
				return JobItem{}, err
			}
		} else {
			u.logger.Printf("[Jobs] unknown location job=%s location=%q", id, loc)
		}
	}

	var unresolved []string
	for _, req := range in.Requirements {
		skill := strings.TrimSpace(req.Skill)
		if skill == "" {
			continue
		}
		err := u.store.UpsertRequires(id, skill, graph.RequiresAttrs{MinTrust: req.MinTrust})
		if err == nil {
			continue
		}
		if errors.Is(err, graph.ErrNotFound) {
			unresolved = append(unresolved, skill)
			u.markUnresolvedRequirement(ctx, id, skill, in.PostedAt)
			continue
		}
		if errors.Is(err, graph.ErrConstraint) {
			return JobItem{}, ErrInvalidInput
		}
		return JobItem{}, err
	}

	item, err := u.jobItem(id)
	if err != nil {
		return JobItem{}, err
	}
	item.Unresolved = unresolved
	return item, nil
}

func (u *Jobs) markUnresolvedRequirement(ctx context.Context, jobID, skill string, at time.Time) {
	if u.journal == nil {
		return
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}
	ev := repository.UnresolvedEvent{
		ID:         uuid.New(),
		Kind:       "JOB_REQUIREMENT",
		Subject:    jobID,
		Skill:      skill,
		Reason:     "skill not in taxonomy",
		OccurredAt: at,
	}
	if err := u.journal.MarkUnresolved(ctx, ev); err != nil {
		u.logger.Printf("[Jobs] mark unresolved failed job=%s skill=%q: %v", jobID, skill, err)
	}
}

// resolveLocation matches a free-form town name against known locations,
// first exactly and then case-insensitively.
func (u *Jobs) resolveLocation(name string) (string, bool) {
	if u.store.HasNode(graph.LocationRef(name)) {
		return name, true
	}
	lower := strings.ToLower(name)
	for _, n := range u.store.Locations() {
		if strings.ToLower(n.Ref.Key) == lower {
			return n.Ref.Key, true
		}
	}
	return "", false
}

func (u *Jobs) ListJobs(_ context.Context, p JobListParams) ([]JobItem, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	if p.Offset < 0 {
		return nil, ErrInvalidInput
	}

	skill := strings.TrimSpace(p.Skill)
	if skill != "" && !u.store.HasNode(graph.SkillRef(skill)) {
		return nil, fmt.Errorf("skill %q: %w", skill, graph.ErrNotFound)
	}
	location := ""
	if loc := strings.TrimSpace(p.Location); loc != "" {
		name, ok := u.resolveLocation(loc)
		if !ok {
			return nil, fmt.Errorf("location %q: %w", loc, graph.ErrNotFound)
		}
		location = name
	}

	nodes := u.store.ActiveJobs()
	sort.SliceStable(nodes, func(a, b int) bool {
		pa, pb := nodes[a].Job.PostedAt, nodes[b].Job.PostedAt
		if !pa.Equal(pb) {
			return pa.After(pb)
		}
		return nodes[a].Ref.Key < nodes[b].Ref.Key
	})

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		id := n.Ref.Key
		if location != "" {
			if loc, ok := u.store.LocationOf(graph.JobRef(id)); !ok || loc != location {
				continue
			}
		}
		if skill != "" {
			reqs, err := u.store.JobRequirements(id)
			if err != nil {
				return nil, err
			}
			if !requiresSkill(reqs, skill) {
				continue
			}
		}
		ids = append(ids, id)
	}

	if p.Offset >= len(ids) {
		return []JobItem{}, nil
	}
	end := p.Offset + limit
	if end > len(ids) {
		end = len(ids)
	}

	out := make([]JobItem, 0, end-p.Offset)
	for _, id := range ids[p.Offset:end] {
		item, err := u.jobItem(id)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (u *Jobs) Job(_ context.Context, id string) (JobItem, error) {
	return u.jobItem(strings.TrimSpace(id))
}

func (u *Jobs) SetActive(_ context.Context, id string, active bool) (JobItem, error) {
	id = strings.TrimSpace(id)
	node, err := u.store.Node(graph.JobRef(id))
	if err != nil {
		return JobItem{}, err
	}
	attrs := *node.Job
	attrs.IsActive = active
	if _, err := u.store.UpsertJob(id, attrs); err != nil {
		return JobItem{}, err
	}
	return u.jobItem(id)
}

func (u *Jobs) jobItem(id string) (JobItem, error) {
	node, err := u.store.Node(graph.JobRef(id))
	if err != nil {
		return JobItem{}, err
	}
	reqs, err := u.store.JobRequirements(id)
	if err != nil {
		return JobItem{}, err
	}

	item := JobItem{
		ID:           id,
		Title:        node.Job.Title,
		Company:      node.Job.Company,
		Description:  node.Job.Description,
		SalaryMin:    node.Job.SalaryMin,
		SalaryMax:    node.Job.SalaryMax,
		Currency:     node.Job.Currency,
		Source:       node.Job.Source,
		PostedAt:     node.Job.PostedAt,
		IsActive:     node.Job.IsActive,
		Requirements: make([]JobRequirementItem, 0, len(reqs)),
	}
	for _, r := range reqs {
		item.Requirements = append(item.Requirements, JobRequirementItem{Skill: r.Skill, MinTrust: r.MinTrust})
	}
	if loc, ok := u.store.LocationOf(graph.JobRef(id)); ok {
		item.Location = loc
	}
	return item, nil
}
