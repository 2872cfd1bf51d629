package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"workforce-grid/internal/geo"
	"workforce-grid/internal/graph"
)

const (
	defaultSearchRadiusKM = 50.0
	maxSearchRadiusKM     = 200.0
)

type NearbyParams struct {
	Latitude  float64
	Longitude float64

	// RadiusKM defaults to 50 and is capped at 200.
	RadiusKM float64

	// Kind filters the result to "jobs" or "centers"; empty means both.
	Kind string

	// Skill keeps only jobs requiring it and centers teaching it.
	Skill string
}

type NearbyJob struct {
	ID         string
	Title      string
	Company    string
	Location   string
	DistanceKM float64
}

type NearbyCourse struct {
	Skill         string
	Course        string
	DurationWeeks int
	CostKES       int
}

type NearbyCenter struct {
	Name          string
	Accreditation string
	Location      string
	DistanceKM    float64
	Courses       []NearbyCourse
}

type NearbyResult struct {
	RadiusKM float64
	Jobs     []NearbyJob
	Centers  []NearbyCenter
}

type SearchUsecase interface {
	Nearby(ctx context.Context, p NearbyParams) (NearbyResult, error)
}

type Search struct {
	store *graph.Store
}

func NewSearchUsecase(store *graph.Store) *Search {
	return &Search{store: store}
}

func (u *Search) Nearby(_ context.Context, p NearbyParams) (NearbyResult, error) {
	radius := p.RadiusKM
	if radius == 0 {
		radius = defaultSearchRadiusKM
	}
	if radius > maxSearchRadiusKM {
		radius = maxSearchRadiusKM
	}

	kind := strings.ToLower(strings.TrimSpace(p.Kind))
	switch kind {
	case "", "all", "jobs", "centers":
	default:
		return NearbyResult{}, ErrInvalidInput
	}
	wantJobs := kind == "" || kind == "all" || kind == "jobs"
	wantCenters := kind == "" || kind == "all" || kind == "centers"

	skill := strings.TrimSpace(p.Skill)
	if skill != "" && !u.store.HasNode(graph.SkillRef(skill)) {
		return NearbyResult{}, fmt.Errorf("skill %q: %w", skill, graph.ErrNotFound)
	}

	places := make([]geo.Place, 0)
	for _, n := range u.store.Locations() {
		places = append(places, geo.Place{
			Name:  n.Ref.Key,
			Point: geo.Point{Latitude: n.Location.Latitude, Longitude: n.Location.Longitude},
		})
	}

	origin := geo.Point{Latitude: p.Latitude, Longitude: p.Longitude}
	matches, err := geo.WithinRadius(origin, radius, places)
	if err != nil {
		return NearbyResult{}, err
	}

	out := NearbyResult{RadiusKM: radius, Jobs: []NearbyJob{}, Centers: []NearbyCenter{}}
	for _, m := range matches {
		if wantJobs {
			jobs, err := u.jobsAt(m, skill)
			if err != nil {
				return NearbyResult{}, err
			}
			out.Jobs = append(out.Jobs, jobs...)
		}
		if wantCenters {
			centers, err := u.centersAt(m, skill)
			if err != nil {
				return NearbyResult{}, err
			}
			out.Centers = append(out.Centers, centers...)
		}
	}
	return out, nil
}

func (u *Search) jobsAt(m geo.Match, skill string) ([]NearbyJob, error) {
	ids, err := u.store.JobsAt(m.Place.Name)
	if err != nil {
		return nil, err
	}

	out := make([]NearbyJob, 0, len(ids))
	for _, id := range ids {
		node, err := u.store.Node(graph.JobRef(id))
		if err != nil {
			continue
		}
		if !node.Job.IsActive {
			continue
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
		out = append(out, NearbyJob{
			ID:         id,
			Title:      node.Job.Title,
			Company:    node.Job.Company,
			Location:   m.Place.Name,
			DistanceKM: m.DistanceKM,
		})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Title != out[b].Title {
			return out[a].Title < out[b].Title
		}
		return out[a].ID < out[b].ID
	})
	return out, nil
}

func (u *Search) centersAt(m geo.Match, skill string) ([]NearbyCenter, error) {
	names, err := u.store.CentersAt(m.Place.Name)
	if err != nil {
		return nil, err
	}

	out := make([]NearbyCenter, 0, len(names))
	for _, name := range names {
		node, err := u.store.Node(graph.CenterRef(name))
		if err != nil {
			continue
		}
		courses, err := u.store.CenterCourses(name)
		if err != nil {
			return nil, err
		}
		if skill != "" && !teachesSkill(courses, skill) {
			continue
		}

		center := NearbyCenter{
			Name:          name,
			Accreditation: node.Center.Accreditation,
			Location:      m.Place.Name,
			DistanceKM:    m.DistanceKM,
			Courses:       make([]NearbyCourse, 0, len(courses)),
		}
		for _, c := range courses {
			if skill != "" && c.To.Key != skill {
				continue
			}
			center.Courses = append(center.Courses, NearbyCourse{
				Skill:         c.To.Key,
				Course:        c.Teaches.Course,
				DurationWeeks: c.Teaches.DurationWeeks,
				CostKES:       c.Teaches.CostKES,
			})
		}
		out = append(out, center)
	}
	return out, nil
}

func requiresSkill(reqs []graph.Requirement, skill string) bool {
	for _, r := range reqs {
		if r.Skill == skill {
			return true
		}
	}
	return false
}

func teachesSkill(courses []graph.Edge, skill string) bool {
	for _, c := range courses {
		if c.To.Key == skill {
			return true
		}
	}
	return false
}
