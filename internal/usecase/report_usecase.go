package usecase

import (
	"context"
	"sort"

	"workforce-grid/internal/graph"
)

type SkillDistributionItem struct {
	Skill      string
	Category   string
	Complexity int
	Holders    int
	Verified   int
	AvgTrust   float64
	Demand     int
}

type TrustHistogram struct {
	// Buckets counts users by mean trust across their skills, in the fixed
	// ranges 0-20, 21-40, 41-60, 61-80 and 81-100.
	Buckets []TrustBucket
	Users   int
}

type TrustBucket struct {
	Range string
	Count int
}

type Overview struct {
	Nodes           map[string]int
	Edges           map[string]int
	ActiveJobs      int
	TaxonomyVersion uint64
	Revision        uint64
}

type ReportUsecase interface {
	SkillDistribution(ctx context.Context) ([]SkillDistributionItem, error)
	TrustHistogram(ctx context.Context) (TrustHistogram, error)
	Overview(ctx context.Context) (Overview, error)
}

type Report struct {
	store *graph.Store
}

func NewReportUsecase(store *graph.Store) *Report {
	return &Report{store: store}
}

func (u *Report) SkillDistribution(_ context.Context) ([]SkillDistributionItem, error) {
	skills := u.store.Skills()
	out := make([]SkillDistributionItem, 0, len(skills))

	for _, n := range skills {
		name := n.Ref.Key
		holders := u.store.SkillHolders(name)

		item := SkillDistributionItem{
			Skill:      name,
			Category:   n.Skill.Category,
			Complexity: n.Skill.Complexity,
			Holders:    len(holders),
		}
		sum := 0.0
		for _, e := range holders {
			if e.Verified {
				item.Verified++
			}
			sum += e.Trust
		}
		if len(holders) > 0 {
			item.AvgTrust = sum / float64(len(holders))
		}
		if jobs, err := u.store.JobsRequiring(name); err == nil {
			item.Demand = len(jobs)
		}
		out = append(out, item)
	}

	sort.Slice(out, func(a, b int) bool {
		if out[a].Holders != out[b].Holders {
			return out[a].Holders > out[b].Holders
		}
		return out[a].Skill < out[b].Skill
	})
	return out, nil
}

var trustBucketRanges = []string{"0-20", "21-40", "41-60", "61-80", "81-100"}

func (u *Report) TrustHistogram(_ context.Context) (TrustHistogram, error) {
	h := TrustHistogram{Buckets: make([]TrustBucket, len(trustBucketRanges))}
	for i, r := range trustBucketRanges {
		h.Buckets[i] = TrustBucket{Range: r}
	}

	for _, n := range u.store.Users() {
		edges := u.store.UserSkillEdges(n.Ref.Key)
		if len(edges) == 0 {
			continue
		}
		sum := 0.0
		for _, e := range edges {
			sum += e.Trust
		}
		mean := sum / float64(len(edges))
		h.Buckets[trustBucketIndex(mean)].Count++
		h.Users++
	}
	return h, nil
}

func trustBucketIndex(trust float64) int {
	switch {
	case trust <= 20:
		return 0
	case trust <= 40:
		return 1
	case trust <= 60:
		return 2
	case trust <= 80:
		return 3
	default:
		return 4
	}
}

func (u *Report) Overview(_ context.Context) (Overview, error) {
	stats := u.store.Stats()

	out := Overview{
		Nodes:           make(map[string]int, len(stats.Nodes)),
		Edges:           make(map[string]int, len(stats.Edges)),
		ActiveJobs:      len(u.store.ActiveJobs()),
		TaxonomyVersion: stats.TaxonomyVersion,
		Revision:        stats.Revision,
	}
	for t, c := range stats.Nodes {
		out.Nodes[string(t)] = c
	}
	for t, c := range stats.Edges {
		out.Edges[string(t)] = c
	}
	return out, nil
}
