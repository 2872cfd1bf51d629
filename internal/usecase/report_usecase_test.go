package usecase

import (
	"context"
	"testing"

	"workforce-grid/internal/graph"
)

func TestReportUsecase_SkillDistribution_AggregatesHolders(t *testing.T) {
	s, _ := testGraph(t)
	setTrust(t, s, "user-1", "Welding", 60, true)
	setTrust(t, s, "user-2", "Welding", 30, false)
	setTrust(t, s, "user-1", "Plumbing", 40, false)

	jobs := NewJobsUsecase(s, nil, discardLogger())
	if _, err := jobs.UpsertJob(context.Background(), JobInput{
		ID:           "job-w",
		Title:        "Welder",
		Requirements: []JobRequirementInput{{Skill: "Welding", MinTrust: 40}},
	}); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	uc := NewReportUsecase(s)
	items, err := uc.SkillDistribution(context.Background())
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("expected every taxonomy skill, got %d", len(items))
	}

	// Most held first, then alphabetical among the unheld.
	if items[0].Skill != "Welding" || items[1].Skill != "Plumbing" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if items[2].Skill != "Electrical Wiring" || items[3].Skill != "Solar Installation" {
		t.Fatalf("unexpected tail order: %+v", items)
	}

	w := items[0]
	if w.Holders != 2 || w.Verified != 1 || w.Demand != 1 {
		t.Fatalf("unexpected welding aggregates: %+v", w)
	}
	if w.AvgTrust != 45 {
		t.Fatalf("expected avg trust 45, got %.2f", w.AvgTrust)
	}
	if items[2].Holders != 0 || items[2].AvgTrust != 0 {
		t.Fatalf("unheld skill should report zeroes: %+v", items[2])
	}
}

func TestReportUsecase_TrustHistogram_BucketBoundaries(t *testing.T) {
	s, _ := testGraph(t)
	setTrust(t, s, "user-a", "Welding", 20, false)
	setTrust(t, s, "user-b", "Welding", 20.5, false)
	setTrust(t, s, "user-c", "Welding", 40, false)
	setTrust(t, s, "user-c", "Plumbing", 60, false)
	setTrust(t, s, "user-d", "Welding", 100, true)
	registerUser(t, s, "user-idle")

	uc := NewReportUsecase(s)
	h, err := uc.TrustHistogram(context.Background())
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}

	// user-idle holds no skills and is not counted.
	if h.Users != 4 {
		t.Fatalf("expected 4 users, got %d", h.Users)
	}
	want := []int{1, 1, 1, 0, 1}
	for i, b := range h.Buckets {
		if b.Count != want[i] {
			t.Fatalf("bucket %s: expected %d, got %d", b.Range, want[i], b.Count)
		}
	}
}

func TestReportUsecase_Overview_CountsGraph(t *testing.T) {
	s, _ := testGraph(t)
	setTrust(t, s, "user-1", "Welding", 50, false)

	jobs := NewJobsUsecase(s, nil, discardLogger())
	if _, err := jobs.UpsertJob(context.Background(), JobInput{
		ID:           "job-1",
		Title:        "Welder",
		Location:     "Nairobi CBD",
		Requirements: []JobRequirementInput{{Skill: "Welding", MinTrust: 40}},
	}); err != nil {
		t.Fatalf("seed job: %v", err)
	}

	uc := NewReportUsecase(s)
	ov, err := uc.Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	if ov.Nodes[string(graph.NodeSkill)] != 4 {
		t.Fatalf("expected 4 skills, got %+v", ov.Nodes)
	}
	if ov.Nodes[string(graph.NodeUser)] != 1 || ov.Nodes[string(graph.NodeJob)] != 1 {
		t.Fatalf("unexpected node counts: %+v", ov.Nodes)
	}
	if ov.Edges[string(graph.EdgeHasSkill)] != 1 || ov.Edges[string(graph.EdgeRequires)] != 1 {
		t.Fatalf("unexpected edge counts: %+v", ov.Edges)
	}
	if ov.Edges[string(graph.EdgePrerequisiteFor)] != 1 || ov.Edges[string(graph.EdgeLocatedIn)] != 1 {
		t.Fatalf("unexpected edge counts: %+v", ov.Edges)
	}
	if ov.ActiveJobs != 1 {
		t.Fatalf("expected 1 active job, got %d", ov.ActiveJobs)
	}
	if ov.TaxonomyVersion == 0 || ov.Revision == 0 {
		t.Fatalf("expected nonzero versions, got %+v", ov)
	}
}
