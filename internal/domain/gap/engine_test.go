package gap

import (
	"context"
	"errors"
	"sort"
	"testing"
)

// chainClosure builds a Closure func from a prerequisite map: each skill
// expands to itself plus everything listed, already transitive.
func chainClosure(prereqs map[string][]string) func(string) ([]string, error) {
	return func(skill string) ([]string, error) {
		out := append([]string{skill}, prereqs[skill]...)
		sort.Strings(out)
		return out, nil
	}
}

func flatClosure() func(string) ([]string, error) {
	return chainClosure(nil)
}

func TestAnalyzeRanksScarcestSkillFirst(t *testing.T) {
	snap := Snapshot{
		Jobs: []Job{
			{ID: "j1", Requirements: []Requirement{{Skill: "Welding"}}},
			{ID: "j2", Requirements: []Requirement{{Skill: "Welding"}}},
			{ID: "j3", Requirements: []Requirement{{Skill: "Plumbing"}}},
		},
		UserTrust: map[string]map[string]float64{
			"u1": {"Welding": 60},
			"u2": {"Plumbing": 40},
			"u3": {"Plumbing": 70},
		},
		Complexity: map[string]int{"Welding": 3, "Plumbing": 2},
		Closure:    flatClosure(),
	}

	got, err := Analyze(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 skills, got %d", len(got))
	}
	if got[0].Skill != "Welding" || got[0].Demand != 2 || got[0].Supply != 1 || got[0].Score != 1 {
		t.Fatalf("expected Welding gap 1 on top, got %+v", got[0])
	}
	if got[1].Skill != "Plumbing" || got[1].Score != -1 {
		t.Fatalf("expected Plumbing surplus last, got %+v", got[1])
	}
}

func TestAnalyzeCountsEveryUnfilledJob(t *testing.T) {
	snap := Snapshot{
		Jobs: []Job{
			{ID: "j1", Requirements: []Requirement{{Skill: "Welding"}}},
			{ID: "j2", Requirements: []Requirement{{Skill: "Welding"}}},
		},
		UserTrust:  map[string]map[string]float64{},
		Complexity: map[string]int{"Welding": 3},
		Closure:    flatClosure(),
	}

	got, err := Analyze(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one skill, got %+v", got)
	}
	if got[0].Demand != 2 || got[0].Supply != 0 || got[0].UnmetJobs != 2 {
		t.Fatalf("expected both jobs unfilled, got %+v", got[0])
	}
	if got[0].Score != 2 {
		t.Fatalf("expected score to equal raw gap at zero weight, got %+v", got[0])
	}
}

func TestAnalyzeTieBreaksByComplexityThenName(t *testing.T) {
	snap := Snapshot{
		Jobs: []Job{
			{ID: "j1", Requirements: []Requirement{{Skill: "Alpha"}}},
			{ID: "j2", Requirements: []Requirement{{Skill: "Omega"}}},
			{ID: "j3", Requirements: []Requirement{{Skill: "Beta"}}},
		},
		UserTrust:  map[string]map[string]float64{},
		Complexity: map[string]int{"Alpha": 1, "Omega": 3, "Beta": 1},
		Closure:    flatClosure(),
	}

	got, err := Analyze(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"Omega", "Alpha", "Beta"}
	for i, skill := range want {
		if got[i].Skill != skill {
			t.Fatalf("expected order %v, got %+v", want, got)
		}
	}
}

func TestAnalyzeExpandsDemandThroughClosure(t *testing.T) {
	snap := Snapshot{
		Jobs: []Job{
			{ID: "j1", Requirements: []Requirement{{Skill: "Solar Installation", MinTrust: 60}}},
		},
		UserTrust:  map[string]map[string]float64{},
		Complexity: map[string]int{"Solar Installation": 3, "Electrical Wiring": 3},
		Closure: chainClosure(map[string][]string{
			"Solar Installation": {"Electrical Wiring"},
		}),
	}

	got, err := Analyze(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected implicit prerequisite demand, got %+v", got)
	}
	for _, g := range got {
		if g.Demand != 1 {
			t.Fatalf("expected each skill demanded once, got %+v", g)
		}
		if g.UnmetJobs != 1 {
			t.Fatalf("expected the empty pool to leave the job unmet, got %+v", g)
		}
	}
}

func TestAnalyzeSupplyRequiresClosure(t *testing.T) {
	closure := chainClosure(map[string][]string{
		"Solar Installation": {"Electrical Wiring"},
	})
	snap := Snapshot{
		Jobs: []Job{
			{ID: "j1", Requirements: []Requirement{{Skill: "Solar Installation"}}},
		},
		UserTrust: map[string]map[string]float64{
			"holds-both":   {"Solar Installation": 70, "Electrical Wiring": 55},
			"missing-base": {"Solar Installation": 70},
		},
		Complexity: map[string]int{"Solar Installation": 3, "Electrical Wiring": 3},
		Closure:    closure,
	}

	got, err := Analyze(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var solar *SkillGap
	for i := range got {
		if got[i].Skill == "Solar Installation" {
			solar = &got[i]
		}
	}
	if solar == nil {
		t.Fatalf("expected Solar Installation in results, got %+v", got)
	}
	if solar.Supply != 1 {
		t.Fatalf("expected only the fully qualified user counted, got %+v", solar)
	}
	if solar.UnmetJobs != 0 {
		t.Fatalf("expected the job satisfiable, got %+v", solar)
	}
}

func TestAnalyzeHonorsJobThresholdForUnmet(t *testing.T) {
	snap := Snapshot{
		Jobs: []Job{
			{ID: "strict", Requirements: []Requirement{{Skill: "Welding", MinTrust: 90}}},
		},
		UserTrust: map[string]map[string]float64{
			"u1": {"Welding": 60},
		},
		Complexity: map[string]int{"Welding": 3},
		Closure:    flatClosure(),
	}

	got, err := Analyze(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one skill, got %+v", got)
	}
	// u1 feeds general supply at the default threshold but cannot meet the
	// strict job.
	if got[0].Supply != 1 || got[0].UnmetJobs != 1 {
		t.Fatalf("expected supply 1 with unmet job, got %+v", got[0])
	}
}

func TestAnalyzeComplexityWeightShiftsRanking(t *testing.T) {
	snap := Snapshot{
		Jobs: []Job{
			{ID: "j1", Requirements: []Requirement{{Skill: "Simple"}}},
			{ID: "j2", Requirements: []Requirement{{Skill: "Simple"}}},
			{ID: "j3", Requirements: []Requirement{{Skill: "Complex"}}},
		},
		UserTrust:  map[string]map[string]float64{},
		Complexity: map[string]int{"Simple": 1, "Complex": 3},
		Closure:    flatClosure(),
	}

	plain, err := Analyze(context.Background(), snap, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plain[0].Skill != "Simple" {
		t.Fatalf("expected raw demand to lead, got %+v", plain)
	}

	weighted, err := Analyze(context.Background(), snap, Options{ComplexityWeight: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weighted[0].Skill != "Complex" {
		t.Fatalf("expected weighted complexity to lead, got %+v", weighted)
	}
}

func TestAnalyzeEmptyJobsYieldsEmptyResult(t *testing.T) {
	got, err := Analyze(context.Background(), Snapshot{Closure: flatClosure()}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %+v", got)
	}
}

func TestAnalyzePropagatesClosureErrors(t *testing.T) {
	boom := errors.New("lattice went circular")
	snap := Snapshot{
		Jobs: []Job{{ID: "j1", Requirements: []Requirement{{Skill: "Welding"}}}},
		Closure: func(string) ([]string, error) {
			return nil, boom
		},
	}

	_, err := Analyze(context.Background(), snap, Options{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected closure error surfaced, got %v", err)
	}
}

func TestAnalyzeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := make([]Job, 64)
	for i := range jobs {
		jobs[i] = Job{ID: "j", Requirements: []Requirement{{Skill: "Welding"}}}
	}
	_, err := Analyze(ctx, Snapshot{Jobs: jobs, Closure: flatClosure()}, Options{Workers: 2})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
