package taxonomy

import (
	"errors"
	"sync"
	"testing"

	"workforce-grid/internal/graph"
)

func newLattice(t *testing.T, skills ...string) (*graph.Store, *Resolver) {
	t.Helper()
	s := graph.NewStore()
	for _, name := range skills {
		if _, err := s.UpsertSkill(name, graph.SkillAttrs{Category: "Test", Complexity: 1}); err != nil {
			t.Fatalf("seed skill %s: %v", name, err)
		}
	}
	return s, NewResolver(s)
}

func addPrereq(t *testing.T, r *Resolver, prereq, dependent string) {
	t.Helper()
	err := r.AddPrerequisites([]graph.PrerequisitePair{{Prerequisite: prereq, Dependent: dependent}})
	if err != nil {
		t.Fatalf("add prerequisite %s -> %s: %v", prereq, dependent, err)
	}
}

func setTrust(t *testing.T, s *graph.Store, userID, skill string, trust float64) {
	t.Helper()
	if _, err := s.UpsertUser(userID, graph.UserAttrs{}); err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	cur, err := s.EnsureSkillEdge(userID, skill)
	if err != nil {
		t.Fatalf("ensure edge: %v", err)
	}
	next := cur
	next.Trust = trust
	next.Version = cur.Version + 1
	if swapped, err := s.CompareAndSwapSkillEdge(next); err != nil || !swapped {
		t.Fatalf("set trust: swapped=%v err=%v", swapped, err)
	}
}

func TestClosureIncludesSelfAndTransitives(t *testing.T) {
	_, r := newLattice(t, "Driving", "Automotive Repair", "Fleet Management")
	addPrereq(t, r, "Driving", "Automotive Repair")
	addPrereq(t, r, "Automotive Repair", "Fleet Management")

	got, err := r.ClosureOf("Fleet Management")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Automotive Repair", "Driving", "Fleet Management"}
	if len(got) != len(want) {
		t.Fatalf("expected closure %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected closure %v, got %v", want, got)
		}
	}
}

func TestClosureOfLeafIsItself(t *testing.T) {
	_, r := newLattice(t, "Hairdressing")

	got, err := r.ClosureOf("Hairdressing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != "Hairdressing" {
		t.Fatalf("expected singleton closure, got %v", got)
	}
}

func TestClosureExpandsDiamondOnce(t *testing.T) {
	_, r := newLattice(t, "Math", "Circuits", "Safety", "Solar Installation")
	addPrereq(t, r, "Math", "Circuits")
	addPrereq(t, r, "Math", "Safety")
	addPrereq(t, r, "Circuits", "Solar Installation")
	addPrereq(t, r, "Safety", "Solar Installation")

	got, err := r.ClosureOf("Solar Installation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 unique members, got %v", got)
	}
}

func TestClosureOnlyGrowsAsEdgesLand(t *testing.T) {
	_, r := newLattice(t, "Math", "Circuits", "Solar Installation")
	addPrereq(t, r, "Circuits", "Solar Installation")

	before, err := r.ClosureOf("Solar Installation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	addPrereq(t, r, "Math", "Circuits")

	after, err := r.ClosureOf("Solar Installation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("expected closure to grow by one, got %v then %v", before, after)
	}
	members := make(map[string]bool, len(after))
	for _, name := range after {
		members[name] = true
	}
	for _, name := range before {
		if !members[name] {
			t.Fatalf("expected %s to stay in the closure, got %v", name, after)
		}
	}
}

func TestClosureUnknownSkillFails(t *testing.T) {
	_, r := newLattice(t)
	if _, err := r.ClosureOf("Ghost"); !errors.Is(err, graph.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAddPrerequisitesRefusesDirectCycle(t *testing.T) {
	_, r := newLattice(t, "Electrical Wiring", "Solar Installation")
	addPrereq(t, r, "Electrical Wiring", "Solar Installation")

	err := r.AddPrerequisites([]graph.PrerequisitePair{{Prerequisite: "Solar Installation", Dependent: "Electrical Wiring"}})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestAddPrerequisitesRefusesTransitiveCycle(t *testing.T) {
	_, r := newLattice(t, "A", "B", "C")
	addPrereq(t, r, "A", "B")
	addPrereq(t, r, "B", "C")

	err := r.AddPrerequisites([]graph.PrerequisitePair{{Prerequisite: "C", Dependent: "A"}})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
}

func TestAddPrerequisitesRefusesJointlyCyclicBatch(t *testing.T) {
	s, r := newLattice(t, "A", "B")

	err := r.AddPrerequisites([]graph.PrerequisitePair{
		{Prerequisite: "A", Dependent: "B"},
		{Prerequisite: "B", Dependent: "A"},
	})
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected ErrCycleDetected, got %v", err)
	}
	if got, _ := s.Prerequisites("B"); len(got) != 0 {
		t.Fatalf("expected nothing committed, got %v", got)
	}
}

func TestAddPrerequisitesUnknownSkillFails(t *testing.T) {
	_, r := newLattice(t, "A")
	err := r.AddPrerequisites([]graph.PrerequisitePair{{Prerequisite: "A", Dependent: "Ghost"}})
	if !errors.Is(err, graph.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestWouldCreateCycle(t *testing.T) {
	_, r := newLattice(t, "A", "B", "C")
	addPrereq(t, r, "A", "B")
	addPrereq(t, r, "B", "C")

	cyclic, err := r.WouldCreateCycle("C", "A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cyclic {
		t.Fatalf("expected C -> A to close a loop")
	}

	cyclic, err = r.WouldCreateCycle("A", "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cyclic {
		t.Fatalf("expected A -> C to stay acyclic")
	}

	if cyclic, _ = r.WouldCreateCycle("A", "A"); !cyclic {
		t.Fatalf("expected self-edge to count as a cycle")
	}
}

func TestConcurrentEditorsNeverCommitJointCycle(t *testing.T) {
	s, r := newLattice(t, "A", "B")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	batches := [][]graph.PrerequisitePair{
		{{Prerequisite: "A", Dependent: "B"}},
		{{Prerequisite: "B", Dependent: "A"}},
	}
	wg.Add(2)
	for i := range batches {
		go func(i int) {
			defer wg.Done()
			errs[i] = r.AddPrerequisites(batches[i])
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			failures++
			if !errors.Is(err, ErrCycleDetected) {
				t.Fatalf("expected ErrCycleDetected for the loser, got %v", err)
			}
		}
	}
	if failures != 1 {
		t.Fatalf("expected exactly one editor refused, got %d (errs=%v)", failures, errs)
	}
	if s.Stats().Edges[graph.EdgePrerequisiteFor] != 1 {
		t.Fatalf("expected exactly one committed edge, got %d", s.Stats().Edges[graph.EdgePrerequisiteFor])
	}
}

func TestQualifyRequiresDirectEdgeAndClosure(t *testing.T) {
	s, r := newLattice(t, "Electrical Wiring", "Solar Installation")
	addPrereq(t, r, "Electrical Wiring", "Solar Installation")
	setTrust(t, s, "u1", "Electrical Wiring", 80)

	q, err := r.Qualify("u1", "Solar Installation", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Qualified {
		t.Fatalf("expected missing direct edge to disqualify")
	}
	if len(q.Missing) != 1 || q.Missing[0] != "Solar Installation" {
		t.Fatalf("expected only the skill itself missing, got %v", q.Missing)
	}

	setTrust(t, s, "u1", "Solar Installation", 54)
	q, err = r.Qualify("u1", "Solar Installation", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Qualified || len(q.Missing) != 0 {
		t.Fatalf("expected qualification after direct edge reaches threshold, got %+v", q)
	}
}

func TestQualifyBelowThresholdListsPrerequisite(t *testing.T) {
	s, r := newLattice(t, "Electrical Wiring", "Solar Installation")
	addPrereq(t, r, "Electrical Wiring", "Solar Installation")
	setTrust(t, s, "u1", "Electrical Wiring", 30)
	setTrust(t, s, "u1", "Solar Installation", 70)

	q, err := r.Qualify("u1", "Solar Installation", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Qualified {
		t.Fatalf("expected weak prerequisite to disqualify")
	}
	if len(q.Missing) != 1 || q.Missing[0] != "Electrical Wiring" {
		t.Fatalf("expected Electrical Wiring missing, got %v", q.Missing)
	}
}

func TestQualifyDefaultThresholdWantsPositiveTrust(t *testing.T) {
	s, r := newLattice(t, "Plumbing")
	setTrust(t, s, "u1", "Plumbing", 0.5)

	q, err := r.Qualify("u1", "Plumbing", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Qualified {
		t.Fatalf("expected any positive trust to qualify at default threshold")
	}

	// An edge that exists at zero trust does not count.
	if _, err := s.UpsertUser("u2", graph.UserAttrs{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.EnsureSkillEdge("u2", "Plumbing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q, err = r.Qualify("u2", "Plumbing", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Qualified {
		t.Fatalf("expected zero-trust edge to stay unqualified")
	}
}
