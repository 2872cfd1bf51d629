package usecase

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"workforce-grid/internal/graph"
	"workforce-grid/internal/taxonomy"
	"workforce-grid/internal/trust"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// testGraph builds a small lattice with two anchored locations:
// Electrical Wiring is a prerequisite of Solar Installation, Welding and
// Plumbing stand alone.
func testGraph(t *testing.T) (*graph.Store, *taxonomy.Resolver) {
	t.Helper()

	s := graph.NewStore()
	skills := []struct {
		name       string
		category   string
		complexity int
	}{
		{"Electrical Wiring", "Construction", 2},
		{"Solar Installation", "Energy", 4},
		{"Welding", "Manufacturing", 3},
		{"Plumbing", "Construction", 2},
	}
	for _, sk := range skills {
		if _, err := s.UpsertSkill(sk.name, graph.SkillAttrs{Category: sk.category, Complexity: sk.complexity}); err != nil {
			t.Fatalf("seed skill %s: %v", sk.name, err)
		}
	}

	r := taxonomy.NewResolver(s)
	err := r.AddPrerequisites([]graph.PrerequisitePair{
		{Prerequisite: "Electrical Wiring", Dependent: "Solar Installation"},
	})
	if err != nil {
		t.Fatalf("seed prerequisite: %v", err)
	}

	locations := []struct {
		name     string
		lat, lng float64
	}{
		{"Nairobi CBD", -1.286389, 36.817223},
		{"Mombasa", -4.043477, 39.668206},
	}
	for _, loc := range locations {
		if _, err := s.UpsertLocation(loc.name, graph.LocationAttrs{Latitude: loc.lat, Longitude: loc.lng}); err != nil {
			t.Fatalf("seed location %s: %v", loc.name, err)
		}
	}

	return s, r
}

func registerUser(t *testing.T, s *graph.Store, id string) {
	t.Helper()
	if _, err := s.UpsertUser(id, graph.UserAttrs{RegisteredAt: time.Now().UTC()}); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func setTrust(t *testing.T, s *graph.Store, user, skill string, trustVal float64, verified bool) {
	t.Helper()
	registerUser(t, s, user)
	cur, err := s.EnsureSkillEdge(user, skill)
	if err != nil {
		t.Fatalf("ensure edge %s -> %s: %v", user, skill, err)
	}
	next := cur
	next.Trust = trustVal
	next.Verified = verified
	next.Evidence = cur.Evidence + 1
	next.LastEvent = time.Now().UTC()
	next.Version = cur.Version + 1
	ok, err := s.CompareAndSwapSkillEdge(next)
	if err != nil || !ok {
		t.Fatalf("set trust %s -> %s: ok=%v err=%v", user, skill, ok, err)
	}
}

func testEngine(s *graph.Store) *trust.Engine {
	return trust.NewEngine(s, trust.DefaultPolicy(), nil, discardLogger())
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte

	gets, hits, sets int

	// nxDenied makes SetIfNotExists report the lock as already held.
	nxDenied bool
	deletes  []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	b, ok := f.data[key]
	if !ok {
		return false, nil
	}
	f.hits++
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.data[key] = b
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	delete(f.data, key)
	return nil
}

func (f *fakeCache) SetIfNotExists(_ context.Context, key string, _ string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nxDenied {
		return false, nil
	}
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = []byte("1")
	return true, nil
}
