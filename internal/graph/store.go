package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"workforce-grid/internal/geo"
)

// Store is an in-memory arena for the whole graph. Records are plain structs
// held in maps keyed by (type, natural key); relationships are adjacency
// indexes over refs, never pointers between records.
//
// Topology (nodes and typed edges) is guarded by one RWMutex. HAS_SKILL
// records sit outside that lock behind per-edge atomic pointers so trust
// writers contend only on the edge they touch.
type Store struct {
	mu    sync.RWMutex
	nodes map[NodeType]map[string]*Node
	out   map[Ref]map[EdgeType]map[Ref]*Edge
	in    map[Ref]map[EdgeType]map[Ref]*Edge

	byCategory map[string]map[string]struct{}
	edgeCounts map[EdgeType]int

	skillEdges map[skillEdgeKey]*atomic.Pointer[SkillEdge]
	skillsOf   map[string]map[string]struct{}
	holdersOf  map[string]map[string]struct{}

	taxonomyVersion uint64

	revision atomic.Uint64
}

type skillEdgeKey struct {
	user  string
	skill string
}

func NewStore() *Store {
	return &Store{
		nodes:      map[NodeType]map[string]*Node{},
		out:        map[Ref]map[EdgeType]map[Ref]*Edge{},
		in:         map[Ref]map[EdgeType]map[Ref]*Edge{},
		byCategory: map[string]map[string]struct{}{},
		edgeCounts: map[EdgeType]int{},
		skillEdges: map[skillEdgeKey]*atomic.Pointer[SkillEdge]{},
		skillsOf:   map[string]map[string]struct{}{},
		holdersOf:  map[string]map[string]struct{}{},
	}
}

// Revision increases on every committed write, including trust swaps. Cache
// keys derived from it go stale the moment the graph changes.
func (s *Store) Revision() uint64 {
	return s.revision.Load()
}

// TaxonomyVersion is the token validated by CommitPrerequisites. It bumps
// only when the prerequisite lattice changes.
func (s *Store) TaxonomyVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxonomyVersion
}

func (s *Store) UpsertSkill(name string, attrs SkillAttrs) (Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Node{}, fmt.Errorf("%w: skill name required", ErrConstraint)
	}
	if attrs.Complexity < 1 {
		return Node{}, fmt.Errorf("%w: skill %q complexity must be >= 1", ErrConstraint, name)
	}
	attrs.Category = strings.TrimSpace(attrs.Category)

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := SkillRef(name)
	if existing, ok := s.lookup(ref); ok {
		if existing.Skill.Category != attrs.Category {
			delete(s.byCategory[existing.Skill.Category], name)
			s.indexCategory(attrs.Category, name)
		}
		*existing.Skill = attrs
		s.revision.Add(1)
		return cloneNode(existing), nil
	}

	n := &Node{Ref: ref, Skill: &attrs}
	s.put(n)
	s.indexCategory(attrs.Category, name)
	s.revision.Add(1)
	return cloneNode(n), nil
}

func (s *Store) UpsertUser(id string, attrs UserAttrs) (Node, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Node{}, fmt.Errorf("%w: user id required", ErrConstraint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := UserRef(id)
	if existing, ok := s.lookup(ref); ok {
		// First registration wins; later events never rewrite it.
		if existing.User.RegisteredAt.IsZero() {
			existing.User.RegisteredAt = attrs.RegisteredAt
			s.revision.Add(1)
		}
		return cloneNode(existing), nil
	}

	n := &Node{Ref: ref, User: &attrs}
	s.put(n)
	s.revision.Add(1)
	return cloneNode(n), nil
}

func (s *Store) UpsertJob(id string, attrs JobAttrs) (Node, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Node{}, fmt.Errorf("%w: job id required", ErrConstraint)
	}
	if strings.TrimSpace(attrs.Title) == "" {
		return Node{}, fmt.Errorf("%w: job %q title required", ErrConstraint, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := JobRef(id)
	if existing, ok := s.lookup(ref); ok {
		*existing.Job = attrs
		s.revision.Add(1)
		return cloneNode(existing), nil
	}

	n := &Node{Ref: ref, Job: &attrs}
	s.put(n)
	s.revision.Add(1)
	return cloneNode(n), nil
}

func (s *Store) UpsertLocation(name string, attrs LocationAttrs) (Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Node{}, fmt.Errorf("%w: location name required", ErrConstraint)
	}
	if err := geo.ValidateCoordinate(attrs.Latitude, attrs.Longitude); err != nil {
		return Node{}, fmt.Errorf("location %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := LocationRef(name)
	if existing, ok := s.lookup(ref); ok {
		*existing.Location = attrs
		s.revision.Add(1)
		return cloneNode(existing), nil
	}

	n := &Node{Ref: ref, Location: &attrs}
	s.put(n)
	s.revision.Add(1)
	return cloneNode(n), nil
}

func (s *Store) UpsertCenter(name string, attrs CenterAttrs) (Node, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Node{}, fmt.Errorf("%w: training center name required", ErrConstraint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := CenterRef(name)
	if existing, ok := s.lookup(ref); ok {
		*existing.Center = attrs
		s.revision.Add(1)
		return cloneNode(existing), nil
	}

	n := &Node{Ref: ref, Center: &attrs}
	s.put(n)
	s.revision.Add(1)
	return cloneNode(n), nil
}

// Node returns a copy of the record behind ref.
func (s *Store) Node(ref Ref) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.lookup(ref)
	if !ok {
		return Node{}, fmt.Errorf("%w: %s %q", ErrNotFound, ref.Type, ref.Key)
	}
	return cloneNode(n), nil
}

func (s *Store) HasNode(ref Ref) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.lookup(ref)
	return ok
}

func (s *Store) Skills() []Node {
	return s.nodesOfType(NodeSkill)
}

func (s *Store) SkillsByCategory(category string) []Node {
	category = strings.TrimSpace(category)

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.byCategory[category]))
	for name := range s.byCategory[category] {
		keys = append(keys, name)
	}
	sort.Strings(keys)

	out := make([]Node, 0, len(keys))
	for _, name := range keys {
		if n, ok := s.lookup(SkillRef(name)); ok {
			out = append(out, cloneNode(n))
		}
	}
	return out
}

func (s *Store) Locations() []Node {
	return s.nodesOfType(NodeLocation)
}

// ActiveJobs returns jobs still open for matching, ordered by id.
func (s *Store) ActiveJobs() []Node {
	all := s.nodesOfType(NodeJob)
	out := all[:0]
	for _, n := range all {
		if n.Job.IsActive {
			out = append(out, n)
		}
	}
	return out
}

func (s *Store) Users() []Node {
	return s.nodesOfType(NodeUser)
}

// Stats is a point-in-time census of the arena, used by health reporting and
// by idempotence checks around the bootstrap seeders.
type Stats struct {
	Nodes           map[NodeType]int
	Edges           map[EdgeType]int
	TaxonomyVersion uint64
	Revision        uint64
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Nodes:           map[NodeType]int{},
		Edges:           map[EdgeType]int{},
		TaxonomyVersion: s.taxonomyVersion,
		Revision:        s.revision.Load(),
	}
	for t, m := range s.nodes {
		st.Nodes[t] = len(m)
	}
	for t, c := range s.edgeCounts {
		st.Edges[t] = c
	}
	st.Edges[EdgeHasSkill] = len(s.skillEdges)
	return st
}

func (s *Store) nodesOfType(t NodeType) []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.nodes[t]))
	for k := range s.nodes[t] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Node, 0, len(keys))
	for _, k := range keys {
		out = append(out, cloneNode(s.nodes[t][k]))
	}
	return out
}

// lookup and put require s.mu to be held.
func (s *Store) lookup(ref Ref) (*Node, bool) {
	n, ok := s.nodes[ref.Type][ref.Key]
	return n, ok
}

func (s *Store) put(n *Node) {
	m, ok := s.nodes[n.Ref.Type]
	if !ok {
		m = map[string]*Node{}
		s.nodes[n.Ref.Type] = m
	}
	m[n.Ref.Key] = n
}

func (s *Store) indexCategory(category, skill string) {
	m, ok := s.byCategory[category]
	if !ok {
		m = map[string]struct{}{}
		s.byCategory[category] = m
	}
	m[skill] = struct{}{}
}

func cloneNode(n *Node) Node {
	c := Node{Ref: n.Ref}
	switch {
	case n.Skill != nil:
		v := *n.Skill
		c.Skill = &v
	case n.User != nil:
		v := *n.User
		c.User = &v
	case n.Job != nil:
		v := *n.Job
		c.Job = &v
	case n.Location != nil:
		v := *n.Location
		c.Location = &v
	case n.Center != nil:
		v := *n.Center
		c.Center = &v
	}
	return c
}
