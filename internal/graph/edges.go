package graph

import (
	"fmt"
	"sort"
	"strings"
)

// PrerequisitePair is one prerequisite -> dependent edge in a bulk commit.
type PrerequisitePair struct {
	Prerequisite string
	Dependent    string
}

// UpsertRequires links a job to a skill it demands. MinTrust 0 keeps the
// default "any positive trust" policy.
func (s *Store) UpsertRequires(jobID, skill string, attrs RequiresAttrs) error {
	if attrs.MinTrust < 0 || attrs.MinTrust > 100 {
		return fmt.Errorf("%w: min trust %.2f not in [0, 100]", ErrConstraint, attrs.MinTrust)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := JobRef(jobID), SkillRef(skill)
	if err := s.endpointsExist(from, to); err != nil {
		return err
	}

	s.putEdge(&Edge{Type: EdgeRequires, From: from, To: to, Requires: &attrs})
	s.revision.Add(1)
	return nil
}

// UpsertLocatedIn anchors a user, job or training center to a location.
// The relationship is many-to-one: a second call moves the anchor rather
// than adding one.
func (s *Store) UpsertLocatedIn(from Ref, location string) error {
	switch from.Type {
	case NodeUser, NodeJob, NodeTrainingCenter:
	default:
		return fmt.Errorf("%w: %s nodes cannot be located in a location", ErrConstraint, from.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	to := LocationRef(location)
	if err := s.endpointsExist(from, to); err != nil {
		return err
	}

	for prev := range s.out[from][EdgeLocatedIn] {
		if prev != to {
			s.dropEdge(EdgeLocatedIn, from, prev)
		}
	}
	s.putEdge(&Edge{Type: EdgeLocatedIn, From: from, To: to})
	s.revision.Add(1)
	return nil
}

// UpsertTeaches records a training-center course for a skill.
func (s *Store) UpsertTeaches(center, skill string, attrs TeachesAttrs) error {
	attrs.Course = strings.TrimSpace(attrs.Course)
	if attrs.Course == "" {
		return fmt.Errorf("%w: course name required", ErrConstraint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := CenterRef(center), SkillRef(skill)
	if err := s.endpointsExist(from, to); err != nil {
		return err
	}

	s.putEdge(&Edge{Type: EdgeTeaches, From: from, To: to, Teaches: &attrs})
	s.revision.Add(1)
	return nil
}

// CommitPrerequisites installs prerequisite edges previously validated against
// the given taxonomy version. If the lattice changed since validation the
// commit is refused with ErrStaleWrite and nothing is written; the caller
// re-validates and tries again. A successful commit bumps the version.
func (s *Store) CommitPrerequisites(version uint64, pairs []PrerequisitePair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taxonomyVersion != version {
		return fmt.Errorf("%w: taxonomy moved from version %d to %d", ErrStaleWrite, version, s.taxonomyVersion)
	}

	for _, p := range pairs {
		if p.Prerequisite == p.Dependent {
			return fmt.Errorf("%w: skill %q cannot be its own prerequisite", ErrConstraint, p.Dependent)
		}
		if err := s.endpointsExist(SkillRef(p.Prerequisite), SkillRef(p.Dependent)); err != nil {
			return err
		}
	}

	changed := false
	for _, p := range pairs {
		from, to := SkillRef(p.Prerequisite), SkillRef(p.Dependent)
		if _, ok := s.out[from][EdgePrerequisiteFor][to]; ok {
			continue
		}
		s.putEdge(&Edge{Type: EdgePrerequisiteFor, From: from, To: to})
		changed = true
	}

	if changed {
		s.taxonomyVersion++
		s.revision.Add(1)
	}
	return nil
}

// Prerequisites returns the direct prerequisites of a skill, ordered by name.
func (s *Store) Prerequisites(skill string) ([]string, error) {
	return s.skillNeighbors(skill, s.in)
}

// Dependents returns the skills that list this one as a direct prerequisite.
func (s *Store) Dependents(skill string) ([]string, error) {
	return s.skillNeighbors(skill, s.out)
}

func (s *Store) skillNeighbors(skill string, index map[Ref]map[EdgeType]map[Ref]*Edge) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref := SkillRef(skill)
	if _, ok := s.lookup(ref); !ok {
		return nil, fmt.Errorf("%w: skill %q", ErrNotFound, skill)
	}

	out := make([]string, 0, len(index[ref][EdgePrerequisiteFor]))
	for other := range index[ref][EdgePrerequisiteFor] {
		out = append(out, other.Key)
	}
	sort.Strings(out)
	return out, nil
}

// JobRequirements flattens a job's REQUIRES edges, ordered by skill name.
func (s *Store) JobRequirements(jobID string) ([]Requirement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref := JobRef(jobID)
	if _, ok := s.lookup(ref); !ok {
		return nil, fmt.Errorf("%w: job %q", ErrNotFound, jobID)
	}

	out := make([]Requirement, 0, len(s.out[ref][EdgeRequires]))
	for to, e := range s.out[ref][EdgeRequires] {
		out = append(out, Requirement{Skill: to.Key, MinTrust: e.Requires.MinTrust})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Skill < out[j].Skill })
	return out, nil
}

// JobsRequiring returns ids of jobs with a REQUIRES edge to the skill.
func (s *Store) JobsRequiring(skill string) ([]string, error) {
	return s.incomingKeys(SkillRef(skill), EdgeRequires, NodeJob)
}

// CentersTeaching returns names of centers with a TEACHES edge to the skill.
func (s *Store) CentersTeaching(skill string) ([]string, error) {
	return s.incomingKeys(SkillRef(skill), EdgeTeaches, NodeTrainingCenter)
}

// CenterCourses returns the TEACHES edges leaving a training center, ordered
// by course name.
func (s *Store) CenterCourses(center string) ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref := CenterRef(center)
	if _, ok := s.lookup(ref); !ok {
		return nil, fmt.Errorf("%w: training center %q", ErrNotFound, center)
	}

	out := make([]Edge, 0, len(s.out[ref][EdgeTeaches]))
	for _, e := range s.out[ref][EdgeTeaches] {
		c := *e
		t := *e.Teaches
		c.Teaches = &t
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Teaches.Course < out[j].Teaches.Course })
	return out, nil
}

// LocationOf resolves the LOCATED_IN anchor of a user, job or center.
func (s *Store) LocationOf(ref Ref) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for to := range s.out[ref][EdgeLocatedIn] {
		return to.Key, true
	}
	return "", false
}

// JobsAt returns ids of jobs anchored at the location.
func (s *Store) JobsAt(location string) ([]string, error) {
	return s.incomingKeys(LocationRef(location), EdgeLocatedIn, NodeJob)
}

// CentersAt returns names of training centers anchored at the location.
func (s *Store) CentersAt(location string) ([]string, error) {
	return s.incomingKeys(LocationRef(location), EdgeLocatedIn, NodeTrainingCenter)
}

func (s *Store) incomingKeys(ref Ref, edge EdgeType, fromType NodeType) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.lookup(ref); !ok {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, ref.Type, ref.Key)
	}

	out := make([]string, 0, len(s.in[ref][edge]))
	for from := range s.in[ref][edge] {
		if from.Type == fromType {
			out = append(out, from.Key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// putEdge and dropEdge require s.mu to be held.
func (s *Store) putEdge(e *Edge) {
	if s.indexEdge(s.out, e.From, e.Type, e.To, e) {
		s.edgeCounts[e.Type]++
	}
	s.indexEdge(s.in, e.To, e.Type, e.From, e)
}

func (s *Store) dropEdge(t EdgeType, from, to Ref) {
	if m := s.out[from][t]; m != nil {
		if _, ok := m[to]; ok {
			delete(m, to)
			s.edgeCounts[t]--
		}
	}
	if m := s.in[to][t]; m != nil {
		delete(m, from)
	}
}

func (s *Store) indexEdge(index map[Ref]map[EdgeType]map[Ref]*Edge, a Ref, t EdgeType, b Ref, e *Edge) bool {
	byType, ok := index[a]
	if !ok {
		byType = map[EdgeType]map[Ref]*Edge{}
		index[a] = byType
	}
	peers, ok := byType[t]
	if !ok {
		peers = map[Ref]*Edge{}
		byType[t] = peers
	}
	_, existed := peers[b]
	peers[b] = e
	return !existed
}

func (s *Store) endpointsExist(from, to Ref) error {
	if _, ok := s.lookup(from); !ok {
		return fmt.Errorf("%w: %s %q", ErrNotFound, from.Type, from.Key)
	}
	if _, ok := s.lookup(to); !ok {
		return fmt.Errorf("%w: %s %q", ErrNotFound, to.Type, to.Key)
	}
	return nil
}
