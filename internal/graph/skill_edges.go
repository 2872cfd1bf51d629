package graph

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// EnsureSkillEdge returns the current HAS_SKILL record between a user and a
// skill, creating a zero-trust record at version 1 if none exists. Both nodes
// must already be in the arena.
func (s *Store) EnsureSkillEdge(userID, skill string) (SkillEdge, error) {
	key := skillEdgeKey{user: userID, skill: skill}

	s.mu.RLock()
	ptr, ok := s.skillEdges[key]
	s.mu.RUnlock()
	if ok {
		return *ptr.Load(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ptr, ok := s.skillEdges[key]; ok {
		return *ptr.Load(), nil
	}
	if err := s.endpointsExist(UserRef(userID), SkillRef(skill)); err != nil {
		return SkillEdge{}, err
	}

	edge := &SkillEdge{UserID: userID, Skill: skill, Version: 1}
	ptr = &atomic.Pointer[SkillEdge]{}
	ptr.Store(edge)
	s.skillEdges[key] = ptr
	s.indexSkillEdge(userID, skill)
	s.revision.Add(1)
	return *edge, nil
}

// SkillEdge returns the current snapshot for (user, skill), if any.
func (s *Store) SkillEdge(userID, skill string) (SkillEdge, bool) {
	s.mu.RLock()
	ptr, ok := s.skillEdges[skillEdgeKey{user: userID, skill: skill}]
	s.mu.RUnlock()
	if !ok {
		return SkillEdge{}, false
	}
	return *ptr.Load(), true
}

// CompareAndSwapSkillEdge installs next as the successor of version
// next.Version-1. It returns false with no error when another writer got
// there first; callers re-read and rebuild. Trust outside [0,100] is refused
// outright since no retry can make it valid.
func (s *Store) CompareAndSwapSkillEdge(next SkillEdge) (bool, error) {
	if next.Trust < 0 || next.Trust > 100 {
		return false, fmt.Errorf("%w: trust %.2f not in [0, 100]", ErrConstraint, next.Trust)
	}
	if next.Version == 0 {
		return false, fmt.Errorf("%w: skill edge version must advance", ErrConstraint)
	}

	s.mu.RLock()
	ptr, ok := s.skillEdges[skillEdgeKey{user: next.UserID, skill: next.Skill}]
	s.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("%w: skill edge %s -> %s", ErrNotFound, next.UserID, next.Skill)
	}

	cur := ptr.Load()
	if cur.Version != next.Version-1 {
		return false, nil
	}
	installed := next
	if !ptr.CompareAndSwap(cur, &installed) {
		return false, nil
	}
	s.revision.Add(1)
	return true, nil
}

// UserSkillEdges returns every HAS_SKILL snapshot for a user, ordered by
// skill name.
func (s *Store) UserSkillEdges(userID string) []SkillEdge {
	s.mu.RLock()
	skills := make([]string, 0, len(s.skillsOf[userID]))
	for skill := range s.skillsOf[userID] {
		skills = append(skills, skill)
	}
	ptrs := make([]*atomic.Pointer[SkillEdge], 0, len(skills))
	sort.Strings(skills)
	for _, skill := range skills {
		ptrs = append(ptrs, s.skillEdges[skillEdgeKey{user: userID, skill: skill}])
	}
	s.mu.RUnlock()

	out := make([]SkillEdge, 0, len(ptrs))
	for _, ptr := range ptrs {
		out = append(out, *ptr.Load())
	}
	return out
}

// SkillHolders returns every HAS_SKILL snapshot for a skill, ordered by
// user id.
func (s *Store) SkillHolders(skill string) []SkillEdge {
	s.mu.RLock()
	users := make([]string, 0, len(s.holdersOf[skill]))
	for user := range s.holdersOf[skill] {
		users = append(users, user)
	}
	sort.Strings(users)
	ptrs := make([]*atomic.Pointer[SkillEdge], 0, len(users))
	for _, user := range users {
		ptrs = append(ptrs, s.skillEdges[skillEdgeKey{user: user, skill: skill}])
	}
	s.mu.RUnlock()

	out := make([]SkillEdge, 0, len(ptrs))
	for _, ptr := range ptrs {
		out = append(out, *ptr.Load())
	}
	return out
}

// AllSkillEdges snapshots every HAS_SKILL record, ordered by (user, skill).
// Sweeps iterate this copy so they never hold the topology lock while
// working.
func (s *Store) AllSkillEdges() []SkillEdge {
	s.mu.RLock()
	ptrs := make([]*atomic.Pointer[SkillEdge], 0, len(s.skillEdges))
	for _, ptr := range s.skillEdges {
		ptrs = append(ptrs, ptr)
	}
	s.mu.RUnlock()

	out := make([]SkillEdge, 0, len(ptrs))
	for _, ptr := range ptrs {
		out = append(out, *ptr.Load())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Skill < out[j].Skill
	})
	return out
}

// indexSkillEdge requires s.mu to be held.
func (s *Store) indexSkillEdge(userID, skill string) {
	bySkill, ok := s.skillsOf[userID]
	if !ok {
		bySkill = map[string]struct{}{}
		s.skillsOf[userID] = bySkill
	}
	bySkill[skill] = struct{}{}

	byUser, ok := s.holdersOf[skill]
	if !ok {
		byUser = map[string]struct{}{}
		s.holdersOf[skill] = byUser
	}
	byUser[userID] = struct{}{}
}
