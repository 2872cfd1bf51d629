package graph

import "errors"

var (
	// ErrNotFound reports a lookup against a node or edge that does not exist.
	ErrNotFound = errors.New("graph: record not found")

	// ErrConstraint reports a write that would break a schema rule: a bad
	// attribute value, an edge between incompatible node types, or a write
	// to an engine-owned edge through the generic surface.
	ErrConstraint = errors.New("graph: constraint violation")

	// ErrStaleWrite reports that an optimistic write lost its race more times
	// than the caller was willing to retry. The graph itself is unchanged.
	ErrStaleWrite = errors.New("graph: stale write, retries exhausted")
)
