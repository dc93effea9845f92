package grid

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// PositionSet is a set of Positions, matching the "sorted set<Position>"
// refs_out/refs_in fields call for. The underlying representation is a
// map, the same representation the teacher uses for its refersTo/
// referredFrom edge sets; Sorted materializes a deterministic view on
// demand rather than maintaining sorted order on every insert.
type PositionSet struct {
	members map[Position]struct{}
}

// NewPositionSet builds an empty PositionSet.
func NewPositionSet() PositionSet {
	return PositionSet{members: make(map[Position]struct{})}
}

// Add inserts pos into the set.
func (s *PositionSet) Add(pos Position) {
	if s.members == nil {
		s.members = make(map[Position]struct{})
	}
	s.members[pos] = struct{}{}
}

// Remove deletes pos from the set, if present.
func (s *PositionSet) Remove(pos Position) {
	delete(s.members, pos)
}

// Contains reports whether pos is in the set.
func (s PositionSet) Contains(pos Position) bool {
	_, ok := s.members[pos]
	return ok
}

// Len reports the number of elements in the set.
func (s PositionSet) Len() int {
	return len(s.members)
}

// Clear empties the set in place, reusing its backing map the same way
// the teacher's refresh() clears refersTo entries with maps.Clear.
func (s *PositionSet) Clear() {
	maps.Clear(s.members)
}

// Sorted returns the set's elements in a deterministic row-major order.
func (s PositionSet) Sorted() []Position {
	out := make([]Position, 0, len(s.members))
	for pos := range s.members {
		out = append(out, pos)
	}
	slices.SortFunc(out, func(a, b Position) bool {
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return out
}

// DedupFirstOccurrence removes duplicates from positions, preserving the
// order of each element's first occurrence. This is the full dedup
// spec.md's Open Question requires, using slices.Contains for the
// membership check rather than an adjacent-only slices.Compact, since
// duplicates in a formula's referenced positions are not guaranteed to
// be adjacent.
func DedupFirstOccurrence(positions []Position) []Position {
	out := make([]Position, 0, len(positions))
	for _, p := range positions {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
