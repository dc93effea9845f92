package sheet

import "github.com/kschwarz/cellsheet/internal/grid"

// node is one grid slot: content, a memoized value cache, and the
// incoming/outgoing dependency edge sets. Grounded on the original
// implementation's Cash struct (is_validate_, value_, cells_to_,
// cells_from_) — translated from a mutable side-channel on an
// immutable-looking Cell into a plain struct field, since Sheet's
// methods already own exclusive, non-reentrant mutation access per
// spec.
type node struct {
	content    Content
	cacheValid bool
	cacheValue grid.CellValue
	refsOut    grid.PositionSet
	refsIn     grid.PositionSet
}

func newNode() *node {
	return &node{
		content: EmptyContent{},
		refsOut: grid.NewPositionSet(),
		refsIn:  grid.NewPositionSet(),
	}
}

func (n *node) isEmpty() bool {
	_, ok := n.content.(EmptyContent)
	return ok
}

func (n *node) invalidateSelf() {
	n.cacheValid = false
}
