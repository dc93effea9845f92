package sheet

import "github.com/kschwarz/cellsheet/internal/grid"

// dfsColor is the three-color DFS state the teacher's topSort/visit
// closure uses (absent/temp/perm there: temp is the on-stack gray,
// perm the fully explored black).
type dfsColor int

const (
	white dfsColor = iota // unvisited
	gray                  // on the current DFS stack
	black                 // fully explored
)

// wouldCycle reports whether replacing pos's outgoing edges with
// {pos -> r | r in newRefs} would introduce a cycle, without mutating
// the graph. Grounded on the teacher's topSort, whose visit closure is
// exactly this three-color DFS (temp == gray/on-stack, perm == black);
// here the DFS is rooted at pos, with pos's tentative edges (newRefs)
// substituted for its committed ones and every other node's neighbors taken from its
// already-committed refsOut. A self-reference (pos present in newRefs)
// is caught by the same mechanism: pos is colored gray before its
// neighbors are visited, so visiting pos as a neighbor re-enters a
// gray node immediately.
func (s *Sheet) wouldCycle(pos grid.Position, newRefs []grid.Position) bool {
	color := make(map[grid.Position]dfsColor)

	var visit func(grid.Position) bool
	visit = func(p grid.Position) bool {
		color[p] = gray
		neighbors := newRefs
		if p != pos {
			n, ok := s.nodes[p]
			if !ok {
				color[p] = black
				return false
			}
			neighbors = n.refsOut.Sorted()
		}
		for _, next := range neighbors {
			switch color[next] {
			case gray:
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}
		color[p] = black
		return false
	}

	return visit(pos)
}

// rewire applies the dependency edge changes for pos moving from
// oldRefs to newRefs: cells dropped from the reference set lose pos
// from their refsIn; cells newly referenced are materialized as Empty
// if they don't already exist, and gain pos in their refsIn. Grounded
// on the teacher's refresh() (maps.Clear + addCellReferral) and the
// original's SetReferencedAndDependentCells, which materializes a
// missing referenced cell before wiring the edge.
func (s *Sheet) rewire(pos grid.Position, oldRefs, newRefs []grid.Position) {
	oldSet := grid.NewPositionSet()
	for _, r := range oldRefs {
		oldSet.Add(r)
	}
	newSet := grid.NewPositionSet()
	for _, r := range newRefs {
		newSet.Add(r)
	}

	for _, r := range oldRefs {
		if newSet.Contains(r) {
			continue
		}
		if n, ok := s.nodes[r]; ok {
			n.refsIn.Remove(pos)
		}
	}

	for _, r := range newRefs {
		if oldSet.Contains(r) {
			continue
		}
		n := s.ensureNode(r)
		n.refsIn.Add(pos)
	}

	posNode := s.ensureNode(pos)
	posNode.refsOut.Clear()
	for _, r := range newRefs {
		posNode.refsOut.Add(r)
	}
}

// invalidate marks pos's cache invalid and propagates the invalidation
// transitively along refsIn (upward, to dependents), pruning at nodes
// already invalid so the walk is bounded by the dirtied subtree.
// Grounded on the original's Cell::Clear/Cell::GetValue
// (SetValidateFlag(false) over cash_.cells_from_) and
// Sheet::InvalidateDependentCells, generalized from one hop to
// transitive-with-pruning per spec.
func (s *Sheet) invalidate(pos grid.Position) {
	n, ok := s.nodes[pos]
	if !ok {
		return
	}
	n.invalidateSelf()
	for _, dep := range n.refsIn.Sorted() {
		depNode, ok := s.nodes[dep]
		if !ok || !depNode.cacheValid {
			continue
		}
		s.invalidate(dep)
	}
}
