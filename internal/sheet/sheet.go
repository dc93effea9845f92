// Package sheet implements the spreadsheet engine: a grid of cells whose
// content may reference other cells, with memoized evaluation kept
// consistent under edits. Grounded on the teacher's Spreadsheet, widened
// from a flat int-cell model to Content/CellValue and from one-hop
// refresh to transitive, pruned invalidation.
package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kschwarz/cellsheet/internal/grid"
)

// Sheet is a grid of cells. The zero value is not usable; construct one
// with NewSheet. A Sheet is not safe for concurrent use without external
// synchronization, matching the teacher's Spreadsheet.
type Sheet struct {
	nodes map[grid.Position]*node
	size  grid.Size
}

// NewSheet builds an empty Sheet.
func NewSheet() *Sheet {
	return &Sheet{nodes: make(map[grid.Position]*node)}
}

// ensureNode returns the node at pos, creating an Empty one if absent.
// Grounded on the original's behavior of materializing a
// referenced-but-never-set cell so its dependency edges have somewhere
// to live.
func (s *Sheet) ensureNode(pos grid.Position) *node {
	n, ok := s.nodes[pos]
	if !ok {
		n = newNode()
		s.nodes[pos] = n
	}
	return n
}

// SetCell parses raw as pos's new content and, if the edit is legal,
// commits it atomically: on any failure (invalid position, a formula
// that fails to parse or references an invalid position, or a formula
// that would introduce a circular dependency) the sheet is left exactly
// as it was before the call. A call whose raw matches pos's current
// display text is a no-op.
func (s *Sheet) SetCell(pos grid.Position, raw string) error {
	if !pos.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}

	if n, ok := s.nodes[pos]; ok && DisplayText(n.content) == raw {
		return nil
	}

	content, err := NewContent(raw)
	if err != nil {
		return err
	}

	newRefs := ReferencedPositions(content)
	for _, r := range newRefs {
		if !r.IsValid() {
			return fmt.Errorf("%w: formula at %s references invalid position %s", ErrFormulaParse, pos, r)
		}
	}

	var oldRefs []grid.Position
	if n, ok := s.nodes[pos]; ok {
		oldRefs = n.refsOut.Sorted()
	}

	if s.wouldCycle(pos, newRefs) {
		return fmt.Errorf("%w: setting %s would create a cycle", ErrCircularDependency, pos)
	}

	s.rewire(pos, oldRefs, newRefs)
	n := s.ensureNode(pos)
	n.content = content
	s.invalidate(pos)
	if n.isEmpty() {
		if pos.Row+1 == s.size.Rows || pos.Col+1 == s.size.Cols {
			s.recomputeSize()
		}
	} else {
		s.size = s.size.Grow(pos)
	}
	return nil
}

// ClearCell resets pos to Empty, severing its outgoing references. It is
// a no-op if pos doesn't exist or is already Empty. Invalid positions
// are rejected.
func (s *Sheet) ClearCell(pos grid.Position) error {
	if !pos.IsValid() {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}

	n, ok := s.nodes[pos]
	if !ok || n.isEmpty() {
		return nil
	}

	oldRefs := n.refsOut.Sorted()
	s.rewire(pos, oldRefs, nil)
	n.content = EmptyContent{}
	s.invalidate(pos)

	if pos.Row+1 == s.size.Rows || pos.Col+1 == s.size.Cols {
		s.recomputeSize()
	}
	return nil
}

// CellHandle is a reference to an existing, non-empty cell, returned by
// GetCell. Grounded on the spec's GetCell(pos).value()/.text() contract;
// Sheet's own GetText/GetValue cover the common case without requiring
// callers to hold a handle.
type CellHandle struct {
	sheet *Sheet
	pos   grid.Position
}

// Text returns the handle's display text.
func (h *CellHandle) Text() string {
	n := h.sheet.nodes[h.pos]
	return DisplayText(n.content)
}

// Value returns the handle's computed value, evaluating and memoizing as
// needed.
func (h *CellHandle) Value() grid.CellValue {
	return h.sheet.getValue(h.pos)
}

// GetCell returns a handle to pos if it exists and its content is not
// Empty; otherwise it returns a nil handle ("absent"), not an error.
// Invalid positions fail with ErrInvalidPosition.
func (s *Sheet) GetCell(pos grid.Position) (*CellHandle, error) {
	if !pos.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}
	n, ok := s.nodes[pos]
	if !ok || n.isEmpty() {
		return nil, nil
	}
	return &CellHandle{sheet: s, pos: pos}, nil
}

// GetText returns pos's display text. exists is false if pos doesn't
// exist or is currently Empty (including a cell only materialized as
// another cell's reference target, a cell that was explicitly cleared,
// and a cell whose every SetCell attempt failed; a failed SetCell on a
// non-empty cell leaves its previous content in place).
func (s *Sheet) GetText(pos grid.Position) (text string, exists bool, err error) {
	h, err := s.GetCell(pos)
	if err != nil || h == nil {
		return "", false, err
	}
	return h.Text(), true, nil
}

// GetValue returns pos's computed value, evaluating and memoizing as
// needed. exists follows the same convention as GetText.
func (s *Sheet) GetValue(pos grid.Position) (value grid.CellValue, exists bool, err error) {
	h, err := s.GetCell(pos)
	if err != nil || h == nil {
		return nil, false, err
	}
	return h.Value(), true, nil
}

// getValue returns pos's memoized value, recomputing it if the cache is
// invalid or the node doesn't exist yet. The dependency graph is
// maintained acyclic by SetCell's cycle check, so this recursion always
// terminates.
func (s *Sheet) getValue(pos grid.Position) grid.CellValue {
	n := s.ensureNode(pos)
	if n.cacheValid {
		return n.cacheValue
	}
	n.cacheValue = Evaluate(n.content, s.getValue)
	n.cacheValid = true
	return n.cacheValue
}

// PrintableSize reports the tight bounding box of non-empty cells: the
// smallest Size such that every non-empty position falls within it.
func (s *Sheet) PrintableSize() grid.Size {
	return s.size
}

// recomputeSize recomputes the bounding box from scratch over non-empty
// cells. Called only when a cell on the current bounding box's edge
// becomes Empty (ClearCell, or SetCell with empty text); an edit that
// leaves a cell non-empty grows the box directly instead.
func (s *Sheet) recomputeSize() {
	var size grid.Size
	for pos, n := range s.nodes {
		if !n.isEmpty() {
			size = size.Grow(pos)
		}
	}
	s.size = size
}

// PrintTexts renders the sheet's printable region as a grid of display
// texts, one row per line, cells tab-separated. Grounded on the
// original C++ PrintTexts, which also ends every row, including the
// last, with a newline.
func (s *Sheet) PrintTexts() string {
	return s.printGrid(func(pos grid.Position) string {
		text, exists, _ := s.GetText(pos)
		if !exists {
			return ""
		}
		return text
	})
}

// PrintValues renders the sheet's printable region as a grid of rendered
// values, one row per line, cells tab-separated.
func (s *Sheet) PrintValues() string {
	return s.printGrid(func(pos grid.Position) string {
		value, exists, _ := s.GetValue(pos)
		if !exists {
			return ""
		}
		return renderValue(value)
	})
}

func (s *Sheet) printGrid(cellText func(grid.Position) string) string {
	var b strings.Builder
	for row := 0; row < s.size.Rows; row++ {
		cells := make([]string, s.size.Cols)
		for col := 0; col < s.size.Cols; col++ {
			cells[col] = cellText(grid.NewPosition(row, col))
		}
		b.WriteString(strings.Join(cells, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// renderValue formats a CellValue the way a spreadsheet cell displays
// it: numbers in canonical shortest form, text verbatim, errors as their
// token.
func renderValue(v grid.CellValue) string {
	switch v := v.(type) {
	case grid.NumberValue:
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	case grid.TextValue:
		return string(v)
	case grid.ErrorValue:
		return v.Token()
	default:
		return ""
	}
}
