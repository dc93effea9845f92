// Package formula implements the spreadsheet engine's formula subsystem:
// a lexer, a recursive-descent parser, and an executable AST. It is the
// concrete collaborator the sheet package consumes behind the Ast
// interface the spec describes as externally supplied.
package formula

import (
	"fmt"
	"math"

	"github.com/kschwarz/cellsheet/internal/grid"
)

// Lookup resolves the current numeric value of a referenced position.
// It may return a grid.FormulaError (wrapped as a plain error) instead
// of a value — e.g. when the referenced cell's own content is
// non-numeric text, or itself holds a formula error.
type Lookup func(grid.Position) (float64, error)

// Ast is a parsed, executable formula expression. Parse returns a
// concrete implementation; callers only depend on this interface.
type Ast interface {
	// Execute evaluates the expression, resolving cell references
	// through lookup. It returns a grid.FormulaError (wrapped as error)
	// on division by zero, a non-finite result, or a propagated lookup
	// error.
	Execute(lookup Lookup) (float64, error)
	// ReferencedPositions lists every position the expression mentions,
	// in first-occurrence order but without deduplication: the same
	// position may appear more than once if it is referenced more than
	// once. Callers that need a deduplicated list dedup it themselves.
	ReferencedPositions() []grid.Position
	// CanonicalExpression renders the expression as parenthesis-minimal
	// source text, suitable for display as "=" + CanonicalExpression().
	CanonicalExpression() string
}

// expr is the internal sum type the parser builds, following the same
// marker-method idiom the teacher's Expr/IsExpr() uses. expr's own
// behavior is defined by the free functions below (evalExpr,
// collectRefs, printExpr) via type switches, also mirroring the
// teacher's evalExpr/CellRefs rather than per-variant methods; parsedAst
// adapts a root expr to the public Ast interface.
type expr interface {
	isExpr()
}

type numberExpr struct {
	value float64
}

type refExpr struct {
	pos grid.Position
}

type unaryExpr struct {
	x expr
}

type binaryExpr struct {
	op   token
	x, y expr
}

func (numberExpr) isExpr() {}
func (refExpr) isExpr()    {}
func (unaryExpr) isExpr()  {}
func (binaryExpr) isExpr() {}

// parsedAst adapts a root expr node to the public Ast interface.
type parsedAst struct {
	root expr
}

func (a parsedAst) Execute(lookup Lookup) (float64, error) {
	return evalExpr(a.root, lookup)
}

func (a parsedAst) ReferencedPositions() []grid.Position {
	return collectRefs(a.root)
}

func (a parsedAst) CanonicalExpression() string {
	return printExpr(a.root, 0)
}

// evalExpr evaluates e, resolving cell references through lookup.
// Mirrors the teacher's evalExpr(expr Expr) int, widened to float64 with
// error propagation instead of best-effort int arithmetic.
func evalExpr(e expr, lookup Lookup) (float64, error) {
	switch e := e.(type) {
	case numberExpr:
		return e.value, nil
	case refExpr:
		return lookup(e.pos)
	case unaryExpr:
		x, err := evalExpr(e.x, lookup)
		if err != nil {
			return 0, err
		}
		return -x, nil
	case binaryExpr:
		x, err := evalExpr(e.x, lookup)
		if err != nil {
			return 0, err
		}
		y, err := evalExpr(e.y, lookup)
		if err != nil {
			return 0, err
		}
		return applyOp(e.op, x, y)
	default:
		return 0, fmt.Errorf("formula: unreachable expr type %T", e)
	}
}

func applyOp(op token, x, y float64) (float64, error) {
	var result float64
	switch op {
	case tokenAdd:
		result = x + y
	case tokenSub:
		result = x - y
	case tokenMul:
		result = x * y
	case tokenDiv:
		if y == 0 {
			return 0, grid.FormulaError{Category: grid.ErrDiv0}
		}
		result = x / y
	default:
		return 0, fmt.Errorf("formula: unreachable operator %q", op)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, grid.FormulaError{Category: grid.ErrDiv0}
	}
	return result, nil
}

// collectRefs walks e and returns every referenced position in
// left-to-right, first-occurrence order, without deduplicating —
// mirroring the teacher's CellRefs, which has the same "no dedup" shape
// (the teacher's own dedup happens to be adjacent-only and is not
// reused here; deduplication is the caller's responsibility, per the
// Ast interface's documented contract).
func collectRefs(e expr) []grid.Position {
	switch e := e.(type) {
	case numberExpr:
		return nil
	case refExpr:
		return []grid.Position{e.pos}
	case unaryExpr:
		return collectRefs(e.x)
	case binaryExpr:
		return append(collectRefs(e.x), collectRefs(e.y)...)
	default:
		return nil
	}
}
