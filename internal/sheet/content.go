package sheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/kschwarz/cellsheet/internal/formula"
	"github.com/kschwarz/cellsheet/internal/grid"
)

// valueLookup resolves the current value of a cell, recursing through
// the sheet's own memoized evaluation. A nonexistent cell contributes
// NumberValue(0), per spec.
type valueLookup func(grid.Position) grid.CellValue

// Content is the cell content sum type Empty | Text | Formula, following
// the same marker-method idiom the formula package's expr type uses:
// behavior lives in the free functions below (DisplayText,
// ReferencedPositions, Evaluate), which type-switch over Content rather
// than dispatching through per-variant methods — mirroring the
// teacher's CellRefs/evalExpr shape at the content layer.
type Content interface {
	isContent()
}

// EmptyContent is an unset cell: display text "", value Number(0.0), no
// references.
type EmptyContent struct{}

// TextContent is plain text, not interpreted as a formula.
type TextContent struct {
	Raw string
}

// FormulaContent owns a parsed, executable formula AST.
type FormulaContent struct {
	Ast formula.Ast
}

func (EmptyContent) isContent()   {}
func (TextContent) isContent()    {}
func (FormulaContent) isContent() {}

// NewContent builds a Content from a cell's raw input text, following
// the construction rule: empty -> Empty; "=" followed by at least one
// more character -> attempt a formula parse; anything else (including
// the single character "=") -> Text. A formula parse failure returns a
// wrapped ErrFormulaParse and no content.
func NewContent(raw string) (Content, error) {
	if raw == "" {
		return EmptyContent{}, nil
	}
	if len(raw) >= 2 && raw[0] == '=' {
		ast, err := formula.Parse(raw[1:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFormulaParse, err)
		}
		return FormulaContent{Ast: ast}, nil
	}
	return TextContent{Raw: raw}, nil
}

// DisplayText renders the text a user would see in the cell's input box.
func DisplayText(c Content) string {
	switch c := c.(type) {
	case EmptyContent:
		return ""
	case TextContent:
		return c.Raw
	case FormulaContent:
		return "=" + c.Ast.CanonicalExpression()
	default:
		return ""
	}
}

// ReferencedPositions lists the positions c references, deduplicated in
// first-occurrence order. Non-formula content never references
// anything.
func ReferencedPositions(c Content) []grid.Position {
	fc, ok := c.(FormulaContent)
	if !ok {
		return nil
	}
	return grid.DedupFirstOccurrence(fc.Ast.ReferencedPositions())
}

// stripEscape removes a single leading escape character ('\'') from raw
// text, if present, affecting only how the text is evaluated, never how
// it is displayed. A Text of exactly "'" strips to the empty string.
func stripEscape(raw string) string {
	if len(raw) > 0 && raw[0] == '\'' {
		return raw[1:]
	}
	return raw
}

// Evaluate computes c's value, recursing through lookup for formula
// references. Empty evaluates to Number(0.0); Text evaluates to a
// Number if its unescaped form parses as a finite double consuming the
// whole string, else to Text; Formula executes its AST, converting any
// propagated FormulaError into an ErrorValue.
func Evaluate(c Content, lookup valueLookup) grid.CellValue {
	switch c := c.(type) {
	case EmptyContent:
		return grid.NumberValue(0)
	case TextContent:
		text := stripEscape(c.Raw)
		if n, err := strconv.ParseFloat(text, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return grid.NumberValue(n)
		}
		return grid.TextValue(text)
	case FormulaContent:
		return evaluateFormula(c.Ast, lookup)
	default:
		return grid.NumberValue(0)
	}
}

// evaluateFormula adapts the sheet's CellValue-returning lookup into the
// float64-returning formula.Lookup the AST expects, applying the
// coercion rules the formula subsystem relies on: a numeric cell
// contributes its number; a text cell contributes its number only if
// wholly numeric, else raises #VALUE!; an error cell propagates its own
// category; an invalid position raises #REF!.
func evaluateFormula(ast formula.Ast, lookup valueLookup) grid.CellValue {
	adapted := func(pos grid.Position) (float64, error) {
		if !pos.IsValid() {
			return 0, grid.FormulaError{Category: grid.ErrRef}
		}
		switch v := lookup(pos).(type) {
		case grid.NumberValue:
			return float64(v), nil
		case grid.TextValue:
			if n, err := strconv.ParseFloat(string(v), 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
				return n, nil
			}
			return 0, grid.FormulaError{Category: grid.ErrValueCategory}
		case grid.ErrorValue:
			return 0, v.AsFormulaError()
		default:
			return 0, nil
		}
	}
	result, err := ast.Execute(adapted)
	if err != nil {
		var fe grid.FormulaError
		if errors.As(err, &fe) {
			return grid.NewErrorValue(fe)
		}
		return grid.NewErrorValue(grid.FormulaError{Category: grid.ErrValueCategory})
	}
	return grid.NumberValue(result)
}
