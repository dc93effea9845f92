package sheet

import "errors"

// Structural errors surfaced by the Sheet API. Each failure mode leaves
// the sheet observably unchanged, per spec. Evaluation-time errors
// (#REF!/#VALUE!/#DIV/0!) are never returned as Go errors from this
// package's API — they are grid.ErrorValue values flowing through
// grid.CellValue instead.
var (
	// ErrInvalidPosition is returned when a position fails IsValid() at
	// any entry point.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrFormulaParse is returned when a "=..." cell body fails to
	// parse, or references a structurally invalid position.
	ErrFormulaParse = errors.New("formula parse error")
	// ErrCircularDependency is returned when a proposed formula edit
	// would introduce a cycle in the dependency graph.
	ErrCircularDependency = errors.New("circular dependency")
)
