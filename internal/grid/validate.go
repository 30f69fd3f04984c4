package grid

import (
	"fmt"
	"math"
)

// AcceptedUnit reports whether a velocity unit string denotes metres per
// second in one of the spellings found in current datasets.
func AcceptedUnit(unit string) bool {
	switch unit {
	case "m s-1", "metres s-1":
		return true
	}
	return false
}

// Validate checks that all arrays of the grid describe the same set of
// timestamps and nodes and that the velocities are in a supported unit.
func Validate(g *Grid) error {
	for _, f := range []Field{g.U, g.V} {
		if len(g.Times) != f.Rows {
			return &StructuralMismatchError{Left: "time count", LeftLen: len(g.Times), Right: f.Name + " rows", RightLen: f.Rows}
		}
	}
	if len(g.Lat) != len(g.Lon) {
		return &StructuralMismatchError{Left: "lat count", LeftLen: len(g.Lat), Right: "lon count", RightLen: len(g.Lon)}
	}
	for _, f := range []Field{g.U, g.V} {
		// A field without rows carries no node axis to compare.
		if f.Rows == 0 {
			continue
		}
		if len(g.Lat) != f.Cols {
			return &StructuralMismatchError{Left: "position count", LeftLen: len(g.Lat), Right: f.Name + " columns", RightLen: f.Cols}
		}
	}
	for i, t := range g.Times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &SourceFormatError{Variable: VarTime, Reason: fmt.Sprintf("non-finite value at index %d", i)}
		}
	}
	for _, f := range []Field{g.U, g.V} {
		if !AcceptedUnit(f.Units) {
			return &UnsupportedUnitError{Variable: f.Name, Unit: f.Units}
		}
	}
	return nil
}
