// Cell-count estimation for operations whose exact effect scope cannot be
// known without fetching sheet dimensions. Estimates feed the policy gate's
// effect-scope ceilings and the diff engine's tier selection; they are
// deliberately coarse approximations with no accuracy guarantee and should
// never be treated as real document sizes.
package request

import "github.com/gridgate-dev/gridgate/internal/sheets"

// Estimator supplies heuristic cell counts for unbounded operations. The
// per-row/column defaults are arbitrary approximations, so deployments with
// better knowledge of their documents plug in their own implementation via
// Builder.WithEstimator.
type Estimator interface {
	// CellsForUnboundedRange estimates the cells covered by a range with at
	// least one unbounded dimension.
	CellsForUnboundedRange(rng sheets.GridRange) int64

	// CellsForDimension estimates the cells affected by inserting or
	// deleting count rows or columns.
	CellsForDimension(dim sheets.Dimension, count int64) int64

	// CellsForSheet estimates the cells affected by a whole-sheet operation.
	CellsForSheet() int64
}

// Default per-dimension estimates. Chosen to be conservative enough that
// whole-sheet operations trip effect-scope ceilings configured for typical
// working documents.
const (
	// DefaultRowWidth is the assumed column count when a range's columns
	// are unbounded.
	DefaultRowWidth int64 = 26

	// DefaultColumnHeight is the assumed row count when a range's rows are
	// unbounded.
	DefaultColumnHeight int64 = 1000

	// DefaultSheetCells is the assumed size of a whole sheet.
	DefaultSheetCells int64 = DefaultRowWidth * DefaultColumnHeight
)

// DefaultEstimator implements Estimator with the fixed default constants.
type DefaultEstimator struct{}

// CellsForUnboundedRange substitutes the default height/width for whichever
// dimension is unbounded and multiplies.
func (DefaultEstimator) CellsForUnboundedRange(rng sheets.GridRange) int64 {
	rows := rng.RowCount()
	if rng.EndRowIndex == sheets.Unbounded {
		rows = DefaultColumnHeight
	}
	cols := rng.ColumnCount()
	if rng.EndColumnIndex == sheets.Unbounded {
		cols = DefaultRowWidth
	}
	return rows * cols
}

// CellsForDimension multiplies the dimension count by the default extent of
// the perpendicular dimension.
func (DefaultEstimator) CellsForDimension(dim sheets.Dimension, count int64) int64 {
	if dim == sheets.DimensionColumns {
		return count * DefaultColumnHeight
	}
	return count * DefaultRowWidth
}

// CellsForSheet returns the fixed whole-sheet estimate.
func (DefaultEstimator) CellsForSheet() int64 {
	return DefaultSheetCells
}
