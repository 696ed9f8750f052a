// Grid and dimension range types shared by the request catalog and the diff
// engine. Ranges use half-open [start, end) index intervals matching the
// remote API; an end index of Unbounded means "to the edge of the sheet".
package sheets

import (
	"encoding/json"
	"fmt"
)

// Unbounded marks a range end index that extends to the sheet edge. The wire
// shape expresses this by omitting the field, which the custom JSON methods
// translate to and from this sentinel so pipeline code never branches on
// field presence.
const Unbounded int64 = -1

// GridRange addresses a rectangular cell region on one sheet using half-open
// row and column index intervals. End indexes may be Unbounded.
type GridRange struct {
	SheetID          int64
	StartRowIndex    int64
	EndRowIndex      int64
	StartColumnIndex int64
	EndColumnIndex   int64
}

// gridRangeJSON is the wire shape: absent end indexes mean unbounded.
type gridRangeJSON struct {
	SheetID          int64  `json:"sheetId"`
	StartRowIndex    int64  `json:"startRowIndex"`
	EndRowIndex      *int64 `json:"endRowIndex,omitempty"`
	StartColumnIndex int64  `json:"startColumnIndex"`
	EndColumnIndex   *int64 `json:"endColumnIndex,omitempty"`
}

// MarshalJSON emits the remote wire shape, omitting unbounded end indexes.
func (g GridRange) MarshalJSON() ([]byte, error) {
	w := gridRangeJSON{
		SheetID:          g.SheetID,
		StartRowIndex:    g.StartRowIndex,
		StartColumnIndex: g.StartColumnIndex,
	}
	if g.EndRowIndex != Unbounded {
		end := g.EndRowIndex
		w.EndRowIndex = &end
	}
	if g.EndColumnIndex != Unbounded {
		end := g.EndColumnIndex
		w.EndColumnIndex = &end
	}
	return json.Marshal(w)
}

// UnmarshalJSON translates absent end indexes to the Unbounded sentinel.
func (g *GridRange) UnmarshalJSON(data []byte) error {
	var w gridRangeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	g.SheetID = w.SheetID
	g.StartRowIndex = w.StartRowIndex
	g.StartColumnIndex = w.StartColumnIndex
	g.EndRowIndex = Unbounded
	g.EndColumnIndex = Unbounded
	if w.EndRowIndex != nil {
		g.EndRowIndex = *w.EndRowIndex
	}
	if w.EndColumnIndex != nil {
		g.EndColumnIndex = *w.EndColumnIndex
	}
	return nil
}

// Bounded reports whether both dimensions have explicit end indexes, which is
// what policy enforcement treats as an explicit target range.
func (g GridRange) Bounded() bool {
	return g.EndRowIndex != Unbounded && g.EndColumnIndex != Unbounded
}

// RowCount returns the number of rows covered, or 0 when rows are unbounded.
func (g GridRange) RowCount() int64 {
	if g.EndRowIndex == Unbounded || g.EndRowIndex < g.StartRowIndex {
		return 0
	}
	return g.EndRowIndex - g.StartRowIndex
}

// ColumnCount returns the number of columns covered, or 0 when columns are
// unbounded.
func (g GridRange) ColumnCount() int64 {
	if g.EndColumnIndex == Unbounded || g.EndColumnIndex < g.StartColumnIndex {
		return 0
	}
	return g.EndColumnIndex - g.StartColumnIndex
}

// Area returns the exact cell count covered by the range. The second return
// is false when either dimension is unbounded and the area cannot be known
// without fetching sheet dimensions; callers fall back to heuristics.
func (g GridRange) Area() (int64, bool) {
	if !g.Bounded() {
		return 0, false
	}
	return g.RowCount() * g.ColumnCount(), true
}

// String renders the range for logs and error messages.
func (g GridRange) String() string {
	row := "unbounded"
	if g.EndRowIndex != Unbounded {
		row = fmt.Sprintf("%d", g.EndRowIndex)
	}
	col := "unbounded"
	if g.EndColumnIndex != Unbounded {
		col = fmt.Sprintf("%d", g.EndColumnIndex)
	}
	return fmt.Sprintf("sheet %d rows [%d,%s) cols [%d,%s)", g.SheetID, g.StartRowIndex, row, g.StartColumnIndex, col)
}

// DimensionRange addresses a run of rows or columns on one sheet using a
// half-open index interval.
type DimensionRange struct {
	SheetID    int64     `json:"sheetId"`
	Dimension  Dimension `json:"dimension"`
	StartIndex int64     `json:"startIndex"`
	EndIndex   int64     `json:"endIndex"`
}

// Count returns the number of rows or columns covered by the range.
func (d DimensionRange) Count() int64 {
	if d.EndIndex < d.StartIndex {
		return 0
	}
	return d.EndIndex - d.StartIndex
}

// String renders the dimension range for logs and error messages.
func (d DimensionRange) String() string {
	return fmt.Sprintf("sheet %d %s [%d,%d)", d.SheetID, d.Dimension, d.StartIndex, d.EndIndex)
}
