// Package sheets defines the wire-level surface of the remote spreadsheet
// document API: the batched mutation request union, the per-operation reply
// union, document state payloads, and the HTTP client used to reach the API.
//
// REQUEST MODEL:
// The remote API accepts large optional-field unions where "which field is
// populated" encodes the operation kind. This package reimplements that shape
// as an explicit tagged union: every Request carries exactly one populated
// variant pointer plus a Kind discriminant set at construction time. The
// discriminant is decoded exactly once at the boundary (DecodeKind for
// inbound payloads, DecodeReply for responses) instead of being probed ad hoc
// via field-presence checks throughout the pipeline.
//
// OPERATION CATALOG:
// The catalog covers the request primitives the mutation pipeline batches:
// cell updates and appends, dimension insertion/deletion, sheet lifecycle,
// reordering (sort/randomize), data transforms (text-to-columns, find and
// replace, copy/cut paste), and merges. Higher-level feature mapping lives
// outside this package.
//
// Only JSON fields the pipeline consumes are modeled; unknown remote fields
// are ignored on decode.
package sheets

import (
	"encoding/json"
	"fmt"
)

// RequestKind identifies which variant of the Request union is populated.
// Values match the remote API's JSON field names so a kind can be derived
// from (and serialized to) the wire shape without a lookup table.
type RequestKind string

const (
	KindUpdateCells           RequestKind = "updateCells"
	KindAppendCells           RequestKind = "appendCells"
	KindInsertDimension       RequestKind = "insertDimension"
	KindDeleteDimension       RequestKind = "deleteDimension"
	KindUpdateSheetProperties RequestKind = "updateSheetProperties"
	KindAddSheet              RequestKind = "addSheet"
	KindDeleteSheet           RequestKind = "deleteSheet"
	KindDuplicateSheet        RequestKind = "duplicateSheet"
	KindSortRange             RequestKind = "sortRange"
	KindRandomizeRange        RequestKind = "randomizeRange"
	KindTextToColumns         RequestKind = "textToColumns"
	KindCopyPaste             RequestKind = "copyPaste"
	KindCutPaste              RequestKind = "cutPaste"
	KindMergeCells            RequestKind = "mergeCells"
	KindFindReplace           RequestKind = "findReplace"
)

// Dimension selects rows or columns for dimension-level operations.
type Dimension string

const (
	DimensionRows    Dimension = "ROWS"
	DimensionColumns Dimension = "COLUMNS"
)

// Request is the tagged union of all mutation request kinds understood by the
// remote batchUpdate endpoint. Exactly one variant pointer is non-nil; Kind
// names it. Construct via the New* constructors so the invariant holds by
// construction rather than by caller discipline.
type Request struct {
	Kind RequestKind `json:"-"` // Discriminant, excluded from the wire shape

	UpdateCells           *UpdateCellsRequest           `json:"updateCells,omitempty"`
	AppendCells           *AppendCellsRequest           `json:"appendCells,omitempty"`
	InsertDimension       *InsertDimensionRequest       `json:"insertDimension,omitempty"`
	DeleteDimension       *DeleteDimensionRequest       `json:"deleteDimension,omitempty"`
	UpdateSheetProperties *UpdateSheetPropertiesRequest `json:"updateSheetProperties,omitempty"`
	AddSheet              *AddSheetRequest              `json:"addSheet,omitempty"`
	DeleteSheet           *DeleteSheetRequest           `json:"deleteSheet,omitempty"`
	DuplicateSheet        *DuplicateSheetRequest        `json:"duplicateSheet,omitempty"`
	SortRange             *SortRangeRequest             `json:"sortRange,omitempty"`
	RandomizeRange        *RandomizeRangeRequest        `json:"randomizeRange,omitempty"`
	TextToColumns         *TextToColumnsRequest         `json:"textToColumns,omitempty"`
	CopyPaste             *CopyPasteRequest             `json:"copyPaste,omitempty"`
	CutPaste              *CutPasteRequest              `json:"cutPaste,omitempty"`
	MergeCells            *MergeCellsRequest            `json:"mergeCells,omitempty"`
	FindReplace           *FindReplaceRequest           `json:"findReplace,omitempty"`
}

// DecodeKind derives the discriminant from whichever variant is populated.
// Used when a Request arrives from JSON (Kind is not on the wire) and as a
// consistency check. Returns an error when zero or multiple variants are set,
// which indicates a malformed payload.
func (r *Request) DecodeKind() (RequestKind, error) {
	var kind RequestKind
	count := 0
	for k, populated := range map[RequestKind]bool{
		KindUpdateCells:           r.UpdateCells != nil,
		KindAppendCells:           r.AppendCells != nil,
		KindInsertDimension:       r.InsertDimension != nil,
		KindDeleteDimension:       r.DeleteDimension != nil,
		KindUpdateSheetProperties: r.UpdateSheetProperties != nil,
		KindAddSheet:              r.AddSheet != nil,
		KindDeleteSheet:           r.DeleteSheet != nil,
		KindDuplicateSheet:        r.DuplicateSheet != nil,
		KindSortRange:             r.SortRange != nil,
		KindRandomizeRange:        r.RandomizeRange != nil,
		KindTextToColumns:         r.TextToColumns != nil,
		KindCopyPaste:             r.CopyPaste != nil,
		KindCutPaste:              r.CutPaste != nil,
		KindMergeCells:            r.MergeCells != nil,
		KindFindReplace:           r.FindReplace != nil,
	} {
		if populated {
			kind = k
			count++
		}
	}
	switch count {
	case 1:
		return kind, nil
	case 0:
		return "", fmt.Errorf("request has no populated variant")
	default:
		return "", fmt.Errorf("request has %d populated variants, want exactly 1", count)
	}
}

// UnmarshalJSON decodes the wire shape and sets the Kind discriminant once,
// so downstream code can switch on Kind without probing field presence.
func (r *Request) UnmarshalJSON(data []byte) error {
	type alias Request // Avoid recursing into this method
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = Request(a)
	kind, err := r.DecodeKind()
	if err != nil {
		return err
	}
	r.Kind = kind
	return nil
}

// UpdateCellsRequest writes a grid of values over a bounded range. An empty
// Rows slice with the same range clears the targeted cells.
type UpdateCellsRequest struct {
	Range  GridRange  `json:"range"`
	Rows   [][]string `json:"rows"`
	Fields string     `json:"fields"` // Field mask, e.g. "userEnteredValue"
}

// AppendCellsRequest appends rows of values after the last row with data in
// the target sheet.
type AppendCellsRequest struct {
	SheetID int64      `json:"sheetId"`
	Rows    [][]string `json:"rows"`
	Fields  string     `json:"fields"`
}

// InsertDimensionRequest inserts empty rows or columns at the given index range.
type InsertDimensionRequest struct {
	Range             DimensionRange `json:"range"`
	InheritFromBefore bool           `json:"inheritFromBefore"`
}

// DeleteDimensionRequest removes the rows or columns in the given index range.
type DeleteDimensionRequest struct {
	Range DimensionRange `json:"range"`
}

// UpdateSheetPropertiesRequest changes sheet metadata (title, index, grid size).
type UpdateSheetPropertiesRequest struct {
	Properties SheetProperties `json:"properties"`
	Fields     string          `json:"fields"`
}

// AddSheetRequest creates a new sheet with the given properties.
type AddSheetRequest struct {
	Properties SheetProperties `json:"properties"`
}

// DeleteSheetRequest removes an entire sheet and all data on it.
type DeleteSheetRequest struct {
	SheetID int64 `json:"sheetId"`
}

// DuplicateSheetRequest copies a sheet within the same document.
type DuplicateSheetRequest struct {
	SourceSheetID    int64  `json:"sourceSheetId"`
	InsertSheetIndex int64  `json:"insertSheetIndex"`
	NewSheetName     string `json:"newSheetName,omitempty"`
}

// SortSpec describes one sort key for a SortRangeRequest.
type SortSpec struct {
	DimensionIndex int64  `json:"dimensionIndex"`
	SortOrder      string `json:"sortOrder"` // ASCENDING or DESCENDING
}

// SortRangeRequest reorders rows within a range by one or more sort keys.
// The pre-sort row order is not recoverable from the result.
type SortRangeRequest struct {
	Range     GridRange  `json:"range"`
	SortSpecs []SortSpec `json:"sortSpecs"`
}

// RandomizeRangeRequest shuffles row order within a range. Irreversible.
type RandomizeRangeRequest struct {
	Range GridRange `json:"range"`
}

// TextToColumnsRequest splits a single source column across adjacent columns,
// overwriting whatever data those columns hold.
type TextToColumnsRequest struct {
	Source        GridRange `json:"source"`
	Delimiter     string    `json:"delimiter,omitempty"`
	DelimiterType string    `json:"delimiterType"` // COMMA, SEMICOLON, PERIOD, SPACE, CUSTOM
}

// CopyPasteRequest copies data from a source range to a destination range.
type CopyPasteRequest struct {
	Source      GridRange `json:"source"`
	Destination GridRange `json:"destination"`
	PasteType   string    `json:"pasteType"` // PASTE_NORMAL, PASTE_VALUES, PASTE_FORMAT
}

// GridCoordinate addresses a single cell as a paste anchor.
type GridCoordinate struct {
	SheetID     int64 `json:"sheetId"`
	RowIndex    int64 `json:"rowIndex"`
	ColumnIndex int64 `json:"columnIndex"`
}

// CutPasteRequest moves data from a source range to a destination anchor,
// clearing the source.
type CutPasteRequest struct {
	Source      GridRange      `json:"source"`
	Destination GridCoordinate `json:"destination"`
	PasteType   string         `json:"pasteType"`
}

// MergeCellsRequest merges the cells in a range into one or more merged regions.
type MergeCellsRequest struct {
	Range     GridRange `json:"range"`
	MergeType string    `json:"mergeType"` // MERGE_ALL, MERGE_COLUMNS, MERGE_ROWS
}

// FindReplaceRequest replaces text occurrences within a range, a sheet, or the
// whole document.
type FindReplaceRequest struct {
	Find            string     `json:"find"`
	Replacement     string     `json:"replacement"`
	Range           *GridRange `json:"range,omitempty"`
	SheetID         *int64     `json:"sheetId,omitempty"`
	AllSheets       bool       `json:"allSheets,omitempty"`
	MatchCase       bool       `json:"matchCase,omitempty"`
	MatchEntireCell bool       `json:"matchEntireCell,omitempty"`
}

// GridProperties holds the dimensions of a sheet's grid.
type GridProperties struct {
	RowCount    int64 `json:"rowCount"`
	ColumnCount int64 `json:"columnCount"`
}

// SheetProperties holds sheet-level metadata used by add/update/duplicate
// operations and returned in document state fetches.
type SheetProperties struct {
	SheetID        int64          `json:"sheetId,omitempty"`
	Title          string         `json:"title,omitempty"`
	Index          int64          `json:"index,omitempty"`
	GridProperties GridProperties `json:"gridProperties,omitempty"`
}

// BatchUpdateRequest is the single mutating call shape: an ordered list of
// requests applied atomically by the remote system, plus response shaping
// flags that let the caller receive post-mutation document state in the same
// round trip.
type BatchUpdateRequest struct {
	Requests                     []Request `json:"requests"`
	IncludeSpreadsheetInResponse bool      `json:"includeSpreadsheetInResponse,omitempty"`
	ResponseRanges               []string  `json:"responseRanges,omitempty"`
	ResponseIncludeGridData      bool      `json:"responseIncludeGridData,omitempty"`
}

// BatchUpdateResponse carries one Reply per request in submission order, plus
// the post-mutation document state when the request asked for it. The updated
// spreadsheet is the zero-extra-call path for after-state diffing.
type BatchUpdateResponse struct {
	SpreadsheetID      string        `json:"spreadsheetId"`
	Replies            []Reply       `json:"replies"`
	UpdatedSpreadsheet *DocumentData `json:"updatedSpreadsheet,omitempty"`
}

// SheetData is one sheet's state within a fetched or response-embedded
// document: metadata always, grid values only when grid data was requested.
type SheetData struct {
	Properties SheetProperties `json:"properties"`
	Values     [][]string      `json:"values,omitempty"`
}

// DocumentData is the document state payload returned by a state fetch or
// embedded in a mutation response. Transient: the pipeline never persists it.
type DocumentData struct {
	SpreadsheetID string      `json:"spreadsheetId"`
	Title         string      `json:"title,omitempty"`
	Sheets        []SheetData `json:"sheets"`
}
