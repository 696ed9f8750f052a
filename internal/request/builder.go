// Package request provides the stateless factory layer that turns typed
// operation descriptions into wrapped remote requests carrying the routing
// and safety metadata the rest of the pipeline consumes.
//
// BUILDER DESIGN:
// One factory method per remote request kind. Each factory (a) constructs the
// remote payload from typed inputs, (b) derives an estimated cell count --
// exact range area when bounds are known, otherwise a pluggable heuristic
// estimate -- and (c) classifies the operation as destructive and/or high
// risk from a fixed per-kind table. Factories perform no I/O and no
// validation beyond structural typing; safety enforcement happens later in
// the policy gate.
//
// METADATA FLOW:
// The Wrapped pair {request, metadata} is immutable and ephemeral: created
// per caller invocation, consumed by batch compilation, never stored.
package request

import (
	"github.com/gridgate-dev/gridgate/internal/sheets"
)

// Metadata carries routing and safety context for one remote request.
// Destructive/HighRisk and EstimatedCells drive the policy gate and diff
// tier selection; Source fields exist for audit logging only.
type Metadata struct {
	SourceTool     string `json:"sourceTool"`              // Calling tool name for audit logs
	SourceAction   string `json:"sourceAction"`            // Calling action for audit logs
	TransactionID  string `json:"transactionId,omitempty"` // Optional caller-supplied correlation ID
	Priority       int    `json:"priority,omitempty"`      // Optional caller-supplied ordering hint
	Destructive    bool   `json:"destructive"`             // Removes data or irreversibly reorders it
	HighRisk       bool   `json:"highRisk"`                // No straightforward rollback; triggers snapshot
	EstimatedCells int64  `json:"estimatedCells"`          // Heuristic effect scope in cells
	DocumentID     string `json:"documentId"`              // Target document
	SheetID        int64  `json:"sheetId,omitempty"`       // Target sheet within the document
	RangeRef       string `json:"rangeRef,omitempty"`      // Human-readable target range, when one exists
}

// Wrapped pairs a remote request with its metadata. Immutable once built.
type Wrapped struct {
	Req  sheets.Request
	Meta Metadata
}

// Source identifies the caller on whose behalf requests are built. Attached
// verbatim to every Wrapped produced by a Builder.
type Source struct {
	Tool          string
	Action        string
	TransactionID string
}

// Builder is the stateless request factory. The zero value is not usable;
// construct via NewBuilder so the estimator default is applied.
type Builder struct {
	source    Source
	estimator Estimator
}

// NewBuilder creates a request builder for the given caller source using the
// default cell estimator. Pass a custom estimator via WithEstimator when the
// deployment has better knowledge of typical document sizes.
func NewBuilder(source Source) *Builder {
	return &Builder{
		source:    source,
		estimator: DefaultEstimator{},
	}
}

// WithEstimator returns a copy of the builder using the given estimator for
// unbounded-range cell counts.
func (b *Builder) WithEstimator(e Estimator) *Builder {
	nb := *b
	nb.estimator = e
	return &nb
}

// wrap assembles the Wrapped pair, filling classification from the per-kind
// risk table and source fields from the builder.
func (b *Builder) wrap(documentID string, req sheets.Request, sheetID int64, rangeRef string, estimatedCells int64) Wrapped {
	profile := riskProfiles[req.Kind]
	return Wrapped{
		Req: req,
		Meta: Metadata{
			SourceTool:     b.source.Tool,
			SourceAction:   b.source.Action,
			TransactionID:  b.source.TransactionID,
			Destructive:    profile.destructive,
			HighRisk:       profile.highRisk,
			EstimatedCells: estimatedCells,
			DocumentID:     documentID,
			SheetID:        sheetID,
			RangeRef:       rangeRef,
		},
	}
}

// rangeCells returns the exact area of a bounded range or the estimator's
// heuristic for unbounded ones.
func (b *Builder) rangeCells(rng sheets.GridRange) int64 {
	if area, exact := rng.Area(); exact {
		return area
	}
	return b.estimator.CellsForUnboundedRange(rng)
}

// UpdateCells builds a cell-grid write over a range.
func (b *Builder) UpdateCells(documentID string, rng sheets.GridRange, rows [][]string) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindUpdateCells,
		UpdateCells: &sheets.UpdateCellsRequest{
			Range:  rng,
			Rows:   rows,
			Fields: "userEnteredValue",
		},
	}
	return b.wrap(documentID, req, rng.SheetID, rng.String(), b.rangeCells(rng))
}

// ClearValues builds a cell clear over a range. Clearing is an UpdateCells
// with no row data on the wire, but classifies as destructive because the
// previous values are not recoverable from the result.
func (b *Builder) ClearValues(documentID string, rng sheets.GridRange) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindUpdateCells,
		UpdateCells: &sheets.UpdateCellsRequest{
			Range:  rng,
			Rows:   nil,
			Fields: "userEnteredValue",
		},
	}
	w := b.wrap(documentID, req, rng.SheetID, rng.String(), b.rangeCells(rng))
	w.Meta.Destructive = true
	return w
}

// AppendCells builds a row append to the end of a sheet.
func (b *Builder) AppendCells(documentID string, sheetID int64, rows [][]string) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindAppendCells,
		AppendCells: &sheets.AppendCellsRequest{
			SheetID: sheetID,
			Rows:    rows,
			Fields:  "userEnteredValue",
		},
	}
	var cells int64
	for _, row := range rows {
		cells += int64(len(row))
	}
	return b.wrap(documentID, req, sheetID, "", cells)
}

// InsertDimension builds a row/column insertion.
func (b *Builder) InsertDimension(documentID string, rng sheets.DimensionRange, inheritFromBefore bool) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindInsertDimension,
		InsertDimension: &sheets.InsertDimensionRequest{
			Range:             rng,
			InheritFromBefore: inheritFromBefore,
		},
	}
	cells := b.estimator.CellsForDimension(rng.Dimension, rng.Count())
	return b.wrap(documentID, req, rng.SheetID, rng.String(), cells)
}

// DeleteDimension builds a row/column deletion.
func (b *Builder) DeleteDimension(documentID string, rng sheets.DimensionRange) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindDeleteDimension,
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: rng,
		},
	}
	cells := b.estimator.CellsForDimension(rng.Dimension, rng.Count())
	return b.wrap(documentID, req, rng.SheetID, rng.String(), cells)
}

// UpdateSheetProperties builds a sheet metadata update.
func (b *Builder) UpdateSheetProperties(documentID string, props sheets.SheetProperties, fields string) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindUpdateSheetProperties,
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: props,
			Fields:     fields,
		},
	}
	// Metadata-only change: no cell content is touched
	return b.wrap(documentID, req, props.SheetID, "", 0)
}

// AddSheet builds a sheet creation.
func (b *Builder) AddSheet(documentID string, props sheets.SheetProperties) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindAddSheet,
		AddSheet: &sheets.AddSheetRequest{
			Properties: props,
		},
	}
	return b.wrap(documentID, req, props.SheetID, "", 0)
}

// DeleteSheet builds a whole-sheet deletion.
func (b *Builder) DeleteSheet(documentID string, sheetID int64) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindDeleteSheet,
		DeleteSheet: &sheets.DeleteSheetRequest{
			SheetID: sheetID,
		},
	}
	return b.wrap(documentID, req, sheetID, "", b.estimator.CellsForSheet())
}

// DuplicateSheet builds a sheet duplication.
func (b *Builder) DuplicateSheet(documentID string, sourceSheetID, insertIndex int64, newName string) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindDuplicateSheet,
		DuplicateSheet: &sheets.DuplicateSheetRequest{
			SourceSheetID:    sourceSheetID,
			InsertSheetIndex: insertIndex,
			NewSheetName:     newName,
		},
	}
	return b.wrap(documentID, req, sourceSheetID, "", b.estimator.CellsForSheet())
}

// SortRange builds a range sort. Classified destructive: the pre-sort row
// order cannot be reconstructed afterwards.
func (b *Builder) SortRange(documentID string, rng sheets.GridRange, specs []sheets.SortSpec) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindSortRange,
		SortRange: &sheets.SortRangeRequest{
			Range:     rng,
			SortSpecs: specs,
		},
	}
	return b.wrap(documentID, req, rng.SheetID, rng.String(), b.rangeCells(rng))
}

// RandomizeRange builds a row shuffle. Destructive and high risk: the result
// is non-deterministic, so there is no rollback short of a snapshot restore.
func (b *Builder) RandomizeRange(documentID string, rng sheets.GridRange) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindRandomizeRange,
		RandomizeRange: &sheets.RandomizeRangeRequest{
			Range: rng,
		},
	}
	return b.wrap(documentID, req, rng.SheetID, rng.String(), b.rangeCells(rng))
}

// TextToColumns builds a column split. High risk: the split overwrites
// whatever data sits in the adjacent columns.
func (b *Builder) TextToColumns(documentID string, source sheets.GridRange, delimiterType, delimiter string) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindTextToColumns,
		TextToColumns: &sheets.TextToColumnsRequest{
			Source:        source,
			Delimiter:     delimiter,
			DelimiterType: delimiterType,
		},
	}
	return b.wrap(documentID, req, source.SheetID, source.String(), b.rangeCells(source))
}

// CopyPaste builds a range copy.
func (b *Builder) CopyPaste(documentID string, source, destination sheets.GridRange, pasteType string) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindCopyPaste,
		CopyPaste: &sheets.CopyPasteRequest{
			Source:      source,
			Destination: destination,
			PasteType:   pasteType,
		},
	}
	return b.wrap(documentID, req, destination.SheetID, destination.String(), b.rangeCells(destination))
}

// CutPaste builds a range move. Destructive: the source range is cleared.
func (b *Builder) CutPaste(documentID string, source sheets.GridRange, destination sheets.GridCoordinate, pasteType string) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindCutPaste,
		CutPaste: &sheets.CutPasteRequest{
			Source:      source,
			Destination: destination,
			PasteType:   pasteType,
		},
	}
	return b.wrap(documentID, req, source.SheetID, source.String(), b.rangeCells(source))
}

// MergeCells builds a cell merge over a range.
func (b *Builder) MergeCells(documentID string, rng sheets.GridRange, mergeType string) Wrapped {
	req := sheets.Request{
		Kind: sheets.KindMergeCells,
		MergeCells: &sheets.MergeCellsRequest{
			Range:     rng,
			MergeType: mergeType,
		},
	}
	return b.wrap(documentID, req, rng.SheetID, rng.String(), b.rangeCells(rng))
}

// FindReplace builds a text replacement over a range, sheet, or the whole
// document. Scope estimate uses the range when bounded, otherwise the sheet
// heuristic, since every cell in scope may be rewritten.
func (b *Builder) FindReplace(documentID string, fr sheets.FindReplaceRequest) Wrapped {
	req := sheets.Request{
		Kind:        sheets.KindFindReplace,
		FindReplace: &fr,
	}
	var sheetID int64
	var rangeRef string
	cells := b.estimator.CellsForSheet()
	if fr.Range != nil {
		sheetID = fr.Range.SheetID
		rangeRef = fr.Range.String()
		cells = b.rangeCells(*fr.Range)
	} else if fr.SheetID != nil {
		sheetID = *fr.SheetID
	}
	return b.wrap(documentID, req, sheetID, rangeRef, cells)
}
