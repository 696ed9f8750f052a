package request

import (
	"fmt"

	"github.com/gridgate-dev/gridgate/internal/sheets"
)

// FromRequest wraps a wire-decoded request, dispatching to the typed factory
// for its kind so classification and cell estimates match requests built
// directly. Used at the API boundary where requests arrive as JSON rather
// than through factory calls.
func (b *Builder) FromRequest(documentID string, req sheets.Request) (Wrapped, error) {
	if req.Kind == "" {
		kind, err := req.DecodeKind()
		if err != nil {
			return Wrapped{}, err
		}
		req.Kind = kind
	}

	switch req.Kind {
	case sheets.KindUpdateCells:
		u := req.UpdateCells
		if len(u.Rows) == 0 {
			return b.ClearValues(documentID, u.Range), nil
		}
		return b.UpdateCells(documentID, u.Range, u.Rows), nil
	case sheets.KindAppendCells:
		return b.AppendCells(documentID, req.AppendCells.SheetID, req.AppendCells.Rows), nil
	case sheets.KindInsertDimension:
		return b.InsertDimension(documentID, req.InsertDimension.Range, req.InsertDimension.InheritFromBefore), nil
	case sheets.KindDeleteDimension:
		return b.DeleteDimension(documentID, req.DeleteDimension.Range), nil
	case sheets.KindUpdateSheetProperties:
		return b.UpdateSheetProperties(documentID, req.UpdateSheetProperties.Properties, req.UpdateSheetProperties.Fields), nil
	case sheets.KindAddSheet:
		return b.AddSheet(documentID, req.AddSheet.Properties), nil
	case sheets.KindDeleteSheet:
		return b.DeleteSheet(documentID, req.DeleteSheet.SheetID), nil
	case sheets.KindDuplicateSheet:
		d := req.DuplicateSheet
		return b.DuplicateSheet(documentID, d.SourceSheetID, d.InsertSheetIndex, d.NewSheetName), nil
	case sheets.KindSortRange:
		return b.SortRange(documentID, req.SortRange.Range, req.SortRange.SortSpecs), nil
	case sheets.KindRandomizeRange:
		return b.RandomizeRange(documentID, req.RandomizeRange.Range), nil
	case sheets.KindTextToColumns:
		tc := req.TextToColumns
		return b.TextToColumns(documentID, tc.Source, tc.DelimiterType, tc.Delimiter), nil
	case sheets.KindCopyPaste:
		return b.CopyPaste(documentID, req.CopyPaste.Source, req.CopyPaste.Destination, req.CopyPaste.PasteType), nil
	case sheets.KindCutPaste:
		return b.CutPaste(documentID, req.CutPaste.Source, req.CutPaste.Destination, req.CutPaste.PasteType), nil
	case sheets.KindMergeCells:
		return b.MergeCells(documentID, req.MergeCells.Range, req.MergeCells.MergeType), nil
	case sheets.KindFindReplace:
		return b.FindReplace(documentID, *req.FindReplace), nil
	default:
		return Wrapped{}, fmt.Errorf("unsupported request kind %q", req.Kind)
	}
}
