// Per-operation reply union for batchUpdate responses. Most mutating
// operations produce an empty reply; only operations that create objects or
// count their effects carry a payload, and which field is populated encodes
// the operation kind.
package sheets

// Reply is the tagged union of the known per-operation reply payloads. At
// most one field is populated, by construction of the remote API. An empty
// Reply (all nil) is the normal outcome for most mutation kinds.
type Reply struct {
	AddSheet       *AddSheetReply       `json:"addSheet,omitempty"`
	DuplicateSheet *DuplicateSheetReply `json:"duplicateSheet,omitempty"`
	FindReplace    *FindReplaceReply    `json:"findReplace,omitempty"`
}

// AddSheetReply returns the properties of the created sheet, including the
// remote-assigned sheet ID callers need for follow-up operations.
type AddSheetReply struct {
	Properties SheetProperties `json:"properties"`
}

// DuplicateSheetReply returns the properties of the duplicated sheet.
type DuplicateSheetReply struct {
	Properties SheetProperties `json:"properties"`
}

// FindReplaceReply counts the effects of a find/replace operation.
type FindReplaceReply struct {
	ValuesChanged      int64 `json:"valuesChanged"`
	FormulasChanged    int64 `json:"formulasChanged"`
	RowsChanged        int64 `json:"rowsChanged"`
	SheetsChanged      int64 `json:"sheetsChanged"`
	OccurrencesChanged int64 `json:"occurrencesChanged"`
}

// Empty reports whether the reply carries no operation-specific payload.
func (r Reply) Empty() bool {
	return r.AddSheet == nil && r.DuplicateSheet == nil && r.FindReplace == nil
}

// DecodeReply inspects which payload field is populated and returns the
// request kind it corresponds to. This is the single point where reply shape
// is probed; everything downstream works with the decoded kind. Returns
// ok=false for empty replies, where the kind must come from the originating
// request instead.
func DecodeReply(r Reply) (kind RequestKind, ok bool) {
	switch {
	case r.AddSheet != nil:
		return KindAddSheet, true
	case r.DuplicateSheet != nil:
		return KindDuplicateSheet, true
	case r.FindReplace != nil:
		return KindFindReplace, true
	default:
		return "", false
	}
}
