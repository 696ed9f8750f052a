// Package response interprets mutation API replies into per-operation
// records and a human-readable summary.
//
// The remote reply array is positional: reply i corresponds to request i,
// and most request kinds produce an empty reply object. Kind attribution
// therefore prefers the reply's own populated union field and falls back to
// the originating request. A reply that contradicts its request (wrong
// union field populated) downgrades that single operation to a failure
// instead of failing the whole parse.
package response

import (
	"fmt"
	"strings"

	"github.com/gridgate-dev/gridgate/internal/request"
	"github.com/gridgate-dev/gridgate/internal/sheets"
)

// Operation is the parsed outcome of one request within a batch.
type Operation struct {
	Index   int                `json:"index"`
	Kind    sheets.RequestKind `json:"kind"`
	Success bool               `json:"success"`
	Error   string             `json:"error,omitempty"`

	// Detail carries reply-specific fields for the few kinds whose replies
	// are non-empty (added sheet properties, find/replace counters).
	Detail map[string]any `json:"detail,omitempty"`
}

// Result aggregates a parsed batch response.
type Result struct {
	DocumentID string      `json:"document_id"`
	Operations []Operation `json:"operations"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	Summary    string      `json:"summary"`
}

// ParseBatchUpdateResponse walks the positional reply array against the
// requests that produced it. Requests beyond the reply array length (the
// remote omits trailing empty replies) are treated as successful with their
// request kind.
func ParseBatchUpdateResponse(resp *sheets.BatchUpdateResponse, reqs []request.Wrapped) *Result {
	result := &Result{}
	if resp != nil {
		result.DocumentID = resp.SpreadsheetID
	}

	if len(reqs) == 0 {
		result.Summary = "No operations performed"
		return result
	}

	result.Operations = make([]Operation, 0, len(reqs))
	for i, wrapped := range reqs {
		op := Operation{Index: i, Kind: wrapped.Req.Kind, Success: true}

		if resp != nil && i < len(resp.Replies) {
			parseReply(&op, resp.Replies[i], wrapped.Req.Kind)
		}

		if op.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Operations = append(result.Operations, op)
	}

	result.Summary = summarize(result)
	return result
}

// parseReply fills the operation from one reply object. Empty replies are
// the success case for most kinds; populated replies must match the
// originating request kind or the operation is downgraded to failure.
func parseReply(op *Operation, reply sheets.Reply, requestKind sheets.RequestKind) {
	replyKind, populated := sheets.DecodeReply(reply)
	if !populated {
		return
	}

	if replyKind != requestKind {
		op.Success = false
		op.Error = fmt.Sprintf("reply kind %s does not match request kind %s", replyKind, requestKind)
		return
	}

	switch {
	case reply.AddSheet != nil:
		op.Detail = map[string]any{
			"sheet_id": reply.AddSheet.Properties.SheetID,
			"title":    reply.AddSheet.Properties.Title,
		}
	case reply.DuplicateSheet != nil:
		op.Detail = map[string]any{
			"sheet_id": reply.DuplicateSheet.Properties.SheetID,
			"title":    reply.DuplicateSheet.Properties.Title,
		}
	case reply.FindReplace != nil:
		op.Detail = map[string]any{
			"values_changed":      reply.FindReplace.ValuesChanged,
			"formulas_changed":    reply.FindReplace.FormulasChanged,
			"rows_changed":        reply.FindReplace.RowsChanged,
			"sheets_changed":      reply.FindReplace.SheetsChanged,
			"occurrences_changed": reply.FindReplace.OccurrencesChanged,
		}
	}
}

// summarize renders a one-line human summary of the batch outcome, listing
// operation kinds by count.
func summarize(r *Result) string {
	if len(r.Operations) == 0 {
		return "No operations performed"
	}

	counts := make(map[sheets.RequestKind]int)
	order := make([]sheets.RequestKind, 0, len(r.Operations))
	for _, op := range r.Operations {
		if counts[op.Kind] == 0 {
			order = append(order, op.Kind)
		}
		counts[op.Kind]++
	}

	parts := make([]string, 0, len(order))
	for _, kind := range order {
		if n := counts[kind]; n == 1 {
			parts = append(parts, string(kind))
		} else {
			parts = append(parts, fmt.Sprintf("%s x%d", kind, n))
		}
	}

	summary := fmt.Sprintf("%d operation(s): %s", len(r.Operations), strings.Join(parts, ", "))
	if r.Failed > 0 {
		summary += fmt.Sprintf(" (%d failed)", r.Failed)
	}
	return summary
}
