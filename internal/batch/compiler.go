// Package batch compiles validated mutation requests into remote call
// batches and executes them with rate limiting, diff capture, and snapshot
// protection.
//
// COMPILATION:
// Requests are grouped by target document (order preserved), adjacent
// trivially-compatible requests are merged, and each group is chunked so no
// single remote call exceeds the configured request or cell ceilings. Each
// compiled batch maps to exactly one mutating remote call.
//
// EXECUTION:
// Batches for the same document run strictly in order and stop on the first
// failure; batches for different documents run concurrently. Every batch
// passes the policy gate and the rate limiter before any network traffic,
// and high-risk batches require a snapshot before the mutation is sent.
package batch

import (
	"encoding/json"
	"fmt"

	"github.com/gridgate-dev/gridgate/internal/request"
	"github.com/gridgate-dev/gridgate/internal/sheets"
	"github.com/gridgate-dev/gridgate/internal/validate"
)

// CompilerConfig bounds the size of one remote call.
type CompilerConfig struct {
	MaxRequestsPerBatch int   `json:"max_requests_per_batch"`
	MaxCellsPerBatch    int64 `json:"max_cells_per_batch"`
}

// DefaultCompilerConfig allows 50 requests or 100k estimated cells per call,
// whichever ceiling is reached first.
func DefaultCompilerConfig() CompilerConfig {
	return CompilerConfig{
		MaxRequestsPerBatch: 50,
		MaxCellsPerBatch:    100000,
	}
}

// Validate rejects non-positive ceilings.
func (c CompilerConfig) Validate() error {
	if err := validate.ValidatePositiveLimit(int64(c.MaxRequestsPerBatch), "max_requests_per_batch"); err != nil {
		return err
	}
	if err := validate.ValidatePositiveLimit(c.MaxCellsPerBatch, "max_cells_per_batch"); err != nil {
		return err
	}
	return nil
}

// CompiledBatch is one unit of remote work: the requests sent in a single
// batchUpdate call, with aggregates precomputed for gating and diff tiering.
type CompiledBatch struct {
	DocumentID     string            `json:"document_id"`
	Requests       []request.Wrapped `json:"requests"`
	EstimatedCells int64             `json:"estimated_cells"`
	Destructive    bool              `json:"destructive"`
	HighRisk       bool              `json:"high_risk"`
}

// PayloadMetrics summarizes the wire cost of one compiled batch.
type PayloadMetrics struct {
	RequestCount    int   `json:"request_count"`
	SerializedBytes int   `json:"serialized_bytes"`
	EstimatedCells  int64 `json:"estimated_cells"`
}

// PayloadMetrics reports the batch's request count, the serialized size of
// its batchUpdate body, and the compiler's cell estimate.
func (b *CompiledBatch) PayloadMetrics() PayloadMetrics {
	body, _ := json.Marshal(b.BuildRemoteRequest(false, false))
	return PayloadMetrics{
		RequestCount:    len(b.Requests),
		SerializedBytes: len(body),
		EstimatedCells:  b.EstimatedCells,
	}
}

// Compile groups requests by document, merges adjacent compatible requests,
// and chunks each group under the per-call ceilings. Document groups appear
// in order of each document's first request; within a group, request order
// is preserved.
func Compile(reqs []request.Wrapped, cfg CompilerConfig) ([]CompiledBatch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}

	docOrder := make([]string, 0)
	byDoc := make(map[string][]request.Wrapped)
	for _, r := range reqs {
		id := r.Meta.DocumentID
		if id == "" {
			return nil, fmt.Errorf("request %s has no target document", r.Req.Kind)
		}
		if _, seen := byDoc[id]; !seen {
			docOrder = append(docOrder, id)
		}
		byDoc[id] = append(byDoc[id], r)
	}

	var batches []CompiledBatch
	for _, docID := range docOrder {
		merged := mergeAdjacent(byDoc[docID])
		batches = append(batches, chunk(docID, merged, cfg)...)
	}
	return batches, nil
}

// mergeAdjacent collapses runs of trivially-compatible neighbors into one
// request. Only appendCells to the same sheet qualifies: appends have no
// positional anchor, so concatenating their rows is behavior-preserving.
// Anything positional (updates, deletes, moves) is never merged.
func mergeAdjacent(reqs []request.Wrapped) []request.Wrapped {
	if len(reqs) < 2 {
		return reqs
	}

	out := make([]request.Wrapped, 0, len(reqs))
	for _, r := range reqs {
		if len(out) > 0 && canMergeAppend(&out[len(out)-1], &r) {
			prev := &out[len(out)-1]
			// Clone the request so the caller's slice backing is untouched
			appended := *prev.Req.AppendCells
			appended.Rows = append(append([][]string{}, appended.Rows...), r.Req.AppendCells.Rows...)
			prev.Req.AppendCells = &appended
			prev.Meta.EstimatedCells += r.Meta.EstimatedCells
			continue
		}
		out = append(out, r)
	}
	return out
}

func canMergeAppend(a, b *request.Wrapped) bool {
	return a.Req.Kind == sheets.KindAppendCells &&
		b.Req.Kind == sheets.KindAppendCells &&
		a.Req.AppendCells != nil && b.Req.AppendCells != nil &&
		a.Req.AppendCells.SheetID == b.Req.AppendCells.SheetID &&
		a.Req.AppendCells.Fields == b.Req.AppendCells.Fields
}

// chunk splits one document's requests into batches under both ceilings. A
// single request whose estimate alone exceeds the cell ceiling still gets
// its own batch; the policy gate, not the compiler, decides whether such a
// request is allowed at all.
func chunk(docID string, reqs []request.Wrapped, cfg CompilerConfig) []CompiledBatch {
	var batches []CompiledBatch
	current := CompiledBatch{DocumentID: docID}

	flush := func() {
		if len(current.Requests) > 0 {
			batches = append(batches, current)
			current = CompiledBatch{DocumentID: docID}
		}
	}

	for _, r := range reqs {
		overRequests := len(current.Requests) >= cfg.MaxRequestsPerBatch
		overCells := len(current.Requests) > 0 &&
			current.EstimatedCells+r.Meta.EstimatedCells > cfg.MaxCellsPerBatch
		if overRequests || overCells {
			flush()
		}

		current.Requests = append(current.Requests, r)
		current.EstimatedCells += r.Meta.EstimatedCells
		current.Destructive = current.Destructive || r.Meta.Destructive
		current.HighRisk = current.HighRisk || r.Meta.HighRisk
	}
	flush()

	return batches
}

// BuildRemoteRequest converts a compiled batch into the wire request for one
// batchUpdate call. includeDocument asks the remote to return the updated
// document (used for response-derived diff capture); includeGridData
// additionally requests cell values.
func (b *CompiledBatch) BuildRemoteRequest(includeDocument, includeGridData bool) *sheets.BatchUpdateRequest {
	reqs := make([]sheets.Request, 0, len(b.Requests))
	for _, r := range b.Requests {
		reqs = append(reqs, r.Req)
	}
	return &sheets.BatchUpdateRequest{
		Requests:                     reqs,
		IncludeSpreadsheetInResponse: includeDocument,
		ResponseIncludeGridData:      includeGridData,
	}
}
