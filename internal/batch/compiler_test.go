package batch

import (
	"testing"

	"github.com/gridgate-dev/gridgate/internal/request"
	"github.com/gridgate-dev/gridgate/internal/sheets"
)

func testBuilder() *request.Builder {
	return request.NewBuilder(request.Source{Tool: "test", Action: "compile"})
}

func boundedRange(rows, cols int64) sheets.GridRange {
	return sheets.GridRange{
		SheetID:          0,
		StartRowIndex:    0,
		EndRowIndex:      rows,
		StartColumnIndex: 0,
		EndColumnIndex:   cols,
	}
}

func TestCompileGroupsByDocument(t *testing.T) {
	b := testBuilder()
	reqs := []request.Wrapped{
		b.UpdateCells("doc-a", boundedRange(1, 1), [][]string{{"x"}}),
		b.UpdateCells("doc-b", boundedRange(1, 1), [][]string{{"y"}}),
		b.UpdateCells("doc-a", boundedRange(1, 1), [][]string{{"z"}}),
	}

	batches, err := Compile(reqs, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	// Document groups in first-appearance order
	if batches[0].DocumentID != "doc-a" || batches[1].DocumentID != "doc-b" {
		t.Errorf("unexpected batch order: %s, %s", batches[0].DocumentID, batches[1].DocumentID)
	}
	if len(batches[0].Requests) != 2 || len(batches[1].Requests) != 1 {
		t.Errorf("unexpected grouping: %d + %d requests", len(batches[0].Requests), len(batches[1].Requests))
	}
}

func TestCompileMergesAdjacentAppends(t *testing.T) {
	b := testBuilder()
	reqs := []request.Wrapped{
		b.AppendCells("doc-a", 0, [][]string{{"r1"}}),
		b.AppendCells("doc-a", 0, [][]string{{"r2"}, {"r3"}}),
		b.AppendCells("doc-a", 7, [][]string{{"other sheet"}}),
	}

	batches, err := Compile(reqs, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if len(batches[0].Requests) != 2 {
		t.Fatalf("expected adjacent same-sheet appends merged into 2 requests, got %d", len(batches[0].Requests))
	}

	merged := batches[0].Requests[0].Req.AppendCells
	if len(merged.Rows) != 3 {
		t.Errorf("merged append has %d rows, want 3", len(merged.Rows))
	}
	if batches[0].Requests[1].Req.AppendCells.SheetID != 7 {
		t.Errorf("append to different sheet should not merge")
	}
}

func TestCompileDoesNotMergeAcrossPositionalRequests(t *testing.T) {
	b := testBuilder()
	reqs := []request.Wrapped{
		b.AppendCells("doc-a", 0, [][]string{{"r1"}}),
		b.UpdateCells("doc-a", boundedRange(1, 1), [][]string{{"u"}}),
		b.AppendCells("doc-a", 0, [][]string{{"r2"}}),
	}

	batches, err := Compile(reqs, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if len(batches[0].Requests) != 3 {
		t.Errorf("appends separated by an update must not merge, got %d requests", len(batches[0].Requests))
	}
}

func TestCompileMergeLeavesInputUntouched(t *testing.T) {
	b := testBuilder()
	first := b.AppendCells("doc-a", 0, [][]string{{"r1"}})
	reqs := []request.Wrapped{
		first,
		b.AppendCells("doc-a", 0, [][]string{{"r2"}}),
	}

	if _, err := Compile(reqs, DefaultCompilerConfig()); err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if len(first.Req.AppendCells.Rows) != 1 {
		t.Errorf("merge mutated the caller's request: %d rows", len(first.Req.AppendCells.Rows))
	}
}

func TestCompileChunksByRequestCeiling(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.MaxRequestsPerBatch = 2

	b := testBuilder()
	var reqs []request.Wrapped
	for i := 0; i < 5; i++ {
		reqs = append(reqs, b.UpdateCells("doc-a", boundedRange(1, 1), [][]string{{"x"}}))
	}

	batches, err := Compile(reqs, cfg)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches (2+2+1), got %d", len(batches))
	}
	if len(batches[0].Requests) != 2 || len(batches[2].Requests) != 1 {
		t.Errorf("unexpected chunk sizes: %d, %d, %d",
			len(batches[0].Requests), len(batches[1].Requests), len(batches[2].Requests))
	}
}

func TestCompileChunksByCellCeiling(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.MaxCellsPerBatch = 100

	b := testBuilder()
	reqs := []request.Wrapped{
		b.UpdateCells("doc-a", boundedRange(6, 10), nil), // 60 cells
		b.UpdateCells("doc-a", boundedRange(6, 10), nil), // 60 cells, would exceed 100
		b.UpdateCells("doc-a", boundedRange(2, 10), nil), // 20 cells, fits with second
	}

	batches, err := Compile(reqs, cfg)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].EstimatedCells != 60 || batches[1].EstimatedCells != 80 {
		t.Errorf("unexpected cell totals: %d, %d", batches[0].EstimatedCells, batches[1].EstimatedCells)
	}
}

func TestCompileOversizeRequestGetsOwnBatch(t *testing.T) {
	cfg := DefaultCompilerConfig()
	cfg.MaxCellsPerBatch = 100

	b := testBuilder()
	reqs := []request.Wrapped{
		b.UpdateCells("doc-a", boundedRange(50, 10), nil), // 500 cells, over the ceiling alone
	}

	batches, err := Compile(reqs, cfg)
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if len(batches) != 1 || len(batches[0].Requests) != 1 {
		t.Errorf("oversize request should compile to its own batch: %+v", batches)
	}
}

func TestCompileAggregatesRiskFlags(t *testing.T) {
	b := testBuilder()
	reqs := []request.Wrapped{
		b.UpdateCells("doc-a", boundedRange(1, 1), [][]string{{"x"}}),
		b.RandomizeRange("doc-a", boundedRange(5, 5)),
	}

	batches, err := Compile(reqs, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if !batches[0].Destructive || !batches[0].HighRisk {
		t.Errorf("batch should inherit destructive/high-risk from members: %+v", batches[0])
	}
}

func TestCompileRejectsMissingDocument(t *testing.T) {
	reqs := []request.Wrapped{{Req: sheets.Request{Kind: sheets.KindUpdateCells}}}
	if _, err := Compile(reqs, DefaultCompilerConfig()); err == nil {
		t.Error("expected error for request without a target document")
	}
}

func TestCompileEmptyInput(t *testing.T) {
	batches, err := Compile(nil, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}
	if batches != nil {
		t.Errorf("expected nil batches for empty input, got %+v", batches)
	}
}

func TestBuildRemoteRequest(t *testing.T) {
	b := testBuilder()
	reqs := []request.Wrapped{
		b.UpdateCells("doc-a", boundedRange(1, 1), [][]string{{"x"}}),
		b.DeleteSheet("doc-a", 3),
	}
	batches, err := Compile(reqs, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile() failed: %v", err)
	}

	remote := batches[0].BuildRemoteRequest(true, false)
	if len(remote.Requests) != 2 {
		t.Fatalf("expected 2 wire requests, got %d", len(remote.Requests))
	}
	if !remote.IncludeSpreadsheetInResponse || remote.ResponseIncludeGridData {
		t.Errorf("unexpected response flags: %+v", remote)
	}
}
