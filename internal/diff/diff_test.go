package diff

import (
	"context"
	"fmt"
	"testing"

	"github.com/gridgate-dev/gridgate/internal/sheets"
)

func testDocument(id string, values [][]string) *sheets.DocumentData {
	return &sheets.DocumentData{
		SpreadsheetID: id,
		Title:         "Test Document",
		Sheets: []sheets.SheetData{
			{
				Properties: sheets.SheetProperties{
					SheetID: 0,
					Title:   "Sheet1",
					GridProperties: sheets.GridProperties{
						RowCount:    int64(len(values)),
						ColumnCount: 26,
					},
				},
				Values: values,
			},
		},
	}
}

func gridValues(rows, cols int, seed string) [][]string {
	out := make([][]string, rows)
	for r := range out {
		out[r] = make([]string, cols)
		for c := range out[r] {
			out[r][c] = fmt.Sprintf("%s-%d-%d", seed, r, c)
		}
	}
	return out
}

// fetcherFunc adapts a function to the StateFetcher interface.
type fetcherFunc func(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*sheets.DocumentData, error)

func (f fetcherFunc) GetDocument(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*sheets.DocumentData, error) {
	return f(ctx, documentID, ranges, includeGridData)
}

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, nil)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return e
}

func TestSelectTierMonotonic(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		cells int64
		want  Tier
	}{
		{1, TierFull},
		{cfg.SampleMaxCells, TierFull},
		{cfg.SampleMaxCells + 1, TierSample},
		{cfg.MetadataMaxCells, TierSample},
		{cfg.MetadataMaxCells + 1, TierMetadata},
		{1 << 40, TierMetadata},
	}

	rank := map[Tier]int{TierFull: 0, TierSample: 1, TierMetadata: 2}
	prev := -1
	for _, tt := range tests {
		got := cfg.SelectTier(tt.cells)
		if got != tt.want {
			t.Errorf("SelectTier(%d) = %s, want %s", tt.cells, got, tt.want)
		}
		if rank[got] < prev {
			t.Errorf("SelectTier(%d) selected a more detailed tier than a smaller count", tt.cells)
		}
		prev = rank[got]
	}
}

func TestConfigValidateRejectsInvertedTiers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleMaxCells = cfg.MetadataMaxCells + 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when sample limit exceeds metadata limit")
	}
}

func TestIdenticalStatesProduceNoChanges(t *testing.T) {
	values := gridValues(250, 5, "v")

	for _, blockSize := range []int{1, 3, 100, 1000} {
		cfg := DefaultConfig()
		cfg.BlockSize = blockSize
		e := newTestEngine(t, cfg)

		doc := testDocument("doc-1", values)
		before := e.stateFromDocument(doc, TierFull)
		after := e.stateFromDocument(doc, TierFull)

		report := e.Compare(before, after, TierFull)
		if len(report.Changes) != 0 {
			t.Errorf("blockSize=%d: identical states produced %d changes", blockSize, len(report.Changes))
		}
		if report.Truncated {
			t.Errorf("blockSize=%d: identical states marked truncated", blockSize)
		}
	}
}

func TestFullTierReportsExactCellEdits(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	beforeVals := gridValues(10, 3, "v")
	afterVals := gridValues(10, 3, "v")
	afterVals[4][2] = "changed"
	afterVals[7][0] = "also changed"

	before := e.stateFromDocument(testDocument("doc-1", beforeVals), TierFull)
	after := e.stateFromDocument(testDocument("doc-1", afterVals), TierFull)

	report := e.Compare(before, after, TierFull)
	if len(report.Changes) != 2 {
		t.Fatalf("expected 2 cell edits, got %d: %+v", len(report.Changes), report.Changes)
	}
	first := report.Changes[0]
	if first.Kind != ChangeCellEdited || first.Row != 4 || first.Column != 2 {
		t.Errorf("unexpected first change: %+v", first)
	}
	if first.Before != "v-4-2" || first.After != "changed" {
		t.Errorf("unexpected cell values: %+v", first)
	}
}

func TestSampleTierReportsChangedBlocks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockSize = 10
	e := newTestEngine(t, cfg)

	beforeVals := gridValues(50, 2, "v")
	afterVals := gridValues(50, 2, "v")
	afterVals[25][1] = "changed" // Block 2, outside both sample windows

	before := e.stateFromDocument(testDocument("doc-1", beforeVals), TierSample)
	after := e.stateFromDocument(testDocument("doc-1", afterVals), TierSample)

	report := e.Compare(before, after, TierSample)
	if len(report.Changes) != 1 {
		t.Fatalf("expected 1 block change, got %d: %+v", len(report.Changes), report.Changes)
	}
	if report.Changes[0].Kind != ChangeBlockModified || report.Changes[0].Block != 2 {
		t.Errorf("unexpected change: %+v", report.Changes[0])
	}
}

func TestSampleTierCellComparesHeadAndTailRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockSize = 10
	e := newTestEngine(t, cfg)

	beforeVals := gridValues(50, 2, "v")
	afterVals := gridValues(50, 2, "v")
	afterVals[3][0] = "head edit"  // Inside the first 10 rows
	afterVals[45][1] = "tail edit" // Inside the last 10 rows

	before := e.stateFromDocument(testDocument("doc-1", beforeVals), TierSample)
	after := e.stateFromDocument(testDocument("doc-1", afterVals), TierSample)

	report := e.Compare(before, after, TierSample)
	if len(report.Changes) != 2 {
		t.Fatalf("expected 2 cell edits, got %d: %+v", len(report.Changes), report.Changes)
	}

	head := report.Changes[0]
	if head.Kind != ChangeCellEdited || head.Row != 3 || head.Column != 0 || head.After != "head edit" {
		t.Errorf("unexpected head change: %+v", head)
	}
	tail := report.Changes[1]
	if tail.Kind != ChangeCellEdited || tail.Row != 45 || tail.Column != 1 || tail.After != "tail edit" {
		t.Errorf("unexpected tail change: %+v", tail)
	}
}

func TestMetadataTierReportsSheetLevelOnly(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	beforeVals := gridValues(5, 2, "v")
	afterVals := gridValues(5, 2, "v")
	afterVals[0][0] = "changed"

	before := e.stateFromDocument(testDocument("doc-1", beforeVals), TierMetadata)
	after := e.stateFromDocument(testDocument("doc-1", afterVals), TierMetadata)

	report := e.Compare(before, after, TierMetadata)
	if len(report.Changes) != 1 || report.Changes[0].Kind != ChangeSheetModified {
		t.Errorf("expected single sheet_modified change, got %+v", report.Changes)
	}
}

func TestCompareDetectsAddedAndRemovedSheets(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	before := &DocumentState{
		DocumentID: "doc-1",
		Tier:       TierMetadata,
		Sheets: []SheetState{
			{SheetID: 0, Title: "Kept"},
			{SheetID: 1, Title: "Dropped"},
		},
	}
	after := &DocumentState{
		DocumentID: "doc-1",
		Tier:       TierMetadata,
		Sheets: []SheetState{
			{SheetID: 0, Title: "Kept"},
			{SheetID: 2, Title: "New"},
		},
	}

	report := e.Compare(before, after, TierMetadata)
	var added, removed int
	for _, ch := range report.Changes {
		switch ch.Kind {
		case ChangeSheetAdded:
			added++
		case ChangeSheetRemoved:
			removed++
		}
	}
	if added != 1 || removed != 1 {
		t.Errorf("expected 1 added and 1 removed sheet, got %+v", report.Changes)
	}
}

func TestCompareDetectsResize(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	before := &DocumentState{DocumentID: "doc-1", Sheets: []SheetState{
		{SheetID: 0, Title: "Sheet1", RowCount: 100, ColumnCount: 26, Checksum: 7},
	}}
	after := &DocumentState{DocumentID: "doc-1", Sheets: []SheetState{
		{SheetID: 0, Title: "Sheet1", RowCount: 90, ColumnCount: 26, Checksum: 7},
	}}

	report := e.Compare(before, after, TierMetadata)
	if len(report.Changes) != 1 || report.Changes[0].Kind != ChangeSheetResized {
		t.Fatalf("expected resize change, got %+v", report.Changes)
	}
	if report.Changes[0].Before != "100x26" || report.Changes[0].After != "90x26" {
		t.Errorf("unexpected resize detail: %+v", report.Changes[0])
	}
}

func TestFullDiffTruncatesAtBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockSize = 10
	cfg.MaxFullDiffCells = 50
	e := newTestEngine(t, cfg)

	beforeVals := gridValues(100, 10, "v")
	afterVals := gridValues(100, 10, "w") // Every cell differs

	before := e.stateFromDocument(testDocument("doc-1", beforeVals), TierFull)
	after := e.stateFromDocument(testDocument("doc-1", afterVals), TierFull)

	report := e.Compare(before, after, TierFull)
	if !report.Truncated {
		t.Fatal("expected report to be truncated at the cell budget")
	}
	if len(report.Changes) > 50 {
		t.Errorf("changes exceed budget: %d", len(report.Changes))
	}
}

func TestCaptureStateFromResponse(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())

	if got := e.CaptureStateFromResponse(&sheets.BatchUpdateResponse{}, TierFull); got != nil {
		t.Error("expected nil state when response carries no document")
	}

	resp := &sheets.BatchUpdateResponse{
		SpreadsheetID:      "doc-1",
		UpdatedSpreadsheet: testDocument("doc-1", gridValues(3, 2, "v")),
	}
	state := e.CaptureStateFromResponse(resp, TierFull)
	if state == nil {
		t.Fatal("expected state from response document")
	}
	if state.DocumentID != "doc-1" || len(state.Sheets) != 1 {
		t.Errorf("unexpected state: %+v", state)
	}
	if len(state.Sheets[0].Values) != 3 {
		t.Errorf("FULL tier should retain all rows, got %d", len(state.Sheets[0].Values))
	}
}

func TestCaptureRangeStateFromResponse(t *testing.T) {
	e := newTestEngine(t, DefaultConfig())
	rng := sheets.GridRange{SheetID: 0, StartRowIndex: 1, EndRowIndex: 3, StartColumnIndex: 1, EndColumnIndex: 2}

	if got := e.CaptureRangeStateFromResponse(&sheets.BatchUpdateResponse{}, rng, TierFull); got != nil {
		t.Error("expected nil state when response carries no document")
	}

	resp := &sheets.BatchUpdateResponse{
		SpreadsheetID:      "doc-1",
		UpdatedSpreadsheet: testDocument("doc-1", gridValues(5, 3, "v")),
	}
	state := e.CaptureRangeStateFromResponse(resp, rng, TierFull)
	if state == nil || len(state.Sheets) != 1 {
		t.Fatalf("expected one captured sheet, got %+v", state)
	}
	vals := state.Sheets[0].Values
	if len(vals) != 2 || len(vals[0]) != 1 {
		t.Fatalf("expected 2x1 clipped values, got %+v", vals)
	}
	if vals[0][0] != "v-1-1" || vals[1][0] != "v-2-1" {
		t.Errorf("unexpected clipped values: %+v", vals)
	}

	open := sheets.GridRange{SheetID: 0, StartRowIndex: 3, EndRowIndex: sheets.Unbounded, StartColumnIndex: 0, EndColumnIndex: sheets.Unbounded}
	state = e.CaptureRangeStateFromResponse(resp, open, TierFull)
	if got := state.Sheets[0].Values; len(got) != 2 || len(got[0]) != 3 {
		t.Errorf("unbounded range should extend to the data edge, got %+v", got)
	}

	other := sheets.GridRange{SheetID: 9, StartRowIndex: 0, EndRowIndex: 1, StartColumnIndex: 0, EndColumnIndex: 1}
	if state := e.CaptureRangeStateFromResponse(resp, other, TierFull); len(state.Sheets) != 0 {
		t.Errorf("range on an absent sheet should capture no sheets, got %+v", state.Sheets)
	}
}

func TestCaptureStateSkipsGridDataAtMetadataTier(t *testing.T) {
	var requestedGrid bool
	fetcher := fetcherFunc(func(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*sheets.DocumentData, error) {
		requestedGrid = includeGridData
		return testDocument(documentID, nil), nil
	})

	e, err := NewEngine(DefaultConfig(), fetcher)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	if _, err := e.CaptureState(context.Background(), "doc-1", TierMetadata); err != nil {
		t.Fatalf("CaptureState() failed: %v", err)
	}
	if requestedGrid {
		t.Error("METADATA capture should not request grid data")
	}

	if _, err := e.CaptureState(context.Background(), "doc-1", TierFull); err != nil {
		t.Fatalf("CaptureState() failed: %v", err)
	}
	if !requestedGrid {
		t.Error("FULL capture should request grid data")
	}
}

func TestSampleTierLimitsRetainedRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SampleRows = 5
	e := newTestEngine(t, cfg)

	state := e.stateFromDocument(testDocument("doc-1", gridValues(50, 2, "v")), TierSample)
	if got := len(state.Sheets[0].Values); got != 5 {
		t.Errorf("SAMPLE tier retained %d head rows, want 5", got)
	}
	if got := len(state.Sheets[0].TailValues); got != 5 {
		t.Errorf("SAMPLE tier retained %d tail rows, want 5", got)
	}
	if got := state.Sheets[0].TailStart; got != 45 {
		t.Errorf("tail window starts at row %d, want 45", got)
	}
	if len(state.Sheets[0].BlockChecksums) == 0 {
		t.Error("SAMPLE tier should retain block checksums")
	}

	// Sheets small enough for the windows to overlap are kept whole
	small := e.stateFromDocument(testDocument("doc-1", gridValues(8, 2, "v")), TierSample)
	if got := len(small.Sheets[0].Values); got != 8 {
		t.Errorf("small sheet retained %d rows, want all 8", got)
	}
	if len(small.Sheets[0].TailValues) != 0 {
		t.Error("small sheet should have no separate tail window")
	}
}

func TestChecksumSensitiveToCellBoundaries(t *testing.T) {
	a := checksumRows([][]string{{"ab"}})
	b := checksumRows([][]string{{"a", "b"}})
	if a == b {
		t.Error("cell boundary should affect the checksum")
	}

	c := checksumRows([][]string{{"a"}, {"b"}})
	if b == c {
		t.Error("row boundary should affect the checksum")
	}
}
