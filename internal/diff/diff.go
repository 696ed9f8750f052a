// Package diff captures before/after document state and computes change
// reports at a cost tier proportional to the size of the edit.
//
// TIER MODEL:
// Small edits use FULL capture (every cell retained, exact cell diffs).
// Medium edits use SAMPLE capture (head and tail rows plus per-block
// checksums).
// Large edits fall back to METADATA capture (sheet shapes and one checksum
// per sheet). Tier selection is monotonic: more estimated cells never buys a
// more detailed tier, so cost stays bounded as edits grow.
//
// CHECKSUM BLOCKS:
// Sheets are chunked into fixed-size row blocks, each hashed with FNV-64a.
// Comparing block vectors localizes changes without retaining full values;
// only blocks whose checksums differ are cell-diffed at FULL tier.
package diff

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/gridgate-dev/gridgate/internal/sheets"
)

// Tier names a capture/compare cost level, cheapest last.
type Tier string

const (
	// TierFull retains every cell value in the affected range.
	TierFull Tier = "FULL"

	// TierSample retains the head and tail rows plus block checksums.
	TierSample Tier = "SAMPLE"

	// TierMetadata retains sheet shapes and whole-sheet checksums only.
	TierMetadata Tier = "METADATA"
)

// Config bounds the cost of state capture and comparison.
type Config struct {
	MetadataMaxCells int64 `json:"metadata_max_cells"`  // Above this, drop to METADATA
	SampleMaxCells   int64 `json:"sample_max_cells"`    // Above this, drop to SAMPLE
	SampleRows       int   `json:"sample_rows"`         // Rows kept at each end at SAMPLE tier
	BlockSize        int   `json:"block_size"`          // Rows per checksum block
	MaxFullDiffCells int64 `json:"max_full_diff_cells"` // Cell-diff budget before truncation
}

// DefaultConfig keeps FULL capture under 10k cells, SAMPLE under 100k, and
// caps exact cell diffing at 50k comparisons.
func DefaultConfig() Config {
	return Config{
		MetadataMaxCells: 100000,
		SampleMaxCells:   10000,
		SampleRows:       10,
		BlockSize:        100,
		MaxFullDiffCells: 50000,
	}
}

// Validate rejects configurations that would divide by zero or invert the
// tier ordering.
func (c Config) Validate() error {
	if c.BlockSize < 1 {
		return fmt.Errorf("block_size must be at least 1, got %d", c.BlockSize)
	}
	if c.SampleRows < 1 {
		return fmt.Errorf("sample_rows must be at least 1, got %d", c.SampleRows)
	}
	if c.SampleMaxCells < 1 || c.MetadataMaxCells < 1 || c.MaxFullDiffCells < 1 {
		return fmt.Errorf("tier cell limits must be positive")
	}
	if c.SampleMaxCells > c.MetadataMaxCells {
		return fmt.Errorf("sample_max_cells (%d) must not exceed metadata_max_cells (%d)",
			c.SampleMaxCells, c.MetadataMaxCells)
	}
	return nil
}

// SelectTier maps an estimated cell count to the most detailed tier whose
// cost bound admits it. Monotonic: a larger count never selects a more
// detailed tier than a smaller one.
func (c Config) SelectTier(estimatedCells int64) Tier {
	switch {
	case estimatedCells <= c.SampleMaxCells:
		return TierFull
	case estimatedCells <= c.MetadataMaxCells:
		return TierSample
	default:
		return TierMetadata
	}
}

// SheetState is one sheet's captured form at some tier. At FULL tier Values
// holds every row; at SAMPLE tier Values holds the first SampleRows rows and
// TailValues the last SampleRows rows, with TailStart giving the absolute
// index of the first tail row.
type SheetState struct {
	SheetID        int64      `json:"sheet_id"`
	Title          string     `json:"title"`
	RowCount       int64      `json:"row_count"`
	ColumnCount    int64      `json:"column_count"`
	Checksum       uint64     `json:"checksum"`
	BlockChecksums []uint64   `json:"block_checksums,omitempty"`
	Values         [][]string `json:"values,omitempty"`
	TailStart      int64      `json:"tail_start,omitempty"`
	TailValues     [][]string `json:"tail_values,omitempty"`
}

// DocumentState is a captured snapshot of a document at one tier.
type DocumentState struct {
	DocumentID string       `json:"document_id"`
	Tier       Tier         `json:"tier"`
	Sheets     []SheetState `json:"sheets"`
}

// ChangeKind classifies one entry in a change report.
type ChangeKind string

const (
	ChangeCellEdited    ChangeKind = "cell_edited"
	ChangeBlockModified ChangeKind = "block_modified"
	ChangeSheetModified ChangeKind = "sheet_modified"
	ChangeSheetAdded    ChangeKind = "sheet_added"
	ChangeSheetRemoved  ChangeKind = "sheet_removed"
	ChangeSheetResized  ChangeKind = "sheet_resized"
)

// Change is one observed difference between before and after states. Cell
// coordinates are populated only for cell_edited entries.
type Change struct {
	Kind       ChangeKind `json:"kind"`
	SheetID    int64      `json:"sheet_id"`
	SheetTitle string     `json:"sheet_title,omitempty"`
	Row        int64      `json:"row,omitempty"`
	Column     int64      `json:"column,omitempty"`
	Block      int        `json:"block,omitempty"`
	Before     string     `json:"before,omitempty"`
	After      string     `json:"after,omitempty"`
}

// Report is the outcome of comparing two captures at a tier.
type Report struct {
	DocumentID string   `json:"document_id"`
	Tier       Tier     `json:"tier"`
	Changes    []Change `json:"changes"`

	// Truncated is set when the cell-diff budget ran out before all changed
	// blocks were compared; Changes is a prefix of the real set.
	Truncated bool `json:"truncated"`
}

// StateFetcher reads document state for capture. Satisfied by sheets.Client.
type StateFetcher interface {
	GetDocument(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*sheets.DocumentData, error)
}

// Engine captures and compares document state under one cost configuration.
type Engine struct {
	cfg     Config
	fetcher StateFetcher
}

// NewEngine validates the configuration and binds the fetcher used for
// network captures.
func NewEngine(cfg Config, fetcher StateFetcher) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, fetcher: fetcher}, nil
}

// Config returns the engine's cost configuration.
func (e *Engine) Config() Config { return e.cfg }

// CaptureState reads the document over the network and builds a state at
// the given tier. METADATA tier skips grid data entirely.
func (e *Engine) CaptureState(ctx context.Context, documentID string, tier Tier) (*DocumentState, error) {
	includeGrid := tier != TierMetadata
	doc, err := e.fetcher.GetDocument(ctx, documentID, nil, includeGrid)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %s state: %w", tier, err)
	}
	return e.stateFromDocument(doc, tier), nil
}

// CaptureStateFromResponse builds an after-state from the updated document a
// mutation response already carries, avoiding a second network read.
// Returns nil when the response has no document payload.
func (e *Engine) CaptureStateFromResponse(resp *sheets.BatchUpdateResponse, tier Tier) *DocumentState {
	if resp == nil || resp.UpdatedSpreadsheet == nil {
		return nil
	}
	return e.stateFromDocument(resp.UpdatedSpreadsheet, tier)
}

// CaptureRangeStateFromResponse builds an after-state scoped to one grid
// range from the updated document a mutation response carries. Only the
// range's sheet is retained and its values are clipped to the range, so two
// captures of the same range compare row-for-row regardless of what else is
// on the sheet. Returns nil when the response has no document payload.
func (e *Engine) CaptureRangeStateFromResponse(resp *sheets.BatchUpdateResponse, rng sheets.GridRange, tier Tier) *DocumentState {
	if resp == nil || resp.UpdatedSpreadsheet == nil {
		return nil
	}
	doc := resp.UpdatedSpreadsheet
	state := &DocumentState{DocumentID: doc.SpreadsheetID, Tier: tier}
	for _, sh := range doc.Sheets {
		if sh.Properties.SheetID != rng.SheetID {
			continue
		}
		clipped := sh
		clipped.Values = clipToRange(sh.Values, rng)
		state.Sheets = append(state.Sheets, e.sheetState(clipped, tier))
	}
	return state
}

// clipToRange returns the subgrid the range covers. Unbounded end indexes
// extend to the data edge; rows are re-indexed from the range start.
func clipToRange(rows [][]string, rng sheets.GridRange) [][]string {
	start := rng.StartRowIndex
	end := int64(len(rows))
	if rng.EndRowIndex != sheets.Unbounded && rng.EndRowIndex < end {
		end = rng.EndRowIndex
	}
	if start > end {
		start = end
	}

	out := make([][]string, 0, end-start)
	for _, row := range rows[start:end] {
		cs := rng.StartColumnIndex
		ce := int64(len(row))
		if rng.EndColumnIndex != sheets.Unbounded && rng.EndColumnIndex < ce {
			ce = rng.EndColumnIndex
		}
		if cs > ce {
			cs = ce
		}
		out = append(out, row[cs:ce])
	}
	return out
}

func (e *Engine) stateFromDocument(doc *sheets.DocumentData, tier Tier) *DocumentState {
	state := &DocumentState{
		DocumentID: doc.SpreadsheetID,
		Tier:       tier,
		Sheets:     make([]SheetState, 0, len(doc.Sheets)),
	}
	for _, sh := range doc.Sheets {
		state.Sheets = append(state.Sheets, e.sheetState(sh, tier))
	}
	return state
}

func (e *Engine) sheetState(sh sheets.SheetData, tier Tier) SheetState {
	s := SheetState{
		SheetID:     sh.Properties.SheetID,
		Title:       sh.Properties.Title,
		RowCount:    sh.Properties.GridProperties.RowCount,
		ColumnCount: sh.Properties.GridProperties.ColumnCount,
		Checksum:    checksumRows(sh.Values),
	}
	switch tier {
	case TierFull:
		s.BlockChecksums = blockChecksums(sh.Values, e.cfg.BlockSize)
		s.Values = sh.Values
	case TierSample:
		s.BlockChecksums = blockChecksums(sh.Values, e.cfg.BlockSize)
		if n := e.cfg.SampleRows; len(sh.Values) > 2*n {
			s.Values = sh.Values[:n]
			s.TailStart = int64(len(sh.Values) - n)
			s.TailValues = sh.Values[len(sh.Values)-n:]
		} else {
			// Small enough that head and tail windows would overlap
			s.Values = sh.Values
		}
	case TierMetadata:
		// Shape and whole-sheet checksum only
	}
	return s
}

// Compare diffs two captures of the same document at the given tier. Both
// states must have been captured at that tier or a more detailed one.
func (e *Engine) Compare(before, after *DocumentState, tier Tier) *Report {
	report := &Report{DocumentID: after.DocumentID, Tier: tier}

	beforeByID := make(map[int64]*SheetState, len(before.Sheets))
	for i := range before.Sheets {
		beforeByID[before.Sheets[i].SheetID] = &before.Sheets[i]
	}

	budget := e.cfg.MaxFullDiffCells
	seen := make(map[int64]bool, len(after.Sheets))

	for i := range after.Sheets {
		a := &after.Sheets[i]
		seen[a.SheetID] = true

		b, ok := beforeByID[a.SheetID]
		if !ok {
			report.Changes = append(report.Changes, Change{
				Kind: ChangeSheetAdded, SheetID: a.SheetID, SheetTitle: a.Title,
			})
			continue
		}

		if b.RowCount != a.RowCount || b.ColumnCount != a.ColumnCount {
			report.Changes = append(report.Changes, Change{
				Kind: ChangeSheetResized, SheetID: a.SheetID, SheetTitle: a.Title,
				Before: fmt.Sprintf("%dx%d", b.RowCount, b.ColumnCount),
				After:  fmt.Sprintf("%dx%d", a.RowCount, a.ColumnCount),
			})
		}

		if b.Checksum == a.Checksum {
			continue
		}

		switch tier {
		case TierMetadata:
			report.Changes = append(report.Changes, Change{
				Kind: ChangeSheetModified, SheetID: a.SheetID, SheetTitle: a.Title,
			})
		case TierSample:
			e.compareSampled(report, b, a, &budget)
		case TierFull:
			e.compareBlocks(report, b, a, &budget)
		}

		if report.Truncated {
			break
		}
	}

	for i := range before.Sheets {
		b := &before.Sheets[i]
		if !seen[b.SheetID] {
			report.Changes = append(report.Changes, Change{
				Kind: ChangeSheetRemoved, SheetID: b.SheetID, SheetTitle: b.Title,
			})
		}
	}

	return report
}

// compareBlocks walks the block checksum vectors and descends into each
// differing block to emit exact cell edits, spending the shared budget; when
// the budget runs out the report is marked truncated and comparison stops.
func (e *Engine) compareBlocks(report *Report, before, after *SheetState, budget *int64) {
	nBlocks := len(after.BlockChecksums)
	if len(before.BlockChecksums) > nBlocks {
		nBlocks = len(before.BlockChecksums)
	}

	for block := 0; block < nBlocks; block++ {
		var bSum, aSum uint64
		if block < len(before.BlockChecksums) {
			bSum = before.BlockChecksums[block]
		}
		if block < len(after.BlockChecksums) {
			aSum = after.BlockChecksums[block]
		}
		if bSum == aSum {
			continue
		}

		if !e.diffBlockCells(report, before, after, block, budget) {
			report.Truncated = true
			return
		}
	}
}

// diffBlockCells emits cell edits for one changed block. Returns false when
// the budget is exhausted mid-block.
func (e *Engine) diffBlockCells(report *Report, before, after *SheetState, block int, budget *int64) bool {
	start := block * e.cfg.BlockSize
	end := start + e.cfg.BlockSize

	for row := start; row < end; row++ {
		var bRow, aRow []string
		if row < len(before.Values) {
			bRow = before.Values[row]
		}
		if row < len(after.Values) {
			aRow = after.Values[row]
		}
		if !e.diffRowCells(report, after, int64(row), bRow, aRow, budget) {
			return false
		}
	}
	return true
}

// compareSampled runs the SAMPLE tier comparison: the captured head and tail
// rows are cell-compared exactly, and the rest of the sheet is compared at
// block-checksum granularity. Blocks whose rows all fall inside the sampled
// windows are skipped at block level since their changes already surface as
// cell edits.
func (e *Engine) compareSampled(report *Report, before, after *SheetState, budget *int64) {
	headRows := len(after.Values)
	if len(before.Values) > headRows {
		headRows = len(before.Values)
	}
	for row := 0; row < headRows; row++ {
		var bRow, aRow []string
		if row < len(before.Values) {
			bRow = before.Values[row]
		}
		if row < len(after.Values) {
			aRow = after.Values[row]
		}
		if !e.diffRowCells(report, after, int64(row), bRow, aRow, budget) {
			report.Truncated = true
			return
		}
	}

	tailRows := len(after.TailValues)
	if len(before.TailValues) > tailRows {
		tailRows = len(before.TailValues)
	}
	for i := 0; i < tailRows; i++ {
		var bRow, aRow []string
		if i < len(before.TailValues) {
			bRow = before.TailValues[i]
		}
		if i < len(after.TailValues) {
			aRow = after.TailValues[i]
		}
		if !e.diffRowCells(report, after, after.TailStart+int64(i), bRow, aRow, budget) {
			report.Truncated = true
			return
		}
	}

	nBlocks := len(after.BlockChecksums)
	if len(before.BlockChecksums) > nBlocks {
		nBlocks = len(before.BlockChecksums)
	}
	for block := 0; block < nBlocks; block++ {
		var bSum, aSum uint64
		if block < len(before.BlockChecksums) {
			bSum = before.BlockChecksums[block]
		}
		if block < len(after.BlockChecksums) {
			aSum = after.BlockChecksums[block]
		}
		if bSum == aSum || blockSampled(before, after, block, e.cfg.BlockSize) {
			continue
		}
		report.Changes = append(report.Changes, Change{
			Kind: ChangeBlockModified, SheetID: after.SheetID,
			SheetTitle: after.Title, Block: block,
		})
	}
}

// blockSampled reports whether every row of the block was captured in both
// states' sample windows, meaning any change inside it was already
// cell-compared.
func blockSampled(before, after *SheetState, block, blockSize int) bool {
	// A zero TailStart means the sheet fit inside the head window and was
	// captured whole; with both states whole, every row was cell-compared.
	if before.TailStart == 0 && after.TailStart == 0 {
		return true
	}

	start := int64(block * blockSize)
	end := start + int64(blockSize)

	head := int64(len(after.Values))
	if h := int64(len(before.Values)); h < head {
		head = h
	}
	if end <= head {
		return true
	}

	if before.TailStart != after.TailStart || after.TailStart == 0 {
		return false
	}
	tailEnd := after.TailStart + int64(len(after.TailValues))
	if bEnd := before.TailStart + int64(len(before.TailValues)); bEnd < tailEnd {
		tailEnd = bEnd
	}
	return start >= after.TailStart && end <= tailEnd
}

// diffRowCells emits cell edits for one pair of rows at the given absolute
// row index. Returns false when the budget is exhausted mid-row.
func (e *Engine) diffRowCells(report *Report, after *SheetState, row int64, bRow, aRow []string, budget *int64) bool {
	if bRow == nil && aRow == nil {
		return true
	}

	width := len(bRow)
	if len(aRow) > width {
		width = len(aRow)
	}
	for col := 0; col < width; col++ {
		if *budget <= 0 {
			return false
		}
		*budget--

		var bv, av string
		if col < len(bRow) {
			bv = bRow[col]
		}
		if col < len(aRow) {
			av = aRow[col]
		}
		if bv != av {
			report.Changes = append(report.Changes, Change{
				Kind: ChangeCellEdited, SheetID: after.SheetID,
				SheetTitle: after.Title,
				Row:        row, Column: int64(col),
				Before: bv, After: av,
			})
		}
	}
	return true
}

// checksumRows hashes all cell values of a sheet with FNV-64a. Row and cell
// boundaries are delimited so ["ab"] and ["a","b"] hash differently.
func checksumRows(rows [][]string) uint64 {
	h := fnv.New64a()
	for _, row := range rows {
		for _, cell := range row {
			h.Write([]byte(cell))
			h.Write([]byte{0x1f}) // Unit separator between cells
		}
		h.Write([]byte{0x1e}) // Record separator between rows
	}
	return h.Sum64()
}

// blockChecksums hashes fixed-size row blocks independently so comparisons
// can localize changes to a block without full values.
func blockChecksums(rows [][]string, blockSize int) []uint64 {
	if len(rows) == 0 {
		return nil
	}
	nBlocks := (len(rows) + blockSize - 1) / blockSize
	sums := make([]uint64, nBlocks)
	for i := 0; i < nBlocks; i++ {
		start := i * blockSize
		end := start + blockSize
		if end > len(rows) {
			end = len(rows)
		}
		sums[i] = checksumRows(rows[start:end])
	}
	return sums
}
