package sheets

import (
	"encoding/json"
	"testing"
)

// TestRequestDecodeKind tests discriminant derivation from populated variants
func TestRequestDecodeKind(t *testing.T) {
	tests := []struct {
		name     string
		request  Request
		wantKind RequestKind
		wantErr  bool
	}{
		{
			name:     "update cells",
			request:  Request{UpdateCells: &UpdateCellsRequest{}},
			wantKind: KindUpdateCells,
		},
		{
			name:     "delete dimension",
			request:  Request{DeleteDimension: &DeleteDimensionRequest{}},
			wantKind: KindDeleteDimension,
		},
		{
			name:     "find replace",
			request:  Request{FindReplace: &FindReplaceRequest{Find: "a"}},
			wantKind: KindFindReplace,
		},
		{
			name:    "no variant populated",
			request: Request{},
			wantErr: true,
		},
		{
			name: "multiple variants populated",
			request: Request{
				UpdateCells: &UpdateCellsRequest{},
				DeleteSheet: &DeleteSheetRequest{SheetID: 1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := tt.request.DecodeKind()
			if tt.wantErr {
				if err == nil {
					t.Errorf("DecodeKind() expected error, got kind %q", kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeKind() unexpected error: %v", err)
			}
			if kind != tt.wantKind {
				t.Errorf("DecodeKind() = %q, want %q", kind, tt.wantKind)
			}
		})
	}
}

// TestRequestUnmarshalSetsKind tests that decoding a wire payload sets the
// discriminant exactly once at the boundary
func TestRequestUnmarshalSetsKind(t *testing.T) {
	payload := `{"deleteSheet":{"sheetId":42}}`

	var req Request
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if req.Kind != KindDeleteSheet {
		t.Errorf("Kind = %q, want %q", req.Kind, KindDeleteSheet)
	}
	if req.DeleteSheet == nil || req.DeleteSheet.SheetID != 42 {
		t.Errorf("DeleteSheet payload not decoded: %+v", req.DeleteSheet)
	}
}

// TestRequestMarshalOmitsKind tests that the discriminant stays off the wire
func TestRequestMarshalOmitsKind(t *testing.T) {
	req := Request{
		Kind:        KindDeleteSheet,
		DeleteSheet: &DeleteSheetRequest{SheetID: 7},
	}

	data, err := json.Marshal(&req)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if len(wire) != 1 {
		t.Errorf("wire shape has %d keys, want exactly 1: %s", len(wire), data)
	}
	if _, ok := wire["deleteSheet"]; !ok {
		t.Errorf("wire shape missing deleteSheet field: %s", data)
	}
}

// TestGridRangeArea tests exact area computation and the unbounded fallback
func TestGridRangeArea(t *testing.T) {
	tests := []struct {
		name      string
		rng       GridRange
		wantArea  int64
		wantExact bool
	}{
		{
			name:      "bounded 10x5",
			rng:       GridRange{SheetID: 1, StartRowIndex: 0, EndRowIndex: 10, StartColumnIndex: 0, EndColumnIndex: 5},
			wantArea:  50,
			wantExact: true,
		},
		{
			name:      "unbounded rows",
			rng:       GridRange{SheetID: 1, StartRowIndex: 0, EndRowIndex: Unbounded, StartColumnIndex: 0, EndColumnIndex: 5},
			wantExact: false,
		},
		{
			name:      "unbounded columns",
			rng:       GridRange{SheetID: 1, StartRowIndex: 0, EndRowIndex: 3, StartColumnIndex: 2, EndColumnIndex: Unbounded},
			wantExact: false,
		},
		{
			name:      "empty range",
			rng:       GridRange{SheetID: 1, StartRowIndex: 4, EndRowIndex: 4, StartColumnIndex: 0, EndColumnIndex: 5},
			wantArea:  0,
			wantExact: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, exact := tt.rng.Area()
			if exact != tt.wantExact {
				t.Fatalf("Area() exact = %v, want %v", exact, tt.wantExact)
			}
			if exact && area != tt.wantArea {
				t.Errorf("Area() = %d, want %d", area, tt.wantArea)
			}
		})
	}
}

// TestGridRangeJSONRoundTrip tests the unbounded sentinel translation at the
// JSON boundary
func TestGridRangeJSONRoundTrip(t *testing.T) {
	rng := GridRange{SheetID: 3, StartRowIndex: 2, EndRowIndex: Unbounded, StartColumnIndex: 0, EndColumnIndex: 4}

	data, err := json.Marshal(rng)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("re-decode failed: %v", err)
	}
	if _, present := wire["endRowIndex"]; present {
		t.Errorf("unbounded endRowIndex should be omitted from wire shape: %s", data)
	}

	var back GridRange
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back != rng {
		t.Errorf("round trip = %+v, want %+v", back, rng)
	}
}

// TestDecodeReply tests reply-shape dispatch on the populated union field
func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name     string
		reply    Reply
		wantKind RequestKind
		wantOK   bool
	}{
		{
			name:     "add sheet reply",
			reply:    Reply{AddSheet: &AddSheetReply{Properties: SheetProperties{SheetID: 9}}},
			wantKind: KindAddSheet,
			wantOK:   true,
		},
		{
			name:     "find replace reply",
			reply:    Reply{FindReplace: &FindReplaceReply{OccurrencesChanged: 4}},
			wantKind: KindFindReplace,
			wantOK:   true,
		},
		{
			name:   "empty reply",
			reply:  Reply{},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := DecodeReply(tt.reply)
			if ok != tt.wantOK {
				t.Fatalf("DecodeReply() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && kind != tt.wantKind {
				t.Errorf("DecodeReply() = %q, want %q", kind, tt.wantKind)
			}
		})
	}
}
