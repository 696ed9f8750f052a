package snapshot

import (
	"context"
	"fmt"
	"testing"

	"github.com/gridgate-dev/gridgate/internal/sheets"
)

type stubReader struct {
	doc *sheets.DocumentData
	err error
}

func (r *stubReader) GetDocument(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*sheets.DocumentData, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.doc, nil
}

func TestCreateMarkerSnapshot(t *testing.T) {
	s := NewMemoryService(nil)

	id, err := s.Create(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty snapshot ID")
	}

	rec, ok := s.Get(id)
	if !ok {
		t.Fatal("snapshot not found after create")
	}
	if rec.DocumentID != "doc-1" {
		t.Errorf("document ID = %q, want doc-1", rec.DocumentID)
	}
	if rec.Document != nil {
		t.Error("marker snapshot should not carry content")
	}
}

func TestCreateCapturesContentWithReader(t *testing.T) {
	reader := &stubReader{doc: &sheets.DocumentData{SpreadsheetID: "doc-1", Title: "Budget"}}
	s := NewMemoryService(reader)

	id, err := s.Create(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	rec, _ := s.Get(id)
	if rec.Document == nil || rec.Document.Title != "Budget" {
		t.Errorf("expected captured document content, got %+v", rec.Document)
	}
}

func TestCreatePropagatesReaderError(t *testing.T) {
	s := NewMemoryService(&stubReader{err: fmt.Errorf("boom")})

	if _, err := s.Create(context.Background(), "doc-1"); err == nil {
		t.Error("expected error when content capture fails")
	}
}

func TestListFiltersByDocument(t *testing.T) {
	s := NewMemoryService(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, "doc-a"); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}
	if _, err := s.Create(ctx, "doc-b"); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if got := len(s.List("doc-a")); got != 3 {
		t.Errorf("List(doc-a) = %d records, want 3", got)
	}
	if got := len(s.List("doc-b")); got != 1 {
		t.Errorf("List(doc-b) = %d records, want 1", got)
	}
}
