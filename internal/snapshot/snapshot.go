// Package snapshot records recovery points for documents before high-risk
// mutations are applied. The executor requires a snapshot ID before sending
// any batch flagged high-risk, so a failed or surprising mutation always has
// a named restore point.
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gridgate-dev/gridgate/internal/logging"
	"github.com/gridgate-dev/gridgate/internal/sheets"
)

// Service creates recovery points. Create must return a stable snapshot ID
// that can later be surfaced alongside mutation results.
type Service interface {
	Create(ctx context.Context, documentID string) (string, error)
}

// Record is one stored recovery point.
type Record struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Document holds the captured content when the backing reader supplied
	// one. Nil for marker-only snapshots.
	Document *sheets.DocumentData `json:"document,omitempty"`
}

// DocumentReader is the subset of the API client used to capture content.
type DocumentReader interface {
	GetDocument(ctx context.Context, documentID string, ranges []string, includeGridData bool) (*sheets.DocumentData, error)
}

// MemoryService keeps snapshots in process memory. When a reader is
// configured it captures full document content; otherwise it records marker
// snapshots (ID and timestamp only), which still satisfy the high-risk gate.
type MemoryService struct {
	mu      sync.RWMutex
	records map[string]*Record
	reader  DocumentReader
}

// NewMemoryService creates a snapshot store. reader may be nil for
// marker-only operation.
func NewMemoryService(reader DocumentReader) *MemoryService {
	return &MemoryService{
		records: make(map[string]*Record),
		reader:  reader,
	}
}

// Create stores a recovery point for the document and returns its ID.
func (s *MemoryService) Create(ctx context.Context, documentID string) (string, error) {
	rec := &Record{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		CreatedAt:  time.Now(),
	}

	if s.reader != nil {
		doc, err := s.reader.GetDocument(ctx, documentID, nil, true)
		if err != nil {
			return "", fmt.Errorf("failed to capture snapshot content: %w", err)
		}
		rec.Document = doc
	}

	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()

	logging.Info("Created snapshot %s for document %s",
		logging.FormatSnapshotID(rec.ID), logging.FormatDocumentID(documentID))
	return rec.ID, nil
}

// Get returns a stored snapshot by ID.
func (s *MemoryService) Get(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

// List returns all snapshots for a document, unordered.
func (s *MemoryService) List(documentID string) []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Record
	for _, rec := range s.records {
		if rec.DocumentID == documentID {
			out = append(out, rec)
		}
	}
	return out
}
