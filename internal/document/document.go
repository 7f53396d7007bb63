// Package document defines the document model and its PostgreSQL store.
//
// A document's Terms and TermFrequency are derived from Content by the
// analyzer at ingest time and are immutable afterwards; they are always
// written together and never edited independently.
package document

import (
	"context"
	"time"
)

// Document is a stored, analyzed document.
type Document struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Terms         []string       `json:"terms"`
	TermFrequency map[string]int `json:"term_frequency"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Summary is the document projection returned in list and search responses.
type Summary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Summary returns the list/search projection of the document.
func (d *Document) Summary() Summary {
	return Summary{ID: d.ID, Title: d.Title, Content: d.Content}
}

// Store is the persistence contract for documents. Implementations must make
// individual writes atomic; the search core performs no locking of its own.
type Store interface {
	// Create persists a new document and returns it with ID and CreatedAt set.
	Create(ctx context.Context, title, content string, terms []string, termFrequency map[string]int) (*Document, error)
	// GetByID returns the document or errors.ErrDocumentNotFound.
	GetByID(ctx context.Context, id string) (*Document, error)
	// ListAll returns every document in the collection, including terms and
	// term frequencies, as a snapshot for index construction.
	ListAll(ctx context.Context) ([]*Document, error)
	// FindByIDs returns the documents whose ids are in the given set. Order
	// is not guaranteed and unknown ids are silently omitted.
	FindByIDs(ctx context.Context, ids []string) ([]*Document, error)
}
