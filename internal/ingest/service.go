// Package ingest analyzes and persists documents. Ingestion is synchronous:
// the document's terms and term frequencies are computed by the analyzer and
// written together with the raw content in a single store call.
package ingest

import (
	"context"
	"log/slog"

	"github.com/searchfoundry/docsearch/internal/analyzer"
	"github.com/searchfoundry/docsearch/internal/document"
	"github.com/searchfoundry/docsearch/pkg/metrics"
)

// Request is a single document to ingest.
type Request struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Service validates, analyzes, and persists documents.
type Service struct {
	store     document.Store
	validator *Validator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates an ingest Service. m may be nil (metrics disabled).
func New(store document.Store, validator *Validator, m *metrics.Metrics) *Service {
	return &Service{
		store:     store,
		validator: validator,
		metrics:   m,
		logger:    slog.Default().With("component", "ingest"),
	}
}

// IndexDocument runs the analyzer over the content and persists the
// resulting document. Content may be empty: the document is stored with no
// terms and will never match a non-empty query.
func (s *Service) IndexDocument(ctx context.Context, req *Request) (*document.Document, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	terms := analyzer.Analyze(req.Content)
	freq := analyzer.TermFrequency(terms)
	doc, err := s.store.Create(ctx, req.Title, req.Content, terms, freq)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.DocsIngestedTotal.Inc()
	}
	s.logger.Info("document ingested",
		"doc_id", doc.ID,
		"title", doc.Title,
		"terms", len(doc.Terms),
		"unique_terms", len(doc.TermFrequency),
	)
	return doc, nil
}

// IndexMany ingests documents sequentially, stopping at the first failure
// and returning the documents ingested so far along with the error.
func (s *Service) IndexMany(ctx context.Context, reqs []Request) ([]*document.Document, error) {
	docs := make([]*document.Document, 0, len(reqs))
	for i := range reqs {
		doc, err := s.IndexDocument(ctx, &reqs[i])
		if err != nil {
			return docs, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
