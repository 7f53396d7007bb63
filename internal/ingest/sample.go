package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/searchfoundry/docsearch/internal/document"
	apperrors "github.com/searchfoundry/docsearch/pkg/errors"
)

// sampleDocuments seed the data directory the first time LoadSamples runs
// against an empty or missing directory.
var sampleDocuments = []Request{
	{
		Title:   "Sample Document 1",
		Content: "This is a sample document about information retrieval systems. These systems are designed to retrieve information from a collection of documents.",
	},
	{
		Title:   "Sample Document 2",
		Content: "Search engines are examples of information retrieval systems that help users find relevant information on the web.",
	},
	{
		Title:   "Sample Document 3",
		Content: "Document retrieval is the process of matching and ranking documents based on their relevance to a user query.",
	},
	{
		Title:   "Sample Document 4",
		Content: "TF-IDF is a numerical statistic that reflects how important a word is to a document in a collection.",
	},
	{
		Title:   "Sample Document 5",
		Content: "Indexing is an important part of information retrieval systems as it allows for efficient searching.",
	},
}

// LoadSamples ingests every .txt file in dir, using the file name without
// extension as the title. If the directory does not exist it is created and
// seeded with the built-in sample documents first.
func (s *Service) LoadSamples(ctx context.Context, dir string) ([]*document.Document, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := s.seedSamples(dir); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading sample directory %s: %w", dir, err)
	}
	reqs := make([]Request, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading sample file %s: %w", entry.Name(), err)
		}
		reqs = append(reqs, Request{
			Title:   strings.TrimSuffix(entry.Name(), ".txt"),
			Content: string(content),
		})
	}
	if len(reqs) == 0 {
		return nil, apperrors.New(apperrors.ErrDocumentNotFound, 404, "no sample documents found")
	}
	return s.IndexMany(ctx, reqs)
}

func (s *Service) seedSamples(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating sample directory %s: %w", dir, err)
	}
	for i, doc := range sampleDocuments {
		path := filepath.Join(dir, fmt.Sprintf("sample-%d.txt", i+1))
		if err := os.WriteFile(path, []byte(doc.Content), 0o644); err != nil {
			return fmt.Errorf("writing sample file %s: %w", path, err)
		}
	}
	s.logger.Info("seeded sample documents", "dir", dir, "count", len(sampleDocuments))
	return nil
}
