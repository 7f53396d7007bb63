package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	apperrors "github.com/searchfoundry/docsearch/pkg/errors"
	"github.com/searchfoundry/docsearch/pkg/postgres"
)

// PostgresStore implements Store on top of PostgreSQL.
type PostgresStore struct {
	db *postgres.Client
}

// NewPostgresStore creates a document store backed by the given client.
func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the documents table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS documents (
			id             UUID PRIMARY KEY,
			title          TEXT NOT NULL,
			content        TEXT NOT NULL,
			terms          TEXT[] NOT NULL DEFAULT '{}',
			term_frequency JSONB NOT NULL DEFAULT '{}',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("ensuring documents schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, title, content string, terms []string, termFrequency map[string]int) (*Document, error) {
	if terms == nil {
		terms = []string{}
	}
	if termFrequency == nil {
		termFrequency = map[string]int{}
	}
	freqJSON, err := json.Marshal(termFrequency)
	if err != nil {
		return nil, fmt.Errorf("marshaling term frequency: %w", err)
	}

	doc := &Document{
		ID:            uuid.NewString(),
		Title:         title,
		Content:       content,
		Terms:         terms,
		TermFrequency: termFrequency,
	}
	err = s.db.DB.QueryRowContext(ctx,
		`INSERT INTO documents (id, title, content, terms, term_frequency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		doc.ID, doc.Title, doc.Content, pq.Array(doc.Terms), freqJSON,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrStoreFailure, 502, "inserting document: %v", err)
	}
	return doc, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, 404, "no document with id %s", id)
	}
	row := s.db.DB.QueryRowContext(ctx,
		`SELECT id, title, content, terms, term_frequency, created_at
		FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.Newf(apperrors.ErrDocumentNotFound, 404, "no document with id %s", id)
	}
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrStoreFailure, 502, "querying document %s: %v", id, err)
	}
	return doc, nil
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*Document, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, title, content, terms, term_frequency, created_at
		FROM documents ORDER BY created_at`)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrStoreFailure, 502, "listing documents: %v", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (s *PostgresStore) FindByIDs(ctx context.Context, ids []string) ([]*Document, error) {
	// Ids that are not valid UUIDs cannot match any row; dropping them here
	// keeps the uuid[] cast from failing the whole query.
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*Document{}, nil
	}
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, title, content, terms, term_frequency, created_at
		FROM documents WHERE id = ANY($1::uuid[])`, pq.Array(valid))
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrStoreFailure, 502, "querying documents by ids: %v", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Count returns the number of stored documents.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, apperrors.Newf(apperrors.ErrStoreFailure, 502, "counting documents: %v", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var terms pq.StringArray
	var freqJSON []byte
	if err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &terms, &freqJSON, &doc.CreatedAt); err != nil {
		return nil, err
	}
	doc.Terms = []string(terms)
	doc.TermFrequency = make(map[string]int)
	if len(freqJSON) > 0 {
		if err := json.Unmarshal(freqJSON, &doc.TermFrequency); err != nil {
			return nil, fmt.Errorf("unmarshaling term frequency for %s: %w", doc.ID, err)
		}
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]*Document, error) {
	docs := make([]*Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrStoreFailure, 502, "scanning document row: %v", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrStoreFailure, 502, "iterating document rows: %v", err)
	}
	return docs, nil
}
