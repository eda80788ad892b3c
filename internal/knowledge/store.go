// Package knowledge provides the vector store client and document loaders.
//
// All embedding generation, vector persistence, and similarity ranking are
// delegated to the Genkit PostgreSQL plugin (pgvector). This package only
// adapts that plugin to the two CLI tools: upsert-style loading, limited
// similarity search with a single concrete result shape, full deletes, and
// a rough document count.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/plugins/postgresql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// CountCap bounds the search used to approximate the document count.
// There is no count API on the retriever, so the count is the size of an
// unscoped search capped here. A rough estimate, not authoritative.
const CountCap = 10000

// indexer is the slice of the Genkit DocStore the Store needs.
// Interface defined by the consumer for testability; *postgresql.DocStore
// satisfies it.
type indexer interface {
	Index(ctx context.Context, docs []*ai.Document) error
}

// execer is the slice of the pgx pool used for deletes.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is a thin client over the external vector store. It owns no state
// beyond its handles; one Store is created per process run and discarded at
// exit.
type Store struct {
	index     indexer
	retriever ai.Retriever
	db        execer
	table     string // sanitized identifier, validated by config
	logger    *slog.Logger
}

// NewStore creates a Store. table must be a validated SQL identifier.
func NewStore(index indexer, retriever ai.Retriever, db execer, table string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		index:     index,
		retriever: retriever,
		db:        db,
		table:     pgx.Identifier{table}.Sanitize(),
		logger:    logger,
	}
}

// Load upserts documents into the store. The Genkit DocStore only inserts,
// so existing rows with the same document IDs are deleted first. Loader
// document IDs are deterministic per source file and chunk ordinal, which
// makes re-ingestion replace prior content instead of duplicating it.
func (s *Store) Load(ctx context.Context, docs []*ai.Document) error {
	if len(docs) == 0 {
		return nil
	}

	if err := s.deleteByIDs(ctx, documentIDs(docs)); err != nil {
		// Rows may simply not exist yet; only the insert below is fatal.
		s.logger.Debug("deleting existing documents before load", "error", err)
	}

	if err := s.index.Index(ctx, docs); err != nil {
		return fmt.Errorf("indexing documents: %w", err)
	}

	s.logger.Debug("documents loaded", "count", len(docs))
	return nil
}

// Search performs one similarity search and returns results in the order
// the framework ranked them. limit values below 1 fall back to 1.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit < 1 {
		limit = 1
	}

	req := &ai.RetrieverRequest{
		Query:   ai.DocumentFromText(query, nil),
		Options: &postgresql.RetrieverOptions{K: limit},
	}

	resp, err := s.retriever.Retrieve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	return resultsFromDocuments(resp.Documents), nil
}

// Clear deletes every document from the store. Irreversible.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM "+s.table); err != nil {
		return fmt.Errorf("clearing %s: %w", s.table, err)
	}
	s.logger.Debug("store cleared", "table", s.table)
	return nil
}

// ApproxCount estimates the number of stored documents via a capped search.
// Failures are logged and reported as 0; this is a display-only figure and
// never an error.
func (s *Store) ApproxCount(ctx context.Context) int {
	results, err := s.Search(ctx, "", CountCap)
	if err != nil {
		s.logger.Warn("approximate document count failed", "error", err)
		return 0
	}
	return len(results)
}

// deleteByIDs deletes documents by ID with a parameterized query.
func (s *Store) deleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.Exec(ctx, "DELETE FROM "+s.table+" WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	return nil
}

// documentIDs extracts the "id" metadata key the loaders set on every
// document.
func documentIDs(docs []*ai.Document) []string {
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if id, ok := doc.Metadata["id"].(string); ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
