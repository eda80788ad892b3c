package knowledge

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// LoadCSV reads a CSV file and produces one document per data row. The
// first row is treated as a header; each document's content is the row's
// values labeled by their column names, which keeps rows meaningful as
// standalone retrieval units.
func LoadCSV(path string) ([]*ai.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	var docs []*ai.Document
	for i := 0; ; i++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return docs, fmt.Errorf("reading csv row %d: %w", i+1, err)
		}

		content := rowContent(header, row)
		if content == "" {
			continue
		}
		docs = append(docs, newDocument(path, SourceTypeCSV, len(docs), content))
	}

	return docs, nil
}

// LoadText reads a plain text file and produces one document per chunk.
// Chunks follow paragraph and sentence boundaries, accumulating up to
// chunkSize words each.
func LoadText(path string, chunkSize int) ([]*ai.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading text file: %w", err)
	}

	chunks := chunkText(string(data), chunkSize)

	docs := make([]*ai.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, newDocument(path, SourceTypeText, i, chunk))
	}
	return docs, nil
}

// rowContent renders one CSV row as "column: value" pairs joined by "; ",
// skipping blank cells. Extra unnamed cells keep their raw value.
func rowContent(header, row []string) string {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			parts = append(parts, strings.TrimSpace(header[i])+": "+cell)
		} else {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, "; ")
}

// newDocument builds a document with deterministic identity so that
// re-ingesting the same file upserts rather than duplicates.
func newDocument(path, sourceType string, ordinal int, content string) *ai.Document {
	return ai.DocumentFromText(content, map[string]any{
		"id":          documentID(path, ordinal),
		"source":      filepath.Clean(path),
		"source_type": sourceType,
		"chunk":       ordinal,
	})
}

// documentID derives a stable ID from the source path and chunk ordinal.
// The ID must not depend on content: upsert works by deleting the same IDs
// before re-insert.
func documentID(path string, ordinal int) string {
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return fmt.Sprintf("%s:%04d", hex.EncodeToString(sum[:8]), ordinal)
}
