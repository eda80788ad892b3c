package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"

	"github.com/kbvec/kbvec/internal/config"
	"github.com/kbvec/kbvec/internal/knowledge"
)

// ============================================================================
// Mock Implementations for Testing
// ============================================================================

// mockStore is a mock implementation of the store interface.
type mockStore struct {
	// LoadErr is the error to return when Load is called.
	LoadErr error
	// LoadFunc allows per-call behavior; it takes precedence over LoadErr.
	LoadFunc func(ctx context.Context, docs []*ai.Document) error
	// SearchResults is the canned result set for Search.
	SearchResults []knowledge.Result
	// SearchErr is the error to return when Search is called.
	SearchErr error
	// ClearErr is the error to return when Clear is called.
	ClearErr error
	// Count is the value ApproxCount returns.
	Count int

	// Loads records every batch passed to Load.
	Loads [][]*ai.Document
	// Searches records every query passed to Search.
	Searches []string
	// Cleared counts Clear calls.
	Cleared int
}

func (m *mockStore) Load(ctx context.Context, docs []*ai.Document) error {
	m.Loads = append(m.Loads, docs)
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, docs)
	}
	return m.LoadErr
}

func (m *mockStore) Search(ctx context.Context, query string, limit int) ([]knowledge.Result, error) {
	m.Searches = append(m.Searches, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResults, nil
}

func (m *mockStore) Clear(ctx context.Context) error {
	m.Cleared++
	return m.ClearErr
}

func (m *mockStore) ApproxCount(ctx context.Context) int {
	return m.Count
}

// newTestIngestor wires an ingestor with no pacing delay and a discarded
// logger, capturing user output in the returned buffer.
func newTestIngestor(st *mockStore, sampleCSV, sampleText string) (*ingestor, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cfg := &config.Config{
		ChunkSize:  100,
		SampleCSV:  sampleCSV,
		SampleText: sampleText,
	}
	in := newIngestor(st, cfg, out, slog.New(slog.DiscardHandler))
	return in, out
}

func writeSample(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// ============================================================================
// ingestCSV / ingestText Tests
// ============================================================================

func TestIngestorIngestCSV(t *testing.T) {
	t.Parallel()

	t.Run("successful load reports document count", func(t *testing.T) {
		t.Parallel()

		path := writeSample(t, t.TempDir(), "faq.csv", "question,answer\nWhat is Go?,A language.\n")
		st := &mockStore{}
		in, out := newTestIngestor(st, "", "")

		if !in.ingestCSV(context.Background(), path) {
			t.Fatal("ingestCSV() = false, want true")
		}
		if len(st.Loads) != 1 || len(st.Loads[0]) != 1 {
			t.Fatalf("store received %v loads, want one batch of 1", st.Loads)
		}
		if !strings.Contains(out.String(), "Finished processing: "+path+" (1 documents)") {
			t.Errorf("output missing completion line:\n%s", out.String())
		}
	})

	t.Run("empty file reported as nothing to ingest", func(t *testing.T) {
		t.Parallel()

		path := writeSample(t, t.TempDir(), "empty.csv", "question,answer\n")
		st := &mockStore{}
		in, out := newTestIngestor(st, "", "")

		if !in.ingestCSV(context.Background(), path) {
			t.Fatal("ingestCSV() = false, want true for empty file")
		}
		if len(st.Loads) != 0 {
			t.Error("store Load called for empty file")
		}
		if !strings.Contains(out.String(), "nothing to ingest") {
			t.Errorf("output missing empty-file notice:\n%s", out.String())
		}
	})

	t.Run("load failure reported without panic", func(t *testing.T) {
		t.Parallel()

		path := writeSample(t, t.TempDir(), "faq.csv", "question\nWhat is Go?\n")
		st := &mockStore{LoadErr: errors.New("embedding quota exceeded")}
		in, out := newTestIngestor(st, "", "")

		if in.ingestCSV(context.Background(), path) {
			t.Fatal("ingestCSV() = true, want false on load failure")
		}
		if !strings.Contains(out.String(), "Failed to load documents from: "+path) {
			t.Errorf("output missing failure line:\n%s", out.String())
		}
	})

	t.Run("unreadable file reported as processing failure", func(t *testing.T) {
		t.Parallel()

		st := &mockStore{}
		in, out := newTestIngestor(st, "", "")

		if in.ingestCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv")) {
			t.Fatal("ingestCSV() = true, want false for missing file")
		}
		if !strings.Contains(out.String(), "Failed to process CSV file") {
			t.Errorf("output missing failure line:\n%s", out.String())
		}
	})
}

func TestIngestorIngestText(t *testing.T) {
	t.Parallel()

	path := writeSample(t, t.TempDir(), "doc.txt", "First paragraph.\n\nSecond paragraph.")
	st := &mockStore{}
	in, out := newTestIngestor(st, "", "")

	if !in.ingestText(context.Background(), path) {
		t.Fatal("ingestText() = false, want true")
	}
	if len(st.Loads) != 1 || len(st.Loads[0]) != 2 {
		t.Fatalf("store received %v loads, want one batch of 2", st.Loads)
	}
	if !strings.Contains(out.String(), "(2 documents)") {
		t.Errorf("output missing document count:\n%s", out.String())
	}
}

// ============================================================================
// ingestAll Tests
// ============================================================================

func TestIngestorIngestAll(t *testing.T) {
	t.Parallel()

	t.Run("both samples present", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		csvPath := writeSample(t, dir, "sample.csv", "question\nWhat is Go?\n")
		txtPath := writeSample(t, dir, "sample.txt", "Some text.")
		st := &mockStore{Count: 2}
		in, out := newTestIngestor(st, csvPath, txtPath)

		in.ingestAll(context.Background())

		if len(st.Loads) != 2 {
			t.Fatalf("store received %d loads, want 2", len(st.Loads))
		}
		if !strings.Contains(out.String(), "Succeeded: 2/2") {
			t.Errorf("output missing summary:\n%s", out.String())
		}
		if !strings.Contains(out.String(), "Documents in store: 2") {
			t.Errorf("output missing store count:\n%s", out.String())
		}
	})

	t.Run("missing sample skipped without counting", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		txtPath := writeSample(t, dir, "sample.txt", "Some text.")
		missing := filepath.Join(dir, "sample.csv")
		st := &mockStore{}
		in, out := newTestIngestor(st, missing, txtPath)

		in.ingestAll(context.Background())

		if !strings.Contains(out.String(), "Sample CSV not found, skipping: "+missing) {
			t.Errorf("output missing skip notice:\n%s", out.String())
		}
		if !strings.Contains(out.String(), "Succeeded: 1/1") {
			t.Errorf("skipped file counted toward total:\n%s", out.String())
		}
	})

	t.Run("failed file does not stop the batch", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		csvPath := writeSample(t, dir, "sample.csv", "question\nWhat is Go?\n")
		txtPath := writeSample(t, dir, "sample.txt", "Some text.")

		st := &mockStore{}
		st.LoadFunc = func(ctx context.Context, docs []*ai.Document) error {
			if len(st.Loads) == 1 {
				return errors.New("transient embedding failure")
			}
			return nil
		}
		in, out := newTestIngestor(st, csvPath, txtPath)

		in.ingestAll(context.Background())

		if len(st.Loads) != 2 {
			t.Fatalf("store received %d loads, want 2 (batch must continue)", len(st.Loads))
		}
		if !strings.Contains(out.String(), "Succeeded: 1/2") {
			t.Errorf("output missing partial summary:\n%s", out.String())
		}
		if !strings.Contains(out.String(), "Failed: 1") {
			t.Errorf("output missing failure count:\n%s", out.String())
		}
	})
}

// ============================================================================
// clear Tests
// ============================================================================

func TestIngestorClear(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		st := &mockStore{}
		in, out := newTestIngestor(st, "", "")

		if !in.clear(context.Background()) {
			t.Fatal("clear() = false, want true")
		}
		if st.Cleared != 1 {
			t.Errorf("Clear called %d times, want 1", st.Cleared)
		}
		if !strings.Contains(out.String(), "Document store cleared.") {
			t.Errorf("output missing confirmation:\n%s", out.String())
		}
	})

	t.Run("failure reported", func(t *testing.T) {
		t.Parallel()

		st := &mockStore{ClearErr: errors.New("permission denied")}
		in, out := newTestIngestor(st, "", "")

		if in.clear(context.Background()) {
			t.Fatal("clear() = true, want false")
		}
		if !strings.Contains(out.String(), "Failed to clear the document store.") {
			t.Errorf("output missing failure line:\n%s", out.String())
		}
	})
}
