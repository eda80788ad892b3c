package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile creates a file under a temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	t.Parallel()

	t.Run("one document per data row", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "faq.csv", "question,answer\nWhat is Go?,A programming language.\nWho made it?,Google.\n")

		docs, err := LoadCSV(path)
		if err != nil {
			t.Fatalf("LoadCSV() error = %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("LoadCSV() returned %d documents, want 2", len(docs))
		}

		want := "question: What is Go?; answer: A programming language."
		if got := docs[0].Content[0].Text; got != want {
			t.Errorf("document content = %q, want %q", got, want)
		}
	})

	t.Run("metadata carries identity and source", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "faq.csv", "question\nWhat is Go?\n")

		docs, err := LoadCSV(path)
		if err != nil {
			t.Fatalf("LoadCSV() error = %v", err)
		}
		if len(docs) != 1 {
			t.Fatalf("LoadCSV() returned %d documents, want 1", len(docs))
		}

		md := docs[0].Metadata
		if md["source_type"] != SourceTypeCSV {
			t.Errorf("source_type = %v, want %q", md["source_type"], SourceTypeCSV)
		}
		if md["source"] != filepath.Clean(path) {
			t.Errorf("source = %v, want %q", md["source"], filepath.Clean(path))
		}
		if md["chunk"] != 0 {
			t.Errorf("chunk = %v, want 0", md["chunk"])
		}
		id, ok := md["id"].(string)
		if !ok || id == "" {
			t.Fatalf("id metadata missing or empty: %v", md["id"])
		}
		if !strings.HasSuffix(id, ":0000") {
			t.Errorf("id = %q, want ordinal suffix :0000", id)
		}
	})

	t.Run("blank rows skipped", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "faq.csv", "question,answer\n , \nWhat is Go?,A language.\n")

		docs, err := LoadCSV(path)
		if err != nil {
			t.Fatalf("LoadCSV() error = %v", err)
		}
		if len(docs) != 1 {
			t.Errorf("LoadCSV() returned %d documents, want 1", len(docs))
		}
	})

	t.Run("ragged rows allowed", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "ragged.csv", "a,b\nonly-a\nx,y,extra\n")

		docs, err := LoadCSV(path)
		if err != nil {
			t.Fatalf("LoadCSV() error = %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("LoadCSV() returned %d documents, want 2", len(docs))
		}
		// The unnamed third cell keeps its raw value.
		if got := docs[1].Content[0].Text; got != "a: x; b: y; extra" {
			t.Errorf("document content = %q", got)
		}
	})

	t.Run("header-only file yields no documents", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "empty.csv", "question,answer\n")

		docs, err := LoadCSV(path)
		if err != nil {
			t.Fatalf("LoadCSV() error = %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("LoadCSV() returned %d documents, want 0", len(docs))
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
			t.Error("LoadCSV() error = nil, want error")
		}
	})
}

func TestLoadText(t *testing.T) {
	t.Parallel()

	t.Run("chunks become documents in order", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "doc.txt", "First paragraph.\n\nSecond paragraph.")

		docs, err := LoadText(path, 100)
		if err != nil {
			t.Fatalf("LoadText() error = %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("LoadText() returned %d documents, want 2", len(docs))
		}
		if got := docs[0].Content[0].Text; got != "First paragraph." {
			t.Errorf("first chunk = %q", got)
		}
		if docs[1].Metadata["chunk"] != 1 {
			t.Errorf("second chunk ordinal = %v, want 1", docs[1].Metadata["chunk"])
		}
		if docs[0].Metadata["source_type"] != SourceTypeText {
			t.Errorf("source_type = %v, want %q", docs[0].Metadata["source_type"], SourceTypeText)
		}
	})

	t.Run("empty file yields no documents", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "empty.txt", "")

		docs, err := LoadText(path, 100)
		if err != nil {
			t.Fatalf("LoadText() error = %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("LoadText() returned %d documents, want 0", len(docs))
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadText(filepath.Join(t.TempDir(), "nope.txt"), 100); err == nil {
			t.Error("LoadText() error = nil, want error")
		}
	})
}

func TestDocumentID(t *testing.T) {
	t.Parallel()

	// IDs are stable across calls and independent of content, so a
	// re-ingest of the same file replaces rather than duplicates.
	a := documentID("data/sample.txt", 3)
	b := documentID("data/sample.txt", 3)
	if a != b {
		t.Errorf("documentID not deterministic: %q vs %q", a, b)
	}

	if documentID("data/sample.txt", 3) == documentID("data/sample.txt", 4) {
		t.Error("documentID identical for different ordinals")
	}
	if documentID("data/sample.txt", 0) == documentID("data/other.txt", 0) {
		t.Error("documentID identical for different paths")
	}

	// Equivalent paths normalize to the same ID.
	if documentID("data/sample.txt", 0) != documentID("./data/sample.txt", 0) {
		t.Error("documentID differs for equivalent paths")
	}
}
