package knowledge

import "testing"

func TestNewDocStoreConfig(t *testing.T) {
	t.Parallel()

	cfg := NewDocStoreConfig("knowledge_base", nil)

	if cfg.TableName != "knowledge_base" {
		t.Errorf("TableName = %q, want %q", cfg.TableName, "knowledge_base")
	}
	if cfg.SchemaName != SchemaName {
		t.Errorf("SchemaName = %q, want %q", cfg.SchemaName, SchemaName)
	}
	if cfg.IDColumn != IDColumn || cfg.ContentColumn != ContentCol {
		t.Errorf("column mapping = %q/%q, want %q/%q", cfg.IDColumn, cfg.ContentColumn, IDColumn, ContentCol)
	}
	if cfg.EmbeddingColumn != EmbeddingCol || cfg.MetadataJSONColumn != MetadataCol {
		t.Errorf("column mapping = %q/%q, want %q/%q", cfg.EmbeddingColumn, cfg.MetadataJSONColumn, EmbeddingCol, MetadataCol)
	}

	// source_type must be a dedicated column so the migration's index on it
	// is usable.
	found := false
	for _, col := range cfg.MetadataColumns {
		if col == "source_type" {
			found = true
		}
	}
	if !found {
		t.Errorf("MetadataColumns = %v, want source_type included", cfg.MetadataColumns)
	}
}
