package knowledge

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/plugins/postgresql"
)

// Source type values stored in the source_type metadata column.
const (
	// SourceTypeCSV marks documents produced from CSV rows.
	SourceTypeCSV = "csv"

	// SourceTypeText marks documents produced from text file chunks.
	SourceTypeText = "text"
)

// Column names for the vector table. These match db/migrations.
const (
	SchemaName   = "public"
	IDColumn     = "id"
	ContentCol   = "content"
	EmbeddingCol = "embedding"
	MetadataCol  = "metadata"
)

// NewDocStoreConfig creates the Genkit PostgreSQL plugin configuration for
// the given table. One factory keeps production and tests consistent.
func NewDocStoreConfig(table string, embedder ai.Embedder) *postgresql.Config {
	return &postgresql.Config{
		TableName:          table,
		SchemaName:         SchemaName,
		IDColumn:           IDColumn,
		ContentColumn:      ContentCol,
		EmbeddingColumn:    EmbeddingCol,
		MetadataJSONColumn: MetadataCol,
		MetadataColumns:    []string{"source_type"},
		Embedder:           embedder,
	}
}
