package knowledge

import (
	"strings"

	"github.com/firebase/genkit/go/ai"
)

// Result is the single concrete shape the rest of the pipeline consumes.
// It is produced at the store boundary from whatever the retriever returns,
// so no caller ever inspects framework document structures.
type Result struct {
	Content  string
	Metadata map[string]any
}

// resultsFromDocuments converts retriever documents into Results,
// concatenating text parts in order.
func resultsFromDocuments(docs []*ai.Document) []Result {
	results := make([]Result, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range doc.Content {
			if part == nil {
				continue
			}
			sb.WriteString(part.Text)
		}
		results = append(results, Result{
			Content:  sb.String(),
			Metadata: doc.Metadata,
		})
	}
	return results
}
