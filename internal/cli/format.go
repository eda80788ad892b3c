package cli

import (
	"fmt"

	"github.com/kbvec/kbvec/internal/knowledge"
)

// previewLimit caps how much of a retrieved document is shown.
const previewLimit = 200

// formatSearchResults renders one query's results as display lines.
// When index is positive the query line is numbered, which batch runs
// use to keep their output scannable.
func formatSearchResults(query string, results []knowledge.Result, index int) []string {
	var lines []string
	if index > 0 {
		lines = append(lines, fmt.Sprintf("Query %d: %s", index, query))
	} else {
		lines = append(lines, fmt.Sprintf("Query: %s", query))
	}

	if len(results) == 0 {
		lines = append(lines, "[no results found]")
		return lines
	}

	for i, result := range results {
		lines = append(lines, fmt.Sprintf("[Retrieved Document %d]", i+1))
		lines = append(lines, truncate(result.Content, previewLimit))
	}
	return lines
}

// truncate shortens content to limit runes, appending an ellipsis when
// anything was cut. Counting runes keeps multibyte text intact.
func truncate(content string, limit int) string {
	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + "..."
}
