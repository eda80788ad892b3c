package knowledge

import "strings"

// chunkText splits text into chunks of at most size words, breaking at
// paragraph and sentence boundaries. A paragraph never shares a chunk with
// the next one, and a single sentence longer than size words is emitted
// whole rather than split mid-sentence.
func chunkText(text string, size int) []string {
	if size < 1 {
		size = 1
	}

	var chunks []string
	var cur []string
	curWords := 0

	flush := func() {
		if curWords > 0 {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = nil
			curWords = 0
		}
	}

	for para := range strings.SplitSeq(text, "\n\n") {
		for _, sent := range splitSentences(para) {
			n := len(strings.Fields(sent))
			if n == 0 {
				continue
			}
			if curWords > 0 && curWords+n > size {
				flush()
			}
			cur = append(cur, sent)
			curWords += n
		}
		// Paragraph boundary always ends a chunk.
		flush()
	}

	return chunks
}

// splitSentences splits on sentence-ending punctuation followed by
// whitespace or end of input. Whitespace inside a sentence is collapsed.
func splitSentences(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', '!', '?':
			if i+1 == len(s) || s[i+1] == ' ' || s[i+1] == '\n' || s[i+1] == '\t' {
				if seg := normalizeSpace(s[start : i+1]); seg != "" {
					out = append(out, seg)
				}
				start = i + 1
			}
		}
	}
	if seg := normalizeSpace(s[start:]); seg != "" {
		out = append(out, seg)
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
