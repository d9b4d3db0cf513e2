package search

import (
	"strings"
	"unicode/utf8"

	"aidocs-backend/internal/shared/util"
)

const (
	snippetContext  = 100
	snippetFallback = 200
	minTermLen      = 3
)

// buildSnippet extracts text around the first query term found in content.
// Only terms longer than three characters are considered. When no term
// matches, the document's opening characters are used instead.
func buildSnippet(content, query string) string {
	lowered := strings.ToLower(content)
	for _, term := range strings.Fields(query) {
		if len(term) <= minTermLen {
			continue
		}
		idx := strings.Index(lowered, strings.ToLower(term))
		if idx < 0 {
			continue
		}
		start := idx - snippetContext
		if start < 0 {
			start = 0
		}
		for start > 0 && !utf8.RuneStart(content[start]) {
			start--
		}
		end := idx + len(term) + snippetContext
		if end > len(content) {
			end = len(content)
		}
		for end < len(content) && !utf8.RuneStart(content[end]) {
			end++
		}
		return content[start:end] + "..."
	}

	return util.TruncateUTF8(content, snippetFallback) + "..."
}
