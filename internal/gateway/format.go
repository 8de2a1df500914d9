package gateway

import (
	"fmt"
	"strings"
)

// maxContextChars bounds the rendered search context before it reaches the
// completion backend; prompt size must not grow with page size.
const maxContextChars = 20000

// FormatSearchContext renders the top results into a labeled text block safe
// to splice into a prompt. The header varies with the search type; the whole
// block is truncated to a hard ceiling.
func FormatSearchContext(results []SearchResult, query, searchType string) string {
	if len(results) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %q:\n\n", contextHeader(searchType), query)

	for i, r := range results {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   %s\n", r.Snippet)
		if r.Content != "" {
			fmt.Fprintf(&b, "   Content: %s\n", r.Content)
		}
		fmt.Fprintf(&b, "   Source: %s\n\n", r.URL)
	}

	context := b.String()
	if len(context) > maxContextChars {
		context = context[:maxContextChars]
	}
	return context
}

func contextHeader(searchType string) string {
	switch searchType {
	case "fresh_data":
		return "Recent developments relevant to"
	case "deep_expertise":
		return "Current research and advanced insights on"
	case "comprehensive":
		return "Comprehensive current information about"
	default:
		return "Additional context for"
	}
}
