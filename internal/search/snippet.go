package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// snippetWindow is the number of bytes of context kept on each side of the
// matched term.
const snippetWindow = 48

const ellipsis = "..."

// makeSnippet returns a bounded excerpt of text centered on the first
// occurrence of term, with ellipsis markers wherever truncation actually
// cut content. With no term (empty query) the snippet is the leading
// 2×window of the text.
func makeSnippet(text, textNorm, term string, wholeWord bool) string {
	if term == "" {
		return headSnippet(text)
	}

	var idx int
	if wholeWord {
		idx = indexWord(textNorm, term)
	} else {
		idx = strings.Index(textNorm, term)
	}
	if idx < 0 {
		// Matched on other predicates only; fall back to the head.
		return headSnippet(text)
	}

	// textNorm is the lowercase of text; byte offsets line up for all
	// practical inputs, so clamp rather than re-derive.
	start := idx - snippetWindow
	if start < 0 {
		start = 0
	}
	end := idx + len(term) + snippetWindow
	if end > len(text) {
		end = len(text)
	}
	if start > len(text) {
		start = len(text)
	}
	start = alignRuneStart(text, start)
	end = alignRuneStart(text, end)

	snippet := text[start:end]
	if start > 0 {
		snippet = ellipsis + snippet
	}
	if end < len(text) {
		snippet = snippet + ellipsis
	}
	return snippet
}

func headSnippet(text string) string {
	const max = 2 * snippetWindow
	if len(text) <= max {
		return text
	}
	return text[:alignRuneStart(text, max)] + ellipsis
}

// alignRuneStart moves a byte offset back to the nearest rune boundary so
// truncation never splits a multi-byte character.
func alignRuneStart(s string, i int) int {
	for i > 0 && i < len(s) && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}

// indexWord returns the byte offset of the first whole-word occurrence of
// term in s, or -1. Word boundaries are non-letter, non-digit runes or the
// string ends.
func indexWord(s, term string) int {
	if term == "" {
		return -1
	}
	for from := 0; from <= len(s)-len(term); {
		j := strings.Index(s[from:], term)
		if j < 0 {
			return -1
		}
		start := from + j
		end := start + len(term)
		if boundaryBefore(s, start) && boundaryAfter(s, end) {
			return start
		}
		from = start + 1
	}
	return -1
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
