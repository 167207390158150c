package search

import (
	"strings"
	"testing"
)

func TestSnippetCentersOnMatch(t *testing.T) {
	pad := strings.Repeat("a", 100)
	text := pad + " lake " + pad
	got := makeSnippet(text, strings.ToLower(text), "lake", false)

	if !strings.Contains(got, "lake") {
		t.Fatalf("snippet %q should contain the matched term", got)
	}
	if !strings.HasPrefix(got, ellipsis) || !strings.HasSuffix(got, ellipsis) {
		t.Errorf("snippet %q should be ellipsis-marked on both truncated sides", got)
	}
	// term + window on both sides + two markers.
	max := len("lake") + 2*snippetWindow + 2*len(ellipsis) + 4
	if len(got) > max {
		t.Errorf("snippet length %d exceeds window bound %d", len(got), max)
	}
}

func TestSnippetNoEllipsisWhenNotTruncated(t *testing.T) {
	text := "short lake note"
	got := makeSnippet(text, text, "lake", false)
	if got != text {
		t.Errorf("got %q, want full text without markers", got)
	}
}

func TestSnippetTruncatesOneSideOnly(t *testing.T) {
	text := "lake " + strings.Repeat("b", 200)
	got := makeSnippet(text, text, "lake", false)
	if strings.HasPrefix(got, ellipsis) {
		t.Errorf("snippet %q: match at start, no leading marker expected", got)
	}
	if !strings.HasSuffix(got, ellipsis) {
		t.Errorf("snippet %q: truncated tail should carry a marker", got)
	}
}

func TestSnippetEmptyTermUsesHead(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := makeSnippet(long, long, "", false)
	if len(got) != 2*snippetWindow+len(ellipsis) {
		t.Errorf("head snippet length = %d, want %d", len(got), 2*snippetWindow+len(ellipsis))
	}
	if !strings.HasSuffix(got, ellipsis) {
		t.Errorf("truncated head snippet should be ellipsis-suffixed: %q", got)
	}

	short := "tiny"
	if got := makeSnippet(short, short, "", false); got != "tiny" {
		t.Errorf("got %q, want untruncated text verbatim", got)
	}
}

func TestSnippetWholeWordUsesWordOccurrence(t *testing.T) {
	// "lakeside" precedes the whole-word occurrence; the snippet must
	// center on the standalone word, not the substring hit.
	text := strings.Repeat("z", 80) + " lakeside " + strings.Repeat("z", 80) + " lake end"
	got := makeSnippet(text, text, "lake", true)
	if !strings.Contains(got, "lake end") {
		t.Errorf("snippet %q should center on the whole-word match", got)
	}
}

func TestSnippetMultibyteSafe(t *testing.T) {
	text := strings.Repeat("é", 100) + "lake" + strings.Repeat("é", 100)
	got := makeSnippet(text, text, "lake", false)
	for _, r := range got {
		if r == '�' {
			t.Fatalf("snippet %q split a multi-byte rune", got)
		}
	}
}

func TestIndexWord(t *testing.T) {
	tests := []struct {
		s, term string
		want    int
	}{
		{"the lake house", "lake", 4},
		{"lakeside", "lake", -1},
		{"lake", "lake", 0},
		{"at the lake.", "lake", 7},
		{"lake-house", "lake", 0},
		{"blake lake", "lake", 6},
		{"", "lake", -1},
		{"lake", "", -1},
	}
	for _, tt := range tests {
		if got := indexWord(tt.s, tt.term); got != tt.want {
			t.Errorf("indexWord(%q, %q) = %d, want %d", tt.s, tt.term, got, tt.want)
		}
	}
}
