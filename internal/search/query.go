// Package search evaluates structured queries against extracted message
// lists: multi-predicate filtering, timestamp ranking, snippet generation,
// and merged cross-dataset search.
package search

import (
	"fmt"
	"strings"

	"github.com/chatvault/chatvault/internal/archive"
)

// MatchMode selects how query text is matched against message text.
type MatchMode int

const (
	// MatchSubstring matches when the lowercased query occurs anywhere
	// in the message text. An empty query matches everything.
	MatchSubstring MatchMode = iota
	// MatchWholeWord matches when every whitespace-separated query term
	// occurs as a word-boundary-delimited whole word.
	MatchWholeWord
)

func (m MatchMode) String() string {
	switch m {
	case MatchSubstring:
		return "substring"
	case MatchWholeWord:
		return "word"
	default:
		return "unknown"
	}
}

// ParseMatchMode parses the wire form of a match mode. The empty string
// defaults to substring matching.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "substring":
		return MatchSubstring, nil
	case "word":
		return MatchWholeWord, nil
	default:
		return 0, fmt.Errorf("%w: unknown match mode %q", archive.ErrInvalidQuery, s)
	}
}

// Query is a structured search request. All set predicates must hold for a
// message to match (strict AND).
type Query struct {
	// Text is the search text, interpreted per Mode.
	Text string
	// Exclude holds whitespace-separated terms; a message containing any
	// of them as a substring is dropped.
	Exclude string
	Mode    MatchMode
	// Sender filters by exact sender equality when non-empty.
	Sender string
	// FromMs/ToMs bound the timestamp range, inclusive. A message without
	// a timestamp is never in range while either bound is set.
	FromMs *int64
	ToMs   *int64
	// Offset/Limit paginate the ranked match list. Offset must be >= 0
	// and Limit > 0; invalid values are rejected, not clamped.
	Offset int
	Limit  int
}

// Validate checks pagination bounds.
func (q Query) Validate() error {
	if q.Offset < 0 {
		return fmt.Errorf("%w: offset %d must be >= 0", archive.ErrInvalidQuery, q.Offset)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("%w: limit %d must be > 0", archive.ErrInvalidQuery, q.Limit)
	}
	return nil
}

// Hit is a view over a matched message plus its computed snippet.
// FileID/FileName are populated by merge search only.
type Hit struct {
	ID           string `json:"id"`
	Sender       string `json:"sender"`
	TimestampRaw string `json:"timestamp_raw,omitempty"`
	TimestampMs  *int64 `json:"timestamp_ms,omitempty"`
	Text         string `json:"text"`
	Snippet      string `json:"snippet"`
	FileID       string `json:"file_id,omitempty"`
	FileName     string `json:"file_name,omitempty"`
}

// Result is a ranked, paginated result set. Total counts every match
// before pagination.
type Result struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"results"`
}

// DatasetMessages pairs a stored dataset's identity with its message list,
// the unit a merge search operates on.
type DatasetMessages struct {
	FileID   string
	FileName string
	Messages []archive.Message
}
