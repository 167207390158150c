package search

import (
	"context"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chatvault/chatvault/internal/archive"
)

// Run evaluates a query against one dataset's message list and returns the
// ranked, paginated result set. Identical inputs always yield identical
// results.
func Run(messages []archive.Message, q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	m := compile(q)
	matches := m.collect(messages, "", "")
	sortMatches(matches)

	total := len(matches)
	page := paginate(matches, q.Offset, q.Limit)
	return Result{Total: total, Hits: m.hits(page)}, nil
}

// RunAll evaluates the query against every dataset independently, unions
// the per-dataset matches, re-sorts by the same ranking rule, and applies
// the global pagination window. Total is the sum of per-dataset match
// counts. Sub-searches run concurrently; the merge is deterministic
// regardless of completion order.
func RunAll(ctx context.Context, datasets []DatasetMessages, q Query) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	m := compile(q)
	perDataset := make([][]match, len(datasets))

	g, ctx := errgroup.WithContext(ctx)
	for i, ds := range datasets {
		i, ds := i, ds
		g.Go(func() error {
			perDataset[i] = m.collect(ds.Messages, ds.FileID, ds.FileName)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// Union in dataset order so the stable sort breaks cross-dataset ties
	// deterministically.
	var union []match
	for _, matches := range perDataset {
		union = append(union, matches...)
	}
	sortMatches(union)

	total := len(union)
	page := paginate(union, q.Offset, q.Limit)
	return Result{Total: total, Hits: m.hits(page)}, nil
}

// matcher is a compiled query: predicates normalized once, applied to many
// messages.
type matcher struct {
	sender    string
	exclude   []string
	fromMs    *int64
	toMs      *int64
	wholeWord bool
	textNorm  string   // lowercased, trimmed query text (substring mode)
	terms     []string // lowercased query terms (whole-word mode)
}

func compile(q Query) matcher {
	m := matcher{
		sender:    q.Sender,
		fromMs:    q.FromMs,
		toMs:      q.ToMs,
		wholeWord: q.Mode == MatchWholeWord,
		textNorm:  strings.ToLower(strings.TrimSpace(q.Text)),
	}
	if m.wholeWord {
		m.terms = strings.Fields(m.textNorm)
	}
	m.exclude = strings.Fields(strings.ToLower(q.Exclude))
	return m
}

// matches applies the predicate conjunction, cheapest first.
func (m matcher) matches(msg *archive.Message) bool {
	if m.sender != "" && msg.Sender != m.sender {
		return false
	}
	for _, term := range m.exclude {
		if strings.Contains(msg.TextNorm, term) {
			return false
		}
	}
	if m.fromMs != nil || m.toMs != nil {
		// A message without a timestamp is never in range.
		if msg.TimestampMs == nil {
			return false
		}
		ts := *msg.TimestampMs
		if m.fromMs != nil && ts < *m.fromMs {
			return false
		}
		if m.toMs != nil && ts > *m.toMs {
			return false
		}
	}
	if m.wholeWord {
		for _, term := range m.terms {
			if indexWord(msg.TextNorm, term) < 0 {
				return false
			}
		}
		return true
	}
	if m.textNorm == "" {
		return true
	}
	return strings.Contains(msg.TextNorm, m.textNorm)
}

// match pairs a matched message with the dataset it came from.
type match struct {
	msg      *archive.Message
	fileID   string
	fileName string
}

func (m matcher) collect(messages []archive.Message, fileID, fileName string) []match {
	var out []match
	for i := range messages {
		if m.matches(&messages[i]) {
			out = append(out, match{msg: &messages[i], fileID: fileID, fileName: fileName})
		}
	}
	return out
}

// snippetTerm is the term a snippet centers on: the whole query in
// substring mode, the first term in whole-word mode.
func (m matcher) snippetTerm() string {
	if m.wholeWord {
		if len(m.terms) > 0 {
			return m.terms[0]
		}
		return ""
	}
	return m.textNorm
}

func (m matcher) hits(page []match) []Hit {
	hits := make([]Hit, len(page))
	for i, mt := range page {
		hits[i] = Hit{
			ID:           mt.msg.ID,
			Sender:       mt.msg.Sender,
			TimestampRaw: mt.msg.TimestampRaw,
			TimestampMs:  mt.msg.TimestampMs,
			Text:         mt.msg.Text,
			Snippet:      makeSnippet(mt.msg.Text, mt.msg.TextNorm, m.snippetTerm(), m.wholeWord),
			FileID:       mt.fileID,
			FileName:     mt.fileName,
		}
	}
	return hits
}

// tsVal ranks a message for sorting: messages without a timestamp take the
// lowest possible value and sort to the end of a descending order.
func tsVal(msg *archive.Message) int64 {
	if msg.TimestampMs == nil {
		return math.MinInt64
	}
	return *msg.TimestampMs
}

// sortMatches orders matches by timestamp descending; the stable sort
// preserves extraction (and dataset) order for ties.
func sortMatches(matches []match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return tsVal(matches[i].msg) > tsVal(matches[j].msg)
	})
}

func paginate(matches []match, offset, limit int) []match {
	if offset >= len(matches) {
		return nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end]
}
