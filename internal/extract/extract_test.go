package extract

import (
	"strings"
	"testing"
	"time"
)

const sampleExport = `
<html><body>
<div class="conversation">
  <div class="message">
    <h2>Ava</h2>
    <div class="text">see you at
       the lake</div>
    <div class="date">Mar 16, 2023 11:23 pm</div>
  </div>
  <div class="message">
    <h2>Noah</h2>
    <div class="text">lake house this weekend
      <ul class="reactions"><li>👍 Ava</li></ul>
    </div>
    <div class="date">Mar 17, 2023 9:00 am</div>
  </div>
</div>
</body></html>`

func TestExtractSample(t *testing.T) {
	msgs := Extract(sampleExport)

	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}

	if msgs[0].Sender != "Ava" {
		t.Errorf("sender = %q, want Ava", msgs[0].Sender)
	}
	if msgs[0].Text != "see you at the lake" {
		t.Errorf("text = %q, whitespace should collapse to single spaces", msgs[0].Text)
	}
	if msgs[0].TimestampRaw != "Mar 16, 2023 11:23 pm" {
		t.Errorf("timestamp raw = %q", msgs[0].TimestampRaw)
	}
	want := time.Date(2023, time.March, 16, 23, 23, 0, 0, time.Local).UnixMilli()
	if msgs[0].TimestampMs == nil || *msgs[0].TimestampMs != want {
		t.Errorf("timestamp ms = %v, want %d", msgs[0].TimestampMs, want)
	}

	// Reaction list must not leak into the body.
	if strings.Contains(msgs[1].Text, "👍") {
		t.Errorf("reactions leaked into body: %q", msgs[1].Text)
	}
	if msgs[1].Text != "lake house this weekend" {
		t.Errorf("text = %q, want %q", msgs[1].Text, "lake house this weekend")
	}
}

func TestExtractInvariants(t *testing.T) {
	inputs := []string{
		sampleExport,
		`<div class="message"><h3>A</h3><p>hello WORLD</p></div>`,
		`<div class="message"><h3></h3><p>no sender here</p></div>`,
		"not markup at all",
		"",
		"<div><<<<garbage>>>",
	}

	for _, input := range inputs {
		for _, m := range Extract(input) {
			if m.Text == "" {
				t.Errorf("extracted message with empty text from %q", input)
			}
			if m.TextNorm != strings.ToLower(m.Text) {
				t.Errorf("TextNorm %q is not lowercase of Text %q", m.TextNorm, m.Text)
			}
			if m.ID == "" {
				t.Error("extracted message without an ID")
			}
		}
	}
}

func TestExtractUniqueIDs(t *testing.T) {
	msgs := Extract(sampleExport)
	seen := make(map[string]bool)
	for _, m := range msgs {
		if seen[m.ID] {
			t.Errorf("duplicate message ID %q", m.ID)
		}
		seen[m.ID] = true
	}
}

func TestExtractSenderDefaultsToUnknown(t *testing.T) {
	msgs := Extract(`<div class="message"><h3>  </h3><div class="text">hi</div></div>`)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].Sender != "Unknown" {
		t.Errorf("sender = %q, want Unknown", msgs[0].Sender)
	}
}

func TestExtractSkipsEmptyBody(t *testing.T) {
	msgs := Extract(`
		<div class="message"><h3>A</h3><div class="text">   </div></div>
		<div class="message"><h3>B</h3><div class="text">real text</div></div>`)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1 (empty-body block skipped)", len(msgs))
	}
	if msgs[0].Sender != "B" {
		t.Errorf("kept sender = %q, want B", msgs[0].Sender)
	}
}

func TestExtractFallbackSelectors(t *testing.T) {
	// No conversation container: the bare .message selector must kick in.
	bare := `<div class="message"><h3>A</h3><div class="text">one</div></div>`
	if got := len(Extract(bare)); got != 1 {
		t.Errorf("bare .message: got %d messages, want 1", got)
	}

	// No message class at all: the generic heading+content shape must match.
	generic := `<body><div><h4>A</h4><p>two</p></div></body>`
	msgs := Extract(generic)
	if len(msgs) != 1 {
		t.Fatalf("generic shape: got %d messages, want 1", len(msgs))
	}
	if msgs[0].Text != "two" {
		t.Errorf("generic shape text = %q, want two", msgs[0].Text)
	}
}

func TestExtractUnparseableTimestampPreserved(t *testing.T) {
	msgs := Extract(`<div class="message"><h3>A</h3><div class="text">hi</div><div class="date">last tuesday</div></div>`)
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want 1", len(msgs))
	}
	if msgs[0].TimestampMs != nil {
		t.Errorf("TimestampMs = %v, want nil for unparseable timestamp", *msgs[0].TimestampMs)
	}
	if msgs[0].TimestampRaw != "last tuesday" {
		t.Errorf("TimestampRaw = %q, want preserved verbatim", msgs[0].TimestampRaw)
	}
}

func TestExtractExtractionOrderPreserved(t *testing.T) {
	// Newer timestamp first in the document: extraction order is document
	// order, not chronological order. Sorting is the query engine's job.
	msgs := Extract(`
		<div class="message"><h3>A</h3><div class="text">newest</div><div class="date">2024-01-02</div></div>
		<div class="message"><h3>B</h3><div class="text">oldest</div><div class="date">2020-01-01</div></div>`)
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Text != "newest" || msgs[1].Text != "oldest" {
		t.Errorf("extraction order not preserved: %q, %q", msgs[0].Text, msgs[1].Text)
	}
}
