// Package archive defines the core record types for chatvault datasets:
// extracted messages, datasets, and their derived metadata.
package archive

import "sort"

// Message is one extracted chat message. Messages are immutable once
// created; a dataset is only ever replaced wholesale, never edited.
type Message struct {
	ID           string `json:"id"`
	Sender       string `json:"sender"`
	Text         string `json:"text"`
	TextNorm     string `json:"text_norm"`
	TimestampRaw string `json:"timestamp_raw,omitempty"`
	// TimestampMs is epoch milliseconds, nil when the raw timestamp
	// could not be parsed. Never zero-as-unknown.
	TimestampMs *int64 `json:"timestamp_ms,omitempty"`
}

// Dataset is one parsed export file and everything derived from it.
type Dataset struct {
	FileID       string            `json:"file_id"`
	OriginalName string            `json:"original_name"`
	Messages     []Message         `json:"messages"`
	Attachments  map[string][]byte `json:"-"`
	CreatedAtMs  int64             `json:"created_at_ms"`
}

// DatasetMeta is the summary derived from a dataset's message list.
// MinTimestampMs/MaxTimestampMs are nil iff no message carries a timestamp.
type DatasetMeta struct {
	FileID         string   `json:"file_id"`
	OriginalName   string   `json:"original_name"`
	MessageCount   int      `json:"message_count"`
	Senders        []string `json:"senders"`
	MinTimestampMs *int64   `json:"min_timestamp_ms,omitempty"`
	MaxTimestampMs *int64   `json:"max_timestamp_ms,omitempty"`
	CreatedAtMs    int64    `json:"created_at_ms"`
}

// ComputeMeta derives a DatasetMeta from a message list. Senders are
// deduplicated and sorted ascending, case-sensitive. Min/max timestamps
// are computed only over messages that have one.
func ComputeMeta(fileID, originalName string, createdAtMs int64, messages []Message) DatasetMeta {
	meta := DatasetMeta{
		FileID:       fileID,
		OriginalName: originalName,
		MessageCount: len(messages),
		CreatedAtMs:  createdAtMs,
	}

	seen := make(map[string]bool)
	for _, m := range messages {
		if !seen[m.Sender] {
			seen[m.Sender] = true
			meta.Senders = append(meta.Senders, m.Sender)
		}
		if m.TimestampMs == nil {
			continue
		}
		ts := *m.TimestampMs
		if meta.MinTimestampMs == nil || ts < *meta.MinTimestampMs {
			v := ts
			meta.MinTimestampMs = &v
		}
		if meta.MaxTimestampMs == nil || ts > *meta.MaxTimestampMs {
			v := ts
			meta.MaxTimestampMs = &v
		}
	}
	sort.Strings(meta.Senders)

	return meta
}
