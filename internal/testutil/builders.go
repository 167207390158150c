package testutil

import (
	"fmt"
	"strings"

	"github.com/chatvault/chatvault/internal/archive"
)

// Msg builds a test message with a deterministic ID derived from the text.
// Pass tsMs < 0 for a message without a timestamp.
func Msg(sender, text string, tsMs int64) archive.Message {
	m := archive.Message{
		ID:       fmt.Sprintf("msg-%s", strings.ReplaceAll(text, " ", "-")),
		Sender:   sender,
		Text:     text,
		TextNorm: strings.ToLower(text),
	}
	if tsMs >= 0 {
		v := tsMs
		m.TimestampMs = &v
		m.TimestampRaw = fmt.Sprintf("%d", tsMs)
	}
	return m
}
