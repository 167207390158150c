// Package extract performs best-effort structural extraction of message
// records from exported chat markup.
//
// The extractor targets the block shape produced by common chat export
// tools: a container element per message holding a heading with the sender
// name, a content element with the message text, and a small element with
// the rendered timestamp. It is not a general HTML parser; exports that
// drift from this shape degrade to fewer (or zero) extracted messages,
// never to an error.
package extract

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/chatvault/chatvault/internal/archive"
)

// Class names recognized for the three structural roles of a block.
var (
	containerClasses = []string{"conversation", "thread", "chat"}
	messageClasses   = []string{"message", "msg"}
	bodyClasses      = []string{"text", "body", "content"}
	senderClasses    = []string{"sender", "from", "author"}
	timeClasses      = []string{"timestamp", "date", "time"}
	// Auxiliary lists (reactions, per-message metadata repeats) duplicate
	// information already represented structurally and are stripped from
	// body text.
	auxListClasses = []string{"reactions", "reaction", "meta"}
)

// Extract scans raw markup for message blocks and returns the messages it
// can recover, in document order. It never fails on malformed input; an
// unrecognized export simply yields an empty slice.
func Extract(raw string) []archive.Message {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil
	}

	blocks := findBlocks(doc)

	var messages []archive.Message
	for _, block := range blocks {
		if m, ok := extractMessage(block); ok {
			messages = append(messages, m)
		}
	}
	return messages
}

// blockSelector yields candidate message blocks from a parsed document.
type blockSelector func(doc *html.Node) []*html.Node

// blockSelectors is the fallback chain, most specific first. The first
// selector that yields at least one block wins; this tolerates export
// format drift across producer versions.
var blockSelectors = []blockSelector{
	selectContainedMessages,
	selectMessages,
	selectGenericBlocks,
}

func findBlocks(doc *html.Node) []*html.Node {
	for _, sel := range blockSelectors {
		if blocks := sel(doc); len(blocks) > 0 {
			return blocks
		}
	}
	return nil
}

// selectContainedMessages matches message-classed elements inside a
// conversation container (the primary, container-qualified selector).
func selectContainedMessages(doc *html.Node) []*html.Node {
	var blocks []*html.Node
	walk(doc, func(n *html.Node) bool {
		if hasAnyClass(n, messageClasses) && hasAncestorClass(n, containerClasses) {
			blocks = append(blocks, n)
			return false // don't descend into a matched block
		}
		return true
	})
	return blocks
}

// selectMessages matches message-classed elements anywhere in the document.
func selectMessages(doc *html.Node) []*html.Node {
	var blocks []*html.Node
	walk(doc, func(n *html.Node) bool {
		if hasAnyClass(n, messageClasses) {
			blocks = append(blocks, n)
			return false
		}
		return true
	})
	return blocks
}

// selectGenericBlocks is the least specific fallback: any grouping element
// that directly holds both a heading and a content-shaped child.
func selectGenericBlocks(doc *html.Node) []*html.Node {
	var blocks []*html.Node
	walk(doc, func(n *html.Node) bool {
		if !isElement(n, "div", "section", "article", "li") {
			return true
		}
		var hasHeading, hasContent bool
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case isHeading(c):
				hasHeading = true
			case isElement(c, "p") || hasAnyClass(c, bodyClasses):
				hasContent = true
			}
		}
		if hasHeading && hasContent {
			blocks = append(blocks, n)
			return false
		}
		return true
	})
	return blocks
}

// extractMessage pulls sender, body, and timestamp text out of one block.
// Returns ok=false when the block carries no usable body text.
func extractMessage(block *html.Node) (archive.Message, bool) {
	sender := normalizeSpace(senderText(block))
	if sender == "" {
		sender = "Unknown"
	}

	bodyNode := findBody(block)
	if bodyNode == nil {
		return archive.Message{}, false
	}
	body := normalizeSpace(textContent(bodyNode, isAuxiliary))
	if body == "" {
		// An empty-body block carries no signal.
		return archive.Message{}, false
	}

	tsRaw := normalizeSpace(timestampText(block))

	return archive.Message{
		ID:           uuid.NewString(),
		Sender:       sender,
		Text:         body,
		TextNorm:     strings.ToLower(body),
		TimestampRaw: tsRaw,
		TimestampMs:  ParseTimestamp(tsRaw),
	}, true
}

// senderText returns the raw text of the block's first heading element, or
// of the first sender-classed element when no heading exists.
func senderText(block *html.Node) string {
	if h := findFirst(block, isHeading); h != nil {
		return textContent(h, nil)
	}
	if s := findFirst(block, func(n *html.Node) bool { return hasAnyClass(n, senderClasses) }); s != nil {
		return textContent(s, nil)
	}
	return ""
}

// findBody locates the designated content sub-element of a block: a
// body-classed element, falling back to the first paragraph.
func findBody(block *html.Node) *html.Node {
	if b := findFirst(block, func(n *html.Node) bool { return n != block && hasAnyClass(n, bodyClasses) }); b != nil {
		return b
	}
	return findFirst(block, func(n *html.Node) bool { return isElement(n, "p") })
}

// timestampText returns the raw text of the block's timestamp element:
// a <time> element or a time-classed element, searched outside the body.
func timestampText(block *html.Node) string {
	t := findFirst(block, func(n *html.Node) bool {
		return isElement(n, "time") || hasAnyClass(n, timeClasses)
	})
	if t == nil {
		return ""
	}
	return textContent(t, nil)
}

// isAuxiliary reports whether a node is an auxiliary list stripped from
// body text: any list element, or anything carrying a reaction/meta class.
func isAuxiliary(n *html.Node) bool {
	return isElement(n, "ul", "ol") || hasAnyClass(n, auxListClasses)
}

// --- node helpers ---

// walk visits nodes in document order. fn returns false to skip a subtree.
func walk(n *html.Node, fn func(*html.Node) bool) {
	if !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// findFirst returns the first node in document order matching pred.
func findFirst(root *html.Node, pred func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && pred(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

func isElement(n *html.Node, names ...string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, name := range names {
		if n.Data == name {
			return true
		}
	}
	return false
}

func isHeading(n *html.Node) bool {
	return isElement(n, "h1", "h2", "h3", "h4", "h5", "h6")
}

func hasAnyClass(n *html.Node, classes []string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, have := range strings.Fields(attr.Val) {
			for _, want := range classes {
				if strings.EqualFold(have, want) {
					return true
				}
			}
		}
	}
	return false
}

func hasAncestorClass(n *html.Node, classes []string) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if hasAnyClass(p, classes) {
			return true
		}
	}
	return false
}

// textContent collects the text nodes under root, skipping any subtree for
// which skip returns true. Adjacent fragments are joined with spaces;
// normalizeSpace collapses the result.
func textContent(root *html.Node, skip func(*html.Node) bool) string {
	var b strings.Builder
	walk(root, func(n *html.Node) bool {
		if skip != nil && n != root && skip(n) {
			return false
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		return true
	})
	return b.String()
}

// normalizeSpace collapses all whitespace runs (including newlines) to
// single spaces and trims the ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
