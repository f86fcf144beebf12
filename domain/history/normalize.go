package history

import "strings"

// PlainText strips rich-text markup from a narrative field so that
// comparisons see the text the user actually changed, not editor noise.
// Tags are dropped, a few block tags become line breaks, common entities
// are decoded, and runs of whitespace collapse to single spaces.
func PlainText(markup string) string {
	var b strings.Builder
	b.Grow(len(markup))

	inTag := false
	tagStart := 0
	for i := 0; i < len(markup); i++ {
		c := markup[i]
		switch {
		case c == '<':
			inTag = true
			tagStart = i + 1
		case c == '>' && inTag:
			inTag = false
			if isBreakTag(markup[tagStart:i]) {
				b.WriteByte('\n')
			}
		case !inTag:
			b.WriteByte(c)
		}
	}

	text := b.String()
	for entity, repl := range entities {
		text = strings.ReplaceAll(text, entity, repl)
	}
	return strings.Join(strings.Fields(text), " ")
}

var entities = map[string]string{
	"&nbsp;": " ",
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": "\"",
	"&#39;":  "'",
}

func isBreakTag(tag string) bool {
	tag = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(tag), "/"))
	switch tag {
	case "br", "p", "/p", "div", "/div", "li", "/li":
		return true
	}
	return false
}
