package render

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
)

// PlainText flattens rich-text HTML into a single line. Tags are dropped,
// entities decoded, and runs of whitespace collapsed to one space. Block
// boundaries become spaces so words from adjacent paragraphs don't fuse.
func PlainText(raw string) string {
	if raw == "" {
		return ""
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	skip := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "script", "style":
				if tt == xhtml.StartTagToken {
					skip++
				}
			case "p", "br", "div", "li", "pre", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "img":
				sb.WriteString(" ")
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li", "pre", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
				sb.WriteString(" ")
			}

		case xhtml.TextToken:
			if skip > 0 {
				continue
			}
			// Token() already unescapes; raw text may still carry
			// double-escaped entities from the editor.
			sb.WriteString(html.UnescapeString(tokenizer.Token().Data))
		}
	}
}
