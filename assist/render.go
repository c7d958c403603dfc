package assist

import (
	"bytes"

	"github.com/yuin/goldmark"
)

// MarkdownHTML renders proposed Markdown to HTML for client-side preview.
func MarkdownHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
