package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in update text is dropped and dangerous link targets are
// blanked; goldmark does both unless WithUnsafe is set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

func markdownToHTML(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // sanitized by goldmark
}
