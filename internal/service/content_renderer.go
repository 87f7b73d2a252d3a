package service

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ContentRenderer turns post bodies into sanitized HTML.
// Bodies use blank-line paragraphs, "## " headings and "- " list items, all of which are Markdown.
type ContentRenderer struct {
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewContentRenderer builds a renderer with GFM enabled and the UGC sanitizing policy.
func NewContentRenderer() *ContentRenderer {
	return &ContentRenderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithRendererOptions(html.WithXHTML()),
		),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Render converts content to HTML and strips anything unsafe.
func (r *ContentRenderer) Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	return r.sanitizer.Sanitize(buf.String()), nil
}
