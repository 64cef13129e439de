package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
)

// renderFlat joins the non-blank entries, trimmed, with a blank line between
// each, producing a sequence of separate markdown paragraphs. Re-rendering
// the same input always yields the same string.
func renderFlat(texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(texts))
	for _, text := range texts {
		if stripped := strings.TrimSpace(text); stripped != "" {
			lines = append(lines, stripped)
		}
	}
	return strings.Join(lines, "\n\n")
}

// renderStructure renders classified blocks in aggregate order: titles become
// level-2 headings, everything else passes through verbatim.
func renderStructure(blocks []StructureBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Type == BlockTitle {
			parts = append(parts, "## "+b.Content)
		} else {
			parts = append(parts, b.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// MarkdownHTML converts a markdown rendering produced by this package into
// HTML. The API layer serves it when a client asks for format=html.
func MarkdownHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}
