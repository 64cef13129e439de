package document

import (
	"strings"
	"testing"
)

func TestRenderFlat(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want string
	}{
		{"drops blank entries", []string{"Hello", "  ", "World"}, "Hello\n\nWorld"},
		{"trims entries", []string{"  a  ", "b"}, "a\n\nb"},
		{"empty input", nil, ""},
		{"all blank", []string{"", "   ", "\t"}, ""},
		{"single entry", []string{"only"}, "only"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := renderFlat(tc.in); got != tc.want {
				t.Fatalf("renderFlat(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRenderStructure(t *testing.T) {
	blocks := []StructureBlock{
		{Type: BlockTitle, Content: "Intro"},
		{Type: BlockText, Content: "Body"},
	}
	if got := renderStructure(blocks); got != "## Intro\n\nBody" {
		t.Fatalf("unexpected markdown: %q", got)
	}
}

func TestRenderStructureKeepsOrderAndEmptyContent(t *testing.T) {
	blocks := []StructureBlock{
		{Type: BlockText, Content: "first"},
		{Type: BlockText, Content: ""},
		{Type: BlockTitle, Content: "LAST"},
	}
	if got := renderStructure(blocks); got != "first\n\n\n\n## LAST" {
		t.Fatalf("unexpected markdown: %q", got)
	}
}

// Rendering is a pure function over the ordered block sequence.
func TestRenderStructureIdempotent(t *testing.T) {
	blocks := []StructureBlock{
		{Type: BlockTitle, Content: "A"},
		{Type: BlockText, Content: "b"},
	}
	first := renderStructure(blocks)
	for i := 0; i < 10; i++ {
		if got := renderStructure(blocks); got != first {
			t.Fatalf("render changed between calls")
		}
	}
}

func TestMarkdownHTML(t *testing.T) {
	html, err := MarkdownHTML("## Intro\n\nBody")
	if err != nil {
		t.Fatalf("MarkdownHTML() error = %v", err)
	}
	if !strings.Contains(html, "<h2>Intro</h2>") {
		t.Fatalf("missing heading in html: %q", html)
	}
	if !strings.Contains(html, "<p>Body</p>") {
		t.Fatalf("missing paragraph in html: %q", html)
	}
}
