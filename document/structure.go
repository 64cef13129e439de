package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// titleMaxRunes is the length cutoff for the title heuristic: anything this
// long or longer is body text no matter its casing.
const titleMaxRunes = 50

// Classify labels a text block as a title or body text. The rule is a pure
// function of the trimmed text: short lines that are fully uppercase or lead
// with a digit (section numbers like "1. Introduction") become titles.
// There is no layout or font-size signal here; the heuristic is intentionally
// weak and its boundaries are load-bearing for API compatibility. In
// particular an empty trimmed string is body text, because the uppercase and
// leading-digit predicates are both false on empty input.
func Classify(b TextBlock) BlockType {
	return classifyText(strings.TrimSpace(b.Text))
}

func classifyText(trimmed string) BlockType {
	if utf8.RuneCountInString(trimmed) >= titleMaxRunes {
		return BlockText
	}
	if isUpper(trimmed) || leadsWithDigit(trimmed) {
		return BlockTitle
	}
	return BlockText
}

// isUpper reports whether the string contains at least one cased rune and no
// lowercase or title-case runes. Digits, punctuation, and spaces are uncased
// and do not disqualify, so "HELLO 42" counts as uppercase but "" and "---"
// do not.
func isUpper(s string) bool {
	hasCased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasCased = true
		}
	}
	return hasCased
}

func leadsWithDigit(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsDigit(r)
}

// classifyBlocks derives structure blocks 1:1 from text blocks, preserving
// order, geometry, and confidence. Content is the trimmed text.
func classifyBlocks(blocks []TextBlock) []StructureBlock {
	out := make([]StructureBlock, 0, len(blocks))
	for _, b := range blocks {
		trimmed := strings.TrimSpace(b.Text)
		out = append(out, StructureBlock{
			Type:       classifyText(trimmed),
			Content:    trimmed,
			BBox:       b.BBox,
			Confidence: b.Confidence,
		})
	}
	return out
}
