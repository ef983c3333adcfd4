// Package normalize flattens raw extractor output into the canonical block
// sequence: control characters stripped, whitespace collapsed, empty blocks
// dropped, ordinals re-numbered densely from zero.
package normalize

import (
	"strings"
	"unicode"

	"github.com/inklyn/docchat/internal/core/domain"
)

// Blocks rewrites the slice into normalized form. Input order is preserved;
// the result has dense ordinals 0..n-1 and CharCount equal to len(Text).
func Blocks(sourceID string, in []domain.ExtractedBlock) []domain.ExtractedBlock {
	out := make([]domain.ExtractedBlock, 0, len(in))
	for _, b := range in {
		text := Text(b.Text)
		if text == "" {
			continue
		}
		out = append(out, domain.ExtractedBlock{
			SourceID:  sourceID,
			Ordinal:   len(out),
			Kind:      b.Kind,
			Text:      text,
			CharCount: len(text),
		})
	}
	return out
}

// Text strips control characters and collapses redundant whitespace while
// keeping single line breaks, so later truncation still sees line
// boundaries.
func Text(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = collapseSpaces(stripControl(line))
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
