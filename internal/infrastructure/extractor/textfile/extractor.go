// Package textfile is the guaranteed fallback extractor. It decodes the
// upload as text (UTF-8, then Latin-1 as best effort), applies a
// structured-format pass for JSON/YAML/HTML, and splits the result into
// paragraph blocks at blank-line boundaries. It produces at least one
// block for any non-empty input.
package textfile

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/inklyn/docchat/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(_ context.Context, upload domain.RawUpload) ([]domain.ExtractedBlock, error) {
	if len(upload.Data) == 0 {
		return nil, nil
	}

	text := decodeText(upload.Data)
	if structured := structuredPass(upload.Filename, text); structured != "" {
		text = structured
	}

	var blocks []domain.ExtractedBlock
	for _, para := range splitParagraphs(text) {
		blocks = append(blocks, domain.ExtractedBlock{
			Ordinal: len(blocks),
			Kind:    domain.KindParagraph,
			Text:    para,
		})
	}
	if len(blocks) == 0 {
		// Whitespace-only input still yields one raw block so a non-empty
		// upload is never silently dropped.
		blocks = append(blocks, domain.ExtractedBlock{
			Kind: domain.KindRawFallback,
			Text: "[no readable text]",
		})
	}
	return blocks, nil
}

// decodeText returns valid UTF-8 for any input: verbatim when already
// valid, otherwise decoded as Latin-1, which never fails.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// structuredPass canonicalizes JSON, YAML, and HTML content by extension.
// It returns "" when the content does not parse, in which case the caller
// keeps the plain-text path.
func structuredPass(filename, text string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return prettyJSON(text)
	case ".yaml", ".yml":
		return canonicalYAML(text)
	case ".html", ".htm":
		return htmlText(text)
	default:
		return ""
	}
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
