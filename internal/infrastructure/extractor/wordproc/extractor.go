// Package wordproc extracts legacy and modern word-processor documents.
// docx containers are read directly so in-document tables flatten to one
// block per row; .doc, .rtf, and .odt go through the generic converter and
// split into paragraph blocks.
package wordproc

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lu4p/cat"

	"github.com/inklyn/docchat/internal/core/domain"
)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(_ context.Context, upload domain.RawUpload) ([]domain.ExtractedBlock, error) {
	if bytes.HasPrefix(upload.Data, []byte("PK\x03\x04")) && !isODF(upload.Filename) {
		blocks, err := extractDocx(upload.Data)
		if err != nil {
			return nil, domain.WrapError(domain.ErrExtractionFailed, "read docx container", err)
		}
		return blocks, nil
	}
	return extractViaConverter(upload)
}

func isODF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".odt")
}

// extractViaConverter hands the bytes to the generic document converter,
// which dispatches on the file extension, and splits the flat text into
// paragraph blocks at blank lines.
func extractViaConverter(upload domain.RawUpload) ([]domain.ExtractedBlock, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if ext == "" {
		ext = ".txt"
	}

	tmp, err := os.CreateTemp("", "docchat-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(upload.Data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	text, err := cat.File(tmp.Name())
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "convert document", err)
	}

	var blocks []domain.ExtractedBlock
	for _, para := range splitParagraphs(text) {
		blocks = append(blocks, domain.ExtractedBlock{
			Ordinal: len(blocks),
			Kind:    domain.KindParagraph,
			Text:    para,
		})
	}
	return blocks, nil
}

func splitParagraphs(text string) []string {
	var out []string
	for _, part := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
