// Package slides extracts pptx decks: one block per slide, concatenating
// the slide's text frames in z-order (document order of the slide part).
package slides

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/infrastructure/extractor"
)

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

type Extractor struct{}

func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(_ context.Context, upload domain.RawUpload) ([]domain.ExtractedBlock, error) {
	r, err := zip.NewReader(bytes.NewReader(upload.Data), int64(len(upload.Data)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "open deck container", err)
	}

	parts := slideParts(r)
	if len(parts) == 0 {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "open deck container", fmt.Errorf("no slide parts found"))
	}

	var blocks []domain.ExtractedBlock
	for i, part := range parts {
		text, err := slideText(part.file)
		if err != nil {
			blocks = append(blocks, extractor.MarkerBlock(len(blocks)))
			continue
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, domain.ExtractedBlock{
			Ordinal: len(blocks),
			Kind:    domain.KindSlideText,
			Text:    fmt.Sprintf("Slide %d:\n%s", i+1, text),
		})
	}
	return blocks, nil
}

type slidePart struct {
	number int
	file   *zip.File
}

func slideParts(r *zip.Reader) []slidePart {
	var parts []slidePart
	for _, f := range r.File {
		m := slidePartPattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		parts = append(parts, slidePart{number: n, file: f})
	}
	sort.Slice(parts, func(a, b int) bool { return parts[a].number < parts[b].number })
	return parts
}

// slideText collects the a:t runs of one slide, one line per shape.
func slideText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open slide part: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)

	var (
		shapes []string
		shape  strings.Builder
		inText bool
	)
	flushShape := func() {
		s := strings.TrimSpace(shape.String())
		if s != "" {
			shapes = append(shapes, "- "+s)
		}
		shape.Reset()
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse slide xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				shape.WriteString("\n")
			case "sp", "graphicFrame":
				flushShape()
			}
		case xml.CharData:
			if inText {
				shape.Write(el)
			}
		}
	}
	flushShape()
	return strings.Join(shapes, "\n"), nil
}
