package wordproc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/inklyn/docchat/internal/core/domain"
)

// extractDocx walks word/document.xml in document order. Top-level
// paragraphs become paragraph blocks; each table row becomes one table-row
// block with cells joined by " | ", so a row stays meaningful when later
// truncated independently of its table.
func extractDocx(data []byte) ([]domain.ExtractedBlock, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	var docPart *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docPart = f
			break
		}
	}
	if docPart == nil {
		return nil, fmt.Errorf("container has no word/document.xml")
	}

	rc, err := docPart.Open()
	if err != nil {
		return nil, fmt.Errorf("open document part: %w", err)
	}
	defer rc.Close()

	return parseDocumentXML(rc)
}

func parseDocumentXML(r io.Reader) ([]domain.ExtractedBlock, error) {
	dec := xml.NewDecoder(r)

	var blocks []domain.ExtractedBlock
	appendBlock := func(kind domain.BlockKind, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		blocks = append(blocks, domain.ExtractedBlock{
			Ordinal: len(blocks),
			Kind:    kind,
			Text:    text,
		})
	}

	var (
		para      strings.Builder
		row       []string
		cell      strings.Builder
		inTable   int
		inCell    bool
		inText    bool
		collectTo func(s string)
	)
	collectTo = func(s string) {
		if inCell {
			cell.WriteString(s)
			return
		}
		para.WriteString(s)
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "tbl":
				inTable++
			case "tr":
				row = row[:0]
			case "tc":
				inCell = true
				cell.Reset()
			case "p":
				if inTable == 0 {
					para.Reset()
				}
			case "t":
				inText = true
			case "tab":
				collectTo(" ")
			case "br":
				collectTo("\n")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "tbl":
				inTable--
			case "tr":
				appendBlock(domain.KindTableRow, strings.Join(row, " | "))
			case "tc":
				inCell = false
				row = append(row, strings.TrimSpace(cell.String()))
			case "p":
				if inTable == 0 {
					appendBlock(domain.KindParagraph, para.String())
				} else if inCell {
					cell.WriteString("\n")
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				collectTo(string(el))
			}
		}
	}
	return blocks, nil
}
