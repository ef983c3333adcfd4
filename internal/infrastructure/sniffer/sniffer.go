// Package sniffer determines a file's logical type from its name and, when
// the extension does not settle it, from content signatures. Classification
// never fails: unknown is a valid terminal answer and routes to the
// plain-text fallback extractor.
package sniffer

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"

	"github.com/inklyn/docchat/internal/core/domain"
)

var extensionTable = map[string]domain.LogicalType{
	".pdf":  domain.TypePDF,
	".doc":  domain.TypeLegacyDoc,
	".rtf":  domain.TypeLegacyDoc,
	".docx": domain.TypeModernDoc,
	".odt":  domain.TypeModernDoc,
	".csv":  domain.TypeDelimitedTable,
	".tsv":  domain.TypeDelimitedTable,
	".xlsx": domain.TypeSpreadsheet,
	".xls":  domain.TypeSpreadsheet,
	".pptx": domain.TypeSlideDeck,
	".json": domain.TypeStructuredText,
	".yaml": domain.TypeStructuredText,
	".yml":  domain.TypeStructuredText,
	".html": domain.TypeStructuredText,
	".htm":  domain.TypeStructuredText,
	".xml":  domain.TypeStructuredText,
	".md":   domain.TypePlainText,
	".txt":  domain.TypePlainText,
	".log":  domain.TypePlainText,
	".png":  domain.TypeImage,
	".jpg":  domain.TypeImage,
	".jpeg": domain.TypeImage,
	".gif":  domain.TypeImage,
	".bmp":  domain.TypeImage,
	".tiff": domain.TypeImage,
	".tif":  domain.TypeImage,
	".webp": domain.TypeImage,
}

type Sniffer struct{}

func New() *Sniffer { return &Sniffer{} }

// Classify applies, in order: trusted filename extension, content
// signature, zip-container manifest inspection, then unknown.
func (s *Sniffer) Classify(filename string, data []byte) domain.LogicalType {
	ext := strings.ToLower(filepath.Ext(filename))
	if t, ok := extensionTable[ext]; ok {
		return t
	}
	return classifyBySignature(data)
}

func classifyBySignature(data []byte) domain.LogicalType {
	switch {
	case len(data) == 0:
		return domain.TypeUnknown
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return domain.TypePDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return classifyZipContainer(data)
	case bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0}):
		// OLE compound file: legacy Office container.
		return domain.TypeLegacyDoc
	case bytes.HasPrefix(data, []byte("{\\rtf")):
		return domain.TypeLegacyDoc
	case isImageSignature(data):
		return domain.TypeImage
	default:
		return domain.TypeUnknown
	}
}

// classifyZipContainer disambiguates zip-based formats by their internal
// layout: word/ for documents, xl/ for workbooks, ppt/ for decks, and the
// ODF mimetype entry for OpenDocument text.
func classifyZipContainer(data []byte) domain.LogicalType {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return domain.TypeUnknown
	}
	for _, f := range r.File {
		switch {
		case f.Name == "word/document.xml":
			return domain.TypeModernDoc
		case f.Name == "xl/workbook.xml":
			return domain.TypeSpreadsheet
		case f.Name == "ppt/presentation.xml":
			return domain.TypeSlideDeck
		case f.Name == "mimetype":
			if isODFText(f) {
				return domain.TypeModernDoc
			}
		}
	}
	return domain.TypeUnknown
}

func isODFText(f *zip.File) bool {
	rc, err := f.Open()
	if err != nil {
		return false
	}
	defer rc.Close()

	buf := make([]byte, 64)
	n, _ := rc.Read(buf)
	return strings.Contains(string(buf[:n]), "opendocument.text")
}

func isImageSignature(data []byte) bool {
	prefixes := [][]byte{
		{0x89, 'P', 'N', 'G'},
		{0xFF, 0xD8, 0xFF},
		[]byte("GIF87a"),
		[]byte("GIF89a"),
		[]byte("BM"),
		{'I', 'I', 0x2A, 0x00},
		{'M', 'M', 0x00, 0x2A},
	}
	for _, p := range prefixes {
		if bytes.HasPrefix(data, p) {
			return true
		}
	}
	// RIFF....WEBP
	return len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}
