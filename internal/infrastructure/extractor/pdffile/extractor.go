// Package pdffile extracts PDF uploads page by page. Pages with a usable
// text layer contribute paragraph blocks; pages whose text is absent or
// below the density threshold are routed through the OCR fallback using
// the raster images embedded in the page.
package pdffile

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/core/ports"
	"github.com/inklyn/docchat/internal/infrastructure/extractor"
)

type Extractor struct {
	recognizer ports.Recognizer
	minDensity int
	workers    int
}

// New builds the PDF extractor. minDensity is the minimum number of
// text-layer characters a page must yield before OCR is skipped; workers
// bounds the per-page worker pool (OCR dominates latency, so pages run
// concurrently).
func New(recognizer ports.Recognizer, minDensity, workers int) *Extractor {
	if minDensity <= 0 {
		minDensity = 32
	}
	if workers <= 0 {
		workers = 4
	}
	return &Extractor{recognizer: recognizer, minDensity: minDensity, workers: workers}
}

// pageSource is one parsed document: a text layer per page plus the
// scanned-page fallback for pages whose layer is too thin.
type pageSource interface {
	pages() int
	text(pageNr int) (string, error)
	scan(ctx context.Context, pageNr int) (string, error)
}

type parsedPDF struct {
	extractor *Extractor
	reader    *pdf.Reader
	raw       []byte
}

func (p *parsedPDF) pages() int { return p.reader.NumPage() }

func (p *parsedPDF) text(pageNr int) (string, error) { return pageText(p.reader, pageNr) }

func (p *parsedPDF) scan(ctx context.Context, pageNr int) (string, error) {
	return p.extractor.recognizePage(ctx, p.raw, pageNr)
}

func (e *Extractor) Extract(ctx context.Context, upload domain.RawUpload) ([]domain.ExtractedBlock, error) {
	reader, err := pdf.NewReader(bytes.NewReader(upload.Data), int64(len(upload.Data)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtractionFailed, "open pdf", err)
	}
	return e.extractPages(ctx, &parsedPDF{extractor: e, reader: reader, raw: upload.Data}), nil
}

func (e *Extractor) extractPages(ctx context.Context, src pageSource) []domain.ExtractedBlock {
	numPages := src.pages()
	if numPages == 0 {
		return nil
	}
	return extractor.RunUnits(ctx, numPages, e.workers, func(ctx context.Context, i int) ([]domain.ExtractedBlock, error) {
		return e.extractPage(ctx, src, i+1)
	})
}

func (e *Extractor) extractPage(ctx context.Context, src pageSource, pageNr int) ([]domain.ExtractedBlock, error) {
	text, err := src.text(pageNr)
	if err != nil {
		return nil, fmt.Errorf("page %d text layer: %w", pageNr, err)
	}

	if len(strings.TrimSpace(text)) >= e.minDensity {
		return []domain.ExtractedBlock{{
			Kind: domain.KindParagraph,
			Text: text,
		}}, nil
	}

	// No usable text layer: treat the page as scanned and recognize its
	// embedded raster images instead.
	ocrText, err := src.scan(ctx, pageNr)
	if err != nil {
		return nil, fmt.Errorf("page %d ocr: %w", pageNr, err)
	}
	if ocrText == "" {
		slog.Debug("pdf_page_no_text", "page", pageNr)
		return nil, nil
	}
	return []domain.ExtractedBlock{{
		Kind: domain.KindOCRText,
		Text: ocrText,
	}}, nil
}

// pageText reads the text layer of one page. The underlying parser panics
// on some malformed content streams; a panic is converted into a per-page
// error so sibling pages keep going.
func pageText(reader *pdf.Reader, pageNr int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page parser panic: %v", r)
		}
	}()

	page := reader.Page(pageNr)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
