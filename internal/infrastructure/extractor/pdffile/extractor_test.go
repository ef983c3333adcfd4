package pdffile

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/inklyn/docchat/internal/core/domain"
	"github.com/inklyn/docchat/internal/infrastructure/extractor"
)

type recognizerStub struct{}

func (recognizerStub) Recognize(_ context.Context, _ image.Image) (string, error) {
	return "", nil
}

// sourceFake stands in for a parsed document: pageTexts holds the text
// layer per page and scanned the OCR fallback text, both 1-indexed.
type sourceFake struct {
	mu        sync.Mutex
	pageTexts map[int]string
	scanned   map[int]string
	textErr   map[int]error
	scanCalls []int
}

func (f *sourceFake) pages() int { return len(f.pageTexts) }

func (f *sourceFake) text(pageNr int) (string, error) {
	if err := f.textErr[pageNr]; err != nil {
		return "", err
	}
	return f.pageTexts[pageNr], nil
}

func (f *sourceFake) scan(_ context.Context, pageNr int) (string, error) {
	f.mu.Lock()
	f.scanCalls = append(f.scanCalls, pageNr)
	f.mu.Unlock()
	return f.scanned[pageNr], nil
}

func TestExtractPagesRoutesThinPageThroughOCR(t *testing.T) {
	src := &sourceFake{
		pageTexts: map[int]string{
			1: "The first page carries a perfectly ordinary text layer.",
			2: "",
			3: "The third page also has enough characters to keep its layer.",
		},
		scanned: map[int]string{2: "Scanned ledger totals for March."},
	}
	e := New(recognizerStub{}, 0, 0)

	blocks := e.extractPages(context.Background(), src)

	if len(blocks) != 3 {
		t.Fatalf("len(blocks) = %d, want 3", len(blocks))
	}
	if blocks[0].Kind != domain.KindParagraph || blocks[2].Kind != domain.KindParagraph {
		t.Fatalf("outer pages = %q/%q, want paragraph blocks", blocks[0].Kind, blocks[2].Kind)
	}
	if blocks[1].Kind != domain.KindOCRText {
		t.Fatalf("middle page kind = %q, want %q", blocks[1].Kind, domain.KindOCRText)
	}
	if blocks[1].Text != "Scanned ledger totals for March." {
		t.Fatalf("middle page text = %q", blocks[1].Text)
	}
	for i, b := range blocks {
		if b.Ordinal != i {
			t.Fatalf("blocks[%d].Ordinal = %d", i, b.Ordinal)
		}
	}
	if len(src.scanCalls) != 1 || src.scanCalls[0] != 2 {
		t.Fatalf("scan calls = %v, want only page 2", src.scanCalls)
	}
}

func TestExtractPagesBelowDensityThresholdScans(t *testing.T) {
	// A present but thin text layer still routes through OCR.
	src := &sourceFake{
		pageTexts: map[int]string{1: "p.1"},
		scanned:   map[int]string{1: "recognized body text"},
	}
	e := New(recognizerStub{}, 32, 1)

	blocks := e.extractPages(context.Background(), src)
	if len(blocks) != 1 || blocks[0].Kind != domain.KindOCRText {
		t.Fatalf("blocks = %+v, want one ocr-text block", blocks)
	}
}

func TestExtractPagesSkipsUnrecognizablePage(t *testing.T) {
	src := &sourceFake{
		pageTexts: map[int]string{
			1: "Only the first page yields anything, the second stays blank.",
			2: "",
		},
		scanned: map[int]string{},
	}
	e := New(recognizerStub{}, 0, 0)

	blocks := e.extractPages(context.Background(), src)
	if len(blocks) != 1 || blocks[0].Kind != domain.KindParagraph {
		t.Fatalf("blocks = %+v, want the text page only", blocks)
	}
}

func TestExtractPagesMarksFailedPage(t *testing.T) {
	src := &sourceFake{
		pageTexts: map[int]string{
			1: "A healthy page surrounded by a broken sibling underneath it.",
			2: "",
		},
		textErr: map[int]error{2: errors.New("content stream panic")},
	}
	e := New(recognizerStub{}, 0, 0)

	blocks := e.extractPages(context.Background(), src)
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2", len(blocks))
	}
	if blocks[1].Kind != domain.KindRawFallback || blocks[1].Text != extractor.UnitMarkerText {
		t.Fatalf("blocks[1] = %+v, want failed-unit marker", blocks[1])
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	e := New(recognizerStub{}, 0, 0)

	_, err := e.Extract(context.Background(), domain.RawUpload{
		Filename: "bad.pdf",
		Data:     []byte("%PDF-1.7 truncated garbage"),
	})
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected extraction-failed kind, got %v", err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	e := New(recognizerStub{}, 0, 0)
	if e.minDensity != 32 {
		t.Fatalf("minDensity = %d, want 32", e.minDensity)
	}
	if e.workers != 4 {
		t.Fatalf("workers = %d, want 4", e.workers)
	}
}
