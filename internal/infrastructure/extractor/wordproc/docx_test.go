package wordproc

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/inklyn/docchat/internal/core/domain"
)

const documentXMLTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>%s</w:body>
</w:document>`

func docxBytes(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := f.Write([]byte(strings.Replace(documentXMLTemplate, "%s", body, 1))); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return buf.Bytes()
}

func para(text string) string {
	return `<w:p><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func tableRow(cells ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:tr>")
	for _, c := range cells {
		sb.WriteString("<w:tc>" + para(c) + "</w:tc>")
	}
	sb.WriteString("</w:tr>")
	return sb.String()
}

func TestExtractDocxParagraphs(t *testing.T) {
	data := docxBytes(t, para("First paragraph.")+para("Second paragraph."))

	blocks, err := New().Extract(context.Background(), domain.RawUpload{Filename: "doc.docx", Data: data})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Text != "First paragraph." || blocks[0].Kind != domain.KindParagraph {
		t.Fatalf("block 0 = %+v", blocks[0])
	}
	if blocks[1].Text != "Second paragraph." {
		t.Fatalf("block 1 = %q", blocks[1].Text)
	}
}

func TestExtractDocxTableRowPerBlock(t *testing.T) {
	body := para("Intro.") +
		"<w:tbl>" + tableRow("name", "role") + tableRow("ada", "engineer") + "</w:tbl>" +
		para("Outro.")
	data := docxBytes(t, body)

	blocks, err := New().Extract(context.Background(), domain.RawUpload{Filename: "doc.docx", Data: data})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d: %+v", len(blocks), blocks)
	}
	if blocks[1].Kind != domain.KindTableRow || blocks[1].Text != "name | role" {
		t.Fatalf("block 1 = %+v, want joined header row", blocks[1])
	}
	if blocks[2].Text != "ada | engineer" {
		t.Fatalf("block 2 = %q", blocks[2].Text)
	}
	if blocks[3].Kind != domain.KindParagraph || blocks[3].Text != "Outro." {
		t.Fatalf("block 3 = %+v, want paragraph after table", blocks[3])
	}
}

func TestExtractDocxTabsAndBreaks(t *testing.T) {
	body := `<w:p><w:r><w:t>left</w:t><w:tab/><w:t>right</w:t><w:br/><w:t>next line</w:t></w:r></w:p>`
	data := docxBytes(t, body)

	blocks, err := New().Extract(context.Background(), domain.RawUpload{Filename: "doc.docx", Data: data})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Text != "left right\nnext line" {
		t.Fatalf("block = %q", blocks[0].Text)
	}
}

func TestExtractDocxEmptyParagraphsSkipped(t *testing.T) {
	data := docxBytes(t, para("Content.")+`<w:p/>`+para("  "))

	blocks, err := New().Extract(context.Background(), domain.RawUpload{Filename: "doc.docx", Data: data})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
}

func TestExtractDocxMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, _ := w.Create("other.xml")
	_, _ = f.Write([]byte("<x/>"))
	_ = w.Close()

	_, err := New().Extract(context.Background(), domain.RawUpload{Filename: "doc.docx", Data: buf.Bytes()})
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected extraction-failed kind, got %v", err)
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("one\n\ntwo\r\n\r\nthree\n\n\n")
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("splitParagraphs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("part %d = %q, want %q", i, got[i], want[i])
		}
	}
}
