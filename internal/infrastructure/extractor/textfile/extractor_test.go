package textfile

import (
	"context"
	"strings"
	"testing"

	"github.com/inklyn/docchat/internal/core/domain"
)

func extract(t *testing.T, filename string, data []byte) []domain.ExtractedBlock {
	t.Helper()
	blocks, err := New().Extract(context.Background(), domain.RawUpload{Filename: filename, Data: data})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return blocks
}

func TestExtractSplitsAtBlankLines(t *testing.T) {
	data := []byte("First paragraph\nstill first.\n\nSecond paragraph.\n\n\nThird.")
	blocks := extract(t, "notes.txt", data)

	if len(blocks) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(blocks))
	}
	if blocks[0].Text != "First paragraph\nstill first." {
		t.Fatalf("block 0 = %q", blocks[0].Text)
	}
	if blocks[2].Text != "Third." {
		t.Fatalf("block 2 = %q", blocks[2].Text)
	}
	for _, b := range blocks {
		if b.Kind != domain.KindParagraph {
			t.Fatalf("kind = %s, want paragraph", b.Kind)
		}
	}
}

func TestExtractCRLFInput(t *testing.T) {
	blocks := extract(t, "win.txt", []byte("one\r\n\r\ntwo"))
	if len(blocks) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(blocks))
	}
}

func TestExtractLatin1Fallback(t *testing.T) {
	// "café" in Latin-1: 0xE9 is invalid UTF-8 on its own.
	blocks := extract(t, "legacy.txt", []byte{'c', 'a', 'f', 0xE9})
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Text != "café" {
		t.Fatalf("block = %q, want café", blocks[0].Text)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	blocks := extract(t, "empty.txt", nil)
	if len(blocks) != 0 {
		t.Fatalf("expected no blocks for empty input, got %d", len(blocks))
	}
}

func TestExtractWhitespaceOnlyYieldsMarker(t *testing.T) {
	blocks := extract(t, "blank.txt", []byte("   \n\n \t "))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 marker block, got %d", len(blocks))
	}
	if blocks[0].Kind != domain.KindRawFallback {
		t.Fatalf("kind = %s, want raw-fallback", blocks[0].Kind)
	}
}

func TestExtractJSONPrettyPrinted(t *testing.T) {
	blocks := extract(t, "config.json", []byte(`{"name":"svc","port":8080}`))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if !strings.Contains(blocks[0].Text, "\"name\": \"svc\"") {
		t.Fatalf("JSON not pretty printed: %q", blocks[0].Text)
	}
}

func TestExtractInvalidJSONKeptAsText(t *testing.T) {
	blocks := extract(t, "broken.json", []byte(`{"name": oops`))
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Text != `{"name": oops` {
		t.Fatalf("block = %q, want the raw text kept", blocks[0].Text)
	}
}

func TestExtractYAMLCanonicalized(t *testing.T) {
	blocks := extract(t, "app.yaml", []byte("name:   svc\nport: 8080\n"))
	if len(blocks) == 0 {
		t.Fatal("expected blocks")
	}
	if !strings.Contains(blocks[0].Text, "name: svc") {
		t.Fatalf("YAML not canonicalized: %q", blocks[0].Text)
	}
}

func TestExtractHTMLDropsMarkupAndScripts(t *testing.T) {
	page := `<html><head><style>body{color:red}</style></head>` +
		`<body><h1>Title</h1><p>Visible text.</p><script>alert(1)</script></body></html>`
	blocks := extract(t, "page.html", []byte(page))

	joined := ""
	for _, b := range blocks {
		joined += b.Text + "\n"
	}
	if !strings.Contains(joined, "Title") || !strings.Contains(joined, "Visible text.") {
		t.Fatalf("visible text missing: %q", joined)
	}
	if strings.Contains(joined, "alert") || strings.Contains(joined, "color:red") {
		t.Fatalf("script or style content leaked: %q", joined)
	}
}
