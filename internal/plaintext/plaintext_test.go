package plaintext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docforge/docparse/internal/block"
)

// writeManuscript prefixes body with a minimal valid head so metadata
// recovery never interferes with the body behavior under test.
func writeManuscript(t *testing.T, body string) string {
	t.Helper()
	head := "A Study of Things\n\nAlice Zhang\n\nAbstract: This work studies things.\n\nKeywords: things; studies\n\n"
	path := filepath.Join(t.TempDir(), "doc.txt")
	if err := os.WriteFile(path, []byte(head+body), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func extract(t *testing.T, body string) *block.Document {
	t.Helper()
	var e Extractor
	doc, err := e.Extract(writeManuscript(t, body))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	return doc
}

func TestExtractMetadataAndBody(t *testing.T) {
	doc := extract(t, "1 Introduction\n\nWe study things [1].\n\nReferences\n\n[1] A. Author. Things. 2020.")

	if doc.Metadata.Title != "A Study of Things" {
		t.Fatalf("title = %q", doc.Metadata.Title)
	}
	if len(doc.Metadata.Authors) != 1 || doc.Metadata.Authors[0].Name != "Alice Zhang" {
		t.Fatalf("authors = %+v", doc.Metadata.Authors)
	}
	if doc.Metadata.Abstract != "This work studies things." {
		t.Fatalf("abstract = %q", doc.Metadata.Abstract)
	}

	if len(doc.Content) != 2 {
		t.Fatalf("content = %d blocks, want 2", len(doc.Content))
	}
	h, ok := doc.Content[0].(block.Heading)
	if !ok || h.Level != 1 || h.Number != "1" || h.Text != "Introduction" {
		t.Fatalf("heading = %+v", doc.Content[0])
	}
	p, ok := doc.Content[1].(block.Paragraph)
	if !ok || len(p.ReferenceMarkers) != 1 || p.ReferenceMarkers[0] != "[1]" {
		t.Fatalf("paragraph = %+v", doc.Content[1])
	}

	if len(doc.Bibliography) != 1 || doc.Bibliography[0].ID != "1" {
		t.Fatalf("bibliography = %+v", doc.Bibliography)
	}
}

func TestExtractDropsNoiseLines(t *testing.T) {
	doc := extract(t, "First paragraph.\n\n42\n\n=======\n\nSecond paragraph.")
	if len(doc.Content) != 2 {
		t.Fatalf("content = %d blocks, want 2", len(doc.Content))
	}
	for _, b := range doc.Content {
		p := b.(block.Paragraph)
		if p.Text == "42" || strings.Contains(p.Text, "==") {
			t.Fatalf("noise survived: %q", p.Text)
		}
	}
}

func TestExtractAllCapsHeading(t *testing.T) {
	doc := extract(t, "INTRODUCTION\n\nBody text here.")
	h, ok := doc.Content[0].(block.Heading)
	if !ok || h.Level != 1 || h.Text != "INTRODUCTION" {
		t.Fatalf("heading = %+v", doc.Content[0])
	}
}

func TestExtractFencedCode(t *testing.T) {
	doc := extract(t, "Before.\n\n```python\nprint(1)\nprint(2)\n```\n\nAfter.")
	if len(doc.Content) != 3 {
		t.Fatalf("content = %d blocks, want 3", len(doc.Content))
	}
	code, ok := doc.Content[1].(block.Code)
	if !ok {
		t.Fatalf("content[1] = %T, want Code", doc.Content[1])
	}
	if code.Language != "python" {
		t.Fatalf("language = %q", code.Language)
	}
	if code.Content != "print(1)\nprint(2)" {
		t.Fatalf("content = %q", code.Content)
	}
}

func TestExtractUnorderedList(t *testing.T) {
	doc := extract(t, "- apple\n- banana\n\nAfter.")
	list, ok := doc.Content[0].(block.List)
	if !ok {
		t.Fatalf("content[0] = %T, want List", doc.Content[0])
	}
	if list.Ordered {
		t.Fatal("dash list classified as ordered")
	}
	if len(list.Items) != 2 || list.Items[0].Text != "apple" {
		t.Fatalf("items = %+v", list.Items)
	}
}

func TestExtractOrderedList(t *testing.T) {
	doc := extract(t, "1. first\n2. second\n\nAfter.")
	list, ok := doc.Content[0].(block.List)
	if !ok || !list.Ordered {
		t.Fatalf("content[0] = %+v", doc.Content[0])
	}
	if list.Items[0].Number != "1" || list.Items[1].Number != "2" {
		t.Fatalf("items = %+v", list.Items)
	}
}

func TestExtractBlockquote(t *testing.T) {
	doc := extract(t, "> quoted text\n> second line\n\nAfter.")
	q, ok := doc.Content[0].(block.Blockquote)
	if !ok {
		t.Fatalf("content[0] = %T, want Blockquote", doc.Content[0])
	}
	p, ok := q.Children[0].(block.Paragraph)
	if !ok || p.Text != "quoted text\nsecond line" {
		t.Fatalf("child = %+v", q.Children[0])
	}
}

func TestExtractEmptyQuoteDropped(t *testing.T) {
	doc := extract(t, ">\n\nAfter.")
	if len(doc.Content) != 1 {
		t.Fatalf("content = %d blocks, want 1", len(doc.Content))
	}
	p, ok := doc.Content[0].(block.Paragraph)
	if !ok || p.Text != "After." {
		t.Fatalf("content[0] = %+v", doc.Content[0])
	}
}

func TestExtractASCIITable(t *testing.T) {
	table := strings.Join([]string{
		"+-----+-----+",
		"| a   | b   |",
		"+-----+-----+",
		"| 1   | 2   |",
		"+-----+-----+",
	}, "\n")
	doc := extract(t, table+"\n\nAfter.")
	tb, ok := doc.Content[0].(block.Table)
	if !ok {
		t.Fatalf("content[0] = %T, want Table", doc.Content[0])
	}
	want := [][]string{{"a", "b"}, {"1", "2"}}
	if len(tb.Data) != 2 {
		t.Fatalf("data = %+v", tb.Data)
	}
	for i, row := range want {
		for j, cell := range row {
			if tb.Data[i][j] != cell {
				t.Fatalf("data[%d][%d] = %q, want %q", i, j, tb.Data[i][j], cell)
			}
		}
	}
}

func TestExtractBibliographyFallback(t *testing.T) {
	refs := strings.Join([]string{
		"[1] A. Author. A sufficiently long reference line with a venue and a year, 2020.",
		"[2] B. Author. Another sufficiently long reference line with details, 2021.",
	}, "\n")
	doc := extract(t, "Body paragraph.\n\nReferences\n\n"+refs)
	if len(doc.Bibliography) != 2 {
		t.Fatalf("bibliography = %+v", doc.Bibliography)
	}
	if doc.Bibliography[1].ID != "2" {
		t.Fatalf("ids = %q, %q", doc.Bibliography[0].ID, doc.Bibliography[1].ID)
	}
}

func TestExtractPlaceholderBibliography(t *testing.T) {
	doc := extract(t, "Body with no references section.")
	if len(doc.Bibliography) != 1 || doc.Bibliography[0].Type != "misc" {
		t.Fatalf("bibliography = %+v", doc.Bibliography)
	}
}

func TestExtractMissingFile(t *testing.T) {
	var e Extractor
	if _, err := e.Extract(filepath.Join(t.TempDir(), "absent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
