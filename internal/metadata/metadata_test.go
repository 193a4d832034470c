package metadata

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleHead = `# Title

Alice Zhang (Tsinghua University)

Abstract: x

Keywords: a; b

Body starts here.`

func TestScanRecoversHead(t *testing.T) {
	meta, bodyStart, err := Scan(sampleHead)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if meta.Title != "Title" {
		t.Fatalf("title = %q", meta.Title)
	}
	if len(meta.Authors) != 1 {
		t.Fatalf("authors = %+v", meta.Authors)
	}
	if meta.Authors[0].Name != "Alice Zhang" || meta.Authors[0].Affiliation != "Tsinghua University" {
		t.Fatalf("author = %+v", meta.Authors[0])
	}
	if meta.Abstract != "x" {
		t.Fatalf("abstract = %q", meta.Abstract)
	}
	if !reflect.DeepEqual(meta.Keywords, []string{"a", "b"}) {
		t.Fatalf("keywords = %v", meta.Keywords)
	}

	lines := strings.Split(sampleHead, "\n")
	if got := strings.TrimSpace(strings.Join(lines[bodyStart:], "\n")); got != "Body starts here." {
		t.Fatalf("body from line %d = %q", bodyStart, got)
	}
}

func TestScanMissingAbstract(t *testing.T) {
	_, _, err := Scan("# T\n\nAuthor Name\n\nBody text without any head markers")
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Field != "abstract" {
		t.Fatalf("field = %q, want abstract", missing.Field)
	}
}

func TestScanEmptyInput(t *testing.T) {
	_, _, err := Scan("\n\n\n")
	var missing *MissingFieldError
	if !errors.As(err, &missing) || missing.Field != "title" {
		t.Fatalf("expected missing title, got %v", err)
	}
}

func TestParseAuthors(t *testing.T) {
	authors := ParseAuthors([]string{"Alice, Bob (MIT)"})
	if len(authors) != 2 {
		t.Fatalf("authors = %+v", authors)
	}
	if authors[0].Name != "Alice" || authors[0].Affiliation != "" {
		t.Fatalf("authors[0] = %+v", authors[0])
	}
	if authors[1].Name != "Bob" || authors[1].Affiliation != "MIT" {
		t.Fatalf("authors[1] = %+v", authors[1])
	}
}

func TestParseAuthorsStripsPrefixAndFullWidth(t *testing.T) {
	authors := ParseAuthors([]string{"作者：张三（清华大学）、李四"})
	if len(authors) != 2 {
		t.Fatalf("authors = %+v", authors)
	}
	if authors[0].Name != "张三" || authors[0].Affiliation != "清华大学" {
		t.Fatalf("authors[0] = %+v", authors[0])
	}
	if authors[1].Name != "李四" {
		t.Fatalf("authors[1] = %+v", authors[1])
	}
}

func TestBilingualAbstractPrefersEnglish(t *testing.T) {
	text := "摘要：中文内容\n\nAbstract: English content\n\nmore"
	if got := BilingualAbstract(text); got != "English content" {
		t.Fatalf("abstract = %q", got)
	}
}

func TestBilingualAbstractChineseOnly(t *testing.T) {
	if got := BilingualAbstract("摘要：只有中文\n\n正文"); got != "只有中文" {
		t.Fatalf("abstract = %q", got)
	}
}

func TestBilingualKeywordsPrefersEnglish(t *testing.T) {
	text := "关键词：机器学习；系统\n\nKeywords: learning; systems\n\nbody"
	got := BilingualKeywords(text)
	if !reflect.DeepEqual(got, []string{"learning", "systems"}) {
		t.Fatalf("keywords = %v", got)
	}
}

func TestSplitKeywords(t *testing.T) {
	got := SplitKeywords("a; b, c，d.")
	if !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Fatalf("keywords = %v", got)
	}
	if got := SplitKeywords(""); len(got) != 0 {
		t.Fatalf("empty input produced %v", got)
	}
}

func TestMarkers(t *testing.T) {
	if !IsAbstractMarker("## Abstract") || !IsAbstractMarker("摘 要") {
		t.Fatal("abstract markers not recognized")
	}
	if !IsKeywordsMarker("Keywords: a") || !IsKeywordsMarker("关键词：b") || !IsKeywordsMarker("Index Terms - x") {
		t.Fatal("keyword markers not recognized")
	}
	if IsAbstractMarker("The abstract notion of type") {
		t.Fatal("mid-sentence word matched as marker")
	}
}
