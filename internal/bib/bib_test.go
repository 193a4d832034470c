package bib

import (
	"strings"
	"testing"
)

func TestIsHeading(t *testing.T) {
	for _, l := range []string{"References", "REFERENCES", "## References", "参考文献", "# 参考文献"} {
		if !IsHeading(l) {
			t.Fatalf("IsHeading(%q) = false, want true", l)
		}
	}
	for _, l := range []string{"References to prior work", "Cross references are listed below"} {
		if IsHeading(l) {
			t.Fatalf("IsHeading(%q) = true, want false", l)
		}
	}
}

func TestSplitText(t *testing.T) {
	text := "Intro paragraph.\n\nReferences\n\n[1] First.\n\n[2] Second."
	content, bibliography := SplitText(text)
	if content != "Intro paragraph." {
		t.Fatalf("content = %q", content)
	}
	if bibliography != "[1] First.\n\n[2] Second." {
		t.Fatalf("bibliography = %q", bibliography)
	}
}

func TestSplitTextWithoutHeading(t *testing.T) {
	content, bibliography := SplitText("Only body text.")
	if content != "Only body text." || bibliography != "" {
		t.Fatalf("got %q, %q", content, bibliography)
	}
}

func TestParseBlankLineSegments(t *testing.T) {
	entries := Parse("[1] A. Author. One. 2020.\n\n[2] B. Author. Two. 2021.")
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].ID != "1" || entries[1].ID != "2" {
		t.Fatalf("ids = %q, %q", entries[0].ID, entries[1].ID)
	}
	if entries[0].Raw != "[1] A. Author. One. 2020." {
		t.Fatalf("raw = %q", entries[0].Raw)
	}
}

func TestParseFallsBackToNumbering(t *testing.T) {
	lines := []string{
		"[1] A. Author. A fairly long first reference title. Journal of Examples, 2020.",
		"[2] B. Author. Another long reference with venue details. Proc. of Things, 2021.",
		"    continuation of the second entry",
		"[3] C. Author. Third entry. 2022.",
	}
	entries := Parse(strings.Join(lines, "\n"))
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[1].ID != "2" {
		t.Fatalf("entries[1].ID = %q", entries[1].ID)
	}
	if !strings.Contains(entries[1].Raw, "continuation of the second entry") {
		t.Fatalf("continuation line not attached: %q", entries[1].Raw)
	}
}

func TestParseEmpty(t *testing.T) {
	if entries := Parse("   \n  "); entries != nil {
		t.Fatalf("got %v, want nil", entries)
	}
}

func TestEntryIDForms(t *testing.T) {
	cases := []struct {
		raw string
		id  string
	}{
		{"[1] Bracketed.", "1"},
		{"[2,3] Ranged.", "2,3"},
		{"4. Dotted.", "4"},
		{"5) Closed.", "5"},
		{"(6) Parenthesized.", "6"},
		{"Unnumbered entry text.", ""},
	}
	for _, tc := range cases {
		e := Entry(tc.raw)
		if e.ID != tc.id {
			t.Fatalf("Entry(%q).ID = %q, want %q", tc.raw, e.ID, tc.id)
		}
		if e.Type != "misc" || e.Raw != tc.raw {
			t.Fatalf("Entry(%q) = %+v", tc.raw, e)
		}
	}
}

func TestHasNumbering(t *testing.T) {
	if !HasNumbering("[7] entry") || !HasNumbering("  8. entry") {
		t.Fatal("numbered lines not recognized")
	}
	if HasNumbering("plain continuation line") {
		t.Fatal("plain line recognized as numbered")
	}
}

func TestEnsurePlaceholder(t *testing.T) {
	entries := EnsurePlaceholder(nil)
	if len(entries) != 1 || entries[0].Type != "misc" {
		t.Fatalf("placeholder = %+v", entries)
	}

	existing := Parse("[1] Something.")
	if got := EnsurePlaceholder(existing); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("existing entries replaced: %+v", got)
	}
}
