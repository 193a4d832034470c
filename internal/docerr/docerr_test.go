package docerr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(NotImplemented, "in.pdf", "unsupported file extension %q", ".pdf")
	s := err.Error()
	for _, want := range []string{"not_implemented", ".pdf", "in.pdf"} {
		if !strings.Contains(s, want) {
			t.Fatalf("error string %q missing %q", s, want)
		}
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Parse, "doc.docx", "opening container", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause lost")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("error string %q missing cause", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(NotFound, "x.txt", "missing"))
	if KindOf(err) != NotFound {
		t.Fatalf("kind = %v, want not_found", KindOf(err))
	}
	if KindOf(errors.New("untagged")) != 0 {
		t.Fatal("untagged error reported a kind")
	}
	if !IsKind(err, NotFound) || IsKind(err, Parse) {
		t.Fatal("IsKind mismatch")
	}
}

func TestKindStrings(t *testing.T) {
	cases := map[Kind]string{
		NotFound:        "not_found",
		NotImplemented:  "not_implemented",
		Parse:           "parse",
		MissingField:    "missing_field",
		SchemaViolation: "schema_violation",
		Kind(0):         "unknown",
	}
	for k, want := range cases {
		if k.String() != want {
			t.Fatalf("%d.String() = %q, want %q", k, k.String(), want)
		}
	}
}
