package inline

import (
	"reflect"
	"testing"
)

func TestBlockFormula(t *testing.T) {
	latex, ok := BlockFormula("$$E = mc^2$$")
	if !ok || latex != "E = mc^2" {
		t.Fatalf("dollar form: got %q, %v", latex, ok)
	}

	latex, ok = BlockFormula(`\[ a + b \]`)
	if !ok || latex != "a + b" {
		t.Fatalf("bracket form: got %q, %v", latex, ok)
	}

	if _, ok := BlockFormula("text with $x$ inside"); ok {
		t.Fatal("inline formula must not classify as a block formula")
	}
	if _, ok := BlockFormula("prefix $$x$$"); ok {
		t.Fatal("display formula with leading text must not classify as a block formula")
	}
}

func TestFormulas(t *testing.T) {
	got := Formulas("where $E=mc^2$ holds and $x+y$ too")
	want := []string{"E=mc^2", "x+y"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Formulas = %v, want %v", got, want)
	}
}

func TestFormulasSkipsDisplayDelimiters(t *testing.T) {
	if got := Formulas("$$display$$"); len(got) != 0 {
		t.Fatalf("display delimiters leaked into inline formulas: %v", got)
	}
}

func TestFormulasUnterminated(t *testing.T) {
	if got := Formulas("price is $5"); len(got) != 0 {
		t.Fatalf("unterminated dollar produced formulas: %v", got)
	}
}

func TestMarkersNumeric(t *testing.T) {
	got := Markers("as shown in [1] and [2,3] and [4-6]")
	want := []string{"[1]", "[2,3]", "[4-6]"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Markers = %v, want %v", got, want)
	}
}

func TestMarkersIgnoreTaskCheckboxes(t *testing.T) {
	if got := Markers("- [ ] open and [x] done"); len(got) != 0 {
		t.Fatalf("checkbox brackets matched as markers: %v", got)
	}
}

func TestMarkersAuthorYear(t *testing.T) {
	got := Markers("earlier work (Smith et al., 2020a) agrees")
	if len(got) != 1 || got[0] != "(Smith et al., 2020a)" {
		t.Fatalf("Markers = %v", got)
	}
}
