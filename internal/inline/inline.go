// Package inline detects inline formulas, display formulas and reference
// markers inside paragraph text. The patterns are kept as named, individually
// testable predicates; the classifier applies them after block typing.
package inline

import (
	"regexp"
	"strings"
)

var (
	// Whole-paragraph display formulas: $$...$$ or \[...\].
	dollarBlockRe  = regexp.MustCompile(`(?s)^\s*\$\$(.*?)\$\$\s*$`)
	bracketBlockRe = regexp.MustCompile(`(?s)^\s*\\\[(.*?)\\\]\s*$`)

	// Numeric citation markers: [1], [1,2], [1-3]. A digit is required so
	// task-list markers like [ ] and [x] can never match.
	numericMarkerRe = regexp.MustCompile(`\[\s*\d[\d,\-\s]*\]`)

	// Author-year citations: (Smith, 2020), (Smith et al., 2020a).
	authorYearRe = regexp.MustCompile(`\([A-Z][A-Za-z\s,.]+\d{4}[a-z]?\)`)
)

// BlockFormula reports whether text is a whole-paragraph display formula and
// returns its LaTeX body. Such paragraphs are promoted to a FormulaBlock
// instead of staying paragraphs.
func BlockFormula(text string) (string, bool) {
	if m := dollarBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := bracketBlockRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// Formulas extracts inline $...$ formulas from text, excluding $$ display
// delimiters. Implemented as a scan because the exclusion needs context the
// regexp engine cannot express.
func Formulas(text string) []string {
	var out []string
	i := 0
	for i < len(text) {
		if text[i] != '$' {
			i++
			continue
		}
		if i+1 < len(text) && text[i+1] == '$' {
			i += 2
			continue
		}
		rel := strings.IndexByte(text[i+1:], '$')
		if rel < 0 {
			break
		}
		end := i + 1 + rel
		if end+1 < len(text) && text[end+1] == '$' {
			i = end + 2
			continue
		}
		body := strings.TrimSpace(text[i+1 : end])
		if body != "" {
			out = append(out, body)
		}
		i = end + 1
	}
	return out
}

// Markers extracts citation markers from text, combining the numeric-bracket
// and author-year forms. Markers keep their delimiters, e.g. "[1]".
func Markers(text string) []string {
	var markers []string
	markers = append(markers, numericMarkerRe.FindAllString(text, -1)...)
	markers = append(markers, authorYearRe.FindAllString(text, -1)...)
	return markers
}
