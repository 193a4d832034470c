package classify

import (
	"regexp"
	"strings"
)

// The classification heuristics live here as named predicates so each can be
// exercised in isolation from the state machine that consumes them.

var captionRe = regexp.MustCompile(`^(?i)(表|table|图|figure)\s*[\d一二三四五六七八九十.\-]*[:：．.\s\-]*(.+)`)

// IsCaption reports whether a paragraph looks like a figure or table caption,
// in either English or Chinese form ("Figure 1: ...", "表1：...").
func IsCaption(text string) bool {
	return captionRe.MatchString(strings.TrimSpace(text))
}

// Manually-typed list numbering, tried in order: (1), 1., 1), a), i.
var manualListPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)^\((\d+)\)\s+(.+)$`),
	regexp.MustCompile(`(?s)^(\d+)\.\s+(.+)$`),
	regexp.MustCompile(`(?s)^(\d+)\)\s+(.+)$`),
	regexp.MustCompile(`(?s)^([a-z])\)\s+(.+)$`),
	regexp.MustCompile(`(?s)^([ivxIVX]+)\.\s+(.+)$`),
}

// ManualListItem detects a paragraph that was numbered by hand rather than
// through a native list property. It returns the marker and the remaining
// item text.
func ManualListItem(text string) (number, rest string, ok bool) {
	for _, re := range manualListPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], strings.TrimSpace(m[2]), true
		}
	}
	return "", "", false
}

var headingNumberRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+(.*)$`)

// SplitHeadingNumber splits a leading numeric path ("1.2 Title") off a
// heading's text. When no number is present the text comes back unchanged.
func SplitHeadingNumber(text string) (number, rest string) {
	if m := headingNumberRe.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	return "", text
}

var romanHeadingRe = regexp.MustCompile(`^(?i)([IVX]+)\.\s+(.+)`)

// HeadingFromText classifies an unmarked text line as a heading using three
// heuristics tried in order: dotted numeric prefix (level = dot count + 1),
// Roman numeral with an all-caps title, or a short all-caps line without
// terminal punctuation.
func HeadingFromText(text string) (level int, number string, ok bool) {
	stripped := strings.TrimSpace(text)

	if m := headingNumberRe.FindStringSubmatch(stripped); m != nil && strings.TrimSpace(m[2]) != "" {
		return strings.Count(m[1], ".") + 1, m[1], true
	}

	if m := romanHeadingRe.FindStringSubmatch(stripped); m != nil && isAllUpper(stripped) {
		return 1, strings.ToUpper(m[1]), true
	}

	if len(stripped) < 80 && isAllUpper(stripped) && !strings.ContainsAny(lastChar(stripped), ".!?") {
		return 1, "", true
	}

	return 0, "", false
}

func isAllUpper(s string) bool {
	if strings.ToLower(s) == s {
		// no letters at all, or all lowercase
		return false
	}
	return strings.ToUpper(s) == s
}

func lastChar(s string) string {
	if s == "" {
		return ""
	}
	return s[len(s)-1:]
}

var (
	pageNumberRe = regexp.MustCompile(`^\d+$`)
	ruleLineRe   = regexp.MustCompile(`^[-=_]{5,}$`)
	headerLineRe = regexp.MustCompile(`\b\d{4}\b.*\b\d+\s*$`)
)

// IsNoiseLine reports whether a plain-text line is layout noise that must be
// dropped before classification: a bare page number, a long rule, or a
// header/footer-looking line mixing a year with a trailing number.
func IsNoiseLine(line string) bool {
	stripped := strings.TrimSpace(line)
	if stripped == "" {
		return false
	}
	if pageNumberRe.MatchString(stripped) {
		return true
	}
	if ruleLineRe.MatchString(stripped) {
		return true
	}
	if len(stripped) < 100 && headerLineRe.MatchString(stripped) {
		return true
	}
	return false
}
