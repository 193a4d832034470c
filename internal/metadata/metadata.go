// Package metadata recovers title, authors, abstract and keywords from the
// head of a manuscript. The scanner works on plain lines so the Markdown and
// plain-text extractors share it; the word-processor extractor applies the
// same markers over its own paragraph walk.
package metadata

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/docforge/docparse/internal/block"
)

// MissingFieldError reports a mandatory metadata field that could not be
// recovered. A document failing metadata extraction is rejected rather than
// passed through with empty fields.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("mandatory metadata field %q could not be recovered", e.Field)
}

var (
	// Section markers, tolerant of a Markdown heading prefix. The Chinese
	// variants deliberately avoid \b, which is ASCII-only in RE2.
	abstractMarkerRe = regexp.MustCompile(`^(?i)#{0,6}\s*(?:abstract\b|摘\s*要)`)
	keywordsMarkerRe = regexp.MustCompile(`^(?i)#{0,6}\s*(?:keywords\b|index\s+terms\b|key\s+words\b|关键词)`)
	authorPrefixRe   = regexp.MustCompile(`^(?i)(?:authors?|作者)\s*[:：]`)

	// Bilingual value capture over the whole head text. English is preferred
	// when both languages are present.
	abstractENRe = regexp.MustCompile(`(?is)\babstract\s*[:：]?\s*(.*?)(?:\n\s*\n|\n\s*#{0,6}\s*keywords|\n关键词|$)`)
	abstractZHRe = regexp.MustCompile(`(?s)摘\s*要\s*[:：]?\s*(.*?)(?:\n\s*\n|\n关键词|\nAbstract|$)`)
	keywordsENRe = regexp.MustCompile(`(?is)(?:keywords|index\s+terms|key\s+words)\s*[:：\-—]?\s*(.*?)(?:\n\s*\n|\n关键词|\n\s*#|$)`)
	keywordsZHRe = regexp.MustCompile(`(?s)关键词\s*[:：\-—]?\s*(.*?)(?:\n\s*\n|\nKeywords|\n\s*#|$)`)

	authorSegmentRe = regexp.MustCompile(`^([^(（]+)(?:[(（]([^)）]+)[)）])?`)
	keywordSplitRe  = regexp.MustCompile(`[;,，、；]`)
)

// Scan recovers metadata from the head of a line-oriented document and
// returns the line index where body content begins, so callers can keep the
// head out of the classified content. It fails with MissingFieldError when
// title, authors or abstract cannot be recovered.
func Scan(text string) (block.Metadata, int, error) {
	meta := block.Metadata{Keywords: []string{}}
	lines := strings.Split(text, "\n")

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return meta, 0, &MissingFieldError{Field: "title"}
	}
	meta.Title = cleanTitle(lines[i])
	i++

	// Author candidates: short lines between the title and the abstract
	// marker. A long line means body text started without an abstract, which
	// the mandatory-field check below will reject.
	var authorLines []string
	for ; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i])
		if t == "" {
			continue
		}
		if abstractMarkerRe.MatchString(t) || keywordsMarkerRe.MatchString(t) {
			break
		}
		if len(strings.Fields(t)) > 20 {
			break
		}
		authorLines = append(authorLines, t)
	}
	meta.Authors = ParseAuthors(authorLines)

	head := strings.Join(lines, "\n")
	meta.Abstract = BilingualAbstract(head)
	meta.Keywords = BilingualKeywords(head)

	end := headEnd(lines, i)
	if err := Validate(meta); err != nil {
		return meta, end, err
	}
	return meta, end, nil
}

// IsAbstractMarker reports whether a line opens the abstract section in
// either language.
func IsAbstractMarker(line string) bool {
	return abstractMarkerRe.MatchString(strings.TrimSpace(line))
}

// IsKeywordsMarker reports whether a line opens the keyword list.
func IsKeywordsMarker(line string) bool {
	return keywordsMarkerRe.MatchString(strings.TrimSpace(line))
}

// headEnd walks forward from the first marker line through the abstract and
// keywords sections and returns the index of the first body line.
func headEnd(lines []string, from int) int {
	end := from
	inSection := false
	for j := from; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if t == "" {
			if inSection {
				inSection = false
				end = j + 1
			}
			continue
		}
		switch {
		case abstractMarkerRe.MatchString(t):
			inSection = true
			end = j + 1
		case keywordsMarkerRe.MatchString(t):
			inSection = true
			end = j + 1
		case inSection:
			end = j + 1
		default:
			return end
		}
	}
	return end
}

// ParseAuthors splits candidate author lines on the common separators and
// captures an optional parenthetical affiliation per name.
func ParseAuthors(lines []string) []block.Author {
	var authors []block.Author
	for _, line := range lines {
		line = strings.TrimSpace(authorPrefixRe.ReplaceAllString(line, ""))
		for _, seg := range keywordSplitRe.Split(line, -1) {
			seg = strings.TrimSpace(seg)
			if len([]rune(seg)) < 2 {
				continue
			}
			m := authorSegmentRe.FindStringSubmatch(seg)
			if m == nil {
				continue
			}
			name := strings.TrimSpace(m[1])
			if name == "" {
				continue
			}
			authors = append(authors, block.Author{
				Name:        name,
				Affiliation: strings.TrimSpace(m[2]),
			})
		}
	}
	return authors
}

// BilingualAbstract captures the abstract text following an Abstract or 摘要
// marker, preferring the English variant when both exist.
func BilingualAbstract(text string) string {
	if m := abstractENRe.FindStringSubmatch(text); m != nil {
		if a := strings.TrimSpace(m[1]); a != "" {
			return a
		}
	}
	if m := abstractZHRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// BilingualKeywords captures and splits the keyword list following a
// Keywords / Index Terms / 关键词 marker, preferring English when both exist.
func BilingualKeywords(text string) []string {
	if m := keywordsENRe.FindStringSubmatch(text); m != nil {
		if kws := SplitKeywords(m[1]); len(kws) > 0 {
			return kws
		}
	}
	if m := keywordsZHRe.FindStringSubmatch(text); m != nil {
		return SplitKeywords(m[1])
	}
	return []string{}
}

// SplitKeywords splits raw keyword text on the separators `;,，、；` and trims
// a trailing period.
func SplitKeywords(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimSuffix(raw, ".")
	out := []string{}
	for _, kw := range keywordSplitRe.Split(raw, -1) {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// Validate enforces the mandatory-field invariant: title, at least one
// author, and a non-empty abstract.
func Validate(m block.Metadata) error {
	if strings.TrimSpace(m.Title) == "" {
		return &MissingFieldError{Field: "title"}
	}
	if len(m.Authors) == 0 {
		return &MissingFieldError{Field: "authors"}
	}
	if strings.TrimSpace(m.Abstract) == "" {
		return &MissingFieldError{Field: "abstract"}
	}
	return nil
}

func cleanTitle(line string) string {
	t := strings.TrimSpace(line)
	t = strings.TrimLeft(t, "#")
	return strings.TrimSpace(t)
}
