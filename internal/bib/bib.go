// Package bib locates the references section of a manuscript and splits it
// into minimal structured bibliography records. Entries keep their full raw
// text; structured fields beyond the citation id are best-effort only.
package bib

import (
	"regexp"
	"strings"

	"github.com/docforge/docparse/internal/block"
)

var (
	headingRe  = regexp.MustCompile(`^(?i)#{0,6}\s*(?:references|参考文献)\s*$`)
	blankRunRe = regexp.MustCompile(`\n\s*\n`)

	// Citation numbering at the start of an entry: [1], 1., 1), (1).
	entryIDRe = regexp.MustCompile(`^(?:\[(\d+(?:[,\-]\d+)*)\]|(\d+)[.)]|\((\d+)\))`)
)

// IsHeading reports whether a standalone line marks the references section.
func IsHeading(line string) bool {
	return headingRe.MatchString(strings.TrimSpace(line))
}

// SplitText splits raw text at the references heading. Everything before the
// heading is content, everything after it is candidate bibliography text.
// When no heading exists the whole text is content.
func SplitText(text string) (content, bibliography string) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if IsHeading(line) {
			return strings.TrimSpace(strings.Join(lines[:i], "\n")),
				strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
		}
	}
	return strings.TrimSpace(text), ""
}

// Parse segments bibliography text into entries. Segmentation is by
// blank-line runs; when the region has no blank lines it falls back to
// re-segmenting on lines that open with a citation-numbering pattern,
// attaching continuation lines to the previous entry.
func Parse(text string) []block.BibEntry {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	segments := blankRunRe.Split(text, -1)
	if len(segments) == 1 && len(text) > 100 {
		segments = splitByNumbering(text)
	}

	var entries []block.BibEntry
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		entries = append(entries, Entry(seg))
	}
	return entries
}

// Entry builds one bibliography record from segment text. Raw is always the
// full segment; the id is the first captured numbering group, if any.
func Entry(raw string) block.BibEntry {
	id := ""
	if m := entryIDRe.FindStringSubmatch(raw); m != nil {
		for _, g := range m[1:] {
			if g != "" {
				id = g
				break
			}
		}
	}
	return block.BibEntry{
		ID:      id,
		Type:    "misc",
		Authors: []string{},
		Raw:     raw,
	}
}

// HasNumbering reports whether a line opens with a citation-numbering
// pattern and therefore starts a new entry.
func HasNumbering(line string) bool {
	return entryIDRe.MatchString(strings.TrimSpace(line))
}

func splitByNumbering(text string) []string {
	var segments []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if entryIDRe.MatchString(strings.TrimSpace(line)) {
			if len(current) > 0 {
				segments = append(segments, strings.Join(current, "\n"))
			}
			current = []string{line}
			continue
		}
		if len(current) > 0 || strings.TrimSpace(line) != "" {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		segments = append(segments, strings.Join(current, "\n"))
	}
	return segments
}

// EnsurePlaceholder guarantees the bibliography is never empty, appending
// the documented placeholder entry when no references were found.
func EnsurePlaceholder(entries []block.BibEntry) []block.BibEntry {
	if len(entries) > 0 {
		return entries
	}
	return block.PlaceholderBibliography()
}
