// Package plaintext extracts the document tree from unmarked .txt
// manuscripts. With no markup available, classification is purely heuristic:
// a line-buffered state machine with explicit paragraph, list, code and
// blockquote states, fed lines that survived the noise filter.
package plaintext

import (
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/docforge/docparse/internal/bib"
	"github.com/docforge/docparse/internal/block"
	"github.com/docforge/docparse/internal/classify"
	"github.com/docforge/docparse/internal/docerr"
	"github.com/docforge/docparse/internal/metadata"
)

// Extractor parses .txt files.
type Extractor struct{}

// Extract parses the plain-text file at path into a document tree.
func (e *Extractor) Extract(path string) (*block.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, docerr.Wrap(docerr.Parse, path, "reading text file", err)
	}
	text := norm.NFC.String(string(data))
	text = strings.ReplaceAll(text, "\r\n", "\n")

	meta, bodyStart, err := metadata.Scan(text)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(text, "\n")
	body := ""
	if bodyStart < len(lines) {
		body = strings.Join(lines[bodyStart:], "\n")
	}

	main, bibText := bib.SplitText(body)
	nodes := parseContent(main)

	return &block.Document{
		Metadata:     meta,
		Content:      classify.Blocks(nodes),
		Bibliography: bib.EnsurePlaceholder(bib.Parse(bibText)),
	}, nil
}

type bufferKind int

const (
	bufNone bufferKind = iota
	bufParagraph
	bufList
	bufCode
	bufQuote
)

var (
	listLineRe   = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)]|\([0-9a-zA-Z]+\))\s+`)
	listMarkerRe = regexp.MustCompile(`^\s*(?:[-*•]|(\d+)[.)]|\(([0-9a-zA-Z]+)\))\s+`)
	orderedRe    = regexp.MustCompile(`^\s*\d+[.)]`)
	fenceLangRe  = regexp.MustCompile("^```(\\w+)")
	sepRowRe     = regexp.MustCompile(`^[\s|+\-=:]+$`)
)

// parseContent runs the line state machine over the body and returns the
// primitive node stream.
func parseContent(text string) []classify.Node {
	var nodes []classify.Node
	var buf []string
	kind := bufNone
	lang := ""
	inFence := false

	flush := func() {
		defer func() {
			buf = nil
			kind = bufNone
		}()
		if len(buf) == 0 {
			return
		}
		switch kind {
		case bufList:
			nodes = append(nodes, listNode(buf))
		case bufCode:
			nodes = append(nodes, classify.Node{Kind: classify.KindBlock, Block: block.Code{
				Language: lang,
				Content:  strings.Join(buf, "\n"),
			}})
			lang = ""
		case bufQuote:
			if n, ok := quoteNode(buf); ok {
				nodes = append(nodes, n)
			}
		default:
			joined := strings.TrimSpace(strings.Join(buf, "\n"))
			if joined == "" {
				return
			}
			switch {
			case isASCIITable(joined):
				nodes = append(nodes, classify.Node{Kind: classify.KindTable, Table: &block.Table{
					Data: asciiTableGrid(joined),
				}})
			default:
				if level, number, ok := classify.HeadingFromText(joined); ok {
					_, rest := classify.SplitHeadingNumber(joined)
					if number != "" && rest == joined {
						// roman numeral form: strip the "I. " prefix
						if i := strings.Index(joined, "."); i >= 0 {
							rest = strings.TrimSpace(joined[i+1:])
						}
					}
					nodes = append(nodes, classify.Node{Kind: classify.KindBlock, Block: block.Heading{
						Level:  level,
						Number: number,
						Text:   rest,
					}})
					return
				}
				nodes = append(nodes, classify.Node{Kind: classify.KindPara, Text: joined})
			}
		}
	}

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)

		if classify.IsNoiseLine(line) {
			continue
		}

		if strings.HasPrefix(stripped, "```") {
			if inFence {
				flush()
				inFence = false
			} else {
				flush()
				inFence = true
				kind = bufCode
				lang = fenceLanguage(stripped)
			}
			continue
		}
		if inFence {
			buf = append(buf, line)
			kind = bufCode
			continue
		}

		if stripped == "" {
			flush()
			continue
		}

		if strings.HasPrefix(stripped, ">") {
			if kind != bufQuote {
				flush()
				kind = bufQuote
			}
			buf = append(buf, line)
			continue
		}

		if listLineRe.MatchString(line) {
			if kind != bufList {
				flush()
				kind = bufList
			}
			buf = append(buf, line)
			continue
		}

		// Indented code: four spaces or a tab.
		if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			if kind != bufCode {
				flush()
				kind = bufCode
				lang = ""
			}
			buf = append(buf, line)
			continue
		}

		if kind == bufList || kind == bufQuote || kind == bufCode {
			flush()
		}
		if kind == bufNone {
			kind = bufParagraph
		}
		buf = append(buf, line)
	}
	flush()
	return nodes
}

func fenceLanguage(line string) string {
	if m := fenceLangRe.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// listNode converts buffered list lines into a List block. The ordered flag
// follows the first line's marker; captured numbering is kept per item.
func listNode(lines []string) classify.Node {
	items := make([]block.ListItem, 0, len(lines))
	for _, line := range lines {
		number := ""
		if m := listMarkerRe.FindStringSubmatch(line); m != nil {
			if m[1] != "" {
				number = m[1]
			} else if m[2] != "" {
				number = m[2]
			}
		}
		items = append(items, block.ListItem{
			Text:   strings.TrimSpace(listLineRe.ReplaceAllString(line, "")),
			Number: number,
		})
	}
	ordered := len(lines) > 0 && orderedRe.MatchString(lines[0])
	return classify.Node{Kind: classify.KindBlock, Block: block.List{Ordered: ordered, Items: items}}
}

// quoteNode strips the > prefixes and wraps the quoted text as a paragraph
// child so inline annotation still applies inside the quote. A quote that
// carried no text, such as a lone > marker, yields no node.
func quoteNode(lines []string) (classify.Node, bool) {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ">")))
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return classify.Node{}, false
	}
	return classify.Node{Kind: classify.KindBlock, Block: block.Blockquote{
		Children: []block.Block{classify.ParagraphBlock(text, nil)},
	}}, true
}

// isASCIITable recognizes pipe-drawn tables with at least one +--- separator
// row.
func isASCIITable(text string) bool {
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return false
	}
	pipes, seps := 0, 0
	for _, l := range lines {
		if strings.Contains(l, "|") {
			pipes++
		}
		if strings.Contains(l, "+") && strings.Contains(l, "-") {
			seps++
		}
	}
	return pipes >= 2 && seps >= 1
}

func asciiTableGrid(text string) [][]string {
	var rows [][]string
	for _, l := range strings.Split(text, "\n") {
		if !strings.Contains(l, "|") || sepRowRe.MatchString(l) {
			continue
		}
		parts := strings.Split(l, "|")
		if len(parts) > 0 && strings.TrimSpace(parts[0]) == "" {
			parts = parts[1:]
		}
		if len(parts) > 0 && strings.TrimSpace(parts[len(parts)-1]) == "" {
			parts = parts[:len(parts)-1]
		}
		row := make([]string, 0, len(parts))
		for _, c := range parts {
			row = append(row, strings.TrimSpace(c))
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows
}
