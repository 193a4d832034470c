// Package docx extracts the document tree from Word-processor (.docx)
// containers. It walks the body's paragraph and table sequence in document
// order, classifies paragraphs by style name, tracks native and manually
// typed list numbering, and resolves embedded images through the
// relationship graph.
package docx

import (
	"archive/zip"
	"regexp"
	"strings"

	"github.com/docforge/docparse/internal/bib"
	"github.com/docforge/docparse/internal/block"
	"github.com/docforge/docparse/internal/classify"
	"github.com/docforge/docparse/internal/docerr"
	"github.com/docforge/docparse/internal/metadata"
)

// DefaultImagesDir is the conventional directory embedded images are written
// to, referenced by relative path from the document root.
const DefaultImagesDir = "parsed_images"

// Extractor parses .docx files. The zero value writes images to
// DefaultImagesDir.
type Extractor struct {
	ImagesDir string
}

func (e *Extractor) imagesDir() string {
	if e.ImagesDir != "" {
		return e.ImagesDir
	}
	return DefaultImagesDir
}

// Extract parses the container at path into a document tree. Malformed
// containers fail with a Parse error; unrecoverable mandatory metadata fails
// with a MissingField error.
func (e *Extractor) Extract(path string) (*block.Document, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, docerr.Wrap(docerr.Parse, path, "opening word-processor container", err)
	}
	defer rc.Close()

	doc, err := readDocument(&rc.Reader)
	if err != nil {
		return nil, docerr.Wrap(docerr.Parse, path, "reading document body", err)
	}
	styles := readStyles(&rc.Reader)
	rels := readRelationships(&rc.Reader)

	meta, head, err := extractMetadata(doc, styles)
	if err != nil {
		return nil, err
	}

	nodes, entries, err := e.walkBody(doc, styles, rels, &rc.Reader, head, path)
	if err != nil {
		return nil, err
	}

	return &block.Document{
		Metadata:     meta,
		Content:      classify.Blocks(nodes),
		Bibliography: bib.EnsurePlaceholder(entries),
	}, nil
}

var (
	headingStyleRe = regexp.MustCompile(`^(?i)heading\s*(\d)`)
	headingStyleZH = regexp.MustCompile(`^标题\s*(\d)`)
)

// headingLevel classifies a style name (or raw style id) as a heading level,
// recognizing "Heading N" and the localized "标题 N".
func headingLevel(styleName string) int {
	m := headingStyleRe.FindStringSubmatch(styleName)
	if m == nil {
		m = headingStyleZH.FindStringSubmatch(styleName)
	}
	if m == nil {
		return 0
	}
	return int(m[1][0] - '0')
}

func isTitleStyle(styleName string) bool {
	return strings.HasPrefix(strings.ToLower(styleName), "title")
}

func isCodeStyle(styleName string) bool {
	return strings.Contains(strings.ToLower(styleName), "code")
}

func styleName(styles map[string]string, p *paragraphXML) string {
	id := p.styleID()
	if name, ok := styles[id]; ok {
		return name
	}
	return id
}

// extractMetadata recovers the document head from body paragraphs and
// returns the set of body indices it consumed, so the head does not reappear
// as content. A paragraph explicitly styled as a title beats the first
// non-empty line.
func extractMetadata(doc *documentXML, styles map[string]string) (block.Metadata, map[int]bool, error) {
	meta := block.Metadata{Keywords: []string{}}
	head := map[int]bool{}

	type paraRef struct {
		idx   int
		text  string
		style string
	}
	var paras []paraRef
	for i, item := range doc.Body.Items {
		if item.Para == nil {
			continue
		}
		text := strings.TrimSpace(item.Para.text())
		if text == "" {
			continue
		}
		paras = append(paras, paraRef{idx: i, text: text, style: styleName(styles, item.Para)})
	}

	titlePos := -1
	for pos, pr := range paras {
		if isTitleStyle(pr.style) {
			titlePos = pos
			break
		}
	}
	if titlePos == -1 && len(paras) > 0 {
		titlePos = 0
	}
	if titlePos >= 0 {
		meta.Title = paras[titlePos].text
		head[paras[titlePos].idx] = true
	}

	// Author candidates: short paragraphs before the abstract marker.
	var authorLines []string
	var headTexts []string
	inAbstract := false
	for pos, pr := range paras {
		if pos == titlePos {
			continue
		}
		if metadata.IsKeywordsMarker(pr.text) {
			head[pr.idx] = true
			headTexts = append(headTexts, pr.text)
			break
		}
		if metadata.IsAbstractMarker(pr.text) {
			inAbstract = true
			head[pr.idx] = true
			headTexts = append(headTexts, pr.text)
			continue
		}
		if inAbstract {
			if headingLevel(pr.style) > 0 {
				break
			}
			head[pr.idx] = true
			headTexts = append(headTexts, pr.text)
			continue
		}
		if headingLevel(pr.style) > 0 {
			// a styled heading is body structure, never an author line
			continue
		}
		if len(strings.Fields(pr.text)) <= 20 {
			authorLines = append(authorLines, pr.text)
			head[pr.idx] = true
		}
	}

	meta.Authors = metadata.ParseAuthors(authorLines)
	headText := strings.Join(headTexts, "\n")
	meta.Abstract = metadata.BilingualAbstract(headText)
	meta.Keywords = metadata.BilingualKeywords(headText)

	if err := metadata.Validate(meta); err != nil {
		return meta, head, err
	}
	return meta, head, nil
}

// walkBody turns the ordered body into the primitive node stream and the raw
// bibliography entries. Everything after a standalone references heading is
// bibliography text.
func (e *Extractor) walkBody(doc *documentXML, styles map[string]string, rels map[string]string, zr *zip.Reader, head map[int]bool, path string) ([]classify.Node, []block.BibEntry, error) {
	var nodes []classify.Node
	var entries []block.BibEntry
	bibStarted := false

	for i, item := range doc.Body.Items {
		if item.Table != nil {
			t := &block.Table{Data: item.Table.grid()}
			nodes = append(nodes, classify.Node{Kind: classify.KindTable, Table: t})
			continue
		}

		p := item.Para

		// Images first: an image paragraph may carry no text at all.
		for _, rid := range p.embedIDs() {
			target, ok := rels[rid]
			if !ok {
				continue
			}
			ref, err := e.saveImage(zr, target)
			if err != nil {
				return nil, nil, docerr.Wrap(docerr.Parse, path, "extracting embedded image", err)
			}
			nodes = append(nodes, classify.Node{Kind: classify.KindImage, Image: &block.Figure{ImagePath: ref}})
		}

		text := strings.TrimSpace(p.text())
		if text == "" || head[i] {
			continue
		}

		if bib.IsHeading(text) {
			bibStarted = true
			continue
		}
		if bibStarted {
			entries = append(entries, bib.Entry(text))
			continue
		}

		name := styleName(styles, p)
		if lvl := headingLevel(name); lvl > 0 {
			number, rest := classify.SplitHeadingNumber(text)
			nodes = append(nodes, classify.Node{Kind: classify.KindBlock, Block: block.Heading{
				Level:  lvl,
				Number: number,
				Text:   rest,
			}})
			continue
		}
		if isCodeStyle(name) {
			nodes = append(nodes, classify.Node{Kind: classify.KindBlock, Block: block.Code{Content: text}})
			continue
		}

		if id, lvl, ok := p.listInfo(); ok {
			nodes = append(nodes, classify.Node{
				Kind: classify.KindPara,
				Text: text,
				List: &classify.ListInfo{ID: id, Level: lvl},
			})
			continue
		}
		if number, rest, ok := classify.ManualListItem(text); ok {
			nodes = append(nodes, classify.Node{
				Kind: classify.KindPara,
				Text: rest,
				List: &classify.ListInfo{ID: classify.ManualListID, Number: number},
			})
			continue
		}

		nodes = append(nodes, classify.Node{Kind: classify.KindPara, Text: text, Runs: styledRuns(p)})
	}

	return nodes, entries, nil
}

// styledRuns converts the paragraph's runs into the inline run model. Runs
// are only attached when at least one of them carries emphasis; a paragraph
// of uniform plain text gets no inline echo of itself.
func styledRuns(p *paragraphXML) []block.Run {
	var runs []block.Run
	styled := false
	for _, r := range p.Runs {
		if r.Text == "" {
			continue
		}
		br := block.Run{
			Text:      r.Text,
			Bold:      r.Props != nil && flagOn(r.Props.Bold),
			Italic:    r.Props != nil && flagOn(r.Props.Italic),
			Underline: r.Props != nil && underlineOn(r.Props.Underline),
		}
		if br.Bold || br.Italic || br.Underline {
			styled = true
		}
		runs = append(runs, br)
	}
	if !styled {
		return nil
	}
	return runs
}
