// Package markdown extracts the document tree from Markdown manuscripts.
// An optional YAML front matter block is parsed first and removed, the
// remaining body is rendered to an HTML tree with GFM extensions enabled,
// and each top-level element is dispatched by tag to a dedicated parser.
package markdown

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/docforge/docparse/internal/bib"
	"github.com/docforge/docparse/internal/block"
	"github.com/docforge/docparse/internal/classify"
	"github.com/docforge/docparse/internal/docerr"
	"github.com/docforge/docparse/internal/metadata"
)

// Extractor parses .md files.
type Extractor struct{}

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.TaskList, extension.Strikethrough),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Extract parses the Markdown file at path into a document tree.
func (e *Extractor) Extract(path string) (*block.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, docerr.Wrap(docerr.Parse, path, "reading markdown file", err)
	}

	front, body := splitFrontMatter(string(data))
	meta := parseFrontMatter(front)

	// Front matter is optional; when it does not carry the mandatory fields,
	// fall back to scanning the document head and keep the head out of the
	// body content.
	if metadata.Validate(meta) != nil {
		scanned, bodyStart, _ := metadata.Scan(body)
		mergeMetadata(&meta, scanned)
		if err := metadata.Validate(meta); err != nil {
			return nil, err
		}
		lines := strings.Split(body, "\n")
		if bodyStart < len(lines) {
			body = strings.Join(lines[bodyStart:], "\n")
		} else {
			body = ""
		}
	}
	if len(meta.Keywords) == 0 {
		meta.Keywords = metadata.BilingualKeywords(body)
	}

	contentMD, bibMD := bib.SplitText(body)
	nodes, err := e.parseContent(contentMD, filepath.Dir(path), path)
	if err != nil {
		return nil, err
	}
	entries, err := parseBibliography(bibMD, path)
	if err != nil {
		return nil, err
	}

	return &block.Document{
		Metadata:     meta,
		Content:      classify.Blocks(nodes),
		Bibliography: bib.EnsurePlaceholder(entries),
	}, nil
}

// splitFrontMatter removes a leading --- delimited key-value header.
func splitFrontMatter(text string) (front, body string) {
	if !strings.HasPrefix(text, "---") {
		return "", text
	}
	parts := strings.SplitN(text, "---", 3)
	if len(parts) < 3 {
		return "", text
	}
	return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
}

type authorYAML block.Author

func (a *authorYAML) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a.Name = strings.TrimSpace(value.Value)
		return nil
	}
	var aux struct {
		Name        string `yaml:"name"`
		Affiliation string `yaml:"affiliation"`
		Email       string `yaml:"email"`
	}
	if err := value.Decode(&aux); err != nil {
		return err
	}
	a.Name = aux.Name
	a.Affiliation = aux.Affiliation
	a.Email = aux.Email
	return nil
}

func parseFrontMatter(raw string) block.Metadata {
	meta := block.Metadata{Keywords: []string{}}
	if raw == "" {
		return meta
	}
	var fm struct {
		Title    string       `yaml:"title"`
		Authors  []authorYAML `yaml:"authors"`
		Abstract string       `yaml:"abstract"`
		Keywords yaml.Node    `yaml:"keywords"`
	}
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		log.Warn().Err(err).Msg("ignoring malformed front matter")
		return meta
	}
	meta.Title = strings.TrimSpace(fm.Title)
	meta.Abstract = strings.TrimSpace(fm.Abstract)
	for _, a := range fm.Authors {
		if strings.TrimSpace(a.Name) == "" {
			continue
		}
		meta.Authors = append(meta.Authors, block.Author(a))
	}
	switch fm.Keywords.Kind {
	case yaml.ScalarNode:
		meta.Keywords = metadata.SplitKeywords(fm.Keywords.Value)
	case yaml.SequenceNode:
		var kws []string
		if err := fm.Keywords.Decode(&kws); err == nil {
			for _, kw := range kws {
				if kw = strings.TrimSpace(kw); kw != "" {
					meta.Keywords = append(meta.Keywords, kw)
				}
			}
		}
	}
	return meta
}

// mergeMetadata fills empty fields of dst from src.
func mergeMetadata(dst *block.Metadata, src block.Metadata) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if len(dst.Keywords) == 0 {
		dst.Keywords = src.Keywords
	}
}

// parseContent renders the body and walks the element tree into primitive
// nodes for classification.
func (e *Extractor) parseContent(md, baseDir, path string) ([]classify.Node, error) {
	if strings.TrimSpace(md) == "" {
		return nil, nil
	}
	root, err := renderToDOM(md, path)
	if err != nil {
		return nil, err
	}
	var nodes []classify.Node
	root.Children().Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, parseElement(s, baseDir)...)
	})
	return nodes, nil
}

func renderToDOM(md, path string) (*goquery.Selection, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(md), &buf); err != nil {
		return nil, docerr.Wrap(docerr.Parse, path, "rendering markdown", err)
	}
	dom, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return nil, docerr.Wrap(docerr.Parse, path, "parsing rendered markdown", err)
	}
	body := dom.Find("body")
	if body.Length() == 0 {
		return dom.Selection, nil
	}
	return body.First(), nil
}

// parseElement dispatches one element by tag. Blockquotes recurse into the
// same dispatcher.
func parseElement(s *goquery.Selection, baseDir string) []classify.Node {
	switch tag := goquery.NodeName(s); tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := strings.TrimSpace(s.Text())
		if text == "" {
			// legal CommonMark: "## " renders an empty heading
			return nil
		}
		level := int(tag[1] - '0')
		number, rest := classify.SplitHeadingNumber(text)
		return []classify.Node{{Kind: classify.KindBlock, Block: block.Heading{
			Level:  level,
			Number: number,
			Text:   rest,
		}}}

	case "p":
		var nodes []classify.Node
		s.Find("img").Each(func(_ int, img *goquery.Selection) {
			if n := imageNode(img, baseDir); n != nil {
				nodes = append(nodes, *n)
			}
		})
		if text := strings.TrimSpace(s.Text()); text != "" {
			nodes = append(nodes, classify.Node{Kind: classify.KindPara, Text: text})
		}
		return nodes

	case "ul", "ol":
		return []classify.Node{{Kind: classify.KindBlock, Block: parseList(s, 0)}}

	case "pre":
		return []classify.Node{{Kind: classify.KindBlock, Block: parseCode(s)}}

	case "table":
		return []classify.Node{{Kind: classify.KindTable, Table: parseTable(s)}}

	case "img":
		if n := imageNode(s, baseDir); n != nil {
			return []classify.Node{*n}
		}
		return nil

	case "blockquote":
		q := parseBlockquote(s, baseDir)
		if len(q.Children) == 0 {
			return nil
		}
		return []classify.Node{{Kind: classify.KindBlock, Block: q}}

	case "hr":
		return []classify.Node{{Kind: classify.KindBlock, Block: block.Separator{}}}

	default:
		if text := strings.TrimSpace(s.Text()); text != "" {
			return []classify.Node{{Kind: classify.KindPara, Text: text}}
		}
		return nil
	}
}

func imageNode(img *goquery.Selection, baseDir string) *classify.Node {
	src, _ := img.Attr("src")
	if src == "" {
		return nil
	}
	alt, _ := img.Attr("alt")
	return &classify.Node{Kind: classify.KindImage, Image: &block.Figure{
		Caption:   strings.TrimSpace(alt),
		ImagePath: resolveImagePath(src, baseDir),
	}}
}

// resolveImagePath anchors a relative image source at the manuscript's
// directory. Remote sources pass through untouched; nothing is downloaded.
func resolveImagePath(src, baseDir string) string {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return src
	}
	return filepath.ToSlash(filepath.Clean(filepath.Join(baseDir, src)))
}

var taskItemRe = regexp.MustCompile(`^\s*\[([ xX])\]\s*(.+)$`)

// parseList recurses for nested sublists and detects task-list checkboxes
// per item, both the rendered input form and the literal [ ]/[x] form.
func parseList(s *goquery.Selection, depth int) block.List {
	list := block.List{Ordered: goquery.NodeName(s) == "ol", Items: []block.ListItem{}}
	s.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		item := block.ListItem{Level: depth}

		if input := checkboxOf(li); input != nil {
			_, checked := input.Attr("checked")
			item.Checked = &checked
		}

		text := elementText(li)
		if m := taskItemRe.FindStringSubmatch(text); m != nil {
			checked := strings.EqualFold(m[1], "x")
			item.Checked = &checked
			text = strings.TrimSpace(m[2])
		}
		item.Text = text

		li.ChildrenFiltered("ul, ol").Each(func(_ int, sub *goquery.Selection) {
			item.Children = append(item.Children, parseList(sub, depth+1))
		})
		list.Items = append(list.Items, item)
	})
	return list
}

// checkboxOf finds the item's own task-list checkbox, ignoring any that
// belong to nested sublists.
func checkboxOf(li *goquery.Selection) *goquery.Selection {
	input := li.ChildrenFiltered("input[type='checkbox']")
	if input.Length() == 0 {
		input = li.ChildrenFiltered("p").ChildrenFiltered("input[type='checkbox']")
	}
	if input.Length() == 0 {
		return nil
	}
	return input.First()
}

// elementText flattens the element's text, skipping nested sublists and
// checkbox inputs, collapsing whitespace runs to single spaces.
func elementText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if len(c.Nodes) == 0 {
			return
		}
		n := c.Nodes[0]
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			name := strings.ToLower(n.Data)
			if name == "ul" || name == "ol" || name == "input" {
				return
			}
			b.WriteString(" ")
			b.WriteString(elementText(c))
			b.WriteString(" ")
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

func parseCode(pre *goquery.Selection) block.Code {
	code := pre.ChildrenFiltered("code")
	if code.Length() == 0 {
		return block.Code{Content: pre.Text()}
	}
	lang := ""
	if cls, ok := code.First().Attr("class"); ok {
		for _, c := range strings.Fields(cls) {
			if strings.HasPrefix(c, "language-") {
				lang = strings.TrimPrefix(c, "language-")
				break
			}
		}
	}
	return block.Code{Language: lang, Content: code.First().Text()}
}

func parseTable(s *goquery.Selection) *block.Table {
	t := &block.Table{Caption: strings.TrimSpace(s.ChildrenFiltered("caption").Text())}
	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var row []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		if len(row) > 0 {
			t.Data = append(t.Data, row)
		}
	})
	return t
}

func parseBlockquote(s *goquery.Selection, baseDir string) block.Blockquote {
	var nodes []classify.Node
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if len(c.Nodes) == 0 {
			return
		}
		n := c.Nodes[0]
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				nodes = append(nodes, classify.Node{Kind: classify.KindPara, Text: text})
			}
		case html.ElementNode:
			nodes = append(nodes, parseElement(c, baseDir)...)
		}
	})
	return block.Blockquote{Children: classify.Blocks(nodes)}
}

// parseBibliography renders the references region and collects entries from
// list items and paragraph lines, attaching continuation lines to the
// previous entry.
func parseBibliography(md, path string) ([]block.BibEntry, error) {
	if strings.TrimSpace(md) == "" {
		return nil, nil
	}
	root, err := renderToDOM(md, path)
	if err != nil {
		return nil, err
	}

	var items []string
	root.Children().Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "ul", "ol":
			s.Find("li").Each(func(_ int, li *goquery.Selection) {
				if text := strings.TrimSpace(li.Text()); text != "" {
					items = append(items, text)
				}
			})
		case "p":
			for _, line := range strings.Split(s.Text(), "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if bib.HasNumbering(line) || len(items) == 0 {
					items = append(items, line)
				} else {
					items[len(items)-1] += " " + line
				}
			}
		}
	})

	entries := make([]block.BibEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, bib.Entry(item))
	}
	return entries, nil
}
