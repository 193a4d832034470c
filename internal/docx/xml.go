package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Minimal OOXML decoding layer. Only the parts of WordprocessingML the
// extractor consumes are modeled; everything else is skipped. Body order is
// preserved by decoding w:p and w:tbl through one token loop instead of
// separate struct fields, which would group paragraphs and tables by type.

type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    bodyXML  `xml:"body"`
}

type bodyXML struct {
	Items []bodyItem
}

type bodyItem struct {
	Para  *paragraphXML
	Table *tableXML
}

func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				var p paragraphXML
				if err := d.DecodeElement(&p, &t); err != nil {
					return err
				}
				b.Items = append(b.Items, bodyItem{Para: &p})
			case "tbl":
				var tb tableXML
				if err := d.DecodeElement(&tb, &t); err != nil {
					return err
				}
				b.Items = append(b.Items, bodyItem{Table: &tb})
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type paragraphXML struct {
	Props *paraPropsXML
	Runs  []runXML
}

// Paragraph children are walked by hand so runs wrapped in w:hyperlink still
// contribute their text and styling.
func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				var pr paraPropsXML
				if err := d.DecodeElement(&pr, &t); err != nil {
					return err
				}
				p.Props = &pr
			case "r":
				var r runXML
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case "hyperlink":
				var h hyperlinkXML
				if err := d.DecodeElement(&h, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, h.Runs...)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

type hyperlinkXML struct {
	Runs []runXML `xml:"r"`
}

type paraPropsXML struct {
	Style *valAttr  `xml:"pStyle"`
	NumPr *numPrXML `xml:"numPr"`
}

type numPrXML struct {
	ILvl  *valAttr `xml:"ilvl"`
	NumID *valAttr `xml:"numId"`
}

type valAttr struct {
	Val string `xml:"val,attr"`
}

type runXML struct {
	Props    *runPropsXML
	Text     string
	EmbedIDs []string
}

// Runs are decoded with a depth-tracking token walk because the image
// references sit arbitrarily deep: DrawingML keeps a:blip@r:embed under
// w:drawing, while legacy VML uses v:imagedata@r:id. This mirrors a
// local-name() descendant search over the run subtree.
func (r *runXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	depth := 1
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "rPr":
				var pr runPropsXML
				if err := d.DecodeElement(&pr, &t); err != nil {
					return err
				}
				if r.Props == nil {
					r.Props = &pr
				}
			case "t":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				r.Text += s
			case "tab":
				r.Text += "\t"
				depth++
			case "br", "cr":
				r.Text += "\n"
				depth++
			case "blip":
				for _, a := range t.Attr {
					if a.Name.Local == "embed" && a.Value != "" {
						r.EmbedIDs = append(r.EmbedIDs, a.Value)
					}
				}
				depth++
			case "imagedata":
				for _, a := range t.Attr {
					if a.Name.Local == "id" && a.Value != "" {
						r.EmbedIDs = append(r.EmbedIDs, a.Value)
					}
				}
				depth++
			default:
				depth++
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
}

type runPropsXML struct {
	Bold      *valAttr `xml:"b"`
	Italic    *valAttr `xml:"i"`
	Underline *valAttr `xml:"u"`
}

// flagOn interprets an OOXML toggle property: present means on unless the
// val attribute negates it.
func flagOn(v *valAttr) bool {
	if v == nil {
		return false
	}
	switch strings.ToLower(v.Val) {
	case "", "1", "true", "on":
		return true
	default:
		return false
	}
}

func underlineOn(v *valAttr) bool {
	if v == nil {
		return false
	}
	switch strings.ToLower(v.Val) {
	case "none", "0", "false":
		return false
	default:
		return true
	}
}

// text concatenates the paragraph's run text.
func (p *paragraphXML) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// embedIDs collects image relationship ids referenced by the paragraph's
// runs, deduplicated in first-seen order.
func (p *paragraphXML) embedIDs() []string {
	seen := map[string]struct{}{}
	var ids []string
	for _, r := range p.Runs {
		for _, id := range r.EmbedIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// listInfo returns the paragraph's native list numbering, when present.
func (p *paragraphXML) listInfo() (numID, level int, ok bool) {
	if p.Props == nil || p.Props.NumPr == nil || p.Props.NumPr.NumID == nil {
		return 0, 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(p.Props.NumPr.NumID.Val))
	if err != nil {
		return 0, 0, false
	}
	if p.Props.NumPr.ILvl != nil {
		if l, err := strconv.Atoi(strings.TrimSpace(p.Props.NumPr.ILvl.Val)); err == nil {
			level = l
		}
	}
	return id, level, true
}

func (p *paragraphXML) styleID() string {
	if p.Props == nil || p.Props.Style == nil {
		return ""
	}
	return p.Props.Style.Val
}

type tableXML struct {
	Rows []tableRowXML `xml:"tr"`
}

type tableRowXML struct {
	Cells []tableCellXML `xml:"tc"`
}

type tableCellXML struct {
	Paras []paragraphXML `xml:"p"`
}

// grid walks the table row-major into a 2-D cell grid.
func (t *tableXML) grid() [][]string {
	rows := make([][]string, 0, len(t.Rows))
	for _, tr := range t.Rows {
		row := make([]string, 0, len(tr.Cells))
		for _, tc := range tr.Cells {
			var parts []string
			for _, p := range tc.Paras {
				parts = append(parts, p.text())
			}
			row = append(row, strings.TrimSpace(strings.Join(parts, "\n")))
		}
		rows = append(rows, row)
	}
	return rows
}

type stylesXML struct {
	Styles []styleXML `xml:"style"`
}

type styleXML struct {
	ID   string   `xml:"styleId,attr"`
	Name *valAttr `xml:"name"`
}

type relationshipsXML struct {
	Rels []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID         string `xml:"Id,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("container entry %s not found", name)
}

func readDocument(zr *zip.Reader) (*documentXML, error) {
	data, err := readZipEntry(zr, "word/document.xml")
	if err != nil {
		return nil, err
	}
	var doc documentXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document body: %w", err)
	}
	return &doc, nil
}

// readStyles maps style ids to display names. Missing styles parts are not
// an error; style classification then falls back to the raw ids.
func readStyles(zr *zip.Reader) map[string]string {
	names := map[string]string{}
	data, err := readZipEntry(zr, "word/styles.xml")
	if err != nil {
		return names
	}
	var styles stylesXML
	if err := xml.Unmarshal(data, &styles); err != nil {
		return names
	}
	for _, s := range styles.Styles {
		if s.ID == "" {
			continue
		}
		if s.Name != nil && s.Name.Val != "" {
			names[s.ID] = s.Name.Val
		}
	}
	return names
}

// readRelationships maps relationship ids to their targets inside the
// container, e.g. "rId4" -> "media/image1.png".
func readRelationships(zr *zip.Reader) map[string]string {
	rels := map[string]string{}
	data, err := readZipEntry(zr, "word/_rels/document.xml.rels")
	if err != nil {
		return rels
	}
	var parsed relationshipsXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return rels
	}
	for _, r := range parsed.Rels {
		if r.ID == "" || r.Target == "" {
			continue
		}
		if strings.EqualFold(r.TargetMode, "External") {
			continue
		}
		rels[r.ID] = r.Target
	}
	return rels
}
