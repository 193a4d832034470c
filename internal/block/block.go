// Package block defines the shared vocabulary of typed content blocks and the
// document-level envelope produced by the extraction engine. It is pure data:
// the format extractors build these values and the schema validator checks
// them, but nothing in here has behavior beyond JSON encoding.
package block

// Document is the root of the structured tree. It is built once per input
// file, held immutably after validation, then serialized or discarded.
type Document struct {
	Metadata     Metadata   `json:"metadata"`
	Content      []Block    `json:"content"`
	Bibliography []BibEntry `json:"bibliography"`
}

// Metadata holds the document head. Title, Authors and Abstract are
// mandatory; extraction that cannot recover them fails instead of emitting
// empty fields.
type Metadata struct {
	Title    string   `json:"title"`
	Authors  []Author `json:"authors"`
	Abstract string   `json:"abstract"`
	Keywords []string `json:"keywords"`
}

type Author struct {
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
	Email       string `json:"email"`
}

// Block is the closed tagged union of content variants. Every variant
// serializes with a "type" discriminator; the set of variants is fixed and
// adding one means adding a type here plus its classifier support, not
// loosening the contract.
type Block interface {
	// BlockType returns the JSON discriminator for the variant.
	BlockType() string
}

// Discriminator values carried in the "type" field of serialized blocks.
const (
	TypeHeading         = "heading"
	TypeParagraph       = "paragraph"
	TypeList            = "list"
	TypeTable           = "table"
	TypeFigure          = "figure"
	TypeCode            = "code"
	TypeFormulaBlock    = "formula_block"
	TypeReferenceMarker = "reference"
	TypeBlockquote      = "blockquote"
	TypeSeparator       = "separator"
)

// Heading is a section heading. Number carries a leading numeric path like
// "1.2" when the heading text started with one.
type Heading struct {
	Level  int    `json:"level"`
	Number string `json:"number,omitempty"`
	Text   string `json:"text"`
}

// Run is one styled span of paragraph text.
type Run struct {
	Text      string `json:"text"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// Paragraph is plain body text plus the inline annotations recovered from it.
type Paragraph struct {
	Text             string   `json:"text"`
	Inlines          []Run    `json:"inlines,omitempty"`
	ReferenceMarkers []string `json:"reference_markers,omitempty"`
	InlineFormulas   []string `json:"inline_formulas,omitempty"`
}

// List is a flushed list run. Items keep their source order.
type List struct {
	Ordered bool       `json:"ordered"`
	Items   []ListItem `json:"items"`
}

// ListItem is one entry of a list. Number is the manually-typed marker when
// the item came from a numbering prefix rather than a native list property.
// Checked is set only for task-list items. Children holds nested sublists.
type ListItem struct {
	Text     string `json:"text"`
	Level    int    `json:"level"`
	Number   string `json:"number,omitempty"`
	Checked  *bool  `json:"checked,omitempty"`
	Children []List `json:"children,omitempty"`
}

// Table is a row-major cell grid. Rows are not required to be rectangular.
type Table struct {
	Caption   string     `json:"caption"`
	Data      [][]string `json:"data"`
	LaTeX     string     `json:"latex,omitempty"`
	ImagePath string     `json:"image_path,omitempty"`
}

// Figure references an extracted or linked image by path.
type Figure struct {
	Caption   string `json:"caption"`
	ImagePath string `json:"image_path"`
}

type Code struct {
	Language string `json:"language"`
	Content  string `json:"content"`
}

// FormulaBlock is a display formula that replaced a whole paragraph.
type FormulaBlock struct {
	LaTeX string `json:"latex"`
}

// ReferenceMarker is a standalone citation marker block. Extractors normally
// attach markers to their owning paragraph; the variant exists so consumers
// of the contract can represent detached markers.
type ReferenceMarker struct {
	Marker string `json:"marker"`
}

// Blockquote nests arbitrary content.
type Blockquote struct {
	Children []Block `json:"children"`
}

// Separator is a horizontal rule.
type Separator struct{}

// BibEntry is one bibliography record. Raw is the only field guaranteed
// populated when structured extraction of the entry fails.
type BibEntry struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Authors []string `json:"authors"`
	Title   string   `json:"title"`
	Venue   string   `json:"venue"`
	Year    string   `json:"year"`
	Raw     string   `json:"raw"`
}

func (Heading) BlockType() string         { return TypeHeading }
func (Paragraph) BlockType() string       { return TypeParagraph }
func (List) BlockType() string            { return TypeList }
func (Table) BlockType() string           { return TypeTable }
func (Figure) BlockType() string          { return TypeFigure }
func (Code) BlockType() string            { return TypeCode }
func (FormulaBlock) BlockType() string    { return TypeFormulaBlock }
func (ReferenceMarker) BlockType() string { return TypeReferenceMarker }
func (Blockquote) BlockType() string      { return TypeBlockquote }
func (Separator) BlockType() string       { return TypeSeparator }

// PlaceholderBibliography is the documented backward-compatibility entry
// emitted when a document contains no recognizable references section, so
// that Bibliography is never empty.
func PlaceholderBibliography() []BibEntry {
	return []BibEntry{{
		Type:    "misc",
		Authors: []string{},
	}}
}
