// Package classify turns a per-format stream of primitive nodes into the
// classified block sequence. It owns the only cross-node state in the engine:
// the currently open list run and the caption lookback over already emitted
// blocks. The state is threaded explicitly through a fold over the node
// stream so transitions stay testable on their own.
package classify

import (
	"github.com/docforge/docparse/internal/block"
	"github.com/docforge/docparse/internal/inline"
)

// NodeKind discriminates the primitive node variants extractors produce.
type NodeKind int

const (
	// KindPara is a paragraph-like unit, possibly a list member.
	KindPara NodeKind = iota
	// KindTable is a table-like unit with its cell grid already walked.
	KindTable
	// KindImage is an image-like unit referencing an extracted file.
	KindImage
	// KindBlock is a pre-classified block that passes through untouched
	// apart from list flushing (markdown lists, code fences, and the like).
	KindBlock
)

// ManualListID is the synthetic list identifier shared by all manually
// numbered items. It is negative so it can never collide with a native
// word-processor numbering id, which keeps native and manual runs separate.
const ManualListID = -1

// ListInfo marks a paragraph node as a list member.
type ListInfo struct {
	ID     int
	Level  int
	Number string
}

// Node is one primitive unit from a format extractor.
type Node struct {
	Kind  NodeKind
	Text  string
	Runs  []block.Run
	List  *ListInfo
	Table *block.Table
	Image *block.Figure
	Block block.Block
}

type listRun struct {
	id    int
	items []block.ListItem
}

// Blocks folds the node stream into the classified block sequence. A node
// whose list membership differs from the open run forces a flush before the
// node is processed; a trailing flush happens at stream end.
func Blocks(nodes []Node) []block.Block {
	var out []block.Block
	var open *listRun

	flush := func() {
		if open == nil {
			return
		}
		if len(open.items) > 0 {
			out = append(out, block.List{Ordered: true, Items: open.items})
		}
		open = nil
	}

	for _, n := range nodes {
		switch n.Kind {
		case KindPara:
			if n.List != nil {
				if open != nil && open.id != n.List.ID {
					flush()
				}
				if open == nil {
					open = &listRun{id: n.List.ID}
				}
				open.items = append(open.items, block.ListItem{
					Text:   n.Text,
					Level:  n.List.Level,
					Number: n.List.Number,
				})
				continue
			}
			flush()
			if n.Text == "" {
				continue
			}
			out = append(out, ParagraphBlock(n.Text, n.Runs))

		case KindTable:
			flush()
			t := *n.Table
			if t.Caption == "" {
				var caption string
				out, caption = PopCaption(out)
				t.Caption = caption
			}
			out = append(out, t)

		case KindImage:
			flush()
			f := *n.Image
			if f.Caption == "" {
				var caption string
				out, caption = PopCaption(out)
				f.Caption = caption
			}
			out = append(out, f)

		case KindBlock:
			flush()
			if n.Block != nil {
				out = append(out, n.Block)
			}
		}
	}
	flush()
	return out
}

// ParagraphBlock builds the block for loose paragraph text: a whole-paragraph
// display formula is promoted to a FormulaBlock, everything else becomes a
// Paragraph annotated with inline formulas and reference markers.
func ParagraphBlock(text string, runs []block.Run) block.Block {
	if latex, ok := inline.BlockFormula(text); ok {
		return block.FormulaBlock{LaTeX: latex}
	}
	return block.Paragraph{
		Text:             text,
		Inlines:          runs,
		ReferenceMarkers: inline.Markers(text),
		InlineFormulas:   inline.Formulas(text),
	}
}

// PopCaption inspects the most recently emitted block; when it is a
// paragraph matching the caption pattern, the paragraph is removed from the
// sequence and its text returned, so the caption cannot survive both as a
// loose paragraph and as a caption field. Matching is backward-only.
func PopCaption(emitted []block.Block) ([]block.Block, string) {
	if len(emitted) == 0 {
		return emitted, ""
	}
	p, ok := emitted[len(emitted)-1].(block.Paragraph)
	if !ok {
		return emitted, ""
	}
	if !IsCaption(p.Text) {
		return emitted, ""
	}
	return emitted[:len(emitted)-1], p.Text
}
