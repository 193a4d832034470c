// Package schema is the terminal gate between best-effort heuristic output
// and output a caller may rely on. The typed block union already enforces
// most of the contract structurally; this validator keeps the parts static
// types cannot express: non-empty constraints, value ranges, and the
// bibliography invariant. A failing validation aborts the whole extraction
// call; there is no partial success.
package schema

import (
	"fmt"
	"strings"

	"github.com/docforge/docparse/internal/block"
	"github.com/docforge/docparse/internal/docerr"
)

// Version identifies the document contract this validator enforces.
const Version = "1.0"

// Validate checks the assembled tree against the published contract,
// returning a SchemaViolation error with a diagnostic on the first failure.
func Validate(doc *block.Document) error {
	if doc == nil {
		return violation("document is nil")
	}
	if err := validateMetadata(doc.Metadata); err != nil {
		return err
	}
	for i, b := range doc.Content {
		if err := validateBlock(b, fmt.Sprintf("content[%d]", i)); err != nil {
			return err
		}
	}
	if len(doc.Bibliography) == 0 {
		return violation("bibliography must never be empty; a placeholder entry is required")
	}
	for i, e := range doc.Bibliography {
		if e.Type == "" {
			return violation("bibliography[%d]: entry type is empty", i)
		}
	}
	return nil
}

func validateMetadata(m block.Metadata) error {
	if strings.TrimSpace(m.Title) == "" {
		return violation("metadata.title is empty")
	}
	if len(m.Authors) == 0 {
		return violation("metadata.authors is empty")
	}
	for i, a := range m.Authors {
		if strings.TrimSpace(a.Name) == "" {
			return violation("metadata.authors[%d].name is empty", i)
		}
	}
	if strings.TrimSpace(m.Abstract) == "" {
		return violation("metadata.abstract is empty")
	}
	return nil
}

func validateBlock(b block.Block, at string) error {
	switch v := b.(type) {
	case block.Heading:
		if v.Level < 1 || v.Level > 6 {
			return violation("%s: heading level %d out of range 1..6", at, v.Level)
		}
		if strings.TrimSpace(v.Text) == "" {
			return violation("%s: heading text is empty", at)
		}
	case block.Paragraph:
		if strings.TrimSpace(v.Text) == "" {
			return violation("%s: paragraph text is empty", at)
		}
	case block.List:
		if len(v.Items) == 0 {
			return violation("%s: list has no items", at)
		}
	case block.Table:
		if len(v.Data) == 0 {
			return violation("%s: table has no rows", at)
		}
	case block.Figure:
		if v.ImagePath == "" {
			return violation("%s: figure has no image path", at)
		}
	case block.Code:
		// any content, including empty, is acceptable
	case block.FormulaBlock:
		if strings.TrimSpace(v.LaTeX) == "" {
			return violation("%s: formula block is empty", at)
		}
	case block.ReferenceMarker:
		if v.Marker == "" {
			return violation("%s: reference marker is empty", at)
		}
	case block.Blockquote:
		if len(v.Children) == 0 {
			return violation("%s: blockquote has no children", at)
		}
		for i, c := range v.Children {
			if err := validateBlock(c, fmt.Sprintf("%s.children[%d]", at, i)); err != nil {
				return err
			}
		}
	case block.Separator:
	case nil:
		return violation("%s: block is nil", at)
	default:
		return violation("%s: unknown block variant %T", at, b)
	}
	return nil
}

func violation(format string, args ...any) error {
	return docerr.New(docerr.SchemaViolation, "", "document tree violates schema v"+Version+": "+fmt.Sprintf(format, args...))
}
