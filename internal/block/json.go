package block

import (
	"encoding/json"
	"fmt"
)

// Each variant marshals itself with its discriminator injected so that a
// []Block serializes directly into the published contract. The alias type
// trick avoids recursing into MarshalJSON.

func (h Heading) MarshalJSON() ([]byte, error) {
	type alias Heading
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeHeading, alias(h)})
}

func (p Paragraph) MarshalJSON() ([]byte, error) {
	type alias Paragraph
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeParagraph, alias(p)})
}

func (l List) MarshalJSON() ([]byte, error) {
	type alias List
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeList, alias(l)})
}

func (t Table) MarshalJSON() ([]byte, error) {
	type alias Table
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeTable, alias(t)})
}

func (f Figure) MarshalJSON() ([]byte, error) {
	type alias Figure
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeFigure, alias(f)})
}

func (c Code) MarshalJSON() ([]byte, error) {
	type alias Code
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeCode, alias(c)})
}

func (f FormulaBlock) MarshalJSON() ([]byte, error) {
	type alias FormulaBlock
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeFormulaBlock, alias(f)})
}

func (r ReferenceMarker) MarshalJSON() ([]byte, error) {
	type alias ReferenceMarker
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeReferenceMarker, alias(r)})
}

func (b Blockquote) MarshalJSON() ([]byte, error) {
	type alias Blockquote
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{TypeBlockquote, alias(b)})
}

func (s Separator) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"separator"}`), nil
}

// UnmarshalBlock decodes one serialized block by its discriminator. Unknown
// discriminators are an error: the union is closed.
func UnmarshalBlock(data []byte) (Block, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding block envelope: %w", err)
	}
	switch probe.Type {
	case TypeHeading:
		var v Heading
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeParagraph:
		var v Paragraph
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeList:
		var v List
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeTable:
		var v Table
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeFigure:
		var v Figure
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeCode:
		var v Code
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeFormulaBlock:
		var v FormulaBlock
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeReferenceMarker:
		var v ReferenceMarker
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeBlockquote:
		var v Blockquote
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case TypeSeparator:
		return Separator{}, nil
	case "":
		return nil, fmt.Errorf("block is missing its type discriminator")
	default:
		return nil, fmt.Errorf("unknown block type %q", probe.Type)
	}
}

func (b *Blockquote) UnmarshalJSON(data []byte) error {
	var aux struct {
		Children []json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Children = make([]Block, 0, len(aux.Children))
	for _, raw := range aux.Children {
		child, err := UnmarshalBlock(raw)
		if err != nil {
			return err
		}
		b.Children = append(b.Children, child)
	}
	return nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var aux struct {
		Metadata     Metadata          `json:"metadata"`
		Content      []json.RawMessage `json:"content"`
		Bibliography []BibEntry        `json:"bibliography"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	d.Metadata = aux.Metadata
	d.Bibliography = aux.Bibliography
	d.Content = make([]Block, 0, len(aux.Content))
	for _, raw := range aux.Content {
		blk, err := UnmarshalBlock(raw)
		if err != nil {
			return err
		}
		d.Content = append(d.Content, blk)
	}
	return nil
}
