package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Variant is a part option as held by the model.
type Variant struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Selected bool            `json:"isSelected"`
}

// Part is a configurable slot with its variants in catalog order.
type Part struct {
	ID          string    `json:"id"`
	DisplayText string    `json:"displayText"`
	Variants    []Variant `json:"variants"`
}

// SelectedVariant returns the part's selected variant.
func (p Part) SelectedVariant() (Variant, bool) {
	for _, v := range p.Variants {
		if v.Selected {
			return v, true
		}
	}
	return Variant{}, false
}

// Variant returns the variant with the given id.
func (p Part) Variant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

func (p Part) clone() Part {
	p.Variants = append([]Variant(nil), p.Variants...)
	return p
}

// Model is the immutable configuration: exactly one selected variant per
// part. Every change produces a new Model.
type Model struct {
	parts []Part
	index map[string]int
}

// Initialize builds a model from a catalog with each part's default variant
// selected. It rejects catalogs that break the one-default invariant.
func Initialize(c Catalog) (*Model, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	m := &Model{
		parts: make([]Part, 0, len(c.Parts)),
		index: make(map[string]int, len(c.Parts)),
	}
	for i, ps := range c.Parts {
		p := Part{
			ID:          ps.ID,
			DisplayText: ps.DisplayText,
			Variants:    make([]Variant, 0, len(ps.Variants)),
		}
		for _, vs := range ps.Variants {
			p.Variants = append(p.Variants, Variant{
				ID:       vs.ID,
				Name:     vs.Name,
				Price:    vs.Price,
				Image:    vs.Image,
				Selected: vs.IsDefault,
			})
		}
		m.parts = append(m.parts, p)
		m.index[p.ID] = i
	}
	return m, nil
}

// SelectVariant returns a model where variantID is the only selected variant
// of partID. Unknown part or variant ids return the receiver unchanged
// together with ErrUnknownPart or ErrUnknownVariant.
func (m *Model) SelectVariant(partID, variantID string) (*Model, error) {
	i, ok := m.index[partID]
	if !ok {
		return m, fmt.Errorf("catalog: select %q/%q: %w", partID, variantID, ErrUnknownPart)
	}
	if _, ok := m.parts[i].Variant(variantID); !ok {
		return m, fmt.Errorf("catalog: select %q/%q: %w", partID, variantID, ErrUnknownVariant)
	}

	next := &Model{
		parts: append([]Part(nil), m.parts...),
		index: m.index, // never mutated after Initialize
	}
	p := m.parts[i].clone()
	for j := range p.Variants {
		p.Variants[j].Selected = p.Variants[j].ID == variantID
	}
	next.parts[i] = p
	return next, nil
}

// Parts returns a copy of the parts in catalog order.
func (m *Model) Parts() []Part {
	out := make([]Part, len(m.parts))
	for i, p := range m.parts {
		out[i] = p.clone()
	}
	return out
}

// Part returns a copy of one part.
func (m *Model) Part(id string) (Part, bool) {
	i, ok := m.index[id]
	if !ok {
		return Part{}, false
	}
	return m.parts[i].clone(), true
}

// Has reports whether the model contains the part.
func (m *Model) Has(partID string) bool {
	_, ok := m.index[partID]
	return ok
}

// Selected returns the selected variant of a part.
func (m *Model) Selected(partID string) (Variant, bool) {
	i, ok := m.index[partID]
	if !ok {
		return Variant{}, false
	}
	return m.parts[i].SelectedVariant()
}

// Len returns the number of parts.
func (m *Model) Len() int {
	return len(m.parts)
}
