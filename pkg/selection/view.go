package selection

import "github.com/chazu/configurator/pkg/catalog"

// SummaryItem is one row of the committed configuration summary.
type SummaryItem struct {
	PartID      string `json:"partId"`
	DisplayText string `json:"displayText"`
	VariantID   string `json:"variantId"`
	VariantName string `json:"variantName"`
	Price       string `json:"price"`
	Image       string `json:"image"`
}

// PickerItem is one variant card of the picker.
type PickerItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image"`
	Selected bool   `json:"selected"` // committed in the model
	Included bool   `json:"included"` // the active variant
}

// Picker is the variant picker of the part being edited.
type Picker struct {
	PartID      string       `json:"partId"`
	DisplayText string       `json:"displayText"`
	Variants    []PickerItem `json:"variants"`
}

// View is the read-only projection the presentation layer renders.
type View struct {
	State   State         `json:"state"`
	Summary []SummaryItem `json:"summary"`
	Picker  *Picker       `json:"picker,omitempty"`
	Total   string        `json:"total"`
}

// View projects the session for rendering. The picker is present only
// while editing a part the catalog knows.
func (s *Session) View() View {
	v := View{
		State:   s.state,
		Summary: Summary(s.model),
		Total:   catalog.FormatPrice(s.Total()),
	}
	if s.state.Mode == ModeEditing {
		if p, ok := s.model.Part(s.state.ActivePart); ok {
			v.Picker = newPicker(p, s.state.ActiveVariant)
		}
	}
	return v
}

// Summary lists the selected variant of every part in catalog order.
func Summary(m *catalog.Model) []SummaryItem {
	parts := m.Parts()
	out := make([]SummaryItem, 0, len(parts))
	for _, p := range parts {
		sel, ok := p.SelectedVariant()
		if !ok {
			continue
		}
		out = append(out, SummaryItem{
			PartID:      p.ID,
			DisplayText: p.DisplayText,
			VariantID:   sel.ID,
			VariantName: sel.Name,
			Price:       catalog.FormatPrice(sel.Price),
			Image:       sel.Image,
		})
	}
	return out
}

func newPicker(p catalog.Part, active string) *Picker {
	pk := &Picker{
		PartID:      p.ID,
		DisplayText: p.DisplayText,
		Variants:    make([]PickerItem, 0, len(p.Variants)),
	}
	for _, v := range p.Variants {
		pk.Variants = append(pk.Variants, PickerItem{
			ID:       v.ID,
			Name:     v.Name,
			Price:    catalog.FormatPrice(v.Price),
			Image:    v.Image,
			Selected: v.Selected,
			Included: v.ID == active,
		})
	}
	return pk
}
