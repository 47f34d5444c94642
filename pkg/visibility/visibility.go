// Package visibility computes which variant instances are shown and which
// nodes are highlighted, and applies the result to a scene.
package visibility

import (
	"github.com/chazu/configurator/pkg/catalog"
	"github.com/chazu/configurator/pkg/naming"
	"github.com/chazu/configurator/pkg/scene"
)

// DefaultHighlightColor is the accent used for highlighted nodes.
const DefaultHighlightColor = "#FFFFFF"

// Assignment sets one node's enabled flag.
type Assignment struct {
	Node    string
	Enabled bool
}

// Plan is an ordered set of enable/disable assignments.
type Plan []Assignment

// Enabled returns the names the plan enables.
func (p Plan) Enabled() []string {
	var out []string
	for _, a := range p {
		if a.Enabled {
			out = append(out, a.Node)
		}
	}
	return out
}

// Disabled returns the names the plan disables.
func (p Plan) Disabled() []string {
	var out []string
	for _, a := range p {
		if !a.Enabled {
			out = append(out, a.Node)
		}
	}
	return out
}

// Initial computes the load-time pass over every variant instance. An
// instance of a catalog part is enabled iff it is the part's committed
// variant. Instances of parts the catalog does not know are enabled iff
// they match the active part and variant; with no active part only the
// variant has to match.
func Initial(idx *naming.Index, m *catalog.Model, activePart, activeVariant string) Plan {
	instances := idx.Instances()
	plan := make(Plan, 0, len(instances))
	for _, name := range instances {
		ref, _ := idx.Lookup(name)
		var enabled bool
		switch {
		case m != nil && m.Has(ref.Part):
			sel, _ := m.Selected(ref.Part)
			enabled = sel.ID == ref.Variant
		case activePart == "":
			enabled = ref.Variant == activeVariant
		default:
			enabled = ref.Part == activePart && ref.Variant == activeVariant
		}
		plan = append(plan, Assignment{Node: name, Enabled: enabled})
	}
	return plan
}

// ForPart computes the incremental pass after a commit: every instance of
// the part is disabled except part__variant. Other parts are untouched.
func ForPart(idx *naming.Index, part, variant string) Plan {
	instances := idx.InstancesOf(part)
	plan := make(Plan, 0, len(instances))
	for _, name := range instances {
		ref, _ := idx.Lookup(name)
		plan = append(plan, Assignment{Node: name, Enabled: ref.Variant == variant})
	}
	return plan
}

// HighlightPlan lists the nodes to add to and remove from the highlight set.
type HighlightPlan struct {
	Add    []string
	Remove []string
}

// Highlight selects every node named part__variant for highlighting and
// every other node of the scene for removal. An empty variant highlights
// nothing.
func Highlight(idx *naming.Index, names []string, part, variant string) HighlightPlan {
	var hp HighlightPlan
	for _, name := range names {
		ref, ok := idx.Lookup(name)
		if ok && variant != "" && ref.Part == part && ref.Variant == variant {
			hp.Add = append(hp.Add, name)
			continue
		}
		hp.Remove = append(hp.Remove, name)
	}
	return hp
}

// Apply pushes an enable/disable plan to the scene.
func Apply(s scene.Scene, p Plan) {
	for _, a := range p {
		s.SetEnabled(a.Node, a.Enabled)
	}
}

// ApplyHighlight pushes a highlight plan to the scene, removals first.
func ApplyHighlight(s scene.Scene, hp HighlightPlan, color string) {
	for _, name := range hp.Remove {
		s.RemoveHighlight(name)
	}
	for _, name := range hp.Add {
		s.AddHighlight(name, color)
	}
}
