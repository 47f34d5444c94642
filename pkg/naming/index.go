package naming

import "sort"

// Index is the typed name mapping for one scene load. It is built once and
// never re-parses names afterwards.
type Index struct {
	refs      map[string]Ref
	main      []string
	instances []string
	byPart    map[string][]string
	excluded  map[string]Kind
}

// NewIndex classifies every name of a scene load. Names are kept in input
// order within each set; duplicates are collapsed.
func NewIndex(names []string) *Index {
	idx := &Index{
		refs:     make(map[string]Ref),
		byPart:   make(map[string][]string),
		excluded: make(map[string]Kind),
	}
	for _, name := range names {
		if _, seen := idx.refs[name]; seen {
			continue
		}
		if _, seen := idx.excluded[name]; seen {
			continue
		}
		kind := Classify(name)
		switch kind {
		case KindMain:
			idx.refs[name] = Ref{Part: name}
			idx.main = append(idx.main, name)
		case KindInstance:
			ref, _ := Parse(name)
			idx.refs[name] = ref
			idx.instances = append(idx.instances, name)
			idx.byPart[ref.Part] = append(idx.byPart[ref.Part], name)
		default:
			idx.excluded[name] = kind
		}
	}
	return idx
}

// Lookup returns the ref for a name that belongs to the main or instance set.
func (idx *Index) Lookup(name string) (Ref, bool) {
	ref, ok := idx.refs[name]
	return ref, ok
}

// Main returns the main part node names.
func (idx *Index) Main() []string {
	return idx.main
}

// Instances returns the variant instance node names.
func (idx *Index) Instances() []string {
	return idx.instances
}

// InstancesOf returns the instance node names of one part.
func (idx *Index) InstancesOf(part string) []string {
	return idx.byPart[part]
}

// Named reports whether the index holds the instance part__variant.
func (idx *Index) Named(part, variant string) bool {
	ref, ok := idx.refs[InstanceName(part, variant)]
	return ok && ref.IsInstance()
}

// Names returns every indexed (non-excluded) name, main nodes first.
func (idx *Index) Names() []string {
	names := make([]string, 0, len(idx.main)+len(idx.instances))
	names = append(names, idx.main...)
	return append(names, idx.instances...)
}

// Excluded returns the names left out of both sets with the reason, sorted
// by name.
func (idx *Index) Excluded() []Excluded {
	out := make([]Excluded, 0, len(idx.excluded))
	for name, kind := range idx.excluded {
		out = append(out, Excluded{Name: name, Kind: kind})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Excluded is a node name left out of the index.
type Excluded struct {
	Name string
	Kind Kind
}
