package engine

import (
	"fmt"

	"github.com/chazu/configurator/pkg/graph"
)

// builder accumulates the scene graph while a script runs. Anonymous node
// IDs come from a per-evaluation counter so that the same script always
// yields the same IDs.
type builder struct {
	g     *graph.SceneGraph
	order []graph.NodeID
	seq   map[string]int
}

func newBuilder() *builder {
	return &builder{g: graph.New(), seq: make(map[string]int)}
}

// anonID returns the next deterministic ID for an unnamed node of a kind.
func (b *builder) anonID(kind string) graph.NodeID {
	n := b.seq[kind]
	b.seq[kind] = n + 1
	return graph.NewNodeID(fmt.Sprintf("%s/%d", kind, n))
}

func (b *builder) add(n *graph.Node) {
	b.g.AddNode(n)
	b.order = append(b.order, n.ID)
}

// addNamed adds a named node, rejecting names already in use.
func (b *builder) addNamed(n *graph.Node) error {
	if b.g.Lookup(n.Name) != nil {
		return fmt.Errorf("duplicate node name %q", n.Name)
	}
	b.add(n)
	return nil
}

// finish promotes every node that no other node holds as a child to a
// root, in creation order, and returns the graph.
func (b *builder) finish() *graph.SceneGraph {
	held := make(map[graph.NodeID]bool)
	for _, n := range b.g.Nodes {
		for _, c := range n.Children {
			held[c] = true
		}
	}
	for _, id := range b.order {
		if !held[id] {
			b.g.AddRoot(id)
		}
	}
	return b.g
}
