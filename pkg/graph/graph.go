package graph

import "fmt"

// Units is the scene unit. glTF convention: one unit is one meter.
const Units = "m"

// SceneGraph is the top-level immutable data structure produced by scene
// script evaluation. It is never mutated in place; each load produces a
// new graph.
type SceneGraph struct {
	Nodes     map[NodeID]*Node  `json:"nodes"`
	Roots     []NodeID          `json:"roots"`
	NameIndex map[string]NodeID `json:"name_index"`
	Units     string            `json:"units"`
	Version   uint64            `json:"version"`
}

// New creates an empty SceneGraph.
func New() *SceneGraph {
	return &SceneGraph{
		Nodes:     make(map[NodeID]*Node),
		NameIndex: make(map[string]NodeID),
		Units:     Units,
	}
}

// AddNode adds a node to the graph. It does not check for duplicates.
func (g *SceneGraph) AddNode(n *Node) {
	g.Nodes[n.ID] = n
	if n.Name != "" {
		g.NameIndex[n.Name] = n.ID
	}
}

// AddRoot registers a node ID as a root of the graph.
func (g *SceneGraph) AddRoot(id NodeID) {
	for _, r := range g.Roots {
		if r == id {
			return
		}
	}
	g.Roots = append(g.Roots, id)
}

// Lookup returns the node with the given name, or nil.
func (g *SceneGraph) Lookup(name string) *Node {
	id, ok := g.NameIndex[name]
	if !ok {
		return nil
	}
	return g.Nodes[id]
}

// MustLookup returns the node with the given name, or panics.
func (g *SceneGraph) MustLookup(name string) *Node {
	n := g.Lookup(name)
	if n == nil {
		panic(fmt.Sprintf("graph: no node named %q", name))
	}
	return n
}

// Get returns the node with the given ID, or nil.
func (g *SceneGraph) Get(id NodeID) *Node {
	return g.Nodes[id]
}

// Children returns the child nodes of the given node.
func (g *SceneGraph) Children(n *Node) []*Node {
	children := make([]*Node, 0, len(n.Children))
	for _, cid := range n.Children {
		if c := g.Nodes[cid]; c != nil {
			children = append(children, c)
		}
	}
	return children
}

// Names returns the names of every named node reachable from the roots,
// in depth-first pre-order. Each name appears once.
func (g *SceneGraph) Names() []string {
	var names []string
	visited := make(map[NodeID]bool)

	var walk func(n *Node)
	walk = func(n *Node) {
		if visited[n.ID] {
			return
		}
		visited[n.ID] = true
		if n.Name != "" {
			names = append(names, n.Name)
		}
		for _, c := range g.Children(n) {
			walk(c)
		}
	}
	for _, rid := range g.Roots {
		if root := g.Get(rid); root != nil {
			walk(root)
		}
	}
	return names
}

// Cameras returns the camera nodes reachable from the roots, in the order
// Names lists them.
func (g *SceneGraph) Cameras() []*Node {
	var cams []*Node
	for _, name := range g.Names() {
		if n := g.Lookup(name); n != nil && n.Kind == NodeCamera {
			cams = append(cams, n)
		}
	}
	return cams
}

// NodeCount returns the total number of nodes.
func (g *SceneGraph) NodeCount() int {
	return len(g.Nodes)
}
