// Package scene defines the boundary to the renderer: a set of named nodes
// whose enabled flag and highlight membership the configurator drives.
package scene

import "github.com/chazu/configurator/pkg/kernel"

// Scene is the command surface the configurator uses on loaded nodes. The
// renderer owns node lifetime and geometry; the configurator is the sole
// writer of enabled state and highlight membership.
type Scene interface {
	// Names returns every node name of the current load in scene order.
	Names() []string
	SetEnabled(name string, enabled bool)
	AddHighlight(name, color string)
	RemoveHighlight(name string)
}

// Op is a recorded scene command.
type Op int

const (
	OpEnable Op = iota
	OpDisable
	OpHighlight
	OpUnhighlight
)

func (o Op) String() string {
	switch o {
	case OpEnable:
		return "enable"
	case OpDisable:
		return "disable"
	case OpHighlight:
		return "highlight"
	case OpUnhighlight:
		return "unhighlight"
	default:
		return "unknown"
	}
}

// Command is one state change applied to a node.
type Command struct {
	Op    Op     `json:"op"`
	Node  string `json:"node"`
	Color string `json:"color,omitempty"`
}

// Node is the observable state of one scene node.
type Node struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Highlighted bool   `json:"highlighted"`
	Color       string `json:"color,omitempty"` // highlight color while highlighted
}

// Camera is a viewpoint declared by the scene script.
type Camera struct {
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
}

// Memory is an in-process Scene. It keeps node state, the meshes and
// cameras produced for the load, and a journal of commands not yet
// forwarded to the frontend renderer. It is not safe for concurrent use.
type Memory struct {
	order   []string
	nodes   map[string]*Node
	meshes  []*kernel.Mesh
	cameras []Camera
	journal []Command
}

// Compile-time interface check.
var _ Scene = (*Memory)(nil)

// NewMemory creates a scene with every node enabled and unhighlighted.
// Duplicate names are collapsed.
func NewMemory(names []string, meshes []*kernel.Mesh) *Memory {
	m := &Memory{
		nodes:  make(map[string]*Node, len(names)),
		meshes: meshes,
	}
	for _, name := range names {
		if _, ok := m.nodes[name]; ok {
			continue
		}
		m.order = append(m.order, name)
		m.nodes[name] = &Node{Name: name, Enabled: true}
	}
	return m
}

// Names returns node names in load order.
func (m *Memory) Names() []string {
	return append([]string(nil), m.order...)
}

// SetEnabled sets a node's enabled flag. Unknown names are ignored, as are
// calls that do not change state.
func (m *Memory) SetEnabled(name string, enabled bool) {
	n, ok := m.nodes[name]
	if !ok || n.Enabled == enabled {
		return
	}
	n.Enabled = enabled
	op := OpDisable
	if enabled {
		op = OpEnable
	}
	m.journal = append(m.journal, Command{Op: op, Node: name})
}

// AddHighlight adds a node to the highlight set with the given color.
func (m *Memory) AddHighlight(name, color string) {
	n, ok := m.nodes[name]
	if !ok || (n.Highlighted && n.Color == color) {
		return
	}
	n.Highlighted = true
	n.Color = color
	m.journal = append(m.journal, Command{Op: OpHighlight, Node: name, Color: color})
}

// RemoveHighlight removes a node from the highlight set.
func (m *Memory) RemoveHighlight(name string) {
	n, ok := m.nodes[name]
	if !ok || !n.Highlighted {
		return
	}
	n.Highlighted = false
	n.Color = ""
	m.journal = append(m.journal, Command{Op: OpUnhighlight, Node: name})
}

// AddCamera records a viewpoint of the load, after any added before it.
func (m *Memory) AddCamera(c Camera) {
	m.cameras = append(m.cameras, c)
}

// Cameras returns the viewpoints in the order they were added.
func (m *Memory) Cameras() []Camera {
	return append([]Camera(nil), m.cameras...)
}

// Node returns the state of one node.
func (m *Memory) Node(name string) (Node, bool) {
	n, ok := m.nodes[name]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns the state of every node in load order.
func (m *Memory) Nodes() []Node {
	out := make([]Node, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, *m.nodes[name])
	}
	return out
}

// Highlighted returns the names currently in the highlight set.
func (m *Memory) Highlighted() []string {
	var out []string
	for _, name := range m.order {
		if m.nodes[name].Highlighted {
			out = append(out, name)
		}
	}
	return out
}

// Meshes returns the meshes produced for this load.
func (m *Memory) Meshes() []*kernel.Mesh {
	return m.meshes
}

// Drain returns and clears the pending command journal.
func (m *Memory) Drain() []Command {
	cmds := m.journal
	m.journal = nil
	return cmds
}
