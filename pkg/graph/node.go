package graph

// NodeKind enumerates the types of nodes in the scene graph.
type NodeKind int

const (
	NodeGeometry  NodeKind = iota // solid primitive (box, cylinder, sphere)
	NodeTransform                 // spatial transformation (place)
	NodeGroup                     // named part, variant instance or scene root
	NodeCamera                    // viewpoint, never configurable
	NodeCSG                       // boolean combination of its children
)

func (k NodeKind) String() string {
	switch k {
	case NodeGeometry:
		return "geometry"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	case NodeCamera:
		return "camera"
	case NodeCSG:
		return "csg"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the scene graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}
