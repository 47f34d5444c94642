package graph

// ---------------------------------------------------------------------------
// Geometry
// ---------------------------------------------------------------------------

// ShapeKind distinguishes between primitive shapes.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCylinder
	ShapeSphere
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeBox:
		return "box"
	case ShapeCylinder:
		return "cylinder"
	case ShapeSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// GeometryData is a solid primitive. Size is used by boxes; Radius and
// Height by cylinders; Radius by spheres.
type GeometryData struct {
	Shape  ShapeKind `json:"shape"`
	Size   Vec3      `json:"size,omitempty"`
	Radius float64   `json:"radius,omitempty"`
	Height float64   `json:"height,omitempty"`
	Color  string    `json:"color,omitempty"` // base color, hex
}

func (GeometryData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to child nodes.
// Created by the (place ...) form.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a named part, a variant instance, or the unnamed
// scene root.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// Camera
// ---------------------------------------------------------------------------

// CameraData is a viewpoint exported with the model.
type CameraData struct {
	Position Vec3 `json:"position"`
	Target   Vec3 `json:"target"`
}

func (CameraData) nodeData() {}

// ---------------------------------------------------------------------------
// CSG
// ---------------------------------------------------------------------------

// CSGOp is a boolean operation over solids.
type CSGOp int

const (
	CSGUnion CSGOp = iota
	CSGDifference
	CSGIntersection
)

func (o CSGOp) String() string {
	switch o {
	case CSGUnion:
		return "union"
	case CSGDifference:
		return "difference"
	case CSGIntersection:
		return "intersection"
	default:
		return "unknown"
	}
}

// CSGData combines the solids of a node's children into one. A difference
// subtracts every later child from the first. Created by the (union ...),
// (difference ...) and (intersection ...) forms.
type CSGData struct {
	Op    CSGOp  `json:"op"`
	Color string `json:"color,omitempty"` // overrides the operands' colors
}

func (CSGData) nodeData() {}
