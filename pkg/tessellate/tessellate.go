// Package tessellate walks a scene graph and produces triangle meshes
// using a geometry kernel. One mesh is produced per geometry node, and one
// per boolean (CSG) node, tagged with the named scene nodes that enclose it.
package tessellate

import (
	"context"
	"fmt"

	"github.com/chazu/configurator/pkg/graph"
	"github.com/chazu/configurator/pkg/kernel"
)

// frame is one (place ...) on the current path.
type frame struct {
	translation graph.Vec3
	rotation    graph.Vec3
}

// walker carries traversal state: the transform stack and the names of the
// named ancestors of the current node.
type walker struct {
	ctx    context.Context
	g      *graph.SceneGraph
	k      kernel.Kernel
	frames []frame
	names  []string
	meshes []*kernel.Mesh
}

func (w *walker) push(f frame) { w.frames = append(w.frames, f) }
func (w *walker) pop()         { w.frames = w.frames[:len(w.frames)-1] }

// Tessellate walks the scene graph and produces one triangle mesh per
// geometry node and per outermost CSG node using the provided geometry
// kernel. Cameras produce no
// geometry. The tessellator is read-only and never mutates the graph.
// It stops early with the context's error if ctx is cancelled.
func Tessellate(ctx context.Context, g *graph.SceneGraph, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}

	w := &walker{ctx: ctx, g: g, k: k}
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		if root == nil {
			continue
		}
		if err := w.walk(root); err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %s: %w", rootID.Short(), err)
		}
	}

	return w.meshes, nil
}

// walk recursively traverses a node and its children, collecting meshes.
func (w *walker) walk(n *graph.Node) error {
	if n.Name != "" {
		w.names = append(w.names, n.Name)
		defer func() { w.names = w.names[:len(w.names)-1] }()
	}

	switch n.Kind {
	case graph.NodeGeometry:
		return w.geometry(n)

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		var f frame
		if td.Translation != nil {
			f.translation = *td.Translation
		}
		if td.Rotation != nil {
			f.rotation = *td.Rotation
		}
		w.push(f)
		defer w.pop()
		return w.children(n)

	case graph.NodeGroup:
		return w.children(n)

	case graph.NodeCSG:
		return w.csg(n)

	case graph.NodeCamera:
		return nil

	default:
		return fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

func (w *walker) children(n *graph.Node) error {
	for _, child := range w.g.Children(n) {
		if err := w.walk(child); err != nil {
			return err
		}
	}
	return nil
}

// geometry creates the solid for a geometry node, places it, and meshes it.
func (w *walker) geometry(n *graph.Node) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	gd, ok := n.Data.(graph.GeometryData)
	if !ok {
		return fmt.Errorf("geometry node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
	solid, err := w.primitive(n, gd)
	if err != nil {
		return err
	}
	return w.emit(n, solid, gd.Color)
}

// csg folds a boolean node's subtree into one solid and meshes it. The
// mesh takes the node's color, or else the first operand color found.
func (w *walker) csg(n *graph.Node) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	solid, err := w.solid(n)
	if err != nil {
		return err
	}
	return w.emit(n, solid, firstColor(w.g, n))
}

func (w *walker) primitive(n *graph.Node, gd graph.GeometryData) (kernel.Solid, error) {
	switch gd.Shape {
	case graph.ShapeBox:
		return w.k.Box(gd.Size.X, gd.Size.Y, gd.Size.Z), nil
	case graph.ShapeCylinder:
		return w.k.Cylinder(gd.Height, gd.Radius), nil
	case graph.ShapeSphere:
		return w.k.Sphere(gd.Radius), nil
	default:
		return nil, fmt.Errorf("geometry node %s has unknown shape %v", n.ID.Short(), gd.Shape)
	}
}

// solid builds the single solid a CSG operand describes, with the
// placements inside the operand applied. Groups contribute the union of
// their children.
func (w *walker) solid(n *graph.Node) (kernel.Solid, error) {
	switch n.Kind {
	case graph.NodeGeometry:
		gd, ok := n.Data.(graph.GeometryData)
		if !ok {
			return nil, fmt.Errorf("geometry node %s has unsupported data type %T", n.ID.Short(), n.Data)
		}
		return w.primitive(n, gd)

	case graph.NodeTransform:
		td, ok := n.Data.(graph.TransformData)
		if !ok {
			return nil, fmt.Errorf("transform node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		s, err := w.fold(n, w.k.Union)
		if err != nil {
			return nil, err
		}
		if td.Rotation != nil && !td.Rotation.IsZero() {
			s = w.k.Rotate(s, td.Rotation.X, td.Rotation.Y, td.Rotation.Z)
		}
		if td.Translation != nil && !td.Translation.IsZero() {
			s = w.k.Translate(s, td.Translation.X, td.Translation.Y, td.Translation.Z)
		}
		return s, nil

	case graph.NodeGroup:
		return w.fold(n, w.k.Union)

	case graph.NodeCSG:
		cd, ok := n.Data.(graph.CSGData)
		if !ok {
			return nil, fmt.Errorf("csg node %s has unexpected data type %T", n.ID.Short(), n.Data)
		}
		switch cd.Op {
		case graph.CSGUnion:
			return w.fold(n, w.k.Union)
		case graph.CSGDifference:
			return w.fold(n, w.k.Difference)
		case graph.CSGIntersection:
			return w.fold(n, w.k.Intersection)
		default:
			return nil, fmt.Errorf("csg node %s has unknown operation %v", n.ID.Short(), cd.Op)
		}

	case graph.NodeCamera:
		return nil, fmt.Errorf("camera %q cannot be a csg operand", n.Name)

	default:
		return nil, fmt.Errorf("unknown node kind: %v", n.Kind)
	}
}

// fold combines the solids of n's children left to right with op.
func (w *walker) fold(n *graph.Node, op func(a, b kernel.Solid) kernel.Solid) (kernel.Solid, error) {
	var acc kernel.Solid
	for _, child := range w.g.Children(n) {
		s, err := w.solid(child)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = s
			continue
		}
		acc = op(acc, s)
	}
	if acc == nil {
		return nil, fmt.Errorf("%s node %s has no geometry", n.Kind, n.ID.Short())
	}
	return acc, nil
}

// emit places a solid with the enclosing transforms, meshes it and tags
// the mesh with the current named ancestors.
func (w *walker) emit(n *graph.Node, solid kernel.Solid, color string) error {
	// Innermost placement first: rotate about the local origin, then move.
	for i := len(w.frames) - 1; i >= 0; i-- {
		f := w.frames[i]
		if !f.rotation.IsZero() {
			solid = w.k.Rotate(solid, f.rotation.X, f.rotation.Y, f.rotation.Z)
		}
		if !f.translation.IsZero() {
			solid = w.k.Translate(solid, f.translation.X, f.translation.Y, f.translation.Z)
		}
	}

	mesh, err := w.k.ToMesh(solid)
	if err != nil {
		return fmt.Errorf("tessellate: ToMesh failed for node %s: %w", n.ID.Short(), err)
	}

	if len(w.names) > 0 {
		mesh.NodeName = w.names[len(w.names)-1]
		mesh.Path = append([]string(nil), w.names...)
	}
	mesh.Color = color

	w.meshes = append(w.meshes, mesh)
	return nil
}

// firstColor returns n's own CSG color, or the first color set in its
// subtree in depth-first order.
func firstColor(g *graph.SceneGraph, n *graph.Node) string {
	switch d := n.Data.(type) {
	case graph.GeometryData:
		return d.Color
	case graph.CSGData:
		if d.Color != "" {
			return d.Color
		}
	}
	for _, c := range g.Children(n) {
		if color := firstColor(g, c); color != "" {
			return color
		}
	}
	return ""
}
