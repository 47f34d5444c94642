package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/configurator/pkg/graph"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpGeometry is a primitive not yet placed in the graph. It becomes a
// node when a node, place or scene form takes it as a child, so one
// (def ...) can be reused.
type sexpGeometry struct {
	data graph.GeometryData
}

func (s *sexpGeometry) SexpString(ps *zygo.PrintState) string {
	switch s.data.Shape {
	case graph.ShapeBox:
		return fmt.Sprintf("(box %gx%gx%g)", s.data.Size.X, s.data.Size.Y, s.data.Size.Z)
	case graph.ShapeCylinder:
		return fmt.Sprintf("(cylinder r=%g h=%g)", s.data.Radius, s.data.Height)
	default:
		return fmt.Sprintf("(%s r=%g)", s.data.Shape, s.data.Radius)
	}
}
func (s *sexpGeometry) Type() *zygo.RegisteredType { return nil }

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(ref %q)", n.name)
	}
	return fmt.Sprintf("(ref %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float reads an optional numeric keyword into dst.
func (a kwArgs) float(key string, dst *float64) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// str reads an optional string keyword into dst.
func (a kwArgs) str(key string, dst *string) error {
	v, ok := a.kw[key]
	if !ok {
		return nil
	}
	s, err := toString(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = s
	return nil
}

// vec reads an optional vec3 keyword. It returns nil when absent.
func (a kwArgs) vec(key string) (*graph.Vec3, error) {
	v, ok := a.kw[key]
	if !ok {
		return nil, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &vec, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// children turns builtin arguments into child node IDs. Unplaced
// geometry becomes an unnamed geometry node; lists and arrays are
// flattened; nil is skipped.
func (b *builder) children(args []zygo.Sexp) ([]graph.NodeID, error) {
	var ids []graph.NodeID
	for i, arg := range args {
		switch v := arg.(type) {
		case *sexpNodeRef:
			ids = append(ids, v.id)
		case *sexpGeometry:
			id := b.anonID(v.data.Shape.String())
			b.add(&graph.Node{ID: id, Kind: graph.NodeGeometry, Data: v.data})
			ids = append(ids, id)
		case *zygo.SexpPair, *zygo.SexpArray, *zygo.SexpSentinel:
			items, err := sexpListToSlice(arg)
			if err != nil {
				return nil, fmt.Errorf("child %d: %w", i+1, err)
			}
			nested, err := b.children(items)
			if err != nil {
				return nil, err
			}
			ids = append(ids, nested...)
		default:
			return nil, fmt.Errorf("child %d: expected geometry or node, got %T (%s)",
				i+1, arg, arg.SexpString(nil))
		}
	}
	return ids, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL into a zygomys environment. The
// builtins populate the builder's graph during evaluation.
//
// Source must go through preprocessSource first so that :keyword tokens
// arrive as recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (box :width 0.6 :height 0.05 :depth 0.6 :color "#8B5A2B")
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		gd := graph.GeometryData{Shape: graph.ShapeBox}
		for _, err := range []error{
			pa.float("width", &gd.Size.X),
			pa.float("height", &gd.Size.Y),
			pa.float("depth", &gd.Size.Z),
			pa.str("color", &gd.Color),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("box: %w", err)
			}
		}
		return &sexpGeometry{data: gd}, nil
	})

	// -----------------------------------------------------------------------
	// (cylinder :radius 0.2 :height 0.4 :color "#333333")
	// -----------------------------------------------------------------------
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		gd := graph.GeometryData{Shape: graph.ShapeCylinder}
		for _, err := range []error{
			pa.float("radius", &gd.Radius),
			pa.float("height", &gd.Height),
			pa.str("color", &gd.Color),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
			}
		}
		return &sexpGeometry{data: gd}, nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 0.3 :color "#E67E22")
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		gd := graph.GeometryData{Shape: graph.ShapeSphere}
		for _, err := range []error{
			pa.float("radius", &gd.Radius),
			pa.str("color", &gd.Color),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
			}
		}
		return &sexpGeometry{data: gd}, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (node "seat__ring-chair" (box ...) (place ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("node requires a name argument")
		}
		nodeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node: name: %w", err)
		}
		if nodeName == "" {
			return zygo.SexpNull, fmt.Errorf("node: name must not be empty")
		}

		kids, err := b.children(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("node %q: %w", nodeName, err)
		}

		id := graph.NewNodeID("node/" + nodeName)
		if err := b.addNamed(&graph.Node{
			ID:       id,
			Kind:     graph.NodeGroup,
			Name:     nodeName,
			Children: kids,
			Data:     graph.GroupData{},
		}); err != nil {
			return zygo.SexpNull, fmt.Errorf("node: %w", err)
		}

		return &sexpNodeRef{id: id, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (place child :at (vec3 0 0.45 0) :rotate (vec3 0 90 0))
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("place requires at least one child")
		}

		var td graph.TransformData
		var err error
		if td.Translation, err = pa.vec("at"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		if td.Rotation, err = pa.vec("rotate"); err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		kids, err := b.children(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}

		id := b.anonID("place")
		b.add(&graph.Node{
			ID:       id,
			Kind:     graph.NodeTransform,
			Children: kids,
			Data:     td,
		})

		return &sexpNodeRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (ref "seat")
	// -----------------------------------------------------------------------
	env.AddFunction("ref", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ref requires a name argument")
		}
		nodeName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ref: name: %w", err)
		}
		n := b.g.Lookup(nodeName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("ref: no node named %q", nodeName)
		}
		return &sexpNodeRef{id: n.ID, name: nodeName}, nil
	})

	// -----------------------------------------------------------------------
	// (camera "Camera1" :at (vec3 2 1.5 2) :target (vec3 0 0.4 0))
	// -----------------------------------------------------------------------
	env.AddFunction("camera", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("camera requires a name argument")
		}
		camName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("camera: name: %w", err)
		}

		var cd graph.CameraData
		if at, err := pa.vec("at"); err != nil {
			return zygo.SexpNull, fmt.Errorf("camera: %w", err)
		} else if at != nil {
			cd.Position = *at
		}
		if target, err := pa.vec("target"); err != nil {
			return zygo.SexpNull, fmt.Errorf("camera: %w", err)
		} else if target != nil {
			cd.Target = *target
		}

		id := graph.NewNodeID("camera/" + camName)
		if err := b.addNamed(&graph.Node{
			ID:   id,
			Kind: graph.NodeCamera,
			Name: camName,
			Data: cd,
		}); err != nil {
			return zygo.SexpNull, fmt.Errorf("camera: %w", err)
		}

		return &sexpNodeRef{id: id, name: camName}, nil
	})

	// -----------------------------------------------------------------------
	// (difference (cylinder :radius 0.28 ...) (cylinder :radius 0.2 ...) :color "#8B5A2B")
	// (union a b ...) and (intersection a b ...) take the same arguments.
	// -----------------------------------------------------------------------
	for _, op := range []graph.CSGOp{graph.CSGUnion, graph.CSGDifference, graph.CSGIntersection} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) < 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires at least two operands, got %d", op, len(pa.positional))
			}

			cd := graph.CSGData{Op: op}
			if err := pa.str("color", &cd.Color); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}

			kids, err := b.children(pa.positional)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}

			id := b.anonID(op.String())
			b.add(&graph.Node{
				ID:       id,
				Kind:     graph.NodeCSG,
				Children: kids,
				Data:     cd,
			})

			return &sexpNodeRef{id: id}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (scene (node ...) (node ...) (camera ...))
	// -----------------------------------------------------------------------
	env.AddFunction("scene", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		kids, err := b.children(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scene: %w", err)
		}

		id := b.anonID("scene")
		b.add(&graph.Node{
			ID:       id,
			Kind:     graph.NodeGroup,
			Children: kids,
			Data:     graph.GroupData{Description: "scene"},
		})
		b.g.AddRoot(id)

		return &sexpNodeRef{id: id}, nil
	})
}
