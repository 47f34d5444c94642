package graph

import (
	"fmt"

	"github.com/chazu/configurator/pkg/naming"
)

// validateGeometry checks primitive dimensions and CSG operands (errors),
// and node naming and cameras (warnings).
func validateGeometry(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	errs := validateDimensions(g)
	csgErrs, csgWarnings := validateCSG(g)
	errs = append(errs, csgErrs...)

	warnings := validateNaming(g)
	warnings = append(warnings, csgWarnings...)
	warnings = append(warnings, validateCameras(g)...)
	return errs, warnings
}

// validateDimensions checks that every primitive has positive dimensions
// for its shape.
func validateDimensions(g *SceneGraph) []ValidationError {
	var errs []ValidationError

	positive := func(node *Node, what string, v float64) {
		if v <= 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s is %.4f, must be positive", what, v),
				Severity: SeverityError,
			})
		}
	}

	for _, node := range g.Nodes {
		gd, ok := node.Data.(GeometryData)
		if !ok {
			continue
		}
		switch gd.Shape {
		case ShapeBox:
			positive(node, "box width", gd.Size.X)
			positive(node, "box height", gd.Size.Y)
			positive(node, "box depth", gd.Size.Z)
		case ShapeCylinder:
			positive(node, "cylinder height", gd.Height)
			positive(node, "cylinder radius", gd.Radius)
		case ShapeSphere:
			positive(node, "sphere radius", gd.Radius)
		default:
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("unknown shape %s", gd.Shape),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateNaming warns about named nodes the configurator will ignore:
// malformed names, and cameras named like parts.
func validateNaming(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		if node.Name == "" {
			continue
		}
		kind := naming.Classify(node.Name)
		switch {
		case kind == naming.KindMalformed:
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("name %q does not follow the part or part__variant convention; node is inert", node.Name),
			})
		case node.Kind == NodeCamera && kind != naming.KindCamera:
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("camera %q will be treated as a configurable part; include %q in its name", node.Name, "Camera"),
			})
		}
	}

	return warnings
}

// validateCSG checks that every boolean node has at least two operands and
// no camera below it. Named nodes inside an operand get no mesh of their
// own, so they are reported as warnings.
func validateCSG(g *SceneGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		if node.Kind != NodeCSG {
			continue
		}
		cd, ok := node.Data.(CSGData)
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("csg node has unexpected data type %T", node.Data),
				Severity: SeverityError,
			})
			continue
		}
		if n := len(node.Children); n < 2 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s needs at least 2 operands, has %d", cd.Op, n),
				Severity: SeverityError,
			})
		}

		visited := make(map[NodeID]bool)
		var walk func(n *Node)
		walk = func(n *Node) {
			if visited[n.ID] {
				return
			}
			visited[n.ID] = true
			switch {
			case n.Kind == NodeCamera:
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("camera %q cannot be an operand of %s", n.Name, cd.Op),
					Severity: SeverityError,
				})
			case n.Name != "":
				warnings = append(warnings, ValidationWarning{
					NodeID:  n.ID,
					Message: fmt.Sprintf("node %q inside %s is merged into one mesh and cannot be configured on its own", n.Name, cd.Op),
				})
			}
			for _, c := range g.Children(n) {
				walk(c)
			}
		}
		for _, c := range g.Children(node) {
			walk(c)
		}
	}

	return errs, warnings
}

// validateCameras warns about cameras that look at their own position.
func validateCameras(g *SceneGraph) []ValidationWarning {
	var warnings []ValidationWarning
	for _, node := range g.Cameras() {
		cd, ok := node.Data.(CameraData)
		if ok && cd.Position == cd.Target {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("camera %q has no viewing direction; set :at apart from :target", node.Name),
			})
		}
	}
	return warnings
}
