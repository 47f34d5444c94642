// Package naming maps scene node names onto part and variant identity.
//
// Scene nodes follow a flat convention: a main part node is named after the
// part ("seat") and each variant instance is named part, delimiter, variant
// ("seat__ring-chair"). Camera nodes share the scene graph and are excluded.
package naming

import (
	"errors"
	"fmt"
	"strings"
)

// Delimiter separates the part and variant components of an instance name.
const Delimiter = "__"

// cameraMarker identifies camera nodes exported alongside the model.
const cameraMarker = "Camera"

// ErrMalformedName is returned for names that do not parse under the
// naming convention. Such nodes are treated as inert geometry.
var ErrMalformedName = errors.New("malformed node name")

// Kind classifies a node name.
type Kind int

const (
	KindMain      Kind = iota // part node, no variant suffix
	KindInstance              // part__variant node
	KindCamera                // camera, excluded
	KindMalformed             // unparseable, excluded
)

func (k Kind) String() string {
	switch k {
	case KindMain:
		return "main"
	case KindInstance:
		return "instance"
	case KindCamera:
		return "camera"
	case KindMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Ref is the parsed identity of a scene node.
type Ref struct {
	Part    string
	Variant string // empty for main part nodes
}

// IsInstance reports whether the ref names a variant instance.
func (r Ref) IsInstance() bool {
	return r.Variant != ""
}

// Name renders the ref back into a scene node name.
func (r Ref) Name() string {
	if r.Variant == "" {
		return r.Part
	}
	return InstanceName(r.Part, r.Variant)
}

// InstanceName returns the scene node name of a part variant.
func InstanceName(part, variant string) string {
	return part + Delimiter + variant
}

// IsCamera reports whether name denotes a camera node.
func IsCamera(name string) bool {
	return strings.Contains(name, cameraMarker)
}

// Parse splits a node name into its part and optional variant. Names with
// more than one delimiter or an empty component are rejected.
func Parse(name string) (Ref, error) {
	if name == "" {
		return Ref{}, fmt.Errorf("%w: empty name", ErrMalformedName)
	}
	parts := strings.Split(name, Delimiter)
	switch len(parts) {
	case 1:
		return Ref{Part: name}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Ref{}, fmt.Errorf("%w: %q has an empty component", ErrMalformedName, name)
		}
		return Ref{Part: parts[0], Variant: parts[1]}, nil
	default:
		return Ref{}, fmt.Errorf("%w: %q has %d delimiters", ErrMalformedName, name, len(parts)-1)
	}
}

// Classify returns the kind of a node name.
func Classify(name string) Kind {
	if IsCamera(name) {
		return KindCamera
	}
	ref, err := Parse(name)
	if err != nil {
		return KindMalformed
	}
	if ref.IsInstance() {
		return KindInstance
	}
	return KindMain
}
