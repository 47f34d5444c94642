// Package selection drives which part and variant are active and commits
// variant choices into the configuration model.
//
// The state machine itself is a value: every transition on State returns
// the next State and an Effect naming what must be recomputed. Session
// binds a State to a model and a scene and carries the effects out.
package selection

import (
	"fmt"

	"github.com/chazu/configurator/pkg/naming"
)

// DefaultVariant is the active variant before any interaction.
const DefaultVariant = "default"

// Mode is the presentation mode of the configurator.
type Mode int

const (
	ModeLoading  Mode = iota // no scene yet, every intent is inert
	ModeBrowsing             // committed configuration summary
	ModeEditing              // variant picker for the active part
)

func (m Mode) String() string {
	switch m {
	case ModeLoading:
		return "loading"
	case ModeBrowsing:
		return "browsing"
	case ModeEditing:
		return "editing"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// MarshalText renders the mode name for the frontend.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// State is the selection state of a session.
type State struct {
	Mode          Mode   `json:"mode"`
	ActivePart    string `json:"activePart"` // empty until a part is selected or picked
	ActiveVariant string `json:"activeVariant"`
}

// NewState returns the pre-load state.
func NewState() State {
	return State{Mode: ModeLoading, ActiveVariant: DefaultVariant}
}

// Editing reports whether the picker for part is open.
func (s State) Editing(part string) bool {
	return s.Mode == ModeEditing && s.ActivePart == part
}

// Target names a part variant.
type Target struct {
	Part    string
	Variant string
}

// Effect is what a transition asks the session to recompute.
type Effect struct {
	Highlight   *Target // recompute the highlight set
	Commit      *Target // commit into the model and run the part visibility pass
	InitialPass bool    // run the load-time visibility pass
}

// None reports whether the transition was inert.
func (e Effect) None() bool {
	return e.Highlight == nil && e.Commit == nil && !e.InitialPass
}

// SceneLoaded resets the selection for a fresh scene load and enters
// browsing.
func (s State) SceneLoaded() (State, Effect) {
	next := State{Mode: ModeBrowsing, ActiveVariant: DefaultVariant}
	return next, Effect{InitialPass: true}
}

// SelectPart opens the picker for part and highlights part with the
// current active variant.
func (s State) SelectPart(part string) (State, Effect) {
	if s.Mode == ModeLoading || part == "" {
		return s, Effect{}
	}
	s.Mode = ModeEditing
	s.ActivePart = part
	return s, Effect{Highlight: &Target{Part: part, Variant: s.ActiveVariant}}
}

// PickInScene makes the picked node's part and variant active and
// highlights it. The mode is left as it was.
func (s State) PickInScene(ref naming.Ref) (State, Effect) {
	if s.Mode == ModeLoading || ref.Part == "" {
		return s, Effect{}
	}
	s.ActivePart = ref.Part
	if ref.Variant != "" {
		s.ActiveVariant = ref.Variant
	}
	return s, Effect{Highlight: &Target{Part: s.ActivePart, Variant: s.ActiveVariant}}
}

// ChooseVariant commits variant for the part being edited. The picker
// stays open.
func (s State) ChooseVariant(variant string) (State, Effect) {
	if s.Mode != ModeEditing || variant == "" {
		return s, Effect{}
	}
	s.ActiveVariant = variant
	return s, Effect{Commit: &Target{Part: s.ActivePart, Variant: variant}}
}

// Back closes the picker.
func (s State) Back() (State, Effect) {
	if s.Mode == ModeEditing {
		s.Mode = ModeBrowsing
	}
	return s, Effect{}
}
