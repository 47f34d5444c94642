package selection

import (
	"errors"
	"io"
	"log/slog"

	"github.com/chazu/configurator/pkg/catalog"
	"github.com/chazu/configurator/pkg/naming"
	"github.com/chazu/configurator/pkg/scene"
	"github.com/chazu/configurator/pkg/visibility"
	"github.com/shopspring/decimal"
)

// Session binds the selection state to a configuration model and the
// currently loaded scene. It handles one event at a time and is not safe
// for concurrent use.
type Session struct {
	log   *slog.Logger
	color string

	model *catalog.Model
	state State
	idx   *naming.Index
	scene scene.Scene
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithHighlightColor sets the accent color for highlighted nodes.
func WithHighlightColor(color string) Option {
	return func(s *Session) { s.color = color }
}

// NewSession creates a session in the pre-load state.
func NewSession(m *catalog.Model, opts ...Option) *Session {
	s := &Session{
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		color: visibility.DefaultHighlightColor,
		model: m,
		state: NewState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current selection state.
func (s *Session) State() State { return s.state }

// Model returns the current configuration model.
func (s *Session) Model() *catalog.Model { return s.model }

// Index returns the name index of the current scene load, or nil.
func (s *Session) Index() *naming.Index { return s.idx }

// Total returns the total price of the committed configuration.
func (s *Session) Total() decimal.Decimal {
	return catalog.TotalPrice(s.model)
}

// Loaded reports whether a scene has been loaded.
func (s *Session) Loaded() bool {
	return s.scene != nil
}

// SceneLoaded indexes the scene's nodes, runs the load-time visibility pass
// and enters browsing. It fires once per scene load.
func (s *Session) SceneLoaded(sc scene.Scene) {
	s.scene = sc
	s.idx = naming.NewIndex(sc.Names())
	for _, ex := range s.idx.Excluded() {
		s.log.Debug("node excluded from configuration", "node", ex.Name, "kind", ex.Kind)
	}
	s.log.Info("scene loaded",
		"main", len(s.idx.Main()),
		"instances", len(s.idx.Instances()),
		"excluded", len(s.idx.Excluded()))

	next, eff := s.state.SceneLoaded()
	s.apply(next, eff)
}

// SetModel replaces the configuration model, as after a catalog reload, and
// re-runs the load-time visibility pass.
func (s *Session) SetModel(m *catalog.Model) {
	s.model = m
	if s.Loaded() {
		s.apply(s.state, Effect{InitialPass: true})
	}
}

// SelectPart opens the variant picker for a part.
func (s *Session) SelectPart(part string) {
	next, eff := s.state.SelectPart(part)
	s.apply(next, eff)
}

// PickInScene handles a node picked in the 3D view. Camera, malformed and
// unknown node names are ignored.
func (s *Session) PickInScene(nodeName string) {
	if s.idx == nil {
		return
	}
	ref, ok := s.idx.Lookup(nodeName)
	if !ok {
		s.log.Debug("pick ignored", "node", nodeName)
		return
	}
	if !ref.IsInstance() {
		// Main part nodes carry no variant; use the committed one.
		if v, ok := s.model.Selected(ref.Part); ok {
			ref.Variant = v.ID
		}
	}
	next, eff := s.state.PickInScene(ref)
	s.apply(next, eff)
}

// ChooseVariant commits a variant for the part being edited.
func (s *Session) ChooseVariant(variant string) {
	next, eff := s.state.ChooseVariant(variant)
	s.apply(next, eff)
}

// Back closes the variant picker.
func (s *Session) Back() {
	next, eff := s.state.Back()
	s.apply(next, eff)
}

// apply carries out an effect and moves to next. A commit the model
// rejects for an unknown variant leaves the session unchanged.
func (s *Session) apply(next State, eff Effect) {
	if eff.Commit != nil {
		if !s.commit(*eff.Commit) {
			return
		}
	}
	s.state = next

	if s.scene == nil {
		return
	}
	if eff.InitialPass {
		visibility.Apply(s.scene, visibility.Initial(s.idx, s.model, s.state.ActivePart, s.state.ActiveVariant))
		visibility.ApplyHighlight(s.scene, visibility.HighlightPlan{Remove: s.scene.Names()}, s.color)
	}
	if eff.Commit != nil {
		visibility.Apply(s.scene, visibility.ForPart(s.idx, eff.Commit.Part, eff.Commit.Variant))
	}
	if eff.Highlight != nil {
		hp := visibility.Highlight(s.idx, s.scene.Names(), eff.Highlight.Part, eff.Highlight.Variant)
		visibility.ApplyHighlight(s.scene, hp, s.color)
	}
}

// commit writes t into the model. It reports whether the transition should
// proceed.
func (s *Session) commit(t Target) bool {
	next, err := s.model.SelectVariant(t.Part, t.Variant)
	switch {
	case err == nil:
		s.model = next
		s.log.Info("variant committed", "part", t.Part, "variant", t.Variant,
			"total", catalog.FormatPrice(s.Total()))
		return true
	case errors.Is(err, catalog.ErrUnknownPart):
		// Scene-only parts still switch visibility.
		s.log.Debug("commit for part outside catalog", "part", t.Part, "variant", t.Variant)
		return s.idx != nil && s.idx.Named(t.Part, t.Variant)
	default:
		s.log.Debug("commit rejected", "err", err)
		return false
	}
}
