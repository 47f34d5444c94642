package scene

import (
	"testing"

	"github.com/chazu/configurator/pkg/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemory(t *testing.T) {
	meshes := []*kernel.Mesh{{NodeName: "seat__default"}}
	m := NewMemory([]string{"seat", "seat__default", "seat"}, meshes)

	assert.Equal(t, []string{"seat", "seat__default"}, m.Names())
	for _, n := range m.Nodes() {
		assert.True(t, n.Enabled, "%s starts enabled", n.Name)
		assert.False(t, n.Highlighted)
	}
	assert.Equal(t, meshes, m.Meshes())
	assert.Empty(t, m.Drain())
}

func TestCameras(t *testing.T) {
	m := NewMemory([]string{"Camera1", "CameraTop"}, nil)
	assert.Empty(t, m.Cameras())

	front := Camera{Name: "Camera1", Position: [3]float64{2, 1.5, 2}, Target: [3]float64{0, 0.4, 0}}
	top := Camera{Name: "CameraTop", Position: [3]float64{0, 5, 0}}
	m.AddCamera(front)
	m.AddCamera(top)
	assert.Equal(t, []Camera{front, top}, m.Cameras())

	// Callers get a copy.
	m.Cameras()[0].Name = "changed"
	assert.Equal(t, "Camera1", m.Cameras()[0].Name)
	assert.Empty(t, m.Drain(), "cameras are not scene commands")
}

func TestSetEnabledJournal(t *testing.T) {
	m := NewMemory([]string{"seat__default", "seat__ring-chair"}, nil)

	m.SetEnabled("seat__default", false)
	m.SetEnabled("seat__default", false) // no change, not journaled
	m.SetEnabled("seat__ring-chair", true)
	m.SetEnabled("lamp__default", false) // unknown, ignored

	n, ok := m.Node("seat__default")
	require.True(t, ok)
	assert.False(t, n.Enabled)

	assert.Equal(t, []Command{{Op: OpDisable, Node: "seat__default"}}, m.Drain())
	assert.Empty(t, m.Drain(), "drain clears the journal")

	m.SetEnabled("seat__default", true)
	assert.Equal(t, []Command{{Op: OpEnable, Node: "seat__default"}}, m.Drain())
}

func TestHighlight(t *testing.T) {
	m := NewMemory([]string{"seat", "seat__default"}, nil)

	m.AddHighlight("seat__default", "#FFFFFF")
	m.AddHighlight("seat__default", "#FFFFFF")
	assert.Equal(t, []string{"seat__default"}, m.Highlighted())

	n, _ := m.Node("seat__default")
	assert.Equal(t, "#FFFFFF", n.Color)

	m.RemoveHighlight("seat__default")
	m.RemoveHighlight("seat")
	assert.Empty(t, m.Highlighted())

	assert.Equal(t, []Command{
		{Op: OpHighlight, Node: "seat__default", Color: "#FFFFFF"},
		{Op: OpUnhighlight, Node: "seat__default"},
	}, m.Drain())

	_, ok := m.Node("lamp")
	assert.False(t, ok)
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "enable", OpEnable.String())
	assert.Equal(t, "unhighlight", OpUnhighlight.String())
	assert.Equal(t, "unknown", Op(42).String())
}
