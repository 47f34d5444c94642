package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/configurator/pkg/engine"
	"github.com/chazu/configurator/pkg/kernel/sdfx"
	"github.com/chazu/configurator/pkg/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chairScene = `
(scene
  (node "seat"
    (node "seat__default" (box :width 0.5 :height 0.05 :depth 0.5))
    (node "seat__ring-chair" (cylinder :radius 0.3 :height 0.05)))
  (camera "Camera1" :at (vec3 2 1.5 2)))
`

func writeScene(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chair.scene")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func newLoader(path string) *Loader {
	return New(path, sdfx.NewWithCells(24), WithTimeout(20*time.Second))
}

func TestLoad(t *testing.T) {
	path := writeScene(t, chairScene)
	ld := newLoader(path)
	assert.Equal(t, path, ld.Path())

	mem, err := ld.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"seat", "seat__default", "seat__ring-chair", "Camera1"}, mem.Names())

	meshes := mem.Meshes()
	require.Len(t, meshes, 2)
	assert.Equal(t, "seat__default", meshes[0].NodeName)
	assert.Equal(t, []string{"seat", "seat__ring-chair"}, meshes[1].Path)

	assert.Equal(t, []scene.Camera{{Name: "Camera1", Position: [3]float64{2, 1.5, 2}}}, mem.Cameras())

	for _, name := range mem.Names() {
		n, ok := mem.Node(name)
		require.True(t, ok)
		assert.True(t, n.Enabled, "%s starts enabled", name)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", `(node "seat" (box :width 1`},
		{"unknown builtin", `(table "seat")`},
		{"invalid geometry", `(node "seat" (box :width 0 :height 1 :depth 1))`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newLoader(writeScene(t, tt.src)).Load(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLoadFailed)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := newLoader(filepath.Join(t.TempDir(), "nope.scene")).Load(context.Background())
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newLoader(writeScene(t, chairScene)).Load(ctx)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadEvalErrorKeepsLine(t *testing.T) {
	_, err := newLoader(writeScene(t, "(+ 1 2)\n(+ 3")).Load(context.Background())
	require.Error(t, err)
	var ee engine.EvalError
	assert.ErrorAs(t, err, &ee)
}

func TestWatch(t *testing.T) {
	path := writeScene(t, chairScene)
	other := filepath.Join(filepath.Dir(path), "other.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 4)
	err := Watch(ctx, newLoader(path).log, func(p string) { changed <- p }, path, "")
	require.NoError(t, err)

	// Writes to unwatched neighbours are ignored.
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(chairScene+"\n"), 0o644))

	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	select {
	case got := <-changed:
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}
