package main

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/chazu/configurator/pkg/catalog"
	"github.com/chazu/configurator/pkg/scene"
	"github.com/chazu/configurator/pkg/selection"
)

// ---------------------------------------------------------------------------
// Before the scene loads, intents are inert and nothing is drawn.
// ---------------------------------------------------------------------------

func TestE2EBeforeLoad(t *testing.T) {
	app := newTestApp(t, testConfig())

	st := app.SelectPart("seat")
	if st.Status != StatusLoading {
		t.Errorf("status = %s, want loading", st.Status)
	}
	if st.State.Mode != selection.ModeLoading {
		t.Errorf("mode = %s, want loading", st.State.Mode)
	}
	app.ChooseVariant("ring-chair")
	if got := app.State().Total; got != "$625.00" {
		t.Errorf("total = %s, want $625.00", got)
	}

	ms := app.Meshes()
	if ms == nil {
		t.Error("Meshes should be a non-nil empty slice (JSON [] not null)")
	}
	if len(ms) != 0 {
		t.Errorf("expected 0 meshes before load, got %d", len(ms))
	}
}

// ---------------------------------------------------------------------------
// A load failure is visible and Reload retries.
// ---------------------------------------------------------------------------

func TestE2ELoadFailureAndRetry(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Scene = filepath.Join(dir, "room.scene")

	app := newTestApp(t, cfg)
	st := app.Reload()
	if st.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", st.Status)
	}
	if !strings.Contains(st.Error, "scene load failed") {
		t.Errorf("error = %q", st.Error)
	}
	if st.State.Mode != selection.ModeLoading {
		t.Errorf("session should stay inert, mode = %s", st.State.Mode)
	}

	src := `(node "seat" (node "seat__default" (box :width 0.5 :height 0.3 :depth 0.5)))`
	if err := os.WriteFile(cfg.Scene, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	st = app.Reload()
	if st.Status != StatusReady {
		t.Fatalf("retry status = %s (%s), want ready", st.Status, st.Error)
	}
	if st.Error != "" {
		t.Errorf("error should clear on success, got %q", st.Error)
	}
}

func TestE2EScriptErrorIsReported(t *testing.T) {
	cfg := testConfig()
	cfg.Scene = filepath.Join(t.TempDir(), "broken.scene")
	if err := os.WriteFile(cfg.Scene, []byte("(+ 1 2)\n(node \"seat\""), 0o644); err != nil {
		t.Fatal(err)
	}
	st := newTestApp(t, cfg).Reload()
	if st.Status != StatusFailed || st.Error == "" {
		t.Fatalf("expected failed status with message, got %s %q", st.Status, st.Error)
	}
}

// ---------------------------------------------------------------------------
// Catalog handling.
// ---------------------------------------------------------------------------

func TestE2ECatalogFile(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog = "examples/furniture.yaml"
	app := newTestApp(t, cfg)
	if got := app.State().Total; got != "$625.00" {
		t.Errorf("total = %s, want $625.00", got)
	}
}

func TestE2ECatalogInvariantIsFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog = filepath.Join(t.TempDir(), "bad.yaml")
	bad := `parts:
  - id: seat
    displayText: Seat
    variants:
      - {id: default, name: Default, price: 220, isDefault: true}
      - {id: ring-chair, name: Ring Chair, price: 320, isDefault: true}
`
	if err := os.WriteFile(cfg.Catalog, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, catalog.ErrCatalogInvariant) {
		t.Fatalf("expected ErrCatalogInvariant, got %v", err)
	}
}

func TestE2ECatalogDecodeErrorMessage(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog = filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(cfg.Catalog, []byte("parts: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected an error for a malformed catalog")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, cfg.Catalog+": catalog: decode: ") {
		t.Errorf("error = %q, want the path then one package prefix", msg)
	}
	if n := strings.Count(msg, "catalog:"); n != 1 {
		t.Errorf("error = %q repeats the package prefix %d times", msg, n)
	}
}

func TestE2ECatalogReload(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Catalog = filepath.Join(dir, "parts.yaml")
	write := func(seatPrice string) {
		t.Helper()
		src := `parts:
  - id: seat
    displayText: Seat
    variants:
      - {id: default, name: Default, price: ` + seatPrice + `, isDefault: true}
      - {id: ring-chair, name: Ring Chair, price: 320}
`
		if err := os.WriteFile(cfg.Catalog, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("220")

	app := newTestApp(t, cfg)
	if st := app.Reload(); st.Status != StatusReady {
		t.Fatalf("status = %s (%s)", st.Status, st.Error)
	}
	if got := app.State().Total; got != "$220.00" {
		t.Fatalf("total = %s, want $220.00", got)
	}

	write("199.50")
	app.fileChanged(cfg.Catalog)
	if got := app.State().Total; got != "$199.50" {
		t.Errorf("total after reload = %s, want $199.50", got)
	}

	// A broken catalog keeps the current one.
	if err := os.WriteFile(cfg.Catalog, []byte("parts: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app.fileChanged(cfg.Catalog)
	if got := app.State().Total; got != "$199.50" {
		t.Errorf("total after bad reload = %s, want $199.50", got)
	}
}

// ---------------------------------------------------------------------------
// Events and colors.
// ---------------------------------------------------------------------------

type recorder struct {
	mu     sync.Mutex
	events []string
	scene  [][]scene.Command
}

func (r *recorder) emit(event string, data ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if event == EventScene {
		r.scene = append(r.scene, data[0].([]scene.Command))
	}
}

func TestE2EEvents(t *testing.T) {
	app := loadedApp(t)
	rec := &recorder{}
	app.emit = rec.emit

	app.SelectPart("seat")
	if len(rec.events) != 2 || rec.events[0] != EventState || rec.events[1] != EventScene {
		t.Fatalf("events = %v, want [state scene]", rec.events)
	}
	found := false
	for _, c := range rec.scene[0] {
		if c.Op == scene.OpHighlight && c.Node == "seat__default" {
			found = true
		}
	}
	if !found {
		t.Errorf("journal should highlight seat__default, got %v", rec.scene[0])
	}

	// Back changes no node, so only state is emitted.
	rec.events = nil
	app.Back()
	if len(rec.events) != 1 || rec.events[0] != EventState {
		t.Errorf("events = %v, want [state]", rec.events)
	}
}

func TestE2EPaletteForUncoloredGeometry(t *testing.T) {
	cfg := testConfig()
	cfg.Scene = filepath.Join(t.TempDir(), "plain.scene")
	src := `
(node "a" (node "a__default" (box :width 1 :height 1 :depth 1)))
(node "b" (node "b__default" (sphere :radius 0.5)))
`
	if err := os.WriteFile(cfg.Scene, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	app := newTestApp(t, cfg)
	if st := app.Reload(); st.Status != StatusReady {
		t.Fatalf("status = %s (%s)", st.Status, st.Error)
	}
	ms := app.Meshes()
	if len(ms) != 2 {
		t.Fatalf("meshes = %d, want 2", len(ms))
	}
	if ms[0].Color != colorPalette[0] || ms[1].Color != colorPalette[1] {
		t.Errorf("colors = %s, %s; want palette order", ms[0].Color, ms[1].Color)
	}
	// Parts outside the catalog still switch on their instance.
	if !ms[0].Visible || !ms[1].Visible {
		t.Error("default instances of scene-only parts should be visible")
	}
}

// ---------------------------------------------------------------------------
// The view follows the scene's camera, or frames the meshes without one.
// ---------------------------------------------------------------------------

func TestE2ECameraFromScene(t *testing.T) {
	if got := newTestApp(t, testConfig()).Camera(); got != defaultCamera {
		t.Errorf("camera before load = %+v, want default", got)
	}

	got := loadedApp(t).Camera()
	want := CameraData{
		Name:     "Camera1",
		Position: [3]float64{2.4, 1.6, 2.4},
		Target:   [3]float64{0.3, 0.4, 0},
	}
	if got != want {
		t.Errorf("camera = %+v, want %+v", got, want)
	}
}

func TestE2ECameraFramesMeshes(t *testing.T) {
	for name, extra := range map[string]string{
		"no camera":           "",
		"camera without :at": `(camera "Camera1")`,
	} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Scene = filepath.Join(t.TempDir(), "box.scene")
			src := `(node "a" (node "a__default" (place (box :width 1 :height 0.5 :depth 1) :at (vec3 2 0.25 0))))` + "\n" + extra
			if err := os.WriteFile(cfg.Scene, []byte(src), 0o644); err != nil {
				t.Fatal(err)
			}
			app := newTestApp(t, cfg)
			if st := app.Reload(); st.Status != StatusReady {
				t.Fatalf("status = %s (%s)", st.Status, st.Error)
			}

			cam := app.Camera()
			if cam.Name != "" {
				t.Errorf("framed camera should be unnamed, got %q", cam.Name)
			}
			for i, want := range [3]float64{2, 0.25, 0} {
				if math.Abs(cam.Target[i]-want) > 0.05 {
					t.Errorf("target[%d] = %.3f, want about %.2f", i, cam.Target[i], want)
				}
			}
			var dist float64
			for i := 0; i < 3; i++ {
				d := cam.Position[i] - cam.Target[i]
				dist += d * d
			}
			if math.Sqrt(dist) < 1.5 {
				t.Errorf("camera %.3f from the target, too close to see a 1x0.5x1 box", math.Sqrt(dist))
			}
			if cam.Position[1] <= cam.Target[1] {
				t.Error("camera should look down on the scene")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Concurrent intents are serialized.
// ---------------------------------------------------------------------------

func TestE2EConcurrentIntents(t *testing.T) {
	app := loadedApp(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			part := []string{"stand", "seat", "beanbag"}[i%3]
			app.SelectPart(part)
			app.ChooseVariant("default")
			app.PickInScene(part + "__default")
			app.Meshes()
			app.Back()
		}(i)
	}
	wg.Wait()

	for _, p := range app.session.Model().Parts() {
		n := 0
		for _, v := range p.Variants {
			if v.Selected {
				n++
			}
		}
		if n != 1 {
			t.Errorf("part %q has %d selected variants", p.ID, n)
		}
	}
}
