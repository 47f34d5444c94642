package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"sync"

	"github.com/chazu/configurator/pkg/catalog"
	"github.com/chazu/configurator/pkg/config"
	"github.com/chazu/configurator/pkg/kernel"
	"github.com/chazu/configurator/pkg/kernel/sdfx"
	"github.com/chazu/configurator/pkg/loader"
	"github.com/chazu/configurator/pkg/scene"
	"github.com/chazu/configurator/pkg/selection"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Events emitted to the frontend.
const (
	EventState = "configurator:state"
	EventScene = "configurator:scene"
)

// colorPalette assigns a distinct color to each part whose geometry
// carries no color of its own.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Status is the scene load status shown by the frontend.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// App is the Wails backend. It exposes the configurator intents to the
// frontend via bindings. Wails calls bound methods from many goroutines, so
// every intent runs under mu.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *slog.Logger
	cfg    config.Config
	loader *loader.Loader

	mu      sync.Mutex
	session *selection.Session
	mem     *scene.Memory
	status  Status
	loadErr string

	// emit forwards events to the frontend. Nil outside a Wails runtime.
	emit func(event string, data ...interface{})
}

// StateData is the state projection returned to the frontend.
type StateData struct {
	selection.View
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices    []float32 `json:"vertices"`
	Normals     []float32 `json:"normals"`
	Indices     []uint32  `json:"indices"`
	NodeName    string    `json:"nodeName"`
	Color       string    `json:"color"`
	Visible     bool      `json:"visible"`
	Highlighted bool      `json:"highlighted"`
	Highlight   string    `json:"highlight,omitempty"`
}

// CameraData is the viewpoint the frontend projects the scene through.
type CameraData struct {
	Name     string     `json:"name,omitempty"`
	Position [3]float64 `json:"position"`
	Target   [3]float64 `json:"target"`
}

// defaultCamera is used before any scene has loaded.
var defaultCamera = CameraData{Position: [3]float64{3, 2, 3}, Target: [3]float64{0, 0.4, 0}}

// NewApp loads the catalog and prepares the scene loader. A catalog that
// breaks the one-default-per-part rule is a startup error.
func NewApp(cfg config.Config, log *slog.Logger) (*App, error) {
	model, err := loadModel(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	return &App{
		ctx: context.Background(),
		log: log,
		cfg: cfg,
		loader: loader.New(cfg.Scene, sdfx.NewWithCells(cfg.MeshCells),
			loader.WithLogger(log), loader.WithTimeout(cfg.LoadTimeout)),
		session: selection.NewSession(model,
			selection.WithLogger(log), selection.WithHighlightColor(cfg.HighlightColor)),
		status: StatusLoading,
	}, nil
}

// loadModel initializes the catalog file at path, or the built-in catalog
// when path is empty. catalog.Load already names the file in its errors.
func loadModel(path string) (*catalog.Model, error) {
	c := catalog.Default()
	if path != "" {
		var err error
		if c, err = catalog.Load(path); err != nil {
			return nil, err
		}
	}
	m, err := catalog.Initialize(c)
	if err != nil {
		if path == "" {
			return nil, fmt.Errorf("built-in catalog: %w", err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// startup is called by Wails on app startup. It starts the first scene
// load and, if configured, the file watcher.
func (a *App) startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)
	a.emit = func(event string, data ...interface{}) {
		runtime.EventsEmit(ctx, event, data...)
	}
	go a.Reload()

	if a.cfg.Watch {
		if err := loader.Watch(a.ctx, a.log, a.fileChanged, a.cfg.Scene, a.cfg.Catalog); err != nil {
			a.log.Error("file watcher not started", "err", err)
		}
	}
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
}

func (a *App) fileChanged(path string) {
	if a.cfg.Catalog != "" && sameFile(path, a.cfg.Catalog) {
		a.reloadCatalog()
		return
	}
	a.Reload()
}

// reloadCatalog swaps in the catalog file's contents. A broken catalog is
// logged and the current one kept.
func (a *App) reloadCatalog() {
	m, err := loadModel(a.cfg.Catalog)
	if err != nil {
		a.log.Error("catalog reload rejected", "path", a.cfg.Catalog, "err", err)
		return
	}
	a.mu.Lock()
	a.session.SetModel(m)
	journal := a.drain()
	a.mu.Unlock()
	a.log.Info("catalog reloaded", "path", a.cfg.Catalog, "parts", m.Len())
	a.publish(journal)
}

// Reload loads the scene script again. A failure is surfaced in the
// status; calling Reload again retries.
func (a *App) Reload() StateData {
	a.mu.Lock()
	a.status, a.loadErr = StatusLoading, ""
	a.mu.Unlock()
	a.publish(nil)

	mem, err := a.loader.Load(a.ctx)

	a.mu.Lock()
	switch {
	case errors.Is(err, loader.ErrSuperseded):
		// A newer load owns the status.
	case err != nil:
		a.status, a.loadErr = StatusFailed, err.Error()
	default:
		a.mem = mem
		a.session.SceneLoaded(mem)
		a.status = StatusReady
	}
	journal := a.drain()
	a.mu.Unlock()

	a.publish(journal)
	return a.State()
}

// SelectPart opens the variant picker for a part.
func (a *App) SelectPart(part string) StateData {
	return a.do(func(s *selection.Session) { s.SelectPart(part) })
}

// ChooseVariant commits a variant for the part being edited.
func (a *App) ChooseVariant(variant string) StateData {
	return a.do(func(s *selection.Session) { s.ChooseVariant(variant) })
}

// Back closes the variant picker.
func (a *App) Back() StateData {
	return a.do(func(s *selection.Session) { s.Back() })
}

// PickInScene handles a node picked in the 3D view.
func (a *App) PickInScene(nodeName string) StateData {
	return a.do(func(s *selection.Session) { s.PickInScene(nodeName) })
}

func (a *App) do(intent func(*selection.Session)) StateData {
	a.mu.Lock()
	intent(a.session)
	journal := a.drain()
	st := a.stateLocked()
	a.mu.Unlock()

	a.publish(journal)
	return st
}

// State returns the current state projection.
func (a *App) State() StateData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *App) stateLocked() StateData {
	return StateData{View: a.session.View(), Status: a.status, Error: a.loadErr}
}

// Meshes returns the meshes of the loaded scene with their current
// visibility and highlight. A mesh is visible when every named node above
// it is enabled.
func (a *App) Meshes() []MeshData {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := []MeshData{}
	if a.mem == nil {
		return out
	}

	parts := make(map[string]int)
	if idx := a.session.Index(); idx != nil {
		for i, p := range idx.Main() {
			parts[p] = i
		}
	}

	for i, m := range a.mem.Meshes() {
		md := MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			NodeName: m.NodeName,
			Color:    m.Color,
			Visible:  true,
		}
		if md.Color == "" {
			slot := i
			if len(m.Path) > 0 {
				if p, ok := parts[m.Path[0]]; ok {
					slot = p
				}
			}
			md.Color = colorPalette[slot%len(colorPalette)]
		}
		for _, name := range m.Path {
			n, ok := a.mem.Node(name)
			if !ok {
				continue
			}
			if !n.Enabled {
				md.Visible = false
			}
			if n.Highlighted {
				md.Highlighted = true
				md.Highlight = n.Color
			}
		}
		out = append(out, md)
	}
	return out
}

// Camera returns the first usable camera the scene declares. A scene
// without one is framed from the bounds of its meshes.
func (a *App) Camera() CameraData {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.mem == nil {
		return defaultCamera
	}
	for _, c := range a.mem.Cameras() {
		if c.Position != c.Target {
			return CameraData{Name: c.Name, Position: c.Position, Target: c.Target}
		}
	}
	return frameMeshes(a.mem.Meshes())
}

// frameMeshes looks at the center of the meshes' combined bounds from a
// raised diagonal, far enough back to keep them all in view.
func frameMeshes(meshes []*kernel.Mesh) CameraData {
	var lo, hi [3]float32
	found := false
	for _, m := range meshes {
		if m.IsEmpty() {
			continue
		}
		mn, mx := m.Bounds()
		if !found {
			lo, hi, found = mn, mx, true
			continue
		}
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], mn[i])
			hi[i] = max(hi[i], mx[i])
		}
	}
	if !found {
		return defaultCamera
	}

	var cam CameraData
	var diag float64
	for i := 0; i < 3; i++ {
		cam.Target[i] = float64(lo[i]+hi[i]) / 2
		d := float64(hi[i] - lo[i])
		diag += d * d
	}
	dist := math.Max(math.Sqrt(diag), 0.1) * 1.5
	dir := [3]float64{1, 0.7, 1}
	norm := math.Sqrt(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2])
	for i := 0; i < 3; i++ {
		cam.Position[i] = cam.Target[i] + dir[i]/norm*dist
	}
	return cam
}

// drain empties the scene journal. Callers hold mu.
func (a *App) drain() []scene.Command {
	if a.mem == nil {
		return nil
	}
	return a.mem.Drain()
}

// publish tells the frontend the state changed, and the scene too when
// the journal carries commands.
func (a *App) publish(journal []scene.Command) {
	if a.emit == nil {
		return
	}
	a.emit(EventState, a.State())
	if len(journal) > 0 {
		a.emit(EventScene, journal)
	}
}

// sameFile compares two paths after making them absolute.
func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
