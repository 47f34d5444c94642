// Package loader turns a scene script into a loaded scene: it evaluates
// the script, validates the graph, tessellates every primitive, and hands
// back a scene.Memory, with the script's cameras, ready for the selection
// session.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chazu/configurator/pkg/engine"
	"github.com/chazu/configurator/pkg/graph"
	"github.com/chazu/configurator/pkg/kernel"
	"github.com/chazu/configurator/pkg/scene"
	"github.com/chazu/configurator/pkg/tessellate"
)

var (
	// ErrLoadFailed wraps every failure to produce a scene.
	ErrLoadFailed = errors.New("scene load failed")

	// ErrSuperseded is returned by a load that finished after a newer one
	// started. Its result is discarded.
	ErrSuperseded = errors.New("scene load superseded")
)

// DefaultTimeout bounds a load when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// Loader loads one scene script. Load may be called again to reload; only
// the most recent call's result is delivered.
type Loader struct {
	path    string
	kernel  kernel.Kernel
	engine  *engine.Engine
	log     *slog.Logger
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithTimeout bounds each load.
func WithTimeout(d time.Duration) Option {
	return func(ld *Loader) {
		if d > 0 {
			ld.timeout = d
		}
	}
}

// New returns a loader for the scene script at path.
func New(path string, k kernel.Kernel, opts ...Option) *Loader {
	ld := &Loader{
		path:    path,
		kernel:  k,
		engine:  engine.NewEngine(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(ld)
	}
	ld.engine.SetTimeout(ld.timeout)
	return ld
}

// Path returns the scene script path.
func (ld *Loader) Path() string { return ld.path }

// Load reads, evaluates and tessellates the scene script. Every failure
// wraps ErrLoadFailed; a load overtaken by a newer one returns
// ErrSuperseded instead.
func (ld *Loader) Load(ctx context.Context) (*scene.Memory, error) {
	ld.mu.Lock()
	ld.generation++
	gen := ld.generation
	ld.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, ld.timeout)
	defer cancel()

	start := time.Now()
	mem, err := ld.load(ctx)

	ld.mu.Lock()
	stale := gen != ld.generation
	ld.mu.Unlock()
	if stale {
		ld.log.Debug("discarding stale scene load", "generation", gen)
		return nil, ErrSuperseded
	}

	if err != nil {
		ld.log.Error("scene load failed", "path", ld.path, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	ld.log.Info("scene loaded", "path", ld.path,
		"nodes", len(mem.Names()), "meshes", len(mem.Meshes()),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return mem, nil
}

func (ld *Loader) load(ctx context.Context) (*scene.Memory, error) {
	src, err := os.ReadFile(ld.path)
	if err != nil {
		return nil, err
	}

	g, evalErrs, err := ld.engine.EvaluateContext(ctx, string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ld.path, err)
	}
	if len(evalErrs) > 0 {
		return nil, fmt.Errorf("%s: %w", ld.path, joinEvalErrors(evalErrs))
	}

	res := graph.ValidateAll(g)
	for _, w := range res.Warnings {
		ld.log.Warn("scene graph", "warning", w.Message)
	}
	if !res.OK() {
		errs := make([]error, len(res.Errors))
		for i, e := range res.Errors {
			errs[i] = e
		}
		return nil, fmt.Errorf("%s: invalid scene graph: %w", ld.path, errors.Join(errs...))
	}

	meshes, err := tessellate.Tessellate(ctx, g, ld.kernel)
	if err != nil {
		return nil, err
	}

	mem := scene.NewMemory(g.Names(), meshes)
	for _, n := range g.Cameras() {
		cd, ok := n.Data.(graph.CameraData)
		if !ok {
			continue
		}
		mem.AddCamera(scene.Camera{
			Name:     n.Name,
			Position: [3]float64{cd.Position.X, cd.Position.Y, cd.Position.Z},
			Target:   [3]float64{cd.Target.X, cd.Target.Y, cd.Target.Z},
		})
	}
	return mem, nil
}

func joinEvalErrors(evalErrs []engine.EvalError) error {
	errs := make([]error, len(evalErrs))
	for i, e := range evalErrs {
		errs[i] = e
	}
	return errors.Join(errs...)
}
