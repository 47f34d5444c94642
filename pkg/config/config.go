// Package config loads the configurator's settings file and builds the
// process logger.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for settings that fail validation.
var ErrInvalidConfig = errors.New("invalid config")

// Defaults.
const (
	DefaultScene          = "examples/furniture.scene"
	DefaultHighlightColor = "#FFFFFF"
	DefaultMeshCells      = 96
	DefaultLoadTimeout    = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultTitle          = "Configurator"

	maxMeshCells = 1000
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Config holds the configurator settings.
type Config struct {
	// Catalog is the YAML catalog path. Empty selects the built-in catalog.
	Catalog string `yaml:"catalog"`
	// Scene is the scene script path.
	Scene          string        `yaml:"scene"`
	HighlightColor string        `yaml:"highlightColor"`
	MeshCells      int           `yaml:"meshCells"`
	LoadTimeout    time.Duration `yaml:"loadTimeout"`
	// Watch reloads the scene and catalog when either file changes.
	Watch    bool   `yaml:"watch"`
	LogLevel string `yaml:"logLevel"`
	Title    string `yaml:"title"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Scene:          DefaultScene,
		HighlightColor: DefaultHighlightColor,
		MeshCells:      DefaultMeshCells,
		LoadTimeout:    DefaultLoadTimeout,
		LogLevel:       DefaultLogLevel,
		Title:          DefaultTitle,
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	var errs []error
	if c.Scene == "" {
		errs = append(errs, errors.New("scene path is required"))
	}
	if !hexColor.MatchString(c.HighlightColor) {
		errs = append(errs, fmt.Errorf("highlightColor %q is not a #RRGGBB color", c.HighlightColor))
	}
	if c.MeshCells <= 0 || c.MeshCells > maxMeshCells {
		errs = append(errs, fmt.Errorf("meshCells %d out of range 1..%d", c.MeshCells, maxMeshCells))
	}
	if c.LoadTimeout <= 0 {
		errs = append(errs, fmt.Errorf("loadTimeout %s must be positive", c.LoadTimeout))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Decode reads settings from r on top of the defaults. Unknown keys are
// rejected.
func Decode(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// Load reads the settings file at path. An empty path yields the defaults.
// Relative catalog and scene paths are taken relative to the file.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	dir := filepath.Dir(path)
	c.Catalog = resolve(dir, c.Catalog)
	c.Scene = resolve(dir, c.Scene)
	return c, nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("logLevel %q: %w", name, err)
	}
	return l, nil
}

// NewLogger returns a text logger writing to w at the named level. An
// unknown level falls back to info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	l, err := ParseLevel(level)
	if err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
