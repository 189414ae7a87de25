// Package config holds masonry's build settings. Files may be TOML or
// YAML; the format is chosen by extension.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/chazu/masonry/pkg/export"
	"github.com/chazu/masonry/pkg/kernel"
	"github.com/chazu/masonry/pkg/kernel/cuboid"
	"github.com/chazu/masonry/pkg/kernel/sdfx"
)

// Kernel names accepted in the kernel key.
const (
	KernelCuboid = "cuboid"
	KernelSdfx   = "sdfx"
)

// ErrUnsupportedFormat is returned by Load for files that are neither
// TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config is the full set of build settings.
type Config struct {
	Policy          string    `toml:"policy" yaml:"policy"`
	Kernel          string    `toml:"kernel" yaml:"kernel"`
	MeshCells       int       `toml:"mesh_cells" yaml:"mesh_cells"`
	MarkerMaterial  string    `toml:"marker_material" yaml:"marker_material"`
	FallbackMarkers bool      `toml:"fallback_markers" yaml:"fallback_markers"`
	EvalTimeout     string    `toml:"eval_timeout" yaml:"eval_timeout"`
	Log             LogConfig `toml:"log" yaml:"log"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Policy:          string(export.PolicyDecompose),
		Kernel:          KernelCuboid,
		MeshCells:       sdfx.DefaultMeshCells,
		MarkerMaterial:  "aperture-marker",
		FallbackMarkers: true,
		EvalTimeout:     "5s",
		Log:             LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config: %s: %q: %w", path, ext, ErrUnsupportedFormat)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies MASONRY_* environment variables.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MASONRY_POLICY"); v != "" {
		c.Policy = v
	}
	if v := os.Getenv("MASONRY_KERNEL"); v != "" {
		c.Kernel = v
	}
	if v := os.Getenv("MASONRY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := export.ParsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}
	if c.Kernel != KernelCuboid && c.Kernel != KernelSdfx {
		errs = append(errs, fmt.Errorf("config: unknown kernel %q (valid: %s, %s)", c.Kernel, KernelCuboid, KernelSdfx))
	}
	if c.MeshCells <= 0 {
		errs = append(errs, fmt.Errorf("config: mesh_cells must be positive, got %d", c.MeshCells))
	}
	if d, err := time.ParseDuration(c.EvalTimeout); err != nil {
		errs = append(errs, fmt.Errorf("config: eval_timeout: %w", err))
	} else if d <= 0 {
		errs = append(errs, fmt.Errorf("config: eval_timeout must be positive, got %s", d))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("config: log.level: %w", err))
	}
	return errors.Join(errs...)
}

// ExportPolicy returns the parsed aperture policy.
func (c *Config) ExportPolicy() (export.Policy, error) {
	return export.ParsePolicy(c.Policy)
}

// GetEvalTimeout returns the evaluation timeout as a duration, falling
// back to 5s when the setting does not parse.
func (c *Config) GetEvalTimeout() time.Duration {
	d, err := time.ParseDuration(c.EvalTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// LogLevel returns the configured level, or info when it does not parse.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// NewKernel constructs the configured geometry kernel.
func (c *Config) NewKernel() (kernel.Kernel, error) {
	switch c.Kernel {
	case KernelCuboid:
		return cuboid.New(), nil
	case KernelSdfx:
		return sdfx.New(c.MeshCells), nil
	}
	return nil, fmt.Errorf("config: unknown kernel %q", c.Kernel)
}
