// Package config holds the numeric tolerances and limits shared by the
// engine and the CLI. Files are TOML; keys left out keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chazu/kerf/pkg/geom"
	"github.com/chazu/kerf/pkg/surface"
	"github.com/pelletier/go-toml/v2"
)

// Default values.
const (
	DefaultMaxDeviation = 0.01
	DefaultTreeDepth    = 6
	DefaultMeshCells    = 64
	DefaultEvalTimeout  = 5 * time.Second
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Duration is a time.Duration written as a string ("5s", "250ms").
type Duration time.Duration

// UnmarshalText parses a time.ParseDuration string.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats d with time.Duration.String.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the full set of tunables.
type Config struct {
	Epsilon      float64  `toml:"epsilon" json:"epsilon"`
	MaxDeviation float64  `toml:"max_deviation" json:"maxDeviation"`
	MaxPathDepth int      `toml:"max_path_depth" json:"maxPathDepth"`
	TreeDepth    int      `toml:"tree_depth" json:"treeDepth"`
	MeshCells    int      `toml:"mesh_cells" json:"meshCells"`
	EvalTimeout  Duration `toml:"eval_timeout" json:"evalTimeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Epsilon:      geom.Epsilon,
		MaxDeviation: DefaultMaxDeviation,
		MaxPathDepth: surface.MaxPathDepth,
		TreeDepth:    DefaultTreeDepth,
		MeshCells:    DefaultMeshCells,
		EvalTimeout:  Duration(DefaultEvalTimeout),
	}
}

// Timeout returns EvalTimeout as a time.Duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.EvalTimeout)
}

// Validate reports the first out-of-range field.
func (c Config) Validate() error {
	switch {
	case c.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon must be positive, got %g", ErrInvalid, c.Epsilon)
	case c.MaxDeviation <= 0:
		return fmt.Errorf("%w: max_deviation must be positive, got %g", ErrInvalid, c.MaxDeviation)
	case c.MaxPathDepth < 1:
		return fmt.Errorf("%w: max_path_depth must be at least 1, got %d", ErrInvalid, c.MaxPathDepth)
	case c.TreeDepth < 1:
		return fmt.Errorf("%w: tree_depth must be at least 1, got %d", ErrInvalid, c.TreeDepth)
	case c.MeshCells < 1:
		return fmt.Errorf("%w: mesh_cells must be at least 1, got %d", ErrInvalid, c.MeshCells)
	case c.EvalTimeout <= 0:
		return fmt.Errorf("%w: eval_timeout must be positive, got %s", ErrInvalid, time.Duration(c.EvalTimeout))
	}
	return nil
}

// Parse decodes TOML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	c := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and parses a TOML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
