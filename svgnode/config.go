package svgnode

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Sync is the switch controlling whether display
// notifications reach the sinks at all.
// A nil *Sync is always enabled.
type Sync struct {
	disabled bool
}

// NewSync returns a switch in the given state.
func NewSync(enabled bool) *Sync { return &Sync{disabled: !enabled} }

// Enabled returns the current state of the switch.
func (s *Sync) Enabled() bool { return s == nil || !s.disabled }

// Toggle flips the switch.
func (s *Sync) Toggle() { s.disabled = !s.disabled }

// Set forces the state of the switch.
func (s *Sync) Set(enabled bool) { s.disabled = !enabled }

// Default size of the root SVG nodes.
const (
	DefaultWidth  = 100
	DefaultHeight = 100
)

// Config groups the settings of an Arena.
// It may be read from the environment with LoadConfig.
// The zero value is ready to use.
type Config struct {
	// NoSync starts the display switch off,
	// ignored when Switch is provided.
	NoSync bool `env:"NO_SYNC"`

	// Size of the root SVG nodes, zero meaning the default.
	Width  int `env:"WIDTH" envDefault:"100"`
	Height int `env:"HEIGHT" envDefault:"100"`

	// Switch may be shared between several arenas,
	// so that one call toggles all of them.
	Switch *Sync `env:"-"`
}

// DefaultConfig returns the settings used when
// no environment is available.
func DefaultConfig() Config {
	return Config{Width: DefaultWidth, Height: DefaultHeight}
}

// LoadConfig reads the configuration from the SVGSCENE_NO_SYNC,
// SVGSCENE_WIDTH and SVGSCENE_HEIGHT variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "SVGSCENE_"}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
