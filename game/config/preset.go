package config

import (
	"errors"
	"fmt"

	"github.com/wricardo/tile-token-game/game/engine"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidPreset  = errors.New("invalid preset")
)

// Preset describes a board size and its spawn rule
type Preset struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	SpawnValues []engine.Tile `json:"spawn_values,omitempty"`
}

// PresetInfo is the listing entry for a preset
type PresetInfo struct {
	Filename    string        `json:"filename,omitempty"`
	PresetID    string        `json:"preset_id"` // identifier to pass to LoadPreset
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	SpawnValues []engine.Tile `json:"spawn_values"`
	BuiltIn     bool          `json:"built_in"`
}

// DefaultPresetID is loaded when no other default is configured
const DefaultPresetID = "classic"

// builtInPresets are available even without a presets directory
var builtInPresets = map[string]Preset{
	"classic": {
		Name:        "Classic",
		Description: "The original 4x4 board",
		Width:       engine.DefaultWidth,
		Height:      engine.DefaultHeight,
		SpawnValues: []engine.Tile{2, 4},
	},
	"mini": {
		Name:        "Mini",
		Description: "A cramped 3x3 board",
		Width:       3,
		Height:      3,
		SpawnValues: []engine.Tile{2, 4},
	},
	"large": {
		Name:        "Large",
		Description: "A roomy 6x6 board",
		Width:       6,
		Height:      6,
		SpawnValues: []engine.Tile{2, 4},
	},
}

// ValidatePreset checks a preset for a playable board
func ValidatePreset(p *Preset) error {
	if p == nil {
		return fmt.Errorf("%w: preset is nil", ErrInvalidPreset)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPreset)
	}
	if p.Width < engine.MinDimension || p.Width > engine.MaxDimension {
		return fmt.Errorf("%w: width must be between %d and %d, got %d", ErrInvalidPreset, engine.MinDimension, engine.MaxDimension, p.Width)
	}
	if p.Height < engine.MinDimension || p.Height > engine.MaxDimension {
		return fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalidPreset, engine.MinDimension, engine.MaxDimension, p.Height)
	}
	for i, v := range p.SpawnValues {
		if v == 0 {
			return fmt.Errorf("%w: spawn_values[%d] must not be 0", ErrInvalidPreset, i)
		}
	}
	return nil
}

// Spawn returns the preset's spawn values, or the engine defaults
func (p *Preset) Spawn() []engine.Tile {
	if len(p.SpawnValues) == 0 {
		return engine.DefaultSpawnValues
	}
	return p.SpawnValues
}

// BareToken returns the token of an empty board of the preset's size
func (p *Preset) BareToken() (string, error) {
	return engine.BareBoardCode(p.Width, p.Height)
}
