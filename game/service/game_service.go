package service

import (
	"context"
	"errors"

	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
)

var (
	ErrInvalidToken      = errors.New("invalid board token")
	ErrInvalidDimensions = errors.New("invalid board dimensions")
)

// GameService defines all game-related operations. Boards are never stored:
// every call decodes the token it is given and answers with new tokens.
type GameService interface {
	// Boards
	NewBoard(ctx context.Context, width, height int) (*BoardView, error)
	NewFromPreset(ctx context.Context, presetID string) (*BoardView, error)
	Inspect(ctx context.Context, token string) (*BoardView, error)

	// Game Operations
	Play(ctx context.Context, token, presetID string) (*PlayResult, error)
	Move(ctx context.Context, token, direction string) (*MoveResult, error)

	// Presets
	ListPresets(ctx context.Context) ([]*config.PresetInfo, error)
	LoadPreset(ctx context.Context, presetID string) (*config.Preset, error)
	DefaultPreset(ctx context.Context) (string, *config.Preset)
}

// PresetManager handles preset loading
type PresetManager interface {
	LoadPreset(id string) (*config.Preset, error)
	ListPresets() ([]*config.PresetInfo, error)
	GetDefault() *config.Preset
	DefaultID() string
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithRand sets the random source used for spawning
func WithRand(rng engine.IntNSource) Option {
	return func(s *gameServiceImpl) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithDecodePolicy sets how incoming tokens are decoded
func WithDecodePolicy(policy engine.DecodePolicy) Option {
	return func(s *gameServiceImpl) {
		s.policy = policy
	}
}

// WithSpawnValues sets the tiles Play may spawn
func WithSpawnValues(values ...engine.Tile) Option {
	return func(s *gameServiceImpl) {
		if len(values) > 0 {
			s.spawnValues = append([]engine.Tile(nil), values...)
		}
	}
}
