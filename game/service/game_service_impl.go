package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/telemetry"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	presets     PresetManager
	policy      engine.DecodePolicy
	spawnValues []engine.Tile
	tracer      trace.Tracer

	// rng is the only shared state; *rand.Rand is not safe for concurrent use
	mu  sync.Mutex
	rng engine.IntNSource
}

// WithTracer sets the tracer for service spans
func WithTracer(tracer trace.Tracer) Option {
	return func(s *gameServiceImpl) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// NewGameService creates a new game service instance
func NewGameService(presets PresetManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		presets:     presets,
		policy:      engine.PadTruncated,
		spawnValues: engine.DefaultSpawnValues,
		tracer:      telemetry.Tracer("service"),
		rng:         engine.DefaultRand(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewBoard returns an empty board of the given size
func (s *gameServiceImpl) NewBoard(ctx context.Context, width, height int) (*BoardView, error) {
	_, span := s.tracer.Start(ctx, "service.NewBoard", trace.WithAttributes(
		attribute.Int("board.width", width),
		attribute.Int("board.height", height),
	))
	defer span.End()

	board, err := engine.New(width, height)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("%w: %w", ErrInvalidDimensions, err))
	}
	return newBoardView(board), nil
}

// NewFromPreset returns an empty board sized by a preset. An empty id
// selects the default preset.
func (s *gameServiceImpl) NewFromPreset(ctx context.Context, presetID string) (*BoardView, error) {
	ctx, span := s.tracer.Start(ctx, "service.NewFromPreset", trace.WithAttributes(
		attribute.String("preset.id", presetID),
	))
	defer span.End()

	preset, err := s.LoadPreset(ctx, presetID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	return s.NewBoard(ctx, preset.Width, preset.Height)
}

// Inspect decodes a token and describes the board
func (s *gameServiceImpl) Inspect(ctx context.Context, token string) (*BoardView, error) {
	_, span := s.tracer.Start(ctx, "service.Inspect")
	defer span.End()

	board, err := s.decode(token)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(boardAttributes(board)...)
	return newBoardView(board), nil
}

// Play spawns a tile on the board and computes the board after each of
// the four moves. A full board reports GameOver instead of spawning.
// presetID selects the preset's spawn values; an empty id, or a preset
// without spawn values, uses the configured ones.
func (s *gameServiceImpl) Play(ctx context.Context, token, presetID string) (*PlayResult, error) {
	ctx, span := s.tracer.Start(ctx, "service.Play", trace.WithAttributes(
		attribute.String("preset.id", presetID),
	))
	defer span.End()

	board, err := s.decode(token)
	if err != nil {
		return nil, s.fail(span, err)
	}

	spawn, err := s.spawnRule(ctx, presetID)
	if err != nil {
		return nil, s.fail(span, err)
	}

	result := &PlayResult{Previous: token, Preset: presetID}

	before := board.Clone()
	s.mu.Lock()
	_, err = board.SpawnTile(s.rng, spawn...)
	s.mu.Unlock()
	switch {
	case errors.Is(err, engine.ErrGameOver):
		result.GameOver = true
	case err != nil:
		return nil, s.fail(span, err)
	default:
		result.Spawned = spawnedAt(before, board)
	}

	current := board.Serialize()
	for _, dir := range engine.Directions {
		next, err := board.Clone().Move(dir)
		if err != nil {
			return nil, s.fail(span, err)
		}
		nextToken := next.Serialize()
		result.Next = append(result.Next, NextMove{
			Direction: dir,
			Token:     nextToken,
			Changed:   nextToken != current,
		})
	}

	result.Board = newBoardView(board)
	span.SetAttributes(boardAttributes(board)...)
	span.SetAttributes(attribute.Bool("game.over", result.GameOver))
	return result, nil
}

// spawnRule returns the tiles Play may spawn for a preset
func (s *gameServiceImpl) spawnRule(ctx context.Context, presetID string) ([]engine.Tile, error) {
	if presetID == "" {
		return s.spawnValues, nil
	}
	preset, err := s.LoadPreset(ctx, presetID)
	if err != nil {
		return nil, err
	}
	if len(preset.SpawnValues) == 0 {
		return s.spawnValues, nil
	}
	return preset.SpawnValues, nil
}

// Move decodes a token, moves it and encodes the result. No tile is spawned.
func (s *gameServiceImpl) Move(ctx context.Context, token, direction string) (*MoveResult, error) {
	_, span := s.tracer.Start(ctx, "service.Move", trace.WithAttributes(
		attribute.String("move.direction", direction),
	))
	defer span.End()

	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, s.fail(span, err)
	}

	board, err := s.decode(token)
	if err != nil {
		return nil, s.fail(span, err)
	}

	before := board.Clone()
	if _, err := board.Move(dir); err != nil {
		return nil, s.fail(span, err)
	}

	span.SetAttributes(boardAttributes(board)...)
	return &MoveResult{
		Direction: dir,
		Previous:  token,
		Board:     newBoardView(board),
		Changed:   !before.Equal(board),
	}, nil
}

// ListPresets returns every available preset
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*config.PresetInfo, error) {
	_, span := s.tracer.Start(ctx, "service.ListPresets")
	defer span.End()

	presets, err := s.presets.ListPresets()
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("failed to list presets: %w", err))
	}
	return presets, nil
}

// LoadPreset loads a preset by id, or the default for an empty id
func (s *gameServiceImpl) LoadPreset(ctx context.Context, presetID string) (*config.Preset, error) {
	if presetID == "" {
		return s.presets.GetDefault(), nil
	}

	preset, err := s.presets.LoadPreset(presetID)
	if err != nil {
		if errors.Is(err, config.ErrPresetNotFound) {
			return nil, fmt.Errorf("preset '%s' not found. Available presets: %v: %w", presetID, s.presetIDs(), err)
		}
		return nil, fmt.Errorf("failed to load preset %s: %w", presetID, err)
	}
	return preset, nil
}

// DefaultPreset returns the default preset and its id
func (s *gameServiceImpl) DefaultPreset(ctx context.Context) (string, *config.Preset) {
	return s.presets.DefaultID(), s.presets.GetDefault()
}

func (s *gameServiceImpl) presetIDs() []string {
	infos, err := s.presets.ListPresets()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.PresetID)
	}
	return ids
}

func (s *gameServiceImpl) decode(token string) (*engine.Board, error) {
	board, err := engine.Deserialize(token, s.policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return board, nil
}

func (s *gameServiceImpl) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// spawnedAt finds the single cell that became occupied
func spawnedAt(before, after *engine.Board) *engine.Position {
	for _, pos := range before.EmptyCells() {
		if after.Occupied(pos.Row, pos.Col) {
			p := pos
			return &p
		}
	}
	return nil
}

func boardAttributes(b *engine.Board) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int("board.width", b.Width()),
		attribute.Int("board.height", b.Height()),
		attribute.Int("board.max_tile", int(b.MaxTile())),
		attribute.Int("board.free_cells", len(b.EmptyCells())),
	}
}
