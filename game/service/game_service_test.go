package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/game/service"
	"github.com/wricardo/tile-token-game/telemetry"
)

// MockPresetManager implements service.PresetManager for testing
type MockPresetManager struct {
	presets map[string]*config.Preset
	listErr error
}

func NewMockPresetManager() *MockPresetManager {
	return &MockPresetManager{
		presets: map[string]*config.Preset{
			"classic": {Name: "Classic", Width: 4, Height: 4},
			"strip":   {Name: "Strip", Width: 5, Height: 1},
			"eights":  {Name: "Eights", Width: 1, Height: 1, SpawnValues: []engine.Tile{8}},
		},
	}
}

func (m *MockPresetManager) LoadPreset(id string) (*config.Preset, error) {
	preset, ok := m.presets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrPresetNotFound, id)
	}
	return preset, nil
}

func (m *MockPresetManager) ListPresets() ([]*config.PresetInfo, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return []*config.PresetInfo{
		{PresetID: "classic", Name: "Classic", Width: 4, Height: 4},
		{PresetID: "strip", Name: "Strip", Width: 5, Height: 1},
	}, nil
}

func (m *MockPresetManager) GetDefault() *config.Preset {
	return m.presets["classic"]
}

func (m *MockPresetManager) DefaultID() string {
	return "classic"
}

// sequence returns its values in order, then repeats the last one
type sequence struct {
	values []int
	calls  int
}

func (s *sequence) IntN(n int) int {
	i := s.calls
	if i >= len(s.values) {
		i = len(s.values) - 1
	}
	s.calls++
	return s.values[i] % n
}

func newService(opts ...service.Option) service.GameService {
	opts = append([]service.Option{service.WithTracer(telemetry.NoopTracer())}, opts...)
	return service.NewGameService(NewMockPresetManager(), opts...)
}

func TestNewBoard(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	view, err := svc.NewBoard(ctx, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, "BAQ=", view.Token)
	assert.Equal(t, 16, view.FreeCells)
	assert.True(t, view.Stuck)
	assert.Len(t, view.Rows, 4)

	_, err = svc.NewBoard(ctx, 0, 4)
	assert.ErrorIs(t, err, service.ErrInvalidDimensions)
	assert.ErrorIs(t, err, engine.ErrInvalidDimensions)

	_, err = svc.NewBoard(ctx, 4, 256)
	assert.ErrorIs(t, err, service.ErrInvalidDimensions)
}

func TestNewFromPreset(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	tests := []struct {
		name    string
		preset  string
		token   string
		wantErr error
	}{
		{"default", "", "BAQ=", nil},
		{"named", "strip", "BQE=", nil},
		{"missing", "huge", "", config.ErrPresetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := svc.NewFromPreset(ctx, tt.preset)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "classic")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.token, view.Token)
		})
	}
}

func TestPlay(t *testing.T) {
	// Given an empty 4x4 board and a source that picks the sixth empty cell and the first value
	rng := &sequence{values: []int{5, 0}}
	svc := newService(service.WithRand(rng))

	// When playing a turn
	result, err := svc.Play(context.Background(), "BAQ=", "")

	// Then a 2 lands on row 1, column 1 and every direction moves it
	require.NoError(t, err)
	assert.False(t, result.GameOver)
	assert.Equal(t, "BAQ=", result.Previous)
	require.NotNil(t, result.Spawned)
	assert.Equal(t, engine.Position{Row: 1, Col: 1}, *result.Spawned)
	assert.Equal(t, "BAQAAAAAAAAAAAAAAg==", result.Board.Token)
	assert.Equal(t, engine.Tile(2), result.Board.Rows[1][1])
	assert.Equal(t, 15, result.Board.FreeCells)

	want := map[engine.Direction]string{
		engine.Up:    "BAQAAAI=",
		engine.Down:  "BAQAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAI=",
		engine.Left:  "BAQAAAAAAAAAAAI=",
		engine.Right: "BAQAAAAAAAAAAAAAAAAAAAI=",
	}
	require.Len(t, result.Next, 4)
	for _, next := range result.Next {
		assert.Equal(t, want[next.Direction], next.Token, "direction %s", next.Direction)
		assert.True(t, next.Changed, "direction %s", next.Direction)
	}

	token, ok := result.NextToken(engine.Left)
	assert.True(t, ok)
	assert.Equal(t, want[engine.Left], token)
	assert.Equal(t, 2, rng.calls)
}

func TestPlayGameOver(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		stuck     bool
		available []engine.Direction
	}{
		{"stuck full board", "AgICAAQACAAQ", true, nil},
		{"full board with a merge", "AgICAAIABAAI", false, []engine.Direction{engine.Left, engine.Right}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given a full board
			rng := &sequence{values: []int{0}}
			svc := newService(service.WithRand(rng))

			// When playing a turn
			result, err := svc.Play(context.Background(), tt.token, "")

			// Then nothing spawns and the game is over
			require.NoError(t, err)
			assert.True(t, result.GameOver)
			assert.Nil(t, result.Spawned)
			assert.Equal(t, tt.token, result.Board.Token)
			assert.Equal(t, tt.stuck, result.Board.Stuck)
			assert.Equal(t, tt.available, result.Board.AvailableMoves)
			assert.Zero(t, rng.calls)

			for _, next := range result.Next {
				wantChanged := false
				for _, d := range tt.available {
					if d == next.Direction {
						wantChanged = true
					}
				}
				assert.Equal(t, wantChanged, next.Changed, "direction %s", next.Direction)
			}
		})
	}
}

func TestPlayMergeOnFullBoard(t *testing.T) {
	svc := newService(service.WithRand(&sequence{values: []int{0}}))

	result, err := svc.Play(context.Background(), "AgICAAIABAAI", "")
	require.NoError(t, err)

	token, ok := result.NextToken(engine.Left)
	require.True(t, ok)
	assert.Equal(t, "AgIEAAAABAAI", token)
}

func TestPlaySpawnValues(t *testing.T) {
	// Given a service that only spawns 8s
	svc := newService(
		service.WithRand(&sequence{values: []int{0}}),
		service.WithSpawnValues(8),
	)

	// When playing on an empty 1x1 board
	result, err := svc.Play(context.Background(), "AQE=", "")

	// Then the only cell holds an 8
	require.NoError(t, err)
	assert.Equal(t, [][]engine.Tile{{8}}, result.Board.Rows)
	assert.Equal(t, engine.Tile(8), result.Board.MaxTile)
}

func TestPlayPresetSpawnValues(t *testing.T) {
	tests := []struct {
		name   string
		preset string
		want   engine.Tile
	}{
		{"preset spawn values", "eights", 8},
		{"preset without spawn values", "classic", 2},
		{"configured spawn values", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given a service configured to spawn 2s
			svc := newService(
				service.WithRand(&sequence{values: []int{0}}),
				service.WithSpawnValues(2),
			)

			// When playing an empty 1x1 board under the preset's rule
			result, err := svc.Play(context.Background(), "AQE=", tt.preset)

			// Then the preset decides the spawned tile
			require.NoError(t, err)
			assert.Equal(t, [][]engine.Tile{{tt.want}}, result.Board.Rows)
			assert.Equal(t, tt.preset, result.Preset)
		})
	}

	svc := newService()
	_, err := svc.Play(context.Background(), "AQE=", "huge")
	assert.ErrorIs(t, err, config.ErrPresetNotFound)
}

func TestPlayNextCoversEveryDirection(t *testing.T) {
	svc := newService(service.WithRand(&sequence{values: []int{0}}))

	result, err := svc.Play(context.Background(), "AgICAAQACAAQ", "")
	require.NoError(t, err)

	require.Len(t, result.Next, len(engine.Directions))
	for i, next := range result.Next {
		assert.Equal(t, engine.Directions[i], next.Direction)
		assert.Equal(t, "AgICAAQACAAQ", next.Token)
	}
}

func TestMove(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	t.Run("changes board", func(t *testing.T) {
		result, err := svc.Move(ctx, "BAQAAAAAAAAAAAAAAg==", "up")
		require.NoError(t, err)
		assert.Equal(t, engine.Up, result.Direction)
		assert.Equal(t, "BAQAAAI=", result.Board.Token)
		assert.True(t, result.Changed)
	})

	t.Run("case insensitive direction", func(t *testing.T) {
		result, err := svc.Move(ctx, "AgICAAIABAAI", "LEFT")
		require.NoError(t, err)
		assert.Equal(t, "AgIEAAAABAAI", result.Board.Token)
		assert.Equal(t, [][]engine.Tile{{4, 0}, {4, 8}}, result.Board.Rows)
	})

	t.Run("no change", func(t *testing.T) {
		result, err := svc.Move(ctx, "AgICAAQACAAQ", "down")
		require.NoError(t, err)
		assert.False(t, result.Changed)
		assert.Equal(t, "AgICAAQACAAQ", result.Board.Token)
	})

	t.Run("invalid direction", func(t *testing.T) {
		_, err := svc.Move(ctx, "BAQ=", "sideways")
		assert.ErrorIs(t, err, engine.ErrInvalidDirection)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := svc.Move(ctx, "!!!", "up")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
		assert.ErrorIs(t, err, engine.ErrMalformedToken)
	})
}

func TestInspect(t *testing.T) {
	svc := newService()

	view, err := svc.Inspect(context.Background(), "AgICAAIABAAI")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Width)
	assert.Equal(t, 2, view.Height)
	assert.Equal(t, engine.Tile(8), view.MaxTile)
	assert.Zero(t, view.FreeCells)
	assert.False(t, view.Stuck)

	_, err = svc.Inspect(context.Background(), "AA==")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestDecodePolicy(t *testing.T) {
	const nonCanonical = "AgICAAQACAAQAAA="
	ctx := context.Background()

	// Given the same non-canonical token
	// When decoding with each policy
	// Then only the permissive one accepts it
	view, err := newService().Inspect(ctx, nonCanonical)
	require.NoError(t, err)
	assert.Equal(t, "AgICAAQACAAQ", view.Token)

	_, err = newService(service.WithDecodePolicy(engine.Strict)).Inspect(ctx, nonCanonical)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestPresets(t *testing.T) {
	mock := NewMockPresetManager()
	svc := service.NewGameService(mock, service.WithTracer(telemetry.NoopTracer()))
	ctx := context.Background()

	infos, err := svc.ListPresets(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2)

	preset, err := svc.LoadPreset(ctx, "strip")
	require.NoError(t, err)
	assert.Equal(t, 5, preset.Width)

	id, def := svc.DefaultPreset(ctx)
	assert.Equal(t, "classic", id)
	assert.Equal(t, "Classic", def.Name)

	mock.listErr = errors.New("disk on fire")
	_, err = svc.ListPresets(ctx)
	assert.Error(t, err)
}

func TestWithRealPresetManager(t *testing.T) {
	manager, err := config.NewManager("")
	require.NoError(t, err)
	svc := service.NewGameService(manager, service.WithTracer(telemetry.NoopTracer()))

	view, err := svc.NewFromPreset(context.Background(), "mini")
	require.NoError(t, err)
	assert.Equal(t, "AwM=", view.Token)
}

func TestConcurrentPlay(t *testing.T) {
	svc := service.NewGameService(NewMockPresetManager(),
		service.WithTracer(telemetry.NoopTracer()),
		service.WithRand(engine.NewRand(7)),
	)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Play(context.Background(), "BAQ=", "")
			if err != nil {
				t.Errorf("Play failed: %v", err)
				return
			}
			if result.Board.FreeCells != 15 {
				t.Errorf("Expected 15 free cells, got %d", result.Board.FreeCells)
			}
		}()
	}
	wg.Wait()
}
