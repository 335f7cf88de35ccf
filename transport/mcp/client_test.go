package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/tile-token-game/api"
	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/game/service"
	"github.com/wricardo/tile-token-game/telemetry"
)

// firstCell always picks index 0
type firstCell struct{}

func (firstCell) IntN(n int) int { return 0 }

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	presets, err := config.NewManager("")
	require.NoError(t, err)
	svc := service.NewGameService(presets,
		service.WithRand(firstCell{}),
		service.WithTracer(telemetry.NoopTracer()),
	)
	log := logrus.New()
	log.SetOutput(io.Discard)
	ts := httptest.NewServer(api.NewServer(svc, nil, log))
	t.Cleanup(ts.Close)
	return ts
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text, result.IsError
}

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.mcpServer)
}

func TestNewBoardTool(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	tests := []struct {
		name    string
		args    map[string]interface{}
		want    string
		isError bool
	}{
		{"default preset", map[string]interface{}{}, "Token: BAQ=", false},
		{"dimensions", map[string]interface{}{"width": float64(3), "height": float64(2)}, "Token: AwI=", false},
		{"string dimensions", map[string]interface{}{"width": "2", "height": "2"}, "Token: AgI=", false},
		{"preset", map[string]interface{}{"preset": "mini"}, "Token: AwM=", false},
		{"missing height", map[string]interface{}{"width": float64(3)}, "together", true},
		{"bad size", map[string]interface{}{"width": float64(0), "height": float64(4)}, "width", true},
		{"unknown preset", map[string]interface{}{"preset": "nope"}, "not found", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := callTool(t, client.handleNewBoard, tt.args)
			assert.Equal(t, tt.isError, isError, text)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestPlayTool(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	// Given an empty 2x2 board and a spawn on the first cell
	text, isError := callTool(t, client.handlePlay, map[string]interface{}{"token": "AgI="})

	// Then a 2 appears top left and each move has a next token
	require.False(t, isError, text)
	assert.Contains(t, text, "Spawned 2 at row 0, col 0")
	assert.Contains(t, text, "2 .\n. .\n")
	assert.Contains(t, text, "- up: AgIC (no change)")
	assert.Contains(t, text, "- right: AgIAAAI=")
	assert.Contains(t, text, "- down: AgIAAAAAAg==")
}

func TestPlayToolPreset(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	text, isError := callTool(t, client.handlePlay, map[string]interface{}{"token": "AgI=", "preset": "mini"})
	require.False(t, isError, text)
	assert.Contains(t, text, "Spawned 2 at row 0, col 0")
	assert.Contains(t, text, "Spawn rule: preset mini")

	text, isError = callTool(t, client.handlePlay, map[string]interface{}{"token": "AgI=", "preset": "nope"})
	assert.True(t, isError)
	assert.Contains(t, text, "not found")
}

func TestPlayToolGameOver(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	text, isError := callTool(t, client.handlePlay, map[string]interface{}{"token": "AgICAAQACAAQ"})

	require.False(t, isError, text)
	assert.Contains(t, text, "GAME OVER")
	assert.Contains(t, text, "No move changes this board.")
}

func TestMoveTool(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	text, isError := callTool(t, client.handleMove, map[string]interface{}{
		"token":     "AgICAAIABAAI",
		"direction": "left",
	})
	require.False(t, isError, text)
	assert.Contains(t, text, "✓ Moved left")
	assert.Contains(t, text, "4 .\n4 8\n")
	assert.Contains(t, text, "Token: AgIEAAAABAAI")

	text, isError = callTool(t, client.handleMove, map[string]interface{}{
		"token":     "AgICAAQACAAQ",
		"direction": "up",
	})
	require.False(t, isError, text)
	assert.Contains(t, text, "changes nothing")

	text, isError = callTool(t, client.handleMove, map[string]interface{}{
		"token":     "AgI=",
		"direction": "diagonal",
	})
	assert.True(t, isError)
	assert.Contains(t, text, "invalid direction")

	_, isError = callTool(t, client.handleMove, map[string]interface{}{"token": "AgI="})
	assert.True(t, isError)
}

func TestBoardStateTool(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	text, isError := callTool(t, client.handleBoardState, map[string]interface{}{"token": "AQH//w=="})
	require.False(t, isError, text)
	assert.Contains(t, text, "65535")
	assert.Contains(t, text, "Free cells: 0")

	text, isError = callTool(t, client.handleBoardState, map[string]interface{}{"token": "AA=="})
	assert.True(t, isError)
	assert.Contains(t, text, "invalid board token")

	_, isError = callTool(t, client.handleBoardState, nil)
	assert.True(t, isError)
}

func TestListPresetsTool(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)

	text, isError := callTool(t, client.handleListPresets, map[string]interface{}{})
	require.False(t, isError, text)
	assert.Contains(t, text, "Presets (3)")
	assert.Contains(t, text, "- classic (default): Classic, 4x4")
	assert.Contains(t, text, "- mini: Mini, 3x3")
}

func TestGameInstructionsTool(t *testing.T) {
	client := NewClient("http://localhost:8080")

	text, isError := callTool(t, client.handleGameInstructions, map[string]interface{}{})
	require.False(t, isError)

	for _, section := range []string{"GAME OBJECTIVE:", "TOKENS:", "A TURN:", "MOVEMENT RULES:", "GAME OVER:", "STRATEGY:"} {
		assert.Contains(t, text, section)
	}
}

func TestAPIUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	text, isError := callTool(t, client.handleListPresets, map[string]interface{}{})
	assert.True(t, isError)
	assert.Contains(t, text, "API error: 502")
}

func TestFormatBoard(t *testing.T) {
	view := &service.BoardView{
		Rows:           [][]engine.Tile{{2, 0}, {128, 4}},
		Token:          "x",
		MaxTile:        128,
		FreeCells:      1,
		AvailableMoves: []engine.Direction{engine.Up, engine.Right},
	}

	text := formatBoard(view)

	assert.True(t, strings.HasPrefix(text, "  2   .\n128   4\n"), text)
	assert.Contains(t, text, "Possible moves: up, right")
}

func TestHTTPHandler(t *testing.T) {
	client := NewClient(newAPIServer(t).URL)
	handler := client.HTTPHandler()

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{}}`
	req := httptest.NewRequest("POST", "/mcp", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	var names []string
	for _, tool := range resp.Result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"new_board", "board_state", "play", "move", "list_presets", "game_instructions"}, names)

	req = httptest.NewRequest("GET", "/mcp", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
