package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/game/service"
)

// Version is reported to MCP clients
const Version = "1.0.0"

// Client is a thin MCP client that proxies to the JSON API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the JSON API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tile Token Game",
		Version,
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tile Token Game - MCP Interface

This is a thin client that proxies all requests to the JSON API server.

The game keeps no state on the server: a board is a token. Every tool takes
the token of the current board and answers with new tokens.

AVAILABLE TOOLS:
- new_board: Start an empty board from a size or a preset
- play: Spawn a tile on the board and see the token for each move
- move: Apply one move without spawning
- board_state: Show a board
- list_presets: List board presets
- game_instructions: Rules and a playing guide

A normal turn is: play(token) then pick one of the returned next tokens and
play it again.`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "new_board",
		Description: "Create an empty board from a width and height, or from a preset (default preset when neither is given)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"width": map[string]interface{}{
					"type":        "integer",
					"description": "Board width (1-255)",
				},
				"height": map[string]interface{}{
					"type":        "integer",
					"description": "Board height (1-255)",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Preset id, see list_presets (optional)",
				},
			},
		},
	}, c.handleNewBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Decode a board token and show the board",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Board token",
				},
			},
			Required: []string{"token"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "play",
		Description: "Play a turn: spawn a tile on the board and return the token reached by each move",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Board token",
				},
				"room": map[string]interface{}{
					"type":        "string",
					"description": "Websocket room to broadcast the turn to (optional)",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Preset whose spawn values are used (optional, keep passing the one the board was created from)",
				},
			},
			Required: []string{"token"},
		},
	}, c.handlePlay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide all tiles in a direction without spawning a new tile",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Board token",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction to move",
				},
				"room": map[string]interface{}{
					"type":        "string",
					"description": "Websocket room to broadcast the board to (optional)",
				},
			},
			Required: []string{"token", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available board presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game and how tokens work",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// ServeStdio serves the tools over stdin/stdout until the input closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// HTTPHandler serves single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		if response == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}
		json.NewEncoder(w).Encode(response)
	})
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// intArg accepts JSON numbers and numeric strings
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}

func withRoom(path, room string) string {
	if room == "" {
		return path
	}
	return path + "?room=" + url.QueryEscape(room)
}

// Tool handlers

func (c *Client) handleNewBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	body := map[string]interface{}{}

	width, hasWidth := intArg(args, "width")
	height, hasHeight := intArg(args, "height")
	if hasWidth || hasHeight {
		if !hasWidth || !hasHeight {
			return mcp.NewToolResultError("width and height must be given together"), nil
		}
		body["width"] = width
		body["height"] = height
	} else if preset, _ := args["preset"].(string); preset != "" {
		body["preset"] = preset
	}

	var view service.BoardView
	if err := c.apiCall(ctx, "POST", "/api/boards", body, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("New %dx%d board\n\n%s\nCall play with this token to spawn the first tile.\n",
		view.Width, view.Height, formatBoard(&view))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, _ := arguments(request)["token"].(string)
	if token == "" {
		return mcp.NewToolResultError("token is required"), nil
	}

	var view service.BoardView
	if err := c.apiCall(ctx, "GET", "/api/boards/"+(&url.URL{Path: token}).EscapedPath(), nil, &view); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&view)), nil
}

func (c *Client) handlePlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	token, _ := args["token"].(string)
	room, _ := args["room"].(string)
	preset, _ := args["preset"].(string)
	if token == "" {
		return mcp.NewToolResultError("token is required"), nil
	}

	body := map[string]string{"token": token}
	if preset != "" {
		body["preset"] = preset
	}

	var result service.PlayResult
	err := c.apiCall(ctx, "POST", withRoom("/api/boards/play", room), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatPlayResult(&result)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	token, _ := args["token"].(string)
	direction, _ := args["direction"].(string)
	room, _ := args["room"].(string)
	if token == "" || direction == "" {
		return mcp.NewToolResultError("token and direction are required"), nil
	}

	body := map[string]string{
		"token":     token,
		"direction": direction,
	}

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", withRoom("/api/boards/move", room), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                  `json:"count"`
		Default string               `json:"default"`
		Presets []*config.PresetInfo `json:"presets"`
	}

	if err := c.apiCall(ctx, "GET", "/api/presets", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Presets (%d):\n\n", response.Count)
	for _, p := range response.Presets {
		marker := ""
		if p.PresetID == response.Default {
			marker = " (default)"
		}
		fmt.Fprintf(&b, "- %s%s: %s, %dx%d, spawns %v", p.PresetID, marker, p.Name, p.Width, p.Height, p.SpawnValues)
		if p.Description != "" {
			fmt.Fprintf(&b, " - %s", p.Description)
		}
		b.WriteString("\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Tile Token Game - Complete Instructions

GAME OBJECTIVE:
Slide numbered tiles on a grid. Two equal tiles that collide merge into one
tile worth their sum. Build the largest tile you can before the board fills up.

TOKENS:
The whole game lives in the board token. The server remembers nothing, so keep
the latest token. A token is base64 of: width byte, height byte, then every
tile as a little-endian 16-bit number, row by row, with trailing zero bytes
dropped. An empty 4x4 board is "BAQ=".

A TURN:
1. play(token) spawns a 2 or a 4 on a random empty cell.
2. It returns the resulting board and the token reached by each move.
3. Pick one of those tokens and call play with it.
Moves marked "no change" leave the board as it is; playing them only spawns.

MOVEMENT RULES:
- All tiles slide as far as they can toward the chosen edge.
- Equal neighbours merge once per move, starting at that edge:
  [2 2 2 2] moved left becomes [4 4 . .], not [8 . . .].
- Empty cells never merge.

GAME OVER:
When play finds no empty cell it reports GAME OVER instead of spawning. If a
merge is still possible you can keep moving; when no move changes the board
the game is finished.

STRATEGY:
- Keep the largest tile in a corner and build along one edge.
- Prefer moves that keep many cells free.
- Avoid the direction that pulls the big tile out of its corner.

MOVEMENT COMMANDS:
- move(token, direction): preview a single move with no spawn
- board_state(token): show any board`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

// formatBoard renders rows with right-aligned fixed-width columns
func formatBoard(view *service.BoardView) string {
	width := len(strconv.Itoa(int(view.MaxTile)))
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	for _, row := range view.Rows {
		for i, tile := range row {
			if i > 0 {
				b.WriteString(" ")
			}
			cell := "."
			if tile != 0 {
				cell = strconv.Itoa(int(tile))
			}
			fmt.Fprintf(&b, "%*s", width, cell)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nToken: %s\n", view.Token)
	fmt.Fprintf(&b, "Max tile: %d | Free cells: %d\n", view.MaxTile, view.FreeCells)
	if view.Stuck {
		b.WriteString("No move changes this board.\n")
	} else if len(view.AvailableMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", joinDirections(view.AvailableMoves))
	}
	return b.String()
}

func formatPlayResult(result *service.PlayResult) string {
	var b strings.Builder
	if result.GameOver {
		b.WriteString("💀 GAME OVER - the board is full, no tile spawned\n\n")
	} else if result.Spawned != nil {
		fmt.Fprintf(&b, "Spawned %d at row %d, col %d\n\n",
			result.Board.Rows[result.Spawned.Row][result.Spawned.Col], result.Spawned.Row, result.Spawned.Col)
	}

	b.WriteString(formatBoard(result.Board))
	if result.Preset != "" {
		fmt.Fprintf(&b, "Spawn rule: preset %s\n", result.Preset)
	}
	b.WriteString("\nNext tokens:\n")
	for _, next := range result.Next {
		status := ""
		if !next.Changed {
			status = " (no change)"
		}
		fmt.Fprintf(&b, "- %s: %s%s\n", next.Direction, next.Token, status)
	}
	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Changed {
		fmt.Fprintf(&b, "✓ Moved %s\n\n", result.Direction)
	} else {
		fmt.Fprintf(&b, "✗ Moving %s changes nothing\n\n", result.Direction)
	}
	b.WriteString(formatBoard(result.Board))
	return b.String()
}

func joinDirections(dirs []engine.Direction) string {
	names := make([]string, len(dirs))
	for i, d := range dirs {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
