// Package mcp provides a Model Context Protocol server for the tile game.
//
// The server is a thin client of the JSON API: every tool call is forwarded
// over HTTP and the answer is rendered as text for the agent.
//
// MCP Tools:
//   - new_board: Create an empty board from a size or a preset
//   - board_state: Show the board behind a token
//   - play: Spawn a tile and list the token reached by each move
//   - move: Apply one move without spawning
//   - list_presets: List board presets
//   - game_instructions: Rules and token format
//
// Transport Modes:
//   - Stdio: ServeStdio for local MCP clients
//   - HTTP: HTTPHandler accepts single JSON-RPC messages on POST
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
