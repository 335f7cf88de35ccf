// Package api provides the HTTP presentation layer for the tile game.
//
// Pages:
//   - GET / - Redirect to an empty board of the default preset
//   - GET /?preset={id} - Redirect to an empty board of a preset
//   - GET /{token} - Play one turn on the board and render it with four move links
//
// Every page view spawns a tile, so the board in the address bar is the
// board before the spawn. Move links point at the token of the board after
// the move. A full board shows a game over banner.
//
// JSON API:
//   - GET /api/presets - List presets
//   - GET /api/presets/{id} - Get one preset and its empty board token
//   - POST /api/boards - Create an empty board from {"width","height"} or {"preset"}
//   - GET /api/boards/{token} - Describe a board
//   - POST /api/boards/play - Play a turn: {"token"}
//   - POST /api/boards/move - Move without spawning: {"token","direction"}
//   - GET /api/health - Health check
//
// Errors are returned as {"error": "..."} with 400 for bad tokens, directions
// and dimensions, 404 for unknown presets and 500 otherwise.
//
// WebSocket:
//   - GET /ws?room={name} - Join a room (see package transport/websocket)
//
// Play and move requests with a ?room= query parameter are also broadcast to
// that room.
//
// Tokens are standard base64 and may contain "/" and "+". The router keeps
// paths uncleaned so such tokens reach the board handler intact.
package api
