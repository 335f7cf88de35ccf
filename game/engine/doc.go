// Package engine provides the board engine for the sliding-tile game.
//
// The engine package implements the game mechanics including:
//   - Row and column access over a fixed-size grid of tiles
//   - Directional moves (compact, merge, compact)
//   - Random tile spawning and terminal state detection
//   - Token encoding of a board into a short base64 string
//
// Core Types:
//
// Board owns a width x height grid of Tile values, where 0 is an empty cell.
// Boards are created with New or reconstructed from a token with Deserialize.
// A Board is never shared between requests: every interaction decodes a fresh
// Board from its token, mutates it and encodes the result.
//
// Usage:
//
//	board, err := engine.Deserialize(token, engine.PadTruncated)
//	if err != nil {
//		return err
//	}
//
//	if _, err := board.SpawnTile(rng, 2, 4); errors.Is(err, engine.ErrGameOver) {
//		// render the terminal state
//	}
//
//	next := board.Clone().MoveLeft().Serialize()
//
// Token Format:
//
// A token is the standard base64 encoding (with padding) of one width byte,
// one height byte and width*height little-endian uint16 tiles in row-major
// order, with trailing zero bytes removed. Decoding pads the missing bytes
// back with zeros.
package engine
