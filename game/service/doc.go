// Package service provides the business logic layer shared by every
// transport (HTML pages, JSON API, websocket, MCP).
//
// The service is stateless: a board exists only as its token. Each call
// decodes the token it receives, applies the operation and returns new
// tokens. The only shared state is the random source used for spawning,
// which is guarded by a mutex.
//
// Usage:
//
//	presets, _ := config.NewManager("presets")
//	svc := service.NewGameService(presets,
//		service.WithDecodePolicy(engine.Strict),
//		service.WithSpawnValues(2, 4),
//	)
//
//	view, _ := svc.NewBoard(ctx, 4, 4)
//	turn, err := svc.Play(ctx, view.Token, "")
//	if err != nil {
//		log.Fatal(err)
//	}
//	next, _ := turn.NextToken(engine.Left)
//
// Play is one page view of the game: it spawns a tile (or reports GameOver
// when the board is full) and computes the token reached by each of the four
// moves. Move applies a single move without spawning.
package service
