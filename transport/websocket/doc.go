// Package websocket provides the WebSocket transport for the tile game.
//
// Clients join a room with ?room=<name> (default "lobby"). A client can send
// actions that are executed by a Player and broadcast to everyone in the room,
// so several browsers can watch and drive the same board.
//
// Message Protocol:
//
//   - Incoming: {"action": "move", "token": "BAQAAAI=", "direction": "up"}
//     or {"action": "play", "token": "BAQ="}
//   - Outgoing: {"room": "lobby", "event": "board", "board": {...}, "changed": true}
//     "turn" events carry the full turn with the four next tokens; "joined"
//     greets a new client; "error" is sent to the offending client only.
//
// Usage:
//
//	hub := websocket.NewHub(gameService, log)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("room"))
//	})
//
// Concurrency:
//
// The room map is owned by the goroutine running Run. Registration,
// unregistration and every outgoing message pass through its channels.
package websocket
