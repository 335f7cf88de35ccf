package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/tile-token-game/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Tokens of large boards are long.
	maxMessageSize = 256 * 1024

	// DefaultRoom is used when a client names no room
	DefaultRoom = "lobby"
)

// Events sent to clients
const (
	EventJoined = "joined"
	EventBoard  = "board"
	EventTurn   = "turn"
	EventError  = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Player executes client actions
type Player interface {
	Play(ctx context.Context, token, presetID string) (*service.PlayResult, error)
	Move(ctx context.Context, token, direction string) (*service.MoveResult, error)
}

// Action is a message sent by a client
type Action struct {
	Action    string `json:"action"` // "move" or "play"
	Token     string `json:"token"`
	Direction string `json:"direction,omitempty"`
	Preset    string `json:"preset,omitempty"` // spawn rule for "play"
}

// Message is sent to clients in a room
type Message struct {
	Room    string              `json:"room"`
	Event   string              `json:"event"`
	Board   *service.BoardView  `json:"board,omitempty"`
	Turn    *service.PlayResult `json:"turn,omitempty"`
	Changed *bool               `json:"changed,omitempty"`
	Clients int                 `json:"clients,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// envelope addresses a message to a whole room, or to one client when to is set
type envelope struct {
	message *Message
	to      *Client
}

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	room string
}

// Hub maintains the set of active clients per room and broadcasts messages
type Hub struct {
	// Registered clients by room
	rooms map[string]map[*Client]bool

	// Outbound messages
	broadcast chan *envelope

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	player Player
	log    logrus.FieldLogger
	done   chan struct{}
}

// NewHub creates a new WebSocket hub. player may be nil for a broadcast-only hub.
func NewHub(player Player, log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *envelope),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		player:     player,
		log:        log.WithField("component", "websocket"),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, clients := range h.rooms {
			for client := range clients {
				h.unregisterClient(client)
			}
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

// ServeWS upgrades the request and joins the client to room
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, room string) {
	if room == "" {
		room = DefaultRoom
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		room: room,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastBoard sends a board to every client in room
func (h *Hub) BroadcastBoard(room string, view *service.BoardView) {
	h.send(&envelope{message: &Message{Room: room, Event: EventBoard, Board: view}})
}

// BroadcastTurn sends a played turn to every client in room
func (h *Hub) BroadcastTurn(room string, turn *service.PlayResult) {
	h.send(&envelope{message: &Message{Room: room, Event: EventTurn, Board: turn.Board, Turn: turn}})
}

func (h *Hub) send(env *envelope) {
	select {
	case h.broadcast <- env:
	case <-h.done:
	}
}

// registerClient adds a client to a room and greets it
func (h *Hub) registerClient(client *Client) {
	if h.rooms[client.room] == nil {
		h.rooms[client.room] = make(map[*Client]bool)
	}
	h.rooms[client.room][client] = true

	h.log.WithFields(logrus.Fields{
		"room":    client.room,
		"clients": len(h.rooms[client.room]),
	}).Info("client joined")

	h.deliver(&envelope{
		message: &Message{Room: client.room, Event: EventJoined, Clients: len(h.rooms[client.room])},
		to:      client,
	})
}

// unregisterClient removes a client from its room
func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.rooms[client.room]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.rooms, client.room)
	}

	h.log.WithFields(logrus.Fields{
		"room":    client.room,
		"clients": len(clients),
	}).Info("client left")
}

// deliver runs on the hub goroutine only
func (h *Hub) deliver(env *envelope) {
	data, err := json.Marshal(env.message)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal websocket message")
		return
	}

	if env.to != nil {
		if h.rooms[env.to.room][env.to] {
			h.push(env.to, data)
		}
		return
	}

	for client := range h.rooms[env.message.Room] {
		h.push(client, data)
	}
}

func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		// Client's send channel is full, drop it
		h.unregisterClient(client)
	}
}

// handle executes one client action and returns the message to send
func (h *Hub) handle(ctx context.Context, room string, action *Action) (msg *Message, private bool) {
	fail := func(text string) (*Message, bool) {
		return &Message{Room: room, Event: EventError, Error: text}, true
	}

	if h.player == nil {
		return fail("this hub does not accept actions")
	}

	switch action.Action {
	case "move":
		result, err := h.player.Move(ctx, action.Token, action.Direction)
		if err != nil {
			return fail(err.Error())
		}
		changed := result.Changed
		return &Message{Room: room, Event: EventBoard, Board: result.Board, Changed: &changed}, false

	case "play":
		turn, err := h.player.Play(ctx, action.Token, action.Preset)
		if err != nil {
			return fail(err.Error())
		}
		return &Message{Room: room, Event: EventTurn, Board: turn.Board, Turn: turn}, false

	default:
		return fail("unknown action: " + action.Action)
	}
}

// readPump pumps actions from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Warn("websocket read failed")
			}
			break
		}

		var action Action
		if err := json.Unmarshal(data, &action); err != nil {
			c.hub.send(&envelope{
				message: &Message{Room: c.room, Event: EventError, Error: "invalid message: " + err.Error()},
				to:      c,
			})
			continue
		}

		msg, private := c.hub.handle(context.Background(), c.room, &action)
		env := &envelope{message: msg}
		if private {
			env.to = c
		}
		c.hub.send(env)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
