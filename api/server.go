package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/game/service"
	"github.com/wricardo/tile-token-game/transport/websocket"
)

// Server serves the HTML board pages, the JSON API and the websocket endpoint
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	log     logrus.FieldLogger
	mcp     http.Handler
}

// Option configures a Server
type Option func(*Server)

// WithMCP serves h at /mcp
func WithMCP(h http.Handler) Option {
	return func(s *Server) {
		s.mcp = h
	}
}

// NewServer creates a new API server. hub may be nil to disable /ws.
func NewServer(gameService service.GameService, hub *websocket.Hub, log logrus.FieldLogger, opts ...Option) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		service: gameService,
		hub:     hub,
		// Tokens are standard base64 and may contain "/" or "//"
		router: mux.NewRouter().SkipClean(true),
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all routes. The catch-all token route comes last.
func (s *Server) setupRoutes() {
	s.router.Use(s.logRequests)

	// a bare PathPrefix would also claim tokens such as "apiA"
	api := s.router.PathPrefix("/api").MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
		return r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/")
	}).Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Presets
	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets/{id}", s.handleGetPreset).Methods("GET")

	// Boards (play and move must be before the {token} pattern)
	api.HandleFunc("/boards", s.handleCreateBoard).Methods("POST")
	api.HandleFunc("/boards/play", s.handlePlay).Methods("POST")
	api.HandleFunc("/boards/move", s.handleMove).Methods("POST")
	api.HandleFunc("/boards/{token:.+}", s.handleInspect).Methods("GET")

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "no such endpoint")
	})

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket)
	}
	if s.mcp != nil {
		s.router.Handle("/mcp", s.mcp)
	}

	// Pages
	s.router.HandleFunc("/favicon.ico", http.NotFound)
	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/{token:.+}", s.handleBoardPage).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidDimensions),
		errors.Is(err, engine.ErrInvalidDirection):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrPresetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	}
	respondError(w, status, err.Error())
}

// Preset Handlers

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	id, _ := s.service.DefaultPreset(r.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(presets),
		"default": id,
		"presets": presets,
	})
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	preset, err := s.service.LoadPreset(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	token, err := preset.BareToken()
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"preset_id": id,
		"preset":    preset,
		"token":     token,
	})
}

// Board Handlers

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  int    `json:"width,omitempty"`
		Height int    `json:"height,omitempty"`
		Preset string `json:"preset,omitempty"`
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	var (
		view *service.BoardView
		err  error
	)
	if req.Width != 0 || req.Height != 0 {
		view, err = s.service.NewBoard(r.Context(), req.Width, req.Height)
	} else {
		view, err = s.service.NewFromPreset(r.Context(), req.Preset)
	}
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Inspect(r.Context(), mux.Vars(r)["token"])
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token  string `json:"token"`
		Preset string `json:"preset,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Play(r.Context(), req.Token, req.Preset)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	if room := r.URL.Query().Get("room"); room != "" && s.hub != nil {
		s.hub.BroadcastTurn(room, result)
	}

	s.log.WithFields(logrus.Fields{
		"token":     result.Board.Token,
		"game_over": result.GameOver,
		"free":      result.Board.FreeCells,
	}).Debug("played turn")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string `json:"token"`
		Direction string `json:"direction"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Move(r.Context(), req.Token, req.Direction)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}

	if room := r.URL.Query().Get("room"); room != "" && s.hub != nil {
		s.hub.BroadcastBoard(room, result.Board)
	}

	s.log.WithFields(logrus.Fields{
		"direction": result.Direction,
		"changed":   result.Changed,
		"token":     result.Board.Token,
	}).Debug("moved board")

	respondJSON(w, http.StatusOK, result)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, r.URL.Query().Get("room"))
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
