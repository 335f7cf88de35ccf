package api

import (
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/game/service"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"tileClass": tileClass,
	"arrow":     arrow,
}).ParseFS(templateFS, "templates/*.html"))

// boardPage is the data for the board template
type boardPage struct {
	Turn  *service.PlayResult
	Moves []moveLink
}

type moveLink struct {
	Direction engine.Direction
	Href      string
	Enabled   bool
}

type errorPage struct {
	Status  int
	Title   string
	Message string
}

// linkOrder is the order move links appear in on the page
var linkOrder = []engine.Direction{engine.Up, engine.Left, engine.Right, engine.Down}

// handleIndex redirects to a fresh board of the default or requested
// preset. A requested preset stays in the query so its spawn rule is kept.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	preset := r.URL.Query().Get("preset")
	view, err := s.service.NewFromPreset(r.Context(), preset)
	if err != nil {
		s.renderError(w, statusFor(err), err.Error())
		return
	}

	// http.Redirect would path.Clean a "//" inside the token
	w.Header().Set("Location", pageURL(view.Token, preset))
	w.WriteHeader(http.StatusFound)
}

// handleBoardPage plays one turn on the token and renders the result
func (s *Server) handleBoardPage(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	preset := r.URL.Query().Get("preset")

	turn, err := s.service.Play(r.Context(), token, preset)
	if err != nil {
		s.renderError(w, statusFor(err), err.Error())
		return
	}

	page := boardPage{Turn: turn}
	for _, dir := range linkOrder {
		next, _ := turn.NextToken(dir)
		link := moveLink{Direction: dir, Href: pageURL(next, preset)}
		for _, n := range turn.Next {
			if n.Direction == dir {
				link.Enabled = n.Changed
			}
		}
		page.Moves = append(page.Moves, link)
	}

	s.render(w, http.StatusOK, "board", page)
}

func (s *Server) renderError(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "error", errorPage{
		Status:  status,
		Title:   http.StatusText(status),
		Message: message,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.log.WithError(err).WithField("template", name).Error("failed to render page")
	}
}

// tokenPath builds the page path for a token. "+" and "/" stay literal
// except a leading "/", which would make "//host" a protocol-relative URL.
// The router matches on the decoded path, so "/%2F..." reaches the token.
func tokenPath(token string) string {
	escaped := (&url.URL{Path: token}).EscapedPath()
	if strings.HasPrefix(escaped, "/") {
		escaped = "%2F" + escaped[1:]
	}
	return "/" + escaped
}

// pageURL is tokenPath with the preset carried in the query
func pageURL(token, preset string) string {
	if preset == "" {
		return tokenPath(token)
	}
	return tokenPath(token) + "?" + url.Values{"preset": {preset}}.Encode()
}

func tileClass(v engine.Tile) string {
	switch {
	case v == 0:
		return "empty"
	case v <= 4:
		return "low"
	case v <= 64:
		return "mid"
	case v <= 1024:
		return "high"
	default:
		return "top"
	}
}

func arrow(d engine.Direction) string {
	switch d {
	case engine.Up:
		return "↑"
	case engine.Down:
		return "↓"
	case engine.Left:
		return "←"
	case engine.Right:
		return "→"
	}
	return string(d)
}
