package service

import (
	"github.com/wricardo/tile-token-game/game/engine"
)

// BoardView describes a decoded board for rendering
type BoardView struct {
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Rows           [][]engine.Tile    `json:"rows"`
	Token          string             `json:"token"`
	MaxTile        engine.Tile        `json:"max_tile"`
	FreeCells      int                `json:"free_cells"`
	Stuck          bool               `json:"stuck"`
	AvailableMoves []engine.Direction `json:"available_moves"`
}

// NextMove is the board reached by moving in one direction
type NextMove struct {
	Direction engine.Direction `json:"direction"`
	Token     string           `json:"token"`
	Changed   bool             `json:"changed"`
}

// PlayResult is one turn: a spawned tile and the four follow-up boards
type PlayResult struct {
	Board    *BoardView       `json:"board"`
	Previous string           `json:"previous"`
	GameOver bool             `json:"game_over"`
	Spawned  *engine.Position `json:"spawned,omitempty"`
	Next     []NextMove       `json:"next"`
	Preset   string           `json:"preset,omitempty"` // spawn rule used, empty for the configured one
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Direction engine.Direction `json:"direction"`
	Previous  string           `json:"previous"`
	Board     *BoardView       `json:"board"`
	Changed   bool             `json:"changed"`
}

// NextToken returns the follow-up token for direction
func (r *PlayResult) NextToken(direction engine.Direction) (string, bool) {
	for _, next := range r.Next {
		if next.Direction == direction {
			return next.Token, true
		}
	}
	return "", false
}

func newBoardView(b *engine.Board) *BoardView {
	return &BoardView{
		Width:          b.Width(),
		Height:         b.Height(),
		Rows:           b.Rows(),
		Token:          b.Serialize(),
		MaxTile:        b.MaxTile(),
		FreeCells:      len(b.EmptyCells()),
		Stuck:          b.Stuck(),
		AvailableMoves: b.AvailableMoves(),
	}
}
