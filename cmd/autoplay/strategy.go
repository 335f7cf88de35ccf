package main

import (
	"fmt"

	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/game/service"
)

// Strategy picks the next move from a turn's candidates. It returns false
// when none of them changes the board.
type Strategy interface {
	Choose(turn *service.PlayResult) (service.NextMove, bool)
}

func newStrategy(name string) (Strategy, error) {
	switch name {
	case "greedy", "":
		return Greedy{}, nil
	case "corner":
		return Ordered{Order: []engine.Direction{engine.Down, engine.Left, engine.Right, engine.Up}}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (greedy or corner)", name)
	}
}

// Ordered takes the first direction in Order that changes the board
type Ordered struct {
	Order []engine.Direction
}

func (o Ordered) Choose(turn *service.PlayResult) (service.NextMove, bool) {
	for _, d := range o.Order {
		for _, next := range turn.Next {
			if next.Direction == d && next.Changed {
				return next, true
			}
		}
	}
	return service.NextMove{}, false
}

// Greedy scores the board each move leads to and takes the best one.
// Earlier candidates win ties.
type Greedy struct{}

func (Greedy) Choose(turn *service.PlayResult) (service.NextMove, bool) {
	var (
		best      service.NextMove
		bestScore int
		found     bool
	)
	for _, next := range turn.Next {
		if !next.Changed {
			continue
		}
		board, err := engine.Deserialize(next.Token, engine.PadTruncated)
		if err != nil {
			continue
		}
		if s := score(board); !found || s > bestScore {
			best, bestScore, found = next, s, true
		}
	}
	return best, found
}

// score favours free cells, neighbouring equal tiles and keeping the
// largest tile in the bottom-left corner
func score(b *engine.Board) int {
	s := 4 * len(b.EmptyCells())

	for r := 0; r < b.Height(); r++ {
		for c := 0; c < b.Width(); c++ {
			v := b.Get(r, c)
			if v == 0 {
				continue
			}
			if c+1 < b.Width() && b.Get(r, c+1) == v {
				s++
			}
			if r+1 < b.Height() && b.Get(r+1, c) == v {
				s++
			}
		}
	}

	if top := b.MaxTile(); top > 0 && b.Get(b.Height()-1, 0) == top {
		s += int(top)
	}
	return s
}
