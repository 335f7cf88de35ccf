package engine

import "fmt"

// ClearBlanks removes the empty cells from line, keeping the order of the
// remaining tiles, and pads it back to its length with zeros at the end
// (padEnd) or at the start.
func ClearBlanks(line []Tile, padEnd bool) []Tile {
	tiles := make([]Tile, 0, len(line))
	for _, v := range line {
		if v != 0 {
			tiles = append(tiles, v)
		}
	}

	out := make([]Tile, len(line))
	if padEnd {
		copy(out, tiles)
	} else {
		copy(out[len(out)-len(tiles):], tiles)
	}
	return out
}

// Merge combines equal tiles of two adjacent lines. dest is the line closer
// to the target edge: every matching pair empties the src cell and doubles
// the dest cell. Empty cells never merge, and neither do tiles whose sum
// would not fit in a Tile. Both slices are updated in place.
func Merge(src, dest []Tile) ([]Tile, []Tile) {
	for i := range src {
		if canMerge(src[i], dest[i]) {
			src[i] = 0
			dest[i] *= 2
		}
	}
	return src, dest
}

func canMerge(a, b Tile) bool {
	return a != 0 && a == b && a <= MaxTile/2
}

// Move applies the named move
func (b *Board) Move(direction Direction) (*Board, error) {
	switch direction {
	case Up, Down, Left, Right:
		return b.slide(direction), nil
	default:
		return b, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}
}

// MoveUp slides and merges every tile toward row 0
func (b *Board) MoveUp() *Board {
	return b.slide(Up)
}

// MoveDown slides and merges every tile toward the last row
func (b *Board) MoveDown() *Board {
	return b.slide(Down)
}

// MoveLeft slides and merges every tile toward column 0
func (b *Board) MoveLeft() *Board {
	return b.slide(Left)
}

// MoveRight slides and merges every tile toward the last column
func (b *Board) MoveRight() *Board {
	return b.slide(Right)
}

// CanMove reports whether moving in direction would change the board
func (b *Board) CanMove(direction Direction) bool {
	moved, err := b.Clone().Move(direction)
	if err != nil {
		return false
	}
	return !moved.Equal(b)
}

// AvailableMoves returns the directions that change the board
func (b *Board) AvailableMoves() []Direction {
	var possible []Direction
	for _, d := range Directions {
		if b.CanMove(d) {
			possible = append(possible, d)
		}
	}
	return possible
}

// Stuck reports whether no move can change the board
func (b *Board) Stuck() bool {
	return len(b.AvailableMoves()) == 0
}

// slide runs compact, merge, compact for one direction. Vertical moves
// compact columns and sweep rows; horizontal moves compact rows and sweep
// columns. The sweep starts next to the target edge so a tile merges at most
// once per move.
func (b *Board) slide(direction Direction) *Board {
	vertical := direction == Up || direction == Down
	towardStart := direction == Up || direction == Left

	b.compact(vertical, towardStart)

	n := b.width
	if vertical {
		n = b.height
	}
	sweep := indices(n, towardStart)
	for _, i := range sweep[1:] {
		next := i + 1
		if towardStart {
			next = i - 1
		}
		src, dest := Merge(b.line(vertical, i), b.line(vertical, next))
		b.replaceLine(vertical, i, src)
		b.replaceLine(vertical, next, dest)
	}

	b.compact(vertical, towardStart)
	return b
}

// compact slides the lines perpendicular to the swept ones toward the edge
func (b *Board) compact(vertical, padEnd bool) {
	if vertical {
		for c := 0; c < b.width; c++ {
			b.ReplaceCol(c, ClearBlanks(b.Col(c), padEnd))
		}
		return
	}
	for r := 0; r < b.height; r++ {
		b.ReplaceRow(r, ClearBlanks(b.Row(r), padEnd))
	}
}

func (b *Board) line(rows bool, i int) []Tile {
	if rows {
		return b.Row(i)
	}
	return b.Col(i)
}

func (b *Board) replaceLine(rows bool, i int, values []Tile) {
	if rows {
		b.ReplaceRow(i, values)
		return
	}
	b.ReplaceCol(i, values)
}
