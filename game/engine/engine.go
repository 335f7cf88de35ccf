package engine

import (
	"fmt"
	"strings"
)

// Board is a fixed-size grid of tiles stored row by row.
type Board struct {
	width  int
	height int
	cells  [][]Tile
}

// New creates an empty board of the given dimensions
func New(width, height int) (*Board, error) {
	if err := validateDimensions(width, height); err != nil {
		return nil, err
	}

	cells := make([][]Tile, height)
	for r := range cells {
		cells[r] = make([]Tile, width)
	}

	return &Board{width: width, height: height, cells: cells}, nil
}

// Width returns the number of columns
func (b *Board) Width() int {
	return b.width
}

// Height returns the number of rows
func (b *Board) Height() int {
	return b.height
}

// Get returns the tile at row r, column c
func (b *Board) Get(r, c int) Tile {
	return b.cells[r][c]
}

// Set writes the tile at row r, column c
func (b *Board) Set(r, c int, v Tile) *Board {
	b.cells[r][c] = v
	return b
}

// Occupied reports whether the cell at row r, column c holds a tile
func (b *Board) Occupied(r, c int) bool {
	return b.cells[r][c] != 0
}

// Rows returns a copy of the grid for rendering
func (b *Board) Rows() [][]Tile {
	rows := make([][]Tile, b.height)
	for r := range rows {
		rows[r] = b.Row(r)
	}
	return rows
}

// Row returns a copy of row r
func (b *Board) Row(r int) []Tile {
	row := make([]Tile, b.width)
	copy(row, b.cells[r])
	return row
}

// Col returns a copy of column c
func (b *Board) Col(c int) []Tile {
	if c < 0 || c >= b.width {
		panic(fmt.Sprintf("engine: column %d out of range [0,%d)", c, b.width))
	}
	col := make([]Tile, b.height)
	for r := range col {
		col[r] = b.cells[r][c]
	}
	return col
}

// ReplaceRow overwrites row r with values
func (b *Board) ReplaceRow(r int, values []Tile) {
	if len(values) != b.width {
		panic(fmt.Sprintf("engine: row needs %d values, got %d", b.width, len(values)))
	}
	copy(b.cells[r], values)
}

// ReplaceCol overwrites column c with values
func (b *Board) ReplaceCol(c int, values []Tile) {
	if len(values) != b.height {
		panic(fmt.Sprintf("engine: column needs %d values, got %d", b.height, len(values)))
	}
	if c < 0 || c >= b.width {
		panic(fmt.Sprintf("engine: column %d out of range [0,%d)", c, b.width))
	}
	for r, v := range values {
		b.cells[r][c] = v
	}
}

// Clone returns a deep copy that shares no storage with b
func (b *Board) Clone() *Board {
	clone := &Board{width: b.width, height: b.height, cells: make([][]Tile, b.height)}
	for r := range b.cells {
		clone.cells[r] = b.Row(r)
	}
	return clone
}

// Equal reports whether both boards have the same shape and tiles
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.width != other.width || b.height != other.height {
		return false
	}
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c] != other.cells[r][c] {
				return false
			}
		}
	}
	return true
}

// EmptyCells lists the free cells in row-major order
func (b *Board) EmptyCells() []Position {
	var empty []Position
	for r, row := range b.cells {
		for c, v := range row {
			if v == 0 {
				empty = append(empty, Position{Row: r, Col: c})
			}
		}
	}
	return empty
}

// Full reports whether every cell holds a tile
func (b *Board) Full() bool {
	for _, row := range b.cells {
		for _, v := range row {
			if v == 0 {
				return false
			}
		}
	}
	return true
}

// MaxTile returns the largest tile on the board
func (b *Board) MaxTile() Tile {
	var highest Tile
	for _, row := range b.cells {
		for _, v := range row {
			if v > highest {
				highest = v
			}
		}
	}
	return highest
}

// Sum returns the total of all tiles. Moves never change it.
func (b *Board) Sum() int {
	total := 0
	for _, row := range b.cells {
		for _, v := range row {
			total += int(v)
		}
	}
	return total
}

// String renders the grid with right-aligned columns, "." for empty cells
func (b *Board) String() string {
	cellWidth := len(fmt.Sprint(b.MaxTile()))
	if cellWidth < 1 {
		cellWidth = 1
	}

	var sb strings.Builder
	for r, row := range b.cells {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c, v := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			if v == 0 {
				fmt.Fprintf(&sb, "%*s", cellWidth, ".")
				continue
			}
			fmt.Fprintf(&sb, "%*d", cellWidth, v)
		}
	}
	return sb.String()
}

// indices returns 0..n-1, reversed when ascending is false
func indices(n int, ascending bool) []int {
	out := make([]int, n)
	for i := range out {
		if ascending {
			out[i] = i
		} else {
			out[i] = n - 1 - i
		}
	}
	return out
}
