package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Tile is the value of a single cell. Zero is an empty cell.
type Tile uint16

// Direction names one of the four moves.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"

	// Validation constants
	MinDimension  = 1
	MaxDimension  = 255
	DefaultWidth  = 4
	DefaultHeight = 4

	// MaxTile is the largest value a tile can hold on the wire.
	MaxTile Tile = math.MaxUint16
)

var (
	ErrGameOver          = errors.New("game over: no empty cell left")
	ErrMalformedToken    = errors.New("malformed board token")
	ErrInvalidDimensions = errors.New("invalid board dimensions")
	ErrInvalidDirection  = errors.New("invalid direction")
)

// Directions lists the moves in the order they are offered to players.
var Directions = []Direction{Up, Down, Left, Right}

// DefaultSpawnValues are the tiles SpawnTile picks from when none are given.
var DefaultSpawnValues = []Tile{2, 4}

// Position is a cell coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ParseDirection maps a case-insensitive direction name to a Direction.
func ParseDirection(name string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(name))); d {
	case Up, Down, Left, Right:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, name)
	}
}

func validateDimensions(width, height int) error {
	if width < MinDimension || width > MaxDimension {
		return fmt.Errorf("%w: width must be between %d and %d, got %d", ErrInvalidDimensions, MinDimension, MaxDimension, width)
	}
	if height < MinDimension || height > MaxDimension {
		return fmt.Errorf("%w: height must be between %d and %d, got %d", ErrInvalidDimensions, MinDimension, MaxDimension, height)
	}
	return nil
}
