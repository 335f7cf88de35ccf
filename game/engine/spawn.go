package engine

import (
	crand "crypto/rand"
	"math/rand/v2"
)

// IntNSource is the part of *rand.Rand the engine needs. Tests can supply a
// deterministic sequence.
type IntNSource interface {
	IntN(n int) int
}

// NewRand returns a deterministic source for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// DefaultRand returns a ChaCha8 source seeded from crypto/rand
func DefaultRand() *rand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

// SpawnTile places one of values on a uniformly chosen empty cell. It returns
// ErrGameOver, leaving the board untouched, when every cell is occupied.
func (b *Board) SpawnTile(rng IntNSource, values ...Tile) (*Board, error) {
	empty := b.EmptyCells()
	if len(empty) == 0 {
		return b, ErrGameOver
	}
	if len(values) == 0 {
		values = DefaultSpawnValues
	}

	pos := empty[rng.IntN(len(empty))]
	b.cells[pos.Row][pos.Col] = values[rng.IntN(len(values))]
	return b, nil
}
