// Command analyze prints quick, human-readable facts about board tokens:
// dimensions, a tile histogram, free cells, the largest tile and which moves
// would change the board. Tokens come from the arguments, or one per line on
// stdin when there are none.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tile-token-game/game/engine"
)

// Analysis summarizes one decoded token.
type Analysis struct {
	Token     string
	Canonical string
	Width     int
	Height    int
	Tiles     int
	Free      int
	MaxTile   engine.Tile
	Sum       int
	Histogram map[engine.Tile]int
	Moves     []engine.Direction
}

// Stuck reports whether no move changes the board
func (a *Analysis) Stuck() bool {
	return len(a.Moves) == 0
}

func analyzeToken(token string, policy engine.DecodePolicy) (*Analysis, error) {
	board, err := engine.Deserialize(token, policy)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Token:     token,
		Canonical: board.Serialize(),
		Width:     board.Width(),
		Height:    board.Height(),
		Free:      len(board.EmptyCells()),
		MaxTile:   board.MaxTile(),
		Sum:       board.Sum(),
		Histogram: map[engine.Tile]int{},
		Moves:     board.AvailableMoves(),
	}
	for _, row := range board.Rows() {
		for _, v := range row {
			if v != 0 {
				a.Histogram[v]++
				a.Tiles++
			}
		}
	}
	return a, nil
}

func report(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Size: %d x %d\n", a.Width, a.Height)
	if a.Canonical != a.Token {
		fmt.Fprintf(w, "Canonical token: %s\n", a.Canonical)
	}
	fmt.Fprintf(w, "Tiles: %d  Free: %d  Sum: %d  Max: %d\n", a.Tiles, a.Free, a.Sum, a.MaxTile)

	values := make([]engine.Tile, 0, len(a.Histogram))
	for v := range a.Histogram {
		values = append(values, v)
	}
	slices.Sort(values)
	for _, v := range values {
		fmt.Fprintf(w, "  %5d x %d\n", v, a.Histogram[v])
	}

	if a.Stuck() {
		fmt.Fprintln(w, "No move changes the board")
		return
	}
	moves := make([]string, len(a.Moves))
	for i, d := range a.Moves {
		moves[i] = string(d)
	}
	fmt.Fprintf(w, "Moves: %s\n", strings.Join(moves, ", "))
}

// run analyzes every token and reports how many failed to decode
func run(w io.Writer, tokens []string, policy engine.DecodePolicy) int {
	failed := 0
	for _, token := range tokens {
		fmt.Fprintf(w, "\n=== %s ===\n", token)
		a, err := analyzeToken(token, policy)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			failed++
			continue
		}
		report(w, a)
	}
	return failed
}

// maxTokenLine fits the base64 token of the largest full board plus a line ending.
const maxTokenLine = 4*((2+2*engine.MaxDimension*engine.MaxDimension+2)/3) + 2

func readTokens(r io.Reader) ([]string, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTokenLine)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			tokens = append(tokens, line)
		}
	}
	return tokens, scanner.Err()
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "describe board tokens",
		ArgsUsage: "[token...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "reject tokens that are not canonical"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tokens := cmd.Args().Slice()
			if len(tokens) == 0 {
				var err error
				if tokens, err = readTokens(os.Stdin); err != nil {
					return err
				}
			}

			policy := engine.PadTruncated
			if cmd.Bool("strict") {
				policy = engine.Strict
			}
			if failed := run(cmd.Root().Writer, tokens, policy); failed > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d tokens could not be decoded", failed, len(tokens)), 1)
			}
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
