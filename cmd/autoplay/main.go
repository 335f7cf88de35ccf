// Command autoplay plays tile token games against a running server through
// its JSON API. Each turn it asks the server to spawn a tile, then follows
// the token of the move its strategy picks, until the game is over or the
// move limit is reached.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/logger"
)

// Options control one autoplay run
type Options struct {
	Preset   string // sizes new boards and picks the spawn values
	Width    int
	Height   int
	Token    string // start from this token instead of a new board
	MaxMoves int
	Delay    time.Duration
}

// Summary describes how a game ended
type Summary struct {
	Token    string
	Moves    int
	MaxTile  engine.Tile
	Sum      int
	GameOver bool
}

// playGame runs one game to its end
func playGame(ctx context.Context, client *Client, strategy Strategy, opts Options, log logrus.FieldLogger) (*Summary, error) {
	token := opts.Token
	if token == "" {
		view, err := client.NewBoard(ctx, opts.Preset, opts.Width, opts.Height)
		if err != nil {
			return nil, err
		}
		token = view.Token
		log.WithFields(logrus.Fields{"width": view.Width, "height": view.Height, "token": token}).Info("board created")
	}

	summary := &Summary{Token: token}
	for opts.MaxMoves <= 0 || summary.Moves < opts.MaxMoves {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		turn, err := client.Play(ctx, token, opts.Preset)
		if err != nil {
			return summary, err
		}
		summary.Token = turn.Board.Token
		summary.MaxTile = turn.Board.MaxTile

		if turn.GameOver {
			summary.GameOver = true
			break
		}

		next, ok := strategy.Choose(turn)
		if !ok {
			// Full board with nothing to merge, the next spawn ends the game
			summary.GameOver = true
			break
		}
		token = next.Token
		summary.Token = token
		summary.Moves++

		if summary.Moves%100 == 0 {
			log.WithFields(logrus.Fields{"moves": summary.Moves, "max": turn.Board.MaxTile, "free": turn.Board.FreeCells}).Debug("progress")
		}
		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	if board, err := engine.Deserialize(summary.Token, engine.PadTruncated); err == nil {
		summary.MaxTile = board.MaxTile()
		summary.Sum = board.Sum()
	}
	return summary, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play tile token games through the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "preset", Usage: "preset id for new boards"},
			&cli.IntFlag{Name: "width", Usage: "board width, overrides the preset"},
			&cli.IntFlag{Name: "height", Usage: "board height, overrides the preset"},
			&cli.StringFlag{Name: "token", Usage: "continue from an existing token"},
			&cli.StringFlag{Name: "strategy", Value: "greedy", Usage: "greedy or corner"},
			&cli.StringFlag{Name: "room", Usage: "broadcast every turn to this websocket room"},
			&cli.IntFlag{Name: "games", Value: 1, Usage: "number of games to play"},
			&cli.IntFlag{Name: "max-moves", Value: 5000, Usage: "maximum moves per game (0 = no limit)"},
			&cli.DurationFlag{Name: "delay", Usage: "delay between moves"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			level := "info"
			if cmd.Bool("v") {
				level = "debug"
			}
			log := logger.NewWithOutput(os.Stderr, level, "text")

			strategy, err := newStrategy(cmd.String("strategy"))
			if err != nil {
				return err
			}

			log.Infof("Connecting to game server at %s", cmd.String("url"))
			client := NewClient(cmd.String("url"), cmd.String("room"))
			opts := Options{
				Preset:   cmd.String("preset"),
				Width:    int(cmd.Int("width")),
				Height:   int(cmd.Int("height")),
				Token:    cmd.String("token"),
				MaxMoves: int(cmd.Int("max-moves")),
				Delay:    cmd.Duration("delay"),
			}

			var best *Summary
			for game := 1; game <= int(cmd.Int("games")); game++ {
				summary, err := playGame(ctx, client, strategy, opts, log.WithField("game", game))
				if err != nil {
					return err
				}
				log.WithFields(logrus.Fields{
					"game":      game,
					"moves":     summary.Moves,
					"max":       summary.MaxTile,
					"sum":       summary.Sum,
					"game_over": summary.GameOver,
				}).Info("game finished")
				if best == nil || summary.MaxTile > best.MaxTile {
					best = summary
				}
			}

			if best != nil {
				fmt.Fprintf(cmd.Root().Writer, "best: max %d after %d moves\n%s\n", best.MaxTile, best.Moves, best.Token)
			}
			return nil
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
