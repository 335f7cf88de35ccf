package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/game/service"
)

// offline builds a quiet service for the terminal commands
func offline(cmd *cli.Command) (service.GameService, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	log := newLogger(settings)
	log.SetOutput(io.Discard)
	return initializeServices(settings, log)
}

func newBoardCommand() *cli.Command {
	return &cli.Command{
		Name:  "new",
		Usage: "print the token of an empty board",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "width", Usage: "board width"},
			&cli.IntFlag{Name: "height", Usage: "board height"},
			&cli.StringFlag{Name: "preset", Usage: "preset id"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svc, err := offline(cmd)
			if err != nil {
				return err
			}

			var view *service.BoardView
			if cmd.IsSet("width") || cmd.IsSet("height") {
				view, err = svc.NewBoard(ctx, int(cmd.Int("width")), int(cmd.Int("height")))
			} else {
				view, err = svc.NewFromPreset(ctx, cmd.String("preset"))
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.Root().Writer, view.Token)
			return nil
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "print the board behind a token",
		ArgsUsage: "<token>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("usage: show <token>", 2)
			}
			svc, err := offline(cmd)
			if err != nil {
				return err
			}

			view, err := svc.Inspect(ctx, cmd.Args().First())
			if err != nil {
				return err
			}

			printView(cmd.Root().Writer, view)
			return nil
		},
	}
}

func moveCommand() *cli.Command {
	return &cli.Command{
		Name:      "move",
		Usage:     "apply one move without spawning and print the new token",
		ArgsUsage: "<token> <up|down|left|right>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 2 {
				return cli.Exit("usage: move <token> <direction>", 2)
			}
			svc, err := offline(cmd)
			if err != nil {
				return err
			}

			result, err := svc.Move(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return err
			}

			if !result.Changed {
				fmt.Fprintln(cmd.Root().Writer, "(no change)")
			}
			printView(cmd.Root().Writer, result.Board)
			return nil
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "spawn a tile and print the token reached by each move",
		ArgsUsage: "<token>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "preset", Usage: "spawn with this preset's values"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit("usage: play <token>", 2)
			}
			svc, err := offline(cmd)
			if err != nil {
				return err
			}

			turn, err := svc.Play(ctx, cmd.Args().First(), cmd.String("preset"))
			if err != nil {
				return err
			}

			w := cmd.Root().Writer
			if turn.GameOver {
				fmt.Fprintln(w, "GAME OVER")
			}
			printView(w, turn.Board)
			for _, next := range turn.Next {
				mark := ""
				if !next.Changed {
					mark = " (no change)"
				}
				fmt.Fprintf(w, "%-5s %s%s\n", next.Direction, next.Token, mark)
			}
			return nil
		},
	}
}

func printView(w io.Writer, view *service.BoardView) {
	board, err := engine.Deserialize(view.Token, engine.PadTruncated)
	if err != nil {
		fmt.Fprintln(w, view.Token)
		return
	}
	fmt.Fprintln(w, board.String())
	fmt.Fprintf(w, "token: %s\nmax: %d free: %d\n", view.Token, view.MaxTile, view.FreeCells)
}
