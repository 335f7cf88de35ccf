package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
)

// presetManager opens the configured presets directory
func presetManager(cmd *cli.Command) (*config.Manager, error) {
	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	return config.NewManager(settings.PresetsDir)
}

func presetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "list or save board presets",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "print every loadable preset",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					m, err := presetManager(cmd)
					if err != nil {
						return err
					}
					infos, err := m.ListPresets()
					if err != nil {
						return err
					}

					w := cmd.Root().Writer
					for _, info := range infos {
						source := info.Filename
						if info.BuiltIn {
							source = "built-in"
						}
						fmt.Fprintf(w, "%-10s %3dx%-3d spawn %-8s %s (%s)\n",
							info.PresetID, info.Width, info.Height, joinTiles(info.SpawnValues), info.Name, source)
					}
					return nil
				},
			},
			{
				Name:      "save",
				Usage:     "write a preset file into the presets directory",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "display name, defaults to the id"},
					&cli.StringFlag{Name: "description", Usage: "one line description"},
					&cli.IntFlag{Name: "width", Value: engine.DefaultWidth, Usage: "board width"},
					&cli.IntFlag{Name: "height", Value: engine.DefaultHeight, Usage: "board height"},
					&cli.StringFlag{Name: "spawn-values", Usage: "comma separated tiles this preset spawns, e.g. 2,4"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 1 {
						return cli.Exit("usage: presets save <id>", 2)
					}
					id := cmd.Args().First()

					preset := &config.Preset{
						Name:        cmd.String("name"),
						Description: cmd.String("description"),
						Width:       int(cmd.Int("width")),
						Height:      int(cmd.Int("height")),
					}
					if preset.Name == "" {
						preset.Name = id
					}
					if cmd.IsSet("spawn-values") {
						values, err := parseInts(cmd.String("spawn-values"))
						if err != nil {
							return fmt.Errorf("invalid --spawn-values: %w", err)
						}
						for _, v := range values {
							if v <= 0 || v > int(engine.MaxTile) {
								return fmt.Errorf("invalid --spawn-values: %d out of range", v)
							}
							preset.SpawnValues = append(preset.SpawnValues, engine.Tile(v))
						}
					}

					m, err := presetManager(cmd)
					if err != nil {
						return err
					}
					if err := m.SavePreset(id, preset); err != nil {
						return err
					}
					token, err := preset.BareToken()
					if err != nil {
						return err
					}

					fmt.Fprintf(cmd.Root().Writer, "saved %s: %s\n", id, token)
					return nil
				},
			},
		},
	}
}

func envCommand() *cli.Command {
	return &cli.Command{
		Name:  "env",
		Usage: "describe the environment variables the server reads",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprint(cmd.Root().Writer, config.Usage())
			return nil
		},
	}
}

func joinTiles(tiles []engine.Tile) string {
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		parts[i] = fmt.Sprint(t)
	}
	return strings.Join(parts, ",")
}
