// Command tile-token-game serves a sliding-tile puzzle whose entire state
// lives in the URL. It supports:
//
//  1. "server" (default) – HTML board pages, JSON API, WebSocket rooms and an /mcp HTTP endpoint
//  2. "mcp" – an MCP stdio server that proxies to the JSON API, starting an internal one when none answers
//  3. "new", "show", "move", "play" – offline board tools for the terminal
//  4. "presets" – list presets or save a new preset file, "env" – describe the environment
//
// Settings come from config.yml and the environment (see game/config); flags
// override them. A .env file is loaded first when present.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
	"github.com/wricardo/tile-token-game/game/service"
	"github.com/wricardo/tile-token-game/logger"
	"github.com/wricardo/tile-token-game/telemetry"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tile Token Game Server"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the command tree
func newApp() *cli.Command {
	return &cli.Command{
		Name:           "tile-token-game",
		Usage:          "Stateless sliding-tile game server",
		Version:        Version,
		DefaultCommand: "server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: config.DefaultSettingsPath, Usage: "settings file (YAML)"},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "presets-dir", Usage: "directory containing board presets"},
			&cli.StringFlag{Name: "default-preset", Usage: "preset used for new boards"},
			&cli.StringFlag{Name: "decode-policy", Usage: "token decoding: pad or strict"},
			&cli.StringFlag{Name: "spawn", Usage: "comma separated tiles to spawn, e.g. 2,4"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
			&cli.BoolFlag{Name: "debug", Usage: "shorthand for --log-level debug"},
			&cli.BoolFlag{Name: "telemetry", Usage: "export traces over OTLP HTTP"},
		},
		Commands: []*cli.Command{
			serverCommand(),
			mcpCommand(),
			newBoardCommand(),
			showCommand(),
			moveCommand(),
			playCommand(),
			presetsCommand(),
			envCommand(),
		},
	}
}

// loadSettings reads settings and applies flag overrides
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		settings.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("presets-dir") {
		settings.PresetsDir = cmd.String("presets-dir")
	}
	if cmd.IsSet("default-preset") {
		settings.DefaultPreset = cmd.String("default-preset")
	}
	if cmd.IsSet("decode-policy") {
		settings.DecodePolicy = cmd.String("decode-policy")
	}
	if cmd.IsSet("spawn") {
		values, err := parseInts(cmd.String("spawn"))
		if err != nil {
			return nil, fmt.Errorf("invalid --spawn: %w", err)
		}
		settings.SpawnValues = values
	}
	if cmd.IsSet("log-level") {
		settings.LogLevel = cmd.String("log-level")
	}
	if cmd.IsSet("log-format") {
		settings.LogFormat = cmd.String("log-format")
	}
	if cmd.Bool("debug") {
		settings.LogLevel = "debug"
	}
	if cmd.IsSet("telemetry") {
		settings.Telemetry.Enabled = cmd.Bool("telemetry")
	}
	if cmd.IsSet("ngrok") {
		settings.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		settings.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		settings.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	return settings, settings.Validate()
}

func parseInts(list string) ([]int, error) {
	var values []int
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		values = append(values, n)
	}
	return values, nil
}

// initializeServices wires the preset manager and the game service
func initializeServices(settings *config.Settings, log logrus.FieldLogger) (service.GameService, error) {
	dir := settings.PresetsDir
	if dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			log.WithField("dir", dir).Warn("presets directory not found, using built-in presets")
			dir = ""
		}
	}

	presets, err := config.NewManager(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset manager: %w", err)
	}
	if settings.DefaultPreset != "" {
		if err := presets.SetDefault(settings.DefaultPreset); err != nil {
			return nil, fmt.Errorf("failed to set default preset: %w", err)
		}
	}

	policy, err := settings.Policy()
	if err != nil {
		return nil, err
	}
	spawn, err := settings.Spawn()
	if err != nil {
		return nil, err
	}

	return service.NewGameService(presets,
		service.WithDecodePolicy(policy),
		service.WithSpawnValues(spawn...),
		service.WithRand(engine.DefaultRand()),
		service.WithTracer(telemetry.Tracer("service")),
	), nil
}

// setupTelemetry installs the OTLP exporter when enabled. The returned
// function is always safe to call.
func setupTelemetry(ctx context.Context, settings *config.Settings, log logrus.FieldLogger) func() {
	if !settings.Telemetry.Enabled {
		return func() {}
	}

	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.WithError(err).Warn("telemetry disabled")
		return func() {}
	}
	log.Info("telemetry enabled")

	return func() {
		if err := shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("telemetry shutdown failed")
		}
	}
}

func newLogger(settings *config.Settings) *logrus.Logger {
	return logger.New(settings.LogLevel, settings.LogFormat)
}
