package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/tile-token-game/api"
	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/service"
	"github.com/wricardo/tile-token-game/transport/mcp"
	"github.com/wricardo/tile-token-game/transport/websocket"
)

func serverCommand() *cli.Command {
	return &cli.Command{
		Name:    "server",
		Aliases: []string{"http"},
		Usage:   "run the HTTP server (pages, JSON API, WebSocket, /mcp)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "ngrok", Usage: "expose the server through an ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token (or NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			log := newLogger(settings)
			defer setupTelemetry(ctx, settings, log)()

			gameService, err := initializeServices(settings, log)
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"version": Version,
				"policy":  settings.DecodePolicy,
				"spawn":   settings.SpawnValues,
			}).Infof("Starting %s", AppName)

			return runHTTPServer(ctx, settings, gameService, log)
		},
	}
}

// newHandler builds the API server with the /mcp endpoint on the same
// router, so token paths are never cleaned. The returned hub must be run by
// the caller.
func newHandler(gameService service.GameService, baseURL string, log logrus.FieldLogger) (http.Handler, *websocket.Hub) {
	hub := websocket.NewHub(gameService, log)
	mcpClient := mcp.NewClient(baseURL)
	return api.NewServer(gameService, hub, log, api.WithMCP(mcpClient.HTTPHandler())), hub
}

// runHTTPServer serves until ctx is cancelled. With ngrok enabled it also
// serves through a public tunnel.
func runHTTPServer(ctx context.Context, settings *config.Settings, gameService service.GameService, log *logrus.Logger) error {
	addr := settings.Addr()
	handler, hub := newHandler(gameService, "http://"+addr, log)

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go hub.Run(hubCtx)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("Game UI: http://%s/", addr)
		log.Infof("JSON API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?room=<room>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	var tun ngrok.Tunnel
	if settings.Ngrok.Enabled {
		var err error
		tun, err = startTunnel(ctx, settings.Ngrok, log)
		if err != nil {
			log.WithError(err).Error("failed to start ngrok tunnel")
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.WithError(err).Debug("ngrok server stopped")
				}
				log.Info("ngrok tunnel closed")
			}()
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case runErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}
	if tun != nil {
		// unblocks http.Serve on the tunnel
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("failed to close ngrok tunnel")
		}
	}

	stopHub()
	wg.Wait()
	log.Info("Server stopped")
	return runErr
}

// startTunnel opens an ngrok HTTP endpoint
func startTunnel(ctx context.Context, settings config.Ngrok, log logrus.FieldLogger) (ngrok.Tunnel, error) {
	if settings.AuthToken == "" {
		return nil, errors.New("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
	}

	var endpoint ngrokConfig.Tunnel
	if settings.Domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
		log.WithField("domain", settings.Domain).Info("using custom ngrok domain")
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	log.Info("Starting ngrok tunnel...")
	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		return nil, err
	}

	log.Infof("Ngrok tunnel established: %s", tun.URL())
	log.Infof("  Game UI (ngrok): %s/", tun.URL())
	log.Infof("  JSON API (ngrok): %s/api", tun.URL())
	log.Infof("  MCP endpoint (ngrok): %s/mcp", tun.URL())
	return tun, nil
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server backed by the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "JSON API to proxy to; an internal server starts when it does not answer"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			// stdout carries the protocol
			log := newLogger(settings)
			log.SetOutput(os.Stderr)

			baseURL, stop, err := resolveAPI(ctx, cmd.String("api"), settings, log)
			if err != nil {
				return err
			}
			defer stop()

			log.WithField("api", baseURL).Info("MCP stdio server ready")
			return mcp.NewClient(baseURL).ServeStdio()
		},
	}
}

// resolveAPI returns externalURL when it answers, otherwise starts an
// internal API on a random loopback port.
func resolveAPI(ctx context.Context, externalURL string, settings *config.Settings, log *logrus.Logger) (string, func(), error) {
	health := &http.Client{Timeout: 2 * time.Second}
	if resp, err := health.Get(externalURL + "/api/health"); err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			log.WithField("api", externalURL).Info("using external API server")
			return externalURL, func() {}, nil
		}
	}

	log.Info("no external API server found, starting internal HTTP server")
	gameService, err := initializeServices(settings, log)
	if err != nil {
		return "", nil, err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}
	baseURL := "http://" + listener.Addr().String()

	handler, hub := newHandler(gameService, baseURL, log)
	hubCtx, stopHub := context.WithCancel(ctx)
	go hub.Run(hubCtx)

	httpServer := &http.Server{Handler: handler}
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("internal HTTP server error")
		}
	}()

	return baseURL, func() {
		stopHub()
		httpServer.Close()
	}, nil
}
