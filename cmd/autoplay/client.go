package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/tile-token-game/game/service"
)

// Client talks to the game's JSON API
type Client struct {
	baseURL string
	room    string
	client  *http.Client
}

func NewClient(baseURL, room string) *Client {
	return &Client{
		baseURL: baseURL,
		room:    room,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type newBoardRequest struct {
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Preset string `json:"preset,omitempty"`
}

// NewBoard creates an empty board from a size, or from a preset when the
// size is zero
func (c *Client) NewBoard(ctx context.Context, preset string, width, height int) (*service.BoardView, error) {
	var view service.BoardView
	req := newBoardRequest{Width: width, Height: height, Preset: preset}
	if err := c.post(ctx, "/api/boards", req, http.StatusCreated, &view); err != nil {
		return nil, fmt.Errorf("create board: %w", err)
	}
	return &view, nil
}

type playRequest struct {
	Token  string `json:"token"`
	Preset string `json:"preset,omitempty"`
}

// Play spawns a tile on token, with the preset's spawn values when preset
// is set, and returns the turn
func (c *Client) Play(ctx context.Context, token, preset string) (*service.PlayResult, error) {
	var result service.PlayResult
	if err := c.post(ctx, c.withRoom("/api/boards/play"), playRequest{Token: token, Preset: preset}, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}
	return &result, nil
}

func (c *Client) withRoom(path string) string {
	if c.room == "" {
		return path
	}
	return path + "?room=" + url.QueryEscape(c.room)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, want int, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		return fmt.Errorf("%s - %s", resp.Status, bytes.TrimSpace(raw))
	}

	if err := json.Unmarshal(raw, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
