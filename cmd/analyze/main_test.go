package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/wricardo/tile-token-game/game/engine"
)

func TestAnalyzeToken(t *testing.T) {
	a, err := analyzeToken("AgICAAIABAAI", engine.PadTruncated)
	if err != nil {
		t.Fatalf("analyzeToken failed: %v", err)
	}

	if a.Width != 2 || a.Height != 2 {
		t.Errorf("Expected 2x2, got %dx%d", a.Width, a.Height)
	}
	if a.Tiles != 4 || a.Free != 0 {
		t.Errorf("Expected 4 tiles and 0 free, got %d and %d", a.Tiles, a.Free)
	}
	if a.MaxTile != 8 || a.Sum != 16 {
		t.Errorf("Expected max 8 sum 16, got %d and %d", a.MaxTile, a.Sum)
	}
	if a.Histogram[2] != 2 || a.Histogram[4] != 1 || a.Histogram[8] != 1 {
		t.Errorf("Unexpected histogram %v", a.Histogram)
	}
	if len(a.Moves) != 2 || a.Moves[0] != engine.Left || a.Moves[1] != engine.Right {
		t.Errorf("Expected [left right], got %v", a.Moves)
	}
	if a.Canonical != a.Token {
		t.Errorf("Expected canonical token, got %s", a.Canonical)
	}
}

func TestAnalyzeToken_EmptyBoard(t *testing.T) {
	a, err := analyzeToken("BAQ=", engine.PadTruncated)
	if err != nil {
		t.Fatalf("analyzeToken failed: %v", err)
	}
	if a.Free != 16 || a.Tiles != 0 {
		t.Errorf("Expected 16 free cells, got %d free %d tiles", a.Free, a.Tiles)
	}
	if !a.Stuck() {
		t.Error("Expected an empty board to be stuck")
	}
}

func TestAnalyzeToken_Malformed(t *testing.T) {
	_, err := analyzeToken("not base64!", engine.PadTruncated)
	if !errors.Is(err, engine.ErrMalformedToken) {
		t.Errorf("Expected ErrMalformedToken, got %v", err)
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	failed := run(&out, []string{"AgICAAQACAAQ", "AA=="}, engine.PadTruncated)
	if failed != 1 {
		t.Errorf("Expected 1 failure, got %d", failed)
	}

	text := out.String()
	for _, want := range []string{"=== AgICAAQACAAQ ===", "Size: 2 x 2", "No move changes the board", "Error:"} {
		if !strings.Contains(text, want) {
			t.Errorf("Output missing %q:\n%s", want, text)
		}
	}
}

func TestReadTokens(t *testing.T) {
	tokens, err := readTokens(strings.NewReader("BAQ=\n\n  AwM=  \n"))
	if err != nil {
		t.Fatalf("readTokens failed: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "BAQ=" || tokens[1] != "AwM=" {
		t.Errorf("Unexpected tokens %v", tokens)
	}
}

func TestReadTokens_LargestBoard(t *testing.T) {
	board, err := engine.New(engine.MaxDimension, engine.MaxDimension)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for r := 0; r < engine.MaxDimension; r++ {
		for c := 0; c < engine.MaxDimension; c++ {
			board.Set(r, c, engine.MaxTile)
		}
	}
	token := board.Serialize()
	if len(token) <= 64*1024 {
		t.Fatalf("token is only %d bytes", len(token))
	}

	tokens, err := readTokens(strings.NewReader("BAQ=\r\n" + token + "\r\n"))
	if err != nil {
		t.Fatalf("readTokens failed: %v", err)
	}
	if len(tokens) != 2 || tokens[1] != token {
		t.Fatalf("Expected the full board token back, got %d tokens", len(tokens))
	}

	a, err := analyzeToken(tokens[1], engine.Strict)
	if err != nil {
		t.Fatalf("analyzeToken failed: %v", err)
	}
	if a.Width != engine.MaxDimension || a.MaxTile != engine.MaxTile {
		t.Errorf("Unexpected width %d or max tile %d", a.Width, a.MaxTile)
	}
}
