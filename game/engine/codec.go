package engine

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
)

// DecodePolicy controls how Deserialize treats tokens that are not in the
// exact form Serialize produces.
type DecodePolicy int

const (
	// PadTruncated zero-fills every byte missing after the header.
	PadTruncated DecodePolicy = iota
	// Strict only accepts canonical tokens: re-encoding the decoded board
	// must give back the same token.
	Strict
)

// ParseDecodePolicy maps "pad" (or "") and "strict" to a DecodePolicy
func ParseDecodePolicy(name string) (DecodePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "pad":
		return PadTruncated, nil
	case "strict":
		return Strict, nil
	default:
		return PadTruncated, fmt.Errorf("unknown decode policy %q", name)
	}
}

func (p DecodePolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "pad"
}

const headerSize = 2

// Serialize encodes the board as a token
func (b *Board) Serialize() string {
	buf := make([]byte, headerSize+2*b.width*b.height)
	buf[0] = byte(b.width)
	buf[1] = byte(b.height)

	offset := headerSize
	for _, row := range b.cells {
		for _, v := range row {
			binary.LittleEndian.PutUint16(buf[offset:], uint16(v))
			offset += 2
		}
	}

	end := len(buf)
	for end > headerSize && buf[end-1] == 0 {
		end--
	}
	return base64.StdEncoding.EncodeToString(buf[:end])
}

// Deserialize rebuilds a board from a token
func Deserialize(token string, policy DecodePolicy) (*Board, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformedToken, len(raw))
	}

	width, height := int(raw[0]), int(raw[1])
	if width < MinDimension || height < MinDimension {
		return nil, fmt.Errorf("%w: %dx%d board", ErrMalformedToken, width, height)
	}

	expected := headerSize + 2*width*height
	if len(raw) > expected {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d board, want at most %d", ErrMalformedToken, len(raw), width, height, expected)
	}

	buf := make([]byte, expected)
	copy(buf, raw)

	board, err := New(width, height)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	offset := headerSize
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			board.cells[r][c] = Tile(binary.LittleEndian.Uint16(buf[offset:]))
			offset += 2
		}
	}

	if policy == Strict {
		if canonical := board.Serialize(); canonical != token {
			return nil, fmt.Errorf("%w: token is not canonical, expected %q", ErrMalformedToken, canonical)
		}
	}

	return board, nil
}

// BareBoardCode returns the token of an empty board
func BareBoardCode(width, height int) (string, error) {
	if err := validateDimensions(width, height); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte{byte(width), byte(height)}), nil
}
