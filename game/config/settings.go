package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/wricardo/tile-token-game/game/engine"
)

// DefaultSettingsPath is read when it exists
const DefaultSettingsPath = "config.yml"

type Settings struct {
	Host          string    `yaml:"host" env:"HOST" env-default:"localhost"`
	Port          int       `yaml:"port" env:"PORT" env-default:"8080"`
	LogLevel      string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat     string    `yaml:"log-format" env:"LOG_FORMAT" env-default:"text"`
	PresetsDir    string    `yaml:"presets-dir" env:"PRESETS_DIR" env-default:"presets"`
	DefaultPreset string    `yaml:"default-preset" env:"DEFAULT_PRESET" env-default:"classic"`
	DecodePolicy  string    `yaml:"decode-policy" env:"DECODE_POLICY" env-default:"pad"`
	SpawnValues   []int     `yaml:"spawn-values" env:"SPAWN_VALUES" env-separator:"," env-default:"2,4"`
	Telemetry     Telemetry `yaml:"telemetry"`
	Ngrok         Ngrok     `yaml:"ngrok"`
}

type Telemetry struct {
	Enabled bool `yaml:"enabled" env:"TELEMETRY_ENABLED" env-default:"false"`
}

type Ngrok struct {
	Enabled   bool   `yaml:"enabled" env:"NGROK_ENABLED" env-default:"false"`
	AuthToken string `yaml:"auth-token" env:"NGROK_AUTHTOKEN"`
	Domain    string `yaml:"domain" env:"NGROK_DOMAIN"`
}

// Load reads settings from path when the file exists, then from the
// environment. An empty path reads the environment only.
func Load(path string) (*Settings, error) {
	settings := &Settings{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, settings); err != nil {
				return nil, fmt.Errorf("unable to load settings file: %w", err)
			}
			return settings, settings.Validate()
		}
	}

	if err := cleanenv.ReadEnv(settings); err != nil {
		return nil, fmt.Errorf("unable to read settings from environment: %w", err)
	}
	return settings, settings.Validate()
}

// Validate checks the settings that other packages parse
func (s *Settings) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port out of range: %d", s.Port)
	}
	if _, err := s.Policy(); err != nil {
		return err
	}
	if _, err := s.Spawn(); err != nil {
		return err
	}
	return nil
}

// Addr returns host:port
func (s *Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Policy returns the configured token decode policy
func (s *Settings) Policy() (engine.DecodePolicy, error) {
	return engine.ParseDecodePolicy(s.DecodePolicy)
}

// Spawn returns the configured spawn values as tiles
func (s *Settings) Spawn() ([]engine.Tile, error) {
	if len(s.SpawnValues) == 0 {
		return nil, errors.New("spawn values must not be empty")
	}
	tiles := make([]engine.Tile, len(s.SpawnValues))
	for i, v := range s.SpawnValues {
		if v <= 0 || v > int(engine.MaxTile) {
			return nil, fmt.Errorf("spawn value out of range: %d", v)
		}
		tiles[i] = engine.Tile(v)
	}
	return tiles, nil
}

// Usage describes the environment variables Settings reads
func Usage() string {
	desc, err := cleanenv.GetDescription(&Settings{}, nil)
	if err != nil {
		return ""
	}
	return desc
}
