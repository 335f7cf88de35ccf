// Package config provides board presets and application settings.
//
// The config package handles:
//   - Loading board presets from JSON files
//   - Preset validation
//   - Default preset management
//   - Application settings from a YAML file and the environment
//
// Preset Format:
//
// Presets are stored as JSON files in the presets directory. Each preset
// defines a board size and, optionally, the tiles spawned after every move:
//
//	{
//	  "name": "Classic",
//	  "description": "The original 4x4 board",
//	  "width": 4,
//	  "height": 4,
//	  "spawn_values": [2, 4]
//	}
//
// A preset file named like a built-in preset (classic, mini, large) replaces
// it. Without any preset directory the built-in presets are still available.
//
// Usage:
//
//	manager, err := config.NewManager("presets")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	preset, err := manager.LoadPreset("classic")
//	token, err := engine.BareBoardCode(preset.Width, preset.Height)
//
// Settings:
//
// Settings are read with cleanenv from config.yml when it exists, then from
// environment variables (PORT, LOG_LEVEL, DECODE_POLICY, ...).
package config
