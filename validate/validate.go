// Command validate checks the board preset JSON files in ../presets (or the
// directory given as the first argument). It checks:
//   - JSON structure, rejecting unknown fields
//   - name and board dimensions within the token limits
//   - spawn values that are non-zero powers of two
//   - that the file name is usable as a preset id
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/bits"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/tile-token-game/game/config"
	"github.com/wricardo/tile-token-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validatePreset loads and validates a single preset JSON file.
func validatePreset(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	id := strings.TrimSuffix(result.File, ".json")
	if id == "" || strings.ContainsAny(id, " /\\") {
		result.fail("File name %q is not a usable preset id", result.File)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var preset config.Preset
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&preset); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := config.ValidatePreset(&preset); err != nil {
		result.fail("%v", err)
	}

	for i, v := range preset.SpawnValues {
		if v != 0 && bits.OnesCount16(uint16(v)) != 1 {
			result.fail("spawn_values[%d] = %d is not a power of two", i, v)
		}
	}

	if !result.Valid {
		return result
	}

	token, err := preset.BareToken()
	if err != nil {
		result.fail("Cannot build a board: %v", err)
		return result
	}
	result.info("Board: %d x %d (%d cells), empty token %s", preset.Width, preset.Height, preset.Width*preset.Height, token)
	result.info("Spawns: %v", preset.Spawn())
	if preset.Width*preset.Height == 1 {
		result.info("Single cell board: the game ends after the first spawn")
	}
	if len(preset.SpawnValues) == 0 {
		result.info("No spawn_values, using defaults %v", engine.DefaultSpawnValues)
	}

	return result
}

// main validates every *.json preset, printing a concise report and exiting
// with non-zero status if any are invalid.
func main() {
	presetDir := "../presets"
	if len(os.Args) > 1 {
		presetDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(presetDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No preset files found in %s\n", presetDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePreset(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
