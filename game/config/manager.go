package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Manager handles preset loading and caching
type Manager struct {
	presetDir     string
	defaultPreset *Preset
	defaultID     string
	presets       map[string]*Preset
	mu            sync.RWMutex
}

// NewManager creates a new preset manager. An empty presetDir serves
// the built-in presets only.
func NewManager(presetDir string) (*Manager, error) {
	if presetDir != "" {
		if _, err := os.Stat(presetDir); os.IsNotExist(err) {
			return nil, fmt.Errorf("preset directory does not exist: %s", presetDir)
		}
	}

	m := &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*Preset),
	}

	if err := m.loadDefaultPreset(); err != nil {
		return nil, fmt.Errorf("failed to load default preset: %w", err)
	}

	return m, nil
}

// LoadPreset loads a preset by id, preferring a file over a built-in
func (m *Manager) LoadPreset(id string) (*Preset, error) {
	id = strings.TrimSuffix(id, ".json")
	if id == "" || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, id)
	}

	m.mu.RLock()
	if preset, exists := m.presets[id]; exists {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(id)
}

// loadLocked must be called with the write lock held
func (m *Manager) loadLocked(id string) (*Preset, error) {
	if preset, exists := m.presets[id]; exists {
		return preset, nil
	}

	preset, err := m.readPresetFile(id)
	if err != nil {
		return nil, err
	}
	if preset == nil {
		builtIn, ok := builtInPresets[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, id)
		}
		preset = &builtIn
		preset.SpawnValues = append(preset.SpawnValues[:0:0], builtIn.SpawnValues...)
	}

	m.presets[id] = preset
	return preset, nil
}

// readPresetFile returns nil, nil when no file exists for id
func (m *Manager) readPresetFile(id string) (*Preset, error) {
	if m.presetDir == "" {
		return nil, nil
	}

	data, err := os.ReadFile(filepath.Join(m.presetDir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("%w: failed to parse preset %q: %v", ErrInvalidPreset, id, err)
	}
	if err := ValidatePreset(&preset); err != nil {
		return nil, err
	}
	return &preset, nil
}

// ListPresets returns every loadable preset sorted by id. Invalid preset
// files are skipped.
func (m *Manager) ListPresets() ([]*PresetInfo, error) {
	ids := make(map[string]string)
	for id := range builtInPresets {
		ids[id] = ""
	}

	if m.presetDir != "" {
		entries, err := os.ReadDir(m.presetDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read preset directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			ids[strings.TrimSuffix(entry.Name(), ".json")] = entry.Name()
		}
	}

	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	var infos []*PresetInfo
	for _, id := range sorted {
		preset, err := m.LoadPreset(id)
		if err != nil {
			continue
		}
		_, builtIn := builtInPresets[id]
		infos = append(infos, &PresetInfo{
			Filename:    ids[id],
			PresetID:    id,
			Name:        preset.Name,
			Description: preset.Description,
			Width:       preset.Width,
			Height:      preset.Height,
			SpawnValues: preset.Spawn(),
			BuiltIn:     builtIn && ids[id] == "",
		})
	}

	return infos, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// DefaultID returns the id of the default preset
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default preset by id
func (m *Manager) SetDefault(id string) error {
	preset, err := m.LoadPreset(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = preset
	m.defaultID = strings.TrimSuffix(id, ".json")
	return nil
}

func (m *Manager) loadDefaultPreset() error {
	preset, err := m.LoadPreset(DefaultPresetID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = preset
	m.defaultID = DefaultPresetID
	return nil
}

// SavePreset writes a preset to the preset directory
func (m *Manager) SavePreset(id string, preset *Preset) error {
	if m.presetDir == "" {
		return fmt.Errorf("no preset directory configured")
	}
	if err := ValidatePreset(preset); err != nil {
		return err
	}

	id = strings.TrimSuffix(id, ".json")
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad preset id %q", ErrInvalidPreset, id)
	}

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.presetDir, id+".json"), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	m.mu.Lock()
	m.presets[id] = preset
	m.mu.Unlock()

	return nil
}
