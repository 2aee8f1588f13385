package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/i474232898/temptrack/internal/units"
)

// Preferences is the record persisted between runs.
type Preferences struct {
	DefaultCity    string       `json:"default_city"`
	Units          units.System `json:"units"`
	SavedLocations []string     `json:"saved_locations"`
}

// Remember makes location the default and appends it to the saved list if new.
func (p *Preferences) Remember(location string) {
	location = strings.TrimSpace(location)
	if location == "" {
		return
	}
	p.DefaultCity = location
	if !slices.Contains(p.SavedLocations, location) {
		p.SavedLocations = append(p.SavedLocations, location)
	}
}

// Store keeps Preferences in a single JSON file.
type Store struct {
	path     string
	defaults Preferences
	logger   *slog.Logger
	mu       sync.Mutex
}

// NewStore creates a store backed by path. defaults fills any field that is
// missing from the file, and is returned whole when the file cannot be used.
func NewStore(path string, defaults Preferences, logger *slog.Logger) *Store {
	if !defaults.Units.Valid() {
		defaults.Units = units.Metric
	}
	if len(defaults.SavedLocations) == 0 && defaults.DefaultCity != "" {
		defaults.SavedLocations = []string{defaults.DefaultCity}
	}
	return &Store{
		path:     path,
		defaults: defaults,
		logger:   logger.With("component", "settings-store"),
	}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the preferences file. It never fails: a missing, unreadable or
// corrupt file yields the defaults.
func (s *Store) Load() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Debug("preferences unreadable, using defaults", "path", s.path, "error", err)
		}
		return s.copyDefaults()
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Debug("preferences corrupt, using defaults", "path", s.path, "error", err)
		return s.copyDefaults()
	}

	return s.merge(raw)
}

// merge decodes each known field on its own so one bad value does not
// discard the rest of the file.
func (s *Store) merge(raw map[string]json.RawMessage) Preferences {
	prefs := s.copyDefaults()

	var city string
	if v, ok := raw["default_city"]; ok && json.Unmarshal(v, &city) == nil && strings.TrimSpace(city) != "" {
		prefs.DefaultCity = city
	}

	var u string
	if v, ok := raw["units"]; ok && json.Unmarshal(v, &u) == nil {
		prefs.Units = units.ParseSystem(u)
	}

	// "favorites" is the older name for saved_locations.
	var saved []string
	if v, ok := raw["saved_locations"]; ok && json.Unmarshal(v, &saved) == nil {
		prefs.SavedLocations = saved
	} else if v, ok := raw["favorites"]; ok && json.Unmarshal(v, &saved) == nil {
		prefs.SavedLocations = saved
	}

	return prefs
}

// Save writes prefs as indented JSON. The file is written to a temporary
// sibling first and renamed into place so a failed write never leaves a
// truncated file behind.
func (s *Store) Save(prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !prefs.Units.Valid() {
		prefs.Units = units.Metric
	}
	if prefs.SavedLocations == nil {
		prefs.SavedLocations = []string{}
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}

	s.logger.Debug("saved preferences", "path", s.path, "default_city", prefs.DefaultCity, "units", prefs.Units)
	return nil
}

func (s *Store) copyDefaults() Preferences {
	p := s.defaults
	p.SavedLocations = slices.Clone(s.defaults.SavedLocations)
	return p
}
