package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmylchreest/hitotop/internal/geometry"
)

// WindowPosition is the last overlay origin the user dragged to.
type WindowPosition struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Monitor string `json:"monitor,omitempty"` // Connector name, e.g. "DP-1"
	SavedAt int64  `json:"saved_at"`          // Unix timestamp
}

// Origin returns the position as a point.
func (p WindowPosition) Origin() geometry.Point {
	return geometry.Pt(float64(p.X), float64(p.Y))
}

// State is persisted to ~/.local/share/hitotop/state.json
type State struct {
	Window *WindowPosition `json:"window,omitempty"`

	// Version for compatibility
	SchemaVersion int `json:"schema_version"`
}

const (
	// CurrentSchemaVersion is the current version of the state schema.
	CurrentSchemaVersion = 1
)

// stateFileMutex protects concurrent access to the state file.
var stateFileMutex sync.RWMutex

// DefaultState returns a new State with default values.
func DefaultState() *State {
	return &State{SchemaVersion: CurrentSchemaVersion}
}

// LoadState loads the state from path.
// If the file doesn't exist or is corrupted, returns a default state.
func LoadState(path string) (*State, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultState(), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return DefaultState(), nil
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	return &state, nil
}

// SaveState saves the state to path.
func SaveState(path string, state *State) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// SetWindowPosition records origin as the remembered overlay position.
func (s *State) SetWindowPosition(origin geometry.Point, monitor string) {
	x, y := origin.Round()
	s.Window = &WindowPosition{
		X:       x,
		Y:       y,
		Monitor: monitor,
		SavedAt: time.Now().Unix(),
	}
}

// WindowOrigin returns the remembered origin when it was saved for monitor.
// An empty monitor on either side matches any monitor.
func (s *State) WindowOrigin(monitor string) (geometry.Point, bool) {
	if s == nil || s.Window == nil {
		return geometry.Point{}, false
	}
	if monitor != "" && s.Window.Monitor != "" && monitor != s.Window.Monitor {
		return geometry.Point{}, false
	}
	return s.Window.Origin(), true
}

// PositionSaver persists drag-end positions to a state file. It is safe to
// call from the UI loop; writes are small and synchronous.
type PositionSaver struct {
	Path    string
	Monitor func() string
}

// Save loads the current state, updates the window position and writes it
// back.
func (p *PositionSaver) Save(origin geometry.Point) error {
	state, err := LoadState(p.Path)
	if err != nil {
		return err
	}
	monitor := ""
	if p.Monitor != nil {
		monitor = p.Monitor()
	}
	state.SetWindowPosition(origin, monitor)
	return SaveState(p.Path, state)
}
