package state

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/grovetools/sigscope/config"
)

// PositionKey is the state key holding the panel position.
const PositionKey = "panel.position"

// State is the local sigscope state: a generic map of key-value pairs
// persisted per working directory.
type State map[string]interface{}

// stateFilePath returns .sigscope/state.yml under the current directory.
func stateFilePath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current directory: %w", err)
	}
	return filepath.Join(cwd, ".sigscope", "state.yml"), nil
}

// Load returns the stored state, or an empty state if none was saved yet.
func Load() (State, error) {
	path, err := stateFilePath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(State), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state State
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if state == nil {
		state = make(State)
	}
	return state, nil
}

// Save writes the state file, creating .sigscope if needed.
func Save(state State) error {
	path, err := stateFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// Get retrieves a value from the state by key.
func Get(key string) (interface{}, bool, error) {
	state, err := Load()
	if err != nil {
		return nil, false, err
	}
	val, ok := state[key]
	return val, ok, nil
}

// GetString returns the string stored under key, or "" if it is missing or
// not a string.
func GetString(key string) (string, error) {
	val, ok, err := Get(key)
	if err != nil || !ok {
		return "", err
	}
	str, _ := val.(string)
	return str, nil
}

// Set sets a value in the state.
func Set(key string, value interface{}) error {
	state, err := Load()
	if err != nil {
		return err
	}
	state[key] = value
	return Save(state)
}

// Delete removes a key from the state.
func Delete(key string) error {
	state, err := Load()
	if err != nil {
		return err
	}
	delete(state, key)
	return Save(state)
}

// Position returns the persisted panel position, or fallback when nothing
// valid is stored. Read errors also yield fallback.
func Position(fallback string) string {
	pos, err := GetString(PositionKey)
	if err != nil || !ValidPosition(pos) {
		return fallback
	}
	return pos
}

// SetPosition persists an explicit panel position change.
func SetPosition(pos string) error {
	if !ValidPosition(pos) {
		return fmt.Errorf("invalid position %q", pos)
	}
	return Set(PositionKey, pos)
}

// ValidPosition reports whether pos is one of right, left or bottom.
func ValidPosition(pos string) bool {
	switch pos {
	case config.PositionRight, config.PositionLeft, config.PositionBottom:
		return true
	}
	return false
}
