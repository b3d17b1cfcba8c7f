// Package history remembers, per repository, the worktree the user last
// navigated away from. `branchlet list -` switches back to it.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// FileName is the history file kept next to the global config file.
const FileName = "history.json"

// History maps a main repository path to the worktree last left behind.
type History struct {
	Previous map[string]string `json:"previous"`
}

// Load reads the history at path. A missing or corrupted file yields an
// empty history.
func Load(path string) (*History, error) {
	h := &History{Previous: map[string]string{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, h); err != nil || h.Previous == nil {
		// Corrupted - start fresh
		return &History{Previous: map[string]string{}}, nil
	}
	return h, nil
}

// Save writes the history to path atomically.
func (h *History) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tempPath, path)
}

// Record stores from as the worktree left behind in repoRoot.
func Record(path, repoRoot, from string) error {
	h, err := Load(path)
	if err != nil {
		return err
	}
	h.Previous[filepath.Clean(repoRoot)] = from
	return h.Save(path)
}

// Previous returns the worktree last left behind in repoRoot, or "".
func Previous(path, repoRoot string) (string, error) {
	h, err := Load(path)
	if err != nil {
		return "", err
	}
	return h.Previous[filepath.Clean(repoRoot)], nil
}
