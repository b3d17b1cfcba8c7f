package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Save validates cfg and writes it to path as indented JSON.
// The parent directory is created first. Validation failures are returned
// as *Error and nothing is written.
func Save(cfg Config, path string) error {
	cfg = cfg.normalized()
	if err := cfg.Validate(); err != nil {
		return &Error{Path: path, Err: err}
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return &Error{Path: path, Err: err}
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &Error{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &Error{Path: path, Err: err}
	}
	return nil
}

// Keys returns the JSON names of all config fields.
func Keys() []string {
	return []string{
		"worktreeCopyPatterns",
		"worktreeCopyIgnores",
		"worktreePathTemplate",
		"postCreateCmd",
		"terminalCommand",
		"deleteBranchWithWorktree",
		"branchPrefix",
		"defaultSourceBranch",
	}
}

// Set returns a copy of cfg with key set to raw.
// raw is decoded as JSON when possible ('["a","b"]', 'true'); otherwise it
// is taken as a plain string. The result is not validated; Save does that.
func Set(cfg Config, key, raw string) (Config, error) {
	known := false
	for _, k := range Keys() {
		if k == key {
			known = true
			break
		}
	}
	if !known {
		return cfg, &Error{Err: fmt.Errorf("unknown key %q (valid: %s)", key, strings.Join(Keys(), ", "))}
	}

	layer, err := decodeSetting(key, raw)
	if err != nil && json.Valid([]byte(raw)) {
		// "123" for a string field: fall back to the literal text
		layer, err = decodeSetting(key, strconv.Quote(raw))
	}
	if err != nil {
		return cfg, &Error{Err: fmt.Errorf("invalid value for %s: %w", key, err)}
	}
	return MergeLocal(cfg, layer), nil
}

func decodeSetting(key, value string) (*LocalConfig, error) {
	if !json.Valid([]byte(value)) {
		value = strconv.Quote(value)
	}
	doc, err := json.Marshal(map[string]json.RawMessage{key: json.RawMessage(value)})
	if err != nil {
		return nil, err
	}
	var layer LocalConfig
	if err := json.Unmarshal(doc, &layer); err != nil {
		return nil, err
	}
	return &layer, nil
}
