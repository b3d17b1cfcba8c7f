package config

import (
	"errors"
	"fmt"
	"os"
)

// LocalConfig is one partially specified config layer (a project's
// .branchlet.json or the global file before defaults are applied).
// A nil field means "not set": the value below it is inherited.
type LocalConfig struct {
	WorktreeCopyPatterns     *[]string `json:"worktreeCopyPatterns"`
	WorktreeCopyIgnores      *[]string `json:"worktreeCopyIgnores"`
	WorktreePathTemplate     *string   `json:"worktreePathTemplate"`
	PostCreateCmd            *[]string `json:"postCreateCmd"`
	TerminalCommand          *string   `json:"terminalCommand"`
	DeleteBranchWithWorktree *bool     `json:"deleteBranchWithWorktree"`
	BranchPrefix             *string   `json:"branchPrefix"`
	DefaultSourceBranch      *string   `json:"defaultSourceBranch"`
}

// LoadLocal reads the project-local config from projectPath.
// Returns nil (no error) if the file doesn't exist.
// Returns an *Error on read, parse or validation failure.
func LoadLocal(projectPath string) (*LocalConfig, error) {
	path := LocalPath(projectPath)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &Error{Path: path, Err: err}
	}

	local, err := parseLayer(data)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return local, nil
}

// parseLayer validates raw JSON against the schema and decodes it.
func parseLayer(data []byte) (*LocalConfig, error) {
	if err := validateDocument(data); err != nil {
		return nil, err
	}

	var local LocalConfig
	if err := decodeJSON(data, &local); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := local.validate(); err != nil {
		return nil, err
	}
	return &local, nil
}

func (l *LocalConfig) validate() error {
	if l.WorktreeCopyPatterns != nil {
		if err := validatePatterns("worktreeCopyPatterns", *l.WorktreeCopyPatterns); err != nil {
			return err
		}
	}
	if l.WorktreeCopyIgnores != nil {
		if err := validatePatterns("worktreeCopyIgnores", *l.WorktreeCopyIgnores); err != nil {
			return err
		}
	}
	if l.BranchPrefix != nil {
		if err := validateBranchPrefix(*l.BranchPrefix); err != nil {
			return err
		}
	}
	return nil
}

const defaultLocalConfig = `{
  "branchPrefix": "",
  "postCreateCmd": []
}
`

// DefaultLocalConfig returns the starter content for a project .branchlet.json.
// Only the fields present override the global config.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
