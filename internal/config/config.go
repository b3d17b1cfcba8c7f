package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// Config holds the branchlet configuration.
// Values are passed around by value; update by building a new Config.
type Config struct {
	WorktreeCopyPatterns     []string `json:"worktreeCopyPatterns" toml:"worktreeCopyPatterns" yaml:"worktreeCopyPatterns" jsonschema:"description=Globs (relative to the repository root) copied into new worktrees"`
	WorktreeCopyIgnores      []string `json:"worktreeCopyIgnores" toml:"worktreeCopyIgnores" yaml:"worktreeCopyIgnores" jsonschema:"description=Globs excluded from copying"`
	WorktreePathTemplate     string   `json:"worktreePathTemplate" toml:"worktreePathTemplate" yaml:"worktreePathTemplate" jsonschema:"minLength=1,description=Directory that holds new worktrees"`
	PostCreateCmd            []string `json:"postCreateCmd" toml:"postCreateCmd" yaml:"postCreateCmd" jsonschema:"description=Shell commands run in order inside a new worktree"`
	TerminalCommand          string   `json:"terminalCommand" toml:"terminalCommand" yaml:"terminalCommand" jsonschema:"description=Command launched after creation (editor or terminal)"`
	DeleteBranchWithWorktree bool     `json:"deleteBranchWithWorktree" toml:"deleteBranchWithWorktree" yaml:"deleteBranchWithWorktree" jsonschema:"description=Delete the branch when its worktree is deleted"`
	BranchPrefix             string   `json:"branchPrefix" toml:"branchPrefix" yaml:"branchPrefix" jsonschema:"description=Prefix added to new branch names"`
	DefaultSourceBranch      string   `json:"defaultSourceBranch" toml:"defaultSourceBranch" yaml:"defaultSourceBranch" jsonschema:"description=Branch new worktrees start from when none is given"`
}

// DefaultPathTemplate places worktrees in a sibling "<repo>.worktree" directory.
const DefaultPathTemplate = "$BASE_PATH.worktree"

// File names and locations.
const (
	GlobalConfigFileName = "settings.json"
	LocalConfigFileName  = ".branchlet.json"
	globalConfigDirName  = ".branchlet"

	// ConfigDirEnv overrides the directory holding the global config file.
	ConfigDirEnv = "BRANCHLET_CONFIG_DIR"
)

// Default returns the default configuration.
func Default() Config {
	return Config{
		WorktreeCopyPatterns: []string{".env*", ".vscode/**"},
		WorktreeCopyIgnores: []string{
			"**/node_modules/**",
			"**/dist/**",
			"**/.git/**",
			"**/Thumbs.db",
			"**/.DS_Store",
		},
		WorktreePathTemplate:     DefaultPathTemplate,
		PostCreateCmd:            []string{},
		TerminalCommand:          "",
		DeleteBranchWithWorktree: false,
		BranchPrefix:             "",
		DefaultSourceBranch:      "",
	}
}

// normalized returns a copy whose slices are non-nil and not shared with c.
func (c Config) normalized() Config {
	c.WorktreeCopyPatterns = cloneSlice(c.WorktreeCopyPatterns)
	c.WorktreeCopyIgnores = cloneSlice(c.WorktreeCopyIgnores)
	c.PostCreateCmd = cloneSlice(c.PostCreateCmd)
	return c
}

func cloneSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// Error reports an invalid or unwritable configuration.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// GlobalPath returns the path of the global config file.
// $BRANCHLET_CONFIG_DIR takes precedence over ~/.branchlet.
func GlobalPath() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		expanded, err := expandPath(dir)
		if err != nil {
			return "", err
		}
		return filepath.Join(expanded, GlobalConfigFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, globalConfigDirName, GlobalConfigFileName), nil
}

// LocalPath returns the path of the project-local config file.
func LocalPath(projectPath string) string {
	return filepath.Join(projectPath, LocalConfigFileName)
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "~" || (len(path) >= 2 && path[:2] == "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadGlobal reads the global config at path.
//
// A missing file is materialized from Default(); an existing file is never
// rewritten, so repeated calls leave it byte-for-byte unchanged.
// Malformed or schema-invalid files are skipped: Default() is returned along
// with a warning. Only unreadable files produce an error.
func LoadGlobal(path string) (Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Default(), nil, &Error{Path: path, Err: err}
		}
		if err := Save(Default(), path); err != nil {
			return Default(), []string{fmt.Sprintf("could not create default config: %v", err)}, nil
		}
		return Default(), nil, nil
	}

	layer, err := parseLayer(data)
	if err != nil {
		return Default(), []string{fmt.Sprintf("ignoring global config %s: %v", path, err)}, nil
	}
	return MergeLocal(Default(), layer), nil, nil
}
