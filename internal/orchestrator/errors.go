package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrNotWorktree indicates the working directory is the main worktree or
	// not in a repository at all.
	ErrNotWorktree = errors.New("not inside a linked worktree")

	// ErrUncommittedChanges indicates the worktree has local changes.
	ErrUncommittedChanges = errors.New("worktree has uncommitted changes")

	// ErrNoShellIntegration indicates the caller cannot change directory.
	ErrNoShellIntegration = errors.New("shell integration is not active: cannot change directory")

	// ErrBranchExists indicates the new branch name is already taken.
	ErrBranchExists = errors.New("branch already exists")

	// ErrNoSourceBranch indicates no source branch could be resolved.
	ErrNoSourceBranch = errors.New("no source branch: pass one explicitly or set defaultSourceBranch")

	// ErrTargetExists indicates the worktree directory is already present.
	ErrTargetExists = errors.New("target directory already exists")

	// ErrInvalidTransition indicates a call that the current state does not allow.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// ValidationError reports a directory or branch name that was rejected.
// Nothing has been changed on disk when it is returned.
type ValidationError struct {
	Field  string // "directory", "source branch" or "branch"
	Value  string
	Reason string
	Err    error // sentinel, if any
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FlowError reports a create flow that stopped at Step.
// LastCompleted and Path tell the caller what is left on disk.
type FlowError struct {
	Step          Step
	LastCompleted Step
	// Path is the worktree directory when it was created before the failure.
	Path string
	Err  error
}

func (e *FlowError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", e.Step, e.Err)
	if e.Path != "" {
		msg += fmt.Sprintf(" (worktree left at %s)", e.Path)
	}
	return msg
}

func (e *FlowError) Unwrap() error {
	return e.Err
}
