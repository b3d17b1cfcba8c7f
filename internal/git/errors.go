package git

import (
	"errors"
	"strings"

	"github.com/Tsdevendra1/branchlet/internal/cmd"
)

var (
	// ErrNotRepository indicates the directory is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrMainWorktree indicates an attempt to delete the main worktree.
	ErrMainWorktree = errors.New("cannot delete the main worktree")

	// ErrUnpushedWork indicates a branch holds commits that exist nowhere else.
	ErrUnpushedWork = errors.New("branch has unpushed commits")
)

// QueryError reports a failed read-only git call or unparseable output.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// CommandError reports a failed mutating git call. Stderr holds git's own
// message when there is one.
type CommandError struct {
	Op     string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return e.Op + ": " + e.Stderr
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func newQueryError(op string, err error) *QueryError {
	if isNotRepository(err) {
		err = ErrNotRepository
	}
	return &QueryError{Op: op, Err: err}
}

func newCommandError(op string, err error) *CommandError {
	ce := &CommandError{Op: op, Err: err}
	var exitErr *cmd.ExitError
	if errors.As(err, &exitErr) {
		ce.Stderr = exitErr.Stderr
	}
	return ce
}

func isNotRepository(err error) bool {
	var exitErr *cmd.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	return strings.Contains(strings.ToLower(exitErr.Stderr), "not a git repository")
}
