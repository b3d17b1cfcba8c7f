package orchestrator

import (
	"context"
	"fmt"

	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/worktree"
)

// ClosePlan is the hand-off of a confirmed close: the caller changes
// directory to NavigateTo and then deletes DeleteWorktree.
type ClosePlan struct {
	NavigateTo     string
	DeleteWorktree string
	Branch         string
}

// CloseFlow is the close state machine: leave the current linked worktree
// for the main repository.
type CloseFlow struct {
	git   GitService
	cwd   string
	state CloseState
	info  *git.CurrentWorktree
	err   error
}

// NewCloseFlow returns a flow in checking-preconditions. cwd is where the
// user stands; it decides the navigation target.
func NewCloseFlow(g GitService, cwd string) *CloseFlow {
	return &CloseFlow{git: g, cwd: cwd, state: CloseCheckingPreconditions}
}

// State returns the current state.
func (f *CloseFlow) State() CloseState { return f.state }

// Err returns the failure, if any.
func (f *CloseFlow) Err() error { return f.err }

// Worktree returns the worktree being closed once Check passed.
func (f *CloseFlow) Worktree() *git.CurrentWorktree { return f.info }

func (f *CloseFlow) fail(err error) error {
	f.state = CloseFailed
	f.err = err
	return err
}

// Check verifies that cwd is inside a clean linked worktree and moves the
// flow to confirming. Failures are ErrNotWorktree or ErrUncommittedChanges.
func (f *CloseFlow) Check(ctx context.Context) error {
	if f.state != CloseCheckingPreconditions {
		return fmt.Errorf("%w: check in %s", ErrInvalidTransition, f.state)
	}

	info, err := f.git.CurrentWorktreeInfo(ctx)
	if err != nil {
		return f.fail(fmt.Errorf("%w: %v", ErrNotWorktree, err))
	}
	if !info.IsWorktree {
		return f.fail(fmt.Errorf("%w: %s is the main repository", ErrNotWorktree, info.WorktreePath))
	}

	clean, err := f.git.IsWorktreeClean(ctx, info.WorktreePath)
	if err != nil {
		return f.fail(err)
	}
	if !clean {
		return f.fail(fmt.Errorf("%w: commit or stash them in %s first", ErrUncommittedChanges, info.WorktreePath))
	}

	f.info = info
	f.state = CloseConfirming
	return nil
}

// Confirm finishes the flow. canNavigate tells whether the caller runs under
// the shell wrapper; without it nothing can happen and ErrNoShellIntegration
// is returned.
func (f *CloseFlow) Confirm(canNavigate bool) (*ClosePlan, error) {
	if f.state != CloseConfirming {
		return nil, fmt.Errorf("%w: confirm in %s", ErrInvalidTransition, f.state)
	}
	if !canNavigate {
		return nil, f.fail(ErrNoShellIntegration)
	}

	f.state = CloseClosing
	return &ClosePlan{
		NavigateTo:     worktree.TargetPath(f.info.WorktreePath, f.info.MainRepoPath, f.cwd),
		DeleteWorktree: f.info.WorktreePath,
		Branch:         f.info.Branch,
	}, nil
}
