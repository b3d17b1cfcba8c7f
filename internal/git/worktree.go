package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Tsdevendra1/branchlet/internal/log"
)

// CreateOptions describes a worktree to add.
type CreateOptions struct {
	// Path is the directory of the new worktree. It must not exist.
	Path string
	// SourceBranch is the starting point of the new branch.
	SourceBranch string
	// NewBranch is created from SourceBranch. When it equals SourceBranch
	// the existing branch is checked out instead.
	NewBranch string
}

// CreateWorktree adds a worktree with a single `git worktree add`.
// git either creates the worktree completely or not at all.
func (s *Service) CreateWorktree(ctx context.Context, opts CreateOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Path == "" || opts.NewBranch == "" {
		return &CommandError{Op: "create worktree", Err: errors.New("path and branch are required")}
	}

	args := []string{"worktree", "add"}
	switch {
	case opts.NewBranch == opts.SourceBranch || opts.SourceBranch == "":
		args = append(args, opts.Path, opts.NewBranch)
	default:
		args = append(args, "-b", opts.NewBranch, opts.Path, opts.SourceBranch)
	}

	if err := runGit(ctx, s.Dir(), args...); err != nil {
		return newCommandError("create worktree", err)
	}
	log.FromContext(ctx).Debug("created worktree", "path", opts.Path, "branch", opts.NewBranch)
	return nil
}

// DeleteOptions describes a worktree removal.
type DeleteOptions struct {
	Path string
	// Force removes the worktree even when it has local changes.
	Force bool
	// DeleteBranch also deletes the worktree's branch once it is removed.
	DeleteBranch bool
	// Strict refuses to touch a worktree whose branch would lose commits
	// and deletes the branch with `git branch -d` rather than -D.
	Strict bool
}

// DeleteResult reports what DeleteWorktree did.
type DeleteResult struct {
	Path          string
	Branch        string
	BranchDeleted bool
	// Warnings describe work that may have been lost or a branch left behind.
	Warnings []string
}

// DeleteWorktree removes a linked worktree and optionally its branch.
//
// The branch is only deleted after the worktree is gone, and only when it is
// not detached and not checked out in another worktree. Unpushed commits and
// discarded local changes are reported as warnings; in strict mode unpushed
// commits block the whole operation with ErrUnpushedWork.
func (s *Service) DeleteWorktree(ctx context.Context, opts DeleteOptions) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.CurrentWorktreeInfo(ctx)
	if err != nil {
		return nil, err
	}
	repoPath := current.MainRepoPath

	worktrees, err := listWorktrees(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	info := &RepositoryInfo{RootPath: repoPath, Worktrees: worktrees}

	target, found := info.FindWorktree(opts.Path)
	if found && target.IsMain {
		return nil, &CommandError{Op: "delete worktree", Err: ErrMainWorktree}
	}

	result := &DeleteResult{Path: opts.Path, Branch: target.Branch}
	deleteBranch := opts.DeleteBranch && found && !target.IsDetached()

	if opts.Force && found && !target.IsPrunable {
		if clean, err := s.IsWorktreeClean(ctx, opts.Path); err == nil && !clean {
			result.Warnings = append(result.Warnings, fmt.Sprintf("discarded uncommitted changes in %s", opts.Path))
		}
	}

	if deleteBranch {
		unpushed, err := hasUnpushedCommits(repoPath, target.Branch)
		switch {
		case err != nil:
			result.Warnings = append(result.Warnings, fmt.Sprintf("could not inspect branch %s: %v", target.Branch, err))
		case unpushed && opts.Strict:
			return nil, &CommandError{Op: "delete worktree", Err: fmt.Errorf("%w: %s", ErrUnpushedWork, target.Branch)}
		case unpushed:
			result.Warnings = append(result.Warnings, fmt.Sprintf("branch %s had unpushed commits", target.Branch))
		}
	}

	args := []string{"worktree", "remove", opts.Path}
	if opts.Force {
		args = append(args, "--force")
	}
	if err := runGit(ctx, repoPath, args...); err != nil {
		return nil, newCommandError("delete worktree", err)
	}
	log.FromContext(ctx).Debug("removed worktree", "path", opts.Path)

	if !deleteBranch {
		return result, nil
	}

	if other, busy := checkedOutElsewhere(worktrees, target); busy {
		result.Warnings = append(result.Warnings, fmt.Sprintf("kept branch %s: checked out in %s", target.Branch, other))
		return result, nil
	}

	flag := "-D"
	if opts.Strict {
		flag = "-d"
	}
	if err := runGit(ctx, repoPath, "branch", flag, target.Branch); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("kept branch %s: %v", target.Branch, newCommandError("delete branch", err)))
		return result, nil
	}
	result.BranchDeleted = true
	return result, nil
}

// checkedOutElsewhere returns the path of another worktree holding target's branch.
func checkedOutElsewhere(worktrees []Worktree, target Worktree) (string, bool) {
	for _, wt := range worktrees {
		if wt.Branch == target.Branch && !samePath(wt.Path, target.Path) {
			return filepath.Clean(wt.Path), true
		}
	}
	return "", false
}
