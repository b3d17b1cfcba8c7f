package orchestrator

import (
	"context"
	"fmt"

	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/log"
)

// DeleteTarget is a worktree selected for deletion.
type DeleteTarget struct {
	Path string
	// IsClean is the cleanliness known when the worktree was selected.
	// Dirty worktrees are removed with force.
	IsClean bool
}

// DeleteFailure pairs a path with the reason it was not deleted.
type DeleteFailure struct {
	Path    string
	Message string
}

// BatchResult is the outcome of a batch delete. Every target appears in
// exactly one of Deleted and Failed, in input order.
type BatchResult struct {
	Deleted  []string
	Failed   []DeleteFailure
	Warnings []string
}

// BatchObserver is told about each deletion as it happens.
type BatchObserver interface {
	DeleteStarted(path string, index, total int)
	DeleteFinished(path string, err error)
}

// BatchOptions controls branch handling for every item of a batch.
type BatchOptions struct {
	// DeleteBranch overrides deleteBranchWithWorktree when non-nil.
	DeleteBranch *bool
	// Strict refuses to delete branches with unpushed commits.
	Strict bool
	// Force removes clean worktrees with force too.
	Force bool
}

// BatchDeleter deletes worktrees one at a time.
type BatchDeleter struct {
	git  GitService
	opts BatchOptions
}

// NewBatchDeleter returns a BatchDeleter.
func NewBatchDeleter(g GitService, opts BatchOptions) *BatchDeleter {
	return &BatchDeleter{git: g, opts: opts}
}

// Delete removes targets strictly in order. A failure is recorded and the
// next target is processed; once ctx is cancelled the remaining targets are
// recorded as failed without being touched. obs may be nil.
func (b *BatchDeleter) Delete(ctx context.Context, targets []DeleteTarget, obs BatchObserver) BatchResult {
	l := log.FromContext(ctx)
	var res BatchResult

	deleteBranch := b.opts.DeleteBranch != nil && *b.opts.DeleteBranch

	for i, t := range targets {
		if obs != nil {
			obs.DeleteStarted(t.Path, i+1, len(targets))
		}

		err := ctx.Err()
		if err == nil {
			var out *git.DeleteResult
			out, err = b.git.DeleteWorktree(ctx, git.DeleteOptions{
				Path:         t.Path,
				Force:        b.opts.Force || !t.IsClean,
				DeleteBranch: deleteBranch,
				Strict:       b.opts.Strict,
			})
			if err == nil && out != nil {
				for _, w := range out.Warnings {
					res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %s", t.Path, w))
				}
			}
		}

		if err != nil {
			l.Debug("delete failed", "path", t.Path, "error", err)
			res.Failed = append(res.Failed, DeleteFailure{Path: t.Path, Message: err.Error()})
		} else {
			res.Deleted = append(res.Deleted, t.Path)
		}
		if obs != nil {
			obs.DeleteFinished(t.Path, err)
		}
	}
	return res
}

// TargetsFor maps paths to targets using the cleanliness recorded in repo.
// Unknown paths are treated as dirty; git rejects them if they are not worktrees.
func TargetsFor(repo *git.RepositoryInfo, paths []string) []DeleteTarget {
	targets := make([]DeleteTarget, 0, len(paths))
	for _, p := range paths {
		wt, ok := repo.FindWorktree(p)
		targets = append(targets, DeleteTarget{Path: p, IsClean: ok && wt.IsClean})
	}
	return targets
}
