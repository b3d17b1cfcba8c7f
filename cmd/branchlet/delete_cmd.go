package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/orchestrator"
	"github.com/Tsdevendra1/branchlet/internal/ui/progress"
	"github.com/Tsdevendra1/branchlet/internal/ui/prompt"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/flows"
)

func newDeleteCmd() *cobra.Command {
	var (
		force        bool
		strict       bool
		deleteBranch bool
		yes          bool
	)

	cmd := &cobra.Command{
		Use:     "delete [worktree...]",
		Short:   "Delete worktrees",
		Aliases: []string{"rm"},
		GroupID: GroupCore,
		Long: `Delete one or more linked worktrees.

Worktrees are given as paths, directory names, branch names or fuzzy
queries. Without arguments a picker lists the linked worktrees.

Worktrees with uncommitted changes are removed with force. Deletions run one
after another; a failure does not stop the rest.`,
		Example: `  branchlet delete                      # Pick interactively
  branchlet delete login signup         # By directory or branch name
  branchlet delete login --delete-branch
  branchlet delete login --strict       # Keep branches with unpushed commits`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			s, err := openSession(ctx)
			if err != nil {
				return err
			}

			var paths []string
			if len(args) == 0 {
				if !isInteractive() {
					return fmt.Errorf("no worktrees given")
				}
				paths, err = flows.RunDelete(s.repo, nil)
				if errors.Is(err, flows.ErrCancelled) {
					l.Info("delete cancelled")
					return nil
				}
				if err != nil {
					return err
				}
			} else {
				paths, err = resolveDeletePaths(s, args)
				if err != nil {
					return err
				}
				if !yes && isInteractive() {
					answer, err := prompt.Confirm(deletePrompt(s.repo, paths))
					if err != nil {
						return err
					}
					if !answer.Confirmed {
						l.Info("delete cancelled")
						return nil
					}
				}
			}

			opts := orchestrator.BatchOptions{Force: force, Strict: strict}
			if cmd.Flags().Changed("delete-branch") {
				opts.DeleteBranch = &deleteBranch
			}

			res := runBatch(ctx, s.orch.BatchDeleter(opts), orchestrator.TargetsFor(s.repo, paths))
			return reportBatch(ctx, res, len(paths))
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove clean worktrees with force too")
	cmd.Flags().BoolVar(&strict, "strict", false, "Keep branches that have unpushed commits")
	cmd.Flags().BoolVarP(&deleteBranch, "delete-branch", "D", false, "Delete the branch too (default: deleteBranchWithWorktree)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// resolveDeletePaths maps queries to worktree paths, dropping duplicates.
// The main worktree and the one containing workDir are refused.
func resolveDeletePaths(s *session, queries []string) ([]string, error) {
	var paths []string
	for _, q := range queries {
		wt, err := findWorktree(s.repo, s.workDir, q)
		if err != nil {
			return nil, err
		}
		if wt.IsMain {
			return nil, fmt.Errorf("%s is the main worktree", wt.Path)
		}
		if inside(s.workDir, wt.Path) {
			return nil, fmt.Errorf("%s contains the working directory: use close instead", wt.Path)
		}
		if !slices.Contains(paths, wt.Path) {
			paths = append(paths, wt.Path)
		}
	}
	return paths, nil
}

func inside(dir, root string) bool {
	return dir == root || strings.HasPrefix(dir, root+string(os.PathSeparator))
}

func deletePrompt(repo *git.RepositoryInfo, paths []string) string {
	dirty := 0
	for _, p := range paths {
		if wt, ok := repo.FindWorktree(p); ok && !wt.IsClean {
			dirty++
		}
	}
	msg := fmt.Sprintf("Delete %d worktree(s)?", len(paths))
	if len(paths) == 1 {
		msg = fmt.Sprintf("Delete %s?", paths[0])
	}
	if dirty > 0 {
		msg += fmt.Sprintf(" %d with uncommitted changes.", dirty)
	}
	return msg
}

// runBatch shows a progress bar on a terminal and plain lines otherwise.
func runBatch(ctx context.Context, d *orchestrator.BatchDeleter, targets []orchestrator.DeleteTarget) orchestrator.BatchResult {
	l := log.FromContext(ctx)

	if len(targets) > 1 && isatty.IsTerminal(os.Stderr.Fd()) && !l.Verbose() {
		bar := progress.NewProgressBar(os.Stderr, len(targets), "deleting worktrees")
		bar.Start()
		defer bar.Stop()
		return d.Delete(ctx, targets, bar)
	}
	return d.Delete(ctx, targets, lineObserver{l: l})
}

type lineObserver struct {
	l *log.Logger
}

func (o lineObserver) DeleteStarted(path string, index, total int) {
	o.l.Debug("deleting worktree", "path", path, "item", fmt.Sprintf("%d/%d", index, total))
}

func (o lineObserver) DeleteFinished(string, error) {}

func reportBatch(ctx context.Context, res orchestrator.BatchResult, total int) error {
	l := log.FromContext(ctx)

	for _, p := range res.Deleted {
		l.Info("deleted worktree", "path", p)
	}
	for _, w := range res.Warnings {
		l.Warn(w)
	}
	for _, f := range res.Failed {
		l.Warn("could not delete worktree", "path", f.Path, "error", f.Message)
	}

	if len(res.Failed) > 0 {
		return fmt.Errorf("%d of %d worktree(s) could not be deleted", len(res.Failed), total)
	}
	return nil
}
