package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/history"
	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/output"
	"github.com/Tsdevendra1/branchlet/internal/ui/prompt"
	"github.com/Tsdevendra1/branchlet/internal/ui/static"
	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
	"github.com/Tsdevendra1/branchlet/internal/worktree"
)

var errNoSelection = errors.New("no worktree selected")

func newListCmd() *cobra.Command {
	var (
		jsonOutput bool
		interact   bool
		copyPath   bool
	)

	cmd := &cobra.Command{
		Use:     "list [query]",
		Short:   "List worktrees or switch to one",
		Aliases: []string{"ls"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `List the worktrees of the current repository.

With a query (or -i) one worktree is picked and its path printed. Through
the shell wrapper this changes into it, keeping your relative directory when
it exists there. The query "-" picks the worktree you last switched away
from.`,
		Example: `  branchlet list            # Table of worktrees
  branchlet list --json     # Machine-readable
  branchlet list login      # Switch to the worktree matching "login"
  branchlet list -          # Switch back to the previous worktree
  branchlet list -i         # Pick from a list
  branchlet list login -c   # Copy its path to the clipboard`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}

			if len(args) == 0 && !interact {
				w := displayWriter(ctx)
				if jsonOutput {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(s.repo.Worktrees)
				}
				fmt.Fprint(w, static.RenderWorktrees(s.repo.Worktrees))
				return nil
			}

			var wt git.Worktree
			switch {
			case len(args) == 1 && args[0] == "-":
				wt, err = previousWorktree(ctx, s)
			case len(args) == 1:
				wt, err = findWorktree(s.repo, s.workDir, args[0])
			default:
				wt, err = selectWorktree(s.repo)
			}
			if errors.Is(err, errNoSelection) {
				return nil
			}
			if err != nil {
				return err
			}

			from := currentRoot(s.repo, s.workDir)
			target := worktree.TargetPath(from, wt.Path, s.workDir)
			if err := emitTarget(ctx, target, copyPath); err != nil {
				return err
			}
			recordLeave(ctx, s, from, wt.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&interact, "interactive", "i", false, "Pick a worktree from a list")
	cmd.Flags().BoolVarP(&copyPath, "copy", "c", false, "Copy the target path to the clipboard")
	cmd.MarkFlagsMutuallyExclusive("json", "interactive")

	return cmd
}

func previousWorktree(ctx context.Context, s *session) (git.Worktree, error) {
	prev, err := history.Previous(historyPath(ctx), s.repo.RootPath)
	if err != nil {
		return git.Worktree{}, err
	}
	if prev == "" {
		return git.Worktree{}, fmt.Errorf("no previous worktree recorded for %s", s.repo.RootPath)
	}
	wt, ok := s.repo.FindWorktree(prev)
	if !ok {
		return git.Worktree{}, fmt.Errorf("previous worktree %s no longer exists", prev)
	}
	return wt, nil
}

func selectWorktree(repo *git.RepositoryInfo) (git.Worktree, error) {
	if !isInteractive() {
		return git.Worktree{}, fmt.Errorf("picking a worktree needs a terminal: pass a query")
	}

	opts := make([]prompt.Option, len(repo.Worktrees))
	for i, wt := range repo.Worktrees {
		opts[i] = prompt.Option{
			Label:       filepath.Base(wt.Path),
			Description: wt.Branch + "  " + styles.WorktreeStatus(wt),
		}
	}
	res, err := prompt.Select("Switch to worktree", opts)
	if err != nil {
		return git.Worktree{}, err
	}
	if res.Cancelled {
		return git.Worktree{}, errNoSelection
	}
	return repo.Worktrees[res.Index], nil
}

// currentRoot returns the worktree containing dir. The deepest match wins
// because worktrees may be nested inside the main one.
func currentRoot(repo *git.RepositoryInfo, dir string) string {
	best := repo.RootPath
	found := false
	for _, wt := range repo.Worktrees {
		if inside(dir, wt.Path) && (!found || len(wt.Path) > len(best)) {
			best = wt.Path
			found = true
		}
	}
	return best
}

func emitTarget(ctx context.Context, target string, copyPath bool) error {
	l := log.FromContext(ctx)
	out := output.FromContext(ctx)

	if copyPath {
		if err := clipboard.WriteAll(target); err != nil {
			l.Warn("could not copy to clipboard", "error", err)
		} else {
			l.Info("copied path to clipboard", "path", target)
		}
	}

	if wrapperMode() {
		out.NavigatePath(target)
		return nil
	}
	out.Println(target)
	return nil
}
