package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/orchestrator"
	"github.com/Tsdevendra1/branchlet/internal/output"
	"github.com/Tsdevendra1/branchlet/internal/ui/prompt"
)

func newCloseCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "close",
		Short:   "Leave the current worktree and delete it",
		GroupID: GroupCore,
		Args:    cobra.NoArgs,
		Long: `Close the linked worktree you are standing in.

The worktree must be clean. The shell wrapper changes into the main
repository (keeping your relative directory when it exists there) and then
deletes the worktree, so close only works through the wrapper.`,
		Example: `  branchlet close       # Ask, then return to the main repository
  branchlet close -y    # Skip the confirmation`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			workDir, err := workingDir()
			if err != nil {
				return err
			}

			flow := orchestrator.NewCloseFlow(git.NewService(workDir), workDir)
			if err := flow.Check(ctx); err != nil {
				return err
			}
			wt := flow.Worktree()
			l.Debug("closing worktree", "path", wt.WorktreePath, "main", wt.MainRepoPath)

			// Without the wrapper there is nothing to confirm.
			if wrapperMode() && !yes {
				if !isInteractive() {
					return fmt.Errorf("cannot confirm without a terminal: pass --yes")
				}
				answer, err := prompt.Confirm(fmt.Sprintf("Close %s (%s) and return to %s?",
					filepath.Base(wt.WorktreePath), wt.Branch, filepath.Base(wt.MainRepoPath)))
				if err != nil {
					return err
				}
				if !answer.Confirmed {
					l.Info("close cancelled")
					return nil
				}
			}

			plan, err := flow.Confirm(wrapperMode())
			if err != nil {
				return err
			}
			return output.FromContext(ctx).NavigateClose(output.ClosePayload{
				NavigateTo:     plan.NavigateTo,
				DeleteWorktree: plan.DeleteWorktree,
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
