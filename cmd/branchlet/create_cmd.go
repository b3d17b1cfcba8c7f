package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tsdevendra1/branchlet/internal/hooks"
	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/orchestrator"
	"github.com/Tsdevendra1/branchlet/internal/output"
	"github.com/Tsdevendra1/branchlet/internal/ui/prompt"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/flows"
	"github.com/Tsdevendra1/branchlet/internal/worktree"
)

func newCreateCmd() *cobra.Command {
	var (
		source string
		branch string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:     "create [directory]",
		Short:   "Create a worktree",
		Aliases: []string{"new"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `Create a worktree next to the repository.

Without arguments an interactive wizard asks for the directory, the source
branch and the new branch. With a directory argument the worktree is created
right away; --source and --branch fill in the rest.

The new branch gets the configured branchPrefix. A branch equal to the
source branch is checked out as is instead of being created.`,
		Example: `  branchlet create                       # Interactive
  branchlet create login                 # Branch "login" from the default source
  branchlet create login -s develop      # Start from develop
  branchlet create login -b feat/login   # Custom branch name
  branchlet create login --dry-run       # Show what would happen`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s, err := openSession(ctx)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if dryRun || source != "" || branch != "" {
					return fmt.Errorf("--source, --branch and --dry-run need a directory argument")
				}
				if !isInteractive() {
					return fmt.Errorf("interactive create needs a terminal: pass a directory name")
				}
				return runInteractiveCreate(ctx, s)
			}

			params := orchestrator.CreateParams{
				DirectoryName: args[0],
				SourceBranch:  source,
				NewBranch:     branch,
			}
			if dryRun {
				plan, err := s.orch.PlanCreate(ctx, params)
				if err != nil {
					return err
				}
				fmt.Fprint(displayWriter(ctx), flows.RenderPlan(plan))
				return nil
			}

			res, err := s.orch.QuickCreate(ctx, params, progressLines(ctx))
			if err != nil {
				return err
			}
			return reportCreated(ctx, s, res)
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "Branch to start from (default: defaultSourceBranch or the current branch)")
	cmd.Flags().StringVarP(&branch, "branch", "b", "", "Branch name before the prefix (default: the directory name)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Validate and print the plan without creating anything")

	return cmd
}

// runInteractiveCreate loops wizard and confirmation until the worktree is
// created or the user gives up. Rejected names send the user back into the
// wizard with everything entered so far.
func runInteractiveCreate(ctx context.Context, s *session) error {
	l := log.FromContext(ctx)

	flow, err := s.orch.StartCreate(ctx)
	if err != nil {
		return err
	}

	for {
		if err := flows.RunCreate(flow); err != nil {
			if errors.Is(err, flows.ErrCancelled) {
				l.Info("create cancelled")
				return nil
			}
			return err
		}

		res, err := flow.Confirm(ctx, progressLines(ctx))
		if err == nil {
			return reportCreated(ctx, s, res)
		}

		if flow.State().IsInput() {
			l.Warn(err.Error())
		} else {
			var fe *orchestrator.FlowError
			if errors.As(err, &fe) && fe.Path != "" {
				// Nothing is rolled back; a retry would only collide with it.
				return err
			}
			l.Warn(err.Error())
			answer, perr := prompt.ConfirmDefaultYes("Edit the values and try again?")
			if perr != nil {
				return perr
			}
			if !answer.Confirmed {
				return err
			}
		}

		if err := flows.RewindCreate(flow); err != nil {
			return err
		}
	}
}

// progressLines prints one "[i/n] command" line per post-create command.
// Command output streams to stderr right below it.
func progressLines(ctx context.Context) hooks.ProgressObserver {
	l := log.FromContext(ctx)
	return hooks.ProgressFunc(func(command string, index, total int) {
		l.Printf("[%d/%d] %s\n", index, total, command)
	})
}

func reportCreated(ctx context.Context, s *session, res *orchestrator.CreateResult) error {
	l := log.FromContext(ctx)

	l.Info("created worktree", "path", res.Path, "branch", res.Branch, "from", res.SourceBranch)
	if res.Files != nil && len(res.Files.Copied) > 0 {
		l.Info("copied files", "count", len(res.Files.Copied))
	}
	if res.Files != nil && len(res.Files.Skipped) > 0 {
		l.Debug("skipped existing files", "count", len(res.Files.Skipped))
	}
	if res.TerminalErr != nil {
		l.Warn("could not open terminal", "error", res.TerminalErr)
	}

	from := currentRoot(s.repo, s.workDir)
	target := worktree.TargetPath(from, res.Path, s.workDir)
	if wrapperMode() {
		output.FromContext(ctx).NavigatePath(target)
		recordLeave(ctx, s, from, target)
	} else {
		l.Printf("cd %s\n", target)
	}
	return nil
}
