package flows

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/framework"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/steps"
)

// StepWorktrees is the step id of the delete wizard.
const StepWorktrees = "worktrees"

// DeleteWizard builds a multi-select of the linked worktrees of repo.
// The main worktree is listed but cannot be picked. Paths in preselect
// start selected.
func DeleteWizard(repo *git.RepositoryInfo, preselect []string) *framework.Wizard {
	var opts []framework.Option
	var selected []int

	for _, wt := range repo.Worktrees {
		opt := framework.Option{
			Label:       filepath.Base(wt.Path),
			Value:       wt.Path,
			Description: describe(wt),
		}
		if wt.IsMain {
			opt.Disabled = true
			opt.Description = "main worktree"
		}
		if !opt.Disabled && slices.Contains(preselect, wt.Path) {
			selected = append(selected, len(opts))
		}
		opts = append(opts, opt)
	}

	list := steps.NewFilterableList(StepWorktrees, "Worktrees", "Worktrees to delete", opts).
		WithMultiSelect(1).
		SetSelected(selected)

	return framework.NewWizard("Delete worktrees").
		AddStep(list).
		WithSummary("Delete").
		WithSummaryBody(func(w *framework.Wizard) string {
			var b strings.Builder
			for _, p := range w.GetStrings(StepWorktrees) {
				line := "  " + p
				if wt, ok := repo.FindWorktree(p); ok && !wt.IsClean {
					line += "  " + styles.WarningStyle.Render("uncommitted changes will be discarded")
				}
				b.WriteString(line + "\n")
			}
			return b.String()
		})
}

func describe(wt git.Worktree) string {
	branch := wt.Branch
	if wt.IsDetached() {
		branch = "detached at " + shortHead(wt.Head)
	}
	return branch + "  " + styles.WorktreeStatus(wt)
}

func shortHead(head string) string {
	if len(head) > 7 {
		return head[:7]
	}
	return head
}

// RunDelete runs DeleteWizard and returns the chosen paths.
func RunDelete(repo *git.RepositoryInfo, preselect []string) ([]string, error) {
	w, err := DeleteWizard(repo, preselect).Run()
	if err != nil {
		return nil, err
	}
	if w.IsCancelled() {
		return nil, ErrCancelled
	}
	return w.GetStrings(StepWorktrees), nil
}
