package flows

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/orchestrator"
	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/framework"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/steps"
)

// Step ids of the create wizard.
const (
	StepDirectory = "directory"
	StepSource    = "source"
	StepBranch    = "branch"
)

// ErrCancelled is returned when the user leaves a wizard without confirming.
var ErrCancelled = errors.New("cancelled")

// CreateWizard builds the create wizard on top of flow. Each step submits
// into flow and going back steps flow back, so a confirmed wizard leaves
// flow in confirming. flow must be in collecting-directory-name; values
// entered before are prefilled.
func CreateWizard(flow *orchestrator.CreateFlow) *framework.Wizard {
	repo := flow.Repository()
	params := flow.Params()

	dir := steps.NewTextInput(StepDirectory, "Directory", "Directory name for the new worktree:", "feature-x").
		SetValidate(flow.SubmitDirectoryName)
	dir.SetValue(params.DirectoryName)

	source := steps.NewFilterableList(StepSource, "Source", "Branch to start from",
		SourceOptions(repo, flow.DefaultSourceBranch(), params.SourceBranch)).
		WithRuneFilter(framework.RuneFilterNoSpaces).
		WithValidate(func(o framework.Option) error {
			name, _ := o.Value.(string)
			return flow.SubmitSourceBranch(name)
		})

	branch := steps.NewTextInput(StepBranch, "Branch", "New branch name (empty uses the directory name):", "").
		AllowEmpty().
		SetValidate(flow.SubmitNewBranch).
		SetHint(func(v string) string {
			if v == "" {
				v = flow.Params().DirectoryName
			}
			return "branch: " + flow.BranchName(v)
		})
	branch.SetValue(params.NewBranch)

	back := func(*framework.Wizard) { _ = flow.Back() }

	return framework.NewWizard("Create worktree").
		AddStep(dir).
		AddStep(source).
		AddStep(branch).
		OnBack(StepSource, back).
		OnBack(StepBranch, back).
		OnBack("summary", back).
		WithInfoLine(func(*framework.Wizard) string {
			return "repository: " + filepath.Base(repo.RootPath)
		}).
		WithSummary("Create").
		WithSummaryBody(func(*framework.Wizard) string {
			plan, err := flow.Plan()
			if err != nil {
				return styles.ErrorStyle.Render(err.Error()) + "\n"
			}
			return RenderPlan(plan)
		})
}

// SourceOptions lists local branches with the default source first and
// preferred, if set, selected by position.
func SourceOptions(repo *git.RepositoryInfo, defaultSource, preferred string) []framework.Option {
	first := defaultSource
	if preferred != "" {
		first = preferred
	}

	var opts []framework.Option
	add := func(b git.Branch) {
		var notes []string
		if b.Name == defaultSource {
			notes = append(notes, "default")
		}
		if b.IsCurrent {
			notes = append(notes, "current")
		}
		opts = append(opts, framework.Option{
			Label:       b.Name,
			Value:       b.Name,
			Description: strings.Join(notes, ", "),
		})
	}

	for _, b := range repo.Branches {
		if b.Name == first {
			add(b)
		}
	}
	for _, b := range repo.Branches {
		if b.Name != first {
			add(b)
		}
	}
	return opts
}

// RenderPlan renders a create plan for review.
func RenderPlan(plan *orchestrator.Plan) string {
	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(styles.Wizard.Label.Render(label+": ") +
			styles.Wizard.Value.Render(value) + "\n")
	}

	line("Directory", plan.DirectoryName)
	line("Path", plan.Path)
	if plan.CreatesBranch {
		line("Branch", fmt.Sprintf("%s (new, from %s)", plan.Branch, plan.SourceBranch))
	} else {
		line("Branch", plan.Branch+" (existing)")
	}
	if len(plan.CopyPatterns) > 0 {
		line("Copy", strings.Join(plan.CopyPatterns, " "))
	}
	for i, c := range plan.Commands {
		line(fmt.Sprintf("Run %d", i+1), c)
	}
	if plan.TerminalCommand != "" {
		line("Open", plan.TerminalCommand)
	}
	return b.String()
}

// RewindCreate returns flow to collecting-directory-name so CreateWizard
// can run again, keeping the entered values.
func RewindCreate(flow *orchestrator.CreateFlow) error {
	if flow.State() == orchestrator.StateFailed {
		return flow.Retry()
	}
	for flow.State() != orchestrator.StateCollectingDirectoryName {
		if !flow.State().IsInput() {
			return fmt.Errorf("%w: cannot rewind from %s", orchestrator.ErrInvalidTransition, flow.State())
		}
		if err := flow.Back(); err != nil {
			return err
		}
	}
	return nil
}

// RunCreate runs CreateWizard and reports ErrCancelled when the user quits.
func RunCreate(flow *orchestrator.CreateFlow) error {
	w, err := CreateWizard(flow).Run()
	if err != nil {
		return err
	}
	if w.IsCancelled() {
		return ErrCancelled
	}
	return nil
}
