package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/filesync"
	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/hooks"
	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/template"
	"github.com/Tsdevendra1/branchlet/internal/worktree"
)

// CreateParams are the inputs of a create flow.
type CreateParams struct {
	DirectoryName string
	// SourceBranch overrides the configured default and the current branch.
	SourceBranch string
	// NewBranch is the branch as entered; the configured prefix is applied.
	// Empty means the directory name.
	NewBranch string
}

// Plan is a fully resolved create request.
type Plan struct {
	DirectoryName string
	Path          string
	Branch        string
	SourceBranch  string
	// CreatesBranch is false when Branch is checked out as is.
	CreatesBranch   bool
	CopyPatterns    []string
	CopyIgnores     []string
	Commands        []string // rendered
	TerminalCommand string   // rendered
}

// CreateResult describes a created worktree.
type CreateResult struct {
	Path         string
	Branch       string
	SourceBranch string
	Files        *filesync.Result
	// TerminalErr is set when the terminal command could not be started.
	TerminalErr error
}

// CreateFlow is the create state machine. It is not safe for concurrent use.
type CreateFlow struct {
	deps Deps
	cfg  config.Config
	repo *git.RepositoryInfo

	state  CreateState
	params CreateParams
	err    error
	result *CreateResult
}

// NewCreateFlow starts an interactive create flow in collecting-directory-name.
// cfg is used as given for the whole flow.
func NewCreateFlow(deps Deps, cfg config.Config, repo *git.RepositoryInfo) *CreateFlow {
	return &CreateFlow{
		deps:  deps,
		cfg:   cfg,
		repo:  repo,
		state: StateCollectingDirectoryName,
	}
}

// State returns the current state.
func (f *CreateFlow) State() CreateState { return f.state }

// Err returns the error that caused the last rejection or failure.
func (f *CreateFlow) Err() error { return f.err }

// Result returns the outcome once the flow succeeded.
func (f *CreateFlow) Result() *CreateResult { return f.result }

// Params returns the values entered so far.
func (f *CreateFlow) Params() CreateParams { return f.params }

// Repository returns the repository the flow creates worktrees in.
func (f *CreateFlow) Repository() *git.RepositoryInfo { return f.repo }

// Allowed reports whether the flow may move to next from its current state.
func (f *CreateFlow) Allowed(next CreateState) bool {
	return CanTransition(f.state, next)
}

func (f *CreateFlow) transition(next CreateState) error {
	if !CanTransition(f.state, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, f.state, next)
	}
	f.state = next
	return nil
}

// SubmitDirectoryName validates and stores the directory name.
// On a validation error the flow stays where it is.
func (f *CreateFlow) SubmitDirectoryName(name string) error {
	if f.state != StateCollectingDirectoryName {
		return fmt.Errorf("%w: directory name in %s", ErrInvalidTransition, f.state)
	}
	name = strings.TrimSpace(name)
	if err := ValidateDirectoryName(name); err != nil {
		f.err = err
		return err
	}
	f.params.DirectoryName = name
	f.err = nil
	return f.transition(StateCollectingSourceBranch)
}

// DefaultSourceBranch returns the branch used when no source is entered.
func (f *CreateFlow) DefaultSourceBranch() string {
	src, _ := resolveSourceBranch("", f.cfg, f.repo)
	return src
}

// SubmitSourceBranch stores the source branch. Empty selects the default.
func (f *CreateFlow) SubmitSourceBranch(name string) error {
	if f.state != StateCollectingSourceBranch {
		return fmt.Errorf("%w: source branch in %s", ErrInvalidTransition, f.state)
	}
	name = strings.TrimSpace(name)
	if name != "" {
		if err := ValidateBranchName(name); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = "source branch"
			}
			f.err = err
			return err
		}
	}
	f.params.SourceBranch = name
	f.err = nil
	return f.transition(StateCollectingNewBranch)
}

// BranchName returns the branch name entry would produce after the prefix rule.
func (f *CreateFlow) BranchName(entry string) string {
	return ApplyBranchPrefix(strings.TrimSpace(entry), f.cfg.BranchPrefix)
}

// SubmitNewBranch applies the branch prefix, validates the result and checks
// that it does not collide with an existing branch.
func (f *CreateFlow) SubmitNewBranch(name string) error {
	if f.state != StateCollectingNewBranch {
		return fmt.Errorf("%w: new branch in %s", ErrInvalidTransition, f.state)
	}
	params := f.params
	params.NewBranch = strings.TrimSpace(name)
	if _, err := validateParams(params, f.cfg, f.repo); err != nil {
		f.err = err
		return err
	}
	f.params = params
	f.err = nil
	return f.transition(StateConfirming)
}

// Back returns to the previous input state.
func (f *CreateFlow) Back() error {
	var prev CreateState
	switch f.state {
	case StateCollectingSourceBranch:
		prev = StateCollectingDirectoryName
	case StateCollectingNewBranch:
		prev = StateCollectingSourceBranch
	case StateConfirming:
		prev = StateCollectingNewBranch
	default:
		return fmt.Errorf("%w: back from %s", ErrInvalidTransition, f.state)
	}
	f.err = nil
	return f.transition(prev)
}

// Retry returns a failed flow to collecting-directory-name. The values
// entered before are kept so they can be resubmitted or edited.
func (f *CreateFlow) Retry() error {
	if err := f.transition(StateCollectingDirectoryName); err != nil {
		return err
	}
	f.err = nil
	f.result = nil
	return nil
}

// Plan resolves the entered values without side effects.
func (f *CreateFlow) Plan() (*Plan, error) {
	return buildPlan(f.params, f.cfg, f.repo)
}

// Confirm runs the creation. obs receives post-create progress and may be nil.
//
// A name rejected at this point returns the flow to the matching input
// state. Any later failure moves it to failed with a *FlowError.
func (f *CreateFlow) Confirm(ctx context.Context, obs hooks.ProgressObserver) (*CreateResult, error) {
	if f.state != StateConfirming {
		return nil, fmt.Errorf("%w: confirm in %s", ErrInvalidTransition, f.state)
	}
	return f.run(ctx, obs)
}

func (f *CreateFlow) run(ctx context.Context, obs hooks.ProgressObserver) (*CreateResult, error) {
	if err := f.transition(StateCreating); err != nil {
		return nil, err
	}

	plan, err := buildPlan(f.params, f.cfg, f.repo)
	if err != nil {
		return nil, f.reject(err)
	}

	res, err := f.execute(ctx, plan, obs)
	if err != nil {
		f.err = err
		f.state = StateFailed
		return nil, err
	}
	f.result = res
	f.err = nil
	if err := f.transition(StateSucceeded); err != nil {
		return nil, err
	}
	return res, nil
}

// reject handles a failure before any side effect.
func (f *CreateFlow) reject(err error) error {
	f.err = err
	var ve *ValidationError
	if errors.As(err, &ve) {
		switch ve.Field {
		case "branch":
			f.state = StateCollectingNewBranch
		default:
			f.state = StateCollectingDirectoryName
		}
		return err
	}

	step := StepResolveSource
	if errors.Is(err, ErrTargetExists) {
		step = StepResolvePath
	}
	f.state = StateFailed
	f.err = &FlowError{Step: step, LastCompleted: StepValidate, Err: err}
	return f.err
}

func (f *CreateFlow) execute(ctx context.Context, plan *Plan, obs hooks.ProgressObserver) (*CreateResult, error) {
	l := log.FromContext(ctx)
	last := StepResolvePath
	fail := func(step Step, err error) error {
		fe := &FlowError{Step: step, LastCompleted: last, Err: err}
		if last >= StepCreateWorktree {
			fe.Path = plan.Path
		}
		return fe
	}

	// a cancel stops the flow before the next step, never during one
	if err := ctx.Err(); err != nil {
		return nil, fail(StepCreateWorktree, err)
	}
	if err := os.MkdirAll(filepath.Dir(plan.Path), 0755); err != nil {
		return nil, fail(StepCreateWorktree, err)
	}
	err := f.deps.Git.CreateWorktree(ctx, git.CreateOptions{
		Path:         plan.Path,
		SourceBranch: plan.SourceBranch,
		NewBranch:    plan.Branch,
	})
	if err != nil {
		return nil, fail(StepCreateWorktree, err)
	}
	last = StepCreateWorktree
	l.Info("created worktree", "path", plan.Path, "branch", plan.Branch)

	res := &CreateResult{Path: plan.Path, Branch: plan.Branch, SourceBranch: plan.SourceBranch}

	if len(plan.CopyPatterns) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fail(StepCopyFiles, err)
		}
		files, err := f.deps.Copy(ctx, f.repo.RootPath, plan.Path, plan.CopyPatterns, plan.CopyIgnores)
		if err != nil {
			return nil, fail(StepCopyFiles, err)
		}
		res.Files = files
		if files != nil && len(files.Copied) > 0 {
			l.Info("copied files", "count", len(files.Copied))
		}
	}
	last = StepCopyFiles

	vars := f.variables(plan)
	if len(plan.Commands) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fail(StepPostCreate, err)
		}
		if err := f.transition(StateRunningPostCreate); err != nil {
			return nil, err
		}
		if err := f.deps.Commands.RunPostCreate(ctx, f.cfg.PostCreateCmd, vars, plan.Path, obs); err != nil {
			return nil, fail(StepPostCreate, err)
		}
	}
	last = StepPostCreate

	if f.cfg.TerminalCommand != "" {
		if err := ctx.Err(); err != nil {
			return nil, fail(StepOpenTerminal, err)
		}
		// The worktree is complete at this point; a terminal that would not
		// start does not fail the flow.
		if err := f.deps.Commands.OpenTerminal(ctx, f.cfg.TerminalCommand, vars, plan.Path); err != nil {
			l.Warn("could not open terminal", "command", f.cfg.TerminalCommand, "error", err)
			res.TerminalErr = err
		}
	}

	return res, nil
}

func (f *CreateFlow) variables(plan *Plan) template.Variables {
	return template.Variables{
		BasePath:     filepath.Base(f.repo.RootPath),
		WorktreePath: plan.Path,
		BranchName:   plan.Branch,
		SourceBranch: plan.SourceBranch,
	}
}

// validateParams applies the prefix rule and checks both names.
// It returns the final branch name.
func validateParams(p CreateParams, cfg config.Config, repo *git.RepositoryInfo) (string, error) {
	if err := ValidateDirectoryName(p.DirectoryName); err != nil {
		return "", err
	}

	entry := p.NewBranch
	if entry == "" {
		entry = p.DirectoryName
	}
	branch := ApplyBranchPrefix(entry, cfg.BranchPrefix)
	if err := ValidateBranchName(branch); err != nil {
		return "", err
	}

	if repo.BranchExists(branch) && branch != sourceOf(p, cfg, repo) {
		return "", &ValidationError{Field: "branch", Value: branch, Reason: "already exists", Err: ErrBranchExists}
	}
	return branch, nil
}

func sourceOf(p CreateParams, cfg config.Config, repo *git.RepositoryInfo) string {
	src, _ := resolveSourceBranch(p.SourceBranch, cfg, repo)
	return src
}

// resolveSourceBranch applies explicit > configured default > current branch.
func resolveSourceBranch(override string, cfg config.Config, repo *git.RepositoryInfo) (string, error) {
	for _, candidate := range []string{override, cfg.DefaultSourceBranch, repo.CurrentBranch} {
		candidate = strings.TrimSpace(candidate)
		if candidate != "" && candidate != git.DetachedBranch {
			return candidate, nil
		}
	}
	return "", ErrNoSourceBranch
}

func buildPlan(p CreateParams, cfg config.Config, repo *git.RepositoryInfo) (*Plan, error) {
	branch, err := validateParams(p, cfg, repo)
	if err != nil {
		return nil, err
	}

	source, err := resolveSourceBranch(p.SourceBranch, cfg, repo)
	if err != nil {
		return nil, err
	}

	vars := template.Variables{
		BasePath:     filepath.Base(repo.RootPath),
		BranchName:   branch,
		SourceBranch: source,
	}
	path := worktree.ResolvePath(repo.RootPath, p.DirectoryName, cfg.WorktreePathTemplate, vars)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrTargetExists, path)
	}
	vars.WorktreePath = path

	return &Plan{
		DirectoryName:   p.DirectoryName,
		Path:            path,
		Branch:          branch,
		SourceBranch:    source,
		CreatesBranch:   branch != source,
		CopyPatterns:    cfg.WorktreeCopyPatterns,
		CopyIgnores:     cfg.WorktreeCopyIgnores,
		Commands:        renderNonEmpty(cfg.PostCreateCmd, vars),
		TerminalCommand: template.Render(cfg.TerminalCommand, vars),
	}, nil
}

func renderNonEmpty(cmds []string, vars template.Variables) []string {
	var out []string
	for _, c := range cmds {
		if strings.TrimSpace(c) != "" {
			out = append(out, template.Render(c, vars))
		}
	}
	return out
}
