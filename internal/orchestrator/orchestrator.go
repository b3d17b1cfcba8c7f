package orchestrator

import (
	"context"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/hooks"
)

// Orchestrator starts flows with one set of collaborators and one config value.
type Orchestrator struct {
	deps Deps
	cfg  config.Config
}

// New returns an Orchestrator. cfg is copied; later changes need a new Orchestrator.
func New(deps Deps, cfg config.Config) *Orchestrator {
	return &Orchestrator{deps: deps, cfg: cfg}
}

// Config returns the configuration the flows run with.
func (o *Orchestrator) Config() config.Config {
	return o.cfg
}

// StartCreate loads the repository and returns an interactive create flow.
func (o *Orchestrator) StartCreate(ctx context.Context) (*CreateFlow, error) {
	repo, err := o.deps.Git.RepositoryInfo(ctx)
	if err != nil {
		return nil, err
	}
	return NewCreateFlow(o.deps, o.cfg, repo), nil
}

// PlanCreate resolves params without side effects.
func (o *Orchestrator) PlanCreate(ctx context.Context, params CreateParams) (*Plan, error) {
	repo, err := o.deps.Git.RepositoryInfo(ctx)
	if err != nil {
		return nil, err
	}
	return buildPlan(params, o.cfg, repo)
}

// QuickCreate runs a create flow with every input supplied up front,
// going straight from input to creating.
func (o *Orchestrator) QuickCreate(ctx context.Context, params CreateParams, obs hooks.ProgressObserver) (*CreateResult, error) {
	flow, err := o.StartCreate(ctx)
	if err != nil {
		return nil, err
	}
	flow.params = CreateParams{
		DirectoryName: trim(params.DirectoryName),
		SourceBranch:  trim(params.SourceBranch),
		NewBranch:     trim(params.NewBranch),
	}
	return flow.run(ctx, obs)
}

// StartClose returns a close flow for the worktree containing cwd.
func (o *Orchestrator) StartClose(cwd string) *CloseFlow {
	return NewCloseFlow(o.deps.Git, cwd)
}

// BatchDeleter returns a deleter using the configured branch policy.
func (o *Orchestrator) BatchDeleter(opts BatchOptions) *BatchDeleter {
	if opts.DeleteBranch == nil {
		del := o.cfg.DeleteBranchWithWorktree
		opts.DeleteBranch = &del
	}
	return NewBatchDeleter(o.deps.Git, opts)
}
