package orchestrator

import (
	"context"

	"github.com/Tsdevendra1/branchlet/internal/filesync"
	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/hooks"
	"github.com/Tsdevendra1/branchlet/internal/template"
)

// GitService is the subset of *git.Service the flows use.
type GitService interface {
	RepositoryInfo(ctx context.Context) (*git.RepositoryInfo, error)
	CurrentWorktreeInfo(ctx context.Context) (*git.CurrentWorktree, error)
	IsWorktreeClean(ctx context.Context, path string) (bool, error)
	CreateWorktree(ctx context.Context, opts git.CreateOptions) error
	DeleteWorktree(ctx context.Context, opts git.DeleteOptions) (*git.DeleteResult, error)
}

// CommandRunner is the subset of *hooks.Runner the create flow uses.
type CommandRunner interface {
	RunPostCreate(ctx context.Context, commands []string, vars template.Variables, dir string, obs hooks.ProgressObserver) error
	OpenTerminal(ctx context.Context, command string, vars template.Variables, dir string) error
}

// CopyFunc copies matched files between two roots. filesync.CopyFiles satisfies it.
type CopyFunc func(ctx context.Context, sourceRoot, destRoot string, include, exclude []string) (*filesync.Result, error)

// Deps bundles the collaborators of the flows.
type Deps struct {
	Git      GitService
	Commands CommandRunner
	Copy     CopyFunc
}

// DefaultDeps returns the real implementations with git running in dir.
func DefaultDeps(dir string) Deps {
	return Deps{
		Git:      git.NewService(dir),
		Commands: hooks.NewRunner(),
		Copy:     filesync.CopyFiles,
	}
}
