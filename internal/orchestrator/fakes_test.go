package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/filesync"
	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/hooks"
	"github.com/Tsdevendra1/branchlet/internal/template"
)

type fakeGit struct {
	repo    *git.RepositoryInfo
	current *git.CurrentWorktree
	clean   map[string]bool

	createErr error
	deleteErr map[string]error
	warnings  map[string][]string

	created []git.CreateOptions
	deleted []git.DeleteOptions
	calls   []string
}

func (f *fakeGit) RepositoryInfo(context.Context) (*git.RepositoryInfo, error) {
	f.calls = append(f.calls, "info")
	if f.repo == nil {
		return nil, &git.QueryError{Op: "resolve repository", Err: git.ErrNotRepository}
	}
	return f.repo, nil
}

func (f *fakeGit) CurrentWorktreeInfo(context.Context) (*git.CurrentWorktree, error) {
	f.calls = append(f.calls, "current")
	if f.current == nil {
		return nil, &git.QueryError{Op: "resolve repository", Err: git.ErrNotRepository}
	}
	return f.current, nil
}

func (f *fakeGit) IsWorktreeClean(_ context.Context, path string) (bool, error) {
	f.calls = append(f.calls, "clean "+path)
	clean, ok := f.clean[path]
	if !ok {
		return true, nil
	}
	return clean, nil
}

func (f *fakeGit) CreateWorktree(_ context.Context, opts git.CreateOptions) error {
	f.calls = append(f.calls, "create "+opts.Path)
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, opts)
	return nil
}

func (f *fakeGit) DeleteWorktree(_ context.Context, opts git.DeleteOptions) (*git.DeleteResult, error) {
	f.calls = append(f.calls, "delete "+opts.Path)
	if err := f.deleteErr[opts.Path]; err != nil {
		return nil, err
	}
	f.deleted = append(f.deleted, opts)
	return &git.DeleteResult{Path: opts.Path, Warnings: f.warnings[opts.Path]}, nil
}

type fakeRunner struct {
	ran       []string
	failAt    int // 1-based; 0 never fails
	termErr   error
	terminals []string
	dirs      []string
	vars      template.Variables
}

func (r *fakeRunner) RunPostCreate(_ context.Context, commands []string, vars template.Variables, dir string, obs hooks.ProgressObserver) error {
	r.vars = vars
	for i, c := range commands {
		rendered := template.Render(c, vars)
		if obs != nil {
			obs.CommandStarted(rendered, i+1, len(commands))
		}
		r.ran = append(r.ran, rendered)
		r.dirs = append(r.dirs, dir)
		if r.failAt == i+1 {
			return &hooks.CommandError{Command: rendered, Output: "boom", ExitCode: 1}
		}
	}
	return nil
}

func (r *fakeRunner) OpenTerminal(_ context.Context, command string, vars template.Variables, _ string) error {
	if r.termErr != nil {
		return r.termErr
	}
	r.terminals = append(r.terminals, template.Render(command, vars))
	return nil
}

type fakeCopier struct {
	calls [][2]string
	err   error
}

func (c *fakeCopier) copy(_ context.Context, src, dst string, _, _ []string) (*filesync.Result, error) {
	c.calls = append(c.calls, [2]string{src, dst})
	if c.err != nil {
		return nil, c.err
	}
	return &filesync.Result{Copied: []string{".env"}}, nil
}

var errBoom = errors.New("boom")

// testRepo returns a repository rooted in a fresh temp dir with main and
// a develop branch.
func testRepo(t *testing.T) *git.RepositoryInfo {
	t.Helper()
	root := filepath.Join(t.TempDir(), "repo")
	return &git.RepositoryInfo{
		RootPath:      root,
		CurrentBranch: "main",
		DefaultBranch: "main",
		Branches: []git.Branch{
			{Name: "main", IsCurrent: true, IsDefault: true},
			{Name: "develop"},
		},
		Worktrees: []git.Worktree{{Path: root, Branch: "main", IsMain: true, IsClean: true}},
	}
}

type harness struct {
	git    *fakeGit
	runner *fakeRunner
	copier *fakeCopier
	deps   Deps
}

func newHarness(repo *git.RepositoryInfo) *harness {
	h := &harness{
		git:    &fakeGit{repo: repo, clean: map[string]bool{}, deleteErr: map[string]error{}, warnings: map[string][]string{}},
		runner: &fakeRunner{},
		copier: &fakeCopier{},
	}
	h.deps = Deps{Git: h.git, Commands: h.runner, Copy: h.copier.copy}
	return h
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.WorktreeCopyPatterns = nil
	return cfg
}
