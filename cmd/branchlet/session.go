package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/sahilm/fuzzy"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/history"
	"github.com/Tsdevendra1/branchlet/internal/log"
	"github.com/Tsdevendra1/branchlet/internal/orchestrator"
	"github.com/Tsdevendra1/branchlet/internal/output"
)

// session is what every worktree command starts from: the repository the
// working directory belongs to and the config resolved for it.
type session struct {
	workDir string
	repo    *git.RepositoryInfo
	cfg     config.Config
	orch    *orchestrator.Orchestrator
}

func openSession(ctx context.Context) (*session, error) {
	l := log.FromContext(ctx)

	workDir, err := workingDir()
	if err != nil {
		return nil, err
	}

	deps := orchestrator.DefaultDeps(workDir)
	repo, err := deps.Git.RepositoryInfo(ctx)
	if err != nil {
		return nil, err
	}

	resolver := config.ResolverFromContext(ctx)
	if resolver == nil {
		path, err := config.GlobalPath()
		if err != nil {
			return nil, err
		}
		resolver = config.NewResolver(path)
	}
	cfg, err := resolver.Resolve(repo.RootPath)
	if err != nil {
		return nil, err
	}
	for _, w := range resolver.Warnings() {
		l.Warn(w)
	}
	l.Debug("resolved config", "repo", repo.RootPath, "template", cfg.WorktreePathTemplate)

	return &session{
		workDir: workDir,
		repo:    repo,
		cfg:     cfg,
		orch:    orchestrator.New(deps, cfg),
	}, nil
}

// workingDir returns the working directory with symlinks resolved, matching
// the paths git reports for worktrees.
func workingDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(wd); err == nil {
		return resolved, nil
	}
	return wd, nil
}

// displayWriter is where human-readable output goes. Through the wrapper
// stdout is reserved for the navigation line.
func displayWriter(ctx context.Context) io.Writer {
	if wrapperMode() {
		return os.Stderr
	}
	return output.FromContext(ctx).Writer()
}

// isInteractive reports whether prompts can be shown.
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}

// findWorktree resolves query to one worktree of repo: an exact path
// (relative to workDir or absolute), an exact directory or branch name,
// or else the best fuzzy match over directory and branch names.
func findWorktree(repo *git.RepositoryInfo, workDir, query string) (git.Worktree, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return git.Worktree{}, fmt.Errorf("empty worktree query")
	}

	path := query
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	if wt, ok := repo.FindWorktree(path); ok {
		return wt, nil
	}

	for _, wt := range repo.Worktrees {
		if filepath.Base(wt.Path) == query || wt.Branch == query {
			return wt, nil
		}
	}

	matches := fuzzy.FindFrom(query, worktreeSource(repo.Worktrees))
	if len(matches) == 0 {
		return git.Worktree{}, fmt.Errorf("no worktree matches %q", query)
	}
	return repo.Worktrees[matches[0].Index], nil
}

// worktreeSource lets fuzzy match on "<dir> <branch>".
type worktreeSource []git.Worktree

func (s worktreeSource) String(i int) string {
	return filepath.Base(s[i].Path) + " " + s[i].Branch
}

func (s worktreeSource) Len() int { return len(s) }

// historyPath keeps the history file next to the global config file.
func historyPath(ctx context.Context) string {
	return filepath.Join(filepath.Dir(resolver(ctx).GlobalPath()), history.FileName)
}

// recordLeave remembers from as the worktree left for to. Only real
// directory changes through the wrapper count.
func recordLeave(ctx context.Context, s *session, from, to string) {
	if !wrapperMode() || from == to {
		return
	}
	if err := history.Record(historyPath(ctx), s.repo.RootPath, from); err != nil {
		log.FromContext(ctx).Debug("could not record history", "error", err)
	}
}
