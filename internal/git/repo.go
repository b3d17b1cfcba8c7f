package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DetachedBranch is reported as the branch of a worktree with a detached HEAD.
const DetachedBranch = "(detached)"

// Branch is a local branch.
type Branch struct {
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
	IsDefault bool   `json:"is_default"`
}

// Worktree is one entry of `git worktree list`.
type Worktree struct {
	Path       string `json:"path"`
	Branch     string `json:"branch"`
	Head       string `json:"head"`
	IsMain     bool   `json:"is_main"`
	IsClean    bool   `json:"is_clean"`
	IsLocked   bool   `json:"is_locked"`
	IsPrunable bool   `json:"is_prunable"`
}

// IsDetached reports whether the worktree has no branch checked out.
func (w Worktree) IsDetached() bool {
	return w.Branch == DetachedBranch || w.Branch == ""
}

// RepositoryInfo describes the main repository and its worktrees.
type RepositoryInfo struct {
	RootPath      string     `json:"root_path"`
	CurrentBranch string     `json:"current_branch"`
	DefaultBranch string     `json:"default_branch"`
	Branches      []Branch   `json:"branches"`
	Worktrees     []Worktree `json:"worktrees"`
}

// BranchExists reports whether name is a known local branch.
func (r *RepositoryInfo) BranchExists(name string) bool {
	for _, b := range r.Branches {
		if b.Name == name {
			return true
		}
	}
	return false
}

// FindWorktree returns the worktree registered at path.
func (r *RepositoryInfo) FindWorktree(path string) (Worktree, bool) {
	for _, wt := range r.Worktrees {
		if samePath(wt.Path, path) {
			return wt, true
		}
	}
	return Worktree{}, false
}

// MainWorktree returns the main worktree entry.
func (r *RepositoryInfo) MainWorktree() (Worktree, bool) {
	for _, wt := range r.Worktrees {
		if wt.IsMain {
			return wt, true
		}
	}
	return Worktree{}, false
}

// Service runs git against the repository containing dir.
//
// Mutating calls are serialized: git guards worktree metadata with a lock
// file, and overlapping `worktree add/remove` calls fail or corrupt it.
type Service struct {
	dir string
	mu  sync.Mutex
}

// NewService returns a Service rooted at dir. An empty dir means the
// process working directory.
func NewService(dir string) *Service {
	return &Service{dir: dir}
}

// Dir returns the directory git commands run from.
func (s *Service) Dir() string {
	if s.dir != "" {
		return s.dir
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// RepositoryInfo loads the main repository root, its branches and worktrees.
// Cleanliness is checked per worktree with `git status --porcelain`.
func (s *Service) RepositoryInfo(ctx context.Context) (*RepositoryInfo, error) {
	current, err := s.CurrentWorktreeInfo(ctx)
	if err != nil {
		return nil, err
	}

	worktrees, err := listWorktrees(ctx, current.MainRepoPath)
	if err != nil {
		return nil, err
	}
	for i := range worktrees {
		if worktrees[i].IsPrunable {
			continue
		}
		clean, err := s.IsWorktreeClean(ctx, worktrees[i].Path)
		if err != nil {
			return nil, err
		}
		worktrees[i].IsClean = clean
	}

	names, err := listBranches(ctx, current.MainRepoPath)
	if err != nil {
		return nil, err
	}
	defaultBranch := defaultBranch(ctx, current.MainRepoPath, names)

	branches := make([]Branch, 0, len(names))
	for _, name := range names {
		branches = append(branches, Branch{
			Name:      name,
			IsCurrent: name == current.Branch,
			IsDefault: name == defaultBranch,
		})
	}

	return &RepositoryInfo{
		RootPath:      current.MainRepoPath,
		CurrentBranch: current.Branch,
		DefaultBranch: defaultBranch,
		Branches:      branches,
		Worktrees:     worktrees,
	}, nil
}

// CurrentWorktree describes the worktree containing the service directory.
type CurrentWorktree struct {
	// IsWorktree is true for a linked worktree and false for the main one.
	IsWorktree   bool
	WorktreePath string
	MainRepoPath string
	Branch       string
}

// CurrentWorktreeInfo resolves the worktree that contains the service directory
// and the main repository it belongs to.
func (s *Service) CurrentWorktreeInfo(ctx context.Context) (*CurrentWorktree, error) {
	dir := s.Dir()
	output, err := outputGit(ctx, dir, "rev-parse", "--show-toplevel", "--git-common-dir")
	if err != nil {
		return nil, newQueryError("resolve repository", err)
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) != 2 {
		return nil, &QueryError{Op: "resolve repository", Err: fmt.Errorf("unexpected rev-parse output %q", output)}
	}
	toplevel := filepath.Clean(strings.TrimSpace(lines[0]))
	commonDir := strings.TrimSpace(lines[1])
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(dir, commonDir)
	}

	mainRepo := filepath.Clean(commonDir)
	if filepath.Base(mainRepo) == ".git" {
		mainRepo = filepath.Dir(mainRepo)
	}

	branch, err := currentBranch(ctx, toplevel)
	if err != nil {
		return nil, err
	}

	return &CurrentWorktree{
		IsWorktree:   !samePath(toplevel, mainRepo),
		WorktreePath: toplevel,
		MainRepoPath: resolvePath(mainRepo),
		Branch:       branch,
	}, nil
}

// IsWorktreeClean reports whether path has no staged, unstaged or untracked changes.
func (s *Service) IsWorktreeClean(ctx context.Context, path string) (bool, error) {
	output, err := outputGit(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, newQueryError("check status of "+path, err)
	}
	return strings.TrimSpace(string(output)) == "", nil
}

// currentBranch returns the branch checked out at path, or DetachedBranch.
func currentBranch(ctx context.Context, path string) (string, error) {
	output, err := outputGit(ctx, path, "branch", "--show-current")
	if err != nil {
		return "", newQueryError("get current branch", err)
	}
	branch := strings.TrimSpace(string(output))
	if branch == "" {
		return DetachedBranch, nil
	}
	return branch, nil
}

// listWorktrees returns all worktrees of the repository using
// `git worktree list --porcelain`.
func listWorktrees(ctx context.Context, repoPath string) ([]Worktree, error) {
	output, err := outputGit(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, newQueryError("list worktrees", err)
	}
	return parseWorktreeList(string(output))
}

// parseWorktreeList parses porcelain output. Entries are separated by blank
// lines; the first entry is the main worktree.
func parseWorktreeList(output string) ([]Worktree, error) {
	var worktrees []Worktree
	var current *Worktree

	flush := func() {
		if current != nil {
			worktrees = append(worktrees, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = &Worktree{
				Path:   strings.TrimPrefix(line, "worktree "),
				IsMain: len(worktrees) == 0,
			}
		case current == nil:
			return nil, &QueryError{Op: "list worktrees", Err: fmt.Errorf("malformed porcelain output: %q before worktree line", line)}
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "detached":
			current.Branch = DetachedBranch
		case line == "locked" || strings.HasPrefix(line, "locked "):
			current.IsLocked = true
		case line == "prunable" || strings.HasPrefix(line, "prunable "):
			current.IsPrunable = true
		}
	}
	flush()

	return worktrees, nil
}

// listBranches returns the short names of all local branches.
func listBranches(ctx context.Context, repoPath string) ([]string, error) {
	output, err := outputGit(ctx, repoPath, "for-each-ref", "--format=%(refname:short)", "refs/heads")
	if err != nil {
		return nil, newQueryError("list branches", err)
	}
	var names []string
	for _, line := range strings.Split(string(output), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// defaultBranch picks the repository's default branch: origin/HEAD when
// set, otherwise main or master if they exist locally.
func defaultBranch(ctx context.Context, repoPath string, local []string) string {
	output, err := outputGit(ctx, repoPath, "symbolic-ref", "--quiet", "refs/remotes/origin/HEAD")
	if err == nil {
		// Output is like "refs/remotes/origin/main"
		ref := strings.TrimSpace(string(output))
		return strings.TrimPrefix(ref, "refs/remotes/origin/")
	}

	for _, candidate := range []string{"main", "master"} {
		for _, name := range local {
			if name == candidate {
				return candidate
			}
		}
	}
	return ""
}

// resolvePath returns path with symlinks resolved, or path itself if that fails.
func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	return resolvePath(a) == resolvePath(b)
}
