package git

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// resolveTempDir creates a temp directory and resolves macOS symlinks.
func resolveTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("failed to resolve symlinks for %s: %v", tmpDir, err)
	}
	return resolved
}

// configureTestRepo sets git user config and disables GPG signing.
func configureTestRepo(t *testing.T, repoPath string) {
	t.Helper()
	ctx := context.Background()
	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
	} {
		if err := runGit(ctx, repoPath, args...); err != nil {
			t.Fatalf("failed to run git %v: %v", args, err)
		}
	}
}

// setupTestRepo creates a git repo with main branch, initial commit, and git config.
// Returns the resolved repo path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	tmpDir := resolveTempDir(t)
	repoPath := filepath.Join(tmpDir, "test-repo")

	ctx := context.Background()
	if err := runGit(ctx, "", "init", "-b", "main", repoPath); err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	configureTestRepo(t, repoPath)
	commitFile(t, repoPath, "README.md", "# test\n", "Initial commit")

	return repoPath
}

// commitFile writes name and commits it.
func commitFile(t *testing.T, dir, name, content, msg string) {
	t.Helper()
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := runGit(ctx, dir, "add", name); err != nil {
		t.Fatalf("failed to add file: %v", err)
	}
	if err := runGit(ctx, dir, "commit", "-m", msg); err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
}

// assertContains checks that all wanted items exist in the got slice.
func assertContains(t *testing.T, got []string, want ...string) {
	t.Helper()
	set := make(map[string]bool, len(got))
	for _, s := range got {
		set[s] = true
	}
	for _, w := range want {
		if !set[w] {
			t.Errorf("missing %q in %v", w, got)
		}
	}
}

// setupTestRepoWithOrigin creates a repo with a bare origin remote.
// Returns (repoPath, originPath).
func setupTestRepoWithOrigin(t *testing.T) (string, string) {
	t.Helper()
	tmpDir := resolveTempDir(t)

	originPath := filepath.Join(tmpDir, "origin.git")
	repoPath := filepath.Join(tmpDir, "repo")

	ctx := context.Background()

	// Create bare origin (-b main ensures consistent default branch across git versions)
	if err := runGit(ctx, "", "init", "--bare", "-b", "main", originPath); err != nil {
		t.Fatalf("failed to init bare repo: %v", err)
	}
	if err := runGit(ctx, "", "clone", originPath, repoPath); err != nil {
		t.Fatalf("failed to clone: %v", err)
	}

	configureTestRepo(t, repoPath)
	commitFile(t, repoPath, "README.md", "# test\n", "Initial commit")
	if err := runGit(ctx, repoPath, "push", "-u", "origin", "HEAD"); err != nil {
		t.Fatalf("failed to push: %v", err)
	}

	return repoPath, originPath
}

func TestParseWorktreeList(t *testing.T) {
	t.Parallel()

	output := `worktree /r/main
HEAD 1111111111111111111111111111111111111111
branch refs/heads/main

worktree /r/main.worktree/feat
HEAD 2222222222222222222222222222222222222222
branch refs/heads/team/login
locked

worktree /r/main.worktree/old
HEAD 3333333333333333333333333333333333333333
detached
prunable gitdir file points to non-existent location

`
	worktrees, err := parseWorktreeList(output)
	if err != nil {
		t.Fatalf("parseWorktreeList: %v", err)
	}
	if len(worktrees) != 3 {
		t.Fatalf("got %d worktrees, want 3: %+v", len(worktrees), worktrees)
	}

	tests := []struct {
		idx      int
		path     string
		branch   string
		main     bool
		locked   bool
		prunable bool
	}{
		{0, "/r/main", "main", true, false, false},
		{1, "/r/main.worktree/feat", "team/login", false, true, false},
		{2, "/r/main.worktree/old", DetachedBranch, false, false, true},
	}
	for _, tt := range tests {
		wt := worktrees[tt.idx]
		if wt.Path != tt.path || wt.Branch != tt.branch {
			t.Errorf("[%d] = %s@%s, want %s@%s", tt.idx, wt.Path, wt.Branch, tt.path, tt.branch)
		}
		if wt.IsMain != tt.main || wt.IsLocked != tt.locked || wt.IsPrunable != tt.prunable {
			t.Errorf("[%d] flags = main:%v locked:%v prunable:%v", tt.idx, wt.IsMain, wt.IsLocked, wt.IsPrunable)
		}
	}
	if !worktrees[2].IsDetached() {
		t.Error("expected detached worktree")
	}
	if worktrees[0].Head != "1111111111111111111111111111111111111111" {
		t.Errorf("Head = %q", worktrees[0].Head)
	}
}

func TestParseWorktreeList_Malformed(t *testing.T) {
	t.Parallel()

	_, err := parseWorktreeList("HEAD abc\nworktree /x\n")
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error = %v, want *QueryError", err)
	}
}

func TestRepositoryInfo(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	if err := runGit(ctx, repoPath, "branch", "feature"); err != nil {
		t.Fatal(err)
	}
	wtPath := filepath.Join(filepath.Dir(repoPath), "wt-feature")
	if err := runGit(ctx, repoPath, "worktree", "add", wtPath, "feature"); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(wtPath, "dirty.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// Query from inside the linked worktree: the root is still the main repo.
	info, err := NewService(wtPath).RepositoryInfo(ctx)
	if err != nil {
		t.Fatalf("RepositoryInfo: %v", err)
	}

	if info.RootPath != repoPath {
		t.Errorf("RootPath = %q, want %q", info.RootPath, repoPath)
	}
	if info.CurrentBranch != "feature" {
		t.Errorf("CurrentBranch = %q, want feature", info.CurrentBranch)
	}
	if info.DefaultBranch != "main" {
		t.Errorf("DefaultBranch = %q, want main", info.DefaultBranch)
	}

	var names []string
	for _, b := range info.Branches {
		names = append(names, b.Name)
		if b.Name == "main" && !b.IsDefault {
			t.Error("main should be default")
		}
		if b.Name == "feature" && !b.IsCurrent {
			t.Error("feature should be current")
		}
	}
	assertContains(t, names, "main", "feature")
	if !info.BranchExists("feature") || info.BranchExists("nope") {
		t.Error("BranchExists mismatch")
	}

	if len(info.Worktrees) != 2 {
		t.Fatalf("got %d worktrees, want 2", len(info.Worktrees))
	}
	mainWt, ok := info.MainWorktree()
	if !ok || mainWt.Path != repoPath || !mainWt.IsClean {
		t.Errorf("main worktree = %+v", mainWt)
	}
	wt, ok := info.FindWorktree(wtPath)
	if !ok {
		t.Fatalf("worktree %s not found", wtPath)
	}
	if wt.IsClean {
		t.Error("worktree with untracked file reported clean")
	}
}

func TestRepositoryInfo_NotRepository(t *testing.T) {
	t.Parallel()

	_, err := NewService(resolveTempDir(t)).RepositoryInfo(context.Background())
	var qe *QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error = %v, want *QueryError", err)
	}
	if !errors.Is(err, ErrNotRepository) {
		t.Errorf("error = %v, want ErrNotRepository", err)
	}
}

func TestCurrentWorktreeInfo(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	ctx := context.Background()

	wtPath := filepath.Join(filepath.Dir(repoPath), "wt")
	if err := runGit(ctx, repoPath, "worktree", "add", "-b", "topic", wtPath); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(wtPath, "sub")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		dir        string
		isWorktree bool
		root       string
		branch     string
	}{
		{"main repo", repoPath, false, repoPath, "main"},
		{"linked worktree", wtPath, true, wtPath, "topic"},
		{"subdirectory", sub, true, wtPath, "topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := NewService(tt.dir).CurrentWorktreeInfo(ctx)
			if err != nil {
				t.Fatalf("CurrentWorktreeInfo: %v", err)
			}
			if info.IsWorktree != tt.isWorktree {
				t.Errorf("IsWorktree = %v, want %v", info.IsWorktree, tt.isWorktree)
			}
			if info.WorktreePath != tt.root {
				t.Errorf("WorktreePath = %q, want %q", info.WorktreePath, tt.root)
			}
			if info.MainRepoPath != repoPath {
				t.Errorf("MainRepoPath = %q, want %q", info.MainRepoPath, repoPath)
			}
			if info.Branch != tt.branch {
				t.Errorf("Branch = %q, want %q", info.Branch, tt.branch)
			}
		})
	}
}

func TestIsWorktreeClean(t *testing.T) {
	t.Parallel()

	repoPath := setupTestRepo(t)
	svc := NewService(repoPath)
	ctx := context.Background()

	clean, err := svc.IsWorktreeClean(ctx, repoPath)
	if err != nil || !clean {
		t.Fatalf("fresh repo clean = %v, err = %v", clean, err)
	}

	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("changed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	clean, err = svc.IsWorktreeClean(ctx, repoPath)
	if err != nil || clean {
		t.Fatalf("modified repo clean = %v, err = %v", clean, err)
	}
}
