//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/output"
)

// setupTestRepo creates a git repo with one commit on main in dir/name.
// Returns the path with symlinks resolved (macOS /var -> /private/var).
func setupTestRepo(t *testing.T, dir, name string) string {
	t.Helper()

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	repoPath := filepath.Join(resolved, name)
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		t.Fatal(err)
	}

	runGitCommand(t, repoPath, "init", "-b", "main")
	runGitCommand(t, repoPath, "config", "user.email", "test@test.com")
	runGitCommand(t, repoPath, "config", "user.name", "Test User")
	runGitCommand(t, repoPath, "config", "commit.gpgsign", "false")

	if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("# "+name+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repoPath, ".gitignore"), []byte(".env\n"), 0644); err != nil {
		t.Fatal(err)
	}
	runGitCommand(t, repoPath, "add", ".")
	runGitCommand(t, repoPath, "commit", "-m", "Initial commit")

	return repoPath
}

func runGitCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// runBranchlet runs the command tree in dir through the wrapper and
// returns what was written to stdout.
func runBranchlet(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)

	var stdout bytes.Buffer
	ctx := context.Background()
	ctx = config.WithResolver(ctx, config.NewResolver(filepath.Join(os.Getenv(config.ConfigDirEnv), config.GlobalConfigFileName)))
	ctx = output.WithPrinter(ctx, &stdout)

	root := newRootCmd()
	root.SetArgs(append([]string{"--from-wrapper"}, args...))
	err := root.ExecuteContext(ctx)
	return stdout.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.ConfigDirEnv, t.TempDir())
	t.Setenv(WrapperEnv, "")
}

func TestCreate_QuickMode(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t, t.TempDir(), "app")
	if err := os.WriteFile(filepath.Join(repo, ".env"), []byte("KEY=1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(config.LocalPath(repo), []byte(`{"branchPrefix": "team/", "postCreateCmd": ["echo $BRANCH_NAME > branch.txt"]}`), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runBranchlet(t, repo, "create", "login")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	want := filepath.Join(filepath.Dir(repo), "app.worktree", "login")
	if strings.TrimSpace(out) != want {
		t.Errorf("navigation line = %q, want %q", out, want)
	}
	if got := runGitCommand(t, want, "branch", "--show-current"); got != "team/login" {
		t.Errorf("branch = %q, want team/login", got)
	}
	if _, err := os.Stat(filepath.Join(want, ".env")); err != nil {
		t.Errorf(".env not copied: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(want, "branch.txt"))
	if err != nil {
		t.Fatalf("post-create command did not run: %v", err)
	}
	if strings.TrimSpace(string(data)) != "team/login" {
		t.Errorf("branch.txt = %q, want team/login", data)
	}
}

func TestCreate_DryRun(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t, t.TempDir(), "app")

	out, err := runBranchlet(t, repo, "create", "login", "--dry-run")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if out != "" {
		t.Errorf("dry run wrote %q to stdout, want nothing", out)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(repo), "app.worktree")); !os.IsNotExist(err) {
		t.Errorf("dry run created files: %v", err)
	}
}

func TestCreate_KeepsRelativeDirectory(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t, t.TempDir(), "app")
	if err := os.MkdirAll(filepath.Join(repo, "pkg"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(repo, "pkg", "doc.go"), []byte("package pkg\n"), 0644); err != nil {
		t.Fatal(err)
	}
	runGitCommand(t, repo, "add", ".")
	runGitCommand(t, repo, "commit", "-m", "Add pkg")
	if err := os.MkdirAll(filepath.Join(repo, "scratch"), 0755); err != nil {
		t.Fatal(err)
	}

	out, err := runBranchlet(t, filepath.Join(repo, "pkg"), "create", "login")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	wt := filepath.Join(filepath.Dir(repo), "app.worktree", "login")
	if strings.TrimSpace(out) != filepath.Join(wt, "pkg") {
		t.Errorf("navigation line = %q, want %q", out, filepath.Join(wt, "pkg"))
	}

	// scratch is untracked, so it does not exist in the new worktree
	out, err = runBranchlet(t, filepath.Join(repo, "scratch"), "create", "signup")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	wt = filepath.Join(filepath.Dir(repo), "app.worktree", "signup")
	if strings.TrimSpace(out) != wt {
		t.Errorf("navigation line = %q, want %q", out, wt)
	}
}

func TestList_JSONThroughWrapper(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t, t.TempDir(), "app")

	out, err := runBranchlet(t, repo, "list", "--json")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if out != "" {
		t.Errorf("list --json wrote %q to stdout, want nothing", out)
	}
}

func TestCreate_BranchCollision(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t, t.TempDir(), "app")
	runGitCommand(t, repo, "branch", "login")

	_, err := runBranchlet(t, repo, "create", "other", "-b", "login")
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("err = %v, want branch collision", err)
	}
}

func TestListAndClose(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t, t.TempDir(), "app")
	if err := os.MkdirAll(filepath.Join(repo, "pkg"), 0755); err != nil {
		t.Fatal(err)
	}

	wt := filepath.Join(filepath.Dir(repo), "app.worktree", "feat")
	runGitCommand(t, repo, "worktree", "add", "-b", "feat", wt)
	if err := os.MkdirAll(filepath.Join(wt, "pkg"), 0755); err != nil {
		t.Fatal(err)
	}

	out, err := runBranchlet(t, filepath.Join(wt, "pkg"), "list", "main")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(repo, "pkg") {
		t.Errorf("list target = %q, want %q", out, filepath.Join(repo, "pkg"))
	}

	out, err = runBranchlet(t, filepath.Join(repo, "pkg"), "list", "-")
	if err != nil {
		t.Fatalf("list - failed: %v", err)
	}
	if strings.TrimSpace(out) != filepath.Join(wt, "pkg") {
		t.Errorf("list - target = %q, want %q", out, filepath.Join(wt, "pkg"))
	}

	out, err = runBranchlet(t, filepath.Join(wt, "pkg"), "close", "--yes")
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	var payload output.ClosePayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &payload); err != nil {
		t.Fatalf("close output %q: %v", out, err)
	}
	if payload.NavigateTo != filepath.Join(repo, "pkg") || payload.DeleteWorktree != wt {
		t.Errorf("payload = %+v", payload)
	}
}

func TestClose_MainRepository(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t, t.TempDir(), "app")

	out, err := runBranchlet(t, repo, "close", "--yes")
	if err == nil || !strings.Contains(err.Error(), "main repository") {
		t.Errorf("err = %v, want not-a-worktree", err)
	}
	if out != "" {
		t.Errorf("stdout should stay empty, got %q", out)
	}
}

func TestDelete(t *testing.T) {
	setupEnv(t)
	repo := setupTestRepo(t, t.TempDir(), "app")

	clean := filepath.Join(filepath.Dir(repo), "app.worktree", "clean")
	dirty := filepath.Join(filepath.Dir(repo), "app.worktree", "dirty")
	runGitCommand(t, repo, "worktree", "add", "-b", "clean", clean)
	runGitCommand(t, repo, "worktree", "add", "-b", "dirty", dirty)
	if err := os.WriteFile(filepath.Join(dirty, "wip.txt"), []byte("wip"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := runBranchlet(t, repo, "delete", "--yes", "--delete-branch", "clean", "dirty"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	for _, p := range []string{clean, dirty} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists", p)
		}
	}
	if branches := runGitCommand(t, repo, "branch", "--list", "clean", "dirty"); branches != "" {
		t.Errorf("branches left: %q", branches)
	}
}
