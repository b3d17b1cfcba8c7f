package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/history"
	"github.com/Tsdevendra1/branchlet/internal/orchestrator"
	"github.com/Tsdevendra1/branchlet/internal/output"
)

// wrapperContext returns a context whose printer writes to the returned
// buffer and whose config (and history) live in a temp dir.
func wrapperContext(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	t.Setenv(WrapperEnv, "1")

	var stdout bytes.Buffer
	ctx := context.Background()
	ctx = config.WithResolver(ctx, config.NewResolver(filepath.Join(t.TempDir(), config.GlobalConfigFileName)))
	ctx = output.WithPrinter(ctx, &stdout)
	return ctx, &stdout
}

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
}

func TestReportCreated_Navigation(t *testing.T) {
	root := t.TempDir()
	mainRepo := filepath.Join(root, "app")
	created := filepath.Join(root, "app.worktree", "feat")

	tests := []struct {
		name    string
		workDir string
		mkdir   []string
		want    string
	}{
		{
			name:    "keeps relative directory",
			workDir: filepath.Join(mainRepo, "pkg", "api"),
			mkdir:   []string{filepath.Join(mainRepo, "pkg", "api"), filepath.Join(created, "pkg", "api")},
			want:    filepath.Join(created, "pkg", "api"),
		},
		{
			name:    "falls back to worktree root",
			workDir: filepath.Join(mainRepo, "scratch"),
			mkdir:   []string{filepath.Join(mainRepo, "scratch"), created},
			want:    created,
		},
		{
			name:    "from repository root",
			workDir: mainRepo,
			mkdir:   []string{mainRepo, created},
			want:    created,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, stdout := wrapperContext(t)
			mkdirs(t, tt.mkdir...)

			s := &session{
				workDir: tt.workDir,
				repo: &git.RepositoryInfo{
					RootPath:  mainRepo,
					Worktrees: []git.Worktree{{Path: mainRepo, Branch: "main", IsMain: true, IsClean: true}},
				},
			}
			res := &orchestrator.CreateResult{Path: created, Branch: "feat", SourceBranch: "main"}

			if err := reportCreated(ctx, s, res); err != nil {
				t.Fatalf("reportCreated: %v", err)
			}
			if got := stdout.String(); got != tt.want+"\n" {
				t.Errorf("navigation line = %q, want %q", got, tt.want+"\n")
			}

			prev, err := history.Previous(historyPath(ctx), mainRepo)
			if err != nil {
				t.Fatal(err)
			}
			if prev != mainRepo {
				t.Errorf("previous worktree = %q, want %q", prev, mainRepo)
			}
		})
	}
}

func TestReportCreated_TerminalFailureStillNavigates(t *testing.T) {
	ctx, stdout := wrapperContext(t)
	root := t.TempDir()
	created := filepath.Join(root, "app.worktree", "feat")
	mkdirs(t, created)

	s := &session{
		workDir: filepath.Join(root, "app"),
		repo:    &git.RepositoryInfo{RootPath: filepath.Join(root, "app")},
	}
	res := &orchestrator.CreateResult{Path: created, TerminalErr: os.ErrNotExist}

	if err := reportCreated(ctx, s, res); err != nil {
		t.Fatalf("reportCreated: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != created {
		t.Errorf("navigation line = %q, want %q", stdout.String(), created)
	}
}

func TestDisplayWriter(t *testing.T) {
	var stdout bytes.Buffer
	ctx := output.WithPrinter(context.Background(), &stdout)

	prev := fromWrapper
	fromWrapper = false
	t.Cleanup(func() { fromWrapper = prev })

	t.Setenv(WrapperEnv, "")
	if w := displayWriter(ctx); w != &stdout {
		t.Errorf("without wrapper: writer = %v, want the printer's", w)
	}

	t.Setenv(WrapperEnv, "1")
	if w := displayWriter(ctx); w != os.Stderr {
		t.Errorf("through wrapper: writer = %v, want stderr", w)
	}
}

func TestWorkingDir_ResolvesSymlinks(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	realDir := filepath.Join(base, "real", "sub")
	mkdirs(t, realDir)
	link := filepath.Join(base, "link")
	if err := os.Symlink(filepath.Join(base, "real"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	t.Chdir(filepath.Join(link, "sub"))
	got, err := workingDir()
	if err != nil {
		t.Fatal(err)
	}
	if got != realDir {
		t.Errorf("workingDir() = %q, want %q", got, realDir)
	}

	// currentRoot sees the worktree only through the resolved path.
	repo := &git.RepositoryInfo{
		RootPath: filepath.Join(base, "main"),
		Worktrees: []git.Worktree{
			{Path: filepath.Join(base, "main"), IsMain: true},
			{Path: filepath.Join(base, "real")},
		},
	}
	if root := currentRoot(repo, got); root != filepath.Join(base, "real") {
		t.Errorf("currentRoot = %q", root)
	}
}
