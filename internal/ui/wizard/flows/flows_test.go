package flows

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/Tsdevendra1/branchlet/internal/config"
	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/orchestrator"
	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/framework"
)

func keyMsg(key string) tea.KeyPressMsg {
	switch key {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}
	}
	return tea.KeyPressMsg{Code: rune(key[0]), Text: key}
}

func press(w *framework.Wizard, keys ...string) {
	for _, k := range keys {
		w.Update(keyMsg(k))
	}
}

func typeText(w *framework.Wizard, text string) {
	for _, r := range text {
		w.Update(keyMsg(string(r)))
	}
}

func testRepo(t *testing.T) *git.RepositoryInfo {
	t.Helper()
	root := filepath.Join(t.TempDir(), "repo")
	return &git.RepositoryInfo{
		RootPath:      root,
		CurrentBranch: "develop",
		DefaultBranch: "main",
		Branches: []git.Branch{
			{Name: "develop", IsCurrent: true},
			{Name: "main", IsDefault: true},
			{Name: "team/login"},
		},
		Worktrees: []git.Worktree{
			{Path: root, Branch: "develop", IsMain: true, IsClean: true},
			{Path: root + ".worktree/feat", Branch: "team/feat", IsClean: true},
			{Path: root + ".worktree/wip", Branch: "wip", IsClean: false},
		},
	}
}

func newFlow(t *testing.T, prefix string) *orchestrator.CreateFlow {
	t.Helper()
	cfg := config.Default()
	cfg.BranchPrefix = prefix
	cfg.DefaultSourceBranch = "main"
	return orchestrator.NewCreateFlow(orchestrator.Deps{}, cfg, testRepo(t))
}

func TestCreateWizard_DrivesFlow(t *testing.T) {
	flow := newFlow(t, "team/")
	w := CreateWizard(flow)
	w.Init()

	typeText(w, "feat")
	press(w, "enter")
	if flow.State() != orchestrator.StateCollectingSourceBranch {
		t.Fatalf("after directory: %s", flow.State())
	}
	if w.CurrentStepID() != StepSource {
		t.Fatalf("wizard on %q, want %q", w.CurrentStepID(), StepSource)
	}

	// configured default comes first
	press(w, "enter")
	if flow.Params().SourceBranch != "main" {
		t.Errorf("source = %q, want main", flow.Params().SourceBranch)
	}

	typeText(w, "signup")
	press(w, "enter")
	if flow.State() != orchestrator.StateConfirming {
		t.Fatalf("after branch: %s (err %v)", flow.State(), flow.Err())
	}
	if w.CurrentStepID() != "summary" {
		t.Fatalf("wizard on %q, want summary", w.CurrentStepID())
	}

	view := w.View().Content
	for _, want := range []string{"team/signup (new, from main)", filepath.Join("repo.worktree", "feat")} {
		if !strings.Contains(view, want) {
			t.Errorf("summary missing %q:\n%s", want, view)
		}
	}

	press(w, "enter")
	if !w.IsDone() || w.IsCancelled() {
		t.Error("wizard should be confirmed")
	}
}

func TestCreateWizard_RejectsCollision(t *testing.T) {
	flow := newFlow(t, "team/")
	w := CreateWizard(flow)
	w.Init()

	typeText(w, "feat")
	press(w, "enter", "enter")
	typeText(w, "login")
	press(w, "enter")

	if flow.State() != orchestrator.StateCollectingNewBranch {
		t.Fatalf("state = %s, want collecting-new-branch", flow.State())
	}
	if !errors.Is(flow.Err(), orchestrator.ErrBranchExists) {
		t.Errorf("flow error = %v, want ErrBranchExists", flow.Err())
	}
	if w.CurrentStepID() != StepBranch {
		t.Errorf("wizard on %q, want to stay on %q", w.CurrentStepID(), StepBranch)
	}
	if !strings.Contains(w.View().Content, "already exists") {
		t.Errorf("error not shown:\n%s", w.View().Content)
	}
}

func TestCreateWizard_BackKeepsFlowInStep(t *testing.T) {
	flow := newFlow(t, "")
	w := CreateWizard(flow)
	w.Init()

	typeText(w, "feat")
	press(w, "enter", "enter")
	if flow.State() != orchestrator.StateCollectingNewBranch {
		t.Fatalf("state = %s", flow.State())
	}

	press(w, "left") // empty branch input: back to source
	if flow.State() != orchestrator.StateCollectingSourceBranch || w.CurrentStepID() != StepSource {
		t.Fatalf("after back: flow %s, wizard %s", flow.State(), w.CurrentStepID())
	}
	press(w, "left")
	if flow.State() != orchestrator.StateCollectingDirectoryName || w.CurrentStepID() != StepDirectory {
		t.Fatalf("after second back: flow %s, wizard %s", flow.State(), w.CurrentStepID())
	}

	// resubmit with an invalid name
	typeText(w, "/x")
	press(w, "enter")
	if flow.State() != orchestrator.StateCollectingDirectoryName {
		t.Errorf("invalid directory moved the flow to %s", flow.State())
	}
}

func TestCreateWizard_BranchHint(t *testing.T) {
	flow := newFlow(t, "team/")
	w := CreateWizard(flow)
	w.Init()

	typeText(w, "feat")
	press(w, "enter", "enter")

	if view := w.View().Content; !strings.Contains(view, "branch: team/feat") {
		t.Errorf("empty input should preview the directory name:\n%s", view)
	}
	typeText(w, "x")
	if view := w.View().Content; !strings.Contains(view, "branch: team/x") {
		t.Errorf("hint should follow input:\n%s", view)
	}
}

func TestRewindCreate(t *testing.T) {
	flow := newFlow(t, "")
	if err := flow.SubmitDirectoryName("feat"); err != nil {
		t.Fatal(err)
	}
	if err := flow.SubmitSourceBranch(""); err != nil {
		t.Fatal(err)
	}
	if err := flow.SubmitNewBranch("x"); err != nil {
		t.Fatal(err)
	}

	if err := RewindCreate(flow); err != nil {
		t.Fatalf("RewindCreate() = %v", err)
	}
	if flow.State() != orchestrator.StateCollectingDirectoryName {
		t.Errorf("state = %s", flow.State())
	}
	if flow.Params().NewBranch != "x" {
		t.Errorf("params lost: %+v", flow.Params())
	}
}

func TestSourceOptions(t *testing.T) {
	repo := testRepo(t)

	opts := SourceOptions(repo, "main", "")
	if opts[0].Label != "main" || opts[0].Description != "default" {
		t.Errorf("first option = %+v, want main (default)", opts[0])
	}
	if opts[1].Label != "develop" || opts[1].Description != "current" {
		t.Errorf("second option = %+v", opts[1])
	}
	if len(opts) != 3 {
		t.Errorf("got %d options, want 3", len(opts))
	}

	opts = SourceOptions(repo, "main", "team/login")
	if opts[0].Label != "team/login" {
		t.Errorf("preferred branch should come first, got %s", opts[0].Label)
	}
}

func TestRenderPlan(t *testing.T) {
	styles.Init("none", true)
	defer styles.Init("default", false)

	out := RenderPlan(&orchestrator.Plan{
		DirectoryName:   "feat",
		Path:            "/src/repo.worktree/feat",
		Branch:          "develop",
		SourceBranch:    "develop",
		CopyPatterns:    []string{".env*"},
		Commands:        []string{"npm install", "make"},
		TerminalCommand: "code .",
	})

	for _, want := range []string{"develop (existing)", "Copy: .env*", "Run 1: npm install", "Run 2: make", "Open: code ."} {
		if !strings.Contains(out, want) {
			t.Errorf("plan missing %q:\n%s", want, out)
		}
	}
}

func TestDeleteWizard(t *testing.T) {
	repo := testRepo(t)
	wip := repo.Worktrees[2].Path
	w := DeleteWizard(repo, []string{wip, repo.RootPath})
	w.Init()

	// main is disabled, so the cursor starts on feat
	press(w, "space", "enter")

	got := w.GetStrings(StepWorktrees)
	if len(got) != 2 || got[0] != repo.Worktrees[1].Path || got[1] != wip {
		t.Fatalf("selection = %v", got)
	}
	if view := w.View().Content; !strings.Contains(view, "uncommitted changes will be discarded") {
		t.Errorf("dirty worktree not flagged:\n%s", view)
	}
}
