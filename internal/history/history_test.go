package history

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordAndPrevious(t *testing.T) {
	t.Parallel()

	historyFile := filepath.Join(t.TempDir(), "nested", FileName)

	if err := Record(historyFile, "/src/app", "/src/app.worktree/login"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := Record(historyFile, "/src/other/", "/src/other.worktree/x"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := Previous(historyFile, "/src/app")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/src/app.worktree/login" {
		t.Errorf("Previous(app) = %q", got)
	}

	got, _ = Previous(historyFile, "/src/other")
	if got != "/src/other.worktree/x" {
		t.Errorf("Previous(other) = %q, repo paths should be cleaned", got)
	}
}

func TestRecord_Overwrites(t *testing.T) {
	t.Parallel()

	historyFile := filepath.Join(t.TempDir(), FileName)

	for _, from := range []string{"/wt/a", "/wt/b"} {
		if err := Record(historyFile, "/repo", from); err != nil {
			t.Fatal(err)
		}
	}

	h, err := Load(historyFile)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Previous) != 1 || h.Previous["/repo"] != "/wt/b" {
		t.Errorf("Previous = %v, want only /wt/b", h.Previous)
	}
}

func TestLoad_MissingOrCorrupted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	h, err := Load(filepath.Join(dir, "missing.json"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if len(h.Previous) != 0 {
		t.Errorf("missing file should be empty, got %v", h.Previous)
	}

	corrupted := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(corrupted, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	h, err = Load(corrupted)
	if err != nil {
		t.Fatalf("corrupted file: %v", err)
	}
	if h.Previous == nil {
		t.Error("corrupted file should yield a usable history")
	}

	got, err := Previous(corrupted, "/repo")
	if err != nil || got != "" {
		t.Errorf("Previous on corrupted = %q, %v", got, err)
	}
}

func TestSave_NoTempLeft(t *testing.T) {
	t.Parallel()

	historyFile := filepath.Join(t.TempDir(), FileName)
	if err := Record(historyFile, "/repo", "/wt"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(historyFile + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}
