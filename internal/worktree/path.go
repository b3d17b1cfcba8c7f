// Package worktree computes worktree locations and navigation targets.
package worktree

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Tsdevendra1/branchlet/internal/template"
)

// ResolvePath computes the directory for a new worktree named dirName.
//
// The path template is rendered with $BASE_PATH set to the repository folder
// name. Branch values are sanitized (/ -> -) so they can't add directory levels.
// The rendered template is then resolved as:
//   - "~/worktrees/$BASE_PATH" = home-relative
//   - "/absolute/$BASE_PATH"   = absolute
//   - "$BASE_PATH.worktree"    = relative to the repository's parent (sibling)
//
// dirName is always joined last.
func ResolvePath(repoRoot, dirName, pathTemplate string, vars template.Variables) string {
	repoRoot = filepath.Clean(repoRoot)
	if vars.BasePath == "" {
		vars.BasePath = filepath.Base(repoRoot)
	}
	vars.BranchName = sanitize(vars.BranchName)
	vars.SourceBranch = sanitize(vars.SourceBranch)

	base := template.Render(pathTemplate, vars)

	switch {
	case base == "~" || strings.HasPrefix(base, "~/"):
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			// Keep the ~ so the failure is visible in error messages
			return filepath.Join(base, dirName)
		}
		return filepath.Join(home, strings.TrimPrefix(base, "~"), dirName)

	case filepath.IsAbs(base):
		return filepath.Join(base, dirName)

	default:
		return filepath.Join(filepath.Dir(repoRoot), base, dirName)
	}
}

func sanitize(branch string) string {
	return strings.ReplaceAll(branch, "/", "-")
}

// TargetPath returns where to navigate when switching from the worktree at
// worktreeRoot to destRoot while standing in cwd.
//
// The position of cwd relative to worktreeRoot is preserved when the same
// relative directory exists under destRoot. Otherwise destRoot is returned.
func TargetPath(worktreeRoot, destRoot, cwd string) string {
	rel, err := filepath.Rel(filepath.Clean(worktreeRoot), filepath.Clean(cwd))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return destRoot
	}

	joined := filepath.Join(destRoot, rel)
	info, err := os.Stat(joined)
	if err != nil || !info.IsDir() {
		return destRoot
	}
	return joined
}
