package styles

import "github.com/Tsdevendra1/branchlet/internal/git"

// Worktree status markers.
const (
	SymbolMain   = "◆"
	SymbolClean  = "✓"
	SymbolDirty  = "●"
	SymbolLocked = "⊘"
	SymbolStale  = "✕"
)

// WorktreeStatus returns a colored marker and word for a worktree.
func WorktreeStatus(wt git.Worktree) string {
	switch {
	case wt.IsPrunable:
		return ErrorStyle.Render(SymbolStale + " missing")
	case wt.IsLocked:
		return MutedStyle.Render(SymbolLocked + " locked")
	case !wt.IsClean:
		return WarningStyle.Render(SymbolDirty + " modified")
	case wt.IsMain:
		return PrimaryStyle.Render(SymbolMain + " main")
	default:
		return SuccessStyle.Render(SymbolClean + " clean")
	}
}
