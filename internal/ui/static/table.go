// Package static renders non-interactive terminal output.
package static

import (
	"path/filepath"
	"strings"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/Tsdevendra1/branchlet/internal/git"
	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
)

// WorktreeHeaders are the columns produced by WorktreeRow.
var WorktreeHeaders = []string{"NAME", "BRANCH", "STATUS", "HEAD", "PATH"}

// RenderTable renders rows without borders, sized to the content.
func RenderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var output strings.Builder

	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).PaddingRight(2)
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})

	output.WriteString(t.String())
	output.WriteString("\n")

	return output.String()
}

// WorktreeRow returns the table cells for wt.
func WorktreeRow(wt git.Worktree) []string {
	head := wt.Head
	if len(head) > 7 {
		head = head[:7]
	}
	return []string{
		filepath.Base(wt.Path),
		wt.Branch,
		styles.WorktreeStatus(wt),
		head,
		wt.Path,
	}
}

// RenderWorktrees renders worktrees as a table.
func RenderWorktrees(worktrees []git.Worktree) string {
	rows := make([][]string, 0, len(worktrees))
	for _, wt := range worktrees {
		rows = append(rows, WorktreeRow(wt))
	}
	return RenderTable(WorktreeHeaders, rows)
}
