// Package template renders branchlet's $TOKEN templates.
//
// Templates are used for the worktree directory, post-create commands and
// the terminal command. Substitution is literal: each known token is replaced
// by its value and anything else, including unknown $TOKENS, is kept verbatim.
package template

import "strings"

// Supported tokens.
const (
	TokenBasePath     = "$BASE_PATH"
	TokenWorktreePath = "$WORKTREE_PATH"
	TokenBranchName   = "$BRANCH_NAME"
	TokenSourceBranch = "$SOURCE_BRANCH"
)

// Variables holds the values substituted into a template.
type Variables struct {
	BasePath     string // base repository name
	WorktreePath string // full path of the new worktree
	BranchName   string // new branch name
	SourceBranch string // branch the worktree was created from
}

// Map returns the token to value mapping.
func (v Variables) Map() map[string]string {
	return map[string]string{
		TokenBasePath:     v.BasePath,
		TokenWorktreePath: v.WorktreePath,
		TokenBranchName:   v.BranchName,
		TokenSourceBranch: v.SourceBranch,
	}
}

// Render replaces every known token in tmpl.
func Render(tmpl string, vars Variables) string {
	if !strings.Contains(tmpl, "$") {
		return tmpl
	}
	r := strings.NewReplacer(
		TokenBasePath, vars.BasePath,
		TokenWorktreePath, vars.WorktreePath,
		TokenBranchName, vars.BranchName,
		TokenSourceBranch, vars.SourceBranch,
	)
	return r.Replace(tmpl)
}
