// Package cmd provides helpers for executing external commands with proper error handling.
//
// Every helper folds the command's stderr into the returned [*ExitError] so
// callers can surface the tool's own message, and logs the invocation through
// the context logger when verbose mode is enabled.
//
// # Usage
//
//	out, err := cmd.OutputContext(ctx, repoDir, "git", "worktree", "list", "--porcelain")
//	if err != nil {
//	    var exitErr *cmd.ExitError
//	    if errors.As(err, &exitErr) {
//	        // exitErr.Stderr holds git's message
//	    }
//	}
//
// branchlet shells out to the git binary rather than reimplementing it, so
// user configuration (hooks, credential helpers, aliases) keeps working.
package cmd
