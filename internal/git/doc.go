// Package git provides git operations via shell commands.
//
// All queries and mutations call the git CLI and parse its porcelain output,
// so user configuration (hooks, credential helpers, worktree settings) applies
// unchanged. Ref inspection before branch deletion reads the object store
// directly with go-git.
//
// # Queries
//
//   - [Service.RepositoryInfo]: main repository root, branches, worktrees
//   - [Service.CurrentWorktreeInfo]: the worktree containing the working directory
//   - [Service.IsWorktreeClean]: no staged, unstaged or untracked changes
//
// # Mutations
//
//   - [Service.CreateWorktree]: one `git worktree add`
//   - [Service.DeleteWorktree]: `git worktree remove` plus optional branch deletion
//
// Mutations on one [Service] never overlap. Failures are reported as
// [*QueryError] or [*CommandError]; the latter carries git's stderr.
package git
