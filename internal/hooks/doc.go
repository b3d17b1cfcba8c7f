// Package hooks runs the user-configured commands around worktree creation.
//
// # Post-create commands
//
// postCreateCmd entries run in order inside the new worktree with `sh -c`.
// Each is rendered first, replacing these tokens literally (no shell quoting):
//
//   - $BASE_PATH: repository folder name
//   - $WORKTREE_PATH: absolute path of the new worktree
//   - $BRANCH_NAME: the new branch
//   - $SOURCE_BRANCH: the branch it was created from
//
// The same values are exported as environment variables, so a token that
// survives rendering (for example inside a nested script) still resolves.
// Execution stops at the first failing command.
//
// # Terminal command
//
// terminalCommand is rendered the same way and started in the background
// once the worktree is ready. Only a failure to start it is reported.
package hooks
