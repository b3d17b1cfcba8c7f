// Package config handles loading, merging and validation of branchlet
// configuration.
//
// # Configuration Sources (highest priority first)
//
//   - .branchlet.json in the project root
//   - the global settings file ($BRANCHLET_CONFIG_DIR/settings.json,
//     default ~/.branchlet/settings.json)
//   - built-in defaults
//
// Merging is field level: a key present in the local file replaces the
// global value, lists included. The global file is written with defaults
// the first time it is needed and is never rewritten afterwards.
//
// # Validation
//
// Both files are checked against a JSON schema generated from [Config].
// Copy patterns must be valid doublestar globs. A file that fails either
// check is skipped with a warning rather than aborting the command.
//
// # Example
//
//	{
//	  "worktreeCopyPatterns": [".env*", ".vscode/**"],
//	  "worktreePathTemplate": "$BASE_PATH.worktree",
//	  "postCreateCmd": ["npm install"],
//	  "terminalCommand": "code $WORKTREE_PATH",
//	  "branchPrefix": "feature/"
//	}
package config
