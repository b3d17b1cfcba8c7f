// Package orchestrator drives the worktree lifecycle: create, close and
// batch delete.
//
// Each flow is an explicit state machine. A front end (prompt UI or CLI
// flags) submits values and reads the state back; the flow never renders
// anything itself. Every external step (git, file copy, shell command) runs
// to completion before the next one starts, and nothing is rolled back: a
// failed create reports the last step that succeeded so the user can clean
// up by hand.
package orchestrator
