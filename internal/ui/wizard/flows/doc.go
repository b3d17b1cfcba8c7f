// Package flows builds the command-specific wizards.
//
//   - [CreateWizard]: collect directory, source and branch for a create flow
//   - [DeleteWizard]: pick worktrees for a batch delete
package flows
