// Package prompt provides single-question terminal prompts.
//
// Prompts render on stderr so stdout stays free for the shell wrapper.
// Multi-step input lives in the wizard packages.
//
//   - [Confirm] and [ConfirmDefaultYes]: yes/no questions
//   - [TextInput]: one line of text with optional validation
//   - [Select]: pick one entry from a filterable list
package prompt
