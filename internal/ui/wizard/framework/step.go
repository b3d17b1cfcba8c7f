package framework

import tea "charm.land/bubbletea/v2"

// StepResult indicates what action to take after a step update.
type StepResult int

const (
	// StepContinue means stay on the current step.
	StepContinue StepResult = iota
	// StepAdvance means move to the next step.
	StepAdvance
	// StepBack means move to the previous step.
	StepBack
)

// StepValue holds the result of a completed step.
type StepValue struct {
	Key   string // step id
	Label string // display value
	Raw   any    // string for inputs, []any for multi-select
}

// Step is one page of a wizard.
type Step interface {
	ID() string
	Title() string

	// Init returns an initial command when entering this step.
	Init() tea.Cmd

	// Update handles a key press and reports whether to navigate.
	Update(msg tea.KeyPressMsg) (Step, tea.Cmd, StepResult)

	View() string
	Help() string

	// Value returns the step's value for the summary.
	Value() StepValue

	// IsComplete returns true once the step holds an accepted value.
	IsComplete() bool

	// HasClearableInput reports whether esc should clear input instead of
	// cancelling the wizard.
	HasClearableInput() bool
	ClearInput() tea.Cmd
}

// Option is a selectable item in list steps.
type Option struct {
	Label       string
	Value       any
	Description string // shown under the label, or as the disabled reason
	Disabled    bool
}
