package orchestrator

import "slices"

// CreateState is the state of a create flow.
type CreateState int

const (
	StateCollectingDirectoryName CreateState = iota
	StateCollectingSourceBranch
	StateCollectingNewBranch
	StateConfirming
	StateCreating
	StateRunningPostCreate
	StateSucceeded
	StateFailed
)

var createStateNames = map[CreateState]string{
	StateCollectingDirectoryName: "collecting-directory-name",
	StateCollectingSourceBranch:  "collecting-source-branch",
	StateCollectingNewBranch:     "collecting-new-branch",
	StateConfirming:              "confirming",
	StateCreating:                "creating",
	StateRunningPostCreate:       "running-post-create-commands",
	StateSucceeded:               "succeeded",
	StateFailed:                  "failed",
}

func (s CreateState) String() string {
	if name, ok := createStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsInput reports whether the state waits for a user submission.
func (s CreateState) IsInput() bool {
	return s <= StateConfirming
}

// createTransitions lists every allowed move of the create flow.
// Input states can step back; Creating may bounce back to an input state
// when a name fails validation at confirmation time.
var createTransitions = map[CreateState][]CreateState{
	StateCollectingDirectoryName: {StateCollectingSourceBranch, StateCreating},
	StateCollectingSourceBranch:  {StateCollectingNewBranch, StateCollectingDirectoryName},
	StateCollectingNewBranch:     {StateConfirming, StateCollectingSourceBranch},
	StateConfirming:              {StateCreating, StateCollectingNewBranch},
	StateCreating: {
		StateRunningPostCreate, StateSucceeded, StateFailed,
		StateCollectingDirectoryName, StateCollectingNewBranch,
	},
	StateRunningPostCreate: {StateSucceeded, StateFailed},
	StateFailed:            {StateCollectingDirectoryName},
	StateSucceeded:         nil,
}

// CanTransition reports whether the create flow may move from one state to another.
func CanTransition(from, to CreateState) bool {
	return slices.Contains(createTransitions[from], to)
}

// CloseState is the state of a close flow.
type CloseState int

const (
	CloseCheckingPreconditions CloseState = iota
	CloseConfirming
	CloseClosing
	CloseFailed
)

func (s CloseState) String() string {
	switch s {
	case CloseCheckingPreconditions:
		return "checking-preconditions"
	case CloseConfirming:
		return "confirming"
	case CloseClosing:
		return "closing"
	case CloseFailed:
		return "failed"
	}
	return "unknown"
}

var closeTransitions = map[CloseState][]CloseState{
	CloseCheckingPreconditions: {CloseConfirming, CloseFailed},
	CloseConfirming:            {CloseClosing, CloseFailed},
}

// CanTransitionClose reports whether the close flow may move from one state to another.
func CanTransitionClose(from, to CloseState) bool {
	return slices.Contains(closeTransitions[from], to)
}

// Step identifies one side-effecting step of the create flow.
type Step int

const (
	StepNone Step = iota
	StepValidate
	StepResolveSource
	StepResolvePath
	StepCreateWorktree
	StepCopyFiles
	StepPostCreate
	StepOpenTerminal
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "nothing"
	case StepValidate:
		return "validation"
	case StepResolveSource:
		return "resolving source branch"
	case StepResolvePath:
		return "resolving worktree path"
	case StepCreateWorktree:
		return "creating worktree"
	case StepCopyFiles:
		return "copying files"
	case StepPostCreate:
		return "running post-create commands"
	case StepOpenTerminal:
		return "opening terminal"
	}
	return "unknown step"
}
