// Package framework runs multi-step interactive wizards.
//
// A wizard shows one step at a time with a tab bar of all steps and
// finishes on a summary page. Steps validate their own input; hooks let
// the caller mirror navigation into its own state.
package framework

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"

	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
)

// Wizard orchestrates a multi-step interactive flow.
type Wizard struct {
	title          string
	steps          []Step
	stepIndex      map[string]int
	currentStep    int
	skipConditions map[string]func(*Wizard) bool
	onComplete     map[string]func(*Wizard)
	onBack         map[string]func(*Wizard)
	infoLine       func(*Wizard) string
	summaryTitle   string
	summaryBody    func(*Wizard) string
	skipSummary    bool
	done           bool
	cancelled      bool
	width          int
	height         int
	confirmedSteps map[string]bool
}

// NewWizard creates a new wizard with the given title.
func NewWizard(title string) *Wizard {
	return &Wizard{
		title:          title,
		stepIndex:      make(map[string]int),
		skipConditions: make(map[string]func(*Wizard) bool),
		onComplete:     make(map[string]func(*Wizard)),
		onBack:         make(map[string]func(*Wizard)),
		summaryTitle:   "Review and confirm",
		width:          60,
		height:         20,
		confirmedSteps: make(map[string]bool),
	}
}

// AddStep adds a step to the wizard.
func (w *Wizard) AddStep(step Step) *Wizard {
	w.stepIndex[step.ID()] = len(w.steps)
	w.steps = append(w.steps, step)
	return w
}

// SkipWhen sets a condition for skipping a step.
func (w *Wizard) SkipWhen(stepID string, condition func(*Wizard) bool) *Wizard {
	w.skipConditions[stepID] = condition
	return w
}

// OnComplete sets a callback run when the user advances past a step.
func (w *Wizard) OnComplete(stepID string, callback func(*Wizard)) *Wizard {
	w.onComplete[stepID] = callback
	return w
}

// OnBack sets a callback run when the user leaves a step backwards.
// The id "summary" addresses the summary page.
func (w *Wizard) OnBack(stepID string, callback func(*Wizard)) *Wizard {
	w.onBack[stepID] = callback
	return w
}

// WithSummary sets the summary page title.
func (w *Wizard) WithSummary(title string) *Wizard {
	w.summaryTitle = title
	return w
}

// WithSummaryBody replaces the default list of step values on the summary page.
func (w *Wizard) WithSummaryBody(fn func(*Wizard) string) *Wizard {
	w.summaryBody = fn
	return w
}

// WithInfoLine sets a dynamic info line function.
func (w *Wizard) WithInfoLine(fn func(*Wizard) string) *Wizard {
	w.infoLine = fn
	return w
}

// WithSkipSummary finishes after the last step without a summary page.
func (w *Wizard) WithSkipSummary(skip bool) *Wizard {
	w.skipSummary = skip
	return w
}

// GetStep returns a step by ID.
func (w *Wizard) GetStep(id string) Step {
	if idx, ok := w.stepIndex[id]; ok {
		return w.steps[idx]
	}
	return nil
}

// GetValue returns a step's value by ID.
func (w *Wizard) GetValue(id string) StepValue {
	if step := w.GetStep(id); step != nil {
		return step.Value()
	}
	return StepValue{}
}

// GetString returns a step's value as a string.
func (w *Wizard) GetString(id string) string {
	v := w.GetValue(id)
	if s, ok := v.Raw.(string); ok {
		return s
	}
	return v.Label
}

// GetStrings returns a multi-select step's values as strings.
func (w *Wizard) GetStrings(id string) []string {
	switch raw := w.GetValue(id).Raw.(type) {
	case []any:
		strs := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok {
				strs = append(strs, s)
			}
		}
		return strs
	case []string:
		return raw
	}
	return nil
}

// IsCancelled returns true if the wizard was cancelled.
func (w *Wizard) IsCancelled() bool {
	return w.cancelled
}

// IsDone returns true once the wizard was confirmed or cancelled.
func (w *Wizard) IsDone() bool {
	return w.done
}

// Run executes the wizard on stderr so stdout stays free for the
// navigation handoff.
func (w *Wizard) Run() (*Wizard, error) {
	if len(w.steps) == 0 {
		return w, errors.New("wizard has no steps")
	}

	profile := colorprofile.Detect(os.Stderr, os.Environ())
	p := tea.NewProgram(w,
		tea.WithOutput(os.Stderr),
		tea.WithColorProfile(profile),
	)
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(*Wizard), nil
}

func (w *Wizard) Init() tea.Cmd {
	if len(w.steps) == 0 {
		return nil
	}
	w.currentStep = w.findNextStep(-1)
	if w.currentStep < 0 {
		w.currentStep = len(w.steps)
		return nil
	}
	return w.steps[w.currentStep].Init()
}

func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return w.cancel()
		case "esc":
			if w.currentStep < len(w.steps) {
				if step := w.steps[w.currentStep]; step.HasClearableInput() {
					return w, step.ClearInput()
				}
			}
			return w.cancel()
		}

		if w.currentStep >= len(w.steps) {
			return w.handleSummaryInput(msg)
		}

		step := w.steps[w.currentStep]
		newStep, cmd, result := step.Update(msg)
		w.steps[w.currentStep] = newStep

		switch result {
		case StepAdvance:
			w.confirmedSteps[step.ID()] = true
			if cb, ok := w.onComplete[step.ID()]; ok {
				cb(w)
			}
			next := w.findNextStep(w.currentStep)
			if next < 0 {
				if w.skipSummary {
					w.done = true
					return w, tea.Quit
				}
				w.currentStep = len(w.steps)
				return w, cmd
			}
			w.currentStep = next
			return w, tea.Batch(cmd, w.steps[next].Init())
		case StepBack:
			if prev := w.findPrevStep(w.currentStep); prev >= 0 {
				if cb, ok := w.onBack[step.ID()]; ok {
					cb(w)
				}
				w.currentStep = prev
				return w, tea.Batch(cmd, w.steps[prev].Init())
			}
		}
		return w, cmd
	}

	return w, nil
}

func (w *Wizard) cancel() (tea.Model, tea.Cmd) {
	w.cancelled = true
	w.done = true
	return w, tea.Quit
}

func (w *Wizard) View() tea.View {
	if w.done {
		return tea.NewView("")
	}

	var b strings.Builder

	b.WriteString(styles.Wizard.Title.Render(w.title))
	b.WriteString("\n\n")

	if w.infoLine != nil {
		if info := w.infoLine(w); info != "" {
			b.WriteString(styles.Wizard.Note.Render(info))
			b.WriteString("\n\n")
		}
	}

	if len(w.steps) > 1 || !w.skipSummary {
		b.WriteString(w.renderStepTabs())
		b.WriteString("\n\n")
	}

	if w.currentStep >= len(w.steps) {
		b.WriteString(w.renderSummary())
		b.WriteString("\n")
		b.WriteString(styles.Wizard.Help.Render("← back • enter confirm • esc cancel"))
	} else {
		b.WriteString(w.steps[w.currentStep].View())
		b.WriteString("\n")
		b.WriteString(styles.Wizard.Help.Render(w.steps[w.currentStep].Help()))
	}

	return tea.NewView(styles.Wizard.Frame.Render(b.String()))
}

func (w *Wizard) handleSummaryInput(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		w.done = true
		return w, tea.Quit
	case "left":
		if prev := w.findPrevStep(len(w.steps)); prev >= 0 {
			if cb, ok := w.onBack["summary"]; ok {
				cb(w)
			}
			w.currentStep = prev
			return w, w.steps[prev].Init()
		}
	}
	return w, nil
}

func (w *Wizard) renderStepTabs() string {
	var tabs []string
	displayNum := 1

	for i, step := range w.steps {
		if w.skipped(step) {
			continue
		}

		label := fmt.Sprintf("%d. %s", displayNum, step.Title())
		displayNum++

		mark := "  "
		if w.confirmedSteps[step.ID()] {
			mark = styles.Wizard.TabCheck.Render("✓ ")
		}
		switch {
		case i == w.currentStep:
			tabs = append(tabs, mark+styles.Wizard.TabActive.Render(label))
		case w.confirmedSteps[step.ID()]:
			tabs = append(tabs, mark+styles.Wizard.TabDone.Render(label))
		default:
			tabs = append(tabs, mark+styles.Wizard.TabPending.Render(label))
		}
	}

	if !w.skipSummary {
		label := fmt.Sprintf("%d. Summary", displayNum)
		if w.currentStep >= len(w.steps) {
			tabs = append(tabs, "  "+styles.Wizard.TabActive.Render(label))
		} else {
			tabs = append(tabs, "  "+styles.Wizard.TabPending.Render(label))
		}
	}

	return strings.Join(tabs, styles.Wizard.TabArrow.Render(" → "))
}

func (w *Wizard) renderSummary() string {
	var b strings.Builder
	b.WriteString(w.summaryTitle + ":\n\n")

	if w.summaryBody != nil {
		b.WriteString(w.summaryBody(w))
		return b.String()
	}

	for _, step := range w.steps {
		if w.skipped(step) {
			continue
		}
		v := step.Value()
		if v.Label == "" {
			continue
		}
		b.WriteString(styles.Wizard.Label.Render(step.Title()+": ") +
			styles.Wizard.Value.Render(v.Label) + "\n")
	}
	return b.String()
}

func (w *Wizard) skipped(step Step) bool {
	cond, ok := w.skipConditions[step.ID()]
	return ok && cond(w)
}

func (w *Wizard) findNextStep(from int) int {
	for i := from + 1; i < len(w.steps); i++ {
		if !w.skipped(w.steps[i]) {
			return i
		}
	}
	return -1
}

func (w *Wizard) findPrevStep(from int) int {
	for i := from - 1; i >= 0; i-- {
		if !w.skipped(w.steps[i]) {
			return i
		}
	}
	return -1
}

// CurrentStepID returns the current step's ID, or "summary" if on summary.
func (w *Wizard) CurrentStepID() string {
	if w.currentStep >= len(w.steps) {
		return "summary"
	}
	return w.steps[w.currentStep].ID()
}

// StepCount returns the number of steps (excluding summary).
func (w *Wizard) StepCount() int {
	return len(w.steps)
}

// AllStepsComplete returns true if every non-skipped step holds a value.
func (w *Wizard) AllStepsComplete() bool {
	for _, step := range w.steps {
		if !w.skipped(step) && !step.IsComplete() {
			return false
		}
	}
	return true
}
