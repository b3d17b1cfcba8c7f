// Package steps provides reusable step components for wizards.
package steps

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/framework"
)

// TextInputStep allows entering free-form text.
type TextInputStep struct {
	id              string
	title           string
	prompt          string
	input           textinput.Model
	validate        func(string) error
	hint            func(string) string
	allowEmpty      bool
	submitted       bool
	submitValue     string
	validationError string
}

// NewTextInput creates a new text input step with a blinking bar cursor.
func NewTextInput(id, title, prompt, placeholder string) *TextInputStep {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 156
	ti.SetWidth(40)

	st := ti.Styles()
	st.Cursor.Shape = tea.CursorBar
	st.Cursor.Blink = true
	ti.SetStyles(st)

	return &TextInputStep{
		id:     id,
		title:  title,
		prompt: prompt,
		input:  ti,
	}
}

func (s *TextInputStep) ID() string    { return s.id }
func (s *TextInputStep) Title() string { return s.title }

func (s *TextInputStep) Init() tea.Cmd {
	s.input.Focus()
	return textinput.Blink
}

func (s *TextInputStep) Update(msg tea.KeyPressMsg) (framework.Step, tea.Cmd, framework.StepResult) {
	switch msg.String() {
	case "enter":
		return s.submit()
	case "left":
		// left moves the caret unless it is already at the start
		if s.input.Position() == 0 {
			return s, nil, framework.StepBack
		}
	}

	s.validationError = ""

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd, framework.StepContinue
}

func (s *TextInputStep) submit() (framework.Step, tea.Cmd, framework.StepResult) {
	value := strings.TrimSpace(s.input.Value())
	if value == "" && !s.allowEmpty {
		s.validationError = "Value cannot be empty"
		return s, nil, framework.StepContinue
	}
	if s.validate != nil {
		if err := s.validate(value); err != nil {
			s.validationError = err.Error()
			return s, nil, framework.StepContinue
		}
	}
	s.validationError = ""
	s.submitted = true
	s.submitValue = value
	return s, nil, framework.StepAdvance
}

func (s *TextInputStep) View() string {
	var b strings.Builder
	b.WriteString(s.prompt + "\n\n")
	b.WriteString(s.input.View())
	if s.hint != nil {
		if h := s.hint(strings.TrimSpace(s.input.Value())); h != "" {
			b.WriteString("\n" + styles.Wizard.Note.Render(h))
		}
	}
	if s.validationError != "" {
		b.WriteString("\n" + styles.Wizard.Problem.Render(s.validationError))
	}
	return b.String()
}

func (s *TextInputStep) Help() string {
	return "type text • ← back • enter confirm • esc cancel"
}

func (s *TextInputStep) Value() framework.StepValue {
	return framework.StepValue{
		Key:   s.id,
		Label: s.submitValue,
		Raw:   s.submitValue,
	}
}

func (s *TextInputStep) IsComplete() bool {
	return s.submitted
}

func (s *TextInputStep) HasClearableInput() bool {
	return s.input.Value() != ""
}

func (s *TextInputStep) ClearInput() tea.Cmd {
	s.input.SetValue("")
	s.validationError = ""
	return nil
}

// SetValidate sets a validation function run on enter. A failing
// validation keeps the step open and shows the error.
func (s *TextInputStep) SetValidate(fn func(string) error) *TextInputStep {
	s.validate = fn
	return s
}

// SetHint sets a line rendered under the input from its current value.
func (s *TextInputStep) SetHint(fn func(string) string) *TextInputStep {
	s.hint = fn
	return s
}

// AllowEmpty lets enter submit an empty value.
func (s *TextInputStep) AllowEmpty() *TextInputStep {
	s.allowEmpty = true
	return s
}

// SetValue sets the current input value.
func (s *TextInputStep) SetValue(value string) {
	s.input.SetValue(value)
	s.input.CursorEnd()
}

// GetValue returns the current input value (not yet submitted).
func (s *TextInputStep) GetValue() string {
	return s.input.Value()
}

// Error returns the validation message currently shown.
func (s *TextInputStep) Error() string {
	return s.validationError
}

// String implements fmt.Stringer for debugging.
func (s *TextInputStep) String() string {
	return fmt.Sprintf("TextInputStep{id=%s, submitted=%v, value=%q}",
		s.id, s.submitted, s.submitValue)
}
