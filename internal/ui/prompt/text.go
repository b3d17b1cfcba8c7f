package prompt

import (
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
)

// TextInputResult holds the result of a text input prompt.
type TextInputResult struct {
	Value     string
	Cancelled bool
}

type textInputModel struct {
	textInput textinput.Model
	prompt    string
	validate  func(string) error
	errMsg    string
	done      bool
	cancelled bool
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch msg.String() {
		case "enter":
			if m.validate != nil {
				if err := m.validate(strings.TrimSpace(m.textInput.Value())); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
		m.errMsg = ""
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m textInputModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	var b strings.Builder
	b.WriteString(m.prompt + "\n" + m.textInput.View())
	if m.errMsg != "" {
		b.WriteString("\n" + styles.ErrorStyle.Render(m.errMsg))
	}
	return tea.NewView(b.String())
}

// TextInput shows a text input prompt on stderr. validate may be nil;
// when set, enter is refused until it accepts the trimmed value.
func TextInput(prompt, initial string, validate func(string) error) (TextInputResult, error) {
	ti := textinput.New()
	ti.SetValue(initial)
	ti.Focus()
	ti.CharLimit = 156
	ti.SetWidth(50)

	model := textInputModel{
		textInput: ti,
		prompt:    prompt,
		validate:  validate,
	}
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return TextInputResult{}, err
	}
	m := finalModel.(textInputModel)
	return TextInputResult{
		Value:     strings.TrimSpace(m.textInput.Value()),
		Cancelled: m.cancelled,
	}, nil
}
