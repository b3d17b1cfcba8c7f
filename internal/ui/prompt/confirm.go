package prompt

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"

	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
)

// ConfirmResult holds the result of a confirmation prompt.
type ConfirmResult struct {
	Confirmed bool
	Cancelled bool
}

type confirmModel struct {
	prompt     string
	defaultYes bool
	confirmed  bool
	done       bool
	cancelled  bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch msg.String() {
		case "y", "Y":
			m.confirmed = true
			m.done = true
			return m, tea.Quit
		case "n", "N":
			m.confirmed = false
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		case "enter":
			m.confirmed = m.defaultYes
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	hint := "[y/N]"
	if m.defaultYes {
		hint = "[Y/n]"
	}
	return tea.NewView(fmt.Sprintf("%s %s ", m.prompt, styles.MutedStyle.Render(hint)))
}

// Confirm shows a yes/no prompt on stderr. Enter picks no.
func Confirm(prompt string) (ConfirmResult, error) {
	return runConfirm(confirmModel{prompt: prompt})
}

// ConfirmDefaultYes is Confirm with enter picking yes.
func ConfirmDefaultYes(prompt string) (ConfirmResult, error) {
	return runConfirm(confirmModel{prompt: prompt, defaultYes: true})
}

func runConfirm(model confirmModel) (ConfirmResult, error) {
	p := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return ConfirmResult{}, err
	}
	m := finalModel.(confirmModel)
	return ConfirmResult{
		Confirmed: m.confirmed,
		Cancelled: m.cancelled,
	}, nil
}
