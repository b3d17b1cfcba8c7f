package prompt

import (
	"os"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
)

// Option is one entry of a Select prompt.
type Option struct {
	Label       string
	Description string
}

// SelectResult holds the result of a selection prompt.
type SelectResult struct {
	Value     string
	Index     int
	Cancelled bool
}

type listItem struct {
	opt   Option
	index int
}

func (i listItem) Title() string       { return i.opt.Label }
func (i listItem) Description() string { return i.opt.Description }
func (i listItem) FilterValue() string { return i.opt.Label + " " + i.opt.Description }

type selectModel struct {
	list      list.Model
	done      bool
	cancelled bool
	selected  int
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		// while filtering, enter and esc belong to the filter input
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(listItem); ok {
				m.selected = item.index
			}
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc", "q":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m selectModel) View() tea.View {
	if m.done {
		return tea.NewView("")
	}
	return tea.NewView(m.list.View())
}

// Select shows a filterable list on stderr and returns the chosen option.
// An empty option list counts as cancelled.
func Select(prompt string, options []Option) (SelectResult, error) {
	if len(options) == 0 {
		return SelectResult{Cancelled: true}, nil
	}

	items := make([]list.Item, len(options))
	showDesc := false
	for i, opt := range options {
		items[i] = listItem{opt: opt, index: i}
		showDesc = showDesc || opt.Description != ""
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = showDesc
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(styles.Accent).
		Bold(true)
	delegate.Styles.SelectedDesc = styles.MutedStyle

	height := len(options) + 6
	if showDesc {
		height = 2*len(options) + 6
	}
	l := list.New(items, delegate, 70, min(height, 24))
	l.Title = prompt
	l.SetShowStatusBar(false)
	l.SetShowHelp(true)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	p := tea.NewProgram(selectModel{list: l, selected: -1}, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return SelectResult{}, err
	}
	m := finalModel.(selectModel)

	if m.cancelled || m.selected < 0 || m.selected >= len(options) {
		return SelectResult{Cancelled: true}, nil
	}
	return SelectResult{
		Value: options[m.selected].Label,
		Index: m.selected,
	}, nil
}
