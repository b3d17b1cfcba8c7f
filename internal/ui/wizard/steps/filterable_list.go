package steps

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/sahilm/fuzzy"

	"github.com/Tsdevendra1/branchlet/internal/ui/styles"
	"github.com/Tsdevendra1/branchlet/internal/ui/wizard/framework"
)

const maxVisible = 10

// optionSource implements fuzzy.Source for options.
type optionSource []framework.Option

func (s optionSource) String(i int) string { return s[i].Label }
func (s optionSource) Len() int            { return len(s) }

// FilterableListStep selects one or more options from a fuzzy-filtered
// list. Disabled options are shown but the cursor skips them.
type FilterableListStep struct {
	id       string
	title    string
	prompt   string
	options  []framework.Option
	filtered []fuzzy.Match
	cursor   int // position in filtered
	selected int // option index, -1 if none (single-select)
	filter   string

	validate        func(framework.Option) error
	validationError string

	multiSelect   bool
	multiSelected map[int]bool
	minSelect     int

	runeFilter framework.RuneFilter
}

// NewFilterableList creates a new filterable single-select step.
func NewFilterableList(id, title, prompt string, options []framework.Option) *FilterableListStep {
	s := &FilterableListStep{
		id:       id,
		title:    title,
		prompt:   prompt,
		options:  options,
		selected: -1,
	}
	s.applyFilter()
	s.cursor = s.findNextEnabled(0)
	if s.cursor < 0 {
		s.cursor = 0
	}
	return s
}

func (s *FilterableListStep) ID() string    { return s.id }
func (s *FilterableListStep) Title() string { return s.title }

// WithValidate sets a check run when an option is chosen.
// A failing check keeps the step open and shows the error.
func (s *FilterableListStep) WithValidate(fn func(framework.Option) error) *FilterableListStep {
	s.validate = fn
	return s
}

// WithRuneFilter restricts the characters accepted by the filter.
func (s *FilterableListStep) WithRuneFilter(f framework.RuneFilter) *FilterableListStep {
	s.runeFilter = f
	return s
}

// WithMultiSelect switches to multi-select: space toggles, enter confirms
// once at least minSelect options are selected.
func (s *FilterableListStep) WithMultiSelect(minSelect int) *FilterableListStep {
	s.multiSelect = true
	s.multiSelected = make(map[int]bool)
	s.minSelect = minSelect
	return s
}

// SetSelected preselects options by index in multi-select mode.
func (s *FilterableListStep) SetSelected(indices []int) *FilterableListStep {
	if s.multiSelected == nil {
		s.multiSelected = make(map[int]bool)
	}
	for _, idx := range indices {
		if idx >= 0 && idx < len(s.options) && !s.options[idx].Disabled {
			s.multiSelected[idx] = true
		}
	}
	return s
}

// GetSelectedIndices returns the selected option indices in option order.
func (s *FilterableListStep) GetSelectedIndices() []int {
	var indices []int
	for idx := range s.options {
		if s.multiSelected[idx] {
			indices = append(indices, idx)
		}
	}
	return indices
}

func (s *FilterableListStep) Init() tea.Cmd {
	return nil
}

func (s *FilterableListStep) Update(msg tea.KeyPressMsg) (framework.Step, tea.Cmd, framework.StepResult) {
	switch msg.String() {
	case "up":
		if prev := s.findPrevEnabled(s.cursor - 1); prev >= 0 {
			s.cursor = prev
		}
	case "down":
		if next := s.findNextEnabled(s.cursor + 1); next >= 0 {
			s.cursor = next
		}
	case "home", "pgup":
		if first := s.findNextEnabled(0); first >= 0 {
			s.cursor = first
		}
	case "end", "pgdown":
		if last := s.findPrevEnabled(len(s.filtered) - 1); last >= 0 {
			s.cursor = last
		}
	case "space":
		if s.multiSelect {
			s.toggle()
			return s, nil, framework.StepContinue
		}
		s.appendFilter(" ")
	case "enter", "right":
		return s.choose()
	case "left":
		return s, nil, framework.StepBack
	case "backspace":
		if s.filter != "" {
			runes := []rune(s.filter)
			s.filter = string(runes[:len(runes)-1])
			s.applyFilter()
		}
	case "alt+backspace", "ctrl+w":
		if s.filter != "" {
			s.filter = framework.DeleteLastWord(s.filter)
			s.applyFilter()
		}
	default:
		s.appendFilter(msg.Text)
	}
	return s, nil, framework.StepContinue
}

func (s *FilterableListStep) appendFilter(text string) {
	if text = framework.FilterRunes(text, s.runeFilter); text != "" {
		s.filter += text
		s.applyFilter()
	}
}

func (s *FilterableListStep) toggle() {
	idx, ok := s.cursorOption()
	if !ok {
		return
	}
	if s.multiSelected[idx] {
		delete(s.multiSelected, idx)
	} else {
		s.multiSelected[idx] = true
	}
	s.validationError = ""
}

func (s *FilterableListStep) choose() (framework.Step, tea.Cmd, framework.StepResult) {
	if s.multiSelect {
		if !s.canAdvanceMulti() {
			s.validationError = fmt.Sprintf("select at least %d", max(1, s.minSelect))
			return s, nil, framework.StepContinue
		}
		s.validationError = ""
		return s, nil, framework.StepAdvance
	}

	idx, ok := s.cursorOption()
	if !ok {
		return s, nil, framework.StepContinue
	}
	if s.validate != nil {
		if err := s.validate(s.options[idx]); err != nil {
			s.validationError = err.Error()
			return s, nil, framework.StepContinue
		}
	}
	s.validationError = ""
	s.selected = idx
	return s, nil, framework.StepAdvance
}

// cursorOption returns the option index under the cursor if it is selectable.
func (s *FilterableListStep) cursorOption() (int, bool) {
	if s.cursor < 0 || s.cursor >= len(s.filtered) {
		return 0, false
	}
	idx := s.filtered[s.cursor].Index
	if s.options[idx].Disabled {
		return 0, false
	}
	return idx, true
}

func (s *FilterableListStep) canAdvanceMulti() bool {
	return len(s.multiSelected) >= max(1, s.minSelect)
}

func (s *FilterableListStep) View() string {
	var b strings.Builder
	if s.multiSelect {
		fmt.Fprintf(&b, "%s (%d selected):\n", s.prompt, len(s.multiSelected))
	} else {
		b.WriteString(s.prompt + ":\n")
	}
	b.WriteString(styles.Wizard.FilterLabel.Render("Filter: ") + styles.Wizard.Filter.Render(s.filter) + "\n\n")

	start := 0
	if s.cursor >= maxVisible {
		start = s.cursor - maxVisible + 1
	}
	end := min(start+maxVisible, len(s.filtered))

	if start > 0 {
		b.WriteString(styles.Wizard.Option.Render("  ↑ more above") + "\n")
	}

	for i := start; i < end; i++ {
		match := s.filtered[i]
		opt := s.options[match.Index]

		if opt.Disabled {
			label := opt.Label
			if opt.Description != "" {
				label += " (" + opt.Description + ")"
			}
			b.WriteString("  " + styles.Wizard.Disabled.Render(label) + "\n")
			continue
		}

		cursor := "  "
		style := styles.Wizard.Option
		if i == s.cursor {
			cursor = "> "
			style = styles.Wizard.Cursor
		}

		checkbox := ""
		if s.multiSelect {
			checkbox = "[ ] "
			if s.multiSelected[match.Index] {
				checkbox = "[✓] "
			}
		}

		label := style.Render(opt.Label)
		if s.filter != "" && len(match.MatchedIndexes) > 0 {
			label = highlightMatches(opt.Label, match.MatchedIndexes, i == s.cursor)
		}

		b.WriteString(cursor + checkbox + label + "\n")
		if opt.Description != "" {
			indent := "    "
			if s.multiSelect {
				indent = "        "
			}
			b.WriteString(indent + styles.Wizard.Description.Render(opt.Description) + "\n")
		}
	}

	if end < len(s.filtered) {
		b.WriteString(styles.Wizard.Option.Render("  ↓ more below") + "\n")
	}
	if len(s.filtered) == 0 {
		b.WriteString(styles.Wizard.Option.Render("  No matching items") + "\n")
	}
	if s.validationError != "" {
		b.WriteString("\n" + styles.Wizard.Problem.Render(s.validationError))
	}

	return b.String()
}

func (s *FilterableListStep) Help() string {
	if s.multiSelect {
		return "↑/↓ move • space toggle • type to filter • ← back • enter confirm • esc cancel"
	}
	return "↑/↓ select • type to filter • ← back • enter confirm • esc cancel"
}

func (s *FilterableListStep) Value() framework.StepValue {
	if s.multiSelect {
		var labels []string
		var values []any
		for _, idx := range s.GetSelectedIndices() {
			labels = append(labels, s.options[idx].Label)
			values = append(values, s.options[idx].Value)
		}
		return framework.StepValue{
			Key:   s.id,
			Label: strings.Join(labels, ", "),
			Raw:   values,
		}
	}

	if s.selected < 0 {
		return framework.StepValue{Key: s.id}
	}
	opt := s.options[s.selected]
	return framework.StepValue{
		Key:   s.id,
		Label: opt.Label,
		Raw:   opt.Value,
	}
}

func (s *FilterableListStep) IsComplete() bool {
	if s.multiSelect {
		return s.canAdvanceMulti()
	}
	return s.selected >= 0
}

func (s *FilterableListStep) HasClearableInput() bool {
	return s.filter != ""
}

func (s *FilterableListStep) ClearInput() tea.Cmd {
	s.filter = ""
	s.applyFilter()
	return nil
}

// GetFilter returns the current filter string.
func (s *FilterableListStep) GetFilter() string {
	return s.filter
}

// GetCursor returns the cursor position in the filtered list.
func (s *FilterableListStep) GetCursor() int {
	return s.cursor
}

// FilteredCount returns the number of options matching the filter.
func (s *FilterableListStep) FilteredCount() int {
	return len(s.filtered)
}

// Error returns the validation message currently shown.
func (s *FilterableListStep) Error() string {
	return s.validationError
}

func highlightMatches(label string, matchedIndexes []int, isSelected bool) string {
	matchSet := make(map[int]bool, len(matchedIndexes))
	for _, idx := range matchedIndexes {
		matchSet[idx] = true
	}

	// fuzzy reports byte offsets
	var result strings.Builder
	for i, r := range label {
		char := string(r)
		switch {
		case matchSet[i]:
			result.WriteString(styles.Wizard.Match.Render(char))
		case isSelected:
			result.WriteString(styles.Wizard.Cursor.Render(char))
		default:
			result.WriteString(styles.Wizard.Option.Render(char))
		}
	}
	return result.String()
}

func (s *FilterableListStep) applyFilter() {
	if s.filter == "" {
		s.filtered = make([]fuzzy.Match, len(s.options))
		for i := range s.options {
			s.filtered[i] = fuzzy.Match{Str: s.options[i].Label, Index: i}
		}
	} else {
		s.filtered = fuzzy.FindFrom(s.filter, optionSource(s.options))
	}

	if s.cursor >= len(s.filtered) {
		s.cursor = max(0, len(s.filtered)-1)
	}
	if _, ok := s.cursorOption(); !ok {
		if next := s.findNextEnabled(s.cursor); next >= 0 {
			s.cursor = next
		} else if prev := s.findPrevEnabled(s.cursor); prev >= 0 {
			s.cursor = prev
		}
	}
}

func (s *FilterableListStep) findNextEnabled(from int) int {
	for i := max(0, from); i < len(s.filtered); i++ {
		if !s.options[s.filtered[i].Index].Disabled {
			return i
		}
	}
	return -1
}

func (s *FilterableListStep) findPrevEnabled(from int) int {
	for i := min(from, len(s.filtered)-1); i >= 0; i-- {
		if !s.options[s.filtered[i].Index].Disabled {
			return i
		}
	}
	return -1
}

// String implements fmt.Stringer for debugging.
func (s *FilterableListStep) String() string {
	return fmt.Sprintf("FilterableListStep{id=%s, cursor=%d, selected=%d, filter=%q}",
		s.id, s.cursor, s.selected, s.filter)
}
