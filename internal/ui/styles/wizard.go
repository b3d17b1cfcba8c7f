package styles

import "charm.land/lipgloss/v2"

// WizardStyles is the look of the step-by-step wizards.
type WizardStyles struct {
	Frame lipgloss.Style
	Title lipgloss.Style

	// Step tabs along the top.
	TabActive  lipgloss.Style
	TabDone    lipgloss.Style
	TabCheck   lipgloss.Style
	TabPending lipgloss.Style
	TabArrow   lipgloss.Style

	Option      lipgloss.Style
	Cursor      lipgloss.Style
	Disabled    lipgloss.Style
	Description lipgloss.Style
	Match       lipgloss.Style

	Filter      lipgloss.Style
	FilterLabel lipgloss.Style

	// Label and Value render "label: value" summary rows.
	Label lipgloss.Style
	Value lipgloss.Style

	Note    lipgloss.Style
	Help    lipgloss.Style
	Problem lipgloss.Style
}

// Wizard holds the wizard styles of the active theme. Rebuilt by Init.
var Wizard WizardStyles

func newWizardStyles(t Theme) WizardStyles {
	option := lipgloss.NewStyle().Foreground(t.Normal)
	cursor := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.Muted)

	return WizardStyles{
		Frame: lipgloss.NewStyle().
			BorderLeft(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(t.Primary).
			Margin(1, 0).
			Padding(0, 2),
		Title: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),

		TabActive:  cursor,
		TabDone:    option,
		TabCheck:   lipgloss.NewStyle().Foreground(t.Success),
		TabPending: muted,
		TabArrow:   muted,

		Option:      option,
		Cursor:      cursor,
		Disabled:    muted,
		Description: muted,
		Match:       cursor.Underline(true),

		Filter:      cursor,
		FilterLabel: muted,

		Label: option,
		Value: cursor,

		Note:    lipgloss.NewStyle().Foreground(t.Info).Italic(true),
		Help:    muted.MarginTop(1),
		Problem: lipgloss.NewStyle().Foreground(t.Error),
	}
}
