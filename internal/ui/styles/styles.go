// Package styles provides shared lipgloss styles for UI components.
//
// Colors come from the active [Theme]. Call [Init] once before rendering;
// until then the default theme is used.
package styles

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette of the active theme. Updated by Init.
var (
	Primary color.Color = DefaultTheme.Primary
	Accent  color.Color = DefaultTheme.Accent
	Success color.Color = DefaultTheme.Success
	Error   color.Color = DefaultTheme.Error
	Muted   color.Color = DefaultTheme.Muted
	Normal  color.Color = DefaultTheme.Normal
	Info    color.Color = DefaultTheme.Info
	Warning color.Color = DefaultTheme.Warning
)

// Common styles, rebuilt by Init.
var (
	Bold = lipgloss.NewStyle().Bold(true)

	PrimaryStyle lipgloss.Style
	AccentStyle  lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	MutedStyle   lipgloss.Style
	NormalStyle  lipgloss.Style
	InfoStyle    lipgloss.Style
	WarningStyle lipgloss.Style

	// HighlightStyle marks fuzzy-matched characters.
	HighlightStyle lipgloss.Style
)

func init() {
	applyTheme(DefaultTheme)
}

func applyTheme(t Theme) {
	currentTheme = t

	Primary = t.Primary
	Accent = t.Accent
	Success = t.Success
	Error = t.Error
	Muted = t.Muted
	Normal = t.Normal
	Info = t.Info
	Warning = t.Warning

	PrimaryStyle = lipgloss.NewStyle().Foreground(t.Primary)
	AccentStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(t.Success)
	ErrorStyle = lipgloss.NewStyle().Foreground(t.Error)
	MutedStyle = lipgloss.NewStyle().Foreground(t.Muted)
	NormalStyle = lipgloss.NewStyle().Foreground(t.Normal)
	InfoStyle = lipgloss.NewStyle().Foreground(t.Info).Italic(true)
	WarningStyle = lipgloss.NewStyle().Foreground(t.Warning)

	HighlightStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Underline(true)

	Wizard = newWizardStyles(t)
}
