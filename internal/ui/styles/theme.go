package styles

import (
	"image/color"
	"os"
	"slices"

	"charm.land/lipgloss/v2"
)

// Theme is a color palette.
type Theme struct {
	Primary color.Color // borders, titles
	Accent  color.Color // selected items
	Success color.Color
	Error   color.Color
	Muted   color.Color // disabled text
	Normal  color.Color
	Info    color.Color
	Warning color.Color // dirty worktrees
}

var (
	DefaultTheme = Theme{
		Primary: lipgloss.Color("62"),
		Accent:  lipgloss.Color("212"),
		Success: lipgloss.Color("82"),
		Error:   lipgloss.Color("196"),
		Muted:   lipgloss.Color("240"),
		Normal:  lipgloss.Color("252"),
		Info:    lipgloss.Color("244"),
		Warning: lipgloss.Color("214"),
	}

	// LightTheme is DefaultTheme with darker text for light backgrounds.
	LightTheme = Theme{
		Primary: lipgloss.Color("25"),
		Accent:  lipgloss.Color("162"),
		Success: lipgloss.Color("28"),
		Error:   lipgloss.Color("160"),
		Muted:   lipgloss.Color("246"),
		Normal:  lipgloss.Color("236"),
		Info:    lipgloss.Color("242"),
		Warning: lipgloss.Color("130"),
	}

	NordTheme = Theme{
		Primary: lipgloss.Color("#88c0d0"),
		Accent:  lipgloss.Color("#b48ead"),
		Success: lipgloss.Color("#a3be8c"),
		Error:   lipgloss.Color("#bf616a"),
		Muted:   lipgloss.Color("#4c566a"),
		Normal:  lipgloss.Color("#eceff4"),
		Info:    lipgloss.Color("#81a1c1"),
		Warning: lipgloss.Color("#ebcb8b"),
	}

	// NoneTheme keeps bold/underline but uses the terminal's colors.
	NoneTheme = Theme{
		Primary: lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
		Normal:  lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
	}
)

var presets = map[string]*Theme{
	"default": &DefaultTheme,
	"light":   &LightTheme,
	"nord":    &NordTheme,
	"none":    &NoneTheme,
}

var currentTheme = DefaultTheme

// Current returns the active theme.
func Current() Theme {
	return currentTheme
}

// PresetNames lists the theme names accepted by Init.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Init activates the named theme. An empty name picks default or light
// from the terminal background. noColor forces the none theme.
// Unknown names fall back to auto detection and report false.
func Init(name string, noColor bool) bool {
	if noColor {
		applyTheme(NoneTheme)
		return true
	}
	if t, ok := presets[name]; ok {
		applyTheme(*t)
		return true
	}

	if lipgloss.HasDarkBackground(os.Stdin, os.Stderr) {
		applyTheme(DefaultTheme)
	} else {
		applyTheme(LightTheme)
	}
	return name == ""
}
