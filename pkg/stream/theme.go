package stream

import "github.com/charmbracelet/lipgloss"

// Theme defines colors and glyphs for terminal rendering.
type Theme struct {
	Name      string
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
	Underline lipgloss.Style
	Icons     ThemeIcons
}

// ThemeIcons defines the glyph set for a theme.
type ThemeIcons struct {
	Pass       string
	Fail       string
	Comment    string
	BannerPass string
	BannerFail string
}

// DefaultTheme returns the vibrant theme.
func DefaultTheme() Theme {
	return Theme{
		Name:      "default",
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("34")),  // green
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("201")), // magenta
		Underline: lipgloss.NewStyle().Underline(true),
		Icons: ThemeIcons{
			Pass:       "✔",
			Fail:       "✖",
			Comment:    "›",
			BannerPass: "🍌",
			BannerFail: "🙊",
		},
	}
}

// OrcaTheme returns a muted, professional theme.
func OrcaTheme() Theme {
	return Theme{
		Name:      "orca",
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("108")), // sage green
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("167")), // muted red
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color("179")), // muted gold
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")), // lighter gray
		Accent:    lipgloss.NewStyle().Foreground(lipgloss.Color("139")), // dusty mauve
		Underline: lipgloss.NewStyle().Underline(true),
		Icons: ThemeIcons{
			Pass:       "✓",
			Fail:       "✗",
			Comment:    "·",
			BannerPass: "🍌",
			BannerFail: "🙊",
		},
	}
}

// MonoTheme returns a monochrome theme with ASCII glyphs.
func MonoTheme() Theme {
	return Theme{
		Name:      "mono",
		Success:   lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle(),
		Muted:     lipgloss.NewStyle(),
		Accent:    lipgloss.NewStyle(),
		Underline: lipgloss.NewStyle(),
		Icons: ThemeIcons{
			Pass:    "+",
			Fail:    "x",
			Comment: ">",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "orca":
		return OrcaTheme()
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}

// ThemeNames lists the built-in themes.
func ThemeNames() []string {
	return []string{"default", "orca", "mono"}
}
