package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the color scheme of reports.
type Theme struct {
	Name   string
	Title  lipgloss.Color
	Border lipgloss.Color
	Label  lipgloss.Color
	Value  lipgloss.Color
	Muted  lipgloss.Color
	Good   lipgloss.Color
	Warn   lipgloss.Color
	Bad    lipgloss.Color
}

var (
	ThemeDeepSpace = Theme{
		Name:   "deep",
		Title:  lipgloss.Color("#00ffff"),
		Border: lipgloss.Color("#444466"),
		Label:  lipgloss.Color("#888899"),
		Value:  lipgloss.Color("#00ccff"),
		Muted:  lipgloss.Color("#666688"),
		Good:   lipgloss.Color("#00ff88"),
		Warn:   lipgloss.Color("#ffcc00"),
		Bad:    lipgloss.Color("#ff4444"),
	}

	ThemeSolar = Theme{
		Name:   "solar",
		Title:  lipgloss.Color("#feca57"), // corona
		Border: lipgloss.Color("#8b6b8c"),
		Label:  lipgloss.Color("#c8a2c8"),
		Value:  lipgloss.Color("#ff9f43"),
		Muted:  lipgloss.Color("#8b6b8c"),
		Good:   lipgloss.Color("#5fd068"),
		Warn:   lipgloss.Color("#ffc048"),
		Bad:    lipgloss.Color("#ff4757"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Title:  lipgloss.Color("#ffffff"),
		Border: lipgloss.Color("#888888"),
		Label:  lipgloss.Color("#cccccc"),
		Value:  lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
		Good:   lipgloss.Color("#00ff00"),
		Warn:   lipgloss.Color("#ffaa00"),
		Bad:    lipgloss.Color("#ff0000"),
	}

	Themes = []Theme{
		ThemeDeepSpace,
		ThemeSolar,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name, falling back to the deep space theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDeepSpace
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
