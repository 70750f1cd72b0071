package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live viewer.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	// Canvas is the colour of the braille world view.
	Canvas  lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemePhosphor = Theme{
		Name:    "phosphor",
		Primary: lipgloss.Color("#00ff88"),
		Canvas:  lipgloss.Color("#33ff33"),
		Accent:  lipgloss.Color("#ccff66"),
		Text:    lipgloss.Color("#d0ffd0"),
		Muted:   lipgloss.Color("#3a6b3a"),
		Success: lipgloss.Color("#88ff88"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff3333"),
	}

	ThemeBlueprint = Theme{
		Name:    "blueprint",
		Primary: lipgloss.Color("#4fa3ff"),
		Canvas:  lipgloss.Color("#e0f0ff"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4477aa"),
		Success: lipgloss.Color("#00ff88"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Primary: lipgloss.Color("#ff6b6b"),
		Canvas:  lipgloss.Color("#feca57"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Success: lipgloss.Color("#5fd068"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
	}

	ThemeMono = Theme{
		Name:    "mono",
		Primary: lipgloss.Color("#ffffff"),
		Canvas:  lipgloss.Color("#dddddd"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Success: lipgloss.Color("#00ff00"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
	}

	CurrentTheme = ThemePhosphor

	Themes = []Theme{
		ThemePhosphor,
		ThemeBlueprint,
		ThemeSunset,
		ThemeMono,
	}
)

// GetTheme returns the named theme and whether it exists.
func GetTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return ThemePhosphor, false
}

// SetTheme switches the current theme and restyles the viewer. Unknown
// names select the default theme.
func SetTheme(name string) {
	CurrentTheme, _ = GetTheme(name)
	applyTheme(CurrentTheme)
}

// NextTheme cycles to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	SetTheme(names[0])
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
