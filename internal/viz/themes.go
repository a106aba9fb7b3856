package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the panel colors and the three-stop ramp used to shade fields.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Solid   lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Ramp    [3]lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:    "cyberpunk",
		Primary: lipgloss.Color("#ff00ff"),
		Accent:  lipgloss.Color("#ffff00"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666666"),
		Solid:   lipgloss.Color("#202020"),
		Warning: lipgloss.Color("#ff8800"),
		Error:   lipgloss.Color("#ff0000"),
		Ramp:    [3]lipgloss.Color{"#1a0033", "#ff00ff", "#00ffff"},
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Solid:   lipgloss.Color("#002200"),
		Warning: lipgloss.Color("#ffff00"),
		Error:   lipgloss.Color("#ff0000"),
		Ramp:    [3]lipgloss.Color{"#001100", "#00aa00", "#ccffcc"},
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Solid:   lipgloss.Color("#444444"),
		Warning: lipgloss.Color("#ffaa00"),
		Error:   lipgloss.Color("#ff0000"),
		Ramp:    [3]lipgloss.Color{"#000000", "#808080", "#ffffff"},
	}

	// Ocean is a blue-white-red diverging ramp, suited to velocity components.
	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#0077be"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Solid:   lipgloss.Color("#001a33"),
		Warning: lipgloss.Color("#ffcc00"),
		Error:   lipgloss.Color("#ff4444"),
		Ramp:    [3]lipgloss.Color{"#3b4cc0", "#dddddd", "#b40426"},
	}

	ThemeSunset = Theme{
		Name:    "sunset",
		Primary: lipgloss.Color("#ff6b6b"),
		Accent:  lipgloss.Color("#ff9ff3"),
		Text:    lipgloss.Color("#fff5f5"),
		Muted:   lipgloss.Color("#8b6b8c"),
		Solid:   lipgloss.Color("#2d1b2e"),
		Warning: lipgloss.Color("#ffc048"),
		Error:   lipgloss.Color("#ff4757"),
		Ramp:    [3]lipgloss.Color{"#2d1b2e", "#ff6b6b", "#feca57"},
	}

	CurrentTheme = ThemeOcean

	Themes = []Theme{
		ThemeOcean,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, or the default one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeOcean
}

// SetTheme switches the current theme and restyles the panels.
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
	applyTheme(CurrentTheme)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after the current one.
func NextTheme() string {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// RampColor maps t in [0,1] onto the theme ramp.
func (th Theme) RampColor(t float64) lipgloss.Color {
	switch {
	case t != t:
		return th.Solid
	case t <= 0:
		return th.Ramp[0]
	case t >= 1:
		return th.Ramp[2]
	case t < 0.5:
		return blend(th.Ramp[0], th.Ramp[1], 2*t)
	default:
		return blend(th.Ramp[1], th.Ramp[2], 2*t-1)
	}
}
