package render

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used for terminal output
type Theme struct {
	Name string

	Foreground lipgloss.Color
	Border     lipgloss.Color
	Header     lipgloss.Color
	Muted      lipgloss.Color

	// Status colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	// Value colors
	String  lipgloss.Color
	Number  lipgloss.Color
	Boolean lipgloss.Color
	Null    lipgloss.Color
}

// DefaultTheme returns the default dark theme
func DefaultTheme() Theme {
	return Theme{
		Name: "default",

		Foreground: lipgloss.Color("252"),
		Border:     lipgloss.Color("240"),
		Header:     lipgloss.Color("105"),
		Muted:      lipgloss.Color("245"),

		Success: lipgloss.Color("42"),
		Warning: lipgloss.Color("220"),
		Error:   lipgloss.Color("196"),
		Info:    lipgloss.Color("75"),

		String:  lipgloss.Color("180"),
		Number:  lipgloss.Color("150"),
		Boolean: lipgloss.Color("75"),
		Null:    lipgloss.Color("244"),
	}
}

// CatppuccinMochaTheme returns the Catppuccin Mocha palette
func CatppuccinMochaTheme() Theme {
	return Theme{
		Name: "catppuccin-mocha",

		Foreground: lipgloss.Color("#cdd6f4"), // Text
		Border:     lipgloss.Color("#45475a"), // Surface1
		Header:     lipgloss.Color("#89b4fa"), // Blue
		Muted:      lipgloss.Color("#6c7086"), // Overlay0

		Success: lipgloss.Color("#a6e3a1"), // Green
		Warning: lipgloss.Color("#f9e2af"), // Yellow
		Error:   lipgloss.Color("#f38ba8"), // Red
		Info:    lipgloss.Color("#89dceb"), // Sky

		String:  lipgloss.Color("#a6e3a1"),
		Number:  lipgloss.Color("#fab387"), // Peach
		Boolean: lipgloss.Color("#cba6f7"), // Mauve
		Null:    lipgloss.Color("#6c7086"),
	}
}

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin", "catppuccin-mocha":
		return CatppuccinMochaTheme()
	default:
		return DefaultTheme()
	}
}
