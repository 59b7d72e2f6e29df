// Package ui provides the terminal front end for termai: styles, the output
// console, the line editor and the model picker.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors
	LightForeground = lipgloss.Color("#1f2933")
	LightPrimary    = lipgloss.Color("#0b5394")
	LightMuted      = lipgloss.Color("#7b8794")

	// Dark Mode Colors
	DarkForeground = lipgloss.Color("#e4e7eb")
	DarkPrimary    = lipgloss.Color("#7cc4fa")
	DarkMuted      = lipgloss.Color("#9aa5b1")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Muted:      LightMuted,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Muted:      DarkMuted,
		IsDark:     true,
	}
}

// ThemeFor resolves a ui.theme setting: "light", "dark" or "auto".
func ThemeFor(pref string) Theme {
	switch strings.ToLower(pref) {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	default:
		return DetectTheme()
	}
}

// DetectTheme guesses the terminal background.
func DetectTheme() Theme {
	// COLORFGBG is "foreground;background"; low background indices are dark.
	if parts := strings.Split(os.Getenv("COLORFGBG"), ";"); len(parts) == 2 {
		if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
			if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
				return DarkTheme()
			}
			return LightTheme()
		}
	}

	switch os.Getenv("TERMAI_DARK_MODE") {
	case "1":
		return DarkTheme()
	case "0":
		return LightTheme()
	}

	if lipgloss.HasDarkBackground() {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	Prompt      lipgloss.Style
	ShellPrompt lipgloss.Style
	Notice      lipgloss.Style
	Muted       lipgloss.Style

	ThoughtHeader lipgloss.Style
	Thought       lipgloss.Style
	Divider       lipgloss.Style

	CommandLabel lipgloss.Style
	Command      lipgloss.Style
	OutputHeader lipgloss.Style
	Stderr       lipgloss.Style

	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Prompt: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		ShellPrompt: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Notice: lipgloss.NewStyle().
			Foreground(Info),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		ThoughtHeader: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Bold(true),

		Thought: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Divider: lipgloss.NewStyle().
			Foreground(theme.Muted),

		CommandLabel: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Command: lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true),

		OutputHeader: lipgloss.NewStyle().
			Foreground(theme.Primary),

		Stderr: lipgloss.NewStyle().
			Foreground(Destructive),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(Warning),

		Success: lipgloss.NewStyle().
			Foreground(Success),
	}
}

// DefaultStyles returns styles for the detected theme.
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}
