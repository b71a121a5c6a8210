package tui

import "github.com/charmbracelet/lipgloss"

// Palette colors.
const (
	colorText     = "#F8F8F2"
	colorMuted    = "#6272A4"
	colorAccent   = "#BD93F9"
	colorSuccess  = "#50FA7B"
	colorWarning  = "#F1FA8C"
	colorDanger   = "#FF5555"
	colorSelectBg = "#44475A"
)

// styles holds the Lipgloss styles used by the views.
type styles struct {
	Logo      lipgloss.Style
	NavItem   lipgloss.Style
	NavActive lipgloss.Style
	Title     lipgloss.Style
	Text      lipgloss.Style
	Muted     lipgloss.Style
	Rating    lipgloss.Style
	Selected  lipgloss.Style
	Error     lipgloss.Style
	Notice    lipgloss.Style
	Help      lipgloss.Style
	Section   lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent)).
			Bold(true),
		NavItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted)).
			Padding(0, 1),
		NavActive: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText)).
			Background(lipgloss.Color(colorSelectBg)).
			Bold(true).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText)).
			Bold(true).
			MarginBottom(1),
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorText)),
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted)),
		Rating: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarning)),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorSuccess)).
			Background(lipgloss.Color(colorSelectBg)).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorDanger)).
			Bold(true),
		Notice: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorWarning)),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorMuted)),
		Section: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorAccent)).
			Bold(true).
			MarginTop(1),
	}
}
