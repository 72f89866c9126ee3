package ui

import "github.com/charmbracelet/lipgloss"

// Palette
var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSecondary = lipgloss.Color("#10B981")
	ColorDanger    = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorWhite     = lipgloss.Color("#FFFFFF")
	ColorLink      = lipgloss.Color("#60A5FA")
)

// Page
var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorPrimary).
			Padding(0, 2)

	MutedValue  = lipgloss.NewStyle().Foreground(ColorMuted)
	HashStyle   = lipgloss.NewStyle().Foreground(ColorLink)
	FooterStyle = lipgloss.NewStyle().Foreground(ColorMuted).Italic(true)
	HelpStyle   = lipgloss.NewStyle().Foreground(ColorMuted).Padding(0, 1)
)

// Welcome and startup screens
var (
	LogoStyle = BoxStyle.
			BorderForeground(ColorPrimary).
			Padding(1, 6)

	LogoTextStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	StartingStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)

	// Startup step states.
	StepDoneStyle       = lipgloss.NewStyle().Foreground(ColorSecondary)
	StepConnectingStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	StepFailedStyle     = lipgloss.NewStyle().Foreground(ColorDanger)
)
