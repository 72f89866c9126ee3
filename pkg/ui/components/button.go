package components

import "github.com/charmbracelet/lipgloss"

var (
	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#2563EB")).
			Padding(0, 2)

	buttonDisabledStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#D1D5DB")).
				Background(lipgloss.Color("#374151")).
				Padding(0, 2)
)

// Button renders the page's single action.
// A non-pressable button is drawn dimmed.
func Button(label string, pressable bool) string {
	if pressable {
		return buttonStyle.Render(label)
	}
	return buttonDisabledStyle.Render(label)
}
