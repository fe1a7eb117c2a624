package tui

import "github.com/charmbracelet/lipgloss"

var (
	menuStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	toolbarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	buttonStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("238")).Padding(0, 1)
	activeStyle  = buttonStyle.Background(lipgloss.Color("62"))
	modalStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(0, 1).Width(60)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	statusStyle  = lipgloss.NewStyle().Padding(0, 1)
)

func button(label string, active bool) string {
	if active {
		return activeStyle.Render(label)
	}
	return buttonStyle.Render(label)
}
