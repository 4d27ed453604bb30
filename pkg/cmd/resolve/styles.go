package resolve

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0AF")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555", Dark: "#AAA"}).
			Width(12)

	winnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#0C6")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().Faint(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FA0"))

	sectionStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(lipgloss.Color("#0AF")).
			PaddingLeft(1)
)
