package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sells-group/health-cli/internal/health"
	"github.com/sells-group/health-cli/internal/model"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted  lipgloss.TerminalColor = ac("240", "243")
	colorBorder lipgloss.TerminalColor = ac("250", "238")
	colorAccent lipgloss.TerminalColor = ac("#2563eb", "#60a5fa")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(health.Color(model.StateCritical)))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(health.Color(model.StateHealthy)))
	headerStyle = lipgloss.NewStyle().Bold(true)
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	activePane  = paneStyle.BorderForeground(colorAccent)
)

// stateStyle colors text with the health state's palette color.
func stateStyle(s model.HealthState) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(health.Color(s)))
}
