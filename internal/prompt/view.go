package prompt

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	rejectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")) // Orange

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func (m Model) View() string {
	if m.Done || m.Aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.req.Message))
	b.WriteString("\n\n")
	b.WriteString(m.Input.View())
	b.WriteString("\n")

	switch {
	case m.Checking:
		b.WriteString(dimStyle.Render("checking..."))
	case m.Rejection != "":
		b.WriteString(rejectionStyle.Render("✗ " + m.Rejection))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: confirm • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}
