package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/mrrcast/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar with help on the left and
// the projection source on the right.
func RenderStatusBar(width int, help, source string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " " + help
	right := source + " "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	gap := lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", padding))
	return style.Render(left + gap + right)
}
