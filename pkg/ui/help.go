package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// RenderHelp renders the key reference modal.
func RenderHelp(k keyMap, theme Theme, width, height int) string {
	r := theme.Renderer

	modalWidth := 50
	if width > 0 && modalWidth > width-4 {
		modalWidth = max(width-4, 20)
	}

	titleStyle := r.NewStyle().Bold(true).Foreground(theme.Primary)
	keyStyle := r.NewStyle().Bold(true).Foreground(theme.Highlight)
	descStyle := r.NewStyle().Foreground(theme.Base.GetForeground())
	footerStyle := r.NewStyle().Foreground(theme.Muted).Italic(true)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Keys"))
	b.WriteString("\n")
	b.WriteString(r.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", modalWidth-6)))
	b.WriteString("\n\n")
	for _, binding := range k.fullHelp() {
		h := binding.Help()
		b.WriteString(keyStyle.Render(runewidth.FillRight(h.Key, 10)))
		b.WriteString(descStyle.Render(h.Desc))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("? or esc to close"))

	modal := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Secondary).
		Padding(1, 2).
		Width(modalWidth).
		Render(b.String())

	if width <= 0 || height <= 0 {
		return modal
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}
