package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

// Theme holds the colors and styles of the table view.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor

	// Status group colors
	Active    lipgloss.AdaptiveColor
	Completed lipgloss.AdaptiveColor
	Deferred  lipgloss.AdaptiveColor
	Cancelled lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Footer   lipgloss.Style
	Error    lipgloss.Style
}

// DefaultTheme returns the standard theme bound to r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D79F6"},
		Secondary: lipgloss.AdaptiveColor{Light: "#2B8A3E", Dark: "#69DB7C"},
		Muted:     lipgloss.AdaptiveColor{Light: "#868E96", Dark: "#6C757D"},
		Highlight: lipgloss.AdaptiveColor{Light: "#D9480F", Dark: "#FFA94D"},
		Border:    lipgloss.AdaptiveColor{Light: "#CED4DA", Dark: "#495057"},

		Active:    lipgloss.AdaptiveColor{Light: "#1971C2", Dark: "#74C0FC"},
		Completed: lipgloss.AdaptiveColor{Light: "#2B8A3E", Dark: "#69DB7C"},
		Deferred:  lipgloss.AdaptiveColor{Light: "#E67700", Dark: "#FFD43B"},
		Cancelled: lipgloss.AdaptiveColor{Light: "#868E96", Dark: "#6C757D"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#212529", Dark: "#E9ECEF"})
	t.Header = r.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(t.Border)
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#E7F5FF", Dark: "#343A40"}).
		Bold(true)
	t.Footer = r.NewStyle().Foreground(t.Muted).Italic(true)
	t.Error = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C92A2A", Dark: "#FF8787"})
	return t
}

// StatusColor returns the color for a status group.
func (t Theme) StatusColor(g model.StatusGroup) lipgloss.AdaptiveColor {
	switch g {
	case model.StatusGroupCompleted:
		return t.Completed
	case model.StatusGroupDeferred:
		return t.Deferred
	case model.StatusGroupCancelled:
		return t.Cancelled
	default:
		return t.Active
	}
}
