package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/tasktable/pkg/tasktree"
)

// SortPickerModel is a modal listing every sortable column, including
// custom columns beyond the ones reachable with the number keys.
type SortPickerModel struct {
	columns       []tasktree.Column
	current       tasktree.SortState
	selectedIndex int
	width         int
	height        int
	theme         Theme
}

// NewSortPickerModel creates a picker over columns with the current sort
// column highlighted. Unresolved custom columns are left out.
func NewSortPickerModel(columns []tasktree.Column, current tasktree.SortState, theme Theme) SortPickerModel {
	var sortable []tasktree.Column
	for _, c := range columns {
		if c.Sort == tasktree.SortCustomField && c.Field == nil {
			continue
		}
		sortable = append(sortable, c)
	}

	selectedIdx := 0
	for i, c := range sortable {
		if isSortColumn(c, current) {
			selectedIdx = i
			break
		}
	}

	return SortPickerModel{
		columns:       sortable,
		current:       current,
		selectedIndex: selectedIdx,
		theme:         theme,
	}
}

func isSortColumn(c tasktree.Column, s tasktree.SortState) bool {
	if c.Sort != s.Field {
		return false
	}
	return s.Field != tasktree.SortCustomField || c.ID == s.CustomField
}

// SetSize updates the picker dimensions
func (m *SortPickerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// MoveUp moves selection up
func (m *SortPickerModel) MoveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	}
}

// MoveDown moves selection down
func (m *SortPickerModel) MoveDown() {
	if m.selectedIndex < len(m.columns)-1 {
		m.selectedIndex++
	}
}

// Selected returns the highlighted column.
func (m *SortPickerModel) Selected() (tasktree.Column, bool) {
	if m.selectedIndex >= 0 && m.selectedIndex < len(m.columns) {
		return m.columns[m.selectedIndex], true
	}
	return tasktree.Column{}, false
}

// View renders the picker overlay
func (m *SortPickerModel) View() string {
	if m.width == 0 {
		m.width = 60
	}
	if m.height == 0 {
		m.height = 20
	}

	t := m.theme

	boxWidth := 35
	if m.width < 45 {
		boxWidth = m.width - 10
	}
	if boxWidth < 25 {
		boxWidth = 25
	}

	var lines []string

	titleStyle := t.Renderer.NewStyle().
		Foreground(t.Primary).
		Bold(true).
		MarginBottom(1)
	lines = append(lines, titleStyle.Render("Sort By"))
	lines = append(lines, "")

	for i, c := range m.columns {
		isSelected := i == m.selectedIndex

		itemStyle := t.Renderer.NewStyle()
		if isSelected {
			itemStyle = itemStyle.Foreground(t.Primary).Bold(true)
		} else {
			itemStyle = itemStyle.Foreground(t.Base.GetForeground())
		}

		prefix := "  "
		if isSelected {
			prefix = "> "
		}

		// Direction arrow on the current sort column
		suffix := ""
		if isSortColumn(c, m.current) {
			arrowStyle := t.Renderer.NewStyle().Foreground(t.Secondary)
			suffix = " " + arrowStyle.Render(m.current.Direction.Indicator())
		}

		lines = append(lines, itemStyle.Render(prefix+c.Title)+suffix)
	}

	lines = append(lines, "")
	footerStyle := t.Renderer.NewStyle().
		Foreground(t.Secondary).
		Italic(true)
	lines = append(lines, footerStyle.Render("j/k: navigate | enter: sort | esc: cancel"))

	boxStyle := t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Width(boxWidth)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		boxStyle.Render(strings.Join(lines, "\n")),
	)
}
