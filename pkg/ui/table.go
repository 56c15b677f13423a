package ui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/tasktable/pkg/loader"
	"github.com/vanderheijden86/tasktable/pkg/logging"
	"github.com/vanderheijden86/tasktable/pkg/model"
	"github.com/vanderheijden86/tasktable/pkg/tasktree"
)

// pixelsPerCell converts layout widths to terminal cells.
const pixelsPerCell = 10.0

// chromeLines is the header (title row plus border) and the footer.
const chromeLines = 3

// Refresher reloads the dataset and reports back with DatasetLoadedMsg or
// DatasetErrorMsg. BackgroundWorker implements it.
type Refresher interface {
	TriggerRefresh()
}

// TableOptions configures a TableModel.
type TableOptions struct {
	DataDir   string
	Folder    model.FolderID // Active container; the dataset's folder when empty
	Scale     float64        // Column width multiplier; 1 when zero
	StatePath string         // View state file; nothing is persisted when empty
	Theme     *Theme         // DefaultTheme when nil
	Logger    *slog.Logger
	Refresher Refresher          // Reloads read the data dir inline when nil
	Copy      func(string) error // clipboard.WriteAll when nil
}

// TableModel renders a task tree as an indented, sortable table.
type TableModel struct {
	tree  *tasktree.Model
	theme Theme
	keys  keyMap
	vp    viewport.Model
	log   *slog.Logger

	dataDir   string
	folder    model.FolderID
	scale     float64
	statePath string
	refresher Refresher
	copy      func(string) error

	width  int
	height int
	cursor int
	top    int // first row shown
	window tasktree.Window

	picker   *SortPickerModel
	showHelp bool

	loaded bool
	status string
	err    error
}

// NewTableModel creates the table around tree and restores the saved view
// state when there is one.
func NewTableModel(tree *tasktree.Model, opts TableOptions) TableModel {
	m := TableModel{
		tree:      tree,
		keys:      defaultKeyMap(),
		vp:        viewport.New(0, 0),
		log:       opts.Logger,
		dataDir:   opts.DataDir,
		folder:    opts.Folder,
		scale:     opts.Scale,
		statePath: opts.StatePath,
		refresher: opts.Refresher,
		copy:      opts.Copy,
	}
	if opts.Theme != nil {
		m.theme = *opts.Theme
	} else {
		m.theme = DefaultTheme(lipgloss.DefaultRenderer())
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	if m.scale <= 0 {
		m.scale = 1
	}
	if m.copy == nil {
		m.copy = clipboard.WriteAll
	}

	if m.statePath != "" {
		vs, ok, err := tasktree.LoadViewState(m.statePath)
		switch {
		case err != nil:
			m.log.Warn("load view state", "path", m.statePath, "error", err)
		case ok:
			if err := tree.ApplyViewState(vs); err != nil {
				m.log.Warn("apply view state", "path", m.statePath, "error", err)
			}
		}
	}
	return m
}

// Init starts the first load.
func (m TableModel) Init() tea.Cmd {
	return m.reload()
}

func (m TableModel) reload() tea.Cmd {
	if m.refresher != nil {
		m.refresher.TriggerRefresh()
		return nil
	}
	return LoadDatasetCmd(m.dataDir)
}

// Update handles messages.
func (m TableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.vp.Height = m.bodyHeight()
		if m.picker != nil {
			m.picker.SetSize(msg.Width, msg.Height)
		}

	case DatasetLoadedMsg:
		m.ingest(msg.Dataset)

	case DatasetErrorMsg:
		m.err = msg.Err
		m.status = "load failed"

	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}

	m.syncWindow()
	return m, cmd
}

// ingest runs on the UI goroutine. A rejected batch leaves the previous
// rows in place.
func (m *TableModel) ingest(ds *loader.Dataset) {
	prev := m.tree.Registry()
	m.tree.SetRegistry(ds.Registry())
	if err := m.tree.Ingest(ds.Folder, m.folder, ds.Tasks); err != nil {
		m.tree.SetRegistry(prev)
		m.err = err
		m.status = "reload rejected"
		return
	}
	m.loaded = true
	m.err = nil
	m.status = fmt.Sprintf("%d tasks", ds.Tasks.Len())
	if n := len(m.tree.Cycles()); n > 0 {
		m.status += fmt.Sprintf(", %d cycles", n)
	}
}

func (m *TableModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.picker != nil {
		m.handlePickerKey(msg)
		return nil
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.help, m.keys.cancel, m.keys.quit) {
			m.showHelp = false
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.up):
		m.cursor--
	case key.Matches(msg, m.keys.down):
		m.cursor++
	case key.Matches(msg, m.keys.pageUp):
		m.cursor -= m.bodyHeight()
	case key.Matches(msg, m.keys.pageDown):
		m.cursor += m.bodyHeight()
	case key.Matches(msg, m.keys.top):
		m.cursor = 0
	case key.Matches(msg, m.keys.bottom):
		m.cursor = m.tree.RowCount() - 1
	case key.Matches(msg, m.keys.toggle):
		if err := m.tree.ToggleExpanded(m.cursor); err != nil {
			m.log.Debug("toggle", "row", m.cursor, "error", err)
		}
	case key.Matches(msg, m.keys.sortFixed):
		m.tree.SelectSortField(fixedSortField(msg.String()))
		m.saveViewState()
	case key.Matches(msg, m.keys.sortCustom):
		m.selectCustomColumn(int(msg.String()[0] - '4'))
	case key.Matches(msg, m.keys.sortPicker):
		p := NewSortPickerModel(m.tree.ColumnLayout(m.scale), m.tree.SortState(), m.theme)
		p.SetSize(m.width, m.height)
		m.picker = &p
	case key.Matches(msg, m.keys.help):
		m.showHelp = true
	case key.Matches(msg, m.keys.activeOnly):
		m.tree.SetActiveOnly(!m.tree.ActiveOnly())
		m.saveViewState()
	case key.Matches(msg, m.keys.copyID):
		m.copySelectedID()
	case key.Matches(msg, m.keys.reload):
		m.status = "reloading"
		return m.reload()
	}
	return nil
}

func (m *TableModel) handlePickerKey(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.up):
		m.picker.MoveUp()
	case key.Matches(msg, m.keys.down):
		m.picker.MoveDown()
	case key.Matches(msg, m.keys.toggle):
		if c, ok := m.picker.Selected(); ok {
			m.sortByColumn(c)
		}
		m.picker = nil
	case key.Matches(msg, m.keys.cancel, m.keys.quit):
		m.picker = nil
	}
}

func (m *TableModel) sortByColumn(c tasktree.Column) {
	if c.Sort == tasktree.SortCustomField {
		m.tree.SelectSortCustomField(c.ID)
	} else {
		m.tree.SelectSortField(c.Sort)
	}
	m.saveViewState()
}

func fixedSortField(k string) tasktree.SortField {
	switch k {
	case "2":
		return tasktree.SortStatus
	case "3":
		return tasktree.SortAssignee
	default:
		return tasktree.SortTitle
	}
}

// selectCustomColumn sorts by the n-th custom column of the folder.
func (m *TableModel) selectCustomColumn(n int) {
	cols := m.tree.Folder().ColumnIDs
	if n < 0 || n >= len(cols) {
		m.status = fmt.Sprintf("no custom column %d", n+1)
		return
	}
	m.tree.SelectSortCustomField(cols[n])
	m.saveViewState()
}

func (m *TableModel) copySelectedID() {
	row, err := m.tree.RowAt(m.cursor)
	if err != nil {
		return
	}
	node, err := m.tree.Node(row)
	if err != nil {
		return
	}
	id := string(node.Task.ID)
	if err := m.copy(id); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied " + id
}

func (m *TableModel) saveViewState() {
	if m.statePath == "" {
		return
	}
	if err := tasktree.SaveViewState(m.statePath, m.tree.ViewState()); err != nil {
		m.log.Warn("save view state", "path", m.statePath, "error", err)
		m.status = "view state not saved"
	}
}

// syncWindow clamps the cursor, scrolls it into view and recomputes the row
// window. Computing the window sorts expanded subtrees that come into view.
func (m *TableModel) syncWindow() {
	rows := m.tree.RowCount()
	body := m.bodyHeight()

	m.cursor = min(max(m.cursor, 0), max(rows-1, 0))
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+body {
		m.top = m.cursor - body + 1
	}
	m.top = min(max(m.top, 0), max(rows-body, 0))

	rh := m.tree.RowHeight()
	w, err := m.tree.Window(float64(m.top)*rh, float64(body)*rh)
	if err != nil {
		m.log.Warn("row window", "error", err)
		return
	}
	m.window = w
}

func (m TableModel) bodyHeight() int {
	if m.height <= 0 {
		return 20
	}
	return max(m.height-chromeLines, 1)
}

// View renders the table.
func (m TableModel) View() string {
	if !m.loaded && m.err == nil {
		return m.theme.Footer.Render("Loading " + m.dataDir + "…")
	}
	if m.picker != nil {
		return m.picker.View()
	}
	if m.showHelp {
		return RenderHelp(m.keys, m.theme, m.width, m.height)
	}

	cols := m.tree.ColumnLayout(m.scale)

	lines := make([]string, 0, m.window.Len())
	for r := m.window.First; r < m.window.Last; r++ {
		row, err := m.tree.RowAt(r)
		if err != nil {
			break
		}
		lines = append(lines, m.renderRow(cols, row, r == m.cursor))
	}
	if len(lines) == 0 {
		lines = append(lines, m.theme.Footer.Render("No tasks to display."))
	}

	vp := m.vp
	vp.Height = m.bodyHeight()
	vp.SetContent(strings.Join(lines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(cols),
		vp.View(),
		m.renderFooter(),
	)
}

func (m TableModel) renderHeader(cols []tasktree.Column) string {
	sort := m.tree.SortState()
	cells := make([]string, len(cols))
	for i, c := range cols {
		title := c.Title
		if c.Sort == sort.Field && (sort.Field != tasktree.SortCustomField || c.ID == sort.CustomField) {
			title += " " + sort.Direction.Indicator()
		}
		cells[i] = fit(title, cellWidth(c))
	}
	return m.theme.Header.Render(strings.Join(cells, " "))
}

func (m TableModel) renderRow(cols []tasktree.Column, row tasktree.Row, selected bool) string {
	r := m.theme.Renderer
	node, _ := m.tree.Node(row)

	cells := make([]string, len(cols))
	for i, c := range cols {
		text := m.tree.CellText(row, i)
		if i == tasktree.ColumnTitle {
			text = strings.Repeat("  ", row.Depth) + expandIndicator(row) + text
		}
		text = fit(text, cellWidth(c))

		if i == tasktree.ColumnStatus && node != nil && node.Status != nil {
			text = r.NewStyle().Foreground(m.theme.StatusColor(node.Status.Group)).Render(text)
		}
		cells[i] = text
	}

	line := strings.Join(cells, " ")
	if selected {
		return m.theme.Selected.Render(line)
	}
	return line
}

func (m TableModel) renderFooter() string {
	var parts []string
	if m.err != nil {
		parts = append(parts, m.theme.Error.Render(m.err.Error()))
	} else if m.status != "" {
		parts = append(parts, m.status)
	}
	if m.tree.ActiveOnly() {
		parts = append(parts, "active only")
	}
	for _, b := range m.keys.shortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+": "+h.Desc)
	}
	footer := strings.Join(parts, " | ")
	if m.width > 0 {
		footer = fit(footer, m.width)
	}
	return m.theme.Footer.Render(footer)
}

func expandIndicator(row tasktree.Row) string {
	switch {
	case row.VisibleChildren == 0:
		return "  "
	case row.Expanded:
		return "▾ "
	default:
		return "▸ "
	}
}

// cellWidth converts a column's layout width to cells. A column is never
// narrower than its title plus a sort indicator.
func cellWidth(c tasktree.Column) int {
	return max(int(c.Width/pixelsPerCell), runewidth.StringWidth(c.Title)+2, 1)
}

// fit truncates or pads s to exactly w cells.
func fit(s string, w int) string {
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}

// Cursor returns the selected row.
func (m TableModel) Cursor() int {
	return m.cursor
}

// Tree returns the underlying task tree.
func (m TableModel) Tree() *tasktree.Model {
	return m.tree
}

// Status returns the footer status line.
func (m TableModel) Status() string {
	return m.status
}
