package ui

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/go-cmp/cmp"

	"github.com/vanderheijden86/tasktable/pkg/loader"
	"github.com/vanderheijden86/tasktable/pkg/model"
	"github.com/vanderheijden86/tasktable/pkg/tasktree"
)

const testTasks = `{"kind": "tasks", "data": [
	{"id": "T1", "title": "Beta", "customStatusId": "S1", "parentIds": ["F1"], "customFields": [{"id": "CF1", "value": "5"}]},
	{"id": "T2", "title": "Alpha", "customStatusId": "S2", "parentIds": ["F1"], "customFields": [{"id": "CF1", "value": "2"}]},
	{"id": "T3", "title": "Child", "customStatusId": "S1", "superTaskIds": ["T1"]}
]}`

// writeTestDataset writes a small dataset and returns its directory.
func writeTestDataset(t *testing.T, tasks string) string {
	t.Helper()
	return writeTestFolder(t, `{"id": "F1", "title": "Roadmap", "customColumnIds": ["CF1"]}`, tasks)
}

// writeTestFolder is writeTestDataset with a custom folder record.
func writeTestFolder(t *testing.T, folder, tasks string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		loader.FolderFile: `{"data": [` + folder + `]}`,
		loader.TasksFile:  tasks,
		loader.WorkflowsFile: `{"data": [{"id": "W1", "customStatuses": [
			{"id": "S1", "name": "Open", "group": "Active"},
			{"id": "S2", "name": "Done", "group": "Completed"}
		]}]}`,
		loader.CustomFieldsFile: `{"data": [{"id": "CF1", "title": "Estimate", "type": "Numeric"}]}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir
}

func newTestTable(t *testing.T, dir string, opts TableOptions) TableModel {
	t.Helper()
	theme := DefaultTheme(lipgloss.NewRenderer(io.Discard))
	opts.DataDir = dir
	opts.Theme = &theme
	if opts.Copy == nil {
		opts.Copy = func(string) error { return nil }
	}
	m := NewTableModel(tasktree.New(tasktree.Options{}), opts)
	m = update(m, tea.WindowSizeMsg{Width: 120, Height: 20})
	return update(m, LoadDatasetCmd(dir)())
}

func update(m TableModel, msg tea.Msg) TableModel {
	next, _ := m.Update(msg)
	return next.(TableModel)
}

func press(m TableModel, keys ...string) TableModel {
	for _, k := range keys {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		if k == "enter" {
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		}
		m = update(m, msg)
	}
	return m
}

func rowTitles(t *testing.T, m TableModel) []string {
	t.Helper()
	var titles []string
	for _, row := range m.Tree().Rows() {
		node, err := m.Tree().Node(row)
		if err != nil {
			t.Fatalf("Node failed: %v", err)
		}
		titles = append(titles, node.Task.Title)
	}
	return titles
}

func TestTableIngestsDataset(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{})

	if diff := cmp.Diff([]string{"Alpha", "Beta"}, rowTitles(t, m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if m.Status() != "3 tasks" {
		t.Errorf("expected status '3 tasks', got %q", m.Status())
	}

	view := m.View()
	for _, want := range []string{"Title ▲", "Estimate", "Alpha", "▸ Beta", "Done"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}
}

func TestTableLoadingView(t *testing.T) {
	m := NewTableModel(tasktree.New(tasktree.Options{}), TableOptions{DataDir: "somewhere"})
	if !strings.Contains(m.View(), "Loading somewhere") {
		t.Errorf("expected loading view, got %q", m.View())
	}
}

func TestTableNavigation(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{})

	tests := []struct {
		key  string
		want int
	}{
		{"j", 1},
		{"j", 1}, // clamped at the last row
		{"k", 0},
		{"k", 0},
		{"G", 1},
		{"g", 0},
	}
	for _, tt := range tests {
		m = press(m, tt.key)
		if m.Cursor() != tt.want {
			t.Errorf("after %q: expected cursor %d, got %d", tt.key, tt.want, m.Cursor())
		}
	}
}

func TestTableToggleExpand(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{})

	m = press(m, "j", "enter")
	if diff := cmp.Diff([]string{"Alpha", "Beta", "Child"}, rowTitles(t, m)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if view := m.View(); !strings.Contains(view, "▾ Beta") || !strings.Contains(view, "    Child") {
		t.Errorf("expected expanded, indented rows:\n%s", view)
	}

	m = press(m, "j", "G", "k", "enter")
	if diff := cmp.Diff([]string{"Alpha", "Beta"}, rowTitles(t, m)); diff != "" {
		t.Errorf("rows mismatch after collapse (-want +got):\n%s", diff)
	}
}

func TestTableSortKeysPersistViewState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "view-state.json")
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{StatePath: path})

	m = press(m, "1")
	if diff := cmp.Diff([]string{"Beta", "Alpha"}, rowTitles(t, m)); diff != "" {
		t.Errorf("title desc mismatch (-want +got):\n%s", diff)
	}
	vs, ok, err := tasktree.LoadViewState(path)
	if err != nil || !ok {
		t.Fatalf("expected saved view state: ok=%v err=%v", ok, err)
	}
	if vs.Sort != "title" || vs.Direction != "desc" {
		t.Errorf("unexpected view state %+v", vs)
	}

	// Custom column 1 is the estimate.
	m = press(m, "4")
	if diff := cmp.Diff([]string{"Alpha", "Beta"}, rowTitles(t, m)); diff != "" {
		t.Errorf("estimate asc mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(m.View(), "Estimate ▲") {
		t.Errorf("expected sort indicator on estimate column")
	}
	m = press(m, "4")
	if diff := cmp.Diff([]string{"Beta", "Alpha"}, rowTitles(t, m)); diff != "" {
		t.Errorf("estimate desc mismatch (-want +got):\n%s", diff)
	}

	m = press(m, "5")
	if m.Status() != "no custom column 2" {
		t.Errorf("expected missing column status, got %q", m.Status())
	}
}

func TestTableRestoresViewState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view-state.json")
	vs := tasktree.ViewState{Version: tasktree.ViewStateVersion, Sort: "title", Direction: "desc"}
	if err := tasktree.SaveViewState(path, vs); err != nil {
		t.Fatal(err)
	}

	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{StatePath: path})
	if diff := cmp.Diff([]string{"Beta", "Alpha"}, rowTitles(t, m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestTableActiveOnlyToggle(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{})
	m = press(m, "j")

	m = press(m, "a")
	if diff := cmp.Diff([]string{"Beta"}, rowTitles(t, m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if m.Cursor() != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", m.Cursor())
	}
	if !strings.Contains(m.View(), "active only") {
		t.Error("expected active-only marker in footer")
	}

	m = press(m, "a")
	if len(rowTitles(t, m)) != 2 {
		t.Errorf("expected filter off, got %v", rowTitles(t, m))
	}
}

func TestTableCopyID(t *testing.T) {
	var copied string
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{
		Copy: func(s string) error {
			copied = s
			return nil
		},
	})

	m = press(m, "j", "y")
	if copied != "T1" {
		t.Errorf("expected T1 copied, got %q", copied)
	}
	if m.Status() != "copied T1" {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestTableCopyFailure(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{
		Copy: func(string) error { return errors.New("no clipboard") },
	})
	m = press(m, "y")
	if m.Status() != "copy failed: no clipboard" {
		t.Errorf("unexpected status %q", m.Status())
	}
}

func TestTableLoadError(t *testing.T) {
	m := newTestTable(t, filepath.Join(t.TempDir(), "missing"), TableOptions{})
	if !strings.Contains(m.View(), "open ") {
		t.Errorf("expected load error in view:\n%s", m.View())
	}
}

func TestTableRejectedReloadKeepsRows(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{})
	epoch := m.Tree().Epoch()

	dup := `{"data": [
		{"id": "T1", "title": "One", "parentIds": ["F1"]},
		{"id": "T1", "title": "Again", "parentIds": ["F1"]}
	]}`
	m = update(m, LoadDatasetCmd(writeTestDataset(t, dup))())

	if m.Status() != "reload rejected" {
		t.Errorf("expected rejected reload, got %q", m.Status())
	}
	if m.Tree().Epoch() != epoch {
		t.Errorf("expected epoch %d kept, got %d", epoch, m.Tree().Epoch())
	}
	if diff := cmp.Diff([]string{"Alpha", "Beta"}, rowTitles(t, m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestTableRejectedReloadKeepsFolder(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{})

	dup := `{"data": [
		{"id": "T9", "title": "One", "parentIds": ["F2"]},
		{"id": "T9", "title": "Again", "parentIds": ["F2"]}
	]}`
	dir := writeTestFolder(t, `{"id": "F2", "title": "Other", "customColumnIds": ["CFX"]}`, dup)
	m = update(m, LoadDatasetCmd(dir)())

	if m.Status() != "reload rejected" {
		t.Fatalf("expected rejected reload, got %q", m.Status())
	}
	if got := m.Tree().Container(); got != "F1" {
		t.Errorf("expected container F1 kept, got %q", got)
	}
	if diff := cmp.Diff([]model.FieldID{"CF1"}, m.Tree().Folder().ColumnIDs); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Alpha", "Beta"}, rowTitles(t, m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(m.View(), "Estimate") {
		t.Errorf("expected the previous custom column in the view:\n%s", m.View())
	}
}

func TestTableLogicalFolderHasNoCustomColumns(t *testing.T) {
	dir := writeTestFolder(t, `{"id": "F1", "title": "Mine", "customColumnIds": ["CF1"], "logical": true}`, testTasks)
	m := newTestTable(t, dir, TableOptions{})

	if !m.Tree().IsLogicalView() {
		t.Fatal("expected a logical view")
	}
	if diff := cmp.Diff([]string{"Alpha", "Beta"}, rowTitles(t, m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(m.View(), "Estimate") {
		t.Errorf("expected no custom column in the view:\n%s", m.View())
	}
	m = press(m, "4")
	if m.Status() != "no custom column 1" {
		t.Errorf("expected no custom column to sort by, got %q", m.Status())
	}
}

type countingRefresher struct{ calls int }

func (r *countingRefresher) TriggerRefresh() { r.calls++ }

func TestTableReloadUsesRefresher(t *testing.T) {
	r := &countingRefresher{}
	m := NewTableModel(tasktree.New(tasktree.Options{}), TableOptions{Refresher: r})

	if cmd := m.Init(); cmd != nil {
		t.Error("expected no command when a refresher is set")
	}
	m = press(m, "r")
	if r.calls != 2 {
		t.Errorf("expected 2 refreshes, got %d", r.calls)
	}
}

func TestTableQuit(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestCellWidthFitsTitle(t *testing.T) {
	tests := []struct {
		col  tasktree.Column
		want int
	}{
		{tasktree.Column{Title: "Title", Width: 500}, 50},
		{tasktree.Column{Title: "Estimate", Width: 50}, 10},
		{tasktree.Column{Title: "", Width: 0}, 2},
	}
	for _, tt := range tests {
		if got := cellWidth(tt.col); got != tt.want {
			t.Errorf("cellWidth(%q, %v): expected %d, got %d", tt.col.Title, tt.col.Width, tt.want, got)
		}
	}
}

func TestFit(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"abc", 5, "abc  "},
		{"abcdef", 4, "abc…"},
		{"日本語", 4, "日… "},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := fit(tt.in, tt.w); got != tt.want {
			t.Errorf("fit(%q, %d): expected %q, got %q", tt.in, tt.w, tt.want, got)
		}
	}
}

func TestTableSortPicker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "view-state.json")
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{StatePath: path})

	m = press(m, "s")
	if !strings.Contains(m.View(), "Sort By") {
		t.Fatalf("expected sort picker:\n%s", m.View())
	}
	// Title, Status, Assignees, Estimate: move to the estimate column.
	m = press(m, "j", "j", "j", "enter")
	if strings.Contains(m.View(), "Sort By") {
		t.Error("expected picker closed after selection")
	}
	want := tasktree.SortState{Field: tasktree.SortCustomField, Direction: tasktree.SortAscending, CustomField: "CF1"}
	if got := m.Tree().SortState(); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if vs, ok, _ := tasktree.LoadViewState(path); !ok || vs.CustomField != "CF1" {
		t.Errorf("expected picked sort saved, got %+v", vs)
	}

	// Cursor keys move the picker, not the table; esc closes without sorting.
	cursor := m.Cursor()
	m = press(m, "s", "k")
	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Cursor() != cursor {
		t.Errorf("expected table cursor untouched, got %d", m.Cursor())
	}
	if m.Tree().SortState() != want {
		t.Errorf("expected sort unchanged after cancel, got %+v", m.Tree().SortState())
	}
}

func TestTableHelpOverlay(t *testing.T) {
	m := newTestTable(t, writeTestDataset(t, testTasks), TableOptions{})

	m = press(m, "?")
	view := m.View()
	for _, want := range []string{"Keys", "copy id", "sort field"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected help to mention %q:\n%s", want, view)
		}
	}

	// Keys other than close are swallowed while help is open.
	m = press(m, "j", "?")
	if m.Cursor() != 0 {
		t.Errorf("expected cursor unchanged, got %d", m.Cursor())
	}
	if strings.Contains(m.View(), "copy id") {
		t.Error("expected help closed")
	}
}
