package tasktree

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/vanderheijden86/tasktable/pkg/logging"
	"github.com/vanderheijden86/tasktable/pkg/model"
)

// Options configures a Model.
type Options struct {
	Registry   Registry     // Status, user and custom field lookups
	Logger     *slog.Logger // Discarded when nil
	ActiveOnly bool         // Hide tasks whose status is not in the active group
	RowHeight  float64      // Unscaled row height; DefaultRowHeight when zero
}

// Model is the task tree state behind a virtualized table: the current
// batch, its flattened rows, the folder header and the view settings that
// outlive a reload (sort selection, active-only filter).
//
// Model is not safe for concurrent use; the host drives it from one goroutine.
type Model struct {
	reg       Registry
	log       *slog.Logger
	rowHeight float64

	folder    model.FolderHeader
	container model.FolderID
	logical   bool

	sort       SortState
	compare    comparator
	activeOnly bool

	batch *Batch
	epoch uint64
}

// New returns an empty model.
func New(opts Options) *Model {
	m := &Model{
		reg:        opts.Registry,
		log:        opts.Logger,
		rowHeight:  opts.RowHeight,
		activeOnly: opts.ActiveOnly,
	}
	if m.reg == nil {
		m.reg = emptyRegistry{}
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	if m.rowHeight <= 0 {
		m.rowHeight = DefaultRowHeight
	}
	m.batch, _ = newBatch(0, nil)
	return m
}

// IngestFolderHeader sets the folder whose tasks are shown at the top level
// and whose custom columns are displayed.
func (m *Model) IngestFolderHeader(h model.FolderHeader) {
	m.setFolder(h)
	m.SetActiveContainer(h.ID)
}

// setFolder stores the header without touching the batch. A header flagged
// logical carries no custom columns.
func (m *Model) setFolder(h model.FolderHeader) {
	m.folder = model.FolderHeader{
		ID:        h.ID,
		Name:      h.Name,
		ColumnIDs: slices.Clone(h.ColumnIDs),
	}
	m.logical = false
	if h.Logical {
		m.clearColumns()
	}
}

// Ingest loads a folder header and its task set as one step. container
// overrides the header's folder for the top level when not empty. If the
// tasks are rejected the header, container and rows stay as they were.
func (m *Model) Ingest(h model.FolderHeader, container model.FolderID, records TaskRecords) error {
	start := time.Now()
	b, err := m.stage(records)
	if err != nil {
		return err
	}
	m.setFolder(h)
	if container == "" {
		container = h.ID
	}
	m.container = container
	m.install(b, start)
	return nil
}

// SetRegistry swaps the lookups, e.g. after a reload. The new registry is
// used from the next sort on.
func (m *Model) SetRegistry(reg Registry) {
	if reg == nil {
		reg = emptyRegistry{}
	}
	m.reg = reg
}

// Registry returns the lookups in use.
func (m *Model) Registry() Registry {
	return m.reg
}

// Folder returns the current folder header.
func (m *Model) Folder() model.FolderHeader {
	return m.folder
}

// IsLogicalView reports whether the view is a logical grouping without
// custom columns.
func (m *Model) IsLogicalView() bool {
	return m.logical
}

// SetLogicalView marks the current view as a logical grouping rather than
// a real folder. Logical views have no custom columns.
func (m *Model) SetLogicalView() {
	if m.clearColumns() {
		m.applySort()
	}
}

// clearColumns drops the custom columns and reports whether the sort fell
// back from a custom field.
func (m *Model) clearColumns() bool {
	m.logical = true
	m.folder.ColumnIDs = nil
	if m.sort.Field == SortCustomField {
		m.sort = DefaultSortState()
		return true
	}
	return false
}

// SetActiveContainer changes the folder used for the top-level set and
// rebuilds the tree for the current batch.
func (m *Model) SetActiveContainer(id model.FolderID) {
	m.container = id
	m.batch.buildRelations(id)
	m.applySort()
}

// Container returns the active container id.
func (m *Model) Container() model.FolderID {
	return m.container
}

// IngestTasks replaces the task set. The new batch is built and indexed
// completely before it becomes visible; on error the previous batch stays
// active. Expand state is reset, the sort selection is re-applied.
func (m *Model) IngestTasks(records TaskRecords) error {
	start := time.Now()
	b, err := m.stage(records)
	if err != nil {
		return err
	}
	m.install(b, start)
	return nil
}

// stage builds and indexes the next batch without making it visible.
func (m *Model) stage(records TaskRecords) (*Batch, error) {
	b, err := newBatch(m.epoch+1, records)
	if err != nil {
		m.log.Warn("ingest rejected", "error", err)
		return nil, fmt.Errorf("ingest tasks: %w", err)
	}
	return b, nil
}

// install builds the relations of a staged batch for the current container
// and swaps it in.
func (m *Model) install(b *Batch, start time.Time) {
	m.epoch = b.epoch

	b.buildRelations(m.container)
	b.cycles = b.findCycles()
	m.batch = b

	if m.sort.Field == SortNone {
		m.sort = DefaultSortState()
	}
	m.applySort()

	m.log.Debug("ingested tasks",
		"epoch", b.epoch,
		"tasks", b.Len(),
		"edges", b.EdgeCount(),
		"top_level", len(b.topLevel),
		"rows", len(b.rows),
		"took", time.Since(start))
	if len(b.cycles) > 0 {
		m.log.Warn("super-task cycles", "count", len(b.cycles), "first", b.cycles[0])
	}
}

// Batch returns the current batch. It is replaced, not modified, by the
// next successful ingest.
func (m *Model) Batch() *Batch {
	return m.batch
}

// Epoch returns the current batch's epoch; 0 before the first ingest.
func (m *Model) Epoch() uint64 {
	return m.batch.epoch
}

// Cycles returns the super-task cycles found in the current batch.
func (m *Model) Cycles() [][]model.TaskID {
	return m.batch.cycles
}

// SortState returns the current sort selection.
func (m *Model) SortState() SortState {
	return m.sort
}

// SelectSortField picks a sort column. Picking the current field flips the
// direction.
func (m *Model) SelectSortField(field SortField) {
	m.sort = m.sort.Select(field)
	m.applySort()
}

// SelectSortCustomField picks a custom field column.
func (m *Model) SelectSortCustomField(id model.FieldID) {
	m.sort = m.sort.SelectCustomField(id)
	m.applySort()
}

// Resort re-applies the current sort selection, picking up registry changes.
func (m *Model) Resort() {
	m.applySort()
}

// ActiveOnly reports whether the active-only filter is on.
func (m *Model) ActiveOnly() bool {
	return m.activeOnly
}

// SetActiveOnly switches the active-only filter and rebuilds the rows.
func (m *Model) SetActiveOnly(on bool) {
	if m.activeOnly == on {
		return
	}
	m.activeOnly = on
	m.batch.rebuildAll(on)
}

// applySort refreshes cached lookups, sorts the top level and rebuilds
// every row. SortNone restores ingestion order.
func (m *Model) applySort() {
	start := time.Now()
	b := m.batch

	b.refreshCaches(m.reg)
	m.compare = newComparator(m.sort, m.reg)
	if m.compare == nil {
		b.buildRelations(m.container)
	}
	b.sortTopLevel(m.compare)
	b.rebuildAll(m.activeOnly)

	m.log.Debug("sorted tasks",
		"elements", len(b.topLevel),
		"field", m.sort.Field.String(),
		"direction", m.sort.Direction.String(),
		"took", time.Since(start))
}

// RowCount returns the number of flattened rows.
func (m *Model) RowCount() int {
	return len(m.batch.rows)
}

// RowAt returns row i.
func (m *Model) RowAt(i int) (Row, error) {
	if i < 0 || i >= len(m.batch.rows) {
		return Row{}, fmt.Errorf("row %d of %d: %w", i, len(m.batch.rows), ErrOutOfRange)
	}
	return m.batch.rows[i], nil
}

// Rows returns the flattened rows. The slice is owned by the model and is
// only valid until the next mutating call.
func (m *Model) Rows() []Row {
	return m.batch.rows
}

// Node returns the node a row points at. Rows produced by an earlier batch
// are rejected.
func (m *Model) Node(row Row) (*Node, error) {
	if row.Epoch != m.batch.epoch {
		return nil, fmt.Errorf("row epoch %d, current %d: %w", row.Epoch, m.batch.epoch, ErrStaleRow)
	}
	if row.Node < 0 || int(row.Node) >= len(m.batch.nodes) {
		return nil, fmt.Errorf("node %d: %w", row.Node, ErrOutOfRange)
	}
	return &m.batch.nodes[row.Node], nil
}

// ToggleExpanded flips the expand state of the task at row i and patches
// the rows of its subtree.
func (m *Model) ToggleExpanded(i int) error {
	row, err := m.RowAt(i)
	if err != nil {
		return err
	}
	b := m.batch
	node := &b.nodes[row.Node]
	node.Expanded = !node.Expanded

	if node.Expanded && node.NeedsSubSort && row.VisibleChildren > 1 {
		b.sortChildren(row.Node, m.compare)
	}
	m.refresh(i)
	return nil
}

// refresh re-flattens the subtree at row r. When the node can appear more
// than once in the tree (it, or one of its ancestors, has several parents or
// top-level entries) a full rebuild keeps every occurrence in sync.
func (m *Model) refresh(r int) {
	b := m.batch
	if !b.occursOnce(r) {
		b.rebuildAll(m.activeOnly)
		return
	}
	b.rebuildSubtree(r, m.activeOnly)
}

// Window returns the rows intersecting the viewport. Expanded rows in the
// window (from the anchor on) whose children still need sorting are sorted
// and re-flattened first; this never changes the row count.
func (m *Model) Window(scrollOffset, viewportHeight float64) (Window, error) {
	w, err := computeWindow(m.batch.rows, scrollOffset, viewportHeight, m.rowHeight)
	if err != nil {
		return Window{}, err
	}

	b := m.batch
	for r := w.Anchor; r < w.Last && r < len(b.rows); r++ {
		row := b.rows[r]
		node := &b.nodes[row.Node]
		if !row.Expanded || !node.NeedsSubSort || row.VisibleChildren < 2 {
			continue
		}
		b.sortChildren(row.Node, m.compare)
		m.refresh(r)
	}
	return w, nil
}

// RowHeight returns the unscaled row height.
func (m *Model) RowHeight() float64 {
	return m.rowHeight
}
