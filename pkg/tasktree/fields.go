package tasktree

import (
	"strings"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

// Fixed columns precede the folder's custom columns.
const (
	ColumnTitle = iota
	ColumnStatus
	ColumnAssignees
	CustomColumnsStart
)

// Column widths in unscaled pixels.
const (
	titleColumnWidth    = 500.0
	statusColumnWidth   = 200.0
	assigneeColumnWidth = 200.0
	customColumnWidth   = 50.0
)

// Column describes one header cell.
type Column struct {
	Title string
	Width float64
	Sort  SortField
	Field *model.CustomField // nil for fixed columns and unresolved custom fields
	ID    model.FieldID      // Custom field id, empty for fixed columns
}

// ResolveColumns resolves the folder's custom column ids against the
// registry. Unresolved ids yield nil entries so positions stay aligned.
// Nothing is cached; registries may change between frames.
func (m *Model) ResolveColumns() []*model.CustomField {
	fields := make([]*model.CustomField, len(m.folder.ColumnIDs))
	for i, id := range m.folder.ColumnIDs {
		fields[i], _ = m.reg.CustomField(id)
	}
	return fields
}

// FieldValue looks up a task's value for a resolved field.
func (m *Model) FieldValue(task *model.Task, field *model.CustomField) (model.FieldValue, error) {
	if task == nil || field == nil {
		return model.FieldValue{}, ErrNotFound
	}
	v, ok := task.FieldValue(field.ID)
	if !ok {
		return model.FieldValue{}, ErrNotFound
	}
	return v, nil
}

// ColumnLayout returns the header columns, widths multiplied by scale.
func (m *Model) ColumnLayout(scale float64) []Column {
	if scale <= 0 {
		scale = 1
	}
	cols := []Column{
		{Title: "Title", Width: titleColumnWidth * scale, Sort: SortTitle},
		{Title: "Status", Width: statusColumnWidth * scale, Sort: SortStatus},
		{Title: "Assignees", Width: assigneeColumnWidth * scale, Sort: SortAssignee},
	}
	fields := m.ResolveColumns()
	for i, field := range fields {
		col := Column{
			Width: customColumnWidth * scale,
			Sort:  SortCustomField,
			Field: field,
			ID:    m.folder.ColumnIDs[i],
		}
		if field != nil {
			col.Title = field.Title
		}
		cols = append(cols, col)
	}
	return cols
}

// CellText returns the text shown for a row in a column. Anything that
// cannot be resolved renders blank.
func (m *Model) CellText(row Row, column int) string {
	node, err := m.Node(row)
	if err != nil {
		return ""
	}

	switch column {
	case ColumnTitle:
		return node.Task.Title
	case ColumnStatus:
		if node.Status == nil {
			return ""
		}
		return node.Status.Name
	case ColumnAssignees:
		return m.assigneeNames(&node.Task)
	}

	custom := column - CustomColumnsStart
	if custom < 0 || custom >= len(m.folder.ColumnIDs) {
		return ""
	}
	field, _ := m.reg.CustomField(m.folder.ColumnIDs[custom])
	v, err := m.FieldValue(&node.Task, field)
	if err != nil {
		return ""
	}
	return v.Value
}

// assigneeNames joins every resolvable assignee's full name.
func (m *Model) assigneeNames(task *model.Task) string {
	var sb strings.Builder
	for _, id := range task.AssigneeIDs {
		user, ok := m.reg.User(id)
		if !ok {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(user.FullName())
	}
	return sb.String()
}
