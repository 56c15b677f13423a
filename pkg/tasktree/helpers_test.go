package tasktree

import (
	"fmt"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

const testFolder model.FolderID = "F"

// fataler is satisfied by *testing.T and *rapid.T.
type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// testRegistry is a map-backed Registry for tests.
type testRegistry struct {
	statuses map[model.StatusID]*model.Status
	users    map[model.UserID]*model.User
	fields   map[model.FieldID]*model.CustomField
}

func newTestRegistry() *testRegistry {
	return &testRegistry{
		statuses: make(map[model.StatusID]*model.Status),
		users:    make(map[model.UserID]*model.User),
		fields:   make(map[model.FieldID]*model.CustomField),
	}
}

func (r *testRegistry) Status(id model.StatusID) (*model.Status, bool) {
	s, ok := r.statuses[id]
	return s, ok
}

func (r *testRegistry) User(id model.UserID) (*model.User, bool) {
	u, ok := r.users[id]
	return u, ok
}

func (r *testRegistry) CustomField(id model.FieldID) (*model.CustomField, bool) {
	f, ok := r.fields[id]
	return f, ok
}

func (r *testRegistry) addStatus(id model.StatusID, group model.StatusGroup) *testRegistry {
	r.statuses[id] = &model.Status{ID: id, Name: string(id), NaturalIndex: len(r.statuses), Group: group}
	return r
}

func (r *testRegistry) addUser(id model.UserID, first, last string) *testRegistry {
	r.users[id] = &model.User{ID: id, FirstName: first, LastName: last}
	return r
}

func (r *testRegistry) addField(id model.FieldID, title string, typ model.CustomFieldType) *testRegistry {
	r.fields[id] = &model.CustomField{ID: id, Title: title, Type: typ}
	return r
}

// top returns a task in the test folder.
func top(id, title string) model.Task {
	return model.Task{ID: model.TaskID(id), Title: title, FolderIDs: []model.FolderID{testFolder}}
}

// child returns a task under the given parent tasks.
func child(id, title string, parents ...string) model.Task {
	t := model.Task{ID: model.TaskID(id), Title: title}
	for _, p := range parents {
		t.ParentIDs = append(t.ParentIDs, model.TaskID(p))
	}
	return t
}

// newTestModel ingests tasks for the test folder and fails the test on error.
func newTestModel(t fataler, reg Registry, tasks ...model.Task) *Model {
	t.Helper()
	m := New(Options{Registry: reg})
	m.IngestFolderHeader(modelHeader())
	if err := m.IngestTasks(Tasks(tasks)); err != nil {
		t.Fatalf("IngestTasks failed: %v", err)
	}
	return m
}

// shape is the comparable projection of a row used in assertions.
type shape struct {
	ID      model.TaskID
	Depth   int
	Subtree int
}

func shapes(m *Model) []shape {
	out := make([]shape, 0, m.RowCount())
	for _, row := range m.Rows() {
		out = append(out, shape{
			ID:      m.batch.nodes[row.Node].Task.ID,
			Depth:   row.Depth,
			Subtree: row.SubtreeRows,
		})
	}
	return out
}

func rowIDs(m *Model) []model.TaskID {
	out := make([]model.TaskID, 0, m.RowCount())
	for _, row := range m.Rows() {
		out = append(out, m.batch.nodes[row.Node].Task.ID)
	}
	return out
}

func topLevelIDs(b *Batch) []model.TaskID {
	out := make([]model.TaskID, 0, len(b.topLevel))
	for _, i := range b.topLevel {
		out = append(out, b.nodes[i].Task.ID)
	}
	return out
}

// rowOf returns the row index of the first row showing id.
func rowOf(t fataler, m *Model, id model.TaskID) int {
	t.Helper()
	for i, row := range m.Rows() {
		if m.batch.nodes[row.Node].Task.ID == id {
			return i
		}
	}
	t.Fatalf("no row for %s in %v", id, rowIDs(m))
	return -1
}

func ids(s ...string) []model.TaskID {
	out := make([]model.TaskID, len(s))
	for i, v := range s {
		out[i] = model.TaskID(v)
	}
	return out
}

func taskID(i int) model.TaskID {
	return model.TaskID(fmt.Sprintf("t%02d", i))
}

func modelHeader(columns ...model.FieldID) model.FolderHeader {
	return model.FolderHeader{ID: testFolder, Name: "Folder", ColumnIDs: columns}
}
