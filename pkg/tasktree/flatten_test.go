package tasktree

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

// A in the folder, B and C under A.
func TestFlattenParentWithTwoChildren(t *testing.T) {
	m := newTestModel(t, nil, top("A", "a"), child("B", "b", "A"), child("C", "c", "A"))

	collapsed := []shape{{ID: "A", Depth: 0, Subtree: 2}}
	if diff := cmp.Diff(collapsed, shapes(m)); diff != "" {
		t.Fatalf("initial rows mismatch (-want +got):\n%s", diff)
	}

	if err := m.ToggleExpanded(0); err != nil {
		t.Fatalf("ToggleExpanded failed: %v", err)
	}
	expanded := []shape{
		{ID: "A", Depth: 0, Subtree: 2},
		{ID: "B", Depth: 1, Subtree: 0},
		{ID: "C", Depth: 1, Subtree: 0},
	}
	if diff := cmp.Diff(expanded, shapes(m)); diff != "" {
		t.Errorf("expanded rows mismatch (-want +got):\n%s", diff)
	}

	if err := m.ToggleExpanded(0); err != nil {
		t.Fatalf("ToggleExpanded failed: %v", err)
	}
	if diff := cmp.Diff(collapsed, shapes(m)); diff != "" {
		t.Errorf("collapsed rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenVisibleChildren(t *testing.T) {
	reg := newTestRegistry().
		addStatus("open", model.StatusGroupActive).
		addStatus("done", model.StatusGroupCompleted)
	a := top("A", "a")
	a.StatusID = "open"
	b := child("B", "b", "A")
	b.StatusID = "open"
	c := child("C", "c", "A")
	c.StatusID = "done"

	m := newTestModel(t, reg, a, b, c)
	row, _ := m.RowAt(0)
	if row.VisibleChildren != 2 {
		t.Errorf("expected 2 visible children, got %d", row.VisibleChildren)
	}

	m.SetActiveOnly(true)
	row, _ = m.RowAt(0)
	if row.VisibleChildren != 1 || row.SubtreeRows != 1 {
		t.Errorf("expected 1 visible child and subtree 1, got %d and %d", row.VisibleChildren, row.SubtreeRows)
	}
}

// A filtered-out ancestor hides its whole subtree, whatever the descendants' status.
func TestActiveOnlyFilterIsTransitive(t *testing.T) {
	reg := newTestRegistry().
		addStatus("open", model.StatusGroupActive).
		addStatus("done", model.StatusGroupCompleted)
	withStatus := func(task model.Task, s model.StatusID) model.Task {
		task.StatusID = s
		return task
	}
	m := newTestModel(t, reg,
		withStatus(top("A", "a"), "open"),
		withStatus(child("B", "b", "A"), "done"),
		withStatus(child("C", "c", "B"), "open"),
		withStatus(child("D", "d", "C"), "open"),
		withStatus(top("E", "e"), "nope"),
	)

	// Expand everything while unfiltered.
	for _, id := range ids("A", "B", "C") {
		if err := m.ToggleExpanded(rowOf(t, m, id)); err != nil {
			t.Fatalf("ToggleExpanded(%s) failed: %v", id, err)
		}
	}
	if diff := cmp.Diff(ids("A", "B", "C", "D", "E"), rowIDs(m)); diff != "" {
		t.Fatalf("unfiltered rows mismatch (-want +got):\n%s", diff)
	}

	m.SetActiveOnly(true)
	want := []shape{{ID: "A", Depth: 0, Subtree: 0}}
	if diff := cmp.Diff(want, shapes(m)); diff != "" {
		t.Errorf("filtered rows mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenCycleGuard(t *testing.T) {
	a := top("A", "a")
	a.ParentIDs = ids("B")
	m := newTestModel(t, nil, a, child("B", "b", "A"))

	if err := m.ToggleExpanded(0); err != nil {
		t.Fatalf("ToggleExpanded failed: %v", err)
	}
	if err := m.ToggleExpanded(1); err != nil {
		t.Fatalf("ToggleExpanded failed: %v", err)
	}
	want := []shape{
		{ID: "A", Depth: 0, Subtree: 1},
		{ID: "B", Depth: 1, Subtree: 0},
	}
	if diff := cmp.Diff(want, shapes(m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([][]model.TaskID{ids("A", "B")}, m.Cycles()); diff != "" {
		t.Errorf("cycles mismatch (-want +got):\n%s", diff)
	}
}

func TestFlattenSelfParent(t *testing.T) {
	self := top("S", "s")
	self.ParentIDs = ids("S")
	m := newTestModel(t, nil, self)

	if err := m.ToggleExpanded(0); err != nil {
		t.Fatalf("ToggleExpanded failed: %v", err)
	}
	if diff := cmp.Diff([]shape{{ID: "S"}}, shapes(m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]model.TaskID{ids("S")}, m.Cycles()); diff != "" {
		t.Errorf("cycles mismatch (-want +got):\n%s", diff)
	}
}

// Duplicate membership shows the task twice; toggling one occurrence
// toggles both since expand state belongs to the task.
func TestFlattenDuplicateOccurrences(t *testing.T) {
	twice := top("A", "a")
	twice.FolderIDs = append(twice.FolderIDs, testFolder)
	m := newTestModel(t, nil, twice, child("B", "b", "A"))

	if diff := cmp.Diff(ids("A", "A"), rowIDs(m)); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
	if err := m.ToggleExpanded(0); err != nil {
		t.Fatalf("ToggleExpanded failed: %v", err)
	}
	if diff := cmp.Diff(ids("A", "B", "A", "B"), rowIDs(m)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestToggleOutOfRange(t *testing.T) {
	m := newTestModel(t, nil, top("A", "a"))
	for _, i := range []int{-1, 1, 100} {
		if err := m.ToggleExpanded(i); err == nil {
			t.Errorf("ToggleExpanded(%d): expected error", i)
		}
	}
}

// genForest draws a forest: every task has at most one parent with a lower
// index, roots sit in the folder exactly once.
func genForest(t *rapid.T) []model.Task {
	n := rapid.IntRange(1, 40).Draw(t, "n")
	tasks := make([]model.Task, n)
	for i := range tasks {
		tasks[i] = model.Task{
			ID:    taskID(i),
			Title: rapid.StringMatching(`[a-d]{1,2}`).Draw(t, "title"),
		}
		parent := rapid.IntRange(-1, i-1).Draw(t, "parent")
		if parent < 0 {
			tasks[i].FolderIDs = []model.FolderID{testFolder}
		} else {
			tasks[i].ParentIDs = []model.TaskID{taskID(parent)}
		}
	}
	return tasks
}

func genStatuses(t *rapid.T, tasks []model.Task) *testRegistry {
	reg := newTestRegistry().
		addStatus("open", model.StatusGroupActive).
		addStatus("done", model.StatusGroupCompleted)
	for i := range tasks {
		tasks[i].StatusID = rapid.SampledFrom([]model.StatusID{"open", "open", "done", "gone"}).Draw(t, "status")
	}
	return reg
}

// Collapsing removes exactly SubtreeRows rows after the toggled row, and
// every scoped rebuild matches a full rebuild.
func TestToggleInForestMatchesFullRebuild(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genForest(t)
		reg := genStatuses(t, tasks)
		m := newTestModel(t, reg, tasks...)
		m.SetActiveOnly(rapid.Bool().Draw(t, "activeOnly"))

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for s := 0; s < steps && m.RowCount() > 0; s++ {
			r := rapid.IntRange(0, m.RowCount()-1).Draw(t, "row")
			before, _ := m.RowAt(r)
			count := m.RowCount()

			if err := m.ToggleExpanded(r); err != nil {
				t.Fatalf("ToggleExpanded(%d) failed: %v", r, err)
			}

			if before.Expanded {
				if removed := count - m.RowCount(); removed != before.SubtreeRows {
					t.Fatalf("collapse removed %d rows, expected %d", removed, before.SubtreeRows)
				}
			} else if added := m.RowCount() - count; added != before.SubtreeRows {
				t.Fatalf("expand added %d rows, expected %d", added, before.SubtreeRows)
			}

			assertMatchesFullRebuild(t, m)
		}
	})
}

// Same as above over arbitrary graphs: duplicates, multiple parents, cycles.
func TestToggleInGraphMatchesFullRebuild(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tasks := genTasks(t)
		reg := genStatuses(t, tasks)
		m := newTestModel(t, reg, tasks...)
		m.SetActiveOnly(rapid.Bool().Draw(t, "activeOnly"))

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for s := 0; s < steps && m.RowCount() > 0; s++ {
			r := rapid.IntRange(0, m.RowCount()-1).Draw(t, "row")
			if err := m.ToggleExpanded(r); err != nil {
				t.Fatalf("ToggleExpanded(%d) failed: %v", r, err)
			}
			if rapid.Bool().Draw(t, "window") {
				scroll := float64(rapid.IntRange(0, m.RowCount()).Draw(t, "scroll")) * DefaultRowHeight
				if _, err := m.Window(scroll, 10*DefaultRowHeight); err != nil {
					t.Fatalf("Window failed: %v", err)
				}
			}
			assertMatchesFullRebuild(t, m)
		}
	})
}

func assertMatchesFullRebuild(t *rapid.T, m *Model) {
	got := slices.Clone(m.Rows())
	m.batch.rebuildAll(m.activeOnly)
	if diff := cmp.Diff(m.Rows(), got); diff != "" {
		t.Fatalf("scoped rows differ from full rebuild (-full +scoped):\n%s", diff)
	}
}
