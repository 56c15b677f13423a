package tasktree

import (
	"slices"
)

// Row is one line of the flattened tree.
type Row struct {
	Node  int32 // Node position in the batch
	Depth int   // Nesting level (0 = top-level)

	// SubtreeRows is the number of rows the node's subtree occupies below it
	// while the node is expanded. For a collapsed node it is the number of
	// rows an expand would insert.
	SubtreeRows int

	// VisibleChildren counts direct children that pass the active filter,
	// whether or not the node is expanded.
	VisibleChildren int

	Expanded     bool // Node's expand state when the row was produced
	NeedsSubSort bool // Node's sub-sort flag when the row was produced
	Epoch        uint64
}

// flattener performs the depth-first pass. Rows are appended to out.
type flattener struct {
	b          *Batch
	activeOnly bool
	out        []Row
}

func (f *flattener) passesFilter(n *Node) bool {
	return !f.activeOnly || n.Status.IsActive()
}

// visit walks node i at depth. When emit is set the node and its visible
// descendants are appended to out. It returns the number of rows the node
// contributes when its parent chain is expanded: 0 if filtered out (or
// already on the current path), else 1 plus its subtree when expanded.
func (f *flattener) visit(i int32, depth int, emit bool) int {
	node := &f.b.nodes[i]
	if !f.passesFilter(node) || node.onPath {
		return 0
	}
	if !emit && !node.Expanded {
		return 1
	}

	node.onPath = true
	defer func() { node.onPath = false }()

	row := -1
	if emit {
		row = len(f.out)
		f.out = append(f.out, Row{
			Node:         i,
			Depth:        depth,
			Expanded:     node.Expanded,
			NeedsSubSort: node.NeedsSubSort,
			Epoch:        f.b.epoch,
		})
	}

	sub, visible := 0, 0
	for _, child := range f.b.Children(i) {
		n := f.visit(child, depth+1, emit && node.Expanded)
		if n > 0 {
			visible++
		}
		sub += n
	}

	if row >= 0 {
		f.out[row].SubtreeRows = sub
		f.out[row].VisibleChildren = visible
	}
	if node.Expanded {
		return 1 + sub
	}
	return 1
}

// rebuildAll flattens the whole top-level set.
func (b *Batch) rebuildAll(activeOnly bool) {
	f := flattener{b: b, activeOnly: activeOnly, out: b.rows[:0]}
	for _, i := range b.topLevel {
		f.visit(i, 0, true)
	}
	b.rows = f.out
}

// rebuildSubtree re-flattens the subtree of row r and splices the result over
// the rows its previous subtree occupied. Ancestor rows have their counts
// patched; no other row is touched.
func (b *Batch) rebuildSubtree(r int, activeOnly bool) {
	old := b.rows[r]
	oldEnd := r + 1
	if old.Expanded {
		oldEnd += old.SubtreeRows
	}

	// Ancestors must count as on-path so a cycle through them is cut exactly
	// where a full rebuild would cut it.
	ancestors := b.ancestorRows(r)
	for _, a := range ancestors {
		b.nodes[b.rows[a].Node].onPath = true
	}

	f := flattener{b: b, activeOnly: activeOnly, out: b.scratch[:0]}
	f.visit(old.Node, old.Depth, true)

	for _, a := range ancestors {
		b.nodes[b.rows[a].Node].onPath = false
	}

	delta := len(f.out) - (oldEnd - r)
	b.rows = slices.Replace(b.rows, r, oldEnd, f.out...)
	b.scratch = f.out[:0]

	for _, a := range ancestors {
		b.rows[a].SubtreeRows += delta
	}
}

// occursOnce reports whether the node at row r has a single path from the
// top level, i.e. it and every ancestor are referenced exactly once.
func (b *Batch) occursOnce(r int) bool {
	if b.nodes[b.rows[r].Node].Refs() != 1 {
		return false
	}
	for _, a := range b.ancestorRows(r) {
		if b.nodes[b.rows[a].Node].Refs() != 1 {
			return false
		}
	}
	return true
}

// ancestorRows returns the rows enclosing row r, nearest first.
func (b *Batch) ancestorRows(r int) []int {
	var out []int
	want := b.rows[r].Depth
	for i := r - 1; i >= 0 && want > 0; i-- {
		if b.rows[i].Depth < want {
			out = append(out, i)
			want = b.rows[i].Depth
		}
	}
	return out
}
