package tasktree

import (
	"github.com/vanderheijden86/tasktable/pkg/model"
)

// span is a sub-range of a batch's children slab
type span struct {
	off int32
	n   int32
}

// Node is one task of a batch together with everything derived from it:
// cached registry lookups, its children span and per-node view state.
type Node struct {
	Task model.Task
	Hash Hash

	// Refreshed before every sort; the registries may change between sorts.
	Status        *model.Status
	FirstAssignee *model.User

	Expanded     bool
	NeedsSubSort bool

	children span
	parents  span  // hashes of Task.ParentIDs in the batch's parentHashes
	topRefs  int32 // occurrences in the top-level list
	edgeRefs int32 // resolved parent edges pointing at this node
	pending  int32 // child counter, then fill cursor, during relation building
	onPath   bool  // set while the flattener is inside this node's subtree
}

// Refs returns how many places in the tree this node appears under.
func (n *Node) Refs() int {
	return int(n.topRefs + n.edgeRefs)
}

// ChildCount returns the number of resolved children.
func (n *Node) ChildCount() int {
	return int(n.children.n)
}

// Batch holds one ingested task set and all structures derived from it.
// A batch is never rebuilt in place: re-ingestion produces a new batch with a
// higher epoch, so a reader holding an old batch keeps a consistent view.
type Batch struct {
	epoch        uint64
	nodes        []Node
	index        IDIndex
	parentHashes []Hash
	container    model.FolderID
	topLevel     []int32
	slab         []int32
	edges        int
	rows         []Row
	scratch      []Row
	cycles       [][]model.TaskID
}

// Epoch returns the batch generation number.
func (b *Batch) Epoch() uint64 {
	return b.epoch
}

// Len returns the number of tasks in the batch.
func (b *Batch) Len() int {
	return len(b.nodes)
}

// Node returns the node at position i.
func (b *Batch) Node(i int32) *Node {
	return &b.nodes[i]
}

// Lookup resolves a task id to its node.
func (b *Batch) Lookup(id model.TaskID) (*Node, bool) {
	i, ok := b.index.Lookup(id, HashID(id))
	if !ok {
		return nil, false
	}
	return &b.nodes[i], true
}

// Children returns the child node positions of node i, in current sort order.
func (b *Batch) Children(i int32) []int32 {
	s := b.nodes[i].children
	return b.slab[s.off : s.off+s.n : s.off+s.n]
}

// TopLevel returns the node positions of the top-level tasks, in current sort order.
func (b *Batch) TopLevel() []int32 {
	return b.topLevel
}

// EdgeCount returns the number of parent edges that resolved within the batch.
func (b *Batch) EdgeCount() int {
	return b.edges
}

// Container returns the folder id the top-level set was built for.
func (b *Batch) Container() model.FolderID {
	return b.container
}

// parentHashesOf returns the precomputed hashes of node i's parent ids, aligned
// with Task.ParentIDs.
func (b *Batch) parentHashesOf(i int) []Hash {
	s := b.nodes[i].parents
	return b.parentHashes[s.off : s.off+s.n]
}
