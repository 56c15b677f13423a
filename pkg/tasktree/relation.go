package tasktree

import (
	"github.com/vanderheijden86/tasktable/pkg/model"
)

// buildRelations computes the top-level set for container and every node's
// children span.
func (b *Batch) buildRelations(container model.FolderID) {
	b.buildTopLevel(container)
	b.buildChildren()
}

// buildTopLevel collects every task whose folder list contains container.
// A task listing the container twice is added twice.
func (b *Batch) buildTopLevel(container model.FolderID) {
	b.container = container
	b.topLevel = b.topLevel[:0]

	for i := range b.nodes {
		node := &b.nodes[i]
		node.topRefs = 0
		for _, folderID := range node.Task.FolderIDs {
			if folderID == container {
				b.topLevel = append(b.topLevel, int32(i))
				node.topRefs++
			}
		}
	}
}

// buildChildren fills the children slab from the super-task relation.
//
// Step 1 counts resolved edges per parent (dangling parent ids are dropped),
// step 2 hands each parent a disjoint slab range and zeroes its counter,
// step 3 walks the same edges again using the counter as a fill cursor, so
// children start out in ingestion order.
func (b *Batch) buildChildren() {
	for i := range b.nodes {
		node := &b.nodes[i]
		node.pending = 0
		node.edgeRefs = 0
		node.children = span{}
	}

	// Step 1: count
	total := 0
	for i := range b.nodes {
		hashes := b.parentHashesOf(i)
		for j, parentID := range b.nodes[i].Task.ParentIDs {
			parent, ok := b.index.Lookup(parentID, hashes[j])
			if !ok {
				continue
			}
			b.nodes[parent].pending++
			total++
		}
	}

	// Step 2: allocate
	if cap(b.slab) >= total {
		b.slab = b.slab[:total]
	} else {
		b.slab = make([]int32, total)
	}
	off := int32(0)
	for i := range b.nodes {
		node := &b.nodes[i]
		if node.pending == 0 {
			continue
		}
		node.children = span{off: off}
		off += node.pending
		node.pending = 0
	}

	// Step 3: fill
	for i := range b.nodes {
		hashes := b.parentHashesOf(i)
		for j, parentID := range b.nodes[i].Task.ParentIDs {
			parent, ok := b.index.Lookup(parentID, hashes[j])
			if !ok {
				continue
			}
			p := &b.nodes[parent]
			b.slab[p.children.off+p.pending] = int32(i)
			p.pending++
			p.children.n = p.pending
			b.nodes[i].edgeRefs++
		}
	}

	b.edges = total
}
