package tasktree

import (
	"fmt"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

// Hash is a task id hash computed once by the caller and reused for every
// lookup of the same id during relation building.
type Hash uint32

// HashID returns the 32-bit FNV-1a hash of a task id.
func HashID(id model.TaskID) Hash {
	h := uint32(2166136261)
	for i := 0; i < len(id); i++ {
		h ^= uint32(id[i])
		h *= 16777619
	}
	return Hash(h)
}

type indexSlot struct {
	id   model.TaskID
	hash Hash
	node int32
	used bool
}

// IDIndex maps task ids to node positions within one batch.
// Open addressing with linear probing; the table is kept at most half full.
type IDIndex struct {
	slots []indexSlot
	mask  uint32
	count int
}

// Reset drops all entries and sizes the table for capacity ids.
func (x *IDIndex) Reset(capacity int) {
	size := 8
	for size < capacity*2 {
		size <<= 1
	}
	if cap(x.slots) >= size {
		x.slots = x.slots[:size]
		clear(x.slots)
	} else {
		x.slots = make([]indexSlot, size)
	}
	x.mask = uint32(size - 1)
	x.count = 0
}

// Insert adds id at node position. It fails with ErrDuplicateID when the id
// is already present in the current batch.
func (x *IDIndex) Insert(id model.TaskID, hash Hash, node int32) error {
	if x.slots == nil {
		x.Reset(0)
	}
	if (x.count+1)*2 > len(x.slots) {
		x.grow()
	}

	i := uint32(hash) & x.mask
	for {
		s := &x.slots[i]
		if !s.used {
			*s = indexSlot{id: id, hash: hash, node: node, used: true}
			x.count++
			return nil
		}
		if s.hash == hash && s.id == id {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		i = (i + 1) & x.mask
	}
}

// Lookup returns the node position stored for id.
func (x *IDIndex) Lookup(id model.TaskID, hash Hash) (int32, bool) {
	if x.count == 0 {
		return 0, false
	}
	i := uint32(hash) & x.mask
	for {
		s := &x.slots[i]
		if !s.used {
			return 0, false
		}
		if s.hash == hash && s.id == id {
			return s.node, true
		}
		i = (i + 1) & x.mask
	}
}

// Len returns the number of stored ids.
func (x *IDIndex) Len() int {
	return x.count
}

func (x *IDIndex) grow() {
	old := x.slots
	size := len(old) * 2
	if size < 8 {
		size = 8
	}
	x.slots = make([]indexSlot, size)
	x.mask = uint32(size - 1)
	for _, s := range old {
		if !s.used {
			continue
		}
		i := uint32(s.hash) & x.mask
		for x.slots[i].used {
			i = (i + 1) & x.mask
		}
		x.slots[i] = s
	}
}
