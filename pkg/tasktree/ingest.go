package tasktree

import (
	"github.com/vanderheijden86/tasktable/pkg/model"
)

// TaskRecords is the decoder side of ingestion: Len sizes the batch up front,
// Each delivers decoded records in batch order and stops at the first error.
type TaskRecords interface {
	Len() int
	Each(fn func(model.Task) error) error
}

// Tasks adapts an already decoded slice to TaskRecords.
type Tasks []model.Task

// Len implements TaskRecords.
func (t Tasks) Len() int {
	return len(t)
}

// Each implements TaskRecords.
func (t Tasks) Each(fn func(model.Task) error) error {
	for i := range t {
		if err := fn(t[i]); err != nil {
			return err
		}
	}
	return nil
}

// newBatch ingests records into a fresh batch and indexes every id.
// Relations are not built here.
func newBatch(epoch uint64, records TaskRecords) (*Batch, error) {
	n := 0
	if records != nil {
		n = records.Len()
	}

	b := &Batch{
		epoch: epoch,
		nodes: make([]Node, 0, n),
		rows:  make([]Row, 0, n),
	}
	b.index.Reset(n)

	if records == nil {
		return b, nil
	}

	err := records.Each(func(task model.Task) error {
		pos := len(b.nodes)
		if err := task.Validate(); err != nil {
			return &IngestError{Position: pos, ID: task.ID, Cause: err}
		}

		hash := HashID(task.ID)
		if err := b.index.Insert(task.ID, hash, int32(pos)); err != nil {
			return &IngestError{Position: pos, ID: task.ID, Cause: err}
		}

		parents := span{off: int32(len(b.parentHashes)), n: int32(len(task.ParentIDs))}
		for _, parentID := range task.ParentIDs {
			b.parentHashes = append(b.parentHashes, HashID(parentID))
		}

		b.nodes = append(b.nodes, Node{
			Task:         task,
			Hash:         hash,
			NeedsSubSort: true,
			parents:      parents,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}
