// Package loader reads task datasets exported from the tracker API: one JSON
// document per endpoint, each wrapping its records in a top-level "data" array.
package loader

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/tasktable/pkg/model"
	"github.com/vanderheijden86/tasktable/pkg/tasktree"
)

// envelope is the common response shape. Only the data array is read;
// kind and any other keys are skipped.
type envelope[T any] struct {
	Kind string `json:"kind"`
	Data []T    `json:"data"`
}

// decodeEnvelope decodes r and returns the data array.
func decodeEnvelope[T any](r io.Reader) ([]T, error) {
	var env envelope[T]
	dec := json.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// TaskRecords holds the raw task objects of a tasks document. Records are
// decoded one at a time as the tree ingests them, so a malformed record is
// reported with its position and nothing after it is decoded.
type TaskRecords []json.RawMessage

var _ tasktree.TaskRecords = TaskRecords(nil)

// Len implements tasktree.TaskRecords.
func (r TaskRecords) Len() int {
	return len(r)
}

// Each implements tasktree.TaskRecords.
func (r TaskRecords) Each(fn func(model.Task) error) error {
	for i, raw := range r {
		var task model.Task
		if err := json.Unmarshal(raw, &task); err != nil {
			return &tasktree.IngestError{Position: i, Cause: fmt.Errorf("decode task: %w", err)}
		}
		if err := fn(task); err != nil {
			return err
		}
	}
	return nil
}

// DecodeTasks reads a tasks document.
func DecodeTasks(r io.Reader) (TaskRecords, error) {
	raw, err := decodeEnvelope[json.RawMessage](r)
	if err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return TaskRecords(raw), nil
}

// DecodeFolder reads a folder document, which must hold exactly one folder.
func DecodeFolder(r io.Reader) (model.FolderHeader, error) {
	folders, err := decodeEnvelope[model.FolderHeader](r)
	if err != nil {
		return model.FolderHeader{}, fmt.Errorf("decode folder: %w", err)
	}
	if len(folders) != 1 {
		return model.FolderHeader{}, fmt.Errorf("decode folder: expected 1 folder, got %d", len(folders))
	}
	return folders[0], nil
}

type workflow struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Statuses []statusRecord `json:"customStatuses"`
}

type statusRecord struct {
	ID    model.StatusID `json:"id"`
	Name  string         `json:"name"`
	Color string         `json:"color"`
	Group string         `json:"group"`
}

// DecodeStatuses reads a workflows document and flattens every workflow's
// statuses. A status's natural index is its position across all workflows.
func DecodeStatuses(r io.Reader) ([]model.Status, error) {
	workflows, err := decodeEnvelope[workflow](r)
	if err != nil {
		return nil, fmt.Errorf("decode workflows: %w", err)
	}
	var out []model.Status
	for _, wf := range workflows {
		for _, s := range wf.Statuses {
			out = append(out, model.Status{
				ID:           s.ID,
				Name:         s.Name,
				Color:        s.Color,
				NaturalIndex: len(out),
				Group:        model.ParseStatusGroup(s.Group),
			})
		}
	}
	return out, nil
}

// DecodeUsers reads a contacts document.
func DecodeUsers(r io.Reader) ([]model.User, error) {
	users, err := decodeEnvelope[model.User](r)
	if err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	return users, nil
}

// DecodeCustomFields reads a custom fields document.
func DecodeCustomFields(r io.Reader) ([]model.CustomField, error) {
	fields, err := decodeEnvelope[model.CustomField](r)
	if err != nil {
		return nil, fmt.Errorf("decode custom fields: %w", err)
	}
	return fields, nil
}
