package tasktree

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/natefinch/atomic"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

// ViewState is the part of the view that survives restarts.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "sort": "custom_field",
//	  "direction": "desc",
//	  "custom_field": "IEAAAAAAJUAAAAAB",
//	  "active_only": true
//	}
//
// A missing file means defaults; a corrupted one is reported as an error.
type ViewState struct {
	Version     int           `json:"version"`
	Sort        string        `json:"sort"`
	Direction   string        `json:"direction"`
	CustomField model.FieldID `json:"custom_field,omitempty"`
	ActiveOnly  bool          `json:"active_only"`
}

// ViewStateVersion is the current schema version for view state files
const ViewStateVersion = 1

// viewStateFileName is the filename used inside the data directory
const viewStateFileName = "view-state.json"

// ViewStatePath returns the view state file inside dir.
func ViewStatePath(dir string) string {
	if dir == "" {
		dir = ".tasktable"
	}
	return filepath.Join(dir, viewStateFileName)
}

// ViewState captures the current sort selection and filter.
func (m *Model) ViewState() ViewState {
	vs := ViewState{
		Version:    ViewStateVersion,
		Sort:       m.sort.Field.String(),
		Direction:  m.sort.normalizedDirection().String(),
		ActiveOnly: m.activeOnly,
	}
	if m.sort.Field == SortCustomField {
		vs.CustomField = m.sort.CustomField
	}
	return vs
}

// ApplyViewState restores a saved selection and re-sorts.
func (m *Model) ApplyViewState(vs ViewState) error {
	field, err := ParseSortField(vs.Sort)
	if err != nil {
		return err
	}
	dir := SortAscending
	switch vs.Direction {
	case "", "asc":
	case "desc":
		dir = SortDescending
	default:
		return fmt.Errorf("unknown sort direction %q", vs.Direction)
	}
	if field == SortCustomField && vs.CustomField == "" {
		return errors.New("custom field sort without a field id")
	}

	m.sort = SortState{Field: field, Direction: dir}
	if field == SortCustomField {
		m.sort.CustomField = vs.CustomField
	}
	m.activeOnly = vs.ActiveOnly
	m.applySort()
	return nil
}

// LoadViewState reads a view state file. A missing file is not an error and
// yields ok == false.
func LoadViewState(path string) (vs ViewState, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return ViewState{}, false, nil
	}
	if err != nil {
		return ViewState{}, false, fmt.Errorf("read view state: %w", err)
	}
	if err := json.Unmarshal(data, &vs); err != nil {
		return ViewState{}, false, fmt.Errorf("invalid view state %s: %w", path, err)
	}
	return vs, true, nil
}

// SaveViewState writes vs to path atomically, creating the directory.
func SaveViewState(path string, vs ViewState) error {
	if vs.Version == 0 {
		vs.Version = ViewStateVersion
	}
	data, err := json.MarshalIndent(vs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal view state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write view state %s: %w", path, err)
	}
	return nil
}
