package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/tasktable/pkg/model"
	"github.com/vanderheijden86/tasktable/pkg/registry"
)

// File names inside a data directory.
const (
	FolderFile       = "folder.json"
	TasksFile        = "tasks.json"
	WorkflowsFile    = "workflows.json"
	ContactsFile     = "contacts.json"
	CustomFieldsFile = "customfields.json"
)

// Files lists every file a dataset is read from.
var Files = []string{FolderFile, TasksFile, WorkflowsFile, ContactsFile, CustomFieldsFile}

// Dataset is everything one folder load produces.
type Dataset struct {
	Dir      string
	Folder   model.FolderHeader
	Tasks    TaskRecords
	Statuses []model.Status
	Users    []model.User
	Fields   []model.CustomField
}

// Registry builds the lookups for the dataset.
func (d *Dataset) Registry() *registry.Registry {
	return registry.New(d.Statuses, d.Users, d.Fields)
}

// LoadDataset reads the five documents of dir concurrently. The folder and
// tasks documents are required; the registry documents are optional and
// yield empty lists when missing.
func LoadDataset(ctx context.Context, dir string) (*Dataset, error) {
	ds := &Dataset{Dir: dir}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		folder, err := readFile(ctx, dir, FolderFile, true, DecodeFolder)
		ds.Folder = folder
		return err
	})
	g.Go(func() error {
		tasks, err := readFile(ctx, dir, TasksFile, true, DecodeTasks)
		ds.Tasks = tasks
		return err
	})
	g.Go(func() error {
		statuses, err := readFile(ctx, dir, WorkflowsFile, false, DecodeStatuses)
		ds.Statuses = statuses
		return err
	})
	g.Go(func() error {
		users, err := readFile(ctx, dir, ContactsFile, false, DecodeUsers)
		ds.Users = users
		return err
	})
	g.Go(func() error {
		fields, err := readFile(ctx, dir, CustomFieldsFile, false, DecodeCustomFields)
		ds.Fields = fields
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

// readFile opens dir/name and decodes it. A missing optional file yields the
// zero value.
func readFile[T any](ctx context.Context, dir, name string, required bool, decode func(io.Reader) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return zero, nil
		}
		return zero, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	v, err := decode(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
