package tasktree

import (
	"github.com/vanderheijden86/tasktable/pkg/model"
)

// Registry is the lookup contract for the external status, user and custom
// field registries. Lookups report false for unknown ids.
type Registry interface {
	Status(id model.StatusID) (*model.Status, bool)
	User(id model.UserID) (*model.User, bool)
	CustomField(id model.FieldID) (*model.CustomField, bool)
}

type emptyRegistry struct{}

func (emptyRegistry) Status(model.StatusID) (*model.Status, bool)          { return nil, false }
func (emptyRegistry) User(model.UserID) (*model.User, bool)                { return nil, false }
func (emptyRegistry) CustomField(model.FieldID) (*model.CustomField, bool) { return nil, false }
