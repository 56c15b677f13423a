// Package registry holds the status, user and custom field lookups that
// task rows are resolved against.
package registry

import (
	"github.com/vanderheijden86/tasktable/pkg/model"
)

// Registry is an immutable, map-backed set of lookups. A reload builds a new
// Registry rather than mutating the old one.
type Registry struct {
	statuses []model.Status
	users    []model.User
	fields   []model.CustomField

	statusByID map[model.StatusID]*model.Status
	userByID   map[model.UserID]*model.User
	fieldByID  map[model.FieldID]*model.CustomField
}

// New indexes the given entries. Later duplicates of an id win.
// Slices are copied.
func New(statuses []model.Status, users []model.User, fields []model.CustomField) *Registry {
	r := &Registry{
		statuses:   append([]model.Status(nil), statuses...),
		users:      append([]model.User(nil), users...),
		fields:     append([]model.CustomField(nil), fields...),
		statusByID: make(map[model.StatusID]*model.Status, len(statuses)),
		userByID:   make(map[model.UserID]*model.User, len(users)),
		fieldByID:  make(map[model.FieldID]*model.CustomField, len(fields)),
	}
	for i := range r.statuses {
		r.statusByID[r.statuses[i].ID] = &r.statuses[i]
	}
	for i := range r.users {
		r.userByID[r.users[i].ID] = &r.users[i]
	}
	for i := range r.fields {
		r.fieldByID[r.fields[i].ID] = &r.fields[i]
	}
	return r
}

// Status looks up a workflow status.
func (r *Registry) Status(id model.StatusID) (*model.Status, bool) {
	if r == nil {
		return nil, false
	}
	s, ok := r.statusByID[id]
	return s, ok
}

// User looks up a contact.
func (r *Registry) User(id model.UserID) (*model.User, bool) {
	if r == nil {
		return nil, false
	}
	u, ok := r.userByID[id]
	return u, ok
}

// CustomField looks up a custom field definition.
func (r *Registry) CustomField(id model.FieldID) (*model.CustomField, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.fieldByID[id]
	return f, ok
}

// Statuses returns every status in workflow order.
func (r *Registry) Statuses() []model.Status {
	if r == nil {
		return nil
	}
	return r.statuses
}

// ActiveStatuses returns the statuses of the active group in workflow order.
func (r *Registry) ActiveStatuses() []model.Status {
	if r == nil {
		return nil
	}
	var out []model.Status
	for _, s := range r.statuses {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	return out
}

// Users returns every contact.
func (r *Registry) Users() []model.User {
	if r == nil {
		return nil
	}
	return r.users
}

// CustomFields returns every custom field definition.
func (r *Registry) CustomFields() []model.CustomField {
	if r == nil {
		return nil
	}
	return r.fields
}
