package model

import (
	"fmt"
	"strings"
)

// TaskID identifies a task within a folder batch
type TaskID string

// FolderID identifies a folder (container) or logical grouping
type FolderID string

// StatusID identifies a custom workflow status
type StatusID string

// UserID identifies a contact that can be assigned to tasks
type UserID string

// FieldID identifies a custom field definition
type FieldID string

// Task represents a single decoded task record
type Task struct {
	ID          TaskID       `json:"id"`
	Title       string       `json:"title"`
	StatusID    StatusID     `json:"customStatusId"`
	Fields      []FieldValue `json:"customFields,omitempty"`
	FolderIDs   []FolderID   `json:"parentIds,omitempty"`
	ParentIDs   []TaskID     `json:"superTaskIds,omitempty"`
	AssigneeIDs []UserID     `json:"responsibleIds,omitempty"`
}

// FieldValue is one sparse custom field value of a task.
// Value is kept as raw text; its meaning comes from the field's Type.
type FieldValue struct {
	FieldID FieldID `json:"id"`
	Value   string  `json:"value"`
}

// Clone creates a deep copy of the task
func (t Task) Clone() Task {
	clone := t
	if t.Fields != nil {
		clone.Fields = append([]FieldValue(nil), t.Fields...)
	}
	if t.FolderIDs != nil {
		clone.FolderIDs = append([]FolderID(nil), t.FolderIDs...)
	}
	if t.ParentIDs != nil {
		clone.ParentIDs = append([]TaskID(nil), t.ParentIDs...)
	}
	if t.AssigneeIDs != nil {
		clone.AssigneeIDs = append([]UserID(nil), t.AssigneeIDs...)
	}
	return clone
}

// Validate checks if the task data is logically valid
func (t *Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	for _, fv := range t.Fields {
		if fv.FieldID == "" {
			return fmt.Errorf("task %s: custom field value without field id", t.ID)
		}
	}
	return nil
}

// FieldValue returns the task's value for the given field.
// The scan is linear; tasks carry only a handful of values.
func (t *Task) FieldValue(id FieldID) (FieldValue, bool) {
	for _, fv := range t.Fields {
		if fv.FieldID == id {
			return fv, true
		}
	}
	return FieldValue{}, false
}

// FolderHeader describes the active folder and its extra columns
type FolderHeader struct {
	ID        FolderID  `json:"id"`
	Name      string    `json:"title"`
	ColumnIDs []FieldID `json:"customColumnIds,omitempty"`
	Logical   bool      `json:"logical,omitempty"` // grouping without custom columns
}

// StatusGroup buckets custom statuses into coarse lifecycle phases
type StatusGroup string

const (
	StatusGroupActive    StatusGroup = "Active"
	StatusGroupCompleted StatusGroup = "Completed"
	StatusGroupDeferred  StatusGroup = "Deferred"
	StatusGroupCancelled StatusGroup = "Cancelled"
)

// IsValid returns true if the group is a recognized value
func (g StatusGroup) IsValid() bool {
	switch g {
	case StatusGroupActive, StatusGroupCompleted, StatusGroupDeferred, StatusGroupCancelled:
		return true
	}
	return false
}

// ParseStatusGroup maps a group name case-insensitively. Unknown names map to Active,
// which is what the workflow API assumes for custom groups.
func ParseStatusGroup(s string) StatusGroup {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "completed":
		return StatusGroupCompleted
	case "deferred":
		return StatusGroupDeferred
	case "cancelled", "canceled":
		return StatusGroupCancelled
	default:
		return StatusGroupActive
	}
}

// Status is a custom workflow status
type Status struct {
	ID           StatusID    `json:"id"`
	Name         string      `json:"name"`
	Color        string      `json:"color,omitempty"`
	NaturalIndex int         `json:"-"` // Position in the workflow list
	Group        StatusGroup `json:"group"`
}

// IsActive returns true if the status belongs to the active group
func (s *Status) IsActive() bool {
	return s != nil && s.Group == StatusGroupActive
}

// User is an assignable contact
type User struct {
	ID        UserID `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullName returns "first last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// CustomFieldType categorizes how a custom field's value is interpreted
type CustomFieldType string

const (
	FieldText       CustomFieldType = "Text"
	FieldDropDown   CustomFieldType = "DropDown"
	FieldNumeric    CustomFieldType = "Numeric"
	FieldCheckbox   CustomFieldType = "Checkbox"
	FieldDate       CustomFieldType = "Date"
	FieldCurrency   CustomFieldType = "Currency"
	FieldPercentage CustomFieldType = "Percentage"
	FieldDuration   CustomFieldType = "Duration"
	FieldContacts   CustomFieldType = "Contacts"
)

// IsValid returns true if the type is non-empty.
// Unknown types are kept so newer workspaces still load; they never sort.
func (t CustomFieldType) IsValid() bool {
	return t != ""
}

// IsSortable returns true if values of this type have a defined ordering
func (t CustomFieldType) IsSortable() bool {
	switch t {
	case FieldText, FieldDropDown, FieldNumeric:
		return true
	}
	return false
}

// CustomField is a custom field definition
type CustomField struct {
	ID    FieldID         `json:"id"`
	Title string          `json:"title"`
	Type  CustomFieldType `json:"type"`
}
