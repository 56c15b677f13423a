package tasktree

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/vanderheijden86/tasktable/pkg/model"
)

// SortField represents which column the tree is sorted by
type SortField int

const (
	SortNone        SortField = iota // Ingestion order
	SortTitle                        // Task title
	SortStatus                       // Workflow position of the status
	SortAssignee                     // First assignee's full name
	SortCustomField                  // Value of one custom field
)

func (f SortField) String() string {
	switch f {
	case SortTitle:
		return "title"
	case SortStatus:
		return "status"
	case SortAssignee:
		return "assignee"
	case SortCustomField:
		return "custom_field"
	default:
		return "none"
	}
}

// ParseSortField is the inverse of SortField.String.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "title":
		return SortTitle, nil
	case "status":
		return SortStatus, nil
	case "assignee":
		return SortAssignee, nil
	case "custom_field":
		return SortCustomField, nil
	}
	return SortNone, fmt.Errorf("unknown sort field %q", s)
}

// SortDirection scales comparator results: +1 ascending, -1 descending
type SortDirection int

const (
	SortAscending  SortDirection = 1
	SortDescending SortDirection = -1
)

func (d SortDirection) String() string {
	if d == SortDescending {
		return "desc"
	}
	return "asc"
}

// Indicator returns the arrow shown next to the sorted column header.
func (d SortDirection) Indicator() string {
	if d == SortDescending {
		return "▼"
	}
	return "▲"
}

// SortState is the current sort selection. CustomField is only meaningful
// when Field is SortCustomField.
type SortState struct {
	Field       SortField
	Direction   SortDirection
	CustomField model.FieldID
}

// DefaultSortState is applied after the first load when nothing was chosen.
func DefaultSortState() SortState {
	return SortState{Field: SortTitle, Direction: SortAscending}
}

// Select returns the state after the user picks field: picking the current
// field flips the direction, any other field starts ascending.
func (s SortState) Select(field SortField) SortState {
	if field == SortCustomField {
		return s.SelectCustomField(s.CustomField)
	}
	if field == s.Field {
		s.Direction = -s.normalizedDirection()
		return s
	}
	return SortState{Field: field, Direction: SortAscending}
}

// SelectCustomField is Select for a custom field column.
func (s SortState) SelectCustomField(id model.FieldID) SortState {
	if s.Field == SortCustomField && s.CustomField == id {
		s.Direction = -s.normalizedDirection()
		return s
	}
	return SortState{Field: SortCustomField, Direction: SortAscending, CustomField: id}
}

func (s SortState) normalizedDirection() SortDirection {
	if s.Direction == SortDescending {
		return SortDescending
	}
	return SortAscending
}

// comparator orders two nodes; negative means a sorts first.
type comparator func(a, b *Node) int

// newComparator resolves the sort state into one comparison strategy.
// It returns nil for SortNone.
func newComparator(state SortState, reg Registry) comparator {
	dir := int(state.normalizedDirection())

	switch state.Field {
	case SortTitle:
		return func(a, b *Node) int {
			if r := comparePrefix(a.Task.Title, b.Task.Title) * dir; r != 0 {
				return r
			}
			return compareIDs(a, b)
		}

	case SortAssignee:
		return func(a, b *Node) int {
			ua, ub := a.FirstAssignee, b.FirstAssignee
			switch {
			case ua == nil && ub == nil:
				return compareIDs(a, b)
			case ua == nil:
				return 1
			case ub == nil:
				return -1
			}
			if r := comparePrefix(ua.FullName(), ub.FullName()) * dir; r != 0 {
				return r
			}
			return compareIDs(a, b)
		}

	case SortStatus:
		return func(a, b *Node) int {
			sa, sb := a.Status, b.Status
			switch {
			case sa == nil && sb == nil:
				return compareIDs(a, b)
			case sa == nil:
				return 1
			case sb == nil:
				return -1
			}
			// The workflow position ignores direction; only the id tie-break flips.
			if r := cmp.Compare(sa.NaturalIndex, sb.NaturalIndex); r != 0 {
				return r
			}
			if r := strings.Compare(string(sa.ID), string(sb.ID)) * dir; r != 0 {
				return r
			}
			return compareIDs(a, b)
		}

	case SortCustomField:
		fieldID := state.CustomField
		var fieldType model.CustomFieldType
		if field, ok := reg.CustomField(fieldID); ok {
			fieldType = field.Type
		}
		return func(a, b *Node) int {
			va, okA := a.Task.FieldValue(fieldID)
			vb, okB := b.Task.FieldValue(fieldID)
			switch {
			case !okA && !okB:
				return compareIDs(a, b)
			case !okA:
				return 1
			case !okB:
				return -1
			}
			if r := compareFieldValues(fieldType, va.Value, vb.Value) * dir; r != 0 {
				return r
			}
			return compareIDs(a, b)
		}
	}
	return nil
}

func compareFieldValues(t model.CustomFieldType, a, b string) int {
	switch t {
	case model.FieldNumeric:
		return cmp.Compare(leadingInt(a), leadingInt(b))
	case model.FieldText, model.FieldDropDown:
		return comparePrefix(a, b)
	}
	return 0
}

// comparePrefix compares only the first min(len(a), len(b)) bytes, so "ab"
// and "abc" are equal.
func comparePrefix(a, b string) int {
	n := min(len(a), len(b))
	return strings.Compare(a[:n], b[:n])
}

func compareIDs(a, b *Node) int {
	return strings.Compare(string(a.Task.ID), string(b.Task.ID))
}

// leadingInt parses an optional sign and the leading digits of s, ignoring
// leading blanks and anything after the digits. Non-numeric text is 0.
// Values beyond the int64 range saturate.
func leadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int64(s[i] - '0')
		if n > (math.MaxInt64-d)/10 {
			n = math.MaxInt64
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

// refreshCaches re-resolves every node's status and first assignee.
func (b *Batch) refreshCaches(reg Registry) {
	for i := range b.nodes {
		node := &b.nodes[i]
		node.Status, _ = reg.Status(node.Task.StatusID)
		node.FirstAssignee = nil
		if len(node.Task.AssigneeIDs) > 0 {
			node.FirstAssignee, _ = reg.User(node.Task.AssigneeIDs[0])
		}
	}
}

// sortTopLevel sorts the top-level list and marks every subtree for a lazy
// re-sort.
func (b *Batch) sortTopLevel(compare comparator) {
	for i := range b.nodes {
		b.nodes[i].NeedsSubSort = true
	}
	if compare == nil {
		return
	}
	b.sortIndices(b.topLevel, compare)
}

// sortChildren sorts the children of node i and clears its flag.
func (b *Batch) sortChildren(i int32, compare comparator) {
	b.nodes[i].NeedsSubSort = false
	if compare == nil {
		return
	}
	b.sortIndices(b.Children(i), compare)
}

// sortIndices orders indices so that every adjacent pair is in order. The
// prefix compare is not transitive ("" ties with everything), so a general
// sort can leave out-of-order neighbours; the insertion pass repairs them and
// makes an already ordered slice a fixed point.
func (b *Batch) sortIndices(indices []int32, compare comparator) {
	cmpIdx := func(x, y int32) int {
		return compare(&b.nodes[x], &b.nodes[y])
	}
	if slices.IsSortedFunc(indices, cmpIdx) {
		return
	}
	slices.SortStableFunc(indices, cmpIdx)
	if slices.IsSortedFunc(indices, cmpIdx) {
		return
	}
	insertionSort(indices, cmpIdx)
}

// insertionSort is stable and leaves every adjacent pair ordered for any
// antisymmetric compare.
func insertionSort(s []int32, compare func(x, y int32) int) {
	for i := 1; i < len(s); i++ {
		v := s[i]
		j := i
		for j > 0 && compare(s[j-1], v) > 0 {
			s[j] = s[j-1]
			j--
		}
		s[j] = v
	}
}
