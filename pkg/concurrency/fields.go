package concurrency

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/types"
)

// scalarFields is the closed set of non-set-valued fields, iterated in
// a fixed order so conflict-field lists are deterministic.
var scalarFields = []types.Field{
	types.FieldTitle,
	types.FieldDescription,
	types.FieldStatus,
	types.FieldPriority,
	types.FieldType,
	types.FieldAssignee,
	types.FieldParentID,
	types.FieldReason,
}

// setFields is the closed set of set-valued fields, excluding
// blocked_by which the engine handles separately through the graph.
var setFields = []types.Field{types.FieldLabels, types.FieldNiwaRefs}

// groupByField partitions a FieldChange list by field, preserving
// relative order within each group.
func groupByField(changes []types.FieldChange) map[types.Field][]types.FieldChange {
	out := make(map[types.Field][]types.FieldChange)
	for _, c := range changes {
		out[c.Field] = append(out[c.Field], c)
	}
	return out
}

// getScalar reads the string representation of one scalar field.
func getScalar(t *types.Todo, f types.Field) string {
	switch f {
	case types.FieldTitle:
		return t.Title
	case types.FieldDescription:
		return t.Description
	case types.FieldStatus:
		return string(t.Status)
	case types.FieldPriority:
		return strconv.Itoa(int(t.Priority))
	case types.FieldType:
		return t.Type
	case types.FieldAssignee:
		return t.Assignee
	case types.FieldParentID:
		return t.ParentID
	case types.FieldReason:
		return t.Reason
	default:
		return ""
	}
}

// setScalar writes a validated string value onto one scalar field.
func setScalar(t *types.Todo, f types.Field, value string) error {
	switch f {
	case types.FieldTitle:
		if value == "" {
			return &jarierr.InvalidInputError{Field: string(f), Reason: "title must not be empty"}
		}
		t.Title = value
	case types.FieldDescription:
		t.Description = value
	case types.FieldStatus:
		s := types.Status(value)
		if !validStatus(s) {
			return &jarierr.InvalidInputError{Field: string(f), Reason: fmt.Sprintf("unknown status %q", value)}
		}
		t.Status = s
	case types.FieldPriority:
		p, err := strconv.Atoi(value)
		if err != nil || !types.Priority(p).Valid() {
			return &jarierr.InvalidInputError{Field: string(f), Reason: fmt.Sprintf("priority must be in [0,4], got %q", value)}
		}
		t.Priority = types.Priority(p)
	case types.FieldType:
		t.Type = value
	case types.FieldAssignee:
		t.Assignee = value
	case types.FieldParentID:
		t.ParentID = value
	case types.FieldReason:
		t.Reason = value
	default:
		return &jarierr.InvalidInputError{Field: string(f), Reason: "not a scalar field"}
	}
	return nil
}

func validStatus(s types.Status) bool {
	switch s {
	case types.StatusOpen, types.StatusInProgress, types.StatusBlocked, types.StatusClosed, types.StatusDeferred:
		return true
	default:
		return false
	}
}

// getSet reads the string slice backing one set-valued field.
func getSet(t *types.Todo, f types.Field) []string {
	switch f {
	case types.FieldLabels:
		return t.Labels
	case types.FieldNiwaRefs:
		return t.NiwaRefs
	case types.FieldBlockedBy:
		return t.BlockedBy
	default:
		return nil
	}
}

// setSet writes a string slice onto one set-valued field.
func setSet(t *types.Todo, f types.Field, values []string) {
	switch f {
	case types.FieldLabels:
		t.Labels = values
	case types.FieldNiwaRefs:
		t.NiwaRefs = values
	case types.FieldBlockedBy:
		t.BlockedBy = values
	}
}

// applyChanges applies a full FieldChange list onto t in place,
// computing the agent's intended view Y' from Y. Later changes to the
// same scalar field win; set changes accumulate.
func applyChanges(t *types.Todo, changes []types.FieldChange) error {
	for _, c := range changes {
		if c.Field.IsSet() {
			cur := getSet(t, c.Field)
			switch c.Op {
			case types.OpAdd:
				setSet(t, c.Field, addElem(cur, c.Value))
			case types.OpRemove:
				setSet(t, c.Field, removeElem(cur, c.Value))
			default:
				return &jarierr.InvalidInputError{Field: string(c.Field), Reason: "set fields require add/remove"}
			}
		} else {
			if c.Op != types.OpSet {
				return &jarierr.InvalidInputError{Field: string(c.Field), Reason: "scalar fields require set"}
			}
			if err := setScalar(t, c.Field, c.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func addElem(set []string, v string) []string {
	for _, e := range set {
		if e == v {
			return set
		}
	}
	return append(append([]string(nil), set...), v)
}

func removeElem(set []string, v string) []string {
	out := make([]string, 0, len(set))
	for _, e := range set {
		if e != v {
			out = append(out, e)
		}
	}
	return out
}

func toSetMap(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// setDelta returns the elements added to / removed from `from` to
// reach `to` (from -> to).
func setDelta(from, to []string) (added, removed []string) {
	fromSet, toSet := toSetMap(from), toSetMap(to)
	for v := range toSet {
		if !fromSet[v] {
			added = append(added, v)
		}
	}
	for v := range fromSet {
		if !toSet[v] {
			removed = append(removed, v)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// intendedDelta collects the add/remove operations an agent proposed
// for one set field, deduplicating repeated ops on the same element.
func intendedDelta(changes []types.FieldChange) (added, removed []string) {
	addSet, removeSet := map[string]bool{}, map[string]bool{}
	for _, c := range changes {
		switch c.Op {
		case types.OpAdd:
			addSet[c.Value] = true
			delete(removeSet, c.Value)
		case types.OpRemove:
			removeSet[c.Value] = true
			delete(addSet, c.Value)
		}
	}
	for v := range addSet {
		added = append(added, v)
	}
	for v := range removeSet {
		removed = append(removed, v)
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// setConflict is one element-level conflict found while reconciling a
// set field: the agent's intended op collided with the other side's
// opposite op on the same element.
type setConflict struct {
	element     string
	yoursOp     types.ChangeOp
	theirsOp    types.ChangeOp
}

// reconcileSet implements the set auto-merge rule: additions
// from both sides and removals from both sides combine; a conflict
// arises only when one side adds an element the other side removes.
// It returns the non-conflicting adds/removes to apply, plus the
// element-level conflicts to record.
func reconcileSet(yoursAdded, yoursRemoved, theirsAdded, theirsRemoved []string) (mergeAdds, mergeRemoves []string, conflicts []setConflict) {
	theirsAddedSet := toSetMap(theirsAdded)
	theirsRemovedSet := toSetMap(theirsRemoved)

	for _, v := range yoursAdded {
		if theirsRemovedSet[v] {
			conflicts = append(conflicts, setConflict{element: v, yoursOp: types.OpAdd, theirsOp: types.OpRemove})
			continue
		}
		mergeAdds = append(mergeAdds, v)
	}
	for _, v := range yoursRemoved {
		if theirsAddedSet[v] {
			conflicts = append(conflicts, setConflict{element: v, yoursOp: types.OpRemove, theirsOp: types.OpAdd})
			continue
		}
		mergeRemoves = append(mergeRemoves, v)
	}
	// Elements the other side alone touched are already reflected in
	// T (the current record) and need no action here.
	sort.Strings(mergeAdds)
	sort.Strings(mergeRemoves)
	return mergeAdds, mergeRemoves, conflicts
}

func opString(op types.ChangeOp, value string) string {
	return string(op) + ":" + value
}
