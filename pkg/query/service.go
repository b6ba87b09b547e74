package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cuemby/warren/pkg/graph"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
)

// idLess orders two todo_{n} ids numerically on their issued integer
// rather than lexicographically, since ids are not zero-padded
// (unlike history/conflict keys, which the codec pads for this exact
// reason) — "todo_10" must sort after "todo_2". Falls back to a plain
// string compare if either id doesn't parse, so a malformed id never
// panics the comparator.
func idLess(a, b string) bool {
	an, aerr := strconv.ParseInt(strings.TrimPrefix(a, "todo_"), 10, 64)
	bn, berr := strconv.ParseInt(strings.TrimPrefix(b, "todo_"), 10, 64)
	if aerr != nil || berr != nil {
		return a < b
	}
	return an < bn
}

// byReadyOrder is the ready-queue comparator: priority
// ascending, then created_at ascending, then id ascending.
func byReadyOrder(todos []*types.Todo) {
	sort.Slice(todos, func(i, j int) bool {
		a, b := todos[i], todos[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return idLess(a.ID, b.ID)
	})
}

func isWorkable(s types.Status) bool {
	return s == types.StatusOpen || s == types.StatusInProgress
}

// Ready returns workable todos with no active blocker, in ready order.
func Ready(txn storage.Txn) ([]*types.Todo, error) {
	all, err := storage.ListTodos(txn)
	if err != nil {
		return nil, err
	}
	var out []*types.Todo
	for _, t := range all {
		if !isWorkable(t.Status) {
			continue
		}
		active, err := graph.ActiveBlockersOf(txn, t.ID)
		if err != nil {
			return nil, err
		}
		if len(active) == 0 {
			out = append(out, t)
		}
	}
	byReadyOrder(out)
	return out, nil
}

// BlockedEntry is one row of the blocked queue: the todo plus the
// blockers currently keeping it out of the ready queue.
type BlockedEntry struct {
	Todo     *types.Todo
	Blockers []types.BlockerInfo
}

// Blocked returns workable todos with at least one active blocker.
func Blocked(txn storage.Txn) ([]BlockedEntry, error) {
	all, err := storage.ListTodos(txn)
	if err != nil {
		return nil, err
	}
	var out []BlockedEntry
	for _, t := range all {
		if !isWorkable(t.Status) {
			continue
		}
		active, err := graph.ActiveBlockersOf(txn, t.ID)
		if err != nil {
			return nil, err
		}
		if len(active) > 0 {
			out = append(out, BlockedEntry{Todo: t, Blockers: active})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Todo, out[j].Todo
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.CreatedAt != b.CreatedAt {
			return a.CreatedAt < b.CreatedAt
		}
		return idLess(a.ID, b.ID)
	})
	return out, nil
}

// List returns every todo matching filter, in ready order.
func List(txn storage.Txn, filter types.Filter) ([]*types.Todo, error) {
	all, err := storage.ListTodos(txn)
	if err != nil {
		return nil, err
	}
	var out []*types.Todo
	for _, t := range all {
		if matches(t, filter) {
			out = append(out, t)
		}
	}
	byReadyOrder(out)
	return out, nil
}

// Search matches query as a case-insensitive substring of
// title, description, or any label, returned in ready order.
func Search(txn storage.Txn, query string) ([]*types.Todo, error) {
	all, err := storage.ListTodos(txn)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []*types.Todo
	for _, t := range all {
		if containsFold(t.Title, q) || containsFold(t.Description, q) {
			out = append(out, t)
			continue
		}
		for _, l := range t.Labels {
			if containsFold(l, q) {
				out = append(out, t)
				break
			}
		}
	}
	byReadyOrder(out)
	return out, nil
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

func matches(t *types.Todo, f types.Filter) bool {
	if len(f.Status) > 0 {
		found := false
		for _, s := range f.Status {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Assignee != "" && t.Assignee != f.Assignee {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Label != "" {
		has := false
		for _, l := range t.Labels {
			if l == f.Label {
				has = true
				break
			}
		}
		if !has {
			return false
		}
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !containsFold(t.Title, q) && !containsFold(t.Description, q) {
			hit := false
			for _, l := range t.Labels {
				if containsFold(l, q) {
					hit = true
					break
				}
			}
			if !hit {
				return false
			}
		}
	}
	return true
}

// History returns every snapshot for id, ascending by version.
func History(txn storage.Txn, id string) ([]*types.HistorySnapshot, error) {
	snaps, err := storage.ListHistory(txn, id)
	if err != nil {
		return nil, err
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Todo.Version < snaps[j].Todo.Version })
	return snaps, nil
}

// AgentStatus is the composite view returned by the `status` command:
// an agent's pending conflicts across every todo, its currently
// assigned todos, and its most recent authored snapshots.
type AgentStatus struct {
	Conflicts []*types.Conflict
	Assigned  []*types.Todo
	Recent    []*types.HistorySnapshot
}

// Status assembles agent's conflicts, assignments, and last N
// authored history snapshots across the whole store.
func Status(txn storage.Txn, agent string, recentN int) (*AgentStatus, error) {
	all, err := storage.ListTodos(txn)
	if err != nil {
		return nil, err
	}

	out := &AgentStatus{}
	var recent []*types.HistorySnapshot
	for _, t := range all {
		conflicts, err := storage.ListConflicts(txn, t.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range conflicts {
			if c.Agent == agent {
				out.Conflicts = append(out.Conflicts, c)
			}
		}
		if t.Assignee == agent {
			out.Assigned = append(out.Assigned, t)
		}
		snaps, err := storage.ListHistory(txn, t.ID)
		if err != nil {
			return nil, err
		}
		for _, s := range snaps {
			if s.Agent == agent {
				recent = append(recent, s)
			}
		}
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].Timestamp > recent[j].Timestamp })
	if recentN > 0 && len(recent) > recentN {
		recent = recent[:recentN]
	}
	out.Recent = recent
	return out, nil
}

// Conflicts returns every pending conflict on id, ordered by seq.
func Conflicts(txn storage.Txn, id string) ([]*types.Conflict, error) {
	return storage.ListConflicts(txn, id)
}

// Agents returns the full agent registry.
func Agents(txn storage.Txn) ([]*types.AgentSummary, error) {
	agents, err := storage.ListAgents(txn)
	if err != nil {
		return nil, err
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })
	return agents, nil
}

// Export returns every todo ordered ascending by id, one record per
// line when serialized by the caller.
func Export(txn storage.Txn) ([]*types.Todo, error) {
	all, err := storage.ListTodos(txn)
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return idLess(all[i].ID, all[j].ID) })
	return all, nil
}
