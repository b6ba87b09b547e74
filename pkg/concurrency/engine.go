// Package concurrency implements Jari's field-level optimistic
// concurrency protocol: tracking what each agent last
// read, auto-merging disjoint changes, materializing conflicts where
// two agents touched the same field from the same base version, and
// the explicit resolution and claim protocols that clear them.
package concurrency

import (
	"fmt"

	"github.com/cuemby/warren/pkg/graph"
	"github.com/cuemby/warren/pkg/jarierr"
	"github.com/cuemby/warren/pkg/log"
	"github.com/cuemby/warren/pkg/metrics"
	"github.com/cuemby/warren/pkg/storage"
	"github.com/cuemby/warren/pkg/types"
)

// Read loads id's current record and records that agent has now seen
// its current version, establishing the base for a later Update. It
// also returns the todo's active (non-closed) blockers for display.
func Read(txn storage.Txn, agent, id string, now int64) (*types.Todo, []types.BlockerInfo, error) {
	t, _, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, &jarierr.NotFoundError{ID: id}
	}
	if err := storage.PutPending(txn, agent, id, t.Version); err != nil {
		return nil, nil, err
	}
	if err := storage.TouchAgent(txn, agent, now); err != nil {
		return nil, nil, err
	}
	active, err := graph.ActiveBlockersOf(txn, id)
	if err != nil {
		return nil, nil, err
	}
	return t, active, nil
}

// baseView returns the todo as agent last observed it: either the
// current record (no intervening writes since the last read) or the
// history snapshot at the recorded base version.
func baseView(txn storage.Txn, id string, base int64, current *types.Todo) (*types.Todo, error) {
	if base == current.Version {
		return current.Clone(), nil
	}
	snap, err := storage.GetHistorySnapshot(txn, id, base)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		// No history at the recorded base: the store predates this
		// read (shouldn't happen under normal operation). Fall back to
		// the current record so the update degrades to a plain replace
		// rather than failing outright.
		return current.Clone(), nil
	}
	v := snap.Todo
	return &v, nil
}

// Update applies an agent's proposed changes against id, auto-merging
// whatever does not collide with writes made by others since the
// agent's last read, and materializing a Conflict for whatever does.
// It implements the merge/conflict algorithm end to end.
func Update(txn storage.Txn, agent, id string, changes []types.FieldChange, now int64) (result *types.Todo, err error) {
	txnID := log.NewTxnID()
	defer func() {
		version := int64(0)
		if result != nil {
			version = result.Version
		}
		log.LogOperation("update", id, agent, version, txnID, err)
	}()

	// Invariant 7: a todo with pending conflicts for agent must be
	// resolved by agent before agent may issue another mutating update
	// on it. Mirrors Resolve's own agent-owned-conflicts filter below.
	existing, err := storage.ListConflicts(txn, id)
	if err != nil {
		return nil, err
	}
	if mine := conflictFields(existing, agent); len(mine) > 0 {
		return nil, &jarierr.ConflictPendingError{Fields: mine}
	}

	T, extra, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, err
	}
	if T == nil {
		return nil, &jarierr.NotFoundError{ID: id}
	}

	base, hasPending, err := storage.GetPending(txn, agent, id)
	if err != nil {
		return nil, err
	}
	if !hasPending {
		base = T.Version
	}

	Y, err := baseView(txn, id, base, T)
	if err != nil {
		return nil, err
	}
	Yprime := Y.Clone()
	if err := applyChanges(Yprime, changes); err != nil {
		return nil, err
	}

	grouped := groupByField(changes)
	var conflicts []types.Conflict
	changedAny := false

	// blocked_by is mediated through the graph so the reverse index and
	// cycle invariant stay consistent with the merge.
	if fc, ok := grouped[types.FieldBlockedBy]; ok {
		yoursAdded, yoursRemoved := intendedDelta(fc)
		theirsAdded, theirsRemoved := setDelta(Y.BlockedBy, T.BlockedBy)
		mergeAdds, mergeRemoves, setConflicts := reconcileSet(yoursAdded, yoursRemoved, theirsAdded, theirsRemoved)
		conflicts = append(conflicts, toConflicts(types.FieldBlockedBy, agent, base, now, setConflicts)...)

		for _, parent := range mergeAdds {
			if err := graph.AddEdge(txn, id, parent); err != nil {
				return nil, err
			}
			changedAny = true
		}
		for _, parent := range mergeRemoves {
			if err := graph.RemoveEdge(txn, id, parent); err != nil {
				return nil, err
			}
			changedAny = true
		}

		T, extra, err = storage.GetTodo(txn, id)
		if err != nil {
			return nil, err
		}
		if T == nil {
			return nil, &jarierr.NotFoundError{ID: id}
		}
	}

	for _, f := range setFields {
		fc, ok := grouped[f]
		if !ok {
			continue
		}
		yoursAdded, yoursRemoved := intendedDelta(fc)
		theirsAdded, theirsRemoved := setDelta(getSet(Y, f), getSet(T, f))
		mergeAdds, mergeRemoves, setConflicts := reconcileSet(yoursAdded, yoursRemoved, theirsAdded, theirsRemoved)
		conflicts = append(conflicts, toConflicts(f, agent, base, now, setConflicts)...)

		if len(mergeAdds) == 0 && len(mergeRemoves) == 0 {
			continue
		}
		before := getSet(T, f)
		cur := before
		for _, v := range mergeAdds {
			cur = addElem(cur, v)
		}
		for _, v := range mergeRemoves {
			cur = removeElem(cur, v)
		}
		if added, removed := setDelta(before, cur); len(added) == 0 && len(removed) == 0 {
			continue // the current record already reflects every merged op
		}
		setSet(T, f, cur)
		changedAny = true
	}

	for _, f := range scalarFields {
		if _, ok := grouped[f]; !ok {
			continue
		}
		yoursVal := getScalar(Yprime, f)
		yoursBase := getScalar(Y, f)
		if yoursVal == yoursBase {
			continue // net no-op after later changes on the same field
		}
		theirsVal := getScalar(T, f)
		if theirsVal == yoursBase {
			if err := setScalar(T, f, yoursVal); err != nil {
				return nil, err
			}
			changedAny = true
			continue
		}
		if theirsVal == yoursVal {
			continue // both sides independently converged; nothing to do
		}
		conflicts = append(conflicts, types.Conflict{
			Agent:       agent,
			Field:       f,
			BaseVersion: base,
			YoursValue:  yoursVal,
			TheirsValue: theirsVal,
			Timestamp:   now,
		})
	}

	for i := range conflicts {
		if err := storage.AppendConflict(txn, id, &conflicts[i]); err != nil {
			return nil, err
		}
	}

	for range conflicts {
		if err := metrics.Incr(txn, metrics.ConflictsRaised); err != nil {
			return nil, err
		}
	}

	if changedAny {
		T.Version++
		T.UpdatedAt = now
		T.UpdatedBy = agent
		if err := storage.PutTodo(txn, T, extra); err != nil {
			return nil, err
		}
		snap := &types.HistorySnapshot{Todo: *T.Clone(), Agent: agent, Operation: "update", Timestamp: now}
		if err := storage.AppendHistory(txn, id, snap); err != nil {
			return nil, err
		}
		if err := storage.ClearPending(txn, agent, id); err != nil {
			return nil, err
		}
		if err := storage.TouchAgent(txn, agent, now); err != nil {
			return nil, err
		}
		if err := metrics.Incr(txn, metrics.MergesApplied); err != nil {
			return nil, err
		}
		return T, nil
	}

	if len(conflicts) > 0 {
		fields := make([]string, 0, len(conflicts))
		seen := map[string]bool{}
		for _, c := range conflicts {
			if !seen[string(c.Field)] {
				seen[string(c.Field)] = true
				fields = append(fields, string(c.Field))
			}
		}
		return nil, &jarierr.ConflictPendingError{Fields: fields}
	}

	return T, nil
}

// conflictFields returns the deduplicated field names among conflicts
// already owned by agent, used to enforce invariant 7: agent must
// clear its own pending conflicts on a todo before issuing another
// mutating update on it.
func conflictFields(conflicts []*types.Conflict, agent string) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range conflicts {
		if c.Agent != agent {
			continue
		}
		if !seen[string(c.Field)] {
			seen[string(c.Field)] = true
			out = append(out, string(c.Field))
		}
	}
	return out
}

func toConflicts(field types.Field, agent string, base, now int64, sc []setConflict) []types.Conflict {
	out := make([]types.Conflict, 0, len(sc))
	for _, c := range sc {
		out = append(out, types.Conflict{
			Agent:       agent,
			Field:       field,
			BaseVersion: base,
			YoursValue:  opString(c.yoursOp, c.element),
			TheirsValue: opString(c.theirsOp, c.element),
			Timestamp:   now,
		})
	}
	return out
}

// Resolve settles agent's pending conflicts on id per strategy,
// clearing only that agent's conflict records and bumping the version
// once for audit continuity regardless of which side's value wins.
func Resolve(txn storage.Txn, agent, id string, strategy types.ResolutionStrategy, overrides []types.FieldChange, now int64) (result *types.Todo, err error) {
	txnID := log.NewTxnID()
	defer func() {
		version := int64(0)
		if result != nil {
			version = result.Version
		}
		log.LogOperation("resolve", id, agent, version, txnID, err)
	}()

	T, extra, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, err
	}
	if T == nil {
		return nil, &jarierr.NotFoundError{ID: id}
	}

	all, err := storage.ListConflicts(txn, id)
	if err != nil {
		return nil, err
	}
	var mine []*types.Conflict
	for _, c := range all {
		if c.Agent == agent {
			mine = append(mine, c)
		}
	}
	if len(mine) == 0 {
		return nil, &jarierr.NoConflictsError{ID: id}
	}

	// blocked_by resolutions go through the graph first, since AddEdge/
	// RemoveEdge each do their own Get/Put of the todo record; doing
	// them before any in-memory scalar/set mutation avoids one clobbering
	// the other when T is finally persisted below.
	switch strategy {
	case types.AcceptYours:
		for _, c := range mine {
			if c.Field != types.FieldBlockedBy {
				continue
			}
			if err := applyResolvedValue(txn, id, T, c.Field, c.YoursValue); err != nil {
				return nil, err
			}
		}
	case types.ManualMerge:
		for _, fc := range overrides {
			if fc.Field != types.FieldBlockedBy {
				continue
			}
			if err := applyOverride(txn, id, T, fc); err != nil {
				return nil, err
			}
		}
	}

	T, extra2, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, err
	}
	if T == nil {
		return nil, &jarierr.NotFoundError{ID: id}
	}
	extra = extra2

	switch strategy {
	case types.AcceptYours:
		for _, c := range mine {
			if c.Field == types.FieldBlockedBy {
				continue
			}
			if err := applyResolvedValue(txn, id, T, c.Field, c.YoursValue); err != nil {
				return nil, err
			}
		}
	case types.AcceptTheirs:
		// T already reflects the other side's value; nothing to apply.
	case types.ManualMerge:
		for _, fc := range overrides {
			if fc.Field == types.FieldBlockedBy {
				continue
			}
			if err := applyOverride(txn, id, T, fc); err != nil {
				return nil, err
			}
		}
	default:
		return nil, &jarierr.InvalidInputError{Field: "strategy", Reason: fmt.Sprintf("unknown resolution strategy %q", strategy)}
	}

	for _, c := range mine {
		if err := storage.DeleteConflict(txn, id, c.Seq); err != nil {
			return nil, err
		}
	}

	T.Version++
	T.UpdatedAt = now
	T.UpdatedBy = agent
	T.Reason = "conflict resolved"
	if err := storage.PutTodo(txn, T, extra); err != nil {
		return nil, err
	}
	snap := &types.HistorySnapshot{Todo: *T.Clone(), Agent: agent, Operation: "resolve", Timestamp: now}
	if err := storage.AppendHistory(txn, id, snap); err != nil {
		return nil, err
	}
	if err := storage.ClearPending(txn, agent, id); err != nil {
		return nil, err
	}
	for range mine {
		if err := metrics.Incr(txn, metrics.ConflictsResolved); err != nil {
			return nil, err
		}
	}
	return T, nil
}

// applyResolvedValue re-applies one conflict's yours_value onto the
// current record: a scalar replace, or the specific add/remove op for
// a set field (encoded as "op:element" by Update).
func applyResolvedValue(txn storage.Txn, id string, t *types.Todo, field types.Field, value string) error {
	if !field.IsSet() {
		return setScalar(t, field, value)
	}
	op, elem, err := splitOpString(value)
	if err != nil {
		return err
	}
	if field == types.FieldBlockedBy {
		if op == types.OpAdd {
			return graph.AddEdge(txn, id, elem)
		}
		return graph.RemoveEdge(txn, id, elem)
	}
	cur := getSet(t, field)
	if op == types.OpAdd {
		setSet(t, field, addElem(cur, elem))
	} else {
		setSet(t, field, removeElem(cur, elem))
	}
	return nil
}

func applyOverride(txn storage.Txn, id string, t *types.Todo, fc types.FieldChange) error {
	if !fc.Field.IsSet() {
		return setScalar(t, fc.Field, fc.Value)
	}
	if fc.Field == types.FieldBlockedBy {
		if fc.Op == types.OpAdd {
			return graph.AddEdge(txn, id, fc.Value)
		}
		return graph.RemoveEdge(txn, id, fc.Value)
	}
	cur := getSet(t, fc.Field)
	switch fc.Op {
	case types.OpAdd:
		setSet(t, fc.Field, addElem(cur, fc.Value))
	case types.OpRemove:
		setSet(t, fc.Field, removeElem(cur, fc.Value))
	default:
		return &jarierr.InvalidOverrideError{Field: string(fc.Field), Reason: "set fields require add/remove"}
	}
	return nil
}

func splitOpString(v string) (types.ChangeOp, string, error) {
	for _, op := range []types.ChangeOp{types.OpAdd, types.OpRemove} {
		prefix := string(op) + ":"
		if len(v) > len(prefix) && v[:len(prefix)] == prefix {
			return op, v[len(prefix):], nil
		}
	}
	return "", "", &jarierr.InvalidOverrideError{Field: "blocked_by", Reason: fmt.Sprintf("malformed conflict value %q", v)}
}

// Claim atomically assigns an unclaimed, unblocked todo to agent,
// moving it to in_progress. It writes assignee and status directly,
// with the same version bump and history snapshot as Update, and
// bypasses the optimistic-merge path since it only ever competes
// against other claims (handled by bbolt's single-writer serialization).
func Claim(txn storage.Txn, agent, id string, now int64) (result *types.Todo, err error) {
	txnID := log.NewTxnID()
	defer func() {
		version := int64(0)
		if result != nil {
			version = result.Version
		}
		log.LogOperation("claim", id, agent, version, txnID, err)
	}()

	T, extra, err := storage.GetTodo(txn, id)
	if err != nil {
		return nil, err
	}
	if T == nil {
		return nil, &jarierr.NotFoundError{ID: id}
	}
	if T.Assignee != "" && T.Assignee != agent {
		return nil, &jarierr.AlreadyClaimedError{By: T.Assignee}
	}
	if T.Status != types.StatusOpen && T.Status != types.StatusInProgress {
		return nil, &jarierr.NotClaimableError{Reason: fmt.Sprintf("status is %q, not claimable", T.Status)}
	}
	active, err := graph.ActiveBlockersOf(txn, id)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, &jarierr.NotClaimableError{Reason: "todo has unresolved blockers"}
	}

	T.Assignee = agent
	T.Status = types.StatusInProgress
	T.Version++
	T.UpdatedAt = now
	T.UpdatedBy = agent
	if err := storage.PutTodo(txn, T, extra); err != nil {
		return nil, err
	}
	snap := &types.HistorySnapshot{Todo: *T.Clone(), Agent: agent, Operation: "claim", Timestamp: now}
	if err := storage.AppendHistory(txn, id, snap); err != nil {
		return nil, err
	}
	if err := storage.ClearPending(txn, agent, id); err != nil {
		return nil, err
	}
	if err := storage.TouchAgent(txn, agent, now); err != nil {
		return nil, err
	}
	if err := metrics.Incr(txn, metrics.ClaimsTaken); err != nil {
		return nil, err
	}
	return T, nil
}
